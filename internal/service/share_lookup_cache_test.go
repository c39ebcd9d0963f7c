package service

import (
	"context"
	"testing"
	"time"
)

func TestInMemoryShareLookupCacheMarkAndReset(t *testing.T) {
	cache := NewInMemoryShareLookupCache(time.Minute)
	ctx := context.Background()

	hit, err := cache.WasMissing(ctx, "dead-link")
	if err != nil {
		t.Fatalf("initial read: %v", err)
	}
	if hit {
		t.Fatal("expected miss before marking")
	}

	if err := cache.MarkMissing(ctx, "dead-link"); err != nil {
		t.Fatalf("mark: %v", err)
	}
	hit, err = cache.WasMissing(ctx, "dead-link")
	if err != nil {
		t.Fatalf("read after mark: %v", err)
	}
	if !hit {
		t.Fatal("expected hit after marking")
	}

	if err := cache.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	hit, err = cache.WasMissing(ctx, "dead-link")
	if err != nil {
		t.Fatalf("read after reset: %v", err)
	}
	if hit {
		t.Fatal("expected miss after reset")
	}
}

func TestInMemoryShareLookupCacheEntryExpires(t *testing.T) {
	cache := NewInMemoryShareLookupCache(25 * time.Millisecond)
	ctx := context.Background()

	if err := cache.MarkMissing(ctx, "short-lived"); err != nil {
		t.Fatalf("mark: %v", err)
	}
	time.Sleep(40 * time.Millisecond)
	hit, err := cache.WasMissing(ctx, "short-lived")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if hit {
		t.Fatal("expected entry to expire")
	}
}

func TestNoopShareLookupCacheAlwaysMisses(t *testing.T) {
	cache := NewNoopShareLookupCache()
	ctx := context.Background()

	if err := cache.MarkMissing(ctx, "anything"); err != nil {
		t.Fatalf("mark: %v", err)
	}
	hit, err := cache.WasMissing(ctx, "anything")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if hit {
		t.Fatal("noop cache must never hit")
	}
	if err := cache.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
}
