package repository

import (
	"errors"
	"testing"

	"github.com/shareport/shareport/internal/domain"
)

func boolPtr(v bool) *bool { return &v }
func intPtr(v int) *int    { return &v }

func TestGlobalSettingsSeededWithDefaults(t *testing.T) {
	repo := NewShareSettingsRepository(newTestDB(t))

	got, err := repo.GetGlobal()
	if err != nil {
		t.Fatalf("get global: %v", err)
	}
	want := domain.DefaultGlobalShareSettings()
	if got.Enabled != want.Enabled || got.PasswordRequired != want.PasswordRequired ||
		got.ExpiryDays != want.ExpiryDays || got.DownloadLimitPerIP != want.DownloadLimitPerIP {
		t.Fatalf("unexpected seeded defaults: %+v", got)
	}

	got.PasswordRequired = true
	if err := repo.UpdateGlobal(got); err != nil {
		t.Fatalf("update global: %v", err)
	}
	again, err := repo.GetGlobal()
	if err != nil {
		t.Fatalf("get global after update: %v", err)
	}
	if !again.PasswordRequired {
		t.Fatal("expected updated global row to persist")
	}
}

func TestProjectSettingsUpsertAndDelete(t *testing.T) {
	repo := NewShareSettingsRepository(newTestDB(t))

	if _, err := repo.GetProject(7); !errors.Is(err, ErrShareSettingsNotFound) {
		t.Fatalf("expected not found before upsert, got %v", err)
	}

	if err := repo.UpsertProject(&domain.ProjectShareSettings{
		ProjectID:        7,
		PasswordRequired: boolPtr(true),
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := repo.GetProject(7)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.PasswordRequired == nil || !*got.PasswordRequired {
		t.Fatalf("expected password_required override, got %+v", got)
	}
	if got.Enabled != nil {
		t.Fatalf("unset fields must stay nil (inherit), got %+v", got.Enabled)
	}

	if err := repo.UpsertProject(&domain.ProjectShareSettings{
		ProjectID:          7,
		DownloadLimitPerIP: intPtr(3),
	}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	got, err = repo.GetProject(7)
	if err != nil {
		t.Fatalf("get after second upsert: %v", err)
	}
	if got.DownloadLimitPerIP == nil || *got.DownloadLimitPerIP != 3 {
		t.Fatalf("expected download limit 3, got %+v", got.DownloadLimitPerIP)
	}

	if err := repo.DeleteProject(7); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetProject(7); !errors.Is(err, ErrShareSettingsNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestFileSettingsExplicitZeroIsNotInherit(t *testing.T) {
	repo := NewShareSettingsRepository(newTestDB(t))

	if err := repo.UpsertFile(&domain.FileShareSettings{
		FileID:             11,
		Enabled:            boolPtr(false),
		DownloadLimitPerIP: intPtr(0),
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := repo.GetFile(11)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Enabled == nil || *got.Enabled {
		t.Fatalf("explicit disable must round-trip, got %+v", got.Enabled)
	}
	if got.DownloadLimitPerIP == nil || *got.DownloadLimitPerIP != 0 {
		t.Fatalf("explicit zero limit must stay distinct from nil, got %+v", got.DownloadLimitPerIP)
	}
}
