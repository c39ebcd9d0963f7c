package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisShareLookupCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisShareLookupCache(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisShareLookupCache {
	if prefix == "" {
		prefix = "share_lookup_cache"
	}
	return &RedisShareLookupCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (c *RedisShareLookupCache) WasMissing(ctx context.Context, publicID string) (bool, error) {
	if c.client == nil {
		return false, nil
	}
	_, err := c.client.Get(ctx, c.missKey(publicID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisShareLookupCache) MarkMissing(ctx context.Context, publicID string) error {
	if c.client == nil || c.ttl <= 0 {
		return nil
	}
	missKey := c.missKey(publicID)
	indexKey := c.indexKey()
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, missKey, "1", c.ttl)
	pipe.SAdd(ctx, indexKey, missKey)
	pipe.Expire(ctx, indexKey, c.ttl+time.Minute)
	_, err := pipe.Exec(ctx)
	return err
}

func (c *RedisShareLookupCache) Reset(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	indexKey := c.indexKey()
	keys, err := c.client.SMembers(ctx, indexKey).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	pipe := c.client.TxPipeline()
	if len(keys) > 0 {
		pipe.Del(ctx, keys...)
	}
	pipe.Del(ctx, indexKey)
	_, err = pipe.Exec(ctx)
	return err
}

func (c *RedisShareLookupCache) missKey(publicID string) string {
	sum := sha256.Sum256([]byte(publicID))
	return fmt.Sprintf("%s:miss:%s", c.prefix, hex.EncodeToString(sum[:]))
}

func (c *RedisShareLookupCache) indexKey() string {
	return fmt.Sprintf("%s:index", c.prefix)
}
