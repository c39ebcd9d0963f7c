package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type IdempotencyState string

const (
	IdempotencyStateNew        IdempotencyState = "new"
	IdempotencyStateInProgress IdempotencyState = "in_progress"
	IdempotencyStateConflict   IdempotencyState = "conflict"
	IdempotencyStateReplay     IdempotencyState = "replay"
)

type CachedHTTPResponse struct {
	StatusCode  int
	ContentType string
	// Location carries the redirect target, which for a replayed download
	// grant is the whole point of the response.
	Location string
	Body     []byte
}

type IdempotencyResult struct {
	State  IdempotencyState
	Cached *CachedHTTPResponse
}

type IdempotencyStore interface {
	Begin(ctx context.Context, scope, key, fingerprint string, ttl time.Duration) (IdempotencyResult, error)
	Complete(ctx context.Context, scope, key, fingerprint string, response CachedHTTPResponse, ttl time.Duration) error
}

// RedisIdempotencyStore keys each request by (scope, client key) and stores a
// request fingerprint so key reuse with a different payload is rejected rather
// than replayed.
type RedisIdempotencyStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisIdempotencyStore(client redis.UniversalClient, prefix string) *RedisIdempotencyStore {
	if prefix == "" {
		prefix = "idempotency"
	}
	return &RedisIdempotencyStore{
		client: client,
		prefix: prefix,
	}
}

func (s *RedisIdempotencyStore) Begin(ctx context.Context, scope, key, fingerprint string, ttl time.Duration) (IdempotencyResult, error) {
	redisKey := s.redisKey(scope, key)

	claimed, err := s.client.HSetNX(ctx, redisKey, "fingerprint", fingerprint).Result()
	if err != nil {
		return IdempotencyResult{}, fmt.Errorf("claim idempotency key: %w", err)
	}
	if claimed {
		pipe := s.client.TxPipeline()
		pipe.HSet(ctx, redisKey, "status", string(IdempotencyStateInProgress))
		pipe.Expire(ctx, redisKey, ttl)
		if _, err := pipe.Exec(ctx); err != nil {
			return IdempotencyResult{}, fmt.Errorf("mark idempotency key in progress: %w", err)
		}
		return IdempotencyResult{State: IdempotencyStateNew}, nil
	}

	fields, err := s.client.HGetAll(ctx, redisKey).Result()
	if err != nil {
		return IdempotencyResult{}, fmt.Errorf("read idempotency key: %w", err)
	}
	if fields["fingerprint"] != fingerprint {
		return IdempotencyResult{State: IdempotencyStateConflict}, nil
	}
	if fields["status"] != "completed" {
		return IdempotencyResult{State: IdempotencyStateInProgress}, nil
	}

	statusCode, err := strconv.Atoi(fields["response_status"])
	if err != nil {
		return IdempotencyResult{}, fmt.Errorf("parse replay status: %w", err)
	}
	body, err := base64.StdEncoding.DecodeString(fields["response_body"])
	if err != nil {
		return IdempotencyResult{}, fmt.Errorf("decode replay body: %w", err)
	}
	return IdempotencyResult{
		State: IdempotencyStateReplay,
		Cached: &CachedHTTPResponse{
			StatusCode:  statusCode,
			ContentType: fields["content_type"],
			Location:    fields["location"],
			Body:        body,
		},
	}, nil
}

func (s *RedisIdempotencyStore) Complete(ctx context.Context, scope, key, fingerprint string, response CachedHTTPResponse, ttl time.Duration) error {
	redisKey := s.redisKey(scope, key)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, redisKey,
		"fingerprint", fingerprint,
		"status", "completed",
		"response_status", strconv.Itoa(response.StatusCode),
		"content_type", response.ContentType,
		"location", response.Location,
		"response_body", base64.StdEncoding.EncodeToString(response.Body),
	)
	pipe.Expire(ctx, redisKey, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("complete idempotency key: %w", err)
	}
	return nil
}

func (s *RedisIdempotencyStore) redisKey(scope, key string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, scope, key)
}
