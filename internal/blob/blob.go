// Package blob abstracts the object store that holds file bytes. The rest of
// the service only ever needs a short-lived byte-serving URL for a stored key.
package blob

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

type Store interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// StaticStore serves objects from a fixed base URL (a CDN or a dev file
// server). The TTL is ignored; the URL is stable.
type StaticStore struct {
	baseURL string
}

func NewStaticStore(baseURL string) (*StaticStore, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse blob base url: %w", err)
	}
	return &StaticStore{baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *StaticStore) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	if key == "" {
		return "", fmt.Errorf("empty blob key")
	}
	escaped := make([]string, 0, 4)
	for _, part := range strings.Split(strings.TrimLeft(key, "/"), "/") {
		escaped = append(escaped, url.PathEscape(part))
	}
	return s.baseURL + "/" + strings.Join(escaped, "/"), nil
}
