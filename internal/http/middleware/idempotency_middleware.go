package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/shareport/shareport/internal/http/response"
	"github.com/shareport/shareport/internal/service"
)

const idempotencyKeyHeader = "Idempotency-Key"

// Idempotency replays the stored response when a client repeats a request
// with the same Idempotency-Key, so a retry after a timeout cannot apply the
// operation twice. Requests without the header pass through untouched.
func Idempotency(store service.IdempotencyStore, scope string, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(idempotencyKeyHeader)
			if key == "" || store == nil {
				next.ServeHTTP(w, r)
				return
			}

			fingerprint, err := requestFingerprint(r)
			if err != nil {
				response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "could not read request body")
				return
			}
			res, err := store.Begin(r.Context(), scope, key, fingerprint, ttl)
			if err != nil {
				// Degrade to non-idempotent processing rather than
				// refusing the request outright.
				slog.WarnContext(r.Context(), "idempotency store unavailable", "scope", scope, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			switch res.State {
			case service.IdempotencyStateReplay:
				if res.Cached.ContentType != "" {
					w.Header().Set("Content-Type", res.Cached.ContentType)
				}
				if res.Cached.Location != "" {
					w.Header().Set("Location", res.Cached.Location)
				}
				w.Header().Set("Idempotency-Replayed", "true")
				w.WriteHeader(res.Cached.StatusCode)
				_, _ = w.Write(res.Cached.Body)
				return
			case service.IdempotencyStateConflict:
				response.Error(w, r, http.StatusConflict, "IDEMPOTENCY_CONFLICT", "idempotency key reused with a different request")
				return
			case service.IdempotencyStateInProgress:
				response.Error(w, r, http.StatusConflict, "IDEMPOTENCY_IN_FLIGHT", "an identical request is still being processed")
				return
			}

			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			if err := store.Complete(r.Context(), scope, key, fingerprint, service.CachedHTTPResponse{
				StatusCode:  rec.status,
				ContentType: rec.Header().Get("Content-Type"),
				Location:    rec.Header().Get("Location"),
				Body:        rec.body.Bytes(),
			}, ttl); err != nil {
				slog.WarnContext(r.Context(), "idempotency completion failed", "scope", scope, "error", err)
			}
		})
	}
}

// requestFingerprint binds the key to the request it was first used with.
func requestFingerprint(r *http.Request) (string, error) {
	sum := sha256.New()
	sum.Write([]byte(r.Method))
	sum.Write([]byte{0})
	sum.Write([]byte(r.URL.Path))
	sum.Write([]byte{0})
	sum.Write([]byte(r.URL.RawQuery))
	sum.Write([]byte{0})
	if r.Body != nil {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return "", err
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		sum.Write(body)
	}
	return hex.EncodeToString(sum.Sum(nil)), nil
}

type responseRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
