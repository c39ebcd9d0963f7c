package observability

import (
	"log/slog"
	"net/http"
)

// Audit emits one structured line per security-relevant event: every login
// attempt, logout, and share-gate decision goes through here.
func Audit(r *http.Request, event string, attrs ...any) {
	base := []any{
		"event", event,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", r.Header.Get("X-Request-Id"),
	}
	base = append(base, attrs...)
	slog.InfoContext(r.Context(), "audit", base...)
}
