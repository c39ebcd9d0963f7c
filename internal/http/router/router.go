package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/shareport/shareport/internal/http/handler"
	"github.com/shareport/shareport/internal/http/middleware"
	"github.com/shareport/shareport/internal/http/response"
	"github.com/shareport/shareport/internal/service"
)

// ReadinessProbe checks one dependency; the name keys the result in the
// health payload.
type ReadinessProbe struct {
	Name  string
	Check func(ctx context.Context) error
}

type Dependencies struct {
	AuthHandler     *handler.AuthHandler
	ProjectHandler  *handler.ProjectHandler
	FileHandler     *handler.FileHandler
	SettingsHandler *handler.SettingsHandler
	ShareHandler    *handler.ShareHandler

	Auth        middleware.SessionValidator
	Idempotency service.IdempotencyStore

	APIRateLimitRPM  int
	AuthRateLimitRPM int
	IdempotencyTTL   time.Duration
	ReadinessProbes  []ReadinessProbe
	EnableOTelHTTP   bool
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.BodyLimit(1 << 20))
	r.Use(middleware.NewRateLimiter(dep.APIRateLimitRPM, time.Minute, "api").Middleware())

	authLimiter := middleware.NewRateLimiter(dep.AuthRateLimitRPM, time.Minute, "auth").Middleware()
	requireSession := middleware.RequireSession(dep.Auth)

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{}
		ready := true
		for _, probe := range dep.ReadinessProbes {
			if err := probe.Check(r.Context()); err != nil {
				checks[probe.Name] = err.Error()
				ready = false
				continue
			}
			checks[probe.Name] = "ok"
		}
		if !ready {
			response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready")
			return
		}
		response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": checks})
	})

	// Public share surface. Idempotency keys let a client retry a timed-out
	// download without consuming a second rate-window slot.
	r.With(middleware.Idempotency(dep.Idempotency, "share_download", dep.IdempotencyTTL)).
		Get("/s/{publicID}", dep.ShareHandler.Download)

	r.Route("/api/v1", func(r chi.Router) {
		r.With(authLimiter).Post("/auth/login", dep.AuthHandler.Login)
		r.With(requireSession, middleware.CSRFMiddleware).Post("/auth/logout", dep.AuthHandler.Logout)
		r.With(requireSession).Get("/me", dep.AuthHandler.Me)

		r.Group(func(r chi.Router) {
			r.Use(requireSession)
			r.Use(middleware.CSRFMiddleware)

			r.Get("/settings/global", dep.SettingsHandler.GetGlobal)
			r.Put("/settings/global", dep.SettingsHandler.PutGlobal)

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", dep.ProjectHandler.List)
				r.Post("/", dep.ProjectHandler.Create)
				r.Route("/{projectID}", func(r chi.Router) {
					r.Get("/", dep.ProjectHandler.Get)
					r.Patch("/", dep.ProjectHandler.Update)
					r.Delete("/", dep.ProjectHandler.Delete)
					r.Get("/settings", dep.SettingsHandler.GetProject)
					r.Put("/settings", dep.SettingsHandler.PutProject)
					r.Delete("/settings", dep.SettingsHandler.DeleteProject)
					r.Get("/files", dep.FileHandler.List)
					r.With(middleware.Idempotency(dep.Idempotency, "file_register", dep.IdempotencyTTL)).
						Post("/files", dep.FileHandler.Register)
				})
			})

			r.Route("/files/{fileID}", func(r chi.Router) {
				r.Get("/", dep.FileHandler.Get)
				r.Delete("/", dep.FileHandler.Delete)
				r.Get("/settings", dep.SettingsHandler.GetFile)
				r.Put("/settings", dep.SettingsHandler.PutFile)
				r.Delete("/settings", dep.SettingsHandler.DeleteFile)
				r.Put("/password", dep.FileHandler.SetSharePassword)
				r.Delete("/password", dep.FileHandler.ClearSharePassword)
			})
		})
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
