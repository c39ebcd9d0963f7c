package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shareport/shareport/internal/config"
	"github.com/shareport/shareport/internal/observability"
	"github.com/shareport/shareport/internal/repository"
)

const (
	shutdownTimeout      = 10 * time.Second
	sessionSweepInterval = time.Hour
)

// App ties the HTTP server, the observability runtime, and the background
// session sweeper into one lifecycle.
type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Server        *http.Server
	Observability *observability.Runtime
	Sessions      repository.SessionRepository
}

func New(cfg *config.Config, logger *slog.Logger, server *http.Server, runtime *observability.Runtime, sessions repository.SessionRepository) *App {
	return &App{
		Config:        cfg,
		Logger:        logger,
		Server:        server,
		Observability: runtime,
		Sessions:      sessions,
	}
}

// Run serves until ctx is canceled, then drains connections and flushes
// telemetry. It returns the first fatal error from any component.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.Info("http server listening", "addr", a.Server.Addr)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		a.sweepSessions(ctx)
		ticker := time.NewTicker(sessionSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				a.sweepSessions(ctx)
			}
		}
	})

	g.Go(func() error {
		<-ctx.Done()
		drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.Logger.Info("shutting down")
		err := a.Server.Shutdown(drainCtx)
		if a.Observability != nil {
			err = errors.Join(err, a.Observability.Shutdown(drainCtx))
		}
		return err
	})

	return g.Wait()
}

// sweepSessions deletes rows whose expiry has passed. Validation never trusts
// stored rows anyway; this only keeps the table from growing without bound.
func (a *App) sweepSessions(ctx context.Context) {
	if a.Sessions == nil {
		return
	}
	removed, err := a.Sessions.CleanupExpired(time.Now().UTC())
	if err != nil {
		a.Logger.WarnContext(ctx, "session sweep failed", "error", err)
		return
	}
	if removed > 0 {
		a.Logger.InfoContext(ctx, "expired sessions removed", "count", removed)
	}
}
