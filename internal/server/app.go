// Package server provides the service orchestration for deskmatter.
//
// This package coordinates the startup and shutdown of all components:
//   - HTTP listener lifecycle (at most one bound listener)
//   - Background engine (repeat task materializer)
//   - Tray flasher
//
// The App follows a structured lifecycle:
//  1. HTTP listener bind
//  2. Background engine startup
//  3. Wait for cancellation
//  4. Graceful shutdown in reverse order
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"deskmatter/internal/api"
	"deskmatter/internal/calendar"
	"deskmatter/internal/config"
	"deskmatter/internal/core"
	"deskmatter/internal/metrics"
	"deskmatter/internal/state"
	"deskmatter/internal/storage"
	"deskmatter/internal/tray"
)

// App is the composition root of the running service.
//
// It owns the store handle passed in by the caller but does not close it.
type App struct {
	cfg       *config.Config
	lifecycle *Lifecycle
	flasher   *tray.Flasher
	engine    *core.Engine
	calendar  *calendar.Manager
	metrics   *metrics.Metrics
}

// NewApp wires every component around store.
//
// Parameters:
//   - cfg: Validated application configuration
//   - store: Open store
//
// Returns:
//   - *App: Wired, not yet started application
//   - error: Invalid tray mode
func NewApp(cfg *config.Config, store storage.Store) (*App, error) {
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	icon, err := tray.NewIcon(cfg.Tray.Mode)
	if err != nil {
		return nil, err
	}

	app := &App{
		cfg:      cfg,
		flasher:  tray.NewFlasher(icon, cfg.Tray.Interval, m),
		calendar: calendar.NewManager(),
		metrics:  m,
	}

	app.lifecycle = NewLifecycle(cfg.Server, store, app.router, m)
	app.engine = core.NewEngine(cfg.Scheduler, app.lifecycle, m)

	return app, nil
}

// router builds the HTTP handler for a fresh shared state.
func (a *App) router(st *state.State) http.Handler {
	return api.NewRouter(st, api.Options{
		Metrics:  a.metrics,
		Flasher:  a.flasher,
		Calendar: a.calendar.Source(),
		Status:   a.lifecycle,
		Engine:   a.engine,
	})
}

// Lifecycle returns the HTTP listener lifecycle.
func (a *App) Lifecycle() *Lifecycle { return a.lifecycle }

// Flasher returns the tray flasher.
func (a *App) Flasher() *tray.Flasher { return a.flasher }

// Engine returns the background engine.
func (a *App) Engine() *core.Engine { return a.engine }

// Run starts every component and blocks until ctx is cancelled, then
// shuts them down.
//
// Returns an error if the listener cannot be bound or the engine fails to
// start. Shutdown problems are logged, not returned.
func (a *App) Run(ctx context.Context) error {
	if err := a.lifecycle.Start(a.cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	if err := a.engine.Start(ctx); err != nil {
		a.shutdown()
		return fmt.Errorf("failed to start engine: %w", err)
	}

	log.Info().Int("port", a.cfg.Server.Port).Msg("deskmatter is running")

	<-ctx.Done()
	log.Info().Msg("Shutdown signal received, starting graceful shutdown")

	a.shutdown()
	log.Info().Msg("Server stopped gracefully")
	return nil
}

// shutdown stops the engine, the listener and the flasher.
func (a *App) shutdown() {
	a.engine.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout+time.Second)
	defer cancel()
	if err := a.lifecycle.StopContext(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to stop HTTP server")
	}

	a.flasher.Disable()
}
