// Package core provides the background engine for deskmatter.
//
// The engine is responsible for:
//   - Running the scheduler worker pool
//   - Materializing today's matters from active repeat tasks
//
// Every store access goes through a Borrower so background work is
// serialized with HTTP handlers on the same lock.
package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"deskmatter/internal/config"
	"deskmatter/internal/metrics"
	"deskmatter/internal/storage"
)

// RepeatJobID identifies the repeat task materializer job.
const RepeatJobID = "repeat_tasks"

// Borrower lends the store for one operation at a time.
type Borrower interface {
	Do(fn func(storage.Store) error) error
}

// Engine represents the background engine.
type Engine struct {
	config       config.SchedulerConfig
	scheduler    *Scheduler
	materializer *Materializer

	// Internal state
	running bool
	mu      sync.RWMutex
	cancel  context.CancelFunc
}

// NewEngine creates a new engine.
//
// Parameters:
//   - cfg: Scheduler configuration
//   - borrower: Store access shared with the HTTP handlers
//   - m: Metrics sink (maybe nil)
//
// Returns:
//   - *Engine: Initialized engine instance
func NewEngine(cfg config.SchedulerConfig, borrower Borrower, m *metrics.Metrics) *Engine {
	return &Engine{
		config:       cfg,
		scheduler:    NewScheduler(cfg),
		materializer: NewMaterializer(borrower, m),
	}
}

// Start starts the scheduler and registers the repeat task job. It is a
// no-op returning nil when the scheduler is disabled in config.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return fmt.Errorf("engine is already running")
	}

	if !e.config.Enabled {
		log.Info().Msg("Background engine disabled")
		return nil
	}

	engineCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel

	log.Info().Msg("Starting background engine")

	if err := e.scheduler.Start(engineCtx); err != nil {
		cancel()
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	job := &ScheduledJob{
		ID:       RepeatJobID,
		Interval: e.config.DefaultInterval,
		Task: func(ctx context.Context) error {
			_, err := e.materializer.Run(ctx, time.Now())
			return err
		},
	}
	if err := e.scheduler.AddJob(job); err != nil {
		e.scheduler.Stop()
		cancel()
		return fmt.Errorf("failed to schedule repeat tasks: %w", err)
	}

	e.running = true
	log.Info().Dur("interval", e.config.DefaultInterval).Msg("Background engine started")

	return nil
}

// IsRunning returns whether the engine is currently running.
func (e *Engine) IsRunning() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.running
}

// JobCount returns the number of scheduled jobs.
func (e *Engine) JobCount() int {
	return e.scheduler.GetJobCount()
}

// Materialize runs the repeat task materializer once for the day of now.
func (e *Engine) Materialize(ctx context.Context, now time.Time) (int, error) {
	return e.materializer.Run(ctx, now)
}

// Stop stops the engine and waits for running jobs.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}

	log.Info().Msg("Stopping background engine")

	if e.cancel != nil {
		e.cancel()
	}
	e.scheduler.Stop()

	e.running = false
	log.Info().Msg("Background engine stopped")
}
