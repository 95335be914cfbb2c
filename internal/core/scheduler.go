// Package core provides scheduling functionality for the background engine.
package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"deskmatter/internal/config"
)

// ScheduledJob represents a job that can be scheduled for periodic execution.
type ScheduledJob struct {
	// ID is a unique identifier for the job
	ID string

	// Interval is how often the job should run
	Interval time.Duration

	// Task is the function to execute
	Task func(context.Context) error

	// Internal fields
	cancel  context.CancelFunc
	running bool
}

// Scheduler runs scheduled jobs on a bounded worker pool.
type Scheduler struct {
	config config.SchedulerConfig

	// Job management
	jobs   map[string]*ScheduledJob
	jobsMu sync.RWMutex

	// Worker pool
	workers chan struct{}

	// Lifecycle management
	running bool
	ctx     context.Context
	mu      sync.RWMutex
	wg      sync.WaitGroup
	cancel  context.CancelFunc

	// backoff is the delay before retry attempt n (1-based)
	backoff func(attempt int) time.Duration
}

// NewScheduler creates a new scheduler with the given configuration.
//
// Parameters:
//   - cfg: Scheduler configuration
//
// Returns:
//   - *Scheduler: Initialized scheduler instance
func NewScheduler(cfg config.SchedulerConfig) *Scheduler {
	workers := cfg.WorkerCount
	if workers < 1 {
		workers = 1
	}
	cfg.WorkerCount = workers

	return &Scheduler{
		config:  cfg,
		jobs:    make(map[string]*ScheduledJob),
		workers: make(chan struct{}, workers),
		backoff: func(attempt int) time.Duration {
			return time.Duration(attempt) * time.Second
		},
	}
}

// Start starts the scheduler and fills the worker pool. Jobs added later
// run until Stop is called or ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	s.ctx, s.cancel = context.WithCancel(ctx)

	for len(s.workers) < cap(s.workers) {
		s.workers <- struct{}{}
	}

	s.running = true
	log.Info().Int("worker_count", s.config.WorkerCount).Msg("Scheduler started")

	return nil
}

// Stop stops the scheduler and waits for running jobs to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	log.Info().Msg("Stopping scheduler")

	if s.cancel != nil {
		s.cancel()
	}

	s.jobsMu.Lock()
	for id, job := range s.jobs {
		s.stopJobUnsafe(job)
		delete(s.jobs, id)
	}
	s.jobsMu.Unlock()

	s.wg.Wait()

	s.running = false
	log.Info().Msg("Scheduler stopped")
}

// AddJob adds a new job to the scheduler and starts it immediately.
//
// Parameters:
//   - job: Job to add and schedule
//
// Returns:
//   - error: Any error that occurred during job addition
func (s *Scheduler) AddJob(job *ScheduledJob) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.running {
		return fmt.Errorf("scheduler is not running")
	}

	if job.Interval <= 0 {
		return fmt.Errorf("job %s has non-positive interval %s", job.ID, job.Interval)
	}

	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	if _, exists := s.jobs[job.ID]; exists {
		return fmt.Errorf("job with ID %s already exists", job.ID)
	}

	s.startJobUnsafe(job)
	s.jobs[job.ID] = job
	log.Debug().Str("job_id", job.ID).Dur("interval", job.Interval).Msg("Job added")

	return nil
}

// RemoveJob removes a job from the scheduler and stops it.
func (s *Scheduler) RemoveJob(jobID string) error {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return fmt.Errorf("job with ID %s not found", jobID)
	}

	s.stopJobUnsafe(job)
	delete(s.jobs, jobID)

	log.Debug().Str("job_id", jobID).Msg("Job removed")
	return nil
}

// GetJobCount returns the number of currently scheduled jobs.
func (s *Scheduler) GetJobCount() int {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()
	return len(s.jobs)
}

// IsRunning returns whether the scheduler is currently running.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// startJobUnsafe starts a job. Callers must hold s.mu (read) and s.jobsMu.
func (s *Scheduler) startJobUnsafe(job *ScheduledJob) {
	jobCtx, cancel := context.WithCancel(s.ctx)
	job.cancel = cancel
	job.running = true

	s.wg.Add(1)
	go s.runJob(jobCtx, job)
}

// stopJobUnsafe cancels a job. Callers must hold s.jobsMu.
func (s *Scheduler) stopJobUnsafe(job *ScheduledJob) {
	if !job.running {
		return
	}
	if job.cancel != nil {
		job.cancel()
	}
	job.running = false
}

// runJob executes the job immediately and then on every tick until its
// context is cancelled.
func (s *Scheduler) runJob(ctx context.Context, job *ScheduledJob) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	log.Debug().Str("job_id", job.ID).Msg("Job started")

	s.executeJobTask(ctx, job)

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("job_id", job.ID).Msg("Job stopped")
			return
		case <-ticker.C:
			s.executeJobTask(ctx, job)
		}
	}
}

// executeJobTask runs the task on a pooled worker. When every worker is
// busy the execution is skipped rather than queued.
func (s *Scheduler) executeJobTask(ctx context.Context, job *ScheduledJob) {
	select {
	case <-s.workers:
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer func() { s.workers <- struct{}{} }()

			s.executeWithRetry(ctx, job)
		}()
	default:
		log.Warn().Str("job_id", job.ID).Msg("No workers available, skipping job execution")
	}
}

// executeWithRetry executes a job task with linear backoff between attempts.
func (s *Scheduler) executeWithRetry(ctx context.Context, job *ScheduledJob) {
	maxRetries := s.config.MaxRetries

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if ctx.Err() != nil {
			return
		}

		err := job.Task(ctx)
		if err == nil {
			if attempt > 0 {
				log.Info().Str("job_id", job.ID).Int("attempt", attempt+1).Msg("Job succeeded after retry")
			}
			return
		}

		if attempt == maxRetries {
			log.Error().Str("job_id", job.ID).Int("attempts", attempt+1).Err(err).Msg("Job failed after all retries")
			return
		}

		log.Warn().Str("job_id", job.ID).Int("attempt", attempt+1).Err(err).Msg("Job failed, retrying")

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.backoff(attempt + 1)):
		}
	}
}
