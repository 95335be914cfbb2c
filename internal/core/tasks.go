package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"deskmatter/internal/metrics"
	"deskmatter/internal/storage"
)

// PriorityColor returns the calendar colour for a priority.
func PriorityColor(priority int) string {
	switch priority {
	case storage.PriorityLow:
		return "green"
	case storage.PriorityHigh:
		return "red"
	default:
		return "blue"
	}
}

// Materializer creates the day's matter for every active repeat task.
type Materializer struct {
	borrower Borrower
	metrics  *metrics.Metrics

	// runMu serializes runs; the borrower may switch locks between calls
	// when the HTTP server starts or stops.
	runMu sync.Mutex
}

// NewMaterializer creates a materializer.
func NewMaterializer(borrower Borrower, m *metrics.Metrics) *Materializer {
	return &Materializer{borrower: borrower, metrics: m}
}

// Run creates matters for tasks whose rule matches the day of now, skipping
// tasks that already have a matter that day. It returns the number of
// matters created. Per-task failures are collected and do not stop the run.
func (m *Materializer) Run(ctx context.Context, now time.Time) (int, error) {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	var tasks []storage.RepeatTask
	err := m.borrower.Do(func(store storage.Store) error {
		var err error
		tasks, err = store.RepeatTasks().GetActive(ctx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to load active repeat tasks: %w", err)
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	created := 0
	var errs []error
	for i := range tasks {
		if ctx.Err() != nil {
			return created, ctx.Err()
		}

		ok, err := m.materialize(ctx, &tasks[i], now, dayStart, dayEnd)
		if err != nil {
			log.Warn().Str("task_id", tasks[i].ID).Err(err).Msg("Failed to materialize repeat task")
			errs = append(errs, fmt.Errorf("task %s: %w", tasks[i].ID, err))
			continue
		}
		if ok {
			created++
			m.metrics.RecordRepeatMatter()
		}
	}

	if created > 0 {
		log.Info().Int("created", created).Int("active", len(tasks)).Msg("Repeat matters created")
	}

	return created, errors.Join(errs...)
}

func (m *Materializer) materialize(ctx context.Context, task *storage.RepeatTask, now, dayStart, dayEnd time.Time) (bool, error) {
	rule, err := storage.ParseRepeatTime(task.RepeatTime)
	if err != nil {
		return false, err
	}
	if !rule.Matches(now) {
		return false, nil
	}

	start, end := rule.Window(now)
	matter := &storage.Matter{
		ID:          uuid.NewString(),
		Title:       task.Title,
		Description: task.Description,
		Tags:        task.Tags,
		StartTime:   start.UTC(),
		EndTime:     end.UTC(),
		Priority:    task.Priority,
		Type:        storage.MatterTypeRepeat,
		Reserved1:   PriorityColor(task.Priority),
		Reserved2:   task.ID,
	}

	// Count and create under one borrow.
	created := false
	err = m.borrower.Do(func(store storage.Store) error {
		existing, err := store.Matters().CountForRepeatTask(ctx, task.ID, dayStart, dayEnd)
		if err != nil {
			return err
		}
		if existing > 0 {
			return nil
		}
		if err := store.Matters().Create(ctx, matter); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil || !created {
		return false, err
	}

	log.Debug().Str("task_id", task.ID).Str("matter_id", matter.ID).Msg("Repeat matter created")
	return true, nil
}
