package tray

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"deskmatter/internal/metrics"
)

// DefaultInterval is the flash period used when none is configured.
const DefaultInterval = 500 * time.Millisecond

// Flasher is a two-state machine (Idle, Flashing) guarding at most one
// periodic flashing task.
//
// The lock is held only for transitions. The task never takes it: it reads
// the running flag on every tick, so a disable takes effect within one
// interval even if cancellation is not observed first.
type Flasher struct {
	mu       sync.Mutex
	icon     Icon
	interval time.Duration
	metrics  *metrics.Metrics

	running atomic.Bool
	task    *flashTask
	active  atomic.Int32
}

type flashTask struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// NewFlasher creates an idle flasher.
//
// Parameters:
//   - icon: Visual indicator to alternate
//   - interval: Flash period, DefaultInterval when zero
//   - m: Metrics sink (maybe nil)
func NewFlasher(icon Icon, interval time.Duration, m *metrics.Metrics) *Flasher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Flasher{
		icon:     icon,
		interval: interval,
		metrics:  m,
	}
}

// Enable starts flashing. It is a no-op while already flashing.
func (f *Flasher) Enable() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.running.Load() {
		return
	}
	f.running.Store(true)
	f.metrics.SetTrayFlashing(true)

	if marker, ok := f.icon.(Marker); ok {
		if err := marker.Mark(); err != nil {
			log.Warn().Err(err).Msg("Failed to mark tray icon")
		}
		log.Info().Msg("Tray attention mark set")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	task := &flashTask{cancel: cancel, done: make(chan struct{})}
	f.task = task
	f.active.Add(1)

	go f.run(ctx, task.done)

	log.Info().Dur("interval", f.interval).Msg("Tray flashing started")
}

// Disable stops flashing and restores the default icon. It waits for the
// flashing task to exit and is a no-op while idle.
func (f *Flasher) Disable() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.running.Load() && f.task == nil {
		return
	}
	f.running.Store(false)

	if f.task != nil {
		f.task.cancel()
		<-f.task.done
		f.task = nil
	}

	if err := f.icon.Restore(); err != nil {
		log.Warn().Err(err).Msg("Failed to restore tray icon")
	}
	f.metrics.SetTrayFlashing(false)

	log.Info().Msg("Tray flashing stopped")
}

// Restart stops any running task and starts a fresh one.
func (f *Flasher) Restart() {
	f.Disable()
	f.Enable()
}

// Toggle enables or disables flashing and always reports success.
func (f *Flasher) Toggle(flash bool) bool {
	if flash {
		f.Enable()
	} else {
		f.Disable()
	}
	return true
}

// Running reports whether the flasher is in the Flashing state.
func (f *Flasher) Running() bool {
	return f.running.Load()
}

// ActiveTasks returns the number of live flashing goroutines.
func (f *Flasher) ActiveTasks() int {
	return int(f.active.Load())
}

// Interval returns the flash period.
func (f *Flasher) Interval() time.Duration {
	return f.interval
}

func (f *Flasher) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer f.active.Add(-1)

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	blank := true
	for {
		if !f.running.Load() {
			return
		}

		var err error
		if blank {
			err = f.icon.Blank()
		} else {
			err = f.icon.Restore()
		}
		if err != nil {
			log.Warn().Err(err).Msg("Failed to update tray icon")
		}
		blank = !blank

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
