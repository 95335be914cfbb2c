package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"deskmatter/internal/api/types"
	"deskmatter/internal/config"
	"deskmatter/internal/metrics"
	"deskmatter/internal/state"
	"deskmatter/internal/storage"
)

// ErrNotRunning is returned by Stop when no server is registered.
var ErrNotRunning = types.Startup("HTTP server not running")

// stopRetryInterval is the TryLock retry period of StopContext.
const stopRetryInterval = 10 * time.Millisecond

// RouterFactory builds the HTTP handler bound to a fresh shared state.
type RouterFactory func(st *state.State) http.Handler

// Lifecycle guarantees at most one bound HTTP listener.
//
// The registered instance is a single atomically swapped pointer, so the
// bound port and the registration are always observed together. Start is
// safe to call concurrently: exactly one caller binds, the others either
// join it (same port) or fail with a conflict naming the bound port.
type Lifecycle struct {
	cfg     config.ServerConfig
	store   storage.Store
	router  RouterFactory
	metrics *metrics.Metrics

	current atomic.Pointer[instance]

	// idle serializes store access through Do while no server is registered.
	idle *state.State
}

// instance is one registered server.
type instance struct {
	port     int
	state    *state.State
	shutdown <-chan struct{}
	server   *http.Server

	// ready is closed once the bind outcome is known; err is written
	// before it closes and never after.
	ready chan struct{}
	err   error

	// released is closed when the listener has been closed.
	released chan struct{}
}

// NewLifecycle creates an idle lifecycle.
//
// Parameters:
//   - cfg: Server configuration (host, timeouts)
//   - store: Store handle placed in every shared state
//   - router: Builds the handler for a new shared state
//   - m: Metrics sink (maybe nil)
func NewLifecycle(cfg config.ServerConfig, store storage.Store, router RouterFactory, m *metrics.Metrics) *Lifecycle {
	return &Lifecycle{
		cfg:     cfg,
		store:   store,
		router:  router,
		metrics: m,
		idle:    state.New(store),
	}
}

// Start binds the HTTP listener on port and serves it in the background.
//
// A second call with the same port is a no-op that returns the bind
// outcome of the running server. A call with a different port fails with
// a StartupError naming the bound port and changes nothing. A bind failure
// unregisters the instance so a later Start can retry.
func (l *Lifecycle) Start(port int) error {
	if err := config.ValidatePort(port); err != nil {
		l.metrics.RecordLifecycle("start", "error")
		return &types.ServerError{Kind: types.StartupError, Msg: "invalid port", Err: err}
	}

	for {
		if inst := l.current.Load(); inst != nil {
			return l.join(inst, port)
		}

		st := state.New(l.store)
		candidate := &instance{
			port:     port,
			state:    st,
			shutdown: st.Shutdown(),
			ready:    make(chan struct{}),
			released: make(chan struct{}),
		}

		if l.current.CompareAndSwap(nil, candidate) {
			return l.bind(candidate)
		}
		// Lost the race; the winner is observed on the next iteration.
	}
}

// join resolves a Start call against an already registered instance.
func (l *Lifecycle) join(inst *instance, port int) error {
	if inst.port != port {
		l.metrics.RecordLifecycle("start", "error")
		return types.Startup("HTTP server already running on port %d", inst.port)
	}

	<-inst.ready
	if inst.err != nil {
		l.metrics.RecordLifecycle("start", "error")
		return inst.err
	}

	l.metrics.RecordLifecycle("start", "noop")
	return nil
}

// bind opens the listener for the registered candidate and launches serving.
func (l *Lifecycle) bind(inst *instance) error {
	addr := l.cfg.Addr(inst.port)
	inst.server = &http.Server{
		Addr:         addr,
		Handler:      l.router(inst.state),
		ReadTimeout:  l.cfg.ReadTimeout,
		WriteTimeout: l.cfg.WriteTimeout,
		IdleTimeout:  l.cfg.IdleTimeout,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		inst.err = &types.ServerError{Kind: types.StartupError, Msg: "failed to bind " + addr, Err: err}
		l.current.CompareAndSwap(inst, nil)
		close(inst.released)
		close(inst.ready)

		l.metrics.RecordLifecycle("start", "error")
		log.Error().Err(err).Str("addr", addr).Msg("Failed to bind HTTP listener")
		return inst.err
	}

	close(inst.ready)
	l.metrics.RecordLifecycle("start", "ok")
	l.metrics.SetServerRunning(true)

	go l.serve(inst, &releaseListener{Listener: ln, released: inst.released})
	return nil
}

// serve runs the server until the shutdown signal fires or the listener fails.
func (l *Lifecycle) serve(inst *instance, ln net.Listener) {
	errCh := make(chan error, 1)
	go func() {
		errCh <- inst.server.Serve(ln)
	}()

	log.Info().Str("addr", ln.Addr().String()).Msg("HTTP server listening")

	select {
	case <-inst.shutdown:
		ctx, cancel := context.WithTimeout(context.Background(), l.cfg.ShutdownTimeout)
		defer cancel()

		if err := inst.server.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("HTTP server shutdown timed out, closing connections")
			_ = inst.server.Close()
		}
		<-errCh
		log.Info().Int("port", inst.port).Msg("HTTP server stopped")

	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Int("port", inst.port).Msg("HTTP server stopped unexpectedly")
		}
		l.current.CompareAndSwap(inst, nil)
		_ = ln.Close()
	}

	l.metrics.SetServerRunning(false)
}

// Stop signals the running server to shut down.
//
// Without a registered server it returns ErrNotRunning. The shared state
// lock is only tried, never waited on: when a handler holds it, Stop logs
// a warning and returns nil with the server still running. Use StopContext
// to retry until the lock is free.
func (l *Lifecycle) Stop() error {
	_, err := l.tryStop()
	return err
}

// StopContext is Stop retried every few milliseconds while the shared
// state lock is contended. It returns ctx.Err() if ctx ends first.
func (l *Lifecycle) StopContext(ctx context.Context) error {
	for {
		done, err := l.tryStop()
		if done || err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(stopRetryInterval):
		}
	}
}

// tryStop makes one stop attempt. done is false when the lock was contended.
func (l *Lifecycle) tryStop() (bool, error) {
	inst := l.current.Load()
	if inst == nil {
		l.metrics.RecordLifecycle("stop", "error")
		return true, ErrNotRunning
	}

	<-inst.ready
	if inst.err != nil {
		l.metrics.RecordLifecycle("stop", "error")
		return true, ErrNotRunning
	}

	acquired, fired := inst.state.TryTakeShutdown()
	if !acquired {
		l.metrics.RecordLifecycle("stop", "noop")
		log.Warn().Int("port", inst.port).Msg("Shared state busy, stop skipped")
		return false, nil
	}
	if !fired {
		// A concurrent Stop already consumed the signal.
		l.metrics.RecordLifecycle("stop", "noop")
		return true, nil
	}

	l.current.CompareAndSwap(inst, nil)

	timeout := l.cfg.ReleaseTimeout
	if timeout <= 0 {
		timeout = time.Second
	}
	select {
	case <-inst.released:
	case <-time.After(timeout):
		log.Warn().Int("port", inst.port).Dur("timeout", timeout).Msg("Listener not released in time")
	}

	l.metrics.RecordLifecycle("stop", "ok")
	log.Info().Int("port", inst.port).Msg("HTTP server stop requested")
	return true, nil
}

// Port returns the registered port, or 0 when none is registered.
func (l *Lifecycle) Port() int {
	if inst := l.current.Load(); inst != nil {
		return inst.port
	}
	return 0
}

// Running reports whether a server is registered and bound.
func (l *Lifecycle) Running() bool {
	inst := l.current.Load()
	if inst == nil {
		return false
	}
	select {
	case <-inst.ready:
		return inst.err == nil
	default:
		return false
	}
}

// Do runs fn with the store under the lock of the running server's shared
// state, or under a standby lock while no server runs.
func (l *Lifecycle) Do(fn func(storage.Store) error) error {
	if inst := l.current.Load(); inst != nil {
		return inst.state.Do(fn)
	}
	return l.idle.Do(fn)
}

// releaseListener closes released the first time the listener is closed.
type releaseListener struct {
	net.Listener
	released chan struct{}
	once     sync.Once
}

func (r *releaseListener) Close() error {
	err := r.Listener.Close()
	r.once.Do(func() { close(r.released) })
	return err
}
