// Package state holds the mutex-guarded container shared between the HTTP
// handlers and the server lifecycle.
package state

import (
	"sync"

	"deskmatter/internal/storage"
)

// State guards the store handle and the one-shot shutdown signal.
//
// Handlers borrow the store through Do for exactly one store operation.
// The lifecycle consumes the shutdown signal through TryTakeShutdown.
type State struct {
	mu       sync.Mutex
	shutdown chan struct{}
	store    storage.Store
}

// New creates a State around store with a fresh shutdown signal.
func New(store storage.Store) *State {
	return &State{
		shutdown: make(chan struct{}),
		store:    store,
	}
}

// Do runs fn with the store while holding the lock.
func (s *State) Do(fn func(storage.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.store)
}

// Shutdown returns the channel closed when the shutdown signal is consumed.
// The returned channel is captured once at startup and never changes.
func (s *State) Shutdown() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdown
}

// TryTakeShutdown attempts to consume the shutdown signal without blocking.
//
// Returns:
//   - acquired: false when the lock was contended; nothing changed
//   - fired: true when a signal was present and has now been sent
func (s *State) TryTakeShutdown() (acquired, fired bool) {
	if !s.mu.TryLock() {
		return false, false
	}
	defer s.mu.Unlock()

	if s.shutdown == nil {
		return true, false
	}
	close(s.shutdown)
	s.shutdown = nil
	return true, true
}

// Borrow runs fn with the store while holding the lock and returns its result.
func Borrow[T any](s *State, fn func(storage.Store) (T, error)) (T, error) {
	var result T
	err := s.Do(func(store storage.Store) error {
		var err error
		result, err = fn(store)
		return err
	})
	return result, err
}
