// Package calendar exposes OS calendar events as read-only matters.
//
// Native calendar access is platform specific and lives behind the
// EventSource interface. The Manager picks the source registered for the
// running platform and falls back to Unsupported, which reports no events.
//
// Example usage:
//
//	manager := calendar.NewManager()
//	events, err := manager.Source().Events(ctx, start, end)
package calendar

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"deskmatter/internal/storage"
)

// PermissionStatus mirrors the platform authorization states.
type PermissionStatus int

const (
	PermissionNotDetermined PermissionStatus = iota
	PermissionRestricted
	PermissionDenied
	PermissionFullAccess
	PermissionWriteOnly
)

// String returns the status name.
func (s PermissionStatus) String() string {
	switch s {
	case PermissionRestricted:
		return "restricted"
	case PermissionDenied:
		return "denied"
	case PermissionFullAccess:
		return "full_access"
	case PermissionWriteOnly:
		return "write_only"
	default:
		return "not_determined"
	}
}

// Matter is a calendar event in matter shape. Type is always
// storage.MatterTypeCalendar.
type Matter struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Priority    int       `json:"priority"`
	Type        int       `json:"type_"`
	SubType     int       `json:"sub_type"`
}

// EventSource reads events from a platform calendar.
type EventSource interface {
	// Events returns events overlapping [start, end], ordered by start time.
	Events(ctx context.Context, start, end time.Time) ([]Matter, error)

	// PermissionStatus reports the current authorization state.
	PermissionStatus(ctx context.Context) PermissionStatus

	// RequestAccess asks the platform for calendar access.
	RequestAccess(ctx context.Context) error

	// Platform returns the platform identifier (a runtime.GOOS value or "unsupported").
	Platform() string
}

// Manager routes calendar calls to the source of the running platform.
type Manager struct {
	mu      sync.RWMutex
	sources map[string]EventSource
	goos    string
}

// NewManager creates a manager for the running platform.
func NewManager() *Manager {
	return newManager(runtime.GOOS)
}

func newManager(goos string) *Manager {
	return &Manager{
		sources: make(map[string]EventSource),
		goos:    goos,
	}
}

// Register registers a source for its platform, replacing any previous one.
func (m *Manager) Register(source EventSource) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sources[source.Platform()] = source
	log.Debug().Str("platform", source.Platform()).Msg("Calendar source registered")
}

// Source returns the source for the running platform or Unsupported.
func (m *Manager) Source() EventSource {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if source, ok := m.sources[m.goos]; ok {
		return source
	}
	return Unsupported{}
}

// Platforms returns the platforms with a registered source.
func (m *Manager) Platforms() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	platforms := make([]string, 0, len(m.sources))
	for platform := range m.sources {
		platforms = append(platforms, platform)
	}
	sort.Strings(platforms)
	return platforms
}

// Unsupported is the source used where no native calendar is available.
type Unsupported struct{}

func (Unsupported) Events(context.Context, time.Time, time.Time) ([]Matter, error) {
	return []Matter{}, nil
}

func (Unsupported) PermissionStatus(context.Context) PermissionStatus {
	return PermissionNotDetermined
}

func (Unsupported) RequestAccess(context.Context) error {
	log.Warn().Str("platform", runtime.GOOS).Msg("Calendar access is not supported on this platform")
	return nil
}

func (Unsupported) Platform() string { return "unsupported" }

// Static serves a fixed list of events. It backs platform sources that
// sync ahead of time and is used in tests.
//
// Status may change through RequestAccess; read it with PermissionStatus.
type Static struct {
	OS     string
	Status PermissionStatus
	Items  []Matter

	mu sync.RWMutex
}

func (s *Static) Events(ctx context.Context, start, end time.Time) ([]Matter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]Matter, 0, len(s.Items))
	for _, item := range s.Items {
		if !item.StartTime.After(end) && !item.EndTime.Before(start) {
			item.Type = storage.MatterTypeCalendar
			events = append(events, item)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].StartTime.Before(events[j].StartTime)
	})
	return events, nil
}

func (s *Static) PermissionStatus(context.Context) PermissionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status
}

func (s *Static) RequestAccess(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = PermissionFullAccess
	return nil
}

func (s *Static) Platform() string { return s.OS }
