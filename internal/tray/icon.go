// Package tray drives the system tray indicator used to draw attention to
// pending notifications.
package tray

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// Icon is the visual tray indicator. Implementations must be safe for use
// from the flashing goroutine and the caller of Disable.
type Icon interface {
	// Blank shows the alternate (empty) state.
	Blank() error
	// Restore shows the default state.
	Restore() error
}

// Marker is implemented by icons that signal attention with a static mark
// instead of flashing. The flasher calls Mark on enable and Restore on
// disable, and never starts a periodic task for them.
type Marker interface {
	Mark() error
}

// NewIcon returns the icon implementation for mode ("icon" or "title").
func NewIcon(mode string) (Icon, error) {
	switch mode {
	case "icon":
		return &LogIcon{}, nil
	case "title":
		return NewTitleIcon(logTitle{}), nil
	default:
		return nil, fmt.Errorf("unsupported tray mode: %s", mode)
	}
}

// LogIcon is a headless icon that records each state change in the log.
type LogIcon struct {
	mu    sync.Mutex
	blank bool
}

func (i *LogIcon) Blank() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.blank = true
	log.Trace().Msg("Tray icon blanked")
	return nil
}

func (i *LogIcon) Restore() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.blank = false
	log.Trace().Msg("Tray icon restored")
	return nil
}

// IsBlank reports the current state.
func (i *LogIcon) IsBlank() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.blank
}

// TitleSetter sets the text shown next to the tray icon.
type TitleSetter interface {
	SetTitle(title string) error
}

// TitleIcon signals attention through the tray title, the way menu bar
// apps show a badge count.
type TitleIcon struct {
	setter TitleSetter
}

var _ Marker = (*TitleIcon)(nil)

// NewTitleIcon creates a title based icon.
func NewTitleIcon(setter TitleSetter) *TitleIcon {
	return &TitleIcon{setter: setter}
}

func (i *TitleIcon) Mark() error    { return i.setter.SetTitle(" 1") }
func (i *TitleIcon) Blank() error   { return i.setter.SetTitle("") }
func (i *TitleIcon) Restore() error { return i.setter.SetTitle("") }

type logTitle struct{}

func (logTitle) SetTitle(title string) error {
	log.Debug().Str("title", title).Msg("Tray title set")
	return nil
}
