package state

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/cinemate/internal/repositories"
	"github.com/desertthunder/cinemate/internal/shared"
)

// Mode is a color scheme.
type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

// ParseMode accepts "light" or "dark", ignoring case and surrounding space.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, nil
	case Dark:
		return Dark, nil
	}
	return "", fmt.Errorf("%w: theme %q (want light or dark)", shared.ErrInvalidArgument, s)
}

// Theme is the persisted color scheme.
type Theme struct {
	storage repositories.Slots

	mu       sync.RWMutex
	mode     Mode
	onChange func(Mode)
}

// NewTheme loads the mode from storage, else from preferred (the configured default),
// else from the terminal background reported by detectDark, else light. The result is persisted.
//
// detectDark may be nil to ask the terminal through lipgloss.
func NewTheme(storage repositories.Slots, preferred string, detectDark func() bool) (*Theme, error) {
	if detectDark == nil {
		detectDark = lipgloss.HasDarkBackground
	}

	mode := Light
	stored, ok, err := storage.Get(repositories.ThemeSlot)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme: %w", err)
	}

	if m, err := ParseMode(stored); ok && err == nil {
		mode = m
	} else if m, err := ParseMode(preferred); err == nil {
		mode = m
	} else if detectDark() {
		mode = Dark
	}

	t := &Theme{storage: storage, mode: mode}
	if err := t.persist(mode); err != nil {
		return nil, err
	}
	return t, nil
}

// Mode returns the current color scheme.
func (t *Theme) Mode() Mode {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.mode
}

// IsDark reports whether the dark scheme is active.
func (t *Theme) IsDark() bool { return t.Mode() == Dark }

// OnChange registers fn to run after every change.
func (t *Theme) OnChange(fn func(Mode)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onChange = fn
}

// Set switches to mode and persists it.
func (t *Theme) Set(mode Mode) error {
	if _, err := ParseMode(string(mode)); err != nil {
		return err
	}
	if err := t.persist(mode); err != nil {
		return err
	}

	t.mu.Lock()
	t.mode = mode
	fn := t.onChange
	t.mu.Unlock()

	if fn != nil {
		fn(mode)
	}
	return nil
}

// Toggle flips between light and dark and returns the new mode.
func (t *Theme) Toggle() (Mode, error) {
	next := Dark
	if t.IsDark() {
		next = Light
	}
	if err := t.Set(next); err != nil {
		return t.Mode(), err
	}
	return next, nil
}

func (t *Theme) persist(mode Mode) error {
	if err := t.storage.Set(repositories.ThemeSlot, string(mode)); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	return nil
}
