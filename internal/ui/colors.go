package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/cinemate/internal/state"
)

var (
	darkStyles  = NewPalette("#7D56F4", "#04B575", "#FF5F5F", "#FFA500", "#5FAFFF", "#8A8A8A", "#EEEEEE")
	lightStyles = NewPalette("#5A32C8", "#007A4D", "#C00000", "#B35900", "#005FAF", "#6C6C6C", "#1C1C1C")
)

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title    lipgloss.Style
	ok       lipgloss.Style
	err      lipgloss.Style
	warn     lipgloss.Style
	info     lipgloss.Style
	help     lipgloss.Style
	text     lipgloss.Style
	muted    lipgloss.Style
	selected lipgloss.Style
	border   lipgloss.Style
}

// NewPalette builds a palette from title, success, error, warning, info, muted and body text colors.
func NewPalette(t, s, e, w, i, m, b string) *Palette {
	return &Palette{
		title:    NewBold(t).MarginBottom(1),
		ok:       NewBold(s),
		err:      NewBold(e),
		warn:     NewBold(w),
		info:     NewStyle(i),
		help:     NewEm(m),
		text:     NewStyle(b),
		muted:    NewStyle(m),
		selected: NewBold(t).Underline(true),
		border:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(t)).Padding(0, 1),
	}
}

// PaletteFor returns the stylesheet for a theme mode.
func PaletteFor(mode state.Mode) *Palette {
	if mode == state.Dark {
		return darkStyles
	}
	return lightStyles
}

// Notice renders an alert in the style of its severity.
func (p *Palette) Notice(n state.Notice) string {
	switch n.Severity {
	case state.SeveritySuccess:
		return p.ok.Render("✓ " + n.Message)
	case state.SeverityWarning:
		return p.warn.Render("! " + n.Message)
	case state.SeverityInfo:
		return p.info.Render("i " + n.Message)
	default:
		return p.err.Render("✗ " + n.Message)
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
