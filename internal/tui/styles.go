package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/timetable/internal/render"
	"github.com/javiermolinar/timetable/internal/tui/theme"
)

// Styles holds the lipgloss styles derived from a theme.
type Styles struct {
	Title   lipgloss.Style
	Week    lipgloss.Style
	Status  lipgloss.Style
	Error   lipgloss.Style
	Prompt  lipgloss.Style
	Table   render.TableStyles
	Entries lipgloss.Style
	Current lipgloss.Style
}

// NewStyles derives the browser styles from t.
func NewStyles(t *theme.Theme) *Styles {
	fg := theme.Color(t.Fg)
	muted := theme.Color(t.FgMuted)
	cell := lipgloss.NewStyle().Padding(0, 1)

	header := lipgloss.NewStyle().Bold(true).Foreground(theme.Color(t.Accent))
	if t.BgHighlight != "" {
		header = header.Background(theme.Color(t.BgHighlight))
	}

	return &Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(theme.Color(t.Accent)),
		Week:   lipgloss.NewStyle().Foreground(fg),
		Status: lipgloss.NewStyle().Foreground(muted),
		Error:  lipgloss.NewStyle().Bold(true).Foreground(theme.Color(t.Warning)),
		Prompt: lipgloss.NewStyle().Foreground(theme.Color(t.Warning)),
		Table: render.TableStyles{
			Header: header.Padding(0, 1),
			Lesson: cell.Foreground(theme.Color(t.Lesson)),
			Muted:  cell.Foreground(theme.Color(t.Gap)),
			Border: lipgloss.NewStyle().Foreground(muted),
		},
		Entries: lipgloss.NewStyle().Foreground(muted),
		Current: lipgloss.NewStyle().Bold(true).Underline(true).Foreground(fg),
	}
}
