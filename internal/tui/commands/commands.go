// Package commands provides TUI command constructors and message types.
package commands

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/timetable/internal/collapse"
	"github.com/javiermolinar/timetable/internal/timetable"
)

// Source is the part of the store the browser reads.
type Source interface {
	Load(ctx context.Context, entity string, week timetable.Week) (timetable.GroupGrid, error)
	Entities(ctx context.Context, week timetable.Week) ([]string, error)
}

// EntitiesLoadedMsg is sent when the stored entities of a week are known.
type EntitiesLoadedMsg struct {
	Names []string
}

// WeekLoadedMsg is sent when the week of an entity is loaded and collapsed.
type WeekLoadedMsg struct {
	Entity string
	Week   timetable.Week
	Days   [][]collapse.Row
	Slots  int
}

// ErrMsg is sent when an error occurs.
type ErrMsg struct {
	Err error
}

// LoadEntities lists the entities stored for a week.
func LoadEntities(src Source, week timetable.Week) tea.Cmd {
	return func() tea.Msg {
		names, err := src.Entities(context.Background(), week)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return EntitiesLoadedMsg{Names: names}
	}
}

// LoadWeek loads the stored week of an entity.
func LoadWeek(src Source, entity string, week timetable.Week) tea.Cmd {
	return func() tea.Msg {
		grid, err := src.Load(context.Background(), entity, week)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return WeekLoadedMsg{
			Entity: entity,
			Week:   week,
			Days:   collapse.Group(grid),
			Slots:  grid.Slots(),
		}
	}
}
