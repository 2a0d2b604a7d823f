// Package tui provides the terminal week browser over stored timetables.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/timetable/internal/collapse"
	"github.com/javiermolinar/timetable/internal/render"
	"github.com/javiermolinar/timetable/internal/timetable"
	"github.com/javiermolinar/timetable/internal/tui/commands"
	"github.com/javiermolinar/timetable/internal/tui/theme"
)

// Options configure a browser.
type Options struct {
	// Entities to page through; the stored ones of the week when empty.
	Entities []string
	// Entity selected first.
	Entity string
	Week   timetable.Week
	Locale render.Locale
	Theme  string
}

// Model is the main TUI model.
type Model struct {
	source commands.Source
	locale render.Locale
	styles *Styles
	keys   keyMap
	help   help.Model
	input  textinput.Model
	now    func() timetable.Week

	entities []string
	current  int
	week     timetable.Week

	days      [][]collapse.Row
	slots     int
	loaded    bool
	err       error
	prompting bool

	width  int
	height int
}

// New creates a browser reading from src.
func New(src commands.Source, opts Options) Model {
	t, err := theme.Load(opts.Theme)
	if err != nil {
		t = &theme.Theme{Name: "plain", Fg: "7", FgMuted: "8", Accent: "15", Lesson: "7", Gap: "8", Warning: "11"}
	}
	loc := opts.Locale
	if loc.Code == "" {
		loc = render.Russian
	}

	input := textinput.New()
	input.Prompt = "group: "
	input.CharLimit = 64

	m := Model{
		source:   src,
		locale:   loc,
		styles:   NewStyles(t),
		keys:     defaultKeys(),
		help:     help.New(),
		input:    input,
		now:      timetable.CurrentWeek,
		entities: append([]string(nil), opts.Entities...),
		week:     opts.Week,
	}
	if m.week.IsZero() {
		m.week = m.now()
	}
	if opts.Entity != "" {
		m.current = m.selectEntity(opts.Entity)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if len(m.entities) == 0 {
		return commands.LoadEntities(m.source, m.week)
	}
	return m.reload()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case commands.EntitiesLoadedMsg:
		m.entities = msg.Names
		m.current = 0
		cmd := m.refresh()
		return m, cmd

	case commands.WeekLoadedMsg:
		// Drop answers for a selection the user already left.
		if msg.Entity != m.entity() || !msg.Week.Equal(m.week) {
			return m, nil
		}
		m.days = msg.Days
		m.slots = msg.Slots
		m.loaded = true
		m.err = nil
		return m, nil

	case commands.ErrMsg:
		m.err = msg.Err
		return m, nil
	}
	return m, nil
}

// entity returns the selected entity, empty when there is none.
func (m Model) entity() string {
	if m.current < 0 || m.current >= len(m.entities) {
		return ""
	}
	return m.entities[m.current]
}

// refresh forgets the shown week and loads the selected one.
func (m *Model) refresh() tea.Cmd {
	m.loaded = false
	m.err = nil
	return m.reload()
}

func (m Model) reload() tea.Cmd {
	entity := m.entity()
	if entity == "" {
		return nil
	}
	return commands.LoadWeek(m.source, entity, m.week)
}

// selectEntity returns the index of name, matched case-insensitively and
// then by prefix. Unknown names are appended so any group can be browsed.
func (m *Model) selectEntity(name string) int {
	name = strings.TrimSpace(name)
	lower := strings.ToLower(name)
	for i, e := range m.entities {
		if strings.ToLower(e) == lower {
			return i
		}
	}
	for i, e := range m.entities {
		if strings.HasPrefix(strings.ToLower(e), lower) {
			return i
		}
	}
	m.entities = append(m.entities, name)
	return len(m.entities) - 1
}

// Run starts the browser on the alternate screen.
func Run(src commands.Source, opts Options) error {
	_, err := tea.NewProgram(New(src, opts), tea.WithAltScreen()).Run()
	return err
}
