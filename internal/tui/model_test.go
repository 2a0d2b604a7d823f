package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/javiermolinar/timetable/internal/render"
	"github.com/javiermolinar/timetable/internal/timetable"
	"github.com/javiermolinar/timetable/internal/tui/commands"
)

var testWeek = timetable.NewWeek(time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC))

type fakeSource struct {
	grids    map[string]timetable.GroupGrid // keyed by entity@week
	entities []string
	err      error
}

func (f *fakeSource) Load(_ context.Context, entity string, week timetable.Week) (timetable.GroupGrid, error) {
	if f.err != nil {
		return nil, f.err
	}
	if g, ok := f.grids[entity+"@"+week.ID()]; ok {
		return g, nil
	}
	return timetable.NewGrid[timetable.Lesson]().Trim(), nil
}

func (f *fakeSource) Entities(context.Context, timetable.Week) ([]string, error) {
	return f.entities, f.err
}

func newSource() *fakeSource {
	grid := timetable.NewGrid[timetable.Lesson]()
	grid[0] = timetable.Day[timetable.Lesson]{0: {ID: "a", Where: "101", Name: "Физика"}}
	return &fakeSource{
		grids:    map[string]timetable.GroupGrid{"ИС-21@" + testWeek.ID(): grid.Trim()},
		entities: []string{"ИС-21", "ИС-22"},
	}
}

func asciiProfile(t *testing.T) {
	t.Helper()
	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.Ascii)
	t.Cleanup(func() {
		lipgloss.SetColorProfile(prev)
	})
}

func newTestModel(src commands.Source, opts Options) Model {
	if opts.Week.IsZero() {
		opts.Week = testWeek
	}
	m := New(src, opts)
	m.now = func() timetable.Week { return testWeek }
	return m
}

// drive runs cmd and feeds its message back, as the program loop would.
func drive(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for cmd != nil {
		msg := cmd()
		next, nextCmd := m.Update(msg)
		m = next.(Model)
		cmd = nextCmd
	}
	return m
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, cmd := m.Update(msg)
		m = next.(Model)
		if m.prompting {
			// Cursor blink commands never settle; the prompt needs no load.
			continue
		}
		m = drive(t, m, cmd)
	}
	return m
}

func TestInit_LoadsStoredEntities(t *testing.T) {
	asciiProfile(t)
	m := newTestModel(newSource(), Options{})
	m = drive(t, m, m.Init())

	if m.entity() != "ИС-21" {
		t.Fatalf("expected first stored entity, got %q", m.entity())
	}
	if !m.loaded || m.slots != 1 {
		t.Fatalf("expected the week loaded, got loaded=%v slots=%d", m.loaded, m.slots)
	}

	view := ansi.Strip(m.View())
	for _, want := range []string{"ИС-21", "10 марта – 16 марта", "1/2", "101 Физика", "Понедельник"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestNavigation(t *testing.T) {
	asciiProfile(t)
	m := newTestModel(newSource(), Options{Entities: []string{"ИС-21", "ИС-22"}})
	m = drive(t, m, m.Init())

	m = press(t, m, "right")
	if !m.week.Equal(testWeek.Add(1)) {
		t.Fatalf("expected next week, got %s", m.week)
	}
	if !m.loaded || m.slots != 0 {
		t.Errorf("expected an empty loaded week, got loaded=%v slots=%d", m.loaded, m.slots)
	}
	if view := ansi.Strip(m.View()); !strings.Contains(view, "no lessons this week") {
		t.Errorf("unexpected view:\n%s", view)
	}

	m = press(t, m, "t")
	if !m.week.Equal(testWeek) {
		t.Errorf("expected this week, got %s", m.week)
	}

	m = press(t, m, "j")
	if m.entity() != "ИС-22" {
		t.Errorf("expected ИС-22, got %q", m.entity())
	}
	m = press(t, m, "j")
	if m.entity() != "ИС-21" {
		t.Errorf("expected wrap to ИС-21, got %q", m.entity())
	}
	m = press(t, m, "k")
	if m.entity() != "ИС-22" {
		t.Errorf("expected wrap back to ИС-22, got %q", m.entity())
	}
}

func TestGotoPrompt(t *testing.T) {
	asciiProfile(t)
	m := newTestModel(newSource(), Options{Entities: []string{"ИС-21", "ИС-22"}})
	m = drive(t, m, m.Init())

	m = press(t, m, "/", "и", "с", "-", "2", "2")
	if !m.prompting || m.input.Value() != "ис-22" {
		t.Fatalf("expected the prompt to hold the name, got %v %q", m.prompting, m.input.Value())
	}
	m = press(t, m, "enter")
	if m.prompting || m.entity() != "ИС-22" {
		t.Errorf("expected ИС-22 selected, got %q", m.entity())
	}

	m = press(t, m, "/", "Т", "-", "1", "enter")
	if m.entity() != "Т-1" || len(m.entities) != 3 {
		t.Errorf("expected an unknown group appended, got %q of %v", m.entity(), m.entities)
	}

	m = press(t, m, "/", "x", "esc")
	if m.prompting || m.entity() != "Т-1" {
		t.Errorf("escape must keep the selection, got %q", m.entity())
	}
}

func TestStaleWeekIgnored(t *testing.T) {
	m := newTestModel(newSource(), Options{Entities: []string{"ИС-21"}})

	stale := commands.WeekLoadedMsg{Entity: "ИС-21", Week: testWeek.Add(-1), Slots: 4}
	next, _ := m.Update(stale)
	m = next.(Model)
	if m.loaded {
		t.Error("an answer for another week must be ignored")
	}
}

func TestErrorShown(t *testing.T) {
	asciiProfile(t)
	src := newSource()
	src.err = errors.New("database is locked")
	m := newTestModel(src, Options{Entities: []string{"ИС-21"}})
	m = drive(t, m, m.Init())

	if view := ansi.Strip(m.View()); !strings.Contains(view, "error: database is locked") {
		t.Errorf("unexpected view:\n%s", view)
	}
}

func TestViewTruncatesToWidth(t *testing.T) {
	asciiProfile(t)
	m := newTestModel(newSource(), Options{Locale: render.English})
	m = drive(t, m, m.Init())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 30, Height: 20})
	m = next.(Model)

	for _, line := range strings.Split(m.View(), "\n") {
		if w := ansi.StringWidth(line); w > 30 {
			t.Errorf("line wider than the terminal (%d): %q", w, line)
		}
	}
}

func TestNoEntities(t *testing.T) {
	asciiProfile(t)
	src := newSource()
	src.entities = nil
	m := newTestModel(src, Options{})
	m = drive(t, m, m.Init())

	if view := ansi.Strip(m.View()); !strings.Contains(view, "no stored timetables for week 2025-11") {
		t.Errorf("unexpected view:\n%s", view)
	}
}
