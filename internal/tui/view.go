package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.header())
	b.WriteString("\n\n")
	b.WriteString(m.body())
	b.WriteString("\n")
	b.WriteString(m.footer())

	if m.width <= 0 {
		return b.String()
	}
	lines := strings.Split(b.String(), "\n")
	for i, line := range lines {
		lines[i] = ansi.Truncate(line, m.width, "…")
	}
	return strings.Join(lines, "\n")
}

func (m Model) header() string {
	entity := m.entity()
	if entity == "" {
		entity = "—"
	}
	label := fmt.Sprintf(m.locale.WeekTitle, m.locale.Date(m.week.Monday()), m.locale.Date(m.week.Sunday()))

	parts := []string{
		m.styles.Title.Render(entity),
		m.styles.Week.Render(label),
	}
	if m.week.Equal(m.now()) {
		parts[1] = m.styles.Current.Render(label)
	}
	if len(m.entities) > 1 {
		parts = append(parts, m.styles.Entries.Render(fmt.Sprintf("%d/%d", m.current+1, len(m.entities))))
	}
	return strings.Join(parts, "  ")
}

func (m Model) body() string {
	switch {
	case m.err != nil:
		return m.styles.Error.Render("error: " + m.err.Error())
	case m.entity() == "":
		return m.styles.Status.Render("no stored timetables for week " + m.week.ID())
	case !m.loaded:
		return m.styles.Status.Render("loading…")
	case m.slots == 0:
		return m.styles.Status.Render("no lessons this week")
	}
	return m.styles.Table.Group(m.week, m.days, m.locale, m.width)
}

func (m Model) footer() string {
	if m.prompting {
		return m.styles.Prompt.Render(m.input.View())
	}
	return m.help.View(m.keys)
}
