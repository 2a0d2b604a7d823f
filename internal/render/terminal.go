package render

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/javiermolinar/timetable/internal/collapse"
	"github.com/javiermolinar/timetable/internal/timetable"
)

// continued marks periods covered by the lesson above.
const continued = "  ⋮"

// TableStyles color the terminal table.
type TableStyles struct {
	Header lipgloss.Style
	Lesson lipgloss.Style
	Muted  lipgloss.Style // gaps, covered periods, period numbers
	Border lipgloss.Style
}

// DefaultTableStyles only uses the basic ANSI palette.
var DefaultTableStyles = TableStyles{
	Header: lipgloss.NewStyle().Bold(true).Padding(0, 1),
	Lesson: lipgloss.NewStyle().Padding(0, 1),
	Muted:  lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("8")),
	Border: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
}

// Terminal renders a group week as a table for the terminal. A width of
// zero or less leaves the table at its natural width.
func Terminal(week timetable.Week, days [][]collapse.Row, loc Locale, width int) string {
	return DefaultTableStyles.Group(week, days, loc, width)
}

// TerminalTeacher renders a teacher week as a table for the terminal.
func TerminalTeacher(week timetable.Week, days [][][]collapse.Row, loc Locale, width int) string {
	return DefaultTableStyles.Teacher(week, days, loc, width)
}

// Group renders a group week with these styles.
func (st TableStyles) Group(week timetable.Week, days [][]collapse.Row, loc Locale, width int) string {
	cells := make([][]*cell, len(days))
	for i, day := range days {
		cells[i] = groupCells(day)
	}
	return st.table(week, cells, loc, width)
}

// Teacher renders a teacher week with these styles.
func (st TableStyles) Teacher(week timetable.Week, days [][][]collapse.Row, loc Locale, width int) string {
	cells := make([][]*cell, len(days))
	for i, day := range days {
		cells[i] = teacherCells(day)
	}
	return st.table(week, cells, loc, width)
}

func (st TableStyles) table(week timetable.Week, days [][]*cell, loc Locale, width int) string {
	localizeGaps(days, loc)
	rows := layout(days)

	headers := []string{"#"}
	for i := range days {
		headers = append(headers, loc.Weekdays[i]+"\n"+loc.Date(week.Day(i)))
	}

	content := make([][]string, len(rows))
	muted := make([][]bool, len(rows))
	for i, r := range rows {
		content[i] = append(content[i], strconv.Itoa(r.Number))
		muted[i] = append(muted[i], true)
		for _, s := range r.Slots {
			text, dim := slotText(s)
			content[i] = append(content[i], text)
			muted[i] = append(muted[i], dim)
		}
	}

	t := table.New().
		Headers(headers...).
		Border(lipgloss.RoundedBorder()).
		BorderStyle(st.Border).
		BorderRow(true).
		Rows(content...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return st.Header
			}
			if row >= 0 && row < len(muted) && col >= 0 && col < len(muted[row]) && muted[row][col] {
				return st.Muted
			}
			return st.Lesson
		})
	if width > 0 {
		t = t.Width(width)
	}
	return t.Render()
}

func slotText(s slotRef) (string, bool) {
	switch {
	case s.Covered:
		return continued, true
	case s.Filler:
		return "", true
	}

	c := s.Cell
	if c.Class != "lesson" {
		return c.Entries[0].Where, true
	}

	lines := make([]string, 0, len(c.Entries))
	for _, e := range c.Entries {
		switch {
		case !c.Shared:
			lines = append(lines, strings.TrimSpace(e.Where+" "+e.Name))
		case e.NameRows > 0:
			lines = append(lines, e.Where+" "+e.Name)
		default:
			lines = append(lines, e.Where+" 〃")
		}
	}
	return strings.Join(lines, "\n"), false
}
