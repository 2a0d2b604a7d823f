package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/javiermolinar/timetable/internal/collapse"
	"github.com/javiermolinar/timetable/internal/timetable"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var weekTemplate = template.Must(template.ParseFS(templateFS, "templates/week.html.tmpl"))

// Options tune a rendered page.
type Options struct {
	CSSPath string
	Locale  Locale
	// Extra is passed to the template as .Extra; "footer" is shown below
	// the table.
	Extra map[string]any
}

type page struct {
	Lang      string
	Title     string
	WeekID    string
	WeekLabel string
	CSSPath   string
	Period    string
	Headers   []string
	Rows      []tableRow
	Extra     map[string]any
}

// Group writes the page of a group.
func Group(w io.Writer, group string, week timetable.Week, days [][]collapse.Row, opts Options) error {
	cells := make([][]*cell, len(days))
	for i, day := range days {
		cells[i] = groupCells(day)
	}
	return writePage(w, fmt.Sprintf(opts.locale().GroupTitle, group), week, cells, opts)
}

// Teacher writes the page of a teacher.
func Teacher(w io.Writer, teacher timetable.Teacher, week timetable.Week, days [][][]collapse.Row, opts Options) error {
	cells := make([][]*cell, len(days))
	for i, day := range days {
		cells[i] = teacherCells(day)
	}
	return writePage(w, fmt.Sprintf(opts.locale().TeacherTitle, teacher.FullName()), week, cells, opts)
}

func (o Options) locale() Locale {
	if o.Locale.Code == "" {
		return Russian
	}
	return o.Locale
}

func writePage(w io.Writer, title string, week timetable.Week, days [][]*cell, opts Options) error {
	loc := opts.locale()
	localizeGaps(days, loc)

	headers := make([]string, len(days))
	for i := range days {
		headers[i] = loc.DayHeader(week.Day(i))
	}

	p := page{
		Lang:      loc.Code,
		Title:     title,
		WeekID:    week.ID(),
		WeekLabel: fmt.Sprintf(loc.WeekTitle, loc.Date(week.Monday()), loc.Date(week.Sunday())),
		CSSPath:   opts.CSSPath,
		Period:    loc.Period,
		Headers:   headers,
		Rows:      layout(days),
		Extra:     opts.Extra,
	}
	if err := weekTemplate.Execute(w, p); err != nil {
		return fmt.Errorf("rendering %s: %w", title, err)
	}
	return nil
}

func localizeGaps(days [][]*cell, loc Locale) {
	for _, cells := range days {
		for _, c := range cells {
			if c.Class == "gap" {
				c.Entries[0].Where = loc.Gap
			}
		}
	}
}
