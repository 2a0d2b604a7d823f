// Package collapse turns weekly grids into table rows ready for rendering.
//
// Consecutive periods with the same lesson merge into one row whose Span
// counts the periods. Missing periods become "нет" rows that never merge.
// Teacher grids may hold several groups in one period; those slots use a
// signed Span:
//
//	Span > 0  the row repeats for Span consecutive periods
//	Span < 0  header of -Span groups sharing the same lesson name
//	Span == 0 another group under the header above, Name is empty
package collapse

import (
	"sort"

	"github.com/javiermolinar/timetable/internal/timetable"
)

// Gap is the Where of a row standing in for a free period.
const Gap = "нет"

// placeholderRows is how many blank rows an empty day renders as.
const placeholderRows = 3

// Row is one rendered table row.
type Row struct {
	Where string
	Name  string
	Span  int
}

func gapRow() Row   { return Row{Where: Gap, Span: 1} }
func blankRow() Row { return Row{Span: 1} }

// DayStrategy collapses one day of a grid.
type DayStrategy[T, R any] interface {
	CollapseDay(day timetable.Day[T]) []R
}

// Collapse applies the strategy to every day of the grid.
func Collapse[T, R any](grid timetable.Grid[T], strategy DayStrategy[T, R]) [][]R {
	out := make([][]R, len(grid))
	for i, day := range grid {
		out[i] = strategy.CollapseDay(day)
	}
	return out
}

// GroupDays collapses days of a group grid.
type GroupDays struct{}

// CollapseDay implements DayStrategy.
func (GroupDays) CollapseDay(day timetable.Day[timetable.Lesson]) []Row {
	if len(day) == 0 {
		return []Row{blankRow(), blankRow(), blankRow()}
	}

	var rows []Row
	prevGap := false
	for period := 0; period <= day.MaxPeriod(); period++ {
		lesson, ok := day[period]
		if !ok {
			rows = append(rows, gapRow())
			prevGap = true
			continue
		}

		last := len(rows) - 1
		if last >= 0 && !prevGap && rows[last].Where == lesson.Where && rows[last].Name == lesson.Name {
			rows[last].Span++
		} else {
			rows = append(rows, Row{Where: lesson.Where, Name: lesson.Name, Span: 1})
		}
		prevGap = false
	}
	return rows
}

// TeacherDays collapses days of a teacher grid. Each period yields a list
// of rows: one for a single group, several for a shared period.
type TeacherDays struct{}

// CollapseDay implements DayStrategy.
func (TeacherDays) CollapseDay(day timetable.Day[[]timetable.Lesson]) [][]Row {
	if len(day) == 0 {
		return [][]Row{{blankRow()}, {blankRow()}, {blankRow()}}
	}

	var rows [][]Row
	// mergeable is set while the last entry is a single lesson that the
	// next period may extend.
	mergeable := false
	for period := 0; period <= day.MaxPeriod(); period++ {
		slot := day[period]
		switch len(slot) {
		case 0:
			rows = append(rows, []Row{gapRow()})
			mergeable = false

		case 1:
			lesson := slot[0]
			if mergeable {
				last := &rows[len(rows)-1][0]
				if last.Where == lesson.Where && last.Name == lesson.Name {
					last.Span++
					continue
				}
			}
			rows = append(rows, []Row{{Where: lesson.Where, Name: lesson.Name, Span: 1}})
			mergeable = true

		default:
			rows = append(rows, shared(slot))
			mergeable = false
		}
	}
	return rows
}

// shared lays out a period taught to several groups at once.
func shared(slot []timetable.Lesson) []Row {
	byName := map[string][]string{}
	for _, lesson := range slot {
		byName[lesson.Name] = append(byName[lesson.Name], lesson.Where)
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]Row, 0, len(slot))
	for _, name := range names {
		groups := byName[name]
		sort.Strings(groups)
		rows = append(rows, Row{Where: groups[0], Name: name, Span: -len(groups)})
		for _, group := range groups[1:] {
			rows = append(rows, Row{Where: group})
		}
	}
	return rows
}

// Group collapses a group grid.
func Group(grid timetable.GroupGrid) [][]Row {
	return Collapse[timetable.Lesson, Row](grid, GroupDays{})
}

// Teacher collapses a teacher grid.
func Teacher(grid timetable.TeacherGrid) [][][]Row {
	return Collapse[[]timetable.Lesson, []Row](grid, TeacherDays{})
}
