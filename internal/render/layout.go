package render

import (
	"github.com/javiermolinar/timetable/internal/collapse"
)

// entry is one group/name line inside a cell.
type entry struct {
	Where string
	Name  string
	// NameRows is how many entries the name cell spans; 0 continues the
	// name cell of an entry above.
	NameRows int
}

// cell is one table cell spanning Rowspan periods.
type cell struct {
	Rowspan int
	Class   string
	Shared  bool
	Entries []entry
}

// slotRef is a position in the laid out table. A covered slot belongs to a
// cell started above it; a filler pads days that end early.
type slotRef struct {
	Cell    *cell
	Covered bool
	Filler  bool
}

// tableRow is one period of the laid out table.
type tableRow struct {
	Number int
	Slots  []slotRef
}

func classOf(r collapse.Row) string {
	switch {
	case r.Where == collapse.Gap && r.Name == "":
		return "gap"
	case r.Where == "" && r.Name == "":
		return "blank"
	default:
		return "lesson"
	}
}

func groupCells(day []collapse.Row) []*cell {
	cells := make([]*cell, 0, len(day))
	for _, r := range day {
		cells = append(cells, &cell{
			Rowspan: max(r.Span, 1),
			Class:   classOf(r),
			Entries: []entry{{Where: r.Where, Name: r.Name, NameRows: 1}},
		})
	}
	return cells
}

func teacherCells(day [][]collapse.Row) []*cell {
	cells := make([]*cell, 0, len(day))
	for _, slot := range day {
		if len(slot) == 1 && slot[0].Span > 0 {
			cells = append(cells, &cell{
				Rowspan: slot[0].Span,
				Class:   classOf(slot[0]),
				Entries: []entry{{Where: slot[0].Where, Name: slot[0].Name, NameRows: 1}},
			})
			continue
		}

		c := &cell{Rowspan: 1, Class: "lesson", Shared: true}
		for _, r := range slot {
			c.Entries = append(c.Entries, entry{Where: r.Where, Name: r.Name, NameRows: -r.Span})
		}
		cells = append(cells, c)
	}
	return cells
}

// layout places the cells of every day into period rows, days as columns.
func layout(days [][]*cell) []tableRow {
	height := 0
	for _, cells := range days {
		h := 0
		for _, c := range cells {
			h += c.Rowspan
		}
		height = max(height, h)
	}

	rows := make([]tableRow, height)
	for i := range rows {
		rows[i] = tableRow{Number: i + 1, Slots: make([]slotRef, len(days))}
	}

	for d, cells := range days {
		at := 0
		for _, c := range cells {
			rows[at].Slots[d] = slotRef{Cell: c}
			for k := 1; k < c.Rowspan; k++ {
				rows[at+k].Slots[d] = slotRef{Covered: true}
			}
			at += c.Rowspan
		}
		for ; at < height; at++ {
			rows[at].Slots[d] = slotRef{Filler: true}
		}
	}
	return rows
}
