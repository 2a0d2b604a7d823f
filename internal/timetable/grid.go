package timetable

import "sort"

// DaysInWeek is the length of an untrimmed grid.
const DaysInWeek = 7

// Lesson is one scheduled lesson as shown in a grid cell.
type Lesson struct {
	ID    string // stable across fetches of the same scheduled lesson
	Where string // classroom for group grids, group for teacher grids
	Name  string
}

// Fields returns the stored columns of the lesson in insert order.
func (l Lesson) Fields() []any {
	return []any{l.ID, l.Where, l.Name}
}

// Day maps period indexes to cell payloads. Missing periods are breaks.
type Day[T any] map[int]T

// Periods returns the occupied period indexes in ascending order.
func (d Day[T]) Periods() []int {
	periods := make([]int, 0, len(d))
	for p := range d {
		periods = append(periods, p)
	}
	sort.Ints(periods)
	return periods
}

// MaxPeriod returns the highest occupied period, or -1 for an empty day.
func (d Day[T]) MaxPeriod() int {
	highest := -1
	for p := range d {
		if p > highest {
			highest = p
		}
	}
	return highest
}

// Grid is a week of days, Monday first.
type Grid[T any] []Day[T]

// GroupGrid holds one lesson per slot.
type GroupGrid = Grid[Lesson]

// TeacherGrid holds every lesson a teacher gives in a slot.
type TeacherGrid = Grid[[]Lesson]

// NewGrid returns a grid of seven empty days.
func NewGrid[T any]() Grid[T] {
	g := make(Grid[T], DaysInWeek)
	for i := range g {
		g[i] = Day[T]{}
	}
	return g
}

// Trim drops empty weekend days from the end of the grid.
// At most two days are removed and trimming stops at the first non-empty day.
func (g Grid[T]) Trim() Grid[T] {
	for i := 0; i < 2 && len(g) > 0; i++ {
		if len(g[len(g)-1]) > 0 {
			break
		}
		g = g[:len(g)-1]
	}
	return g
}

// Slots returns the number of occupied slots across the week.
func (g Grid[T]) Slots() int {
	n := 0
	for _, day := range g {
		n += len(day)
	}
	return n
}
