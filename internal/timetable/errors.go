// Package timetable defines the weekly schedule domain: weeks, lessons,
// per-day grids and the builder that turns portal events into grids.
package timetable

import "errors"

// Domain errors.
var (
	ErrInvalidWeekID     = errors.New("week id must be in YEAR-WEEK format")
	ErrMalformedSequence = errors.New("value is not a sequence")
)

// ConflictName is shown in place of lessons that share one slot of a group grid.
const ConflictName = "Ошибка в расписании: Несколько пар в одно и то же время"

// ConflictWhere is the location of a conflict placeholder.
const ConflictWhere = "?"
