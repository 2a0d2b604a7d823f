package timetable

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/javiermolinar/timetable/internal/dateutil"
)

// now is replaced in tests.
var now = time.Now

// Week is a calendar week identified by its ISO Monday.
type Week struct {
	monday time.Time // UTC midnight
}

// NewWeek returns the week containing the given date.
func NewWeek(date time.Time) Week {
	monday, _ := dateutil.WeekRange(date)
	return Week{monday: time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)}
}

// CurrentWeek returns the week containing today.
func CurrentWeek() Week {
	return NewWeek(now())
}

// ParseWeekID parses an identifier produced by Week.ID, e.g. "2025-3".
func ParseWeekID(id string) (Week, error) {
	yearPart, weekPart, ok := strings.Cut(id, "-")
	if !ok {
		return Week{}, fmt.Errorf("%w: %q", ErrInvalidWeekID, id)
	}
	year, err := strconv.Atoi(yearPart)
	if err != nil {
		return Week{}, fmt.Errorf("%w: %q", ErrInvalidWeekID, id)
	}
	week, err := strconv.Atoi(weekPart)
	if err != nil {
		return Week{}, fmt.Errorf("%w: %q", ErrInvalidWeekID, id)
	}

	monday, err := dateutil.MondayOfISOWeek(year, week)
	if err != nil {
		return Week{}, fmt.Errorf("%w: %q: %v", ErrInvalidWeekID, id, err)
	}
	return Week{monday: monday}, nil
}

// Monday returns the first day of the week.
func (w Week) Monday() time.Time {
	return w.monday
}

// Sunday returns the last day of the week.
func (w Week) Sunday() time.Time {
	return w.monday.AddDate(0, 0, 6)
}

// Day returns the date of the given weekday (0=Monday).
func (w Week) Day(weekday int) time.Time {
	return w.monday.AddDate(0, 0, weekday)
}

// Add shifts the week by n weeks.
func (w Week) Add(n int) Week {
	return Week{monday: w.monday.AddDate(0, 0, 7*n)}
}

// Sub shifts the week back by n weeks.
func (w Week) Sub(n int) Week {
	return w.Add(-n)
}

// ID returns the ISO year and week number, e.g. "1970-48".
func (w Week) ID() string {
	year, week := w.monday.ISOWeek()
	return fmt.Sprintf("%d-%d", year, week)
}

// Equal reports whether both values denote the same week.
func (w Week) Equal(other Week) bool {
	return w.monday.Equal(other.monday)
}

// IsZero reports whether the week was never set.
func (w Week) IsZero() bool {
	return w.monday.IsZero()
}

func (w Week) String() string {
	return w.ID()
}
