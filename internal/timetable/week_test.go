package timetable

import (
	"errors"
	"testing"
	"time"

	"github.com/javiermolinar/timetable/internal/dateutil"
)

func isoMonday(t *testing.T, year, week int) time.Time {
	t.Helper()
	monday, err := dateutil.MondayOfISOWeek(year, week)
	if err != nil {
		t.Fatalf("monday of %d-%d: %v", year, week, err)
	}
	return monday
}

func TestNewWeek(t *testing.T) {
	// Wednesday of ISO week 2000-2.
	w := NewWeek(time.Date(2000, 1, 12, 15, 0, 0, 0, time.UTC))

	wantMonday := time.Date(2000, 1, 10, 0, 0, 0, 0, time.UTC)
	wantSunday := time.Date(2000, 1, 16, 0, 0, 0, 0, time.UTC)
	if !w.Monday().Equal(wantMonday) {
		t.Errorf("monday: got %v, want %v", w.Monday(), wantMonday)
	}
	if !w.Sunday().Equal(wantSunday) {
		t.Errorf("sunday: got %v, want %v", w.Sunday(), wantSunday)
	}
	if w.ID() != "2000-2" {
		t.Errorf("id: got %q, want %q", w.ID(), "2000-2")
	}
}

func TestCurrentWeek(t *testing.T) {
	orig := now
	t.Cleanup(func() { now = orig })
	now = func() time.Time { return time.Date(2000, 1, 12, 9, 0, 0, 0, time.Local) }

	w := CurrentWeek()
	if !w.Monday().Equal(isoMonday(t, 2000, 2)) {
		t.Errorf("got %v, want monday of 2000-2", w.Monday())
	}
}

func TestWeekAddSub(t *testing.T) {
	w := NewWeek(time.Date(2000, 1, 10, 0, 0, 0, 0, time.UTC))

	next := w.Add(1)
	if !next.Monday().Equal(time.Date(2000, 1, 17, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("add: got %v", next.Monday())
	}
	if !next.Sunday().Equal(time.Date(2000, 1, 23, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("add sunday: got %v", next.Sunday())
	}

	prev := w.Sub(1)
	if !prev.Monday().Equal(time.Date(2000, 1, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("sub: got %v", prev.Monday())
	}
	if prev.ID() != "2000-1" {
		t.Errorf("sub id: got %q", prev.ID())
	}
}

func TestWeekArithmeticLaws(t *testing.T) {
	base := NewWeek(time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC))
	offsets := []int{-60, -7, -1, 0, 1, 3, 52, 105}

	for _, n := range offsets {
		for _, m := range offsets {
			if !base.Add(n).Add(m).Equal(base.Add(n + m)) {
				t.Errorf("(w+%d)+%d != w+%d", n, m, n+m)
			}
		}
		if !base.Add(n).Sub(n).Equal(base) {
			t.Errorf("w+%d-%d != w", n, n)
		}
	}
}

func TestParseWeekID_RoundTrip(t *testing.T) {
	base := NewWeek(time.Date(2019, 12, 30, 0, 0, 0, 0, time.UTC))
	for i := 0; i < 120; i++ {
		w := base.Add(i)
		got, err := ParseWeekID(w.ID())
		if err != nil {
			t.Fatalf("parsing %q: %v", w.ID(), err)
		}
		if !got.Equal(w) {
			t.Errorf("round trip %q: got %v, want %v", w.ID(), got.Monday(), w.Monday())
		}
		wantYear, wantWeek := w.Monday().ISOWeek()
		gotYear, gotWeek := got.Monday().ISOWeek()
		if gotYear != wantYear || gotWeek != wantWeek {
			t.Errorf("iso pair for %q: got %d-%d", w.ID(), gotYear, gotWeek)
		}
	}
}

func TestParseWeekID_Errors(t *testing.T) {
	for _, id := range []string{"", "2025", "2025-", "x-3", "2025-x", "2025-0", "2021-53"} {
		t.Run(id, func(t *testing.T) {
			_, err := ParseWeekID(id)
			if !errors.Is(err, ErrInvalidWeekID) {
				t.Errorf("got %v, want ErrInvalidWeekID", err)
			}
		})
	}
}
