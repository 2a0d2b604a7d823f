package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javiermolinar/timetable/internal/timetable"
)

type call struct {
	search string
	offset int
}

// scriptedSource returns one lesson per request and records the requests.
type scriptedSource struct {
	calls []call
	fail  string
}

func (s *scriptedSource) Events(_ context.Context, search string, offset int) (timetable.Events, error) {
	s.calls = append(s.calls, call{search, offset})
	if search == s.fail {
		return nil, errors.New("portal down")
	}
	id := fmt.Sprintf("%s%+d", search, offset)
	return timetable.Events{
		"0-1": {{ID: id, Group: "ИС-21", Discipline: "Физика", DayIndex: 0, Period: 1}},
	}, nil
}

var monday = timetable.NewWeek(time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC))

func newTestRunner(groups, teachers EventSource) *Runner {
	r := NewRunner(groups, teachers, timetable.NewBuilder(nil, nil), nil)
	r.current = func() timetable.Week { return monday }
	return r
}

func TestRunner_Groups(t *testing.T) {
	src := &scriptedSource{}
	r := newTestRunner(src, nil)

	type seen struct {
		group string
		week  string
		id    string
	}
	var got []seen
	var order []string
	first := func(_ context.Context, grid timetable.GroupGrid, group string, week timetable.Week) error {
		got = append(got, seen{group, week.ID(), grid[0][0].ID})
		order = append(order, "first")
		return nil
	}
	second := func(context.Context, timetable.GroupGrid, string, timetable.Week) error {
		order = append(order, "second")
		return nil
	}

	err := r.Groups(context.Background(), []string{"A", "B"}, Offsets(0, 1), first, second)
	require.NoError(t, err)

	assert.Equal(t, []call{{"A", 0}, {"B", 0}, {"A", 1}, {"B", 1}}, src.calls)
	assert.Equal(t, []seen{
		{"A", monday.ID(), "A+0"},
		{"B", monday.ID(), "B+0"},
		{"A", monday.Add(1).ID(), "A+1"},
		{"B", monday.Add(1).ID(), "B+1"},
	}, got)
	assert.Equal(t, []string{"first", "second", "first", "second", "first", "second", "first", "second"}, order)
}

func TestRunner_GroupsStopsOnError(t *testing.T) {
	src := &scriptedSource{fail: "B"}
	r := newTestRunner(src, nil)

	err := r.Groups(context.Background(), []string{"A", "B", "C"}, []int{0})
	require.Error(t, err)
	assert.Len(t, src.calls, 2)

	failing := func(context.Context, timetable.GroupGrid, string, timetable.Week) error {
		return errors.New("disk full")
	}
	src = &scriptedSource{}
	r = newTestRunner(src, nil)
	err = r.Groups(context.Background(), []string{"A", "B"}, []int{0}, failing)
	require.Error(t, err)
	assert.Len(t, src.calls, 1)
}

func TestRunner_Teachers(t *testing.T) {
	src := &scriptedSource{}
	r := newTestRunner(nil, src)
	teacher := timetable.ParseTeacher("7", "Иванов Иван Иванович")

	var grids []timetable.TeacherGrid
	cb := func(_ context.Context, grid timetable.TeacherGrid, got timetable.Teacher, _ timetable.Week) error {
		assert.Equal(t, teacher, got)
		grids = append(grids, grid)
		return nil
	}

	require.NoError(t, r.Teachers(context.Background(), []timetable.Teacher{teacher}, []int{-1}, cb))
	assert.Equal(t, []call{{"7", -1}}, src.calls)
	require.Len(t, grids, 1)
	assert.Equal(t, []timetable.Lesson{{ID: "7-1", Where: "ИС-21", Name: "Физика"}}, grids[0][0][0])

	assert.Error(t, newTestRunner(src, nil).Teachers(context.Background(), []timetable.Teacher{teacher}, []int{0}))
}

func TestOffsets(t *testing.T) {
	assert.Equal(t, []int{0}, Offsets(0, 0))
	assert.Equal(t, []int{-1, 0, 1, 2}, Offsets(-1, 2))
	assert.Equal(t, []int{1, 0, -1}, Offsets(1, -1))
}
