// Package pipeline fetches weekly timetables and hands them to callbacks.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/javiermolinar/timetable/internal/reconcile"
	"github.com/javiermolinar/timetable/internal/timetable"
)

// EventSource returns the raw events of one entity for one week.
type EventSource interface {
	Events(ctx context.Context, search string, offset int) (timetable.Events, error)
}

// GroupCallback consumes the grid of a group for a week.
type GroupCallback func(ctx context.Context, grid timetable.GroupGrid, group string, week timetable.Week) error

// TeacherCallback consumes the grid of a teacher for a week.
type TeacherCallback func(ctx context.Context, grid timetable.TeacherGrid, teacher timetable.Teacher, week timetable.Week) error

// Runner drives sources week by week. Offsets are the outer loop so a
// single portal session moves forward one week at a time.
type Runner struct {
	groups   EventSource
	teachers EventSource
	builder  *timetable.Builder
	logger   *zap.Logger
	current  func() timetable.Week
}

// NewRunner creates a Runner. Either source may be nil when unused.
func NewRunner(groups, teachers EventSource, builder *timetable.Builder, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		groups:   groups,
		teachers: teachers,
		builder:  builder,
		logger:   logger,
		current:  timetable.CurrentWeek,
	}
}

// SetClock replaces the source of the current week, against which offsets
// are counted.
func (r *Runner) SetClock(current func() timetable.Week) {
	r.current = current
}

// Groups builds every group's grid for every offset and calls the
// callbacks in order. The first error stops the run.
func (r *Runner) Groups(ctx context.Context, groups []string, offsets []int, callbacks ...GroupCallback) error {
	if r.groups == nil {
		return fmt.Errorf("no group source configured")
	}
	current := r.current()
	for _, offset := range offsets {
		week := current.Add(offset)
		for _, group := range groups {
			r.logger.Info("fetching group timetable", zap.String("group", group), zap.String("week", week.ID()))

			events, err := r.groups.Events(ctx, group, offset)
			if err != nil {
				return fmt.Errorf("fetching %s for %s: %w", group, week.ID(), err)
			}
			grid := r.builder.Build(events)
			for _, cb := range callbacks {
				if err := cb(ctx, grid, group, week); err != nil {
					return fmt.Errorf("%s %s: %w", group, week.ID(), err)
				}
			}
		}
	}
	return nil
}

// Teachers is Groups for teacher grids.
func (r *Runner) Teachers(ctx context.Context, teachers []timetable.Teacher, offsets []int, callbacks ...TeacherCallback) error {
	if r.teachers == nil {
		return fmt.Errorf("no teacher source configured")
	}
	current := r.current()
	for _, offset := range offsets {
		week := current.Add(offset)
		for _, teacher := range teachers {
			r.logger.Info("fetching teacher timetable", zap.String("teacher", teacher.FullName()), zap.String("week", week.ID()))

			events, err := r.teachers.Events(ctx, teacher.ID, offset)
			if err != nil {
				return fmt.Errorf("fetching %s for %s: %w", teacher.FullName(), week.ID(), err)
			}
			grid := r.builder.BuildTeacher(events)
			for _, cb := range callbacks {
				if err := cb(ctx, grid, teacher, week); err != nil {
					return fmt.Errorf("%s %s: %w", teacher.FullName(), week.ID(), err)
				}
			}
		}
	}
	return nil
}

// Offsets returns the offsets from..to inclusive, in either direction.
func Offsets(from, to int) []int {
	step := 1
	if to < from {
		step = -1
	}
	var out []int
	for o := from; ; o += step {
		out = append(out, o)
		if o == to {
			return out
		}
	}
}

// TeacherSaver stores teacher records.
type TeacherSaver interface {
	UpsertTeacher(ctx context.Context, t timetable.Teacher) error
}

// StoreGroups reconciles each group grid with the store.
func StoreGroups(s *reconcile.Syncer) GroupCallback {
	return func(ctx context.Context, grid timetable.GroupGrid, group string, week timetable.Week) error {
		_, err := s.SyncWeek(ctx, group, week, grid)
		return err
	}
}

// StoreTeachers saves the teacher and links the stored lessons to them.
func StoreTeachers(s *reconcile.Syncer, saver TeacherSaver) TeacherCallback {
	return func(ctx context.Context, grid timetable.TeacherGrid, teacher timetable.Teacher, week timetable.Week) error {
		if err := saver.UpsertTeacher(ctx, teacher); err != nil {
			return err
		}
		_, err := s.BackfillTeacher(ctx, teacher, week, grid)
		return err
	}
}
