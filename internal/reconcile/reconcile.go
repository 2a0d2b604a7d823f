// Package reconcile keeps stored lessons in line with freshly fetched grids.
//
// Lessons are compared by id, one calendar day at a time. New ids are
// inserted, ids that disappeared are soft-deleted and everything else is
// left alone, so a lesson that moved to another period of the same day
// produces no change at all.
package reconcile

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/javiermolinar/timetable/internal/timetable"
)

// Placement is a lesson at a period of a day.
type Placement struct {
	Period int
	Lesson timetable.Lesson
}

// Diff is the change set for one day.
type Diff struct {
	Delete []string
	Insert []Placement
}

// Empty reports whether the diff changes nothing.
func (d Diff) Empty() bool {
	return len(d.Delete) == 0 && len(d.Insert) == 0
}

// Day compares the stored ids of a day with the fresh day.
// Delete is sorted; Insert is ordered by period.
func Day(persisted []string, fresh timetable.Day[timetable.Lesson]) Diff {
	stored := make(map[string]bool, len(persisted))
	for _, id := range persisted {
		stored[id] = true
	}
	seen := make(map[string]bool, len(fresh))

	var diff Diff
	for _, period := range fresh.Periods() {
		lesson := fresh[period]
		seen[lesson.ID] = true
		if !stored[lesson.ID] {
			diff.Insert = append(diff.Insert, Placement{Period: period, Lesson: lesson})
		}
	}
	for id := range stored {
		if !seen[id] {
			diff.Delete = append(diff.Delete, id)
		}
	}
	sort.Strings(diff.Delete)
	return diff
}

// DayKey addresses one day of one entity's week in the store.
type DayKey struct {
	Entity string
	WeekID string
	Day    int
}

// Assignment links a stored lesson of a group to a teacher.
type Assignment struct {
	LessonID string
	Group    string
}

// Store persists lessons. ApplyDiff must apply a day's diff atomically.
type Store interface {
	DayLessonIDs(ctx context.Context, key DayKey) ([]string, error)
	ApplyDiff(ctx context.Context, key DayKey, diff Diff) error
	AssignTeacher(ctx context.Context, teacherID string, lessons []Assignment) (int64, error)
}

// Summary counts what a sync changed.
type Summary struct {
	Inserted int
	Deleted  int
}

// Syncer reconciles whole weeks against a Store.
type Syncer struct {
	store  Store
	logger *zap.Logger
}

// NewSyncer creates a Syncer.
func NewSyncer(store Store, logger *zap.Logger) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{store: store, logger: logger}
}

// SyncWeek reconciles every day of the week. Days trimmed from the grid
// count as empty, so their stored lessons are soft-deleted.
func (s *Syncer) SyncWeek(ctx context.Context, entity string, week timetable.Week, grid timetable.GroupGrid) (Summary, error) {
	var sum Summary
	for day := 0; day < timetable.DaysInWeek; day++ {
		var fresh timetable.Day[timetable.Lesson]
		if day < len(grid) {
			fresh = grid[day]
		}

		key := DayKey{Entity: entity, WeekID: week.ID(), Day: day}
		persisted, err := s.store.DayLessonIDs(ctx, key)
		if err != nil {
			return sum, fmt.Errorf("loading %s day %d: %w", key.WeekID, day, err)
		}

		diff := Day(persisted, fresh)
		if diff.Empty() {
			continue
		}
		if err := s.store.ApplyDiff(ctx, key, diff); err != nil {
			return sum, fmt.Errorf("applying %s day %d: %w", key.WeekID, day, err)
		}
		for _, p := range diff.Insert {
			s.logger.Debug("lesson added",
				zap.String("id", p.Lesson.ID),
				zap.Int("day", day),
				zap.Int("period", p.Period))
		}
		sum.Inserted += len(diff.Insert)
		sum.Deleted += len(diff.Delete)
	}

	fields := []zap.Field{zap.String("entity", entity), zap.String("week", week.ID())}
	switch {
	case sum.Inserted+sum.Deleted == 0:
		s.logger.Info("stored timetable is up to date", fields...)
	default:
		s.logger.Info("stored timetable updated",
			append(fields, zap.Int("inserted", sum.Inserted), zap.Int("deleted", sum.Deleted))...)
	}
	return sum, nil
}

// BackfillTeacher links every lesson of a teacher grid to the teacher.
// It only sets teacher ids and never changes lesson identity.
func (s *Syncer) BackfillTeacher(ctx context.Context, teacher timetable.Teacher, week timetable.Week, grid timetable.TeacherGrid) (int64, error) {
	var lessons []Assignment
	for _, day := range grid {
		for _, period := range day.Periods() {
			for _, lesson := range day[period] {
				lessons = append(lessons, Assignment{LessonID: lesson.ID, Group: lesson.Where})
			}
		}
	}
	if len(lessons) == 0 {
		return 0, nil
	}

	n, err := s.store.AssignTeacher(ctx, teacher.ID, lessons)
	if err != nil {
		return 0, fmt.Errorf("assigning teacher %s: %w", teacher.ID, err)
	}
	s.logger.Info("teacher assigned to lessons",
		zap.String("teacher", teacher.FullName()),
		zap.String("week", week.ID()),
		zap.Int64("lessons", n))
	return n, nil
}
