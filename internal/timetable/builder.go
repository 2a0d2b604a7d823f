package timetable

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxClassroomLen is the longest first token still treated as a room number.
const maxClassroomLen = 3

// NameQuery carries what is known about a lesson when choosing its display name.
type NameQuery struct {
	Name      string
	Comment   *string
	Classroom string
	Teachers  []string // full names, in portal order
}

// Namer picks the display name of a lesson.
type Namer interface {
	Resolve(q NameQuery) string
}

// Builder turns portal events into weekly grids.
type Builder struct {
	names  Namer
	logger *zap.Logger
	newID  func() string
}

// NewBuilder creates a builder. A nil namer keeps discipline names as they are.
func NewBuilder(names Namer, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{names: names, logger: logger, newID: uuid.NewString}
}

// Build places one lesson per slot of a group's week. Slots reported with
// several events are replaced by a conflict placeholder.
func (b *Builder) Build(events Events) GroupGrid {
	grid := NewGrid[Lesson]()

	for _, key := range sortedKeys(events) {
		cell := events[key]
		if len(cell) == 0 {
			continue
		}
		first := cell[0]
		if !validDay(first.DayIndex) {
			b.logger.Warn("skipping event with invalid day",
				zap.String("slot", key), zap.Int("day", first.DayIndex))
			continue
		}
		period := PeriodIndex(first.Period)

		if len(cell) == 1 {
			grid[first.DayIndex][period] = b.lesson(first, Classroom(first))
			continue
		}

		ids := make([]string, 0, len(cell))
		for _, ev := range cell {
			ids = append(ids, ev.ID)
		}
		b.logger.Warn("scheduling conflict",
			zap.String("slot", key),
			zap.Int("day", first.DayIndex),
			zap.Int("period", period),
			zap.Strings("event_ids", ids))
		grid[first.DayIndex][period] = Lesson{
			ID:    b.newID(),
			Where: ConflictWhere,
			Name:  ConflictName,
		}
	}

	return grid.Trim()
}

// BuildTeacher keeps every event of a slot: a teacher may teach several
// groups at once.
func (b *Builder) BuildTeacher(events Events) TeacherGrid {
	grid := NewGrid[[]Lesson]()

	for _, key := range sortedKeys(events) {
		for _, ev := range events[key] {
			if !validDay(ev.DayIndex) {
				b.logger.Warn("skipping event with invalid day",
					zap.String("slot", key), zap.Int("day", ev.DayIndex))
				continue
			}
			period := PeriodIndex(ev.Period)
			lesson := b.lesson(ev, Classroom(ev))
			lesson.Where = ev.Group
			grid[ev.DayIndex][period] = append(grid[ev.DayIndex][period], lesson)
		}
	}

	return grid.Trim()
}

func (b *Builder) lesson(ev RawEvent, classroom string) Lesson {
	return Lesson{ID: ev.ID, Where: classroom, Name: b.lessonName(ev, classroom)}
}

func (b *Builder) lessonName(ev RawEvent, classroom string) string {
	if b.names == nil {
		if ev.Comment != nil {
			return *ev.Comment
		}
		return ev.Discipline
	}
	return b.names.Resolve(NameQuery{
		Name:      ev.Discipline,
		Comment:   ev.Comment,
		Classroom: classroom,
		Teachers:  GuessTeachers(ev, b.logger),
	})
}

// PeriodIndex converts the portal's period number to a grid index.
// The absolute value folds the portal's inconsistent 0/1-based numbering
// into the same bucket.
func PeriodIndex(raw int) int {
	if raw-1 < 0 {
		return 1 - raw
	}
	return raw - 1
}

// Classroom returns the room number of an event, or "" when the location does
// not look like one.
func Classroom(ev RawEvent) string {
	location := ev.Place
	if location == "" {
		location = ev.Classroom
	}
	classroom, _, _ := strings.Cut(location, " ")
	if utf8.RuneCountInString(classroom) > maxClassroomLen {
		return ""
	}
	return classroom
}

// GuessTeachers returns the full names usable for teacher-specific aliases.
// When the portal supplies a search label, only the candidate it abbreviates
// is returned; an unmatched label yields no candidates.
func GuessTeachers(ev RawEvent, logger *zap.Logger) []string {
	var (
		fios     []string
		label    string
		hasLabel bool
	)
	for _, ref := range ev.Teachers {
		switch {
		case ref.Label != "":
			label, hasLabel = ref.Label, true
		case ref.FIO != "":
			fios = append(fios, ref.FIO)
		}
	}

	if !hasLabel {
		return fios
	}
	for _, fio := range fios {
		if Abbreviate(fio) == label {
			return []string{fio}
		}
	}

	if logger != nil {
		logger.Error("unresolved teacher",
			zap.String("event_id", ev.ID),
			zap.String("label", label),
			zap.Strings("candidates", fios))
	}
	return nil
}

func validDay(day int) bool {
	return day >= 0 && day < DaysInWeek
}

func sortedKeys(events Events) []string {
	keys := make([]string, 0, len(events))
	for k := range events {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
