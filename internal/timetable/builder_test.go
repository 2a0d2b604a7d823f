package timetable

import (
	"encoding/json"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// recordingNamer returns the discipline and remembers every query.
type recordingNamer struct {
	queries []NameQuery
}

func (r *recordingNamer) Resolve(q NameQuery) string {
	r.queries = append(r.queries, q)
	if q.Comment != nil {
		return *q.Comment
	}
	return q.Name
}

func mustEvents(t *testing.T, raw string) Events {
	t.Helper()
	var events Events
	if err := json.Unmarshal([]byte(raw), &events); err != nil {
		t.Fatalf("decoding events: %v", err)
	}
	return events
}

func TestBuild(t *testing.T) {
	events := mustEvents(t, `{
		"0-1": [{"id": "a", "place": "101 корпус 2", "discipline": "Физика", "teachers": {}, "dayWeekNum": 0, "numberPair": 1}],
		"0-2": [{"id": "b", "classroom": "Лаборатория", "discipline": "Химия", "teachers": [], "dayWeekNum": 0, "numberPair": 2}],
		"2-3": [{"id": "c", "place": "12", "discipline": "Математика", "comment": "Алгебра", "teachers": {}, "dayWeekNum": 2, "numberPair": 3}]
	}`)

	b := NewBuilder(&recordingNamer{}, zap.NewNop())
	grid := b.Build(events)

	if len(grid) != 5 {
		t.Fatalf("got %d days, want 5", len(grid))
	}
	want := Day[Lesson]{
		0: {ID: "a", Where: "101", Name: "Физика"},
		1: {ID: "b", Where: "", Name: "Химия"},
	}
	if !reflect.DeepEqual(grid[0], want) {
		t.Errorf("monday: got %v, want %v", grid[0], want)
	}
	if got := grid[2][2]; got != (Lesson{ID: "c", Where: "12", Name: "Алгебра"}) {
		t.Errorf("wednesday: got %v", got)
	}
	if len(grid[1]) != 0 || len(grid[3]) != 0 || len(grid[4]) != 0 {
		t.Errorf("expected empty days, got %v", grid)
	}
}

func TestBuild_Conflict(t *testing.T) {
	events := mustEvents(t, `{
		"1-4": [
			{"id": "a", "place": "101", "discipline": "Физика", "teachers": {}, "dayWeekNum": 1, "numberPair": 4},
			{"id": "b", "place": "102", "discipline": "Химия", "teachers": {}, "dayWeekNum": 1, "numberPair": 4}
		]
	}`)

	core, logs := observer.New(zapcore.WarnLevel)
	b := NewBuilder(&recordingNamer{}, zap.New(core))
	b.newID = func() string { return "conflict-id" }

	grid := b.Build(events)

	want := Lesson{ID: "conflict-id", Where: ConflictWhere, Name: ConflictName}
	if got := grid[1][3]; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if logs.FilterMessage("scheduling conflict").Len() != 1 {
		t.Errorf("expected a scheduling conflict log entry, got %v", logs.All())
	}
}

func TestBuild_WeekendTrim(t *testing.T) {
	saturday := mustEvents(t, `{"5-1": [{"id": "a", "discipline": "Физра", "dayWeekNum": 5, "numberPair": 1}]}`)
	sunday := mustEvents(t, `{"6-1": [{"id": "a", "discipline": "Физра", "dayWeekNum": 6, "numberPair": 1}]}`)

	b := NewBuilder(nil, nil)
	if got := len(b.Build(saturday)); got != 6 {
		t.Errorf("saturday lesson: got %d days, want 6", got)
	}
	if got := len(b.Build(sunday)); got != 7 {
		t.Errorf("sunday lesson: got %d days, want 7", got)
	}
	if got := len(b.Build(Events{})); got != 5 {
		t.Errorf("no lessons: got %d days, want 5", got)
	}
}

func TestBuild_SkipsInvalidDay(t *testing.T) {
	events := mustEvents(t, `{"9-1": [{"id": "a", "discipline": "Физра", "dayWeekNum": 9, "numberPair": 1}]}`)

	grid := NewBuilder(nil, nil).Build(events)
	if grid.Slots() != 0 {
		t.Errorf("expected no slots, got %v", grid)
	}
}

func TestBuildTeacher(t *testing.T) {
	events := mustEvents(t, `{
		"0-2": [
			{"id": "a", "group": "112-12", "place": "101", "discipline": "А", "teachers": {}, "dayWeekNum": 0, "numberPair": 2},
			{"id": "b", "group": "141-12", "place": "101", "discipline": "Б", "teachers": {}, "dayWeekNum": 0, "numberPair": 2}
		],
		"3-1": [{"id": "c", "group": "131-12", "place": "205", "discipline": "А", "teachers": {}, "dayWeekNum": 3, "numberPair": 1}]
	}`)

	grid := NewBuilder(&recordingNamer{}, nil).BuildTeacher(events)

	want := []Lesson{
		{ID: "a", Where: "112-12", Name: "А"},
		{ID: "b", Where: "141-12", Name: "Б"},
	}
	if !reflect.DeepEqual(grid[0][1], want) {
		t.Errorf("got %v, want %v", grid[0][1], want)
	}
	if got := grid[3][0]; !reflect.DeepEqual(got, []Lesson{{ID: "c", Where: "131-12", Name: "А"}}) {
		t.Errorf("thursday: got %v", got)
	}
	if len(grid) != 5 {
		t.Errorf("got %d days, want 5", len(grid))
	}
}

func TestBuild_PassesTeachersAndClassroom(t *testing.T) {
	events := mustEvents(t, `{
		"0-1": [{
			"id": "a", "place": "305 (лаб.)", "discipline": "Информатика",
			"teachers": {
				"t1": {"id": "t1", "fio": "Петров Пётр Петрович"},
				"t2": {"id": "t2", "fio": "Иванов Иван Иванович"}
			},
			"dayWeekNum": 0, "numberPair": 1
		}]
	}`)

	namer := &recordingNamer{}
	NewBuilder(namer, nil).Build(events)

	if len(namer.queries) != 1 {
		t.Fatalf("got %d queries, want 1", len(namer.queries))
	}
	q := namer.queries[0]
	if q.Classroom != "305" {
		t.Errorf("classroom: got %q", q.Classroom)
	}
	wantTeachers := []string{"Петров Пётр Петрович", "Иванов Иван Иванович"}
	if !reflect.DeepEqual(q.Teachers, wantTeachers) {
		t.Errorf("teachers: got %v, want %v", q.Teachers, wantTeachers)
	}
}

func TestPeriodIndex(t *testing.T) {
	tests := map[int]int{1: 0, 2: 1, 7: 6, 0: 1, -1: 2}
	for raw, want := range tests {
		if got := PeriodIndex(raw); got != want {
			t.Errorf("PeriodIndex(%d): got %d, want %d", raw, got, want)
		}
	}
}

func TestClassroom(t *testing.T) {
	tests := []struct {
		name string
		ev   RawEvent
		want string
	}{
		{name: "place wins", ev: RawEvent{Place: "12 ", Classroom: "999"}, want: "12"},
		{name: "falls back to classroom", ev: RawEvent{Classroom: "214 к.1"}, want: "214"},
		{name: "long token is not a room", ev: RawEvent{Place: "Спортзал"}, want: ""},
		{name: "four digits is not a room", ev: RawEvent{Place: "1024"}, want: ""},
		{name: "cyrillic room", ev: RawEvent{Place: "12а"}, want: "12а"},
		{name: "empty", ev: RawEvent{}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classroom(tt.ev); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGuessTeachers(t *testing.T) {
	refs := TeacherRefs{
		{Key: "a", ID: "a", FIO: "Петров Пётр Петрович"},
		{Key: "b", ID: "b", FIO: "Иванов Иван Иванович"},
	}

	t.Run("no label returns all candidates", func(t *testing.T) {
		got := GuessTeachers(RawEvent{Teachers: refs}, nil)
		want := []string{"Петров Пётр Петрович", "Иванов Иван Иванович"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("label picks the matching candidate", func(t *testing.T) {
		withLabel := append(TeacherRefs{{Key: "search", Label: "Иванов И.И."}}, refs...)
		got := GuessTeachers(RawEvent{Teachers: withLabel}, nil)
		if !reflect.DeepEqual(got, []string{"Иванов Иван Иванович"}) {
			t.Errorf("got %v", got)
		}
	})

	t.Run("unmatched label yields nothing and logs", func(t *testing.T) {
		core, logs := observer.New(zapcore.ErrorLevel)
		withLabel := append(TeacherRefs{{Key: "search", Label: "Сидоров С.С."}}, refs...)
		got := GuessTeachers(RawEvent{ID: "ev", Teachers: withLabel}, zap.New(core))
		if len(got) != 0 {
			t.Errorf("got %v, want none", got)
		}
		if logs.FilterMessage("unresolved teacher").Len() != 1 {
			t.Errorf("expected an unresolved teacher log entry")
		}
	})
}
