// Package db provides SQLite storage for fetched timetables.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/timetable/internal/reconcile"
	"github.com/javiermolinar/timetable/internal/timetable"
)

// ErrTeacherNotFound is returned by GetTeacher for unknown ids.
var ErrTeacherNotFound = errors.New("teacher not found")

// SQLite stores lessons and teachers. It implements reconcile.Store.
type SQLite struct {
	db *sqlx.DB
}

var _ reconcile.Store = (*SQLite)(nil)

// New opens the database at path and runs migrations.
func New(path string) (*SQLite, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s, err := NewWithDB(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB wraps an open database and runs migrations.
func NewWithDB(db *sqlx.DB) (*SQLite, error) {
	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

type lessonRow struct {
	ID        string `db:"id"`
	Classroom string `db:"classroom"`
	Name      string `db:"name"`
	EntityKey string `db:"entity_key"`
	DayNum    int    `db:"day_num"`
	LessonNum int    `db:"lesson_num"`
}

// Load returns the stored grid of an entity for a week, trimmed like a
// freshly built one.
func (s *SQLite) Load(ctx context.Context, entity string, week timetable.Week) (timetable.GroupGrid, error) {
	query := `
		SELECT id, classroom, name, entity_key, day_num, lesson_num
		FROM lesson
		WHERE entity_key = ? AND week_id = ? AND is_deleted = FALSE
		ORDER BY day_num, lesson_num
	`

	var rows []lessonRow
	if err := s.db.SelectContext(ctx, &rows, query, entity, week.ID()); err != nil {
		return nil, fmt.Errorf("querying lessons: %w", err)
	}

	grid := timetable.NewGrid[timetable.Lesson]()
	for _, r := range rows {
		grid[r.DayNum][r.LessonNum] = timetable.Lesson{ID: r.ID, Where: r.Classroom, Name: r.Name}
	}
	return grid.Trim(), nil
}

// LoadTeacher returns the stored lessons assigned to a teacher for a week.
// Cells list groups in alphabetical order.
func (s *SQLite) LoadTeacher(ctx context.Context, teacherID string, week timetable.Week) (timetable.TeacherGrid, error) {
	query := `
		SELECT id, classroom, name, entity_key, day_num, lesson_num
		FROM lesson
		WHERE teacher_id = ? AND week_id = ? AND is_deleted = FALSE
		ORDER BY day_num, lesson_num, entity_key
	`

	var rows []lessonRow
	if err := s.db.SelectContext(ctx, &rows, query, teacherID, week.ID()); err != nil {
		return nil, fmt.Errorf("querying teacher lessons: %w", err)
	}

	grid := timetable.NewGrid[[]timetable.Lesson]()
	for _, r := range rows {
		day := grid[r.DayNum]
		day[r.LessonNum] = append(day[r.LessonNum], timetable.Lesson{ID: r.ID, Where: r.EntityKey, Name: r.Name})
	}
	return grid.Trim(), nil
}

// Entities lists the entity keys with live lessons in a week.
func (s *SQLite) Entities(ctx context.Context, week timetable.Week) ([]string, error) {
	query := `
		SELECT DISTINCT entity_key
		FROM lesson
		WHERE week_id = ? AND is_deleted = FALSE
		ORDER BY entity_key
	`

	var entities []string
	if err := s.db.SelectContext(ctx, &entities, query, week.ID()); err != nil {
		return nil, fmt.Errorf("querying entities: %w", err)
	}
	return entities, nil
}

// DayLessonIDs returns the ids of the live lessons of one day.
func (s *SQLite) DayLessonIDs(ctx context.Context, key reconcile.DayKey) ([]string, error) {
	query := `
		SELECT id
		FROM lesson
		WHERE entity_key = ? AND week_id = ? AND day_num = ? AND is_deleted = FALSE
		ORDER BY id
	`

	var ids []string
	if err := s.db.SelectContext(ctx, &ids, query, key.Entity, key.WeekID, key.Day); err != nil {
		return nil, fmt.Errorf("querying lesson ids: %w", err)
	}
	return ids, nil
}

// ApplyDiff soft-deletes and inserts the lessons of one day in a single
// transaction. An inserted id that was soft-deleted before is restored.
func (s *SQLite) ApplyDiff(ctx context.Context, key reconcile.DayKey, diff reconcile.Diff) error {
	if diff.Empty() {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	deleteQuery := `
		UPDATE lesson
		SET is_deleted = TRUE, last_updated = CURRENT_TIMESTAMP
		WHERE id = ? AND entity_key = ?
	`
	for _, id := range diff.Delete {
		if _, err := tx.ExecContext(ctx, deleteQuery, id, key.Entity); err != nil {
			return fmt.Errorf("deleting lesson %s: %w", id, err)
		}
	}

	insertQuery := `
		INSERT INTO lesson (id, classroom, name, entity_key, week_id, day_num, lesson_num)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id, entity_key) DO UPDATE SET
			classroom = excluded.classroom,
			name = excluded.name,
			week_id = excluded.week_id,
			day_num = excluded.day_num,
			lesson_num = excluded.lesson_num,
			is_deleted = FALSE,
			last_updated = CURRENT_TIMESTAMP
	`
	for _, p := range diff.Insert {
		args, err := timetable.Flatten([]any{p.Lesson.Fields(), key.Entity, key.WeekID, key.Day, p.Period})
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, insertQuery, args...); err != nil {
			return fmt.Errorf("inserting lesson %s: %w", p.Lesson.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// AssignTeacher sets the teacher of stored lessons. Unknown lessons are
// skipped. It returns the number of lessons updated.
func (s *SQLite) AssignTeacher(ctx context.Context, teacherID string, lessons []reconcile.Assignment) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PreparexContext(ctx, `UPDATE lesson SET teacher_id = ? WHERE id = ? AND entity_key = ?`)
	if err != nil {
		return 0, fmt.Errorf("preparing statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	var total int64
	for _, l := range lessons {
		result, err := stmt.ExecContext(ctx, teacherID, l.LessonID, l.Group)
		if err != nil {
			return 0, fmt.Errorf("assigning lesson %s: %w", l.LessonID, err)
		}
		n, _ := result.RowsAffected()
		total += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return total, nil
}

type teacherRow struct {
	ID         string `db:"id"`
	Surname    string `db:"surname"`
	GivenName  string `db:"given_name"`
	Patronymic string `db:"patronymic"`
}

// UpsertTeacher stores a teacher, replacing the name of a known id.
func (s *SQLite) UpsertTeacher(ctx context.Context, t timetable.Teacher) error {
	query := `
		INSERT INTO teacher (id, surname, given_name, patronymic)
		VALUES (:id, :surname, :given_name, :patronymic)
		ON CONFLICT(id) DO UPDATE SET
			surname = excluded.surname,
			given_name = excluded.given_name,
			patronymic = excluded.patronymic
	`

	row := teacherRow{ID: t.ID, Surname: t.Surname, GivenName: t.GivenName, Patronymic: t.Patronymic}
	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("upserting teacher %s: %w", t.ID, err)
	}
	return nil
}

// GetTeacher returns a stored teacher.
func (s *SQLite) GetTeacher(ctx context.Context, id string) (timetable.Teacher, error) {
	var row teacherRow
	err := s.db.GetContext(ctx, &row, `SELECT id, surname, given_name, patronymic FROM teacher WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return timetable.Teacher{}, fmt.Errorf("%w: %s", ErrTeacherNotFound, id)
	}
	if err != nil {
		return timetable.Teacher{}, fmt.Errorf("querying teacher: %w", err)
	}
	return timetable.Teacher{
		ID:         row.ID,
		Surname:    row.Surname,
		GivenName:  row.GivenName,
		Patronymic: row.Patronymic,
	}, nil
}

// ListTeachers returns every stored teacher ordered by surname.
func (s *SQLite) ListTeachers(ctx context.Context) ([]timetable.Teacher, error) {
	var rows []teacherRow
	query := `SELECT id, surname, given_name, patronymic FROM teacher ORDER BY surname, given_name, patronymic`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("querying teachers: %w", err)
	}

	teachers := make([]timetable.Teacher, 0, len(rows))
	for _, r := range rows {
		teachers = append(teachers, timetable.Teacher{
			ID:         r.ID,
			Surname:    r.Surname,
			GivenName:  r.GivenName,
			Patronymic: r.Patronymic,
		})
	}
	return teachers, nil
}
