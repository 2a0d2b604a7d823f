package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS teacher (
			id          TEXT PRIMARY KEY,
			surname     TEXT NOT NULL,
			given_name  TEXT NOT NULL DEFAULT '',
			patronymic  TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS lesson (
			id           TEXT NOT NULL,
			classroom    TEXT NOT NULL DEFAULT '',
			name         TEXT NOT NULL DEFAULT '',
			entity_key   TEXT NOT NULL,
			week_id      TEXT NOT NULL,
			day_num      INTEGER NOT NULL CHECK(day_num BETWEEN 0 AND 6),
			lesson_num   INTEGER NOT NULL CHECK(lesson_num >= 0),
			teacher_id   TEXT REFERENCES teacher(id),
			is_deleted   BOOLEAN NOT NULL DEFAULT FALSE,
			last_updated DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (id, entity_key)
		);

		CREATE INDEX IF NOT EXISTS idx_lesson_week ON lesson(entity_key, week_id, day_num);
		CREATE INDEX IF NOT EXISTS idx_lesson_teacher ON lesson(teacher_id, week_id);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating lesson tables: %w", err)
	}

	return nil
}
