package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/javiermolinar/timetable/internal/collapse"
	"github.com/javiermolinar/timetable/internal/pipeline"
	"github.com/javiermolinar/timetable/internal/timetable"
)

// GroupPath returns where the page of a group week is written.
func GroupPath(dir, group string, week timetable.Week) string {
	return filepath.Join(dir, safeName(group), week.ID()+".html")
}

// TeacherPath returns where the page of a teacher week is written.
func TeacherPath(dir string, teacher timetable.Teacher, week timetable.Week) string {
	return filepath.Join(dir, safeName(teacher.Translit()), week.ID()+".html")
}

// GroupWriter returns a pipeline callback writing group pages under dir.
func GroupWriter(dir string, opts Options, logger *zap.Logger) pipeline.GroupCallback {
	return func(_ context.Context, grid timetable.GroupGrid, group string, week timetable.Week) error {
		path := GroupPath(dir, group, week)
		return writeFile(path, logger, func(f *os.File) error {
			return Group(f, group, week, collapse.Group(grid), opts)
		})
	}
}

// TeacherWriter returns a pipeline callback writing teacher pages under dir.
func TeacherWriter(dir string, opts Options, logger *zap.Logger) pipeline.TeacherCallback {
	return func(_ context.Context, grid timetable.TeacherGrid, teacher timetable.Teacher, week timetable.Week) error {
		path := TeacherPath(dir, teacher, week)
		return writeFile(path, logger, func(f *os.File) error {
			return Teacher(f, teacher, week, collapse.Teacher(grid), opts)
		})
	}
}

func writeFile(path string, logger *zap.Logger, write func(*os.File) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}

	if logger != nil {
		logger.Info("timetable written", zap.String("path", path))
	}
	return nil
}

// safeName keeps a name usable as a single path element.
func safeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(name)
	if name == "" {
		return "_"
	}
	return name
}
