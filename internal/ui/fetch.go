package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/timetable/internal/config"
	"github.com/javiermolinar/timetable/internal/pipeline"
	"github.com/javiermolinar/timetable/internal/reconcile"
	"github.com/javiermolinar/timetable/internal/render"
	"github.com/javiermolinar/timetable/internal/timetable"
)

// fetchFlags are shared by the fetch and teachers commands.
type fetchFlags struct {
	from    int
	to      int
	html    bool
	noStore bool
}

func (f *fetchFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.from, "from", 0, "First week, as an offset from the current one")
	cmd.Flags().IntVar(&f.to, "to", 0, "Last week, as an offset from the current one")
	cmd.Flags().BoolVar(&f.html, "html", false, "Write HTML pages to the output directory")
	cmd.Flags().BoolVar(&f.noStore, "no-store", false, "Do not update the archive")
}

func (a *App) fetchCmd() *cobra.Command {
	var flags fetchFlags

	cmd := &cobra.Command{
		Use:   "fetch [group...]",
		Short: "Fetch group timetables and update the archive",
		Long: `Fetch the timetables of the given groups, or of the configured ones,
for every week between --from and --to.

Example:
  timetable fetch ИС-21 --from -1 --to 2 --html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			groups := args
			if len(groups) == 0 {
				groups = a.config.Groups
			}
			if len(groups) == 0 {
				return errors.New("no groups given and none configured")
			}

			runner, err := a.runner()
			if err != nil {
				return err
			}

			var callbacks []pipeline.GroupCallback
			if !flags.noStore {
				store, err := a.openStore()
				if err != nil {
					return err
				}
				callbacks = append(callbacks, pipeline.StoreGroups(reconcile.NewSyncer(store, a.logger)))
			}
			if flags.html {
				callbacks = append(callbacks, render.GroupWriter(a.config.Render.OutputDir, a.renderOptions(), a.logger))
			}
			callbacks = append(callbacks, a.reportGroup)

			return runner.Groups(cmd.Context(), groups, pipeline.Offsets(flags.from, flags.to), callbacks...)
		},
	}

	flags.register(cmd)
	return cmd
}

func (a *App) teachersCmd() *cobra.Command {
	var flags fetchFlags

	cmd := &cobra.Command{
		Use:   "teachers [id...]",
		Short: "Fetch teacher timetables and assign teachers to stored lessons",
		Long: `Fetch the timetables of the configured teachers, or only of the given ids,
for every week between --from and --to. Stored lessons the teacher gives are
linked to the teacher.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			teachers, err := selectTeachers(a.config.Teachers, args)
			if err != nil {
				return err
			}

			runner, err := a.runner()
			if err != nil {
				return err
			}

			var callbacks []pipeline.TeacherCallback
			if !flags.noStore {
				store, err := a.openStore()
				if err != nil {
					return err
				}
				callbacks = append(callbacks, pipeline.StoreTeachers(reconcile.NewSyncer(store, a.logger), store))
			}
			if flags.html {
				callbacks = append(callbacks, render.TeacherWriter(a.config.Render.OutputDir, a.renderOptions(), a.logger))
			}
			callbacks = append(callbacks, a.reportTeacher)

			return runner.Teachers(cmd.Context(), teachers, pipeline.Offsets(flags.from, flags.to), callbacks...)
		},
	}

	flags.register(cmd)
	return cmd
}

// selectTeachers returns the configured teachers, restricted to ids when
// any are given.
func selectTeachers(entries []config.TeacherEntry, ids []string) ([]timetable.Teacher, error) {
	if len(entries) == 0 {
		return nil, errors.New("no teachers configured")
	}
	byID := make(map[string]config.TeacherEntry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}

	if len(ids) == 0 {
		teachers := make([]timetable.Teacher, 0, len(entries))
		for _, e := range entries {
			teachers = append(teachers, e.Teacher())
		}
		return teachers, nil
	}

	teachers := make([]timetable.Teacher, 0, len(ids))
	for _, id := range ids {
		e, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("teacher %q is not configured", id)
		}
		teachers = append(teachers, e.Teacher())
	}
	return teachers, nil
}

func (a *App) reportGroup(_ context.Context, grid timetable.GroupGrid, group string, week timetable.Week) error {
	fmt.Fprintf(a.out, "%s %s %s %s\n", formatOK("✓"), group, week.ID(), formatMuted(fmt.Sprintf("(%d lessons)", grid.Slots())))
	return nil
}

func (a *App) reportTeacher(_ context.Context, grid timetable.TeacherGrid, teacher timetable.Teacher, week timetable.Week) error {
	fmt.Fprintf(a.out, "%s %s %s %s\n", formatOK("✓"), teacher.Initials(), week.ID(), formatMuted(fmt.Sprintf("(%d periods)", grid.Slots())))
	return nil
}
