package ui

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/timetable/internal/collapse"
	"github.com/javiermolinar/timetable/internal/render"
	"github.com/javiermolinar/timetable/internal/tui"
)

func (a *App) showCmd() *cobra.Command {
	var teacher bool

	cmd := &cobra.Command{
		Use:   "show <group> [week]",
		Short: "Print a stored week as a table",
		Long: `Print the stored timetable of a group for a week. The week is an id such
as 2025-11, a date such as 2025-03-12, an offset from the current week
such as +1, or empty for the current week. Negative offsets go after "--", e.g. show ИС-21 -- -1.
With --teacher the first argument is a teacher id.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var weekArg string
			if len(args) > 1 {
				weekArg = args[1]
			}
			week, err := parseWeek(weekArg, a.now())
			if err != nil {
				return err
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			loc := a.locale()

			if teacher {
				t, err := store.GetTeacher(ctx, args[0])
				if err != nil {
					return err
				}
				grid, err := store.LoadTeacher(ctx, t.ID, week)
				if err != nil {
					return fmt.Errorf("loading timetable: %w", err)
				}
				fmt.Fprintf(a.out, "%s  %s\n", formatHeader(t.FullName()), week.ID())
				if grid.Slots() == 0 {
					fmt.Fprintln(a.out, formatMuted("No stored lessons for this week."))
					return nil
				}
				fmt.Fprintln(a.out, render.TerminalTeacher(week, collapse.Teacher(grid), loc, termWidth()))
				return nil
			}

			grid, err := store.Load(ctx, args[0], week)
			if err != nil {
				return fmt.Errorf("loading timetable: %w", err)
			}
			fmt.Fprintf(a.out, "%s  %s\n", formatHeader(args[0]), week.ID())
			if grid.Slots() == 0 {
				fmt.Fprintln(a.out, formatMuted("No stored lessons for this week."))
				return nil
			}
			fmt.Fprintln(a.out, render.Terminal(week, collapse.Group(grid), loc, termWidth()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&teacher, "teacher", false, "Treat the argument as a teacher id")
	return cmd
}

func (a *App) browseCmd() *cobra.Command {
	var themeName string

	cmd := &cobra.Command{
		Use:   "browse [group]",
		Short: "Browse stored weeks interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			opts := tui.Options{
				Entities: a.config.Groups,
				Week:     a.now(),
				Locale:   a.locale(),
				Theme:    a.config.UI.Theme,
			}
			if themeName != "" {
				opts.Theme = themeName
			}
			if len(args) == 1 {
				opts.Entity = args[0]
			}
			return tui.Run(store, opts)
		},
	}

	cmd.Flags().StringVar(&themeName, "theme", "", "Color theme (overrides ui.theme)")
	return cmd
}
