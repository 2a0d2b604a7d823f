package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/timetable/internal/config"
	"github.com/javiermolinar/timetable/internal/tui/theme"
)

func (a *App) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Print the effective configuration, environment overrides included.

Example:
  timetable config
  timetable config init
  timetable config set-session <cookie value>`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			printConfig(a.out, a.config)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values if none exists",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			path := a.configPath()
			if _, err := os.Stat(path); err == nil {
				fmt.Fprintf(a.out, "%s %s already exists\n", formatWarn("!"), path)
				return nil
			}
			if err := a.config.SaveTo(path); err != nil {
				return fmt.Errorf("saving config: %w", err)
			}
			fmt.Fprintf(a.out, "%s created %s\n", formatOK("✓"), path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set-session <value>",
		Short: "Store the portal session cookie",
		Long: `Store the value of the portal's session cookie, copied from a browser
where you are logged in. The portal rotates it on every request; the new
value is saved automatically after each fetch.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			value := strings.TrimSpace(args[0])
			if value == "" {
				return fmt.Errorf("empty session value")
			}
			if err := a.config.SetCookie(config.SessionCookie, value); err != nil {
				return fmt.Errorf("saving session: %w", err)
			}
			fmt.Fprintf(a.out, "%s session saved to %s\n", formatOK("✓"), a.configPath())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintln(a.out, a.configPath())
		},
	})

	return cmd
}

func (a *App) configPath() string {
	if p := a.config.Path(); p != "" {
		return p
	}
	return config.DefaultConfigPath()
}

func printConfig(w io.Writer, cfg *config.Config) {
	session := formatMuted("(not set)")
	if v := cfg.Cookies()[config.SessionCookie]; v != "" {
		session = maskSecret(v)
	}
	instance := cfg.Portal.Instance
	if instance == "" {
		instance = formatMuted("(not set)")
	}

	fmt.Fprintln(w, formatHeader("Current configuration:"))
	fmt.Fprintln(w, "──────────────────────")
	fmt.Fprintln(w, "[portal]")
	fmt.Fprintf(w, "  instance    = %s\n", instance)
	fmt.Fprintf(w, "  session     = %s\n", session)
	fmt.Fprintln(w, "\n[render]")
	fmt.Fprintf(w, "  css_path    = %s\n", cfg.Render.CSSPath)
	fmt.Fprintf(w, "  output_dir  = %s\n", cfg.Render.OutputDir)
	fmt.Fprintf(w, "  locale      = %s\n", cfg.Render.Locale)
	fmt.Fprintln(w, "\n[storage]")
	fmt.Fprintf(w, "  db_path     = %s\n", cfg.Storage.DBPath)
	fmt.Fprintln(w, "\n[log]")
	fmt.Fprintf(w, "  level       = %s\n", cfg.Log.Level)
	fmt.Fprintf(w, "  format      = %s\n", cfg.Log.Format)
	fmt.Fprintln(w, "\n[server]")
	fmt.Fprintf(w, "  addr        = %s\n", cfg.Server.Addr)
	fmt.Fprintf(w, "  cache_ttl   = %s\n", cfg.Server.CacheTTL)
	fmt.Fprintf(w, "  max_offset  = %d\n", cfg.Server.MaxOffset)
	fmt.Fprintln(w, "\n[ui]")
	fmt.Fprintf(w, "  theme       = %s %s\n", cfg.UI.Theme, formatMuted("("+strings.Join(theme.Available(), ", ")+")"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "groups: %d, teachers: %d, aliases: %d\n", len(cfg.Groups), len(cfg.Teachers), len(cfg.Aliases))
}

// maskSecret keeps only the ends of a secret visible.
func maskSecret(v string) string {
	if len(v) <= 8 {
		return strings.Repeat("*", len(v))
	}
	return v[:4] + strings.Repeat("*", 8) + v[len(v)-4:]
}
