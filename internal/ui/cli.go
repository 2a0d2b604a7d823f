// Package ui wires the command line interface.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/javiermolinar/timetable/internal/alias"
	"github.com/javiermolinar/timetable/internal/config"
	"github.com/javiermolinar/timetable/internal/dateutil"
	"github.com/javiermolinar/timetable/internal/db"
	"github.com/javiermolinar/timetable/internal/logging"
	"github.com/javiermolinar/timetable/internal/pipeline"
	"github.com/javiermolinar/timetable/internal/portal"
	"github.com/javiermolinar/timetable/internal/render"
	"github.com/javiermolinar/timetable/internal/timetable"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	config *config.Config
	logger *zap.Logger
	store  *db.SQLite
	root   *cobra.Command
	out    io.Writer

	// transport overrides the portal HTTP transport, for tests.
	transport portal.Transport
	now       func() timetable.Week

	noColor  bool
	logLevel string
}

// NewApp creates a new CLI application with the given config.
func NewApp(cfg *config.Config) *App {
	a := &App{config: cfg, out: os.Stdout, logger: zap.NewNop(), now: timetable.CurrentWeek}

	a.root = &cobra.Command{
		Use:   "timetable",
		Short: "Fetch, archive and render egov66 weekly timetables",
		Long: `Timetable reads weekly timetables of groups and teachers from an egov66
education portal, keeps them in a local archive and renders them as HTML
pages or terminal tables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.setup()
		},
	}

	a.root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable color output")
	a.root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override the configured log level")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.fetchCmd())
	a.root.AddCommand(a.teachersCmd())
	a.root.AddCommand(a.showCmd())
	a.root.AddCommand(a.browseCmd())
	a.root.AddCommand(a.serveCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(a.out, "timetable %s (commit: %s)\n", Version, Commit)
		},
	}
}

// Execute runs the CLI application until it finishes or is interrupted.
func (a *App) Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.root.ExecuteContext(ctx)
}

// Close releases the store and flushes the logger.
func (a *App) Close() error {
	_ = a.logger.Sync()
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

func (a *App) setup() error {
	if a.noColor {
		DisableColor()
	}
	if a.logLevel != "" {
		a.config.Log.Level = strings.ToLower(a.logLevel)
	}
	logger, err := logging.New(a.config.Log)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	a.logger = logger
	return nil
}

func (a *App) openStore() (*db.SQLite, error) {
	if a.store != nil {
		return a.store, nil
	}
	path := a.config.Storage.DBPath
	if path == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	store, err := db.New(path)
	if err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}
	a.store = store
	return store, nil
}

func (a *App) locale() render.Locale {
	return render.LocaleFor(a.config.Render.Locale)
}

func (a *App) renderOptions() render.Options {
	return render.Options{CSSPath: a.config.Render.CSSPath, Locale: a.locale()}
}

func (a *App) builder() *timetable.Builder {
	resolver := alias.NewResolver(a.config.Aliases, a.logger)
	a.logger.Debug("aliases loaded",
		zap.Int("rules", resolver.Len()),
		zap.Int("skipped", len(a.config.Aliases)-resolver.Len()))
	return timetable.NewBuilder(resolver, a.logger)
}

// session opens a portal session of the given kind. Rotated cookies are
// written back to the config file.
func (a *App) session(kind portal.Kind) (*portal.Session, error) {
	if err := a.config.RequirePortal(); err != nil {
		return nil, err
	}
	transport := a.transport
	if transport == nil {
		t, err := portal.NewHTTPTransport(a.config.Portal.Instance, nil)
		if err != nil {
			return nil, err
		}
		transport = t
	}
	return portal.NewSession(kind, a.config.Portal.Instance, transport, a.config, a.logger), nil
}

func (a *App) runner() (*pipeline.Runner, error) {
	groups, err := a.session(portal.Groups)
	if err != nil {
		return nil, err
	}
	teachers, err := a.session(portal.Teachers)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(groups, teachers, a.builder(), a.logger)
	r.SetClock(a.now)
	return r, nil
}

// parseWeek accepts a week id ("2025-11"), a signed offset from now ("-1",
// "+2") or nothing for the current week.
func parseWeek(arg string, now timetable.Week) (timetable.Week, error) {
	if arg == "" {
		return now, nil
	}
	if n, err := strconv.Atoi(arg); err == nil {
		return now.Add(n), nil
	}
	if strings.Count(arg, "-") == 2 {
		date, err := dateutil.ParseDate(arg)
		if err != nil {
			return timetable.Week{}, err
		}
		return timetable.NewWeek(date), nil
	}
	return timetable.ParseWeekID(arg)
}
