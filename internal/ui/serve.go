package ui

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/javiermolinar/timetable/internal/config"
	"github.com/javiermolinar/timetable/internal/portal"
	"github.com/javiermolinar/timetable/internal/render"
	"github.com/javiermolinar/timetable/internal/server"
)

func (a *App) serveCmd() *cobra.Command {
	var addr, stylesheet string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored and live timetables over HTTP",
		Long: `Serve the archive over HTTP. When a portal instance is configured, live
group timetables are fetched on demand and cached for server.cache_ttl.
Live offsets are limited to ±server.max_offset weeks.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}

			deps := server.Deps{
				Store:     store,
				Builder:   a.builder(),
				Render:    render.Options{Locale: a.locale()},
				MaxOffset: a.config.Server.MaxOffset,
				Logger:    a.logger,
			}

			session, err := a.session(portal.Groups)
			switch {
			case errors.Is(err, config.ErrNoInstance):
				a.logger.Warn("portal not configured, live routes disabled")
			case err != nil:
				return err
			default:
				deps.Live = portal.NewCachedSource(session, a.config.CacheTTL())
			}

			if stylesheet != "" {
				if _, err := os.Stat(stylesheet); err != nil {
					return err
				}
				deps.Stylesheet = stylesheet
			} else if _, err := os.Stat(a.config.Render.CSSPath); err == nil {
				deps.Stylesheet = a.config.Render.CSSPath
			} else {
				a.logger.Debug("no stylesheet served", zap.String("css_path", a.config.Render.CSSPath))
			}

			if addr == "" {
				addr = a.config.Server.Addr
			}
			return server.New(deps).Run(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	cmd.Flags().StringVar(&stylesheet, "stylesheet", "", "Stylesheet file to serve with the pages")
	return cmd
}
