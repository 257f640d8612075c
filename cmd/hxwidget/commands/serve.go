package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pthm/hxwidget/calendar"
	"github.com/pthm/hxwidget/droppable"
	"github.com/pthm/hxwidget/internal/demo"
	"github.com/pthm/hxwidget/lib/config"
	"github.com/pthm/hxwidget/lib/ics"
	"github.com/pthm/hxwidget/lib/logging"
)

var (
	serveListen string
	serveTitle  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the demo server",
	Long: `Start an HTTP server with a fullCalendar agenda, a palette of draggable
tasks and a bin that deletes them. Configured ICS feeds are shown
read-only on the calendar and refreshed on the configured schedule.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "Listen address, overrides the config")
	serveCmd.Flags().StringVar(&serveTitle, "title", "hxwidget", "Page title")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveListen != "" {
		cfg.Listen = serveListen
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	key := cfg.KeyBytes()
	if key == nil {
		logging.Warn().Msg("no key configured, callback URLs will not survive a restart")
	}

	feeds := buildFeeds(cfg, loc)
	app := demo.New(demo.Options{
		Title:             serveTitle,
		Key:               key,
		CallbackPath:      cfg.CallbackPath,
		Location:          loc,
		CORSOrigins:       cfg.CORSOrigins,
		Feeds:             feeds,
		CalendarSettings:  calendar.DefaultSettings(),
		DroppableSettings: droppable.DefaultSettings(),
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(feeds) > 0 {
		refresher, err := ics.NewRefresher(cfg.Refresh, feeds...)
		if err != nil {
			return err
		}
		refresher.Start(ctx)
		defer refresher.Stop()
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logging.Info().
			Str("addr", cfg.Listen).
			Str("callback_path", app.Registry().Path()).
			Str("version", Version).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("server shutdown")
		return err
	}

	logging.Info().Msg("server stopped")
	return nil
}

func buildFeeds(cfg *config.Config, loc *time.Location) []*ics.Feed {
	if len(cfg.Feeds) == 0 {
		return nil
	}

	var fopts []ics.FetcherOption
	if cfg.CacheDir != "" {
		fopts = append(fopts, ics.WithCacheDir(cfg.CacheDir))
	}
	fetcher := ics.NewFetcher(fopts...)

	feeds := make([]*ics.Feed, 0, len(cfg.Feeds))
	for _, fc := range cfg.Feeds {
		feeds = append(feeds, ics.NewFeed(fc.URL,
			ics.WithLocation(loc),
			ics.WithColor(fc.Color),
			ics.WithFetcher(fetcher),
		))
		logging.Debug().Str("feed", fc.Name).Str("color", fc.Color).Msg("feed configured")
	}
	return feeds
}
