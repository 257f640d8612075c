package ics

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/pthm/hxwidget/lib/logging"
)

// DefaultSchedule refreshes feeds every fifteen minutes.
const DefaultSchedule = "*/15 * * * *"

// Refresher reloads feeds on a cron schedule.
type Refresher struct {
	cron    *cron.Cron
	feeds   []*Feed
	timeout time.Duration

	mu      sync.Mutex
	lastErr map[string]error
}

// NewRefresher schedules feeds with a standard five-field cron spec.
func NewRefresher(schedule string, feeds ...*Feed) (*Refresher, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	r := &Refresher{
		cron:    cron.New(cron.WithLogger(cronLogger{logging.Logger})),
		feeds:   feeds,
		timeout: time.Minute,
		lastErr: make(map[string]error),
	}
	if _, err := r.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		r.RefreshAll(ctx)
	}); err != nil {
		return nil, err
	}
	return r, nil
}

// RefreshAll refreshes every feed once and records the failures.
func (r *Refresher) RefreshAll(ctx context.Context) {
	for _, f := range r.feeds {
		err := f.Refresh(ctx)
		if err != nil {
			logging.Error().Err(err).Str("url", redactURL(f.URL())).Msg("ics: refresh failed")
		}
		r.mu.Lock()
		r.lastErr[f.URL()] = err
		r.mu.Unlock()
	}
}

// LastError returns the outcome of the latest refresh of the feed at url.
func (r *Refresher) LastError(url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr[url]
}

// Start refreshes every feed once, then runs the schedule in the
// background.
func (r *Refresher) Start(ctx context.Context) {
	r.RefreshAll(ctx)
	r.cron.Start()
}

// Stop halts the schedule and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
