package ics

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"github.com/pthm/hxwidget/calendar"
	"github.com/pthm/hxwidget/lib/logging"
)

// Feed is a calendar.EventSource backed by an ICS payload. Occurrences
// are read-only on the widget.
type Feed struct {
	url     string
	fetcher *Fetcher
	loc     *time.Location
	color   string

	mu        sync.RWMutex
	events    []ParsedEvent
	updatedAt time.Time
}

var _ calendar.EventSource = (*Feed)(nil)

// FeedOption configures a Feed.
type FeedOption func(*Feed)

// WithLocation sets the zone occurrences are shown in. The default is UTC.
func WithLocation(loc *time.Location) FeedOption {
	return func(f *Feed) {
		f.loc = loc
	}
}

// WithColor sets the widget color of every occurrence.
func WithColor(color string) FeedOption {
	return func(f *Feed) {
		f.color = color
	}
}

// WithFetcher sets the fetcher used by Refresh.
func WithFetcher(fetcher *Fetcher) FeedOption {
	return func(f *Feed) {
		f.fetcher = fetcher
	}
}

// NewFeed creates a feed for the ICS document at url. It is empty until
// Refresh or Load succeeds.
func NewFeed(url string, opts ...FeedOption) *Feed {
	f := &Feed{url: url, loc: time.UTC}
	for _, opt := range opts {
		opt(f)
	}
	if f.fetcher == nil {
		f.fetcher = NewFetcher()
	}
	return f
}

// URL returns the feed address.
func (f *Feed) URL() string { return f.url }

// Load replaces the feed contents with a parsed payload.
func (f *Feed) Load(body []byte) error {
	events, err := Parse(body)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.events = events
	f.updatedAt = time.Now()
	f.mu.Unlock()
	return nil
}

// Refresh fetches and loads the feed. On failure the previous contents
// stay in place.
func (f *Feed) Refresh(ctx context.Context) error {
	if f.url == "" {
		return errors.New("ics: feed has no URL")
	}
	res, err := f.fetcher.Fetch(ctx, f.url)
	if err != nil {
		return err
	}
	if err := f.Load(res.Body); err != nil {
		return err
	}
	logging.Info().Str("url", redactURL(f.url)).Int("events", f.Len()).Bool("from_cache", res.FromCache).Msg("ics: feed refreshed")
	return nil
}

// Len returns the number of parsed VEVENTs, overrides included.
func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.events)
}

// UpdatedAt returns when the feed was last loaded.
func (f *Feed) UpdatedAt() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.updatedAt
}

// Events implements calendar.EventSource.
func (f *Feed) Events(_ context.Context, start, end time.Time) ([]calendar.CalendarEvent, error) {
	f.mu.RLock()
	events := f.events
	f.mu.RUnlock()

	res, err := Expand(events, ExpandConfig{
		DisplayLocation: f.loc,
		RangeStart:      start,
		RangeEnd:        end,
	})
	if err != nil {
		return nil, err
	}

	editable := false
	out := make([]calendar.CalendarEvent, 0, len(res.Occurrences))
	for _, occ := range res.Occurrences {
		out = append(out, calendar.CalendarEvent{
			ID:        OccurrenceID(occ),
			Title:     occ.Summary,
			Start:     occ.Start,
			End:       occ.End,
			AllDay:    occ.AllDay,
			Color:     f.color,
			ClassName: "ics",
			Editable:  &editable,
		})
	}
	return out, nil
}

// OccurrenceID derives a stable positive id for an occurrence, distinct
// from the small ids a MemoryStore hands out.
func OccurrenceID(occ Occurrence) int {
	h := fnv.New32a()
	h.Write([]byte(occ.UID))
	h.Write([]byte{0})
	h.Write([]byte(occ.InstanceKey))
	return int(h.Sum32()>>1) | 1<<30
}
