package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/pthm/hxwidget"
	"github.com/pthm/hxwidget/lib/logging"
)

// CalendarEvent is one entry of the fullCalendar event feed.
type CalendarEvent struct {
	ID        int
	Title     string
	Start     time.Time
	End       time.Time // zero when open-ended
	AllDay    bool
	URL       string
	Color     string
	ClassName string
	Editable  *bool // nil inherits the calendar setting
}

type feedEvent struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Start     string `json:"start"`
	End       string `json:"end,omitempty"`
	AllDay    bool   `json:"allDay"`
	URL       string `json:"url,omitempty"`
	Color     string `json:"color,omitempty"`
	ClassName string `json:"className,omitempty"`
	Editable  *bool  `json:"editable,omitempty"`
}

// MarshalJSON encodes the event in the shape fullCalendar reads. All-day
// events carry plain dates; timed events carry local date-times.
func (e CalendarEvent) MarshalJSON() ([]byte, error) {
	layout := hxwidget.LocalDateTimeLayout
	if e.AllDay {
		layout = hxwidget.DateLayout
	}
	out := feedEvent{
		ID:        e.ID,
		Title:     e.Title,
		Start:     e.Start.Format(layout),
		AllDay:    e.AllDay,
		URL:       e.URL,
		Color:     e.Color,
		ClassName: e.ClassName,
		Editable:  e.Editable,
	}
	if !e.End.IsZero() {
		out.End = e.End.Format(layout)
	}
	return json.Marshal(out)
}

// Overlaps reports whether the event intersects [start, end). The event's
// end is exclusive too; an event without a later end occupies its start
// instant.
func (e CalendarEvent) Overlaps(start, end time.Time) bool {
	return e.Start.Before(end) && e.endsAfter(start)
}

func (e CalendarEvent) endsAfter(t time.Time) bool {
	if !e.End.After(e.Start) {
		return !e.Start.Before(t)
	}
	return e.End.After(t)
}

// EventSource supplies the events visible in a date range.
type EventSource interface {
	Events(ctx context.Context, start, end time.Time) ([]CalendarEvent, error)
}

// EventSourceFunc adapts a function to EventSource.
type EventSourceFunc func(ctx context.Context, start, end time.Time) ([]CalendarEvent, error)

// Events implements EventSource.
func (f EventSourceFunc) Events(ctx context.Context, start, end time.Time) ([]CalendarEvent, error) {
	return f(ctx, start, end)
}

// MultiSource merges several sources. Events are sorted by start time.
type MultiSource []EventSource

// Events implements EventSource.
func (m MultiSource) Events(ctx context.Context, start, end time.Time) ([]CalendarEvent, error) {
	var all []CalendarEvent
	for _, src := range m {
		evs, err := src.Events(ctx, start, end)
		if err != nil {
			return nil, err
		}
		all = append(all, evs...)
	}
	sortEvents(all)
	return all, nil
}

func sortEvents(evs []CalendarEvent) {
	sort.SliceStable(evs, func(i, j int) bool {
		if evs[i].Start.Equal(evs[j].Start) {
			return evs[i].ID < evs[j].ID
		}
		return evs[i].Start.Before(evs[j].Start)
	})
}

// FeedHandler serves src as a fullCalendar JSON feed. The widget passes
// the visible range as start and end query parameters; dates without an
// offset are read in loc.
func FeedHandler(src EventSource, loc *time.Location) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := hxwidget.NewParams(r.URL.Query(), loc)
		start := p.Moment("start")
		end := p.Moment("end")
		if err := p.Err(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		evs, err := src.Events(r.Context(), start, end)
		if err != nil {
			logging.Error().Err(err).Time("start", start).Time("end", end).Msg("event feed failed")
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}
		if evs == nil {
			evs = []CalendarEvent{}
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		if err := json.NewEncoder(w).Encode(evs); err != nil {
			logging.Warn().Err(err).Msg("event feed write failed")
		}
	})
}
