package demo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pthm/hxwidget"
	"github.com/pthm/hxwidget/calendar"
	"github.com/pthm/hxwidget/lib/logging"
)

// Regions re-rendered by calendar callbacks.
const (
	RegionRange  = "range"
	RegionDetail = "detail"
)

// NewEventTitle is the title of events created by selecting a range.
const NewEventTitle = "New event"

// Agenda answers calendar callbacks against a MemoryStore. Events that
// come from subscribed feeds are not in the store and are read-only.
type Agenda struct {
	calendar.Adapter

	store   *calendar.MemoryStore
	refetch hxwidget.JS
}

var _ calendar.Listener = (*Agenda)(nil)

// NewAgenda creates a listener editing store.
func NewAgenda(store *calendar.MemoryStore) *Agenda {
	return &Agenda{store: store}
}

func (a *Agenda) IsSelectable() bool         { return true }
func (a *Agenda) IsDayClickEnabled() bool    { return true }
func (a *Agenda) IsEventClickEnabled() bool  { return true }
func (a *Agenda) IsEventDropEnabled() bool   { return true }
func (a *Agenda) IsEventResizeEnabled() bool { return true }
func (a *Agenda) IsObjectDropEnabled() bool  { return true }
func (a *Agenda) IsViewRenderEnabled() bool  { return true }

// Subscribed occurrences are sent with editable false.
func (a *Agenda) EventDropPrecondition() string   { return "event.editable !== false" }
func (a *Agenda) EventResizePrecondition() string { return "event.editable !== false" }

func (a *Agenda) OnSelect(ctx context.Context, t *hxwidget.Target, view calendar.View, start, end time.Time, allDay bool) error {
	id := a.store.Add(calendar.CalendarEvent{
		Title:  NewEventTitle,
		Start:  start,
		End:    end,
		AllDay: allDay,
	})
	logging.Debug().Int("event", id).Str("view", string(view)).Msg("event created from selection")
	t.AppendScript(a.refetch).
		Flash(hxwidget.FlashSuccess, fmt.Sprintf("Added %q on %s", NewEventTitle, formatWhen(start, allDay)))
	return nil
}

func (a *Agenda) OnDayClick(ctx context.Context, t *hxwidget.Target, view calendar.View, date time.Time, allDay bool) error {
	t.Add(RegionDetail, dayDetail(date, allDay))
	return nil
}

func (a *Agenda) OnEventClick(ctx context.Context, t *hxwidget.Target, view calendar.View, eventID int) error {
	ev, err := a.store.Get(eventID)
	if hxwidget.IsNotFound(err) {
		t.Add(RegionDetail, readOnlyDetail(eventID))
		return nil
	}
	if err != nil {
		return err
	}
	t.Add(RegionDetail, eventDetail(ev))
	return nil
}

func (a *Agenda) OnEventDrop(ctx context.Context, t *hxwidget.Target, eventID int, deltaMillis int64, allDay bool) error {
	ev, err := a.store.Move(eventID, deltaMillis, allDay)
	if err != nil {
		return a.rejected(t, eventID, err)
	}
	t.Add(RegionDetail, eventDetail(ev)).
		Flash(hxwidget.FlashSuccess, fmt.Sprintf("Moved %q to %s", ev.Title, formatWhen(ev.Start, ev.AllDay)))
	return nil
}

func (a *Agenda) OnEventResize(ctx context.Context, t *hxwidget.Target, eventID int, deltaMillis int64) error {
	ev, err := a.store.Resize(eventID, deltaMillis)
	if err != nil {
		return a.rejected(t, eventID, err)
	}
	t.Add(RegionDetail, eventDetail(ev)).
		Flash(hxwidget.FlashSuccess, fmt.Sprintf("%q now ends %s", ev.Title, formatWhen(ev.End, ev.AllDay)))
	return nil
}

func (a *Agenda) OnObjectDrop(ctx context.Context, t *hxwidget.Target, title string, date time.Time, allDay bool) error {
	if title == "" {
		return fmt.Errorf("object drop without title: %w", hxwidget.ErrMalformedRequest)
	}
	end := date.Add(time.Hour)
	if allDay {
		end = date.AddDate(0, 0, 1)
	}
	id := a.store.Add(calendar.CalendarEvent{Title: title, Start: date, End: end, AllDay: allDay})
	logging.Debug().Int("event", id).Str("title", title).Msg("event created from drop")
	t.AppendScript(a.refetch).
		Flash(hxwidget.FlashSuccess, fmt.Sprintf("Scheduled %q on %s", title, formatWhen(date, allDay)))
	return nil
}

func (a *Agenda) OnViewRender(ctx context.Context, t *hxwidget.Target, view calendar.View, start, end time.Time) error {
	t.Add(RegionRange, rangeLabel(view, start, end))
	return nil
}

// rejected reverts the client after a move the store refused. The widget
// has already moved the event, so the feed is reloaded.
func (a *Agenda) rejected(t *hxwidget.Target, eventID int, err error) error {
	var msg string
	switch {
	case hxwidget.IsNotFound(err):
		msg = fmt.Sprintf("Event %d can no longer be changed", eventID)
	case errors.Is(err, calendar.ErrNegativeDuration):
		msg = "An event cannot end before it starts"
	default:
		return err
	}
	t.AppendScript(a.refetch).Flash(hxwidget.FlashWarning, msg)
	return nil
}

func formatWhen(t time.Time, allDay bool) string {
	if allDay {
		return t.Format("Mon 2 Jan")
	}
	return t.Format("Mon 2 Jan 15:04")
}
