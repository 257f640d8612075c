package calendar

import (
	"context"

	"github.com/pthm/hxwidget"
)

// Dispatch calls the listener method matching ev.
//
// Every Event variant has an arm. Reaching the default arm means a
// variant was added without one, and Dispatch panics.
func Dispatch(ctx context.Context, t *hxwidget.Target, l Listener, ev Event) error {
	switch e := ev.(type) {
	case SelectEvent:
		return l.OnSelect(ctx, t, e.View(), e.Start, e.End, e.AllDay)
	case DayClickEvent:
		return l.OnDayClick(ctx, t, e.View(), e.Date, e.AllDay)
	case EventClickEvent:
		return l.OnEventClick(ctx, t, e.View(), e.EventID)
	case EventDropEvent:
		return l.OnEventDrop(ctx, t, e.EventID, e.DeltaMillis, e.AllDay)
	case EventResizeEvent:
		return l.OnEventResize(ctx, t, e.EventID, e.DeltaMillis)
	case ObjectDropEvent:
		return l.OnObjectDrop(ctx, t, e.Title, e.Date, e.AllDay)
	case ViewRenderEvent:
		return l.OnViewRender(ctx, t, e.View(), e.Start, e.End)
	default:
		panic(hxwidget.UnknownEventError(ev))
	}
}
