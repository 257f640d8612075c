package calendar

import (
	"context"
	"time"

	"github.com/pthm/hxwidget"
)

// Listener receives calendar callbacks.
//
// The Is*Enabled predicates are read once, when the calendar is built.
// A callback whose predicate is false gets no endpoint and no client
// function, so its On* method is never called.
//
// Embed Adapter to get every predicate false and every handler a no-op,
// then override what the page needs:
//
//	type Agenda struct {
//	    calendar.Adapter
//	    store *calendar.MemoryStore
//	}
//
//	func (a *Agenda) IsEventDropEnabled() bool { return true }
//
//	func (a *Agenda) OnEventDrop(ctx context.Context, t *hxwidget.Target, id int, delta int64, allDay bool) error {
//	    _, err := a.store.Move(id, delta, allDay)
//	    return err
//	}
type Listener interface {
	IsSelectable() bool
	IsDayClickEnabled() bool
	IsEventClickEnabled() bool
	IsEventDropEnabled() bool
	IsEventResizeEnabled() bool
	IsObjectDropEnabled() bool
	IsViewRenderEnabled() bool

	// EventDropPrecondition and EventResizePrecondition return javascript
	// boolean expressions evaluated on the client before the request. The
	// callback arguments (event, delta, revertFunc, ...) are in scope.
	// An empty string means no guard.
	EventDropPrecondition() string
	EventResizePrecondition() string

	OnSelect(ctx context.Context, t *hxwidget.Target, view View, start, end time.Time, allDay bool) error
	OnDayClick(ctx context.Context, t *hxwidget.Target, view View, date time.Time, allDay bool) error
	OnEventClick(ctx context.Context, t *hxwidget.Target, view View, eventID int) error
	OnEventDrop(ctx context.Context, t *hxwidget.Target, eventID int, deltaMillis int64, allDay bool) error
	OnEventResize(ctx context.Context, t *hxwidget.Target, eventID int, deltaMillis int64) error
	OnObjectDrop(ctx context.Context, t *hxwidget.Target, title string, date time.Time, allDay bool) error
	OnViewRender(ctx context.Context, t *hxwidget.Target, view View, start, end time.Time) error
}

// Adapter implements Listener with everything disabled.
type Adapter struct{}

var _ Listener = Adapter{}

func (Adapter) IsSelectable() bool              { return false }
func (Adapter) IsDayClickEnabled() bool         { return false }
func (Adapter) IsEventClickEnabled() bool       { return false }
func (Adapter) IsEventDropEnabled() bool        { return false }
func (Adapter) IsEventResizeEnabled() bool      { return false }
func (Adapter) IsObjectDropEnabled() bool       { return false }
func (Adapter) IsViewRenderEnabled() bool       { return false }
func (Adapter) EventDropPrecondition() string   { return "" }
func (Adapter) EventResizePrecondition() string { return "" }

func (Adapter) OnSelect(context.Context, *hxwidget.Target, View, time.Time, time.Time, bool) error {
	return nil
}

func (Adapter) OnDayClick(context.Context, *hxwidget.Target, View, time.Time, bool) error {
	return nil
}

func (Adapter) OnEventClick(context.Context, *hxwidget.Target, View, int) error {
	return nil
}

func (Adapter) OnEventDrop(context.Context, *hxwidget.Target, int, int64, bool) error {
	return nil
}

func (Adapter) OnEventResize(context.Context, *hxwidget.Target, int, int64) error {
	return nil
}

func (Adapter) OnObjectDrop(context.Context, *hxwidget.Target, string, time.Time, bool) error {
	return nil
}

func (Adapter) OnViewRender(context.Context, *hxwidget.Target, View, time.Time, time.Time) error {
	return nil
}
