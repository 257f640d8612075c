package calendar

import "time"

// Event is one decoded calendar callback. The set of implementations is
// closed: every variant has a row in the decode table and an arm in
// Dispatch.
type Event interface {
	// Name returns the callback name the event was decoded from.
	Name() string
	calendarEvent()
}

// SelectEvent is sent when the user selects a date range.
type SelectEvent struct {
	ViewName string
	Start    time.Time
	End      time.Time
	AllDay   bool
}

// DayClickEvent is sent when the user clicks on a day or a time slot.
type DayClickEvent struct {
	ViewName string
	Date     time.Time
	AllDay   bool
}

// EventClickEvent is sent when the user clicks on a calendar event.
type EventClickEvent struct {
	ViewName string
	EventID  int
}

// EventDropEvent is sent when the user moves a calendar event.
type EventDropEvent struct {
	EventID     int
	DeltaMillis int64
	AllDay      bool
}

// EventResizeEvent is sent when the user changes the duration of a
// calendar event.
type EventResizeEvent struct {
	EventID     int
	DeltaMillis int64
}

// ObjectDropEvent is sent when an external draggable is dropped onto the
// calendar.
type ObjectDropEvent struct {
	Title  string
	Date   time.Time
	AllDay bool
}

// ViewRenderEvent is sent when the calendar shows a new date range.
type ViewRenderEvent struct {
	ViewName string
	Start    time.Time
	End      time.Time
}

func (SelectEvent) Name() string      { return EventSelect }
func (DayClickEvent) Name() string    { return EventDayClick }
func (EventClickEvent) Name() string  { return EventEventClick }
func (EventDropEvent) Name() string   { return EventEventDrop }
func (EventResizeEvent) Name() string { return EventEventResize }
func (ObjectDropEvent) Name() string  { return EventObjectDrop }
func (ViewRenderEvent) Name() string  { return EventViewRender }

func (SelectEvent) calendarEvent()      {}
func (DayClickEvent) calendarEvent()    {}
func (EventClickEvent) calendarEvent()  {}
func (EventDropEvent) calendarEvent()   {}
func (EventResizeEvent) calendarEvent() {}
func (ObjectDropEvent) calendarEvent()  {}
func (ViewRenderEvent) calendarEvent()  {}

// View resolves the event's view name.
func (e SelectEvent) View() View { return ViewOf(e.ViewName) }

// View resolves the event's view name.
func (e DayClickEvent) View() View { return ViewOf(e.ViewName) }

// View resolves the event's view name.
func (e EventClickEvent) View() View { return ViewOf(e.ViewName) }

// View resolves the event's view name.
func (e ViewRenderEvent) View() View { return ViewOf(e.ViewName) }

// Delta returns the drop offset as a duration.
func (e EventDropEvent) Delta() time.Duration {
	return time.Duration(e.DeltaMillis) * time.Millisecond
}

// Delta returns the resize offset as a duration.
func (e EventResizeEvent) Delta() time.Duration {
	return time.Duration(e.DeltaMillis) * time.Millisecond
}
