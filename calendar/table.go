package calendar

import (
	"github.com/pthm/hxwidget"
)

// Callback names. They are the last path segment of each endpoint.
const (
	EventSelect      = "select"
	EventDayClick    = "dayClick"
	EventEventClick  = "eventClick"
	EventEventDrop   = "eventDrop"
	EventEventResize = "eventResize"
	EventObjectDrop  = "objectDrop"
	EventViewRender  = "viewRender"
)

type row struct {
	desc    hxwidget.EventDescriptor
	decode  func(*hxwidget.Params) (Event, error)
	enabled func(Listener) bool
	guard   func(Listener) string
}

// table lists every calendar callback: its client parameters, its decoder
// and the listener predicate deciding whether it is installed.
var table = []row{
	{
		desc: hxwidget.EventDescriptor{
			Name: EventSelect,
			Params: []hxwidget.CallbackParameter{
				hxwidget.Converted("startDate", "startDate.format()"),
				hxwidget.Converted("endDate", "endDate.format()"),
				hxwidget.Resolved("allDay", "!startDate.hasTime()"),
				hxwidget.Context("jsEvent"),
				hxwidget.Context("view"),
				hxwidget.Resolved("viewName", "view.name"),
			},
		},
		decode:  decodeSelect,
		enabled: Listener.IsSelectable,
	},
	{
		desc: hxwidget.EventDescriptor{
			Name: EventDayClick,
			Params: []hxwidget.CallbackParameter{
				hxwidget.Converted("date", "date.format()"),
				hxwidget.Resolved("allDay", "!date.hasTime()"),
				hxwidget.Context("jsEvent"),
				hxwidget.Context("view"),
				hxwidget.Resolved("viewName", "view.name"),
			},
		},
		decode:  decodeDayClick,
		enabled: Listener.IsDayClickEnabled,
	},
	{
		desc: hxwidget.EventDescriptor{
			Name: EventEventClick,
			Params: []hxwidget.CallbackParameter{
				hxwidget.Context("event"),
				hxwidget.Context("jsEvent"),
				hxwidget.Context("view"),
				hxwidget.Resolved("eventId", "event.id"),
				hxwidget.Resolved("viewName", "view.name"),
			},
		},
		decode:  decodeEventClick,
		enabled: Listener.IsEventClickEnabled,
	},
	{
		desc: hxwidget.EventDescriptor{
			Name: EventEventDrop,
			Params: []hxwidget.CallbackParameter{
				hxwidget.Context("event"),
				hxwidget.Context("delta"),
				hxwidget.Resolved("millisDelta", "delta.asMilliseconds()"),
				hxwidget.Resolved("allDay", "!event.start.hasTime()"),
				hxwidget.Context("revertFunc"),
				hxwidget.Context("jsEvent"),
				hxwidget.Context("ui"),
				hxwidget.Context("view"),
				hxwidget.Resolved("eventId", "event.id"),
			},
		},
		decode:  decodeEventDrop,
		enabled: Listener.IsEventDropEnabled,
		guard:   Listener.EventDropPrecondition,
	},
	{
		desc: hxwidget.EventDescriptor{
			Name: EventEventResize,
			Params: []hxwidget.CallbackParameter{
				hxwidget.Context("event"),
				hxwidget.Context("delta"),
				hxwidget.Context("revertFunc"),
				hxwidget.Context("jsEvent"),
				hxwidget.Context("ui"),
				hxwidget.Context("view"),
				hxwidget.Resolved("millisDelta", "delta.asMilliseconds()"),
				hxwidget.Resolved("eventId", "event.id"),
			},
		},
		decode:  decodeEventResize,
		enabled: Listener.IsEventResizeEnabled,
		guard:   Listener.EventResizePrecondition,
	},
	{
		desc: hxwidget.EventDescriptor{
			Name:   EventObjectDrop,
			Option: "drop",
			Params: []hxwidget.CallbackParameter{
				hxwidget.Converted("date", "date.format()"),
				hxwidget.Resolved("allDay", "!date.hasTime()"),
				hxwidget.Context("jsEvent"),
				hxwidget.Context("ui"),
				hxwidget.Resolved("title", "jQuery(this).data('title')"),
			},
		},
		decode:  decodeObjectDrop,
		enabled: Listener.IsObjectDropEnabled,
	},
	{
		desc: hxwidget.EventDescriptor{
			Name: EventViewRender,
			Params: []hxwidget.CallbackParameter{
				hxwidget.Context("view"),
				hxwidget.Context("element"),
				hxwidget.Resolved("viewName", "view.name"),
				hxwidget.Resolved("startDate", "view.start.format()"),
				hxwidget.Resolved("endDate", "view.end.format()"),
			},
		},
		decode:  decodeViewRender,
		enabled: Listener.IsViewRenderEnabled,
	},
}

func lookup(name string) (row, bool) {
	for _, r := range table {
		if r.desc.Name == name {
			return r, true
		}
	}
	return row{}, false
}

// Descriptor returns the client descriptor of a calendar callback.
func Descriptor(name string) (hxwidget.EventDescriptor, bool) {
	r, ok := lookup(name)
	return r.desc, ok
}

// Names returns every calendar callback name in table order.
func Names() []string {
	out := make([]string, len(table))
	for i, r := range table {
		out[i] = r.desc.Name
	}
	return out
}

// Decode builds the typed event for callback name from its parameters.
// Unknown names yield ErrNotFound.
func Decode(name string, p *hxwidget.Params) (Event, error) {
	r, ok := lookup(name)
	if !ok {
		return nil, hxwidget.ErrNotFound
	}
	return r.decode(p)
}

func decodeSelect(p *hxwidget.Params) (Event, error) {
	allDay := p.Bool("allDay")
	start := p.DateTime("startDate", allDay)
	end := p.DateTime("endDate", allDay)
	view := p.String("viewName")
	if err := p.Err(); err != nil {
		return nil, err
	}
	return SelectEvent{ViewName: view, Start: start, End: end, AllDay: allDay}, nil
}

func decodeDayClick(p *hxwidget.Params) (Event, error) {
	allDay := p.Bool("allDay")
	date := p.DateTime("date", allDay)
	view := p.String("viewName")
	if err := p.Err(); err != nil {
		return nil, err
	}
	return DayClickEvent{ViewName: view, Date: date, AllDay: allDay}, nil
}

func decodeEventClick(p *hxwidget.Params) (Event, error) {
	id := p.Int("eventId")
	view := p.String("viewName")
	if err := p.Err(); err != nil {
		return nil, err
	}
	return EventClickEvent{ViewName: view, EventID: id}, nil
}

func decodeEventDrop(p *hxwidget.Params) (Event, error) {
	id := p.Int("eventId")
	delta := p.Int64("millisDelta")
	allDay := p.Bool("allDay")
	if err := p.Err(); err != nil {
		return nil, err
	}
	return EventDropEvent{EventID: id, DeltaMillis: delta, AllDay: allDay}, nil
}

func decodeEventResize(p *hxwidget.Params) (Event, error) {
	id := p.Int("eventId")
	delta := p.Int64("millisDelta")
	if err := p.Err(); err != nil {
		return nil, err
	}
	return EventResizeEvent{EventID: id, DeltaMillis: delta}, nil
}

func decodeObjectDrop(p *hxwidget.Params) (Event, error) {
	allDay := p.Bool("allDay")
	date := p.DateTime("date", allDay)
	title := p.String("title")
	if err := p.Err(); err != nil {
		return nil, err
	}
	return ObjectDropEvent{Title: title, Date: date, AllDay: allDay}, nil
}

func decodeViewRender(p *hxwidget.Params) (Event, error) {
	view := p.String("viewName")
	start := p.Moment("startDate")
	end := p.Moment("endDate")
	if err := p.Err(); err != nil {
		return nil, err
	}
	return ViewRenderEvent{ViewName: view, Start: start, End: end}, nil
}
