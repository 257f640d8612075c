package droppable

import (
	"github.com/pthm/hxwidget"
)

// Callback names.
const (
	EventDrop = "drop"
	EventOver = "over"
	EventExit = "exit"
)

type row struct {
	desc    hxwidget.EventDescriptor
	decode  func(*hxwidget.Params) (Event, error)
	enabled func(Listener) bool
}

func always(Listener) bool { return true }

// params shared by every droppable callback. The dragged element reaches
// the server by id.
func params() []hxwidget.CallbackParameter {
	return []hxwidget.CallbackParameter{
		hxwidget.Context("event"),
		hxwidget.Context("ui"),
		hxwidget.Resolved("draggable", "ui.draggable.attr('id')"),
	}
}

var table = []row{
	{
		desc:    hxwidget.EventDescriptor{Name: EventDrop, Params: params()},
		decode:  decodeWith(func(id string) Event { return DropEvent{Draggable: id} }),
		enabled: always,
	},
	{
		desc:    hxwidget.EventDescriptor{Name: EventOver, Params: params()},
		decode:  decodeWith(func(id string) Event { return OverEvent{Draggable: id} }),
		enabled: Listener.IsOverEventEnabled,
	},
	{
		desc:    hxwidget.EventDescriptor{Name: EventExit, Option: "out", Params: params()},
		decode:  decodeWith(func(id string) Event { return ExitEvent{Draggable: id} }),
		enabled: Listener.IsExitEventEnabled,
	},
}

func decodeWith(build func(string) Event) func(*hxwidget.Params) (Event, error) {
	return func(p *hxwidget.Params) (Event, error) {
		id := p.String("draggable")
		if err := p.Err(); err != nil {
			return nil, err
		}
		return build(id), nil
	}
}

// Descriptor returns the client descriptor of a droppable callback.
func Descriptor(name string) (hxwidget.EventDescriptor, bool) {
	for _, r := range table {
		if r.desc.Name == name {
			return r.desc, true
		}
	}
	return hxwidget.EventDescriptor{}, false
}

// Decode builds the typed event for callback name.
func Decode(name string, p *hxwidget.Params) (Event, error) {
	for _, r := range table {
		if r.desc.Name == name {
			return r.decode(p)
		}
	}
	return nil, hxwidget.ErrNotFound
}
