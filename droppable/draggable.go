package droppable

import (
	"fmt"
	"sort"
	"sync"

	"github.com/pthm/hxwidget"
)

// DraggablePlugin is the jQuery UI plugin a draggable source uses.
const DraggablePlugin = "draggable"

// DraggableOption configures a Draggable.
type DraggableOption func(*Draggable)

// WithTitle attaches a title read by drop targets from the element data.
// A calendar's objectDrop callback uses it as the new event title.
func WithTitle(title string) DraggableOption {
	return func(d *Draggable) {
		d.title = title
	}
}

// WithRevert sends the element back when it is not dropped on a target.
func WithRevert(revert bool) DraggableOption {
	return func(d *Draggable) {
		d.Options().Set("revert", revert)
	}
}

// WithZIndex sets the z-index used while dragging.
func WithZIndex(z int) DraggableOption {
	return func(d *Draggable) {
		d.Options().Set("zIndex", z)
	}
}

// Draggable is a jQuery UI draggable applied to the element with a given
// id. It has no callbacks of its own; drop targets report it by id.
type Draggable struct {
	*hxwidget.Behavior

	id    string
	title string
}

// NewDraggable makes the element with the given DOM id draggable.
func NewDraggable(id string, settings Settings, opts ...DraggableOption) *Draggable {
	d := &Draggable{
		Behavior: hxwidget.NewBehavior("draggable", "#"+id, DraggablePlugin),
		id:       id,
	}
	addResources(d.Behavior, settings)
	for _, opt := range opts {
		opt(d)
	}
	if d.title != "" {
		d.AddScript(hxwidget.JS(fmt.Sprintf("  jQuery(%s).data(\"title\", %s);", hxwidget.Quote(d.Selector()), hxwidget.Quote(d.title))))
	}
	return d
}

// ID returns the DOM id of the element.
func (d *Draggable) ID() string { return d.id }

// Title returns the title set with WithTitle.
func (d *Draggable) Title() string { return d.title }

// Draggables maps DOM ids to draggable handles.
type Draggables struct {
	mu    sync.RWMutex
	items map[string]*Draggable
}

// NewDraggables creates an empty set.
func NewDraggables() *Draggables {
	return &Draggables{items: make(map[string]*Draggable)}
}

// Add registers handles by id, replacing any handle with the same id.
func (ds *Draggables) Add(items ...*Draggable) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	for _, d := range items {
		ds.items[d.id] = d
	}
}

// Remove forgets the handle with the given id.
func (ds *Draggables) Remove(id string) {
	ds.mu.Lock()
	delete(ds.items, id)
	ds.mu.Unlock()
}

// Lookup returns the handle registered under id.
func (ds *Draggables) Lookup(id string) (*Draggable, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	d, ok := ds.items[id]
	return d, ok
}

// IDs returns the registered ids in sorted order.
func (ds *Draggables) IDs() []string {
	ds.mu.RLock()
	ids := make([]string, 0, len(ds.items))
	for id := range ds.items {
		ids = append(ids, id)
	}
	ds.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Widgets returns the handles as registry widgets, in id order.
func (ds *Draggables) Widgets() []hxwidget.Widget {
	ids := ds.IDs()
	out := make([]hxwidget.Widget, 0, len(ids))
	for _, id := range ids {
		if d, ok := ds.Lookup(id); ok {
			out = append(out, d)
		}
	}
	return out
}
