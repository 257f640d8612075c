// Package droppable binds jQuery UI droppable targets and draggable
// sources to Go listeners.
//
//	items := droppable.NewDraggables()
//	items.Add(droppable.NewDraggable("task-1", settings, droppable.WithTitle("Write report")))
//	bin := droppable.New("#bin", trash, settings, droppable.WithDraggables(items))
//	reg.Add(bin)
//
// The dragged element reaches the server by its DOM id; Draggables maps
// that id back to the handle that created it.
package droppable

import (
	"context"

	"github.com/pthm/hxwidget"
)

// PluginName is the jQuery UI plugin a drop target uses.
const PluginName = "droppable"

// Settings selects the jQuery UI resources a page needs. Empty URLs are
// skipped.
type Settings struct {
	StylesheetURL string
	ScriptURL     string
}

// DefaultSettings points at the jQuery UI CDN build.
func DefaultSettings() Settings {
	const base = "https://code.jquery.com/ui/1.12.1/"
	return Settings{
		StylesheetURL: base + "themes/base/jquery-ui.css",
		ScriptURL:     base + "jquery-ui.min.js",
	}
}

func addResources(b *hxwidget.Behavior, s Settings) {
	if s.StylesheetURL != "" {
		b.AddResource(hxwidget.Stylesheet, s.StylesheetURL)
	}
	if s.ScriptURL != "" {
		b.AddResource(hxwidget.Script, s.ScriptURL)
	}
}

// Option configures a Droppable.
type Option func(*Droppable)

// WithDraggables resolves dragged ids against ds.
func WithDraggables(ds *Draggables) Option {
	return func(d *Droppable) {
		d.draggables = ds
	}
}

// WithAccept restricts the target to draggables matching selector.
func WithAccept(selector string) Option {
	return func(d *Droppable) {
		d.accept = selector
	}
}

// WithHoverClass adds class to the target while an accepted draggable is
// over it.
func WithHoverClass(class string) Option {
	return func(d *Droppable) {
		d.hoverClass = class
	}
}

// WithName overrides the behavior name used in the URL prefix. Targets
// sharing a selector in one registry need distinct names.
func WithName(name string) Option {
	return func(d *Droppable) {
		d.name = name
	}
}

// Droppable is a jQuery UI drop target wired to a Listener.
type Droppable struct {
	*hxwidget.Behavior

	name       string
	accept     string
	hoverClass string
	listener   Listener
	draggables *Draggables
}

// New builds a drop target on selector.
func New(selector string, l Listener, settings Settings, opts ...Option) *Droppable {
	d := &Droppable{name: "droppable", listener: l}
	for _, opt := range opts {
		opt(d)
	}
	d.Behavior = hxwidget.NewBehavior(d.name, selector, PluginName)
	addResources(d.Behavior, settings)
	if d.accept != "" {
		d.Options().Set("accept", d.accept)
	}
	if d.hoverClass != "" {
		d.Options().Set("hoverClass", d.hoverClass)
	}

	for _, r := range table {
		if !r.enabled(l) {
			continue
		}
		decode := r.decode
		d.Install(r.desc, func(ctx context.Context, t *hxwidget.Target, p *hxwidget.Params) error {
			ev, err := decode(p)
			if err != nil {
				return err
			}
			return Dispatch(ctx, t, d.listener, ev)
		})
	}
	return d
}

// Listener returns the target's listener.
func (d *Droppable) Listener() Listener {
	return d.listener
}

// Draggable resolves a dragged id reported by a callback. It fails when
// the target was built without WithDraggables or the id is unknown.
func (d *Droppable) Draggable(id string) (*Draggable, bool) {
	if d.draggables == nil {
		return nil, false
	}
	return d.draggables.Lookup(id)
}
