// Package calendar binds a fullCalendar widget to a Listener.
//
//	cal := calendar.New("#calendar", agenda, calendar.DefaultSettings(),
//	    calendar.WithEventSource(store))
//	cal.Options().Set("header", map[string]string{"left": "prev,next today", "center": "title"})
//	reg.Add(cal)
//
// Each enabled listener method gets an endpoint and a generated client
// callback. Decoded events are dispatched to the listener with a Target
// for the response.
package calendar

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/pthm/hxwidget"
)

// PluginName is the jQuery plugin the calendar drives.
const PluginName = "fullCalendar"

// FeedRoute is the endpoint below the calendar prefix serving the event
// feed when an EventSource is configured.
const FeedRoute = "events"

// Settings selects the resources a calendar page needs. Empty URLs are
// skipped, so a page that bundles its own scripts can clear them.
type Settings struct {
	// MomentURL loads moment.js, which fullCalendar 2 requires.
	MomentURL     string
	StylesheetURL string
	ScriptURL     string
	GCalScriptURL string

	// IndicatorURL is an image shown while a callback is in flight.
	// Empty disables the busy indicator.
	IndicatorURL string
}

// DefaultSettings points at the fullCalendar 2 CDN build.
func DefaultSettings() Settings {
	const base = "https://cdnjs.cloudflare.com/ajax/libs/fullcalendar/2.9.1/"
	return Settings{
		MomentURL:     "https://cdnjs.cloudflare.com/ajax/libs/moment.js/2.29.4/moment.min.js",
		StylesheetURL: base + "fullcalendar.min.css",
		ScriptURL:     base + "fullcalendar.min.js",
		GCalScriptURL: base + "gcal.js",
	}
}

// Option configures a Calendar.
type Option func(*Calendar)

// WithEventSource serves src as the calendar's event feed.
func WithEventSource(src EventSource) Option {
	return func(c *Calendar) {
		c.source = src
	}
}

// WithName overrides the behavior name used in the URL prefix.
func WithName(name string) Option {
	return func(c *Calendar) {
		c.name = name
	}
}

// Calendar is a fullCalendar behavior wired to a Listener.
type Calendar struct {
	*hxwidget.Behavior

	name     string
	listener Listener
	settings Settings
	source   EventSource
}

// New builds a calendar on selector. The listener's predicates decide,
// once, which callbacks are installed.
func New(selector string, l Listener, settings Settings, opts ...Option) *Calendar {
	c := &Calendar{name: "calendar", listener: l, settings: settings}
	for _, opt := range opts {
		opt(c)
	}
	c.Behavior = hxwidget.NewBehavior(c.name, selector, PluginName)

	c.addResources()
	c.bind()
	c.configure()
	if c.source != nil {
		c.Mount(FeedRoute, http.HandlerFunc(c.serveFeed))
		c.OnRegister(func() {
			c.Options().Set("events", c.RoutePath(FeedRoute))
		})
	}
	if settings.IndicatorURL != "" {
		c.AddScript(c.indicatorScript())
	}
	return c
}

// Listener returns the calendar's listener.
func (c *Calendar) Listener() Listener {
	return c.listener
}

// Settings returns the settings the calendar was built with.
func (c *Calendar) Settings() Settings {
	return c.settings
}

func (c *Calendar) addResources() {
	if c.settings.StylesheetURL != "" {
		c.AddResource(hxwidget.Stylesheet, c.settings.StylesheetURL)
	}
	if c.settings.MomentURL != "" {
		c.AddResource(hxwidget.Script, c.settings.MomentURL)
	}
	if c.settings.ScriptURL != "" {
		c.AddResource(hxwidget.Script, c.settings.ScriptURL)
	}
	if c.settings.GCalScriptURL != "" {
		c.AddResource(hxwidget.Script, c.settings.GCalScriptURL)
	}
}

// bind installs a binding for every callback whose predicate holds.
func (c *Calendar) bind() {
	for _, r := range table {
		if !r.enabled(c.listener) {
			continue
		}
		desc := r.desc
		if r.guard != nil {
			desc = desc.WithPrecondition(r.guard(c.listener))
		}
		decode := r.decode
		c.Install(desc, func(ctx context.Context, t *hxwidget.Target, p *hxwidget.Params) error {
			ev, err := decode(p)
			if err != nil {
				return err
			}
			return Dispatch(ctx, t, c.listener, ev)
		})
	}
}

// configure derives the widget flags from what was bound.
func (c *Calendar) configure() {
	bound := func(name string) bool {
		bd, ok := c.Binding(name)
		return ok && bd.Bound()
	}
	c.Options().
		Set("editable", bound(EventDayClick) || bound(EventEventClick)).
		Set("selectable", bound(EventSelect)).
		Set("selectHelper", bound(EventSelect)).
		Set("disableDragging", !bound(EventEventDrop)).
		Set("disableResizing", !bound(EventEventResize)).
		Set("droppable", bound(EventObjectDrop))
}

func (c *Calendar) serveFeed(w http.ResponseWriter, r *http.Request) {
	FeedHandler(c.source, c.Location()).ServeHTTP(w, r)
}

// IndicatorID is the DOM id of the busy indicator image.
func (c *Calendar) IndicatorID() string {
	return strings.TrimPrefix(c.Prefix(), "/") + "-indicator"
}

func (c *Calendar) indicatorScript() hxwidget.JS {
	id := c.IndicatorID()
	sel := hxwidget.Quote("#" + id)
	return hxwidget.JS(fmt.Sprintf(
		`  jQuery("<img>", {id: %s, src: %s}).hide().appendTo(jQuery(%s).find(".fc-center"));
  document.body.addEventListener("htmx:beforeRequest", function() { jQuery(%s).show(); });
  document.body.addEventListener("htmx:afterRequest", function() { jQuery(%s).hide(); });`,
		hxwidget.Quote(id), hxwidget.Quote(c.settings.IndicatorURL), hxwidget.Quote(c.Selector()), sel, sel))
}

// Refetch returns the script that makes the widget reload its events.
// Queue it on a Target after changing the event source.
func (c *Calendar) Refetch() hxwidget.JS {
	return hxwidget.JS(fmt.Sprintf("jQuery(%s).fullCalendar('refetchEvents');", hxwidget.Quote(c.Selector())))
}
