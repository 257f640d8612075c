package hxwidget

import (
	"bytes"
	"context"
	"net/http"

	"github.com/a-h/templ"
)

// Target collects the response to a widget callback.
//
// Listener methods mark regions of the page for re-rendering, queue client
// scripts, flash messages and events. Nothing is written until the
// callback returns without error; the registry then calls Write.
//
//	func (c *Page) OnEventDrop(ctx context.Context, t *hxwidget.Target, id int, delta int64, allDay bool) error {
//	    if _, err := c.store.Move(id, delta, allDay); err != nil {
//	        t.AppendScript(c.cal.Refetch())
//	        return nil
//	    }
//	    return t.Add("log", logView(c.store)).Flash(hxwidget.FlashSuccess, "Moved").Err()
//	}
type Target struct {
	swaps    []regionSwap
	scripts  []JS
	flashes  []Flash
	triggers []trigger
	headers  map[string]string
	status   int
	redirect string
	dismiss  int
}

type regionSwap struct {
	id        string
	component templ.Component
	mode      SwapMode
}

type trigger struct {
	event string
	data  map[string]any
}

// NewTarget creates an empty response collector.
func NewTarget() *Target {
	return &Target{}
}

// Add re-renders the element with the given id, replacing it entirely.
func (t *Target) Add(id string, c templ.Component) *Target {
	return t.Swap(id, c, SwapOuter)
}

// Swap places c relative to the element with the given id.
func (t *Target) Swap(id string, c templ.Component, mode SwapMode) *Target {
	t.swaps = append(t.swaps, regionSwap{id: id, component: c, mode: mode})
	return t
}

// AppendScript queues javascript to run on the client after the swap.
func (t *Target) AppendScript(js JS) *Target {
	t.scripts = append(t.scripts, js)
	return t
}

// Flash adds a toast notification.
func (t *Target) Flash(level, message string) *Target {
	t.flashes = append(t.flashes, Flash{Level: level, Message: message})
	return t
}

// DismissAfter sets how long the client shows this response's toasts.
func (t *Target) DismissAfter(ms int) *Target {
	t.dismiss = ms
	return t
}

// Trigger emits a client event through the HX-Trigger header. Data, when
// given, becomes the event detail.
func (t *Target) Trigger(event string, data ...map[string]any) *Target {
	tr := trigger{event: event}
	if len(data) > 0 {
		tr.data = data[0]
	}
	t.triggers = append(t.triggers, tr)
	return t
}

// Header sets a response header.
func (t *Target) Header(key, value string) *Target {
	if t.headers == nil {
		t.headers = make(map[string]string)
	}
	t.headers[key] = value
	return t
}

// Status sets the response status. The default is 200.
func (t *Target) Status(code int) *Target {
	t.status = code
	return t
}

// Redirect asks htmx to navigate via the HX-Redirect header.
func (t *Target) Redirect(url string) *Target {
	t.redirect = url
	return t
}

// Err returns nil. It lets a listener end a chain of Target calls in a
// return statement.
func (t *Target) Err() error {
	return nil
}

// Regions returns the ids of the re-rendered elements in order.
func (t *Target) Regions() []string {
	ids := make([]string, len(t.swaps))
	for i, s := range t.swaps {
		ids[i] = s.id
	}
	return ids
}

// Scripts returns the queued scripts.
func (t *Target) Scripts() []JS {
	return t.scripts
}

// Flashes returns the queued flash messages.
func (t *Target) Flashes() []Flash {
	return t.flashes
}

// TriggerHeader returns the HX-Trigger value, or "" when nothing fired.
func (t *Target) TriggerHeader() string {
	events := make([]string, len(t.triggers))
	data := make([]map[string]any, len(t.triggers))
	for i, tr := range t.triggers {
		events[i] = tr.event
		data[i] = tr.data
	}
	return BuildTriggerHeader(events, data)
}

// Empty reports whether the target carries no response content.
func (t *Target) Empty() bool {
	return len(t.swaps) == 0 && len(t.scripts) == 0 && len(t.flashes) == 0 &&
		len(t.triggers) == 0 && t.redirect == ""
}

// Write renders the collected response. The body consists only of
// out-of-band fragments, so the request itself swaps nothing.
func (t *Target) Write(ctx context.Context, w http.ResponseWriter) error {
	var body bytes.Buffer
	for _, s := range t.swaps {
		if err := renderOOB(ctx, &body, s); err != nil {
			return err
		}
	}
	body.WriteString(RenderFlashesOOB(t.flashes, t.dismiss))
	body.WriteString(renderScriptsOOB(t.scripts))

	h := w.Header()
	for k, v := range t.headers {
		h.Set(k, v)
	}
	if t.redirect != "" {
		h.Set("HX-Redirect", t.redirect)
	}
	if trig := t.TriggerHeader(); trig != "" {
		h.Set("HX-Trigger", trig)
	}
	h.Set("Content-Type", "text/html; charset=utf-8")

	status := t.status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, err := w.Write(body.Bytes())
	return err
}

func renderOOB(ctx context.Context, buf *bytes.Buffer, s regionSwap) error {
	id := templ.EscapeString(s.id)
	switch s.mode {
	case SwapOuter, "":
		buf.WriteString(`<div id="` + id + `" hx-swap-oob="outerHTML">`)
	case SwapDelete:
		buf.WriteString(`<div id="` + id + `" hx-swap-oob="delete"></div>`)
		return nil
	default:
		buf.WriteString(`<div hx-swap-oob="` + string(s.mode) + `:#` + id + `">`)
	}
	if s.component != nil {
		if err := s.component.Render(ctx, buf); err != nil {
			return err
		}
	}
	buf.WriteString(`</div>`)
	return nil
}

// renderScriptsOOB appends the scripts to the body, where htmx evaluates
// them after settling.
func renderScriptsOOB(scripts []JS) string {
	if len(scripts) == 0 {
		return ""
	}
	var buf bytes.Buffer
	buf.WriteString(`<div hx-swap-oob="beforeend:body">`)
	for _, s := range scripts {
		buf.WriteString("<script>")
		buf.WriteString(string(s))
		buf.WriteString("</script>")
	}
	buf.WriteString(`</div>`)
	return buf.String()
}
