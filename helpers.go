package hxwidget

import (
	"encoding/json"
	"net/http"

	"github.com/a-h/templ"
)

// Render writes a templ component to the HTTP response.
//
//	func page(w http.ResponseWriter, r *http.Request) {
//	    hxwidget.Render(w, r, layout(cal.Render()))
//	}
func Render(w http.ResponseWriter, r *http.Request, component templ.Component) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(r.Context(), w)
}

// IsHTMX returns true if the request originated from htmx.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// CurrentURL returns the page URL the browser is on, from HX-Current-URL.
// Empty for non-htmx requests.
func CurrentURL(r *http.Request) string {
	return r.Header.Get("HX-Current-URL")
}

// TriggerID returns the id attribute of the element that triggered the
// request, if htmx sent one.
func TriggerID(r *http.Request) string {
	return r.Header.Get("HX-Trigger")
}

// BuildTriggerHeader builds an HX-Trigger header value.
//
// A single event without data is sent as its bare name:
//
//	"event-moved"
//
// Anything else becomes a JSON object keyed by event, with the data as
// detail (true when an event has none):
//
//	{"event-moved": {"id": "42"}, "log-updated": true}
//
// Later triggers of the same event overwrite earlier ones.
func BuildTriggerHeader(events []string, data []map[string]any) string {
	if len(events) == 0 {
		return ""
	}
	if len(events) == 1 && (len(data) == 0 || data[0] == nil) {
		return events[0]
	}

	merged := make(map[string]any, len(events))
	for i, ev := range events {
		var d map[string]any
		if i < len(data) {
			d = data[i]
		}
		if d != nil {
			merged[ev] = d
		} else {
			merged[ev] = true
		}
	}
	out, _ := json.Marshal(merged)
	return string(out)
}
