package hxwidget

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Invocation turns an EventDescriptor into the client function installed
// on the widget. The function checks the precondition, evaluates every
// transmitted parameter in its own scope at fire time, then issues one
// htmx request carrying the values as query parameters.
type Invocation struct {
	Descriptor EventDescriptor
	URL        string
	Method     string // defaults to GET
}

// Function returns the generated javascript function literal.
//
// For a select descriptor bound at /_w/cal/select?p=T it produces:
//
//	function(startDate, endDate, jsEvent, view) {
//	  var values = {"startDate": startDate.format(), ..., "viewName": view.name};
//	  htmx.ajax("GET", "/_w/cal/select?p=T", {values: values, swap: "none"});
//	}
func (inv Invocation) Function() JS {
	var sb strings.Builder

	sb.WriteString("function(")
	for i, p := range inv.Descriptor.Arguments() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Name)
	}
	sb.WriteString(") {\n")

	if pre := strings.TrimSpace(inv.Descriptor.Precondition); pre != "" {
		sb.WriteString("  if (!(")
		sb.WriteString(pre)
		sb.WriteString(")) { return; }\n")
	}

	sb.WriteString("  var values = {")
	for i, p := range inv.Descriptor.Transmitted() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(Quote(p.Name))
		sb.WriteString(": ")
		sb.WriteString(p.Expression)
	}
	sb.WriteString("};\n")

	sb.WriteString("  htmx.ajax(")
	sb.WriteString(Quote(inv.method()))
	sb.WriteString(", ")
	sb.WriteString(Quote(inv.URL))
	sb.WriteString(", {values: values, swap: \"none\"});\n}")

	return JS(sb.String())
}

// QueryTemplate returns the query string shape of the outgoing request,
// e.g. "eventId={eventId}&millisDelta={millisDelta}".
func (inv Invocation) QueryTemplate() string {
	parts := make([]string, 0, len(inv.Descriptor.Params))
	for _, p := range inv.Descriptor.Transmitted() {
		parts = append(parts, p.Name+"={"+p.Name+"}")
	}
	return strings.Join(parts, "&")
}

func (inv Invocation) method() string {
	if inv.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(inv.Method)
}

// Quote returns s as a javascript string literal that is safe inside an
// inline <script> element. Widgets use it for every value they splice
// into client scripts.
func Quote(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}
