package hxwidget

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
)

// TestResult holds the recorded response of a callback request.
type TestResult struct {
	HTML            string
	StatusCode      int
	Headers         http.Header
	TriggeredEvents []string
	Flashes         []Flash
	Regions         []string
	Scripts         []string
	RedirectURL     string
}

// TestEvent fires a binding's endpoint through the registry handler with
// the given transmitted values, the way the generated client function
// would.
//
//	result, err := hxwidget.TestEvent(reg, cal.Binding("eventClick"), map[string]string{
//	    "eventId":  "42",
//	    "viewName": "month",
//	})
func TestEvent(reg *Registry, bd *Binding, values map[string]string) (*TestResult, error) {
	return NewTestRequest(bd).WithValues(values).Execute(reg.Handler())
}

// TestRequestBuilder builds callback requests with fine-grained control:
//
//	result, err := hxwidget.NewTestRequest(binding).
//	    WithValue("eventId", "42").
//	    WithToken("forged").
//	    Execute(reg.Handler())
type TestRequestBuilder struct {
	method  string
	path    string
	token   string
	values  url.Values
	headers map[string]string
	ctx     context.Context
}

// NewTestRequest starts a request for bd. The binding must be registered.
func NewTestRequest(bd *Binding) *TestRequestBuilder {
	inv := bd.Invocation()
	u, _ := url.Parse(inv.URL)
	b := &TestRequestBuilder{
		method:  inv.method(),
		path:    bd.Path(),
		values:  url.Values{},
		headers: make(map[string]string),
		ctx:     context.Background(),
	}
	if u != nil {
		b.token = u.Query().Get(tokenParam)
	}
	return b
}

// WithValue sets one query parameter.
func (b *TestRequestBuilder) WithValue(key, value string) *TestRequestBuilder {
	b.values.Set(key, value)
	return b
}

// WithValues sets several query parameters.
func (b *TestRequestBuilder) WithValues(values map[string]string) *TestRequestBuilder {
	for k, v := range values {
		b.values.Set(k, v)
	}
	return b
}

// WithToken replaces the sealed token. An empty token omits it.
func (b *TestRequestBuilder) WithToken(token string) *TestRequestBuilder {
	b.token = token
	return b
}

// WithMethod overrides the request method.
func (b *TestRequestBuilder) WithMethod(method string) *TestRequestBuilder {
	b.method = method
	return b
}

// WithHeader adds a header to the request.
func (b *TestRequestBuilder) WithHeader(key, value string) *TestRequestBuilder {
	b.headers[key] = value
	return b
}

// WithContext sets the context for the request.
func (b *TestRequestBuilder) WithContext(ctx context.Context) *TestRequestBuilder {
	b.ctx = ctx
	return b
}

// URL returns the request URL as built so far.
func (b *TestRequestBuilder) URL() string {
	q := url.Values{}
	for k, vs := range b.values {
		q[k] = vs
	}
	if b.token != "" {
		q.Set(tokenParam, b.token)
	}
	if len(q) == 0 {
		return b.path
	}
	return b.path + "?" + q.Encode()
}

// Execute serves the request on h and records the response.
func (b *TestRequestBuilder) Execute(h http.Handler) (*TestResult, error) {
	req := httptest.NewRequest(b.method, b.URL(), nil)
	req = req.WithContext(b.ctx)
	req.Header.Set("HX-Request", "true")
	for k, v := range b.headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return recordResult(rec), nil
}

func recordResult(rec *httptest.ResponseRecorder) *TestResult {
	result := &TestResult{
		HTML:        rec.Body.String(),
		StatusCode:  rec.Code,
		Headers:     rec.Header(),
		RedirectURL: rec.Header().Get("HX-Redirect"),
	}
	if trigger := rec.Header().Get("HX-Trigger"); trigger != "" {
		result.TriggeredEvents = parseTriggerHeader(trigger)
	}
	result.Flashes = parseFlashesFromHTML(result.HTML)
	result.Regions = parseRegionsFromHTML(result.HTML)
	result.Scripts = parseScriptsFromHTML(result.HTML)
	return result
}

// HTMLContains checks if the HTML contains a substring.
func (r *TestResult) HTMLContains(substr string) bool {
	return strings.Contains(r.HTML, substr)
}

// HasEvent checks if an event was triggered.
func (r *TestResult) HasEvent(event string) bool {
	for _, e := range r.TriggeredEvents {
		if e == event {
			return true
		}
	}
	return false
}

// HasFlash checks if a flash message was set with the given level and message.
func (r *TestResult) HasFlash(level, message string) bool {
	for _, f := range r.Flashes {
		if f.Level == level && f.Message == message {
			return true
		}
	}
	return false
}

// HasRegion checks if the element with the given id was re-rendered.
func (r *TestResult) HasRegion(id string) bool {
	for _, reg := range r.Regions {
		if reg == id {
			return true
		}
	}
	return false
}

// HasScript checks if a script containing substr was appended.
func (r *TestResult) HasScript(substr string) bool {
	for _, s := range r.Scripts {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}

// IsOK checks if the status code is 200.
func (r *TestResult) IsOK() bool {
	return r.StatusCode == http.StatusOK
}

// HasStatus checks if the status code matches.
func (r *TestResult) HasStatus(code int) bool {
	return r.StatusCode == code
}

// parseTriggerHeader returns the event names of an HX-Trigger value,
// either a bare name or a JSON object. JSON keys are returned sorted.
func parseTriggerHeader(trigger string) []string {
	trigger = strings.TrimSpace(trigger)
	if trigger == "" {
		return nil
	}
	if strings.HasPrefix(trigger, "{") {
		var m map[string]json.RawMessage
		if err := json.Unmarshal([]byte(trigger), &m); err != nil {
			return nil
		}
		events := make([]string, 0, len(m))
		for k := range m {
			events = append(events, k)
		}
		sort.Strings(events)
		return events
	}

	parts := strings.Split(trigger, ",")
	events := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			events = append(events, p)
		}
	}
	return events
}

// parseFlashesFromHTML extracts toasts rendered by RenderFlashesOOB.
func parseFlashesFromHTML(html string) []Flash {
	var flashes []Flash
	const prefix = `<div class="toast toast-`
	idx := 0
	for {
		start := strings.Index(html[idx:], prefix)
		if start == -1 {
			break
		}
		start += idx + len(prefix)

		levelEnd := strings.Index(html[start:], `"`)
		tagEnd := strings.Index(html[start:], ">")
		if levelEnd == -1 || tagEnd == -1 {
			break
		}
		contentStart := start + tagEnd + 1
		contentEnd := strings.Index(html[contentStart:], "</div>")
		if contentEnd == -1 {
			break
		}
		flashes = append(flashes, Flash{
			Level:   html[start : start+levelEnd],
			Message: html[contentStart : contentStart+contentEnd],
		})
		idx = contentStart + contentEnd
	}
	return flashes
}

// parseRegionsFromHTML extracts the ids targeted by out-of-band swaps.
func parseRegionsFromHTML(html string) []string {
	var ids []string
	for _, chunk := range strings.Split(html, "<div ")[1:] {
		tag, _, _ := strings.Cut(chunk, ">")
		if !strings.Contains(tag, "hx-swap-oob=") {
			continue
		}
		if id, ok := attrValue(tag, "id"); ok && id != "toasts" {
			ids = append(ids, id)
			continue
		}
		if oob, ok := attrValue(tag, "hx-swap-oob"); ok {
			if _, sel, found := strings.Cut(oob, ":#"); found {
				ids = append(ids, sel)
			}
		}
	}
	return ids
}

func attrValue(tag, name string) (string, bool) {
	marker := name + `="`
	i := strings.Index(tag, marker)
	if i == -1 || (i > 0 && tag[i-1] != ' ') {
		return "", false
	}
	rest := tag[i+len(marker):]
	end := strings.IndexByte(rest, '"')
	if end == -1 {
		return "", false
	}
	return rest[:end], true
}

func parseScriptsFromHTML(html string) []string {
	var scripts []string
	for {
		start := strings.Index(html, "<script>")
		if start == -1 {
			return scripts
		}
		html = html[start+len("<script>"):]
		end := strings.Index(html, "</script>")
		if end == -1 {
			return scripts
		}
		scripts = append(scripts, html[:end])
		html = html[end:]
	}
}

// Evaluator stands in for the browser when a generated callback fires.
// Eval returns the string value of a javascript expression evaluated in
// the callback's scope.
type Evaluator interface {
	Eval(expr string) (string, bool)
}

// MapEvaluator evaluates expressions by exact lookup.
//
//	hxwidget.MapEvaluator{
//	    "event.id":                       "42",
//	    "!event.start.hasTime()":         "false",
//	    "event.editable !== false":       "true",
//	}
type MapEvaluator map[string]string

// Eval implements Evaluator.
func (m MapEvaluator) Eval(expr string) (string, bool) {
	v, ok := m[strings.TrimSpace(expr)]
	return v, ok
}

// Transport sends the request a fired callback produces.
type Transport interface {
	Send(ctx context.Context, method, rawURL string, values url.Values) error
}

// RecordedRequest is one request seen by a RecordingTransport.
type RecordedRequest struct {
	Method string
	URL    string
	Values url.Values
}

// RecordingTransport records requests without sending them.
type RecordingTransport struct {
	Requests []RecordedRequest
}

// Send implements Transport.
func (t *RecordingTransport) Send(_ context.Context, method, rawURL string, values url.Values) error {
	t.Requests = append(t.Requests, RecordedRequest{Method: method, URL: rawURL, Values: values})
	return nil
}

// HandlerTransport serves fired callbacks on an http.Handler and keeps the
// last response.
type HandlerTransport struct {
	Handler http.Handler
	Last    *TestResult
}

// Send implements Transport.
func (t *HandlerTransport) Send(ctx context.Context, method, rawURL string, values url.Values) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	q := u.Query()
	for k, vs := range values {
		q[k] = vs
	}
	u.RawQuery = q.Encode()

	req := httptest.NewRequest(method, u.String(), nil).WithContext(ctx)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	t.Handler.ServeHTTP(rec, req)
	t.Last = recordResult(rec)
	return nil
}

// Fire runs the client side of a binding: it evaluates the precondition
// and, when it holds, every transmitted expression, then sends one request.
// It reports whether a request was sent.
func Fire(ctx context.Context, bd *Binding, eval Evaluator, tr Transport) (bool, error) {
	inv := bd.Invocation()
	desc := inv.Descriptor

	if pre := strings.TrimSpace(desc.Precondition); pre != "" {
		v, ok := eval.Eval(pre)
		if !ok {
			return false, fmt.Errorf("hxwidget: cannot evaluate precondition %q", pre)
		}
		if v != "true" {
			return false, nil
		}
	}

	values := url.Values{}
	for _, p := range desc.Transmitted() {
		v, ok := eval.Eval(p.Expression)
		if !ok {
			return false, fmt.Errorf("hxwidget: cannot evaluate %s = %q", p.Name, p.Expression)
		}
		values.Set(p.Name, v)
	}
	if err := tr.Send(ctx, inv.method(), inv.URL, values); err != nil {
		return false, err
	}
	return true, nil
}
