package hxwidget

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/rs/zerolog"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func text(s string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

type dropCall struct {
	eventID string
	delta   int64
	allDay  bool
}

func newTestBehavior(t *testing.T, calls *[]dropCall) (*Registry, *Behavior, *Binding) {
	t.Helper()
	reg := NewRegistry(testKey, WithLogger(zerolog.Nop()))
	b := NewBehavior("cal", "#calendar", "fullCalendar")
	b.Options().Set("defaultView", "month")
	bd := b.Install(testDrop, func(ctx context.Context, tg *Target, p *Params) error {
		c := dropCall{
			delta:   p.Int64("millisDelta"),
			allDay:  p.Bool("allDay"),
			eventID: p.String("eventId"),
		}
		if err := p.Err(); err != nil {
			return err
		}
		*calls = append(*calls, c)
		tg.Add("log", text("moved "+c.eventID)).
			Flash(FlashSuccess, "Moved").
			Trigger("event-moved")
		return nil
	})
	reg.Add(b)
	return reg, b, bd
}

func TestBehaviorPrefix(t *testing.T) {
	a := NewBehavior("cal", "#a", "fullCalendar")
	b := NewBehavior("cal", "#b", "fullCalendar")

	if !strings.HasPrefix(a.Prefix(), "/cal-") || len(a.Prefix()) != len("/cal-")+8 {
		t.Errorf("Prefix() = %q", a.Prefix())
	}
	if a.Prefix() == b.Prefix() {
		t.Error("different selectors should get different prefixes")
	}
}

func TestBehaviorPrefixIsStable(t *testing.T) {
	a := NewBehavior("cal", "#calendar", "fullCalendar")
	b := NewBehavior("cal", "#calendar", "fullCalendar")
	if a.Prefix() != b.Prefix() {
		t.Errorf("prefixes differ: %q, %q", a.Prefix(), b.Prefix())
	}
	if c := NewBehavior("agenda", "#calendar", "fullCalendar"); c.Prefix() == a.Prefix() {
		t.Error("different names should get different prefixes")
	}
}

func TestInstallBeforeRegistration(t *testing.T) {
	b := NewBehavior("cal", "#calendar", "fullCalendar")
	bd := b.Install(testDrop, nil)

	if bd.URL() != "" {
		t.Errorf("URL() before registration = %q", bd.URL())
	}
	if _, ok := b.Options().Get("eventDrop"); ok {
		t.Error("option installed before registration")
	}
	if _, err := b.Script(); err == nil {
		t.Error("Script() should fail before registration")
	}
}

func TestInstallPanicsOnInvalidDescriptor(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewBehavior("cal", "#c", "fullCalendar").Install(EventDescriptor{Name: ""}, nil)
}

func TestRegistrationInstallsOptions(t *testing.T) {
	var calls []dropCall
	reg, b, bd := newTestBehavior(t, &calls)

	if !strings.HasPrefix(bd.URL(), reg.Path()+b.Prefix()+"/eventDrop?p=") {
		t.Errorf("URL() = %q", bd.URL())
	}
	fn, ok := b.Options().Get("eventDrop")
	if !ok {
		t.Fatal("eventDrop option not installed")
	}
	if fn != bd.CallbackFunction() {
		t.Error("installed function differs from CallbackFunction()")
	}

	script, err := b.Script()
	if err != nil {
		t.Fatalf("Script() error = %v", err)
	}
	for _, want := range []string{
		`jQuery("#calendar").fullCalendar({"defaultView": "month", "eventDrop": function(event, delta`,
		bd.URL(),
	} {
		if !strings.Contains(script, want) {
			t.Errorf("missing %q in\n%s", want, script)
		}
	}
}

func TestInstallAfterRegistration(t *testing.T) {
	var calls []dropCall
	_, b, _ := newTestBehavior(t, &calls)

	bd := b.Install(testSelect, func(ctx context.Context, tg *Target, p *Params) error { return nil })
	if bd.URL() == "" {
		t.Error("late install should seal a URL")
	}
	if _, ok := b.Options().Get("select"); !ok {
		t.Error("late install should set the option")
	}
	if got := len(b.Bindings()); got != 2 {
		t.Errorf("Bindings() = %d", got)
	}
}

func TestRender(t *testing.T) {
	var calls []dropCall
	_, b, _ := newTestBehavior(t, &calls)
	b.AddResource(Stylesheet, "/static/fullcalendar.css").
		AddResource(Script, "/static/fullcalendar.js").
		AddResource(Script, "/static/fullcalendar.js").
		AddScript("console.log('ready');")

	var buf bytes.Buffer
	if err := b.Render().Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	got := buf.String()

	if strings.Count(got, "fullcalendar.js") != 1 {
		t.Error("duplicate resource rendered")
	}
	css := strings.Index(got, `<link rel="stylesheet" href="/static/fullcalendar.css">`)
	boot := strings.Index(got, "jQuery(function()")
	if css == -1 || boot == -1 || css > boot {
		t.Errorf("resources must precede the init script:\n%s", got)
	}
	if !strings.Contains(got, "console.log('ready');") {
		t.Error("page script missing")
	}
}

func TestServeEvent(t *testing.T) {
	var calls []dropCall
	reg, _, bd := newTestBehavior(t, &calls)

	result, err := TestEvent(reg, bd, map[string]string{
		"millisDelta": "86400000",
		"allDay":      "true",
		"eventId":     "42",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsOK() {
		t.Fatalf("status = %d: %s", result.StatusCode, result.HTML)
	}
	if len(calls) != 1 || calls[0] != (dropCall{"42", 86400000, true}) {
		t.Errorf("calls = %+v", calls)
	}
	if !result.HasRegion("log") || !result.HTMLContains("moved 42") {
		t.Errorf("region not rendered: %s", result.HTML)
	}
	if !result.HasFlash(FlashSuccess, "Moved") {
		t.Error("flash missing")
	}
	if !result.HasEvent("event-moved") {
		t.Errorf("events = %v", result.TriggeredEvents)
	}
	if result.Headers.Get(RequestIDHeader) == "" {
		t.Error("request id missing")
	}
}

func TestServeErrors(t *testing.T) {
	var calls []dropCall
	reg, b, bd := newTestBehavior(t, &calls)
	valid := map[string]string{"millisDelta": "0", "allDay": "false", "eventId": "1"}

	other := NewBehavior("other", "#o", "fullCalendar")
	otherBd := other.Install(testDrop, nil)
	reg.Add(other)
	foreign, _ := url.Parse(otherBd.URL())

	tests := []struct {
		name   string
		req    *TestRequestBuilder
		status int
	}{
		{"malformed bool", NewTestRequest(bd).WithValues(valid).WithValue("allDay", "yes"), http.StatusBadRequest},
		{"missing param", NewTestRequest(bd).WithValue("allDay", "true"), http.StatusBadRequest},
		{"bad delta", NewTestRequest(bd).WithValues(valid).WithValue("millisDelta", "soon"), http.StatusBadRequest},
		{"no token", NewTestRequest(bd).WithValues(valid).WithToken(""), http.StatusBadRequest},
		{"forged token", NewTestRequest(bd).WithValues(valid).WithToken("abc.def"), http.StatusBadRequest},
		{"token of other behavior", NewTestRequest(bd).WithValues(valid).WithToken(foreign.Query().Get("p")), http.StatusBadRequest},
		{"wrong method", NewTestRequest(bd).WithValues(valid).WithMethod(http.MethodPost), http.StatusMethodNotAllowed},
		{"post without htmx", NewTestRequest(bd).WithValues(valid).WithMethod(http.MethodPost).WithHeader("HX-Request", "false"), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, _ := tt.req.Execute(reg.Handler())
			if result.StatusCode != tt.status {
				t.Errorf("status = %d, want %d (%s)", result.StatusCode, tt.status, result.HTML)
			}
		})
	}
	if len(calls) != 0 {
		t.Errorf("listener ran on bad requests: %+v", calls)
	}

	rec := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, reg.Path()+b.Prefix()+"/nothing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown event status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, reg.Path()+"/nobody-00000000/eventDrop", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown behavior status = %d", rec.Code)
	}
}

func TestHeadDoesNotDispatch(t *testing.T) {
	var calls []dropCall
	reg, _, bd := newTestBehavior(t, &calls)
	valid := map[string]string{"millisDelta": "-3600000", "allDay": "false", "eventId": "42"}

	req := httptest.NewRequest(http.MethodHead, NewTestRequest(bd).WithValues(valid).URL(), nil)
	rec := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
	if got := rec.Header().Get("Allow"); got != http.MethodGet {
		t.Errorf("Allow = %q", got)
	}
	if len(calls) != 0 {
		t.Errorf("listener ran on HEAD: %+v", calls)
	}
}

func TestDetach(t *testing.T) {
	var calls []dropCall
	reg, b, bd := newTestBehavior(t, &calls)

	b.Detach("eventDrop")
	b.Detach("eventDrop")
	b.Detach("unknown")

	if bd.Bound() {
		t.Error("binding still bound")
	}
	if _, ok := b.Options().Get("eventDrop"); ok {
		t.Error("option not removed")
	}
	result, _ := TestEvent(reg, bd, map[string]string{"millisDelta": "0", "allDay": "false", "eventId": "1"})
	if result.StatusCode != http.StatusNotFound {
		t.Errorf("status after detach = %d", result.StatusCode)
	}
}

func TestRegistryRemove(t *testing.T) {
	var calls []dropCall
	reg, b, bd := newTestBehavior(t, &calls)

	reg.Remove(b)
	if _, ok := reg.Lookup(b.Prefix()); ok {
		t.Error("behavior still registered")
	}
	result, _ := TestEvent(reg, bd, map[string]string{"millisDelta": "0", "allDay": "false", "eventId": "1"})
	if result.StatusCode != http.StatusNotFound {
		t.Errorf("status after remove = %d", result.StatusCode)
	}
}

func TestRegistryPrefixCollision(t *testing.T) {
	reg := NewRegistry(testKey, WithLogger(zerolog.Nop()))
	a := &Behavior{prefix: "/same", options: NewOptions(), bindings: map[string]*Binding{}, routes: map[string]http.Handler{}}
	b := &Behavior{prefix: "/same", options: NewOptions(), bindings: map[string]*Binding{}, routes: map[string]http.Handler{}}
	reg.Add(a)
	reg.Add(a)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on collision")
		}
	}()
	reg.Add(b)
}

func TestRegistryOptions(t *testing.T) {
	loc := time.FixedZone("X", 7200)
	reg := NewRegistry(testKey, WithPath("widgets/"), WithLocation(loc), WithLogger(zerolog.Nop()))
	if reg.Path() != "/widgets" {
		t.Errorf("Path() = %q", reg.Path())
	}
	b := NewBehavior("cal", "#c", "fullCalendar")
	reg.Add(b)
	if b.Location() != loc {
		t.Error("location not propagated")
	}
	if !strings.HasPrefix(b.RoutePath("events"), "/widgets/cal-") {
		t.Errorf("RoutePath() = %q", b.RoutePath("events"))
	}
}

func TestCustomOnError(t *testing.T) {
	var calls []dropCall
	reg, _, bd := newTestBehavior(t, &calls)
	var seen error
	reg.OnError = func(w http.ResponseWriter, r *http.Request, err error) {
		seen = err
		w.WriteHeader(http.StatusTeapot)
	}

	result, _ := TestEvent(reg, bd, map[string]string{"allDay": "nope"})
	if result.StatusCode != http.StatusTeapot {
		t.Errorf("status = %d", result.StatusCode)
	}
	if !IsMalformed(seen) {
		t.Errorf("OnError got %v", seen)
	}
}

func TestHandlerErrorIs500(t *testing.T) {
	reg := NewRegistry(testKey, WithLogger(zerolog.Nop()))
	b := NewBehavior("cal", "#c", "fullCalendar")
	bd := b.Install(testSelect, func(ctx context.Context, tg *Target, p *Params) error {
		return errors.New("store offline")
	})
	reg.Add(b)

	result, _ := TestEvent(reg, bd, nil)
	if result.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d", result.StatusCode)
	}
}

func TestMountedRoute(t *testing.T) {
	var calls []dropCall
	reg, b, _ := newTestBehavior(t, &calls)
	b.Mount("events", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "[]")
	}))

	rec := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, b.RoutePath("events"), nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "[]" {
		t.Errorf("got %d %q", rec.Code, rec.Body.String())
	}
}

func TestSensitiveTokens(t *testing.T) {
	var calls []dropCall
	reg := NewRegistry(testKey, WithLogger(zerolog.Nop()))
	b := NewBehavior("cal", "#s", "fullCalendar").Sensitive()
	bd := b.Install(testDrop, func(ctx context.Context, tg *Target, p *Params) error {
		calls = append(calls, dropCall{eventID: p.String("eventId")})
		return p.Err()
	})
	reg.Add(b)

	result, _ := TestEvent(reg, bd, map[string]string{"millisDelta": "0", "allDay": "false", "eventId": "7"})
	if !result.IsOK() || len(calls) != 1 {
		t.Errorf("status = %d, calls = %v", result.StatusCode, calls)
	}
}

func TestBindingAttrs(t *testing.T) {
	var calls []dropCall
	reg, _, bd := newTestBehavior(t, &calls)

	attrs := bd.Attrs(map[string]string{"eventId": "9", "allDay": "false", "millisDelta": "0"})
	get, ok := attrs["hx-get"].(string)
	if !ok || !strings.HasPrefix(get, bd.Path()+"?") {
		t.Fatalf("hx-get = %v", attrs["hx-get"])
	}
	if attrs["hx-swap"] != "none" {
		t.Errorf("hx-swap = %v", attrs["hx-swap"])
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, get, nil)
	reg.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || len(calls) != 1 || calls[0].eventID != "9" {
		t.Errorf("status %d, calls %+v", rec.Code, calls)
	}
}

func TestWireAttrsNonGet(t *testing.T) {
	attrs := WireAttrs("/x", http.MethodPost, "tok", map[string]string{"a": "1"})
	if attrs["hx-post"] != "/x" {
		t.Errorf("hx-post = %v", attrs["hx-post"])
	}
	if attrs["hx-vals"] != `{"a":"1","p":"tok"}` {
		t.Errorf("hx-vals = %v", attrs["hx-vals"])
	}
}

func TestFirePreconditionGates(t *testing.T) {
	var calls []dropCall
	reg, b, _ := newTestBehavior(t, &calls)
	guarded := b.Install(testDrop.WithPrecondition("event.editable !== false"), func(ctx context.Context, tg *Target, p *Params) error {
		calls = append(calls, dropCall{eventID: p.String("eventId")})
		return p.Err()
	})

	eval := MapEvaluator{
		"event.editable !== false": "false",
		"delta.asMilliseconds()":   "3600000",
		"!event.start.hasTime()":   "false",
		"event.id":                 "5",
	}
	rt := &RecordingTransport{}
	sent, err := Fire(context.Background(), guarded, eval, rt)
	if err != nil || sent {
		t.Fatalf("Fire() = %v, %v", sent, err)
	}
	if len(rt.Requests) != 0 {
		t.Errorf("transport invoked %d times", len(rt.Requests))
	}

	eval["event.editable !== false"] = "true"
	ht := &HandlerTransport{Handler: reg.Handler()}
	sent, err = Fire(context.Background(), guarded, eval, ht)
	if err != nil || !sent {
		t.Fatalf("Fire() = %v, %v", sent, err)
	}
	if !ht.Last.IsOK() || len(calls) != 1 || calls[0].eventID != "5" {
		t.Errorf("status %d, calls %+v", ht.Last.StatusCode, calls)
	}
}

func TestFireRecordsValues(t *testing.T) {
	var calls []dropCall
	_, _, bd := newTestBehavior(t, &calls)
	rt := &RecordingTransport{}

	_, err := Fire(context.Background(), bd, MapEvaluator{
		"delta.asMilliseconds()": "-60000",
		"!event.start.hasTime()": "false",
		"event.id":               "a b",
	}, rt)
	if err != nil {
		t.Fatal(err)
	}
	req := rt.Requests[0]
	if req.Method != http.MethodGet || req.URL != bd.URL() {
		t.Errorf("request = %+v", req)
	}
	if req.Values.Get("millisDelta") != "-60000" || req.Values.Get("eventId") != "a b" {
		t.Errorf("values = %v", req.Values)
	}

	if _, err := Fire(context.Background(), bd, MapEvaluator{}, rt); err == nil {
		t.Error("expected error for unevaluable expression")
	}
}
