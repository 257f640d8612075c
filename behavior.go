package hxwidget

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/a-h/templ"
)

// tokenParam carries the sealed callback token on every callback URL.
const tokenParam = "p"

// Handler receives the decoded parameters of one callback request and
// describes the response on t.
type Handler func(ctx context.Context, t *Target, p *Params) error

// Widget is implemented by anything that owns a Behavior. *Behavior
// implements it, so types embedding *Behavior do too.
type Widget interface {
	HXBehavior() *Behavior
}

// ResourceKind distinguishes stylesheet and script references.
type ResourceKind int

const (
	Stylesheet ResourceKind = iota
	Script
)

// Resource is a stylesheet or script the widget needs on the page.
type Resource struct {
	Kind ResourceKind
	URL  string
}

// Behavior attaches a jQuery plugin to a DOM element and owns the callback
// endpoints of the plugin's events.
//
// A behavior is created unbound to any registry. Registry.Add assigns the
// encoder and mount path, after which every installed binding is written
// into the option table as a generated client function.
//
//	b := hxwidget.NewBehavior("cal", "#calendar", "fullCalendar")
//	b.Options().Set("defaultView", "month")
//	b.Install(selectDescriptor, handleSelect)
//	reg.Add(b)
type Behavior struct {
	name      string
	selector  string
	plugin    string
	prefix    string
	sensitive bool

	mu        sync.RWMutex
	options   *Options
	resources []Resource
	scripts   []JS
	bindings  map[string]*Binding
	order     []string
	routes    map[string]http.Handler
	hooks     []func()

	encoder *Encoder
	path    string
	loc     *time.Location
}

// NewBehavior creates a behavior applying plugin to the elements matched by
// selector.
//
// The URL prefix is derived from the name and the selector only, so it is
// stable across restarts and code changes. Two behaviors with the same name
// on the same selector share a prefix and cannot join one registry; give
// one of them another name (the widget packages offer WithName).
func NewBehavior(name, selector, plugin string) *Behavior {
	return &Behavior{
		name:     name,
		selector: selector,
		plugin:   plugin,
		prefix:   "/" + name + "-" + behaviorHash(name+"|"+selector),
		options:  NewOptions(),
		bindings: make(map[string]*Binding),
		routes:   make(map[string]http.Handler),
		loc:      time.UTC,
	}
}

// HXBehavior implements Widget.
func (b *Behavior) HXBehavior() *Behavior {
	return b
}

// Sensitive switches callback tokens from signed to encrypted.
func (b *Behavior) Sensitive() *Behavior {
	b.mu.Lock()
	b.sensitive = true
	b.mu.Unlock()
	return b
}

// Name returns the behavior's name.
func (b *Behavior) Name() string { return b.name }

// Selector returns the jQuery selector of the target element.
func (b *Behavior) Selector() string { return b.selector }

// Prefix returns the behavior's URL prefix relative to the registry path.
func (b *Behavior) Prefix() string { return b.prefix }

// Options returns the live option table.
func (b *Behavior) Options() *Options { return b.options }

// Location returns the zone used to decode zone-less dates.
func (b *Behavior) Location() *time.Location {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loc
}

// AddResource registers a stylesheet or script rendered before the widget
// initialisation. Duplicate URLs are ignored.
func (b *Behavior) AddResource(kind ResourceKind, url string) *Behavior {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range b.resources {
		if r.URL == url {
			return b
		}
	}
	b.resources = append(b.resources, Resource{Kind: kind, URL: url})
	return b
}

// Resources returns the registered resources in insertion order.
func (b *Behavior) Resources() []Resource {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Resource(nil), b.resources...)
}

// AddScript appends page-level javascript emitted after the plugin call.
func (b *Behavior) AddScript(js JS) *Behavior {
	b.mu.Lock()
	b.scripts = append(b.scripts, js)
	b.mu.Unlock()
	return b
}

// Mount serves an extra endpoint at <prefix>/<name>, e.g. an event feed.
// Auxiliary routes take precedence over bindings of the same name.
func (b *Behavior) Mount(name string, h http.Handler) {
	b.mu.Lock()
	b.routes[name] = h
	b.mu.Unlock()
}

// OnRegister adds a function run each time the behavior is added to a
// registry, after routes and tokens are final.
func (b *Behavior) OnRegister(fn func()) {
	b.mu.Lock()
	b.hooks = append(b.hooks, fn)
	b.mu.Unlock()
}

func (b *Behavior) registered() {
	b.mu.RLock()
	hooks := append([]func(){}, b.hooks...)
	b.mu.RUnlock()
	for _, fn := range hooks {
		fn()
	}
}

// RoutePath returns the absolute path of an endpoint below the prefix.
// Before registration it is relative to the root.
func (b *Behavior) RoutePath(name string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.routePath(name)
}

func (b *Behavior) routePath(name string) string {
	return strings.TrimSuffix(b.path, "/") + b.prefix + "/" + name
}

// Install binds an event to handler and writes the generated client
// function under the descriptor's option key. Installing a name twice
// replaces the previous binding. Panics on an invalid descriptor.
func (b *Behavior) Install(desc EventDescriptor, handler Handler) *Binding {
	if err := desc.Validate(); err != nil {
		panic(fmt.Sprintf("hxwidget: %s: %v", b.name, err))
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.bindings[desc.Name]; !exists {
		b.order = append(b.order, desc.Name)
	}
	bd := &Binding{behavior: b, desc: desc, handler: handler, bound: true}
	b.bindings[desc.Name] = bd
	if b.encoder != nil {
		if err := b.installLocked(bd); err != nil {
			panic(fmt.Sprintf("hxwidget: %s: %v", b.name, err))
		}
	}
	return bd
}

// Detach unbinds an event. Its option is removed and later requests for it
// answer 404. Detaching an unknown event is a no-op.
func (b *Behavior) Detach(event string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	bd, ok := b.bindings[event]
	if !ok || !bd.bound {
		return
	}
	bd.bound = false
	b.options.Delete(bd.desc.OptionKey())
}

// Binding returns the binding for event, if any.
func (b *Behavior) Binding(event string) (*Binding, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	bd, ok := b.bindings[event]
	return bd, ok
}

// Bindings returns all bound bindings in installation order.
func (b *Behavior) Bindings() []*Binding {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*Binding, 0, len(b.order))
	for _, name := range b.order {
		if bd := b.bindings[name]; bd.bound {
			out = append(out, bd)
		}
	}
	return out
}

// attach is called by the registry. It seals the callback token of every
// bound event and installs the client functions.
func (b *Behavior) attach(enc *Encoder, path string, loc *time.Location) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.encoder = enc
	b.path = path
	if loc != nil {
		b.loc = loc
	}
	for _, name := range b.order {
		bd := b.bindings[name]
		if !bd.bound {
			continue
		}
		if err := b.installLocked(bd); err != nil {
			return err
		}
	}
	return nil
}

func (b *Behavior) detachAll() {
	b.mu.Lock()
	b.encoder = nil
	b.mu.Unlock()
}

func (b *Behavior) installLocked(bd *Binding) error {
	encoded, err := b.encoder.Encode(token{Behavior: b.prefix, Event: bd.desc.Name}, b.sensitive)
	if err != nil {
		return fmt.Errorf("seal %s token: %w", bd.desc.Name, err)
	}
	bd.path = b.routePath(bd.desc.Name)
	bd.token = encoded
	b.options.Set(bd.desc.OptionKey(), bd.invocation().Function())
	return nil
}

// Script returns the initialisation javascript: the plugin call with the
// option table followed by any page scripts, wrapped in a document-ready
// handler.
func (b *Behavior) Script() (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.encoder == nil && len(b.order) > 0 {
		return "", fmt.Errorf("hxwidget: %s: behavior is not registered", b.name)
	}
	opts, err := b.options.Render()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("jQuery(function() {\n")
	sb.WriteString("  jQuery(")
	sb.WriteString(Quote(b.selector))
	sb.WriteString(").")
	sb.WriteString(b.plugin)
	sb.WriteString("(")
	sb.WriteString(opts)
	sb.WriteString(");\n")
	for _, s := range b.scripts {
		sb.WriteString(string(s))
		sb.WriteString("\n")
	}
	sb.WriteString("});")
	return sb.String(), nil
}

// Render returns the head contribution of the widget: resource tags and
// the initialisation script.
func (b *Behavior) Render() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, r := range b.Resources() {
			var tag string
			switch r.Kind {
			case Stylesheet:
				tag = fmt.Sprintf(`<link rel="stylesheet" href="%s">`, templ.EscapeString(r.URL))
			default:
				tag = fmt.Sprintf(`<script src="%s"></script>`, templ.EscapeString(r.URL))
			}
			if _, err := io.WriteString(w, tag+"\n"); err != nil {
				return err
			}
		}
		script, err := b.Script()
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, "<script>\n"+script+"\n</script>")
		return err
	})
}

// serve handles one request below the behavior prefix. rest is the path
// after the prefix, without the leading slash.
func (b *Behavior) serve(w http.ResponseWriter, r *http.Request, rest string) error {
	b.mu.RLock()
	route, hasRoute := b.routes[rest]
	bd, hasBinding := b.bindings[rest]
	enc, loc, sensitive := b.encoder, b.loc, b.sensitive
	var method string
	bound := false
	if hasBinding {
		bound = bd.bound
		method = bd.invocation().method()
	}
	b.mu.RUnlock()

	if hasRoute {
		route.ServeHTTP(w, r)
		return nil
	}
	if !bound || enc == nil {
		return ErrNotFound
	}

	query := r.URL.Query()
	raw := query.Get(tokenParam)
	if raw == "" {
		return ErrInvalidFormat
	}
	var tok token
	if err := enc.Decode(raw, sensitive, &tok); err != nil {
		return wrapEncodingError(err)
	}
	if tok.Behavior != b.prefix || tok.Event != bd.desc.Name {
		return ErrSignatureInvalid
	}
	// A binding answers only its own method. HEAD is refused too.
	if r.Method != method {
		w.Header().Set("Allow", method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return nil
	}

	t := NewTarget()
	if err := bd.handler(r.Context(), t, NewParams(query, loc)); err != nil {
		return err
	}
	return t.Write(r.Context(), w)
}

// Binding connects one widget event to its server endpoint.
//
// A binding is Bound from Install until Detach. While bound its client
// function sits in the behavior's option table and its endpoint answers.
type Binding struct {
	behavior *Behavior
	desc     EventDescriptor
	handler  Handler
	bound    bool
	path     string
	token    string
}

// Descriptor returns the event descriptor.
func (bd *Binding) Descriptor() EventDescriptor { return bd.desc }

// Bound reports whether the binding is active.
func (bd *Binding) Bound() bool {
	bd.behavior.mu.RLock()
	defer bd.behavior.mu.RUnlock()
	return bd.bound
}

// Path returns the callback endpoint path.
func (bd *Binding) Path() string {
	bd.behavior.mu.RLock()
	defer bd.behavior.mu.RUnlock()
	if bd.path == "" {
		return bd.behavior.routePath(bd.desc.Name)
	}
	return bd.path
}

// URL returns the callback URL including the sealed token. It is empty
// until the behavior is registered.
func (bd *Binding) URL() string {
	bd.behavior.mu.RLock()
	defer bd.behavior.mu.RUnlock()
	return bd.urlLocked()
}

func (bd *Binding) urlLocked() string {
	if bd.token == "" {
		return ""
	}
	return bd.path + "?" + tokenParam + "=" + bd.token
}

func (bd *Binding) invocation() Invocation {
	return Invocation{Descriptor: bd.desc, URL: bd.urlLocked()}
}

// Invocation returns the client invocation encoder for this binding.
func (bd *Binding) Invocation() Invocation {
	bd.behavior.mu.RLock()
	defer bd.behavior.mu.RUnlock()
	return bd.invocation()
}

// CallbackFunction returns the generated client function.
func (bd *Binding) CallbackFunction() JS {
	return bd.Invocation().Function()
}

// Attrs returns htmx attributes that fire the binding from markup, with
// the transmitted values supplied statically via hx-vals.
//
//	<button { binding.Attrs(map[string]string{"eventId": "42"})... }>
func (bd *Binding) Attrs(values map[string]string) templ.Attributes {
	bd.behavior.mu.RLock()
	defer bd.behavior.mu.RUnlock()
	return WireAttrs(bd.path, bd.invocation().method(), bd.token, values)
}

// behaviorHash returns the first four bytes of the SHA-256 of input, in hex.
func behaviorHash(input string) string {
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:4])
}
