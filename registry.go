package hxwidget

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/pthm/hxwidget/lib/logging"
)

// DefaultPath is where a registry expects to be mounted.
const DefaultPath = "/_w"

// RequestIDHeader carries the id assigned to each callback request.
const RequestIDHeader = "X-Request-Id"

// Option configures a Registry.
type Option func(*Registry)

// WithPath sets the mount path of the registry handler.
func WithPath(path string) Option {
	return func(reg *Registry) {
		reg.path = "/" + strings.Trim(path, "/")
	}
}

// WithLogger sets the request logger.
func WithLogger(l zerolog.Logger) Option {
	return func(reg *Registry) {
		reg.log = l
	}
}

// WithLocation sets the zone in which zone-less callback dates are read.
func WithLocation(loc *time.Location) Option {
	return func(reg *Registry) {
		reg.loc = loc
	}
}

// Registry routes callback requests to registered widgets.
type Registry struct {
	mu        sync.RWMutex
	encoder   *Encoder
	path      string
	loc       *time.Location
	log       zerolog.Logger
	behaviors map[string]*Behavior // by prefix

	// OnError answers a failed callback. The default maps malformed and
	// token errors to 400, unknown endpoints to 404 and the rest to 500.
	OnError func(http.ResponseWriter, *http.Request, error)
}

// NewRegistry creates a registry with the given signing key.
// Panics if the key cannot be used.
func NewRegistry(key []byte, opts ...Option) *Registry {
	enc, err := NewEncoder(key)
	if err != nil {
		panic(fmt.Sprintf("hxwidget: failed to create encoder: %v", err))
	}

	reg := &Registry{
		encoder:   enc,
		path:      DefaultPath,
		loc:       time.UTC,
		log:       logging.Logger.With().Str("component", "hxwidget").Logger(),
		behaviors: make(map[string]*Behavior),
	}
	for _, opt := range opts {
		opt(reg)
	}
	reg.OnError = reg.defaultOnError
	return reg
}

func (reg *Registry) defaultOnError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case IsNotFound(err):
		http.Error(w, "Not found", http.StatusNotFound)
	case IsBadRequest(err):
		http.Error(w, "Bad request", http.StatusBadRequest)
	default:
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

// Path returns the mount path.
func (reg *Registry) Path() string {
	return reg.path
}

// Encoder returns the registry's token encoder.
func (reg *Registry) Encoder() *Encoder {
	return reg.encoder
}

// Add registers widgets. Their bindings become routable and their client
// functions are installed. Panics on a prefix collision.
func (reg *Registry) Add(widgets ...Widget) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for _, w := range widgets {
		b := w.HXBehavior()
		if existing, ok := reg.behaviors[b.prefix]; ok && existing != b {
			panic(fmt.Sprintf("hxwidget: prefix collision for %q", b.prefix))
		}
		if err := b.attach(reg.encoder, reg.path, reg.loc); err != nil {
			panic(fmt.Sprintf("hxwidget: %s: %v", b.name, err))
		}
		reg.behaviors[b.prefix] = b
		b.registered()
		reg.log.Debug().Str("behavior", b.name).Str("prefix", b.prefix).Msg("widget registered")
	}
}

// Remove unregisters widgets. Later requests for them answer 404.
func (reg *Registry) Remove(widgets ...Widget) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for _, w := range widgets {
		b := w.HXBehavior()
		if reg.behaviors[b.prefix] == b {
			delete(reg.behaviors, b.prefix)
			b.detachAll()
		}
	}
}

// Lookup returns the behavior registered under prefix.
func (reg *Registry) Lookup(prefix string) (*Behavior, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	b, ok := reg.behaviors[prefix]
	return b, ok
}

// Handler returns the HTTP handler for callback routes. Mount it at Path()
// with the path left intact.
func (reg *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// CSRF protection: mutating methods require HX-Request header
		if r.Method != http.MethodGet && r.Method != http.MethodHead && !IsHTMX(r) {
			http.Error(w, "Forbidden: HTMX request required", http.StatusForbidden)
			return
		}

		id := ulid.Make().String()
		w.Header().Set(RequestIDHeader, id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		b, rest := reg.route(r.URL.Path)
		var err error
		if b == nil {
			err = ErrNotFound
		} else {
			err = b.serve(rec, r, rest)
		}
		if err != nil {
			reg.log.Warn().Err(err).
				Str("request_id", id).
				Str("path", r.URL.Path).
				Msg("callback failed")
			reg.OnError(rec, r, err)
		}

		ev := reg.log.Debug()
		if b != nil {
			ev = ev.Str("behavior", b.name).Str("event", rest)
		}
		ev.Str("request_id", id).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("callback")
	})
}

// route splits a request path into the owning behavior and the remainder
// below its prefix.
func (reg *Registry) route(path string) (*Behavior, string) {
	rel, ok := strings.CutPrefix(path, strings.TrimSuffix(reg.path, "/"))
	if !ok || !strings.HasPrefix(rel, "/") {
		return nil, ""
	}
	prefix, rest, _ := strings.Cut(rel[1:], "/")

	reg.mu.RLock()
	b := reg.behaviors["/"+prefix]
	reg.mu.RUnlock()
	return b, rest
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
