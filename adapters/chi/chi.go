// Package hxwidgetchi mounts an hxwidget registry on a chi router.
//
//	r := chi.NewRouter()
//	reg := hxwidgetchi.Mount(r, hxwidgetchi.WithKey(key))
//	reg.Add(cal)
//
// Inside r.Route("/app", ...) pass WithBase("/app") so callback URLs
// carry the route prefix.
package hxwidgetchi

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pthm/hxwidget"
)

// Option configures Mount.
type Option func(*options)

type options struct {
	key  []byte
	base string
	path string
	reg  []hxwidget.Option
}

// WithKey sets the token key. Without it a random key is generated.
func WithKey(key []byte) Option {
	return func(o *options) {
		o.key = key
	}
}

// WithBase sets the prefix of the router Mount is called on.
func WithBase(base string) Option {
	return func(o *options) {
		o.base = base
	}
}

// WithPath sets the callback path below the router. The default is
// hxwidget.DefaultPath.
func WithPath(path string) Option {
	return func(o *options) {
		o.path = path
	}
}

// WithRegistryOptions passes options through to hxwidget.NewRegistry.
func WithRegistryOptions(opts ...hxwidget.Option) Option {
	return func(o *options) {
		o.reg = append(o.reg, opts...)
	}
}

// Mount creates a registry and routes its callbacks on r. Middleware
// registered on r runs before the registry handler.
func Mount(r chi.Router, opts ...Option) *hxwidget.Registry {
	o := &options{path: hxwidget.DefaultPath}
	for _, opt := range opts {
		opt(o)
	}

	key := o.key
	if key == nil {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			panic(fmt.Sprintf("hxwidgetchi: failed to generate random key: %v", err))
		}
	}

	rel := "/" + strings.Trim(o.path, "/")
	full := strings.TrimSuffix(o.base, "/") + rel
	reg := hxwidget.NewRegistry(key, append([]hxwidget.Option{hxwidget.WithPath(full)}, o.reg...)...)
	r.Handle(rel+"/*", reg.Handler())
	return reg
}
