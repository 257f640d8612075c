// Package hxwidgetecho mounts an hxwidget registry on an Echo server.
//
//	e := echo.New()
//	reg := hxwidgetecho.Mount(e, hxwidgetecho.WithKey(key))
//	reg.Add(cal)
//
// Or on a group sharing its middleware:
//
//	g := e.Group("/app", authMiddleware)
//	reg := hxwidgetecho.MountGroup(g, "/app")
//	reg.Add(cal)
package hxwidgetecho

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/pthm/hxwidget"
)

// Option configures Mount and MountGroup.
type Option func(*options)

type options struct {
	key  []byte
	path string
	reg  []hxwidget.Option
}

// WithKey sets the token key. It should be 32 bytes of random data.
// Without it a random key is generated, which only suits development:
// callback URLs do not survive a restart.
func WithKey(key []byte) Option {
	return func(o *options) {
		o.key = key
	}
}

// WithPath sets the callback path below the router or group. The default
// is hxwidget.DefaultPath.
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

// Mount creates a registry and routes its callbacks on e.
func Mount(e *echo.Echo, opts ...Option) *hxwidget.Registry {
	reg, route := newRegistry("", opts)
	e.Any(route, echo.WrapHandler(reg.Handler()))
	return reg
}

// MountGroup creates a registry and routes its callbacks on g. base is the
// prefix g was created with; callback URLs are built from it.
func MountGroup(g *echo.Group, base string, opts ...Option) *hxwidget.Registry {
	reg, route := newRegistry(base, opts)
	g.Any(route, echo.WrapHandler(reg.Handler()))
	return reg
}

func newRegistry(base string, opts []Option) (*hxwidget.Registry, string) {
	o := &options{path: hxwidget.DefaultPath}
	for _, opt := range opts {
		opt(o)
	}

	key := o.key
	if key == nil {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			panic(fmt.Sprintf("hxwidgetecho: failed to generate random key: %v", err))
		}
	}

	// The registry builds URLs from the full path; echo routes relative to
	// the group.
	rel := "/" + strings.Trim(o.path, "/")
	full := strings.TrimSuffix(base, "/") + rel
	regOpts := append([]hxwidget.Option{hxwidget.WithPath(full)}, o.reg...)
	return hxwidget.NewRegistry(key, regOpts...), rel + "/*"
}

// Render writes a templ component to the Echo response.
//
//	func page(c echo.Context) error {
//	    return hxwidgetecho.Render(c, layout(cal))
//	}
func Render(c echo.Context, component templ.Component) error {
	c.Response().Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(c.Request().Context(), c.Response())
}
