// Package module wires predict into the API using modkit
package module

import (
	"net/http"

	modkit "checkstats/internal/modkit"
	"checkstats/internal/modkit/httpkit"
	"checkstats/internal/platform/net/middleware"
	str "checkstats/internal/platform/strings"
	predicthttp "checkstats/internal/services/api/predict/http"
	predictsvc "checkstats/internal/services/api/predict/service"
	runsdom "checkstats/internal/services/api/runs/domain"
)

// Ports the predict module requires from siblings
type Ports struct {
	Locator runsdom.LocatorPort
}

// Module implements the predict module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws []func(http.Handler) http.Handler

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc predictsvc.Service
}

// New constructs the predict module; the runs locator is injected via
// modkit.WithPorts
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("predict"),
		modkit.WithPrefix("/predict"),
		modkit.WithMiddlewares(middleware.NoStore()),
	}, opts...)...)

	ports, ok := b.Ports.(Ports)
	if !ok || ports.Locator == nil {
		panic("predict module requires a runs locator port")
	}
	svc := predictsvc.New(ports.Locator)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		svc:       svc,
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		predicthttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }

// Ports returns the module ports
func (m *Module) Ports() any { return nil }
