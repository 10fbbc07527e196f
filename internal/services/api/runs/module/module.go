// Package module wires runs into the API using modkit
package module

import (
	"net/http"

	modkit "checkstats/internal/modkit"
	"checkstats/internal/modkit/httpkit"
	"checkstats/internal/platform/net/middleware"
	str "checkstats/internal/platform/strings"
	analyzedom "checkstats/internal/services/analyze/domain"
	"checkstats/internal/services/api/runs/domain"
	runshttp "checkstats/internal/services/api/runs/http"
	runssvc "checkstats/internal/services/api/runs/service"
)

// Ports exposed by the runs module
type Ports struct {
	Locator domain.LocatorPort
	Reader  domain.ReaderPort
}

// Deps are the cross-module dependencies the runs module consumes
type Deps struct {
	// Analyzer runs uploads through the detection pipeline; nil disables uploads
	Analyzer analyzedom.RunnerPort
}

// Module implements the runs module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws   []func(http.Handler) http.Handler
	ports Ports

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc runssvc.Service
}

// New constructs the runs module
func New(deps modkit.Deps, moduleDeps Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("runs"),
		modkit.WithPrefix("/runs"),
		modkit.WithMiddlewares(middleware.NoStore()),
	}, opts...)...)

	o := FromConfig(deps.Cfg)
	svc := runssvc.New(o.RunDir, o.UploadsRoot, o.MaxUploadBytes, moduleDeps.Analyzer)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = Ports{Locator: svc, Reader: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		runshttp.Register(r, m.svc)
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
func (m *Module) Ports() any { return m.ports }
