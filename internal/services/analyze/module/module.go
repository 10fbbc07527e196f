// Package module implements the analyze service module
package module

import (
	"checkstats/internal/modkit"
	"checkstats/internal/modkit/httpkit"
	"checkstats/internal/services/analyze/domain"
	"checkstats/internal/services/analyze/repo"
	"checkstats/internal/services/analyze/service"
)

// Ports exposed by the analyze module
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements the analyze service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new analyze module. Without a Postgres pool or a
// ClickHouse connection the runner works in file-only mode
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	var archivers []domain.ArchiverPort
	if deps.PG != nil {
		archivers = append(archivers, repo.NewArchiver(deps.PG))
	}
	if deps.CH != nil {
		archivers = append(archivers, repo.NewCHSink(deps.CH))
	}
	var archiver domain.ArchiverPort
	switch len(archivers) {
	case 0:
	case 1:
		archiver = archivers[0]
	default:
		archiver = repo.Multi(archivers...)
	}

	svc, err := service.New(opts.Config, archiver)
	if err != nil {
		panic(err)
	}

	m := &Module{deps: deps}
	m.ports = Ports{Runner: svc}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "analyze" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return "" }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
