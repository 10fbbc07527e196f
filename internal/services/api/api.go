// Package api provides the HTTP API for the application
package api

import (
	"checkstats/internal/platform/config"
	"checkstats/internal/platform/logger"
	phttp "checkstats/internal/platform/net/http"
	"checkstats/internal/platform/store"

	"checkstats/internal/modkit"
	"checkstats/internal/modkit/httpkit"
	"checkstats/internal/modkit/module"
	"checkstats/internal/modkit/swaggerkit"

	metamod "checkstats/internal/services/api/meta/module"
	predictmod "checkstats/internal/services/api/predict/module"
	runsmod "checkstats/internal/services/api/runs/module"

	// Analyze module (owns the Runner port consumed by uploads)
	analyzemod "checkstats/internal/services/analyze/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	// shared deps for modules
	deps := modkit.Deps{
		Cfg: opt.Config,
	}
	if opt.Store != nil {
		deps.PG = opt.Store.PG
		deps.CH = opt.Store.CH
	}

	// Construct the analyze module first and extract its Runner port
	analyze := analyzemod.New(deps)
	runner := module.MustPortsOf[analyzemod.Ports](analyze).Runner

	// The runs module serves artifacts and feeds uploads through the Runner
	runs := runsmod.New(deps, runsmod.Deps{Analyzer: runner})
	locator := module.MustPortsOf[runsmod.Ports](runs).Locator

	// Predict reads whichever run is active in the runs module
	predict := predictmod.New(
		deps,
		modkit.WithPorts(predictmod.Ports{Locator: locator}),
	)

	mods := []module.Module{
		metamod.New(deps),
		analyze, // include analyze so its ports are registered
		runs,
		predict,
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		// Swagger + profiler
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})
}
