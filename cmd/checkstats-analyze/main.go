package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strconv"

	"checkstats/internal/modkit"
	"checkstats/internal/modkit/module"
	"checkstats/internal/platform/config"
	"checkstats/internal/platform/logger"
	"checkstats/internal/platform/store"

	analyzedom "checkstats/internal/services/analyze/domain"
	analyzemod "checkstats/internal/services/analyze/module"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func main() {
	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")

	l := logger.Get()

	var (
		fInput           = flag.String("input", "", "path to the raw chat export (JSON array, export object, or NDJSON)")
		fOut             = flag.String("out", "", "run output directory for derived artifacts")
		fPolicy          = flag.String("policy", "", "event count policy: message | token")
		fIncludeService  = flag.Bool("include-service", false, "keep service messages in the scan")
		fExcludeBots     = flag.Bool("exclude-bots", false, "drop bot messages from the scan")
		fExcludeForwards = flag.Bool("exclude-forwards", false, "drop forwarded messages from the scan")
		fTextTrunc       = flag.Int("text-trunc", 0, "truncate event text to this many runes (0 keeps the default)")
		fForce           = flag.Bool("force", false, "overwrite an out dir that already holds a completed run")
	)
	flag.Parse()

	if *fInput == "" || *fOut == "" {
		l.Panic().Msg("must provide -input and -out")
	}
	if !*fForce {
		if _, err := os.Stat(filepath.Join(*fOut, "run_metadata.json")); err == nil {
			l.Panic().Str("out", *fOut).Msg("out dir already holds a run; pass -force to overwrite")
		}
	}

	// the archive store is optional; without it the run is file-only
	pgURL := pgCfg.MayString("DBURL", "")
	chURL := chCfg.MayString("DBURL", "")

	st, err := store.Open(context.Background(), store.Config{
		AppName: "checkstats-analyze",
		PG: store.PGConfig{
			Enabled:     pgURL != "",
			URL:         pgURL,
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", true),
		},
		CH: store.CHConfig{
			Enabled:    chURL != "",
			URL:        chURL,
			ClientName: "checkstats",
			ClientTag:  "analyze",
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// Shared deps for modules
	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		CH:  st.CH,
		Log: *l,
	}

	// Surface flags to the module's FromConfig (CORE_ANALYZE_*)
	mustSetEnv("CORE_ANALYZE_EVENT_COUNT_POLICY", *fPolicy)
	if *fIncludeService {
		mustSetEnv("CORE_ANALYZE_INCLUDE_SERVICE", "1")
	}
	if *fExcludeBots {
		mustSetEnv("CORE_ANALYZE_INCLUDE_BOTS", "0")
	}
	if *fExcludeForwards {
		mustSetEnv("CORE_ANALYZE_INCLUDE_FORWARDS", "0")
	}
	if *fTextTrunc > 0 {
		mustSetEnv("CORE_ANALYZE_TEXT_TRUNC_LEN", strconv.Itoa(*fTextTrunc))
	}

	am := analyzemod.New(deps)
	module.Register(am.Name(), am.Ports())

	runner := module.MustPortsOf[analyzemod.Ports](am).Runner
	report, err := runner.Analyze(context.Background(), analyzedom.AnalyzeInput{
		InputPath: *fInput,
		OutDir:    *fOut,
		Argv:      os.Args,
	})
	if err != nil {
		l.Fatal().Err(err).Msg("analyze failed")
	}

	l.Info().
		Str("out", report.OutDir).
		Int("events", report.Events).
		Str("dataset_start", report.DatasetStart).
		Str("dataset_end", report.DatasetEnd).
		Msg("analyze complete")
}
