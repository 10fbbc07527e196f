package service

import (
	"bytes"
	"encoding/json/jsontext"
	"encoding/json/v2"
	"os"
	"path/filepath"
	"runtime"

	"checkstats/internal/core/detector"
	"checkstats/internal/core/version"
	"checkstats/internal/services/analyze/domain"
)

// writeMetadata writes run_metadata.json: two-space indent, sorted keys,
// trailing newline
func writeMetadata(outDir string, cfg domain.Config, report domain.Report, argv []string) error {
	var argvValue any
	if len(argv) > 0 {
		argvValue = argv
	}

	payload := map[string]any{
		"tool_versions": map[string]any{
			"telegram_download_chat": nil,
			"analyzer":               version.Info().Version,
		},
		"environment": map[string]any{
			"go_version": runtime.Version(),
			"platform":   runtime.GOOS + "/" + runtime.GOARCH,
		},
		"timestamps": map[string]any{
			"analyze_started_utc":   formatUTCZ(report.StartedUTC),
			"analyze_completed_utc": formatUTCZ(report.CompletedUTC),
		},
		"commands": map[string]any{
			"checkstats_argv":             argvValue,
			"telegram_download_chat_argv": nil,
		},
		"input": map[string]any{
			"chat_identifier_raw":        nil,
			"chat_identifier_normalized": nil,
			"raw_export_path":            report.InputPath,
			"raw_export_sha256":          report.InputSHA256,
		},
		"config": map[string]any{
			"timezone":                   "Europe/Berlin",
			"k_max":                      20,
			"keywords":                   detector.Keywords[:3],
			"event_count_policy":         cfg.EventCountPolicy,
			"include_service":            cfg.IncludeService,
			"include_bots":               cfg.IncludeBots,
			"include_forwards":           cfg.IncludeForwards,
			"export_retry_count":         nil,
			"export_retry_delay_seconds": nil,
			"text_trunc_len":             cfg.TextTruncLen,
		},
		"auth": map[string]any{
			"api_id_last4":           nil,
			"api_hash_present":       false,
			"api_hash_sha256_prefix": nil,
		},
		"counts": report.Counters.Map(),
		"dataset": map[string]any{
			"start_berlin_date":   report.DatasetStart,
			"end_berlin_date":     report.DatasetEnd,
			"total_days_in_range": report.TotalDays,
		},
		"assumptions": map[string]any{
			"naive_timestamps_treated_as_utc": true,
			"naive_timestamp_count":           report.Counters.NaiveTimestampCount,
		},
	}

	b, err := json.Marshal(payload, jsontext.WithIndent("  "), json.Deterministic(true))
	if err != nil {
		return err
	}
	if !bytes.HasSuffix(b, []byte("\n")) {
		b = append(b, '\n')
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outDir, "run_metadata.json"), b, 0o644)
}
