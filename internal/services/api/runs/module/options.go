package module

import "checkstats/internal/platform/config"

// Options configure the runs module
type Options struct {
	// RunDir is the run directory served at startup
	RunDir string
	// UploadsRoot receives uploaded runs; empty means a sibling of RunDir
	UploadsRoot string
	// MaxUploadBytes caps upload bodies; zero means unlimited
	MaxUploadBytes int64
}

// FromConfig reads CORE_RUNS_* options
func FromConfig(cfg config.Conf) Options {
	v := cfg.Prefix("CORE_RUNS_")
	return Options{
		RunDir:         v.MustString("DIR"),
		UploadsRoot:    v.MayString("UPLOADS_DIR", ""),
		MaxUploadBytes: int64(v.MayInt("UPLOAD_MAX_BYTES", 256<<20)),
	}
}
