package domain

import "context"

// RunnerPort is the external port for running one analysis
type RunnerPort interface {
	Analyze(ctx context.Context, input AnalyzeInput) (Report, error)
}

// AnalyzeInput names the export file and the run output directory
type AnalyzeInput struct {
	InputPath string
	OutDir    string
	Argv      []string
}

// ArchiverPort persists finished runs for later browsing. Implementations
// may be absent; the runner treats a nil archiver as file-only mode
type ArchiverPort interface {
	SaveRun(ctx context.Context, report Report, events []Event) error
}
