package domain

import (
	"context"
	"io"
)

// ReaderPort serves calendar payloads for the active run
type ReaderPort interface {
	Run(ctx context.Context) (RunInfo, error)
	Months(ctx context.Context) ([]MonthOverview, error)
	Month(ctx context.Context, month string) (MonthDetail, error)
	Week(ctx context.Context, weekStartDate string) (WeekDetail, error)
	TopLines(ctx context.Context) ([]TopLine, error)
}

// UploaderPort accepts a raw export, analyzes it, and switches the active run
type UploaderPort interface {
	Upload(ctx context.Context, body io.Reader) (UploadResult, error)
}

// LocatorPort exposes the active run directory to sibling modules
type LocatorPort interface {
	ActiveRunDir() string
}
