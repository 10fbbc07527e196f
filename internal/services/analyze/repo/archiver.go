package repo

import (
	"context"

	"checkstats/internal/modkit/repokit"
	"checkstats/internal/services/analyze/domain"
)

// Archiver persists finished runs through a transaction runner. It satisfies
// the analyze domain's ArchiverPort
type Archiver struct {
	tx     repokit.TxRunner
	binder repokit.Binder[Storage]
}

// NewArchiver constructs a transactional run archiver
func NewArchiver(tx repokit.TxRunner) *Archiver {
	return &Archiver{tx: tx, binder: NewPG()}
}

// SaveRun writes the run row and its events atomically
func (a *Archiver) SaveRun(ctx context.Context, report domain.Report, events []domain.Event) error {
	return repokit.WithTx(ctx, a.tx, func(q repokit.Queryer) error {
		return a.binder.Bind(q).SaveRun(ctx, report, events)
	})
}

var _ domain.ArchiverPort = (*Archiver)(nil)
