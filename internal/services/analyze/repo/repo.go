// Package repo provides the analyze run archive repository implementation.
package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"checkstats/internal/modkit/repokit"
	"checkstats/internal/platform/errors"
	"checkstats/internal/services/analyze/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// RunRow is one archived run
type RunRow struct {
	RunID        uuid.UUID
	InputPath    string
	InputSHA256  string
	OutDir       string
	StartedUTC   time.Time
	CompletedUTC time.Time
	DatasetStart string
	DatasetEnd   string
	EventCount   int
}

// Storage defines the run archive repository
type Storage interface {
	SaveRun(ctx context.Context, report domain.Report, events []domain.Event) error
	ListRuns(ctx context.Context, limit int) ([]RunRow, error)
	LatestRun(ctx context.Context) (RunRow, error)
}

// SaveRun implements Storage. Events are written in batches keyed to the run
// row; re-archiving the same input sha replaces nothing and inserts a new run
func (s *pg) SaveRun(ctx context.Context, report domain.Report, events []domain.Event) error {
	runID := uuid.New()

	_, err := s.q.Exec(ctx, `INSERT INTO runs
		(id, input_path, input_sha256, out_dir, started_utc, completed_utc,
		dataset_start, dataset_end, event_count)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		runID, report.InputPath, report.InputSHA256, report.OutDir,
		report.StartedUTC, report.CompletedUTC,
		report.DatasetStart, report.DatasetEnd, len(events),
	)
	if err != nil {
		return errors.FromPostgres(err, "insert run")
	}

	const batchSize = 500
	for off := 0; off < len(events); off += batchSize {
		chunk := events[off:min(off+batchSize, len(events))]
		if err := s.writeEventBatch(ctx, runID, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (s *pg) writeEventBatch(ctx context.Context, runID uuid.UUID, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO run_events
		(run_id, event_id, message_id, timestamp_utc, match_type, event_weight,
		k_token_hit_count, confidence_score, line_id, mode_guess, line_validated,
		direction_polarity, text_sha256) VALUES `)

	args := make([]any, 0, len(events)*13)
	for i, e := range events {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*13 + 1
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base, base+1, base+2, base+3, base+4, base+5, base+6,
			base+7, base+8, base+9, base+10, base+11, base+12)
		args = append(args,
			runID, e.EventID, e.MessageID, e.TimestampUTC, string(e.MatchType),
			e.EventWeight, e.KTokenHitCount, e.ConfidenceScore, e.LineID,
			e.ModeGuess, e.LineValidated, e.DirectionPolarity, e.TextSHA256,
		)
	}
	sb.WriteString(` ON CONFLICT (run_id, event_id) DO NOTHING`)

	if _, err := s.q.Exec(ctx, sb.String(), args...); err != nil {
		return errors.FromPostgres(err, "insert run events")
	}
	return nil
}

// ListRuns implements Storage
func (s *pg) ListRuns(ctx context.Context, limit int) ([]RunRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.q.Query(ctx, `
		SELECT id, input_path, input_sha256, out_dir, started_utc, completed_utc,
			dataset_start, dataset_end, event_count
		FROM runs
		ORDER BY started_utc DESC, id
		LIMIT $1`, limit)
	if err != nil {
		return nil, errors.FromPostgres(err, "list runs")
	}
	defer rows.Close()

	out := make([]RunRow, 0, limit)
	for rows.Next() {
		var r RunRow
		if err := rows.Scan(
			&r.RunID, &r.InputPath, &r.InputSHA256, &r.OutDir,
			&r.StartedUTC, &r.CompletedUTC, &r.DatasetStart, &r.DatasetEnd, &r.EventCount,
		); err != nil {
			return nil, errors.FromPostgres(err, "scan run")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LatestRun implements Storage
func (s *pg) LatestRun(ctx context.Context) (RunRow, error) {
	runs, err := s.ListRuns(ctx, 1)
	if err != nil {
		return RunRow{}, err
	}
	if len(runs) == 0 {
		return RunRow{}, errors.NotFoundf("no archived runs")
	}
	return runs[0], nil
}
