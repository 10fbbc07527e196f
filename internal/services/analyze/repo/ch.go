package repo

import (
	"context"
	"path/filepath"
	"time"

	"checkstats/internal/platform/store"
	"checkstats/internal/services/analyze/domain"
)

// chEventRow is the analytics projection of one event for ClickHouse
type chEventRow struct {
	RunID             string    `ch:"run_id"`
	EventID           string    `ch:"event_id"`
	MessageID         int64     `ch:"message_id"`
	TimestampUTC      time.Time `ch:"timestamp_utc"`
	DateBerlin        string    `ch:"date_berlin"`
	Hour              uint8     `ch:"hour"`
	WeekdayIdx        uint8     `ch:"weekday_idx"`
	MatchType         string    `ch:"match_type"`
	EventWeight       int32     `ch:"event_weight"`
	KTokenHitCount    int32     `ch:"k_token_hit_count"`
	ConfidenceScore   int32     `ch:"confidence_score"`
	LineID            string    `ch:"line_id"`
	ModeGuess         string    `ch:"mode_guess"`
	LineValidated     bool      `ch:"line_validated"`
	DirectionPolarity string    `ch:"direction_polarity"`
}

// CHSink archives event rows into ClickHouse for ad hoc analytics.
// It satisfies domain.ArchiverPort alongside the Postgres archiver
type CHSink struct {
	ch    store.Clickhouse
	table string
}

// NewCHSink constructs a ClickHouse event sink
func NewCHSink(ch store.Clickhouse) *CHSink {
	return &CHSink{ch: ch, table: "checkstats.run_events"}
}

var _ domain.ArchiverPort = (*CHSink)(nil)

// SaveRun batch-inserts the run's events
func (s *CHSink) SaveRun(ctx context.Context, report domain.Report, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}
	runID := filepath.Base(report.OutDir)

	rows := make([]any, 0, len(events))
	for i := range events {
		e := &events[i]
		rows = append(rows, &chEventRow{
			RunID:             runID,
			EventID:           e.EventID,
			MessageID:         e.MessageID,
			TimestampUTC:      e.TimestampUTC,
			DateBerlin:        e.TimestampBerlin.Format("2006-01-02"),
			Hour:              uint8(e.TimestampBerlin.Hour()),
			WeekdayIdx:        uint8((int(e.TimestampBerlin.Weekday()) + 6) % 7),
			MatchType:         string(e.MatchType),
			EventWeight:       int32(e.EventWeight),
			KTokenHitCount:    int32(e.KTokenHitCount),
			ConfidenceScore:   int32(e.ConfidenceScore),
			LineID:            e.LineID,
			ModeGuess:         e.ModeGuess,
			LineValidated:     e.LineValidated,
			DirectionPolarity: e.DirectionPolarity,
		})
	}
	return s.ch.Insert(ctx, s.table, rows)
}

// Multi fans SaveRun out to several archivers, stopping on the first error
func Multi(archivers ...domain.ArchiverPort) domain.ArchiverPort {
	return multiArchiver(archivers)
}

type multiArchiver []domain.ArchiverPort

func (m multiArchiver) SaveRun(ctx context.Context, report domain.Report, events []domain.Event) error {
	for _, a := range m {
		if err := a.SaveRun(ctx, report, events); err != nil {
			return err
		}
	}
	return nil
}
