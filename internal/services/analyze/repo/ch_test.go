package repo

import (
	"context"
	"testing"
	"time"

	"checkstats/internal/platform/store"
	"checkstats/internal/services/analyze/domain"
)

type fakeClickhouse struct {
	table string
	rows  []any
	err   error
}

func (f *fakeClickhouse) Insert(_ context.Context, table string, data any) error {
	f.table = table
	if rows, ok := data.([]any); ok {
		f.rows = append(f.rows, rows...)
	} else {
		f.rows = append(f.rows, data)
	}
	return f.err
}

func (f *fakeClickhouse) Query(context.Context, string, ...any) (store.Rows, error) {
	return nil, nil
}

func (f *fakeClickhouse) Close() error { return nil }

func sampleReport() domain.Report {
	return domain.Report{
		OutDir:       "/data/runs/20240115-093000",
		DatasetStart: "2024-01-15",
		DatasetEnd:   "2024-01-17",
	}
}

func sampleEvent() domain.Event {
	berlin := time.FixedZone("CET", 3600)
	return domain.Event{
		EventID:         "evt-1",
		MessageID:       1,
		TimestampUTC:    time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC),
		TimestampBerlin: time.Date(2024, 1, 15, 9, 30, 0, 0, berlin),
		MatchType:       "k_token",
		EventWeight:     1,
		LineID:          "10",
		ModeGuess:       "tram",
		LineValidated:   true,
	}
}

func TestCHSink_SaveRun(t *testing.T) {
	fake := &fakeClickhouse{}
	sink := NewCHSink(fake)

	if err := sink.SaveRun(context.Background(), sampleReport(), []domain.Event{sampleEvent()}); err != nil {
		t.Fatalf("save run: %v", err)
	}
	if fake.table != "checkstats.run_events" {
		t.Fatalf("table = %q", fake.table)
	}
	if len(fake.rows) != 1 {
		t.Fatalf("rows = %d", len(fake.rows))
	}

	row, ok := fake.rows[0].(*chEventRow)
	if !ok {
		t.Fatalf("row type = %T", fake.rows[0])
	}
	if row.RunID != "20240115-093000" || row.EventID != "evt-1" {
		t.Fatalf("row identity = %+v", row)
	}
	if row.DateBerlin != "2024-01-15" || row.Hour != 9 || row.WeekdayIdx != 0 {
		t.Fatalf("row calendar = %+v", row)
	}
}

func TestCHSink_NoEvents(t *testing.T) {
	fake := &fakeClickhouse{}
	sink := NewCHSink(fake)

	if err := sink.SaveRun(context.Background(), sampleReport(), nil); err != nil {
		t.Fatalf("save run: %v", err)
	}
	if fake.table != "" || len(fake.rows) != 0 {
		t.Fatalf("expected no insert, got table %q rows %d", fake.table, len(fake.rows))
	}
}

type countingArchiver struct {
	calls int
	err   error
}

func (c *countingArchiver) SaveRun(context.Context, domain.Report, []domain.Event) error {
	c.calls++
	return c.err
}

func TestMulti_StopsOnError(t *testing.T) {
	first := &countingArchiver{err: context.DeadlineExceeded}
	second := &countingArchiver{}

	err := Multi(first, second).SaveRun(context.Background(), sampleReport(), nil)
	if err == nil {
		t.Fatalf("expected first archiver error to propagate")
	}
	if first.calls != 1 || second.calls != 0 {
		t.Fatalf("calls = %d %d", first.calls, second.calls)
	}
}

func TestMulti_AllCalled(t *testing.T) {
	first := &countingArchiver{}
	second := &countingArchiver{}

	if err := Multi(first, second).SaveRun(context.Background(), sampleReport(), nil); err != nil {
		t.Fatalf("save run: %v", err)
	}
	if first.calls != 1 || second.calls != 1 {
		t.Fatalf("calls = %d %d", first.calls, second.calls)
	}
}
