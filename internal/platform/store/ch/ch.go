// Package ch provides a clickhouse client
package ch

import (
	"context"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// Config configures clickhouse client
type Config struct {
	URL  string
	Role string // reported via client info
	Tag  string
}

// Rows is the minimal result set iteration for ch
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
	Columns() []string
}

// CH wraps a native protocol clickhouse connection
type CH struct {
	conn driver.Conn
}

// Open connects and pings clickhouse using a DSN
func Open(ctx context.Context, cfg Config) (*CH, error) {
	opts, err := clickhouse.ParseDSN(cfg.URL)
	if err != nil {
		return nil, err
	}
	opts.ClientInfo = BuildClientInfo(cfg.Role, cfg.Tag)

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &CH{conn: conn}, nil
}

// Insert writes rows into a table via a prepared batch. Each row must be a
// pointer to a struct with ch tags matching the table columns
func (c *CH) Insert(ctx context.Context, table string, rows ...any) error {
	if len(rows) == 0 {
		return nil
	}
	batch, err := c.conn.PrepareBatch(ctx, "INSERT INTO "+table)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := batch.AppendStruct(row); err != nil {
			return err
		}
	}
	return batch.Send()
}

// Exec runs a statement without results
func (c *CH) Exec(ctx context.Context, query string, args ...any) error {
	return c.conn.Exec(ctx, query, args...)
}

// Query runs a query and returns ch.Rows
func (c *CH) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := c.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return chRows{rows}, nil
}

// Close closes resources
func (c *CH) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

type chRows struct{ rows driver.Rows }

func (r chRows) Next() bool             { return r.rows.Next() }
func (r chRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r chRows) Err() error             { return r.rows.Err() }
func (r chRows) Close() error           { return r.rows.Close() }
func (r chRows) Columns() []string      { return r.rows.Columns() }
