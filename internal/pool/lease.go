package pool

import (
	"context"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/puddle/v2"
)

// Lease is a connection checked out for one request. It must not be shared
// between goroutines running concurrently and must not be used after
// Release.
type Lease struct {
	conn     Conn
	ticket   *puddle.Resource[struct{}]
	pool     *Pool
	released atomic.Bool
}

func (l *Lease) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return l.conn.Exec(ctx, sql, args...)
}

func (l *Lease) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return l.conn.Query(ctx, sql, args...)
}

func (l *Lease) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return l.conn.QueryRow(ctx, sql, args...)
}

// Rows runs sql and decodes every row into a Record. An empty result is an
// empty, non-nil slice.
func (l *Lease) Rows(ctx context.Context, sql string, args ...any) ([]Record, error) {
	rows, err := l.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	out, err := pgx.CollectRows(rows, rowToRecord)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Record{}
	}
	return out, nil
}

// Row runs sql and decodes the first row into a Record. It returns
// pgx.ErrNoRows when the query yields nothing.
func (l *Lease) Row(ctx context.Context, sql string, args ...any) (Record, error) {
	rows, err := l.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectOneRow(rows, rowToRecord)
}

// Release returns the connection to the pool. Only the first call has an
// effect.
func (l *Lease) Release() {
	if !l.released.CompareAndSwap(false, true) {
		return
	}
	l.pool.release(l)
}
