// Package pooltest builds pools whose leases are backed by a single pgxmock
// connection, for handler tests that set query expectations.
package pooltest

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"cafeteria-service/internal/pool"
)

type Connector struct {
	Mock pgxmock.PgxConnIface
}

func (c *Connector) Connect(context.Context, pool.Config) error { return nil }

func (c *Connector) Acquire(ctx context.Context) (pool.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return conn{c.Mock}, nil
}

func (c *Connector) Close() {}

type conn struct {
	pgxmock.PgxConnIface
}

func (conn) Release() {}

// New returns an open pool and the mock behind every lease it hands out.
// Expectations are verified and the pool closed when the test ends.
func New(t testing.TB, maxConns int32) (*pool.Pool, pgxmock.PgxConnIface) {
	t.Helper()

	m, err := pgxmock.NewConn()
	require.NoError(t, err)

	p, err := pool.New(
		pool.Config{MaxConns: maxConns},
		pool.WithConnector(&Connector{Mock: m}),
		pool.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)
	require.NoError(t, p.Open(context.Background()))

	t.Cleanup(func() {
		p.Close()
		require.NoError(t, m.ExpectationsWereMet())
		_ = m.Close(context.Background())
	})
	return p, m
}
