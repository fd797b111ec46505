package pool

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errFakeQuery = errors.New("fake query failure")

type mockConnector struct {
	mock.Mock
}

func (m *mockConnector) Connect(ctx context.Context, cfg Config) error {
	return m.Called(ctx, cfg).Error(0)
}

func (m *mockConnector) Acquire(ctx context.Context) (Conn, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(Conn), args.Error(1)
}

func (m *mockConnector) Close() {
	m.Called()
}

// fakeConnector hands out connections that fail every query and counts
// acquisitions and releases.
type fakeConnector struct {
	acquired atomic.Int32
	released atomic.Int32
}

func (f *fakeConnector) Connect(context.Context, Config) error { return nil }

func (f *fakeConnector) Acquire(ctx context.Context) (Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.acquired.Add(1)
	return &fakeConn{owner: f}, nil
}

func (f *fakeConnector) Close() {}

func (f *fakeConnector) outstanding() int32 {
	return f.acquired.Load() - f.released.Load()
}

type fakeConn struct {
	owner *fakeConnector
}

func (c *fakeConn) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errFakeQuery
}

func (c *fakeConn) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errFakeQuery
}

func (c *fakeConn) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func (c *fakeConn) Release() {
	c.owner.released.Add(1)
}

// mockConn adapts a pgxmock connection to Conn.
type mockConn struct {
	pgxmock.PgxConnIface
	released atomic.Int32
}

func (c *mockConn) Release() {
	c.released.Add(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newOpenPool(t *testing.T, cfg Config, c Connector) *Pool {
	t.Helper()
	p, err := New(cfg, WithConnector(c), WithLogger(discardLogger()))
	require.NoError(t, err)
	require.NoError(t, p.Open(context.Background()))
	return p
}
