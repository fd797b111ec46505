package pool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(Config{MaxConns: 0})
	assert.Error(t, err)

	_, err = New(Config{MaxConns: 2, MinConns: 3})
	assert.Error(t, err)

	p, err := New(Config{MaxConns: 2, MinConns: 1})
	require.NoError(t, err)
	assert.False(t, p.Stats().Open)
}

func TestLifecycle(t *testing.T) {
	ctx := context.Background()
	cfg := Config{ConnString: "postgres://localhost/cafeteria", MaxConns: 2}

	t.Run("open once then close once", func(t *testing.T) {
		mc := &mockConnector{}
		mc.On("Connect", mock.Anything, cfg).Return(nil).Once()
		mc.On("Close").Return().Once()

		p, err := New(cfg, WithConnector(mc), WithLogger(discardLogger()))
		require.NoError(t, err)

		require.NoError(t, p.Open(ctx))
		assert.True(t, p.Stats().Open)
		assert.ErrorIs(t, p.Open(ctx), ErrAlreadyOpen)

		p.Close()
		p.Close()
		assert.False(t, p.Stats().Open)
		assert.ErrorIs(t, p.Open(ctx), ErrPoolClosed)

		mc.AssertExpectations(t)
	})

	t.Run("open failure is a connection error and close still runs", func(t *testing.T) {
		mc := &mockConnector{}
		mc.On("Connect", mock.Anything, cfg).Return(errors.New("dial tcp: connection refused")).Once()
		mc.On("Close").Return().Once()

		p, err := New(cfg, WithConnector(mc), WithLogger(discardLogger()))
		require.NoError(t, err)

		err = p.Open(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConnection)
		var ce *ConnectionError
		assert.ErrorAs(t, err, &ce)
		assert.Contains(t, err.Error(), "connection refused")

		p.Close()
		mc.AssertExpectations(t)
	})

	t.Run("acquire before open and after close", func(t *testing.T) {
		fc := &fakeConnector{}
		p, err := New(cfg, WithConnector(fc), WithLogger(discardLogger()))
		require.NoError(t, err)

		_, err = p.Acquire(ctx)
		assert.ErrorIs(t, err, ErrPoolClosed)

		require.NoError(t, p.Open(ctx))
		lease, err := p.Acquire(ctx)
		require.NoError(t, err)
		lease.Release()

		p.Close()
		_, err = p.Acquire(ctx)
		assert.ErrorIs(t, err, ErrPoolClosed)
		assert.EqualValues(t, 2, p.Stats().FailedAcquires)
	})
}

func TestAcquireNeverExceedsMaxConns(t *testing.T) {
	const maxConns = 3
	fc := &fakeConnector{}
	p := newOpenPool(t, Config{MaxConns: maxConns}, fc)
	defer p.Close()

	var (
		current atomic.Int32
		peak    atomic.Int32
		wg      sync.WaitGroup
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := p.With(context.Background(), func(*Lease) error {
				n := current.Add(1)
				for {
					old := peak.Load()
					if n <= old || peak.CompareAndSwap(old, n) {
						break
					}
				}
				time.Sleep(2 * time.Millisecond)
				current.Add(-1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(maxConns))
	assert.EqualValues(t, 0, p.Stats().Leased)
	assert.EqualValues(t, 0, fc.outstanding())
	assert.EqualValues(t, 25, p.Stats().TotalAcquires)
}

func TestAcquireTimesOutWhenExhausted(t *testing.T) {
	fc := &fakeConnector{}
	p := newOpenPool(t, Config{MaxConns: 1, AcquireTimeout: 20 * time.Millisecond}, fc)
	defer p.Close()

	held, err := p.Acquire(context.Background())
	require.NoError(t, err)

	_, err = p.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrPoolExhausted)
	assert.EqualValues(t, 1, p.Stats().Leased)

	held.Release()

	again, err := p.Acquire(context.Background())
	require.NoError(t, err)
	again.Release()
	assert.EqualValues(t, 0, p.Stats().Leased)
}

func TestAcquireHonoursCallerCancellation(t *testing.T) {
	fc := &fakeConnector{}
	p := newOpenPool(t, Config{MaxConns: 1}, fc)
	defer p.Close()

	held, err := p.Acquire(context.Background())
	require.NoError(t, err)
	defer held.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Acquire(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConnectorFailureReturnsTicket(t *testing.T) {
	mc := &mockConnector{}
	mc.On("Connect", mock.Anything, mock.Anything).Return(nil)
	mc.On("Acquire", mock.Anything).Return(nil, errors.New("server closed the connection unexpectedly")).Once()
	fc := &fakeConn{owner: &fakeConnector{}}
	mc.On("Acquire", mock.Anything).Return(fc, nil).Once()
	mc.On("Close").Return()

	p := newOpenPool(t, Config{MaxConns: 1, AcquireTimeout: 50 * time.Millisecond}, mc)
	defer p.Close()

	_, err := p.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrConnection)

	// the single ticket went back, so the next acquire is not starved
	lease, err := p.Acquire(context.Background())
	require.NoError(t, err)
	lease.Release()
	assert.EqualValues(t, 1, fc.owner.released.Load())
}

func TestWithReleasesOnEveryExitPath(t *testing.T) {
	fc := &fakeConnector{}
	p := newOpenPool(t, Config{MaxConns: 2}, fc)
	defer p.Close()
	ctx := context.Background()

	t.Run("query error", func(t *testing.T) {
		err := p.With(ctx, func(l *Lease) error {
			_, err := l.Exec(ctx, "DELETE FROM rol WHERE id_rol = $1", 1)
			return err
		})
		assert.ErrorIs(t, err, errFakeQuery)
		assert.EqualValues(t, 0, p.Stats().Leased)
		assert.EqualValues(t, 0, fc.outstanding())
	})

	t.Run("panic", func(t *testing.T) {
		assert.Panics(t, func() {
			_ = p.With(ctx, func(*Lease) error { panic("boom") })
		})
		assert.EqualValues(t, 0, p.Stats().Leased)
		assert.EqualValues(t, 0, fc.outstanding())
	})

	t.Run("connection still usable after a failed query", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			_ = p.With(ctx, func(l *Lease) error {
				_, err := l.Query(ctx, "SELECT * FROM nope")
				return err
			})
		}
		lease, err := p.Acquire(ctx)
		require.NoError(t, err)
		lease.Release()
	})
}

func TestReleaseIsIdempotent(t *testing.T) {
	fc := &fakeConnector{}
	p := newOpenPool(t, Config{MaxConns: 1}, fc)
	defer p.Close()

	lease, err := p.Acquire(context.Background())
	require.NoError(t, err)
	lease.Release()
	lease.Release()

	assert.EqualValues(t, 0, p.Stats().Leased)
	assert.EqualValues(t, 1, fc.released.Load())
}

func TestLeaseDecodesRowsAsRecords(t *testing.T) {
	pgm, err := pgxmock.NewConn()
	require.NoError(t, err)
	defer pgm.Close(context.Background())

	conn := &mockConn{PgxConnIface: pgm}
	mc := &mockConnector{}
	mc.On("Connect", mock.Anything, mock.Anything).Return(nil)
	mc.On("Acquire", mock.Anything).Return(conn, nil)
	mc.On("Close").Return()

	p := newOpenPool(t, Config{MaxConns: 1}, mc)
	defer p.Close()
	ctx := context.Background()

	t.Run("Rows", func(t *testing.T) {
		pgm.ExpectQuery("SELECT id_rol, nombre FROM rol").
			WillReturnRows(pgxmock.NewRows([]string{"id_rol", "nombre"}).
				AddRow(int32(1), "Barista").
				AddRow(int32(2), "Cajero"))

		err := p.With(ctx, func(l *Lease) error {
			rows, err := l.Rows(ctx, "SELECT id_rol, nombre FROM rol ORDER BY id_rol")
			require.NoError(t, err)
			assert.Equal(t, []Record{
				{{"id_rol", int32(1)}, {"nombre", "Barista"}},
				{{"id_rol", int32(2)}, {"nombre", "Cajero"}},
			}, rows)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("Rows empty", func(t *testing.T) {
		pgm.ExpectQuery("SELECT id_rol, nombre FROM rol").
			WillReturnRows(pgxmock.NewRows([]string{"id_rol", "nombre"}))

		err := p.With(ctx, func(l *Lease) error {
			rows, err := l.Rows(ctx, "SELECT id_rol, nombre FROM rol")
			require.NoError(t, err)
			assert.NotNil(t, rows)
			assert.Empty(t, rows)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("Row absent", func(t *testing.T) {
		pgm.ExpectQuery("SELECT id_rol, nombre FROM rol WHERE id_rol").
			WithArgs(int64(9)).
			WillReturnRows(pgxmock.NewRows([]string{"id_rol", "nombre"}))

		err := p.With(ctx, func(l *Lease) error {
			_, err := l.Row(ctx, "SELECT id_rol, nombre FROM rol WHERE id_rol = $1", int64(9))
			return err
		})
		assert.ErrorIs(t, err, pgx.ErrNoRows)
	})

	assert.EqualValues(t, 3, conn.released.Load())
	assert.NoError(t, pgm.ExpectationsWereMet())
}

func TestMetricsTrackLeases(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	fc := &fakeConnector{}

	p, err := New(Config{MaxConns: 1, AcquireTimeout: 10 * time.Millisecond},
		WithConnector(fc), WithLogger(discardLogger()), WithMetrics(m))
	require.NoError(t, err)
	require.NoError(t, p.Open(context.Background()))
	defer p.Close()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.MaxConns))

	lease, err := p.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Leased))

	_, err = p.Acquire(context.Background())
	require.ErrorIs(t, err, ErrPoolExhausted)

	lease.Release()
	assert.Equal(t, float64(0), testutil.ToFloat64(m.Leased))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AcquireTotal.WithLabelValues("ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AcquireTotal.WithLabelValues("exhausted")))
}
