// Package pool manages the process-wide set of database connections and
// hands them out one request at a time.
//
// A Pool starts closed, is opened once at startup and closed once at
// shutdown. Every Acquire must be paired with Lease.Release; With and
// Middleware do the pairing for callers so release happens on every exit
// path.
package pool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/puddle/v2"
)

type Config struct {
	ConnString string
	// MaxConns bounds the number of concurrently leased connections.
	MaxConns int32
	MinConns int32
	// AcquireTimeout caps the wait for a free connection. Zero waits until
	// the caller's context is done.
	AcquireTimeout time.Duration
}

type state int32

const (
	stateNew state = iota
	stateOpen
	stateClosed
)

type Option func(*Pool)

func WithLogger(l *slog.Logger) Option {
	return func(p *Pool) { p.logger = l }
}

func WithMetrics(m *Metrics) Option {
	return func(p *Pool) { p.metrics = m }
}

func WithConnector(c Connector) Option {
	return func(p *Pool) { p.connector = c }
}

type Pool struct {
	cfg       Config
	connector Connector
	logger    *slog.Logger
	metrics   *Metrics

	// tickets caps outstanding leases at cfg.MaxConns independently of the
	// connector's own limits.
	tickets *puddle.Pool[struct{}]

	mu    sync.Mutex // serializes Open and Close
	state atomic.Int32

	leased         atomic.Int32
	totalAcquires  atomic.Int64
	failedAcquires atomic.Int64
}

// Stats is a point-in-time snapshot of pool usage.
type Stats struct {
	Open           bool  `json:"open"`
	MaxConns       int32 `json:"maxConns"`
	Leased         int32 `json:"leased"`
	TotalAcquires  int64 `json:"totalAcquires"`
	FailedAcquires int64 `json:"failedAcquires"`
}

// New builds a closed pool. Call Open before the first Acquire.
func New(cfg Config, opts ...Option) (*Pool, error) {
	if cfg.MaxConns < 1 {
		return nil, fmt.Errorf("pool: MaxConns must be at least 1, got %d", cfg.MaxConns)
	}
	if cfg.MinConns < 0 || cfg.MinConns > cfg.MaxConns {
		return nil, fmt.Errorf("pool: MinConns must be between 0 and %d, got %d", cfg.MaxConns, cfg.MinConns)
	}

	p := &Pool{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.connector == nil {
		p.connector = &pgxConnector{}
	}

	tickets, err := puddle.NewPool(&puddle.Config[struct{}]{
		Constructor: func(context.Context) (struct{}, error) { return struct{}{}, nil },
		Destructor:  func(struct{}) {},
		MaxSize:     cfg.MaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("pool: tickets: %w", err)
	}
	p.tickets = tickets
	p.metrics.setMaxConns(cfg.MaxConns)
	return p, nil
}

// Open connects to the database. A failure is a *ConnectionError and leaves
// the pool unopened; Close is still safe to call afterwards.
func (p *Pool) Open(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch state(p.state.Load()) {
	case stateOpen:
		return ErrAlreadyOpen
	case stateClosed:
		return ErrPoolClosed
	}

	if err := p.connector.Connect(ctx, p.cfg); err != nil {
		return &ConnectionError{Err: err}
	}
	p.state.Store(int32(stateOpen))
	p.logger.Info("connection pool opened", "max_conns", p.cfg.MaxConns, "min_conns", p.cfg.MinConns)
	return nil
}

// Close releases every backing connection. It blocks until outstanding
// leases are returned, so stop serving requests first. Calling Close more
// than once, or on a pool that never opened, is a no-op after the first.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	prev := state(p.state.Swap(int32(stateClosed)))
	if prev == stateClosed {
		return
	}
	p.tickets.Close()
	p.connector.Close()
	if prev == stateOpen {
		p.logger.Info("connection pool closed")
	}
}

// Acquire leases one connection for the caller's exclusive use. The caller
// must Release the lease.
func (p *Pool) Acquire(ctx context.Context) (*Lease, error) {
	started := time.Now()
	p.totalAcquires.Add(1)

	if state(p.state.Load()) != stateOpen {
		return nil, p.acquireFailed(ErrPoolClosed, started)
	}

	if p.cfg.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.AcquireTimeout)
		defer cancel()
	}

	ticket, err := p.tickets.Acquire(ctx)
	if err != nil {
		return nil, p.acquireFailed(p.classify(err, started), started)
	}

	conn, err := p.connector.Acquire(ctx)
	if err != nil {
		ticket.ReleaseUnused()
		return nil, p.acquireFailed(p.classify(err, started), started)
	}

	p.leased.Add(1)
	p.metrics.leased(1)
	p.metrics.observeAcquire("ok", started)
	return &Lease{conn: conn, ticket: ticket, pool: p}, nil
}

// With runs fn with a leased connection and releases it however fn exits.
func (p *Pool) With(ctx context.Context, fn func(*Lease) error) error {
	lease, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer lease.Release()
	return fn(lease)
}

func (p *Pool) Stats() Stats {
	return Stats{
		Open:           state(p.state.Load()) == stateOpen,
		MaxConns:       p.cfg.MaxConns,
		Leased:         p.leased.Load(),
		TotalAcquires:  p.totalAcquires.Load(),
		FailedAcquires: p.failedAcquires.Load(),
	}
}

func (p *Pool) classify(err error, started time.Time) error {
	switch {
	case errors.Is(err, puddle.ErrClosedPool), state(p.state.Load()) == stateClosed:
		return ErrPoolClosed
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w after %s", ErrPoolExhausted, time.Since(started).Round(time.Millisecond))
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("pool: acquire: %w", err)
	default:
		return &ConnectionError{Err: err}
	}
}

func (p *Pool) acquireFailed(err error, started time.Time) error {
	p.failedAcquires.Add(1)

	status := "error"
	switch {
	case errors.Is(err, ErrPoolExhausted):
		status = "exhausted"
	case errors.Is(err, ErrPoolClosed):
		status = "closed"
	case errors.Is(err, context.Canceled):
		status = "canceled"
	}
	p.metrics.observeAcquire(status, started)
	return err
}

func (p *Pool) release(l *Lease) {
	l.conn.Release()
	l.ticket.Release()
	p.leased.Add(-1)
	p.metrics.leased(-1)
}
