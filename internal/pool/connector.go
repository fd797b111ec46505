package pool

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the query surface shared by *pgxpool.Conn, *pgx.Conn and
// pgxmock connections.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Conn is a backing connection handed out by a Connector.
type Conn interface {
	Querier
	Release()
}

// Connector owns the backing connections. The default implementation is a
// pgxpool.Pool; tests swap in fakes.
type Connector interface {
	Connect(ctx context.Context, cfg Config) error
	Acquire(ctx context.Context) (Conn, error)
	Close()
}

type pgxConnector struct {
	pool *pgxpool.Pool
}

func (c *pgxConnector) Connect(ctx context.Context, cfg Config) error {
	pcfg, err := pgxpool.ParseConfig(cfg.ConnString)
	if err != nil {
		return fmt.Errorf("parse connection string: %w", err)
	}
	pcfg.MaxConns = cfg.MaxConns
	pcfg.MinConns = cfg.MinConns

	p, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return err
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return fmt.Errorf("ping: %w", err)
	}
	c.pool = p
	return nil
}

func (c *pgxConnector) Acquire(ctx context.Context) (Conn, error) {
	conn, err := c.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (c *pgxConnector) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
}
