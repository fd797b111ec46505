package cafe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"cafeteria-service/internal/pool"
)

var ErrNotFound = errors.New("cafe: record not found")

// RowQuerier decodes result rows as column-ordered records. *pool.Lease
// implements it.
type RowQuerier interface {
	Rows(ctx context.Context, sql string, args ...any) ([]pool.Record, error)
	Row(ctx context.Context, sql string, args ...any) (pool.Record, error)
}

// Assignment is a column forced to a fixed value on every update.
type Assignment struct {
	Column string
	Value  any
}

// Table describes one table and issues the five statements every resource
// supports. Columns are the client-writable columns; Output is every column
// returned to the client, key first.
type Table struct {
	Name    string
	Key     string
	Columns []string
	Output  []string
	// UpdateForced is appended to the SET list of every update.
	UpdateForced []Assignment
}

func (t Table) List(ctx context.Context, q RowQuerier) ([]pool.Record, error) {
	return q.Rows(ctx, t.selectSQL()+" ORDER BY "+t.Key)
}

func (t Table) Get(ctx context.Context, q RowQuerier, id int64) (pool.Record, error) {
	return one(q.Row(ctx, t.selectSQL()+" WHERE "+t.Key+" = $1", id))
}

func (t Table) Insert(ctx context.Context, q RowQuerier, values []any) (pool.Record, error) {
	if len(values) != len(t.Columns) {
		return nil, fmt.Errorf("cafe: %s insert: %d values for %d columns", t.Name, len(values), len(t.Columns))
	}
	return q.Row(ctx, t.insertSQL(), values...)
}

func (t Table) Update(ctx context.Context, q RowQuerier, id int64, values []any) (pool.Record, error) {
	if len(values) != len(t.Columns) {
		return nil, fmt.Errorf("cafe: %s update: %d values for %d columns", t.Name, len(values), len(t.Columns))
	}
	args := make([]any, 0, len(values)+len(t.UpdateForced)+1)
	args = append(args, values...)
	for _, a := range t.UpdateForced {
		args = append(args, a.Value)
	}
	args = append(args, id)
	return one(q.Row(ctx, t.updateSQL(), args...))
}

// Delete removes the row and returns its key column.
func (t Table) Delete(ctx context.Context, q RowQuerier, id int64) (pool.Record, error) {
	return one(q.Row(ctx, "DELETE FROM "+t.Name+" WHERE "+t.Key+" = $1 RETURNING "+t.Key, id))
}

func (t Table) selectSQL() string {
	return "SELECT " + strings.Join(t.Output, ", ") + " FROM " + t.Name
}

func (t Table) insertSQL() string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		t.Name, strings.Join(t.Columns, ", "), placeholders(1, len(t.Columns)), strings.Join(t.Output, ", "))
}

func (t Table) updateSQL() string {
	set := make([]string, 0, len(t.Columns)+len(t.UpdateForced))
	n := 1
	for _, c := range t.Columns {
		set = append(set, fmt.Sprintf("%s = $%d", c, n))
		n++
	}
	for _, a := range t.UpdateForced {
		set = append(set, fmt.Sprintf("%s = $%d", a.Column, n))
		n++
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d RETURNING %s",
		t.Name, strings.Join(set, ", "), t.Key, n, strings.Join(t.Output, ", "))
}

func placeholders(from, n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(ps, ", ")
}

func one(row pool.Record, err error) (pool.Record, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return row, err
}
