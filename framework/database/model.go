package database

import (
	"context"
	"fmt"
	"regexp"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var (
	columnName  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)
	orderByTerm = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?( (?i:asc|desc))?$`)
)

// Record is one row keyed by column name.
type Record map[string]any

// Model is the accessor for one table. Every operation goes through the
// client's middleware chain before any SQL runs.
type Model struct {
	client *Client
	name   string
	table  string
}

// Name returns the model name.
func (m *Model) Name() string { return m.name }

// Table returns the backing table.
func (m *Model) Table() string { return m.table }

// FindMany returns every record matching args.Where.
func (m *Model) FindMany(ctx context.Context, args Args) ([]Record, error) {
	res, err := m.run(ctx, ActionFindMany, args, m.selectRecords)
	if err != nil {
		return nil, err
	}
	return as[[]Record](res)
}

// FindFirst returns the first record matching args.Where, or ErrRecordNotFound.
func (m *Model) FindFirst(ctx context.Context, args Args) (Record, error) {
	args.Take = 1
	res, err := m.run(ctx, ActionFindFirst, args, func(ctx context.Context, p *Params) (any, error) {
		recs, err := m.selectRecords(ctx, p)
		if err != nil {
			return nil, err
		}
		records := recs.([]Record)
		if len(records) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, m.name)
		}
		return records[0], nil
	})
	if err != nil {
		return nil, err
	}
	return as[Record](res)
}

// Create inserts data and returns the stored row.
func (m *Model) Create(ctx context.Context, data map[string]any) (Record, error) {
	res, err := m.run(ctx, ActionCreate, Args{Data: data}, func(ctx context.Context, p *Params) (any, error) {
		q := m.client.builder.Insert(m.table).SetMap(p.Args.Data).Suffix("RETURNING *")
		records, err := m.client.queryRecords(ctx, q)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return nil, fmt.Errorf("%w: insert into %s returned no row", ErrExecutingQuery, m.table)
		}
		return records[0], nil
	})
	if err != nil {
		return nil, err
	}
	return as[Record](res)
}

// Update sets data on every record matching where and returns the number of rows changed.
func (m *Model) Update(ctx context.Context, where, data map[string]any) (int64, error) {
	res, err := m.run(ctx, ActionUpdate, Args{Where: where, Data: data}, func(ctx context.Context, p *Params) (any, error) {
		q := m.client.builder.Update(m.table).SetMap(p.Args.Data)
		if len(p.Args.Where) > 0 {
			q = q.Where(sq.Eq(p.Args.Where))
		}
		return m.client.exec(ctx, q)
	})
	if err != nil {
		return 0, err
	}
	return as[int64](res)
}

// Delete removes every record matching where and returns the number of rows removed.
func (m *Model) Delete(ctx context.Context, where map[string]any) (int64, error) {
	res, err := m.run(ctx, ActionDelete, Args{Where: where}, func(ctx context.Context, p *Params) (any, error) {
		q := m.client.builder.Delete(m.table)
		if len(p.Args.Where) > 0 {
			q = q.Where(sq.Eq(p.Args.Where))
		}
		return m.client.exec(ctx, q)
	})
	if err != nil {
		return 0, err
	}
	return as[int64](res)
}

// Count returns the number of records matching where.
func (m *Model) Count(ctx context.Context, where map[string]any) (int64, error) {
	res, err := m.run(ctx, ActionCount, Args{Where: where}, func(ctx context.Context, p *Params) (any, error) {
		q := m.client.builder.Select("COUNT(*) AS count").From(m.table)
		if len(p.Args.Where) > 0 {
			q = q.Where(sq.Eq(p.Args.Where))
		}
		records, err := m.client.queryRecords(ctx, q)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return int64(0), nil
		}
		return toInt64(records[0]["count"])
	})
	if err != nil {
		return 0, err
	}
	return as[int64](res)
}

func (m *Model) run(ctx context.Context, action Action, args Args, final Handler) (any, error) {
	if err := checkColumns(args); err != nil {
		return nil, fmt.Errorf("%s %s: %w", m.name, action, err)
	}
	p := &Params{
		ID:     uuid.NewString(),
		Model:  m.name,
		Action: action,
		Args:   args,
	}
	return m.client.dispatch(ctx, p, final)
}

// checkColumns rejects every column reference that is not a plain or
// table-qualified identifier. Squirrel writes column names verbatim.
func checkColumns(args Args) error {
	for _, set := range []map[string]any{args.Where, args.Data} {
		for col := range set {
			if !columnName.MatchString(col) {
				return fmt.Errorf("%w: %q", ErrInvalidColumn, col)
			}
		}
	}
	for _, col := range args.Select {
		if col != "*" && !columnName.MatchString(col) {
			return fmt.Errorf("%w: %q", ErrInvalidColumn, col)
		}
	}
	for _, term := range args.OrderBy {
		if !orderByTerm.MatchString(term) {
			return fmt.Errorf("%w: %q", ErrInvalidColumn, term)
		}
	}
	return nil
}

func (m *Model) selectRecords(ctx context.Context, p *Params) (any, error) {
	cols := p.Args.Select
	if len(cols) == 0 {
		cols = []string{"*"}
	}
	q := m.client.builder.Select(cols...).From(m.table)
	if len(p.Args.Where) > 0 {
		q = q.Where(sq.Eq(p.Args.Where))
	}
	if len(p.Args.OrderBy) > 0 {
		q = q.OrderBy(p.Args.OrderBy...)
	}
	if p.Args.Take > 0 {
		q = q.Limit(p.Args.Take)
	}
	if p.Args.Skip > 0 {
		q = q.Offset(p.Args.Skip)
	}
	return m.client.queryRecords(ctx, q)
}

func as[T any](res any) (T, error) {
	v, ok := res.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: got %T, want %T", ErrUnexpectedResult, res, zero)
	}
	return v, nil
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case string:
		var out int64
		_, err := fmt.Sscan(n, &out)
		return out, err
	default:
		return 0, fmt.Errorf("%w: count of type %T", ErrUnexpectedResult, v)
	}
}
