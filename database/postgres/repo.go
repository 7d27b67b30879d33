package postgres

import (
	"context"
	"fmt"
	"math"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/sagarc03/userload"
	"github.com/sagarc03/userload/dataset"
)

// maxBindParams is the PostgreSQL wire protocol limit on parameters per statement.
const maxBindParams = 65535

// BulkInsert appends every row of ds to table in a single transaction. Columns
// are matched by name, so the table must have a column for each dataset
// column. Either all rows are stored or none are.
func (c *Controller) BulkInsert(ctx context.Context, table string, ds *dataset.Dataset) error {
	const op = "bulk insert"

	db, err := c.conn(op)
	if err != nil {
		return err
	}

	if ds == nil || ds.Len() == 0 {
		c.logger.Info("nothing to insert", "table", table)
		return nil
	}

	query, args, err := insertQuery(table, ds)
	if err != nil {
		return userload.NewError(userload.KindInsertion, op, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return userload.NewError(userload.KindInsertion, op, fmt.Errorf("begin: %w", err))
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		_ = tx.Rollback()
		c.logger.Error("error inserting the data", "table", table, "rows", ds.Len(), "err", err)
		return userload.NewError(userload.KindInsertion, op, fmt.Errorf("table %s: %w", table, err))
	}

	if err := tx.Commit(); err != nil {
		c.logger.Error("error committing the insert", "table", table, "err", err)
		return userload.NewError(userload.KindInsertion, op, fmt.Errorf("commit: %w", err))
	}

	c.logger.Info("rows inserted", "table", table, "rows", ds.Len())
	return nil
}

func insertQuery(table string, ds *dataset.Dataset) (string, []any, error) {
	if !userload.IsValidIdentifier(table) {
		return "", nil, fmt.Errorf("%w: invalid table name: %q", userload.ErrInvalidInput, table)
	}

	names := ds.Names()
	if len(names) == 0 {
		return "", nil, fmt.Errorf("%w: dataset has no columns", userload.ErrInvalidInput)
	}
	if ds.Len()*len(names) > maxBindParams {
		return "", nil, fmt.Errorf("%w: %d rows of %d columns exceed %d parameters",
			userload.ErrInvalidInput, ds.Len(), len(names), maxBindParams)
	}

	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = pgx.Identifier{name}.Sanitize()
	}

	builder := sq.Insert(pgx.Identifier{table}.Sanitize()).
		Columns(quoted...).
		PlaceholderFormat(sq.Dollar)

	for _, row := range ds.Rows() {
		values := make([]any, len(row))
		for i, v := range row {
			values[i] = coerceValue(v)
		}
		builder = builder.Values(values...)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build insert: %w", err)
	}
	return query, args, nil
}

// coerceValue maps dataset cells onto values the driver stores as SQL NULL
// or a plain scalar.
func coerceValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
		return x
	case time.Time:
		if x.IsZero() {
			return nil
		}
		return x.UTC()
	case *time.Time:
		if x == nil || x.IsZero() {
			return nil
		}
		return x.UTC()
	default:
		return v
	}
}
