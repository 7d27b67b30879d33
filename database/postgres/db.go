package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sagarc03/userload"
)

// DatabaseExists reports whether the server catalog holds a database with
// exactly this name. The controller may be connected to any database on the
// server. A failing catalog query yields false and a KindCatalogQuery error.
func (c *Controller) DatabaseExists(ctx context.Context, name string) (bool, error) {
	const op = "database exists"

	db, err := c.conn(op)
	if err != nil {
		return false, err
	}

	exists, err := databaseExists(ctx, db, name)
	if err != nil {
		c.logger.Error("error while checking database existence", "name", name, "err", err)
		return false, userload.NewError(userload.KindCatalogQuery, op, err)
	}

	return exists, nil
}

func databaseExists(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx, `SELECT 1 FROM pg_database WHERE datname = $1`, name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
