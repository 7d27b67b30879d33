package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sagarc03/userload"
	"github.com/sagarc03/userload/dataset"
	"github.com/sagarc03/userload/schema"
)

// duplicateDatabase is the SQLSTATE for CREATE DATABASE on an existing name.
const duplicateDatabase = "42P04"

// IsDuplicateDatabase reports whether err is the server refusing to create a
// database that already exists.
func IsDuplicateDatabase(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == duplicateDatabase
}

// CreateDatabase creates a database on the server the controller is connected
// to. On success the initial table is created in the new database from a
// one-row sample of the controller's sample dataset, if one was given.
// Creating an existing database fails. A table that cannot be provisioned is
// logged and left to the loader; the database still counts as created.
func (c *Controller) CreateDatabase(ctx context.Context, name string) error {
	db, err := c.conn("create database")
	if err != nil {
		return err
	}
	return c.createDatabase(ctx, db, name)
}

func (c *Controller) createDatabase(ctx context.Context, db *sql.DB, name string) error {
	const op = "create database"

	if !userload.IsValidIdentifier(name) {
		return userload.NewError(userload.KindDatabaseCreation, op,
			fmt.Errorf("%w: invalid database name: %q", userload.ErrInvalidInput, name))
	}

	// CREATE DATABASE cannot run inside a transaction block.
	if _, err := db.ExecContext(ctx, "CREATE DATABASE "+pgx.Identifier{name}.Sanitize()); err != nil {
		c.logger.Error("error creating the database", "name", name, "err", err)
		return userload.NewError(userload.KindDatabaseCreation, op, fmt.Errorf("database %s: %w", name, err))
	}
	c.logger.Info("database created", "name", name)

	if c.sample == nil || len(c.sample.Columns()) == 0 {
		c.logger.Info("no sample dataset, skipping initial table", "name", name)
		return nil
	}

	columns := c.sample.Head(1).Columns()
	err := withSideConnection(ctx, c.open, c.creds.WithDatabase(name), func(newDB *sql.DB) error {
		return c.createInitialTable(ctx, newDB, columns)
	})
	if err != nil {
		c.logger.Error("cannot provision initial table, database kept", "name", name, "err", err)
	}
	return nil
}

// CreateInitialTable creates the controller's table with one column per
// dataset column, in order. It is a no-op when the table already exists.
func (c *Controller) CreateInitialTable(ctx context.Context, columns []dataset.Column) error {
	db, err := c.conn("create initial table")
	if err != nil {
		return err
	}
	return c.createInitialTable(ctx, db, columns)
}

func (c *Controller) createInitialTable(ctx context.Context, db *sql.DB, columns []dataset.Column) error {
	const op = "create initial table"

	query, err := schema.CreateTableSQL(c.table, columns)
	if err != nil {
		return userload.NewError(userload.KindTableCreation, op, err)
	}

	if _, err := db.ExecContext(ctx, query); err != nil {
		c.logger.Error("cannot create the initial table", "table", c.table, "err", err)
		return userload.NewError(userload.KindTableCreation, op, fmt.Errorf("table %s: %w", c.table, err))
	}

	c.logger.Info("initial table ready", "table", c.table, "columns", len(columns))
	return nil
}
