package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver

	"github.com/sagarc03/userload"
)

// Opener opens a verified connection to the database named in creds.
type Opener func(ctx context.Context, creds userload.Credentials) (*sql.DB, error)

// OpenDB opens a single-connection handle through the pgx driver and pings it.
// database/sql runs every statement outside a transaction in autocommit mode.
func OpenDB(ctx context.Context, creds userload.Credentials) (*sql.DB, error) {
	db, err := sql.Open("pgx", creds.DSN())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres %s: %w", creds.Database, err)
	}

	return db, nil
}

// withSideConnection opens a short-lived connection, hands it to fn and always
// closes it afterwards.
func withSideConnection(ctx context.Context, open Opener, creds userload.Credentials, fn func(*sql.DB) error) error {
	db, err := open(ctx, creds)
	if err != nil {
		return userload.NewError(userload.KindConnection, "open side connection",
			fmt.Errorf("database %s: %w", creds.Database, err))
	}
	defer func() { _ = db.Close() }()

	return fn(db)
}
