package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/sagarc03/userload"
	"github.com/sagarc03/userload/database/postgres"
	"github.com/sagarc03/userload/dataset"
)

// Config holds what is needed to reach the server and the table to load.
type Config struct {
	// Credentials for the server. Database is ignored: the working database
	// is resolved by Resolve.
	Credentials userload.Credentials
	// Table is the name of the table rows are loaded into
	Table string
}

func (c Config) table() string {
	if c.Table == "" {
		return userload.DefaultTable
	}
	return c.Table
}

// Resolve connects to the administrative database and resolves the working
// database from lastActive, creating it when needed. Pass postgres.WithSample
// so a newly created database gets its initial table.
func Resolve(ctx context.Context, cfg Config, lastActive string, opts ...postgres.Option) (name string, err error) {
	opts = append(opts, postgres.WithTable(cfg.table()))

	admin, err := postgres.Open(ctx, cfg.Credentials.Admin(), opts...)
	if err != nil {
		return "", fmt.Errorf("resolve database: %w", err)
	}
	defer func() {
		err = errors.Join(err, admin.Close())
	}()

	name, err = admin.Initialize(ctx, lastActive)
	if err != nil {
		return "", fmt.Errorf("resolve database: %w", err)
	}

	return name, nil
}

// Load opens the database called name, makes sure the table exists with the
// columns of ds and appends every row of ds to it.
func Load(ctx context.Context, cfg Config, name string, ds *dataset.Dataset, opts ...postgres.Option) (err error) {
	if ds == nil {
		return fmt.Errorf("load: %w: nil dataset", userload.ErrInvalidInput)
	}

	opts = append(opts, postgres.WithTable(cfg.table()), postgres.WithSample(ds))

	c, err := postgres.Open(ctx, cfg.Credentials.WithDatabase(name), opts...)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	defer func() {
		err = errors.Join(err, c.Close())
	}()

	if err = c.CreateInitialTable(ctx, ds.Columns()); err != nil {
		return fmt.Errorf("load: %w", err)
	}

	if err = c.BulkInsert(ctx, c.Table(), ds); err != nil {
		return fmt.Errorf("load: %w", err)
	}

	return nil
}
