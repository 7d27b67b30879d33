// Package postgres implements the database bootstrap controller for PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sagarc03/userload"
	"github.com/sagarc03/userload/dataset"
)

// State is the lifecycle position of a Controller.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateBootstrapping
	StateConnected
	StateClosed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateBootstrapping:
		return "bootstrapping side connection"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Controller owns one connection to one database and performs the bootstrap
// and load operations against it. It is not safe for concurrent use.
type Controller struct {
	creds  userload.Credentials
	db     *sql.DB
	state  State
	table  string
	sample *dataset.Dataset
	open   Opener
	logger *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSample sets the dataset whose columns shape the initial table of any
// database the controller creates.
func WithSample(ds *dataset.Dataset) Option {
	return func(c *Controller) {
		c.sample = ds
	}
}

// WithTable sets the table created by CreateInitialTable.
func WithTable(table string) Option {
	return func(c *Controller) {
		c.table = table
	}
}

// WithOpener replaces the function used to open connections.
func WithOpener(open Opener) Option {
	return func(c *Controller) {
		if open != nil {
			c.open = open
		}
	}
}

// New returns a disconnected controller for the database named in creds.
// The database name is lowercased.
func New(creds userload.Credentials, opts ...Option) (*Controller, error) {
	creds.Database = strings.ToLower(creds.Database)

	c := &Controller{
		creds:  creds,
		state:  StateDisconnected,
		table:  userload.DefaultTable,
		open:   OpenDB,
		logger: slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := creds.Validate(); err != nil {
		return nil, userload.NewError(userload.KindConnection, "new controller",
			fmt.Errorf("%w: %w", userload.ErrInvalidInput, err))
	}

	if !userload.IsValidIdentifier(c.table) {
		return nil, userload.NewError(userload.KindConnection, "new controller",
			fmt.Errorf("%w: invalid table name: %s", userload.ErrInvalidInput, c.table))
	}

	c.logger = c.logger.With(slog.String("database", creds.Database))
	return c, nil
}

// Open creates a controller and connects it, bootstrapping the database if it
// does not exist yet.
func Open(ctx context.Context, creds userload.Credentials, opts ...Option) (*Controller, error) {
	c, err := New(creds, opts...)
	if err != nil {
		return nil, err
	}

	if err := c.Connect(ctx); err != nil {
		return nil, err
	}

	return c, nil
}

// Connect opens the connection to the controller's database.
//
// When the direct connection fails, a side connection to the administrative
// database checks the catalog. A database that exists means a genuine
// connectivity problem and Connect fails. A missing database is created,
// together with its initial table, and the direct connection is retried once.
// A controller whose bootstrap failed stays failed.
func (c *Controller) Connect(ctx context.Context) error {
	const op = "connect"

	switch c.state {
	case StateConnected:
		return nil
	case StateClosed, StateFailed:
		return userload.NewError(userload.KindConnection, op,
			fmt.Errorf("%w: controller is %s", userload.ErrNotConnected, c.state))
	}

	c.state = StateConnecting
	db, err := c.open(ctx, c.creds)
	if err == nil {
		c.connected(db)
		return nil
	}

	c.logger.Warn("cannot connect to database, checking catalog", "err", err)

	c.state = StateBootstrapping
	if err := c.bootstrap(ctx, err); err != nil {
		c.state = StateFailed
		return err
	}

	c.state = StateConnecting
	db, err = c.open(ctx, c.creds)
	if err != nil {
		c.state = StateFailed
		c.logger.Error("cannot connect to database after bootstrap", "err", err)
		return userload.NewError(userload.KindConnection, op, err)
	}

	c.connected(db)
	return nil
}

func (c *Controller) connected(db *sql.DB) {
	c.db = db
	c.state = StateConnected
	c.logger.Info("connected to database")
}

func (c *Controller) bootstrap(ctx context.Context, cause error) error {
	name := c.creds.Database

	return withSideConnection(ctx, c.open, c.creds.Admin(), func(side *sql.DB) error {
		exists, err := databaseExists(ctx, side, name)
		if err != nil {
			c.logger.Warn("catalog query failed during bootstrap", "err", err)
		}

		if exists {
			c.logger.Error("database exists but connection failed", "err", cause)
			return userload.NewError(userload.KindConnection, "connect",
				fmt.Errorf("database %s exists but connection failed: %w", name, cause))
		}

		return c.createDatabase(ctx, side, name)
	})
}

// Close releases the connection. Closing twice is a no-op.
func (c *Controller) Close() error {
	if c.state == StateClosed {
		return nil
	}
	c.state = StateClosed

	if c.db == nil {
		return nil
	}

	db := c.db
	c.db = nil
	if err := db.Close(); err != nil {
		c.logger.Error("could not close the connection", "err", err)
		return userload.NewError(userload.KindConnection, "close", err)
	}

	return nil
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	return c.state
}

// Database returns the name of the database the controller targets.
func (c *Controller) Database() string {
	return c.creds.Database
}

// Table returns the name of the table created by CreateInitialTable.
func (c *Controller) Table() string {
	return c.table
}

func (c *Controller) conn(op string) (*sql.DB, error) {
	if c.state != StateConnected || c.db == nil {
		return nil, userload.NewError(userload.KindConnection, op,
			fmt.Errorf("%w: controller is %s", userload.ErrNotConnected, c.state))
	}
	return c.db, nil
}
