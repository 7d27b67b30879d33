package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sagarc03/userload"
)

const maxDefaultAttempts = 1000

// ErrNoFreeDatabase is returned when every default database name is taken.
var ErrNoFreeDatabase = errors.New("no free default database name")

// Initialize resolves the database to work in, creating it when needed, and
// returns its name. The controller must be connected to the server, usually
// through the administrative database.
//
// A lastActive database that exists is resumed. A missing one is created.
// When lastActive is empty, or its creation fails, the first free name among
// default_db0, default_db1, ... is created instead.
func (c *Controller) Initialize(ctx context.Context, lastActive string) (string, error) {
	const op = "initialize"

	db, err := c.conn(op)
	if err != nil {
		return "", err
	}

	name := strings.ToLower(strings.TrimSpace(lastActive))
	if name != "" {
		exists, err := databaseExists(ctx, db, name)
		switch {
		case err != nil:
			c.logger.Warn("catalog query failed, using a default database", "name", name, "err", err)
		case exists:
			c.logger.Info("resuming last active database", "name", name)
			return name, nil
		default:
			err := c.createDatabase(ctx, db, name)
			if err == nil {
				return name, nil
			}
			c.logger.Warn("cannot create last active database, using a default database", "name", name, "err", err)
		}
	}

	return c.createDefaultDatabase(ctx)
}

func (c *Controller) createDefaultDatabase(ctx context.Context) (string, error) {
	const op = "create default database"

	db, err := c.conn(op)
	if err != nil {
		return "", err
	}

	for i := range maxDefaultAttempts {
		name := userload.DefaultDatabaseName(i)

		exists, err := databaseExists(ctx, db, name)
		if err != nil {
			c.logger.Warn("catalog query failed while probing", "name", name, "err", err)
		}
		if exists {
			continue
		}

		err = c.createDatabase(ctx, db, name)
		if err == nil {
			c.logger.Info("default database created", "name", name)
			return name, nil
		}
		if IsDuplicateDatabase(err) {
			continue
		}
		return "", err
	}

	return "", userload.NewError(userload.KindDatabaseCreation, op,
		fmt.Errorf("%w: tried %d names", ErrNoFreeDatabase, maxDefaultAttempts))
}
