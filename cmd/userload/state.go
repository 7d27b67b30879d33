package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sagarc03/userload/config"
	"github.com/sagarc03/userload/database"
	"github.com/sagarc03/userload/database/postgres"
)

// resolveDatabase picks the working database from the state file, creating it
// when needed, and records the choice for the next run.
func resolveDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...postgres.Option) (string, error) {
	st, err := config.LoadState(cfg.State.Path)
	if err != nil {
		logger.Warn("cannot read state, using a default database", "path", cfg.State.Path, "err", err)
	}

	opts = append(opts, postgres.WithLogger(logger))
	name, err := database.Resolve(ctx, cfg.DatabaseSettings(), st.LastActiveDB, opts...)
	if err != nil {
		return "", err
	}

	if err := config.SaveState(cfg.State.Path, name); err != nil {
		return "", fmt.Errorf("resolve database: %w", err)
	}

	logger.Info("working database resolved", "database", name, "previous", st.LastActiveDB)
	return name, nil
}
