package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sagarc03/userload/config"
	"github.com/sagarc03/userload/database"
	"github.com/sagarc03/userload/database/postgres"
	"github.com/sagarc03/userload/dataset"
	"github.com/sagarc03/userload/randomuser"
	"github.com/sagarc03/userload/transform"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Fetch random users and load them into PostgreSQL",
	Long: `Fetch users from the random user API and store them in the working
database. The pipeline:
  1. Fetches source.count users
  2. Flattens nested fields into dotted columns (login.password, dob.age)
  3. Hashes passwords, filters rows and renames columns as configured
  4. Optionally exports the result to CSV
  5. Resolves the working database and appends all rows in one transaction`,
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().Int("count", 0, "number of users to fetch (default: 100, env: USERLOAD_SOURCE_COUNT)")
	loadCmd.Flags().String("seed", "", "random user API seed for reproducible results (env: USERLOAD_SOURCE_SEED)")
	loadCmd.Flags().String("csv", "", "also write the users to this CSV file (env: USERLOAD_EXPORT_CSV)")
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	logger := slog.Default().With("run_id", uuid.NewString())

	ds, err := fetchUsers(ctx, cfg, logger)
	if err != nil {
		return err
	}

	ds, err = transform.Apply(ds, cfg.TransformOptions())
	if err != nil {
		return fmt.Errorf("transform: %w", err)
	}
	logger.Info("users transformed", "rows", ds.Len(), "columns", len(ds.Columns()))

	if cfg.Export.CSV != "" {
		if err := exportCSV(cfg.Export.CSV, ds); err != nil {
			return err
		}
		logger.Info("users exported", "path", cfg.Export.CSV)
	}

	name, err := resolveDatabase(ctx, cfg, logger, postgres.WithSample(ds))
	if err != nil {
		return err
	}

	if err := database.Load(ctx, cfg.DatabaseSettings(), name, ds, postgres.WithLogger(logger)); err != nil {
		return err
	}

	logger.Info("load complete", "database", name, "table", cfg.Database.Table, "rows", ds.Len())
	return nil
}

func fetchUsers(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*dataset.Dataset, error) {
	var opts []randomuser.Option
	if cfg.Source.Timeout > 0 {
		opts = append(opts, randomuser.WithTimeout(cfg.Source.Timeout))
	}

	client, err := randomuser.New(&cfg.Source.Config, opts...)
	if err != nil {
		return nil, fmt.Errorf("create source client: %w", err)
	}

	records, err := client.Generate(ctx, cfg.Source.Count)
	if err != nil {
		var apiErr *randomuser.APIError
		if errors.As(err, &apiErr) && apiErr.IsRateLimited() {
			logger.Warn("random user api rate limit reached", "count", cfg.Source.Count)
			return nil, fmt.Errorf("fetch users: rate limited, retry later or lower source.count: %w", err)
		}
		return nil, fmt.Errorf("fetch users: %w", err)
	}

	ds, err := dataset.FromJSON(records)
	if err != nil {
		return nil, fmt.Errorf("flatten users: %w", err)
	}

	logger.Info("users fetched", "rows", ds.Len(), "columns", len(ds.Columns()))
	return ds, nil
}

func exportCSV(path string, ds *dataset.Dataset) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export csv: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("export csv: %w", cerr)
		}
	}()

	if err := ds.WriteCSV(f); err != nil {
		return fmt.Errorf("export csv: %w", err)
	}
	return nil
}
