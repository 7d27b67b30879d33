package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sagarc03/userload/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "userload",
	Short:   "Load random users into PostgreSQL",
	Long: `userload fetches random user records, flattens and transforms them, and
appends them to a table in PostgreSQL. Missing databases and tables are
created on the fly.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var files []string
		if path, _ := cmd.Flags().GetString("config"); path != "" {
			files = append(files, path)
		}

		cfg, err := config.Load(files, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("db-host", "", "database host (default: localhost, env: USERLOAD_DATABASE_HOST)")
	rootCmd.PersistentFlags().Int("db-port", 0, "database port (default: 5432, env: USERLOAD_DATABASE_PORT)")
	rootCmd.PersistentFlags().String("db-user", "", "database user (default: postgres, env: USERLOAD_DATABASE_USER)")
	rootCmd.PersistentFlags().String("table", "", "target table (default: data_table, env: USERLOAD_DATABASE_TABLE)")
	rootCmd.PersistentFlags().String("state", "", "state file path (default: state.json, env: USERLOAD_STATE_PATH)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env: USERLOAD_LOG_LEVEL)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
