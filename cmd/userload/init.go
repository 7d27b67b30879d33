package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sagarc03/userload/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Resolve the working database without loading users",
	Long: `Resolve the database the next load will write to and record it in the
state file. The last active database is reused when it exists and created
when it is gone. Without a usable state file the first free default_dbN
database is created.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	name, err := resolveDatabase(ctx, cfg, slog.Default())
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), name)
	return err
}
