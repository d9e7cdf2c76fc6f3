package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abdulachik/whatif/internal/config"
	"github.com/abdulachik/whatif/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the simulation store",
	Long: `Apply pending migrations to the sqlite store holding simulations and
chapters, then report the schema version and how many simulations it holds.`,
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	slog.Info("connecting to database", "path", cfg.DatabasePath)
	store, err := db.NewStore(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer store.Close()

	before, err := store.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	after, err := store.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	sessions, err := store.CountSessions(ctx)
	if err != nil {
		return err
	}

	if before == after {
		slog.Info("simulation store already current", "schema", after, "simulations", sessions)
	} else {
		slog.Info("simulation store upgraded", "from", before, "to", after, "simulations", sessions)
	}
	return nil
}
