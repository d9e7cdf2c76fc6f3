package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdulachik/whatif/internal/config"
	"github.com/abdulachik/whatif/internal/db"
	"github.com/abdulachik/whatif/internal/llm"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database and configuration statistics",
	Long:  `Display statistics about stored simulations and the configured model pool.`,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	store, err := db.NewStore(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer store.Close()

	// Ensure migrations are run
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	stats, err := store.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	fmt.Println("=== whatif Statistics ===")
	fmt.Println()
	fmt.Printf("Database: %s\n", cfg.DatabasePath)
	fmt.Println()
	fmt.Println("Simulations:")
	fmt.Printf("  Total: %d\n", stats.Sessions)
	fmt.Printf("  Finished: %d\n", stats.FinishedSessions)
	fmt.Printf("  In progress: %d\n", stats.Sessions-stats.FinishedSessions)
	fmt.Printf("  Chapters written: %d\n", stats.Chapters)
	fmt.Println()
	fmt.Println("Generation:")
	fmt.Printf("  Provider: %s\n", cfg.Provider)
	fmt.Printf("  API keys: %d\n", len(cfg.Credentials))
	fmt.Printf("  Attempt timeout: %s\n", cfg.AttemptTimeout)
	if cfg.CallBudget > 0 {
		fmt.Printf("  Call budget: %s\n", cfg.CallBudget)
	}
	fmt.Println("  Models:")
	for _, m := range llm.ModelCandidates(cfg.Provider) {
		fmt.Printf("    %s\n", m)
	}
	fmt.Println()

	return nil
}
