package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abdulachik/whatif/internal/config"
	"github.com/abdulachik/whatif/internal/llm"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List candidate models",
	Long: `List the candidate models tried for every API key, in order. With --remote,
ask Gemini which models each configured key can actually use.`,
	RunE: runModels,
}

var modelsRemote bool

func init() {
	modelsCmd.Flags().BoolVar(&modelsRemote, "remote", false, "query the provider for the models each key can use (gemini only)")
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fmt.Printf("Candidate models for %s:\n", cfg.Provider)
	for i, m := range llm.ModelCandidates(cfg.Provider) {
		fmt.Printf("  %d. %s\n", i+1, m)
	}

	if !modelsRemote {
		return nil
	}
	if cfg.Provider != llm.ProviderGemini {
		return fmt.Errorf("--remote is only supported for gemini, not %s", cfg.Provider)
	}
	if err := cfg.ValidateForGeneration(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	for _, key := range cfg.Credentials {
		masked := llm.MaskCredential(key)
		fmt.Printf("\nKey %s:\n", masked)

		client, err := llm.NewGeminiClient(llm.GeminiConfig{
			APIKey:  key,
			Model:   llm.ModelCandidates(llm.ProviderGemini)[0],
			BaseURL: cfg.BaseURL,
		})
		if err != nil {
			return fmt.Errorf("create client: %w", err)
		}

		models, err := client.ListModels(ctx)
		if err != nil {
			slog.Warn("failed to list models", "credential", masked, "outcome", llm.Classify(err), "error", err)
			fmt.Printf("  error: %v\n", err)
			continue
		}
		for _, m := range models {
			fmt.Printf("  %s\n", m)
		}
	}
	return nil
}
