package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/abdulachik/whatif/internal/api"
	"github.com/abdulachik/whatif/internal/app"
	"github.com/abdulachik/whatif/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API: stateless story actions, stored simulations, model
health and Prometheus metrics.`,
	RunE: runServe,
}

const shutdownTimeout = 10 * time.Second

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.ValidateForServe(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	if len(cfg.Credentials) == 0 {
		slog.Warn("no API keys configured, generation requests will fail", "provider", cfg.Provider)
	}

	slog.Info("connecting to database", "path", cfg.DatabasePath)
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	handler := api.NewHandler(api.Config{
		Narrator:    a.Generator,
		Simulations: a.Simulations,
		Health:      a.Health,
		Gatherer:    a.Registry,
		Logger:      slog.Default().With("component", "api"),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("starting whatif server",
		"addr", cfg.HTTPAddr,
		"provider", cfg.Provider,
		"api_keys", len(cfg.Credentials),
		"models", a.Orchestrator.Models(),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("received shutdown signal")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	}

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
