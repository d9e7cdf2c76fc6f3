package app

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/abdulachik/whatif/internal/config"
	"github.com/abdulachik/whatif/internal/db"
	"github.com/abdulachik/whatif/internal/llm"
	"github.com/abdulachik/whatif/internal/simulation"
	"github.com/abdulachik/whatif/internal/story"
)

// App is the main application container holding all dependencies.
type App struct {
	Config       *config.Config
	Store        *db.Store
	Orchestrator *llm.Orchestrator
	Generator    *story.Generator
	Simulations  *simulation.Manager
	Health       *llm.Health
	Registry     *prometheus.Registry
}

// New creates a new application instance with all dependencies wired up.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Create database connection
	store, err := db.NewStore(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}

	factory, err := llm.NewFactory(cfg.Provider, llm.ClientOptions{BaseURL: cfg.BaseURL})
	if err != nil {
		store.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	health := llm.NewHealth()

	orch, err := llm.New(llm.Config{
		Provider:       cfg.Provider,
		Credentials:    llm.StaticCredentials(cfg.Credentials),
		Factory:        factory,
		Logger:         slog.Default().With("component", "llm"),
		Metrics:        llm.NewMetrics(registry),
		Health:         health,
		Budget:         cfg.CallBudget,
		AttemptTimeout: cfg.AttemptTimeout,
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	gen := story.NewGenerator(orch, slog.Default().With("component", "story"))

	return &App{
		Config:       cfg,
		Store:        store,
		Orchestrator: orch,
		Generator:    gen,
		Simulations:  simulation.NewManager(gen, store, slog.Default().With("component", "simulation")),
		Health:       health,
		Registry:     registry,
	}, nil
}

// Close closes all resources.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
