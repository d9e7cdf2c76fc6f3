package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Config configures an Orchestrator.
type Config struct {
	Provider    Provider
	Credentials CredentialSource
	// Models is tried in order for every credential. Defaults to the
	// provider's compiled-in candidate list.
	Models  []string
	Factory Factory

	// Shuffle reorders the credentials at the start of every call.
	// Defaults to a uniform Fisher-Yates permutation.
	Shuffle func([]string) []string

	Logger  *slog.Logger
	Metrics *Metrics
	Health  *Health

	// Budget bounds the whole call, AttemptTimeout each attempt.
	// Zero means unbounded.
	Budget         time.Duration
	AttemptTimeout time.Duration
}

// Orchestrator turns a pool of credentials and models into one reliable
// completion call. It holds no per-call state and is safe for concurrent use.
type Orchestrator struct {
	cfg Config
}

// New creates an orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Factory == nil {
		return nil, errors.New("orchestrator: factory is required")
	}
	if cfg.Credentials == nil {
		return nil, errors.New("orchestrator: credential source is required")
	}
	if len(cfg.Models) == 0 {
		cfg.Models = ModelCandidates(cfg.Provider)
	}
	if len(cfg.Models) == 0 {
		return nil, fmt.Errorf("orchestrator: no candidate models for provider %q", cfg.Provider)
	}
	if cfg.Shuffle == nil {
		cfg.Shuffle = func(s []string) []string { return ShuffledCopy(s, nil) }
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	models := make([]string, len(cfg.Models))
	copy(models, cfg.Models)
	cfg.Models = models

	return &Orchestrator{cfg: cfg}, nil
}

// Provider returns the provider the orchestrator talks to.
func (o *Orchestrator) Provider() Provider { return o.cfg.Provider }

// Models returns a copy of the candidate model list.
func (o *Orchestrator) Models() []string {
	out := make([]string, len(o.cfg.Models))
	copy(out, o.cfg.Models)
	return out
}

// Complete returns the first non-empty raw text any credential/model pair
// produces.
func (o *Orchestrator) Complete(ctx context.Context, req Request) (string, error) {
	return Run(ctx, o, req, func(raw string) (string, error) {
		if raw == "" {
			return "", &MalformedResponseError{Raw: raw, Reason: "empty response"}
		}
		return raw, nil
	})
}

// Run walks credentials (outer, shuffled per call) and models (inner, fixed
// order) until decode accepts a response. Every failure is classified,
// recorded and skipped. When the pool is exhausted, or ctx ends, the
// returned *ExhaustedError wraps the last attempt's error.
func Run[T any](ctx context.Context, o *Orchestrator, req Request, decode func(raw string) (T, error)) (T, error) {
	var zero T
	cfg := o.cfg

	creds := cfg.Shuffle(cfg.Credentials.Credentials())
	if len(creds) == 0 {
		cfg.Metrics.observeCall("no_credentials")
		return zero, ErrNoCredentials
	}

	if req.Params == (GenerationParams{}) {
		req.Params = DefaultParams()
	}
	if cfg.Budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Budget)
		defer cancel()
	}

	log := cfg.Logger.With("provider", cfg.Provider, "format", req.Format)
	exhausted := &ExhaustedError{}

	for _, cred := range creds {
		masked := MaskCredential(cred)
		for _, model := range cfg.Models {
			if err := ctx.Err(); err != nil {
				exhausted.Interrupted = err
				log.Warn("orchestration interrupted", "attempts", exhausted.Attempts, "error", err)
				cfg.Metrics.observeCall("interrupted")
				return zero, exhausted
			}

			exhausted.Attempts++
			log.Debug("attempt", "credential", masked, "model", model, "attempt", exhausted.Attempts)

			start := time.Now()
			out, err := attempt(ctx, cfg, cred, model, req, decode)
			outcome := Classify(err)

			cfg.Metrics.observeAttempt(cfg.Provider, model, outcome, time.Since(start))
			// A call that was cancelled or ran out of budget says nothing
			// about the model.
			if cfg.Health != nil && (err == nil || ctx.Err() == nil) {
				cfg.Health.Record(HealthKey(cfg.Provider, model), outcome, err)
			}

			if err == nil {
				log.Info("completion succeeded",
					"credential", masked,
					"model", model,
					"attempts", exhausted.Attempts,
					"duration", time.Since(start).Round(time.Millisecond),
				)
				cfg.Metrics.observeCall("success")
				return out, nil
			}

			exhausted.Last = &AttemptError{Credential: masked, Model: model, Outcome: outcome, Err: err}
			log.Warn("attempt failed",
				"credential", masked,
				"model", model,
				"outcome", outcome,
				"error", err,
			)
		}
	}

	log.Error("all credential/model pairs failed", "attempts", exhausted.Attempts)
	cfg.Metrics.observeCall("exhausted")
	return zero, exhausted
}

func attempt[T any](ctx context.Context, cfg Config, cred, model string, req Request, decode func(string) (T, error)) (T, error) {
	var zero T

	if cfg.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.AttemptTimeout)
		defer cancel()
	}

	client, err := cfg.Factory(cred, model)
	if err != nil {
		return zero, fmt.Errorf("create client: %w", err)
	}

	raw, err := client.Complete(ctx, req)
	if err != nil {
		return zero, err
	}

	out, err := decode(raw)
	if err != nil {
		var malformed *MalformedResponseError
		if !errors.As(err, &malformed) {
			err = &MalformedResponseError{Raw: raw, Reason: "decode", Err: err}
		}
		return zero, err
	}
	return out, nil
}
