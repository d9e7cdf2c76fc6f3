package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/abdulachik/whatif/internal/llm"
)

// Config holds all application configuration.
type Config struct {
	// Database
	DatabasePath string

	// Generation
	Provider       llm.Provider
	Credentials    []string // collected from <PROVIDER>_API_KEY and <PROVIDER>_API_KEY_<n>
	BaseURL        string   // endpoint override for the selected provider
	AttemptTimeout time.Duration
	CallBudget     time.Duration // 0 = unbounded

	// HTTP
	HTTPAddr string

	// Logging
	LogLevel string
}

var baseURLEnv = map[llm.Provider]string{
	llm.ProviderGemini:    "GEMINI_BASE_URL",
	llm.ProviderOpenAI:    "OPENAI_BASE_URL",
	llm.ProviderAnthropic: "ANTHROPIC_BASE_URL",
}

// Load reads configuration from environment variables.
// It automatically loads .env file if present.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	provider, err := llm.ParseProvider(getEnv("LLM_PROVIDER", string(llm.ProviderGemini)))
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %w", err)
	}

	cfg := &Config{
		DatabasePath: getEnv("DATABASE_PATH", "data/whatif.db"),
		Provider:     provider,
		Credentials:  llm.CredentialsFromEnviron(os.Environ(), llm.CredentialEnvPrefix(provider)),
		BaseURL:      getEnv(baseURLEnv[provider], ""),
		HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}

	cfg.AttemptTimeout, err = time.ParseDuration(getEnv("ATTEMPT_TIMEOUT", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTEMPT_TIMEOUT: %w", err)
	}

	cfg.CallBudget, err = time.ParseDuration(getEnv("CALL_BUDGET", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CALL_BUDGET: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.AttemptTimeout < 0 {
		return fmt.Errorf("ATTEMPT_TIMEOUT must not be negative")
	}
	if c.CallBudget < 0 {
		return fmt.Errorf("CALL_BUDGET must not be negative")
	}
	return nil
}

// ValidateForGeneration checks configuration needed to call the model.
func (c *Config) ValidateForGeneration() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if len(c.Credentials) == 0 {
		return fmt.Errorf("%s is required for generation: %w", llm.CredentialEnvPrefix(c.Provider), llm.ErrNoCredentials)
	}
	return nil
}

// ValidateForServe checks configuration needed for serve mode. Missing
// credentials are not fatal here; requests fail with a configuration error
// instead, so the health endpoint stays reachable.
func (c *Config) ValidateForServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR is required for serve")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
