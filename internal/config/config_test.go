package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulachik/whatif/internal/llm"
)

func TestLoad(t *testing.T) {
	// Save original env and restore after test
	origEnv := os.Environ()
	t.Cleanup(func() {
		os.Clearenv()
		for _, e := range origEnv {
			for i := 0; i < len(e); i++ {
				if e[i] == '=' {
					os.Setenv(e[:i], e[i+1:])
					break
				}
			}
		}
	})

	t.Run("defaults", func(t *testing.T) {
		os.Clearenv()
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "data/whatif.db", cfg.DatabasePath)
		assert.Equal(t, llm.ProviderGemini, cfg.Provider)
		assert.Empty(t, cfg.Credentials)
		assert.Equal(t, "", cfg.BaseURL)
		assert.Equal(t, 60*time.Second, cfg.AttemptTimeout)
		assert.Equal(t, time.Duration(0), cfg.CallBudget)
		assert.Equal(t, ":8080", cfg.HTTPAddr)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("collects numbered credentials", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("GEMINI_API_KEY", "primary")
		os.Setenv("GEMINI_API_KEY_2", "second")
		os.Setenv("GEMINI_API_KEY_1", "first")
		os.Setenv("OPENAI_API_KEY", "ignored")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, []string{"primary", "first", "second"}, cfg.Credentials)
	})

	t.Run("custom values", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("DATABASE_PATH", "/custom/path.db")
		os.Setenv("LLM_PROVIDER", "openai")
		os.Setenv("OPENAI_API_KEY", "sk-test")
		os.Setenv("OPENAI_BASE_URL", "http://localhost:9999/v1")
		os.Setenv("ATTEMPT_TIMEOUT", "15s")
		os.Setenv("CALL_BUDGET", "2m")
		os.Setenv("HTTP_ADDR", ":9090")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "/custom/path.db", cfg.DatabasePath)
		assert.Equal(t, llm.ProviderOpenAI, cfg.Provider)
		assert.Equal(t, []string{"sk-test"}, cfg.Credentials)
		assert.Equal(t, "http://localhost:9999/v1", cfg.BaseURL)
		assert.Equal(t, 15*time.Second, cfg.AttemptTimeout)
		assert.Equal(t, 2*time.Minute, cfg.CallBudget)
		assert.Equal(t, ":9090", cfg.HTTPAddr)
	})

	t.Run("invalid provider", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("LLM_PROVIDER", "cohere")

		_, err := Load()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "LLM_PROVIDER")
	})

	t.Run("invalid duration", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("CALL_BUDGET", "invalid")

		_, err := Load()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "CALL_BUDGET")
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cfg := &Config{DatabasePath: "test.db"}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("missing database path", func(t *testing.T) {
		cfg := &Config{}
		assert.Error(t, cfg.Validate())
	})

	t.Run("negative budget", func(t *testing.T) {
		cfg := &Config{DatabasePath: "test.db", CallBudget: -time.Second}
		assert.Error(t, cfg.Validate())
	})
}

func TestConfig_ValidateForGeneration(t *testing.T) {
	t.Run("requires credentials", func(t *testing.T) {
		cfg := &Config{DatabasePath: "test.db", Provider: llm.ProviderGemini}
		err := cfg.ValidateForGeneration()
		assert.ErrorIs(t, err, llm.ErrNoCredentials)
		assert.Contains(t, err.Error(), "GEMINI_API_KEY")
	})

	t.Run("valid", func(t *testing.T) {
		cfg := &Config{DatabasePath: "test.db", Provider: llm.ProviderGemini, Credentials: []string{"k"}}
		assert.NoError(t, cfg.ValidateForGeneration())
	})
}

func TestConfig_ValidateForServe(t *testing.T) {
	cfg := &Config{DatabasePath: "test.db", HTTPAddr: ":8080"}
	assert.NoError(t, cfg.ValidateForServe())

	cfg.HTTPAddr = ""
	assert.Error(t, cfg.ValidateForServe())
}
