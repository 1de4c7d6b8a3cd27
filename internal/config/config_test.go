package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "CHECK_ENDPOINT", "CHECK_TIMEOUT", "LLM_PROVIDER", "SESSION_TTL", "GEMINI_API_KEY"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, DefaultEndpoint, cfg.CheckEndpoint)
	assert.Equal(t, time.Duration(0), cfg.CheckTimeout)
	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, 15*time.Minute, cfg.SessionTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Run("endpoint follows port", func(t *testing.T) {
		t.Setenv("PORT", "8081")
		t.Setenv("CHECK_ENDPOINT", "")

		cfg := Load()

		assert.Equal(t, "http://127.0.0.1:8081/check_symptoms", cfg.CheckEndpoint)
	})

	t.Run("explicit endpoint wins", func(t *testing.T) {
		t.Setenv("CHECK_ENDPOINT", "https://triage.example.com/check_symptoms")

		cfg := Load()

		assert.Equal(t, "https://triage.example.com/check_symptoms", cfg.CheckEndpoint)
	})

	t.Run("provider is lowercased", func(t *testing.T) {
		t.Setenv("LLM_PROVIDER", "OpenAI")

		assert.Equal(t, "openai", Load().Provider)
	})

	t.Run("durations", func(t *testing.T) {
		t.Setenv("CHECK_TIMEOUT", "30s")
		t.Setenv("SESSION_TTL", "not-a-duration")

		cfg := Load()

		assert.Equal(t, 30*time.Second, cfg.CheckTimeout)
		assert.Equal(t, 15*time.Minute, cfg.SessionTTL)
	})
}
