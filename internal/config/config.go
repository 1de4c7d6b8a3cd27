package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const DefaultEndpoint = "http://127.0.0.1:5000/check_symptoms"

type Config struct {
	Port          string
	AllowedOrigin string
	// Endpoint the form controller posts symptom queries to
	CheckEndpoint string
	CheckTimeout  time.Duration
	// LLM engine
	Provider     string
	GeminiAPIKey string
	GeminiModel  string
	OpenAIAPIKey string
	OpenAIModel  string
	// Optional YAML prompt override; empty uses the built-in prompt
	PromptFile   string
	// Logging
	LogLevel  string
	LogFormat string
	// Idle lifetime of a browser session's form state
	SessionTTL time.Duration
}

func Load() Config {
	_ = godotenv.Load()
	port := getEnvDefault("PORT", "5000")
	cfg := Config{
		Port:          port,
		AllowedOrigin: getEnvDefault("ALLOWED_ORIGIN", "*"),
		CheckEndpoint: getEnvDefault("CHECK_ENDPOINT", "http://127.0.0.1:"+port+"/check_symptoms"),
		CheckTimeout:  getEnvDurationDefault("CHECK_TIMEOUT", 0),
		Provider:      strings.ToLower(getEnvDefault("LLM_PROVIDER", "gemini")),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   getEnvDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getEnvDefault("OPENAI_MODEL", "gpt-4o-mini"),
		PromptFile:    os.Getenv("PROMPT_FILE"),
		LogLevel:      getEnvDefault("LOG_LEVEL", "info"),
		LogFormat:     getEnvDefault("LOG_FORMAT", "json"),
		SessionTTL:    getEnvDurationDefault("SESSION_TTL", 15*time.Minute),
	}
	switch cfg.Provider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			log.Println("warning: GEMINI_API_KEY is not set; /check_symptoms will answer with the setup error payload")
		}
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			log.Println("warning: OPENAI_API_KEY is not set; /check_symptoms will answer with the setup error payload")
		}
	}
	return cfg
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvDurationDefault(key string, def time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			return d
		}
		log.Printf("warning: invalid duration %q for %s, using %s", v, key, def)
	}
	return def
}
