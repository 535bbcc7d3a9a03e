// Package config provides application-wide configuration loaded from env vars.
// All fields have safe defaults so the binary runs locally without any env
// setup; the provider API keys default to empty and simply leave that
// provider unconfigured. JWT settings (JWT_SECRET, JWT_EXPIRY_HOURS) are read
// directly by pkg/auth and are deliberately not duplicated here.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds runtime configuration for Lexa.
type Config struct {
	// Server
	Addr   string // LEXA_ADDR — default: ":8080"
	DBPath string // LEXA_DB_PATH — default: "lexa.db"

	// Providers
	OpenAIKey    string // OPENAI_API_KEY
	GeminiKey    string // GEMINI_API_KEY
	MistralKey   string // MISTRAL_API_KEY
	OpenAIModel  string // OPENAI_MODEL — default: "gpt-3.5-turbo"
	GeminiModel  string // GEMINI_MODEL — default: "gemini-1.5-flash"
	MistralModel string // MISTRAL_MODEL — default: "mistral-tiny"

	// LLM call behavior
	LLMTimeout    time.Duration // LLM_TIMEOUT_SECONDS — default: 30s
	LLMRatePerSec float64       // LLM_RATE_PER_SECOND — default: 0 (unlimited)
}

const (
	envKeyAddr          = "LEXA_ADDR"
	envKeyDBPath        = "LEXA_DB_PATH"
	envKeyOpenAIKey     = "OPENAI_API_KEY"
	envKeyGeminiKey     = "GEMINI_API_KEY"
	envKeyMistralKey    = "MISTRAL_API_KEY"
	envKeyOpenAIModel   = "OPENAI_MODEL"
	envKeyGeminiModel   = "GEMINI_MODEL"
	envKeyMistralModel  = "MISTRAL_MODEL"
	envKeyLLMTimeout    = "LLM_TIMEOUT_SECONDS"
	envKeyLLMRatePerSec = "LLM_RATE_PER_SECOND"
)

// Load reads configuration from environment variables, applying defaults for missing values.
func Load() Config {
	return Config{
		Addr:          envOr(envKeyAddr, ":8080"),
		DBPath:        envOr(envKeyDBPath, "lexa.db"),
		OpenAIKey:     os.Getenv(envKeyOpenAIKey),
		GeminiKey:     os.Getenv(envKeyGeminiKey),
		MistralKey:    os.Getenv(envKeyMistralKey),
		OpenAIModel:   envOr(envKeyOpenAIModel, "gpt-3.5-turbo"),
		GeminiModel:   envOr(envKeyGeminiModel, "gemini-1.5-flash"),
		MistralModel:  envOr(envKeyMistralModel, "mistral-tiny"),
		LLMTimeout:    time.Duration(envIntOr(envKeyLLMTimeout, 30)) * time.Second,
		LLMRatePerSec: envFloatOr(envKeyLLMRatePerSec, 0),
	}
}

// ProviderKeys returns the process-wide API keys by provider name.
// Unconfigured providers map to the empty string.
func (c Config) ProviderKeys() map[string]string {
	return map[string]string{
		"openai":  c.OpenAIKey,
		"gemini":  c.GeminiKey,
		"mistral": c.MistralKey,
	}
}

// ProviderModels returns the model override per provider name.
func (c Config) ProviderModels() map[string]string {
	return map[string]string{
		"openai":  c.OpenAIModel,
		"gemini":  c.GeminiModel,
		"mistral": c.MistralModel,
	}
}

// envOr returns the value of the environment variable key, or fallback if not set.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envIntOr parses key as an integer, falling back on absence or parse failure.
func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// envFloatOr parses key as a float64, falling back on absence or parse failure.
func envFloatOr(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
