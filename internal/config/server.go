package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Chat reply providers understood by the development server
const (
	ProviderEcho   = "echo"
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// ServerConfig configures `geminichat serve`.
type ServerConfig struct {
	Addr            string
	AllowedOrigin   string
	Provider        string
	GeminiAPIKey    string
	GeminiModel     string
	OpenAIAPIKey    string
	OpenAIModel     string
	ProviderTimeout time.Duration
	Debug           bool
}

// LoadServerConfig reads the server configuration from the environment,
// loading a .env file from the working directory first when present.
func LoadServerConfig() ServerConfig {
	_ = godotenv.Load()

	addr := getEnvDefault("GEMINICHAT_ADDR", ":8080")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("GEMINICHAT_ADDR") == "" {
		addr = ":" + port
	}

	cfg := ServerConfig{
		Addr:            addr,
		AllowedOrigin:   getEnvDefault("ALLOWED_ORIGIN", "*"),
		Provider:        strings.ToLower(getEnvDefault("CHAT_PROVIDER", ProviderEcho)),
		GeminiAPIKey:    firstNonEmpty(os.Getenv("GEMINI_API_KEY"), os.Getenv("GOOGLE_API_KEY")),
		GeminiModel:     getEnvDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:     getEnvDefault("OPENAI_MODEL", "gpt-4o-mini"),
		ProviderTimeout: time.Duration(getEnvIntDefault("PROVIDER_TIMEOUT_SECONDS", 60)) * time.Second,
		Debug:           getEnvBoolDefault("GEMINICHAT_DEBUG", false),
	}

	return cfg
}

// Warnings lists settings that let the server start but will make chat
// requests fail. A gemini provider without a key is not listed here:
// it refuses to start instead.
func (c ServerConfig) Warnings() []string {
	var warnings []string
	if c.Provider == ProviderOpenAI && c.OpenAIAPIKey == "" {
		warnings = append(warnings, "OPENAI_API_KEY is not set; chat requests will fail until provided")
	}
	return warnings
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvIntDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func getEnvBoolDefault(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
