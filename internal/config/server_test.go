package config

import (
	"testing"
	"time"
)

func clearServerEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GEMINICHAT_ADDR", "PORT", "ALLOWED_ORIGIN", "CHAT_PROVIDER",
		"GEMINI_API_KEY", "GOOGLE_API_KEY", "GEMINI_MODEL",
		"OPENAI_API_KEY", "OPENAI_MODEL", "PROVIDER_TIMEOUT_SECONDS", "GEMINICHAT_DEBUG",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadServerConfig_Defaults(t *testing.T) {
	clearServerEnv(t)

	cfg := LoadServerConfig()

	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %s, want :8080", cfg.Addr)
	}
	if cfg.AllowedOrigin != "*" {
		t.Errorf("AllowedOrigin = %s, want *", cfg.AllowedOrigin)
	}
	if cfg.Provider != ProviderEcho {
		t.Errorf("Provider = %s, want echo", cfg.Provider)
	}
	if cfg.GeminiModel != "gemini-2.5-flash" {
		t.Errorf("GeminiModel = %s", cfg.GeminiModel)
	}
	if cfg.ProviderTimeout != 60*time.Second {
		t.Errorf("ProviderTimeout = %v", cfg.ProviderTimeout)
	}
	if cfg.Debug {
		t.Error("Debug should default to false")
	}
}

func TestLoadServerConfig_Env(t *testing.T) {
	clearServerEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("CHAT_PROVIDER", "Gemini")
	t.Setenv("GOOGLE_API_KEY", "key-from-google-var")
	t.Setenv("PROVIDER_TIMEOUT_SECONDS", "5")
	t.Setenv("GEMINICHAT_DEBUG", "true")

	cfg := LoadServerConfig()

	if cfg.Addr != ":9090" {
		t.Errorf("Addr = %s, want :9090", cfg.Addr)
	}
	if cfg.Provider != ProviderGemini {
		t.Errorf("Provider = %s, want gemini", cfg.Provider)
	}
	if cfg.GeminiAPIKey != "key-from-google-var" {
		t.Errorf("GeminiAPIKey = %s", cfg.GeminiAPIKey)
	}
	if cfg.ProviderTimeout != 5*time.Second {
		t.Errorf("ProviderTimeout = %v", cfg.ProviderTimeout)
	}
	if !cfg.Debug {
		t.Error("Debug should be true")
	}
}

func TestLoadServerConfig_AddrWinsOverPort(t *testing.T) {
	clearServerEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("GEMINICHAT_ADDR", "127.0.0.1:7000")

	if got := LoadServerConfig().Addr; got != "127.0.0.1:7000" {
		t.Errorf("Addr = %s, want 127.0.0.1:7000", got)
	}
}

func TestServerConfig_Warnings(t *testing.T) {
	tests := []struct {
		name string
		cfg  ServerConfig
		want int
	}{
		{name: "echo", cfg: ServerConfig{Provider: ProviderEcho}, want: 0},
		{name: "openai without key", cfg: ServerConfig{Provider: ProviderOpenAI}, want: 1},
		{name: "openai with key", cfg: ServerConfig{Provider: ProviderOpenAI, OpenAIAPIKey: "sk"}, want: 0},
		{name: "gemini without key fails at startup", cfg: ServerConfig{Provider: ProviderGemini}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cfg.Warnings()
			if len(got) != tt.want {
				t.Errorf("Warnings() = %v, want %d entries", got, tt.want)
			}
		})
	}
}
