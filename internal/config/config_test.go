package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadYAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vachan.yaml")
	yamlDoc := `port: "8080"
allowed_origins: ["https://vachan.example"]
ai:
  provider: openai
  openai_model: gpt-test
  timeout: 10s
cache:
  ttl: 1h
rate_limit:
  rps: 4
  burst: 8
`
	if err := os.WriteFile(path, []byte(yamlDoc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Setenv("PORT", "9090")
	t.Setenv("OPENAI_API_KEY", " sk-test ")
	t.Setenv("CACHE_TTL", "not-a-duration")
	t.Setenv("DISABLE_AI", "TRUE")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Fatalf("env should override port, got %q", cfg.Port)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "https://vachan.example" {
		t.Fatalf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.AI.Timeout != 10*time.Second || cfg.Cache.TTL != time.Hour {
		t.Fatalf("unexpected durations %v %v", cfg.AI.Timeout, cfg.Cache.TTL)
	}
	if cfg.RateLimit.RPS != 4 || cfg.RateLimit.Burst != 8 {
		t.Fatalf("unexpected rate limit %+v", cfg.RateLimit)
	}
	if !cfg.DisableAI {
		t.Fatalf("expected DISABLE_AI to apply")
	}

	model := cfg.ModelConfig()
	if model.OpenAIAPIKey != "sk-test" || model.OpenAIModel != "gpt-test" || string(model.Provider) != "openai" {
		t.Fatalf("unexpected model config %+v", model)
	}
}

func TestApplyEnvDefaults(t *testing.T) {
	cfg := Default()
	applyEnv(&cfg, func(key string) string {
		switch key {
		case "GOOGLE_API_KEY":
			return "g-key"
		case "ALLOWED_ORIGINS":
			return "http://a, ,http://b"
		case "REDIS_DB":
			return "-1"
		}
		return ""
	})
	if cfg.AI.GeminiAPIKey != "g-key" {
		t.Fatalf("expected GOOGLE_API_KEY fallback, got %q", cfg.AI.GeminiAPIKey)
	}
	if cfg.ClaimSearch().APIKey != "g-key" || cfg.Claims.CacheTTL != time.Hour {
		t.Fatalf("claim search should share the Google key, got %+v", cfg.Claims)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b" {
		t.Fatalf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.Cache.RedisDB != 0 || cfg.Port != "2000" {
		t.Fatalf("defaults not preserved: %+v", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("missing .env should be ignored, got %v", err)
	}
}

func TestClaimsKeyPrefersDedicatedVariable(t *testing.T) {
	cfg := Default()
	applyEnv(&cfg, func(key string) string {
		switch key {
		case "GOOGLE_API_KEY":
			return "g-key"
		case "FACTCHECK_API_KEY":
			return "fc-key"
		}
		return ""
	})
	if cfg.Claims.APIKey != "fc-key" || cfg.AI.GeminiAPIKey != "g-key" {
		t.Fatalf("unexpected keys claims=%q gemini=%q", cfg.Claims.APIKey, cfg.AI.GeminiAPIKey)
	}
}
