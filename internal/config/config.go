package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"vachan/backend/internal/ai"
	"vachan/backend/internal/cache"
	"vachan/backend/internal/claims"
)

// Config is the full server configuration.
type Config struct {
	Port           string          `yaml:"port"`
	DBPath         string          `yaml:"db_path"`
	AllowedOrigins []string        `yaml:"allowed_origins"`
	DisableAI      bool            `yaml:"disable_ai"`
	AI             AIConfig        `yaml:"ai"`
	Cache          CacheConfig     `yaml:"cache"`
	Claims         ClaimsConfig    `yaml:"claims"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
	Log            LogConfig       `yaml:"log"`
}

// AIConfig selects and tunes the remote model. API keys are read from the
// environment only.
type AIConfig struct {
	Provider      string        `yaml:"provider"`
	GeminiModel   string        `yaml:"gemini_model"`
	GeminiBaseURL string        `yaml:"gemini_base_url"`
	OpenAIModel   string        `yaml:"openai_model"`
	OpenAIBaseURL string        `yaml:"openai_base_url"`
	Timeout       time.Duration `yaml:"timeout"`
	GeminiAPIKey  string        `yaml:"-"`
	OpenAIAPIKey  string        `yaml:"-"`
}

// CacheConfig configures the model report cache.
type CacheConfig struct {
	RedisAddr     string        `yaml:"redis_addr"`
	RedisDB       int           `yaml:"redis_db"`
	TTL           time.Duration `yaml:"ttl"`
	RedisPassword string        `yaml:"-"`
}

// ClaimsConfig configures the published fact-check search.
type ClaimsConfig struct {
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
	PageSize int           `yaml:"page_size"`
	APIKey   string        `yaml:"-"`
}

// RateLimitConfig bounds per-client request rates on model-backed routes.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// LogConfig controls logrus output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:   "2000",
		DBPath: filepath.Join("data", "vachan.db"),
		AllowedOrigins: []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		},
		AI:        AIConfig{Timeout: 30 * time.Second},
		Cache:     CacheConfig{TTL: 6 * time.Hour},
		Claims:    ClaimsConfig{Timeout: 15 * time.Second, CacheTTL: time.Hour},
		RateLimit: RateLimitConfig{RPS: 2, Burst: 5},
		Log:       LogConfig{Level: "info", Format: "text"},
	}
}

// LoadDotEnv reads .env files into the process environment when present.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load builds the configuration from defaults, an optional YAML file and
// environment overrides, in that order.
func Load(path string) (Config, error) {
	cfg := Default()
	if path = strings.TrimSpace(path); path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	applyEnv(&cfg, os.Getenv)
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) {
	env := func(key string) string { return strings.TrimSpace(getenv(key)) }

	if v := env("PORT"); v != "" {
		cfg.Port = v
	}
	if v := env("VACHAN_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := env("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}
	if v := env("DISABLE_AI"); v != "" {
		cfg.DisableAI = strings.EqualFold(v, "true") || v == "1"
	}

	if v := env("AI_PROVIDER"); v != "" {
		cfg.AI.Provider = v
	}
	cfg.AI.GeminiAPIKey = firstNonEmpty(env("GEMINI_API_KEY"), env("GOOGLE_API_KEY"))
	if v := env("GEMINI_MODEL"); v != "" {
		cfg.AI.GeminiModel = v
	}
	if v := env("GEMINI_BASE_URL"); v != "" {
		cfg.AI.GeminiBaseURL = v
	}
	cfg.AI.OpenAIAPIKey = env("OPENAI_API_KEY")
	if v := env("OPENAI_MODEL"); v != "" {
		cfg.AI.OpenAIModel = v
	}
	if v := env("OPENAI_BASE_URL"); v != "" {
		cfg.AI.OpenAIBaseURL = v
	}
	if v := env("AI_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.AI.Timeout = d
		}
	}

	if v := env("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	cfg.Cache.RedisPassword = env("REDIS_PASSWORD")
	if v := env("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Cache.RedisDB = n
		}
	}
	if v := env("CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.TTL = d
		}
	}

	cfg.Claims.APIKey = firstNonEmpty(env("FACTCHECK_API_KEY"), env("GOOGLE_API_KEY"))
	if v := env("FACTCHECK_BASE_URL"); v != "" {
		cfg.Claims.BaseURL = v
	}

	if v := env("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimit.RPS = f
		}
	}
	if v := env("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RateLimit.Burst = n
		}
	}

	if v := env("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := env("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// ModelConfig converts to the ai package configuration.
func (c Config) ModelConfig() ai.Config {
	return ai.Config{
		Provider:      ai.Provider(c.AI.Provider),
		GeminiAPIKey:  c.AI.GeminiAPIKey,
		GeminiModel:   c.AI.GeminiModel,
		GeminiBaseURL: c.AI.GeminiBaseURL,
		OpenAIAPIKey:  c.AI.OpenAIAPIKey,
		OpenAIModel:   c.AI.OpenAIModel,
		OpenAIBaseURL: c.AI.OpenAIBaseURL,
		Timeout:       c.AI.Timeout,
	}
}

// ReportCache converts to the cache package configuration.
func (c Config) ReportCache() cache.Config {
	return cache.Config{
		RedisAddr:     c.Cache.RedisAddr,
		RedisPassword: c.Cache.RedisPassword,
		RedisDB:       c.Cache.RedisDB,
		TTL:           c.Cache.TTL,
	}
}

// ClaimSearch converts to the claims package configuration.
func (c Config) ClaimSearch() claims.Config {
	return claims.Config{
		APIKey:   c.Claims.APIKey,
		BaseURL:  c.Claims.BaseURL,
		Timeout:  c.Claims.Timeout,
		CacheTTL: c.Claims.CacheTTL,
		PageSize: c.Claims.PageSize,
	}
}

// Apply configures the global logrus logger.
func (l LogConfig) Apply() {
	if level, err := logrus.ParseLevel(strings.TrimSpace(l.Level)); err == nil {
		logrus.SetLevel(level)
	} else {
		logrus.WithField("level", l.Level).Warn("unknown log level, keeping default")
	}
	if strings.EqualFold(strings.TrimSpace(l.Format), "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
