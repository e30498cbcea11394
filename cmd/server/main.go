package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"vachan/backend/internal/api"
	"vachan/backend/internal/config"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		logrus.Fatalf("load .env: %v", err)
	}
	cfg, err := config.Load(os.Getenv("VACHAN_CONFIG"))
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	cfg.Log.Apply()

	if dir := filepath.Dir(cfg.DBPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logrus.Fatalf("create data directory: %v", err)
		}
	}

	server, err := api.NewServer(context.Background(), api.Config{
		DBPath:         cfg.DBPath,
		SilentDB:       !strings.EqualFold(cfg.Log.Level, "debug"),
		AllowedOrigins: cfg.AllowedOrigins,
		DisableAI:      cfg.DisableAI,
		AIConfig:       cfg.ModelConfig(),
		CacheConfig:    cfg.ReportCache(),
		Claims:         cfg.ClaimSearch(),
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
	})
	if err != nil {
		logrus.Fatalf("create server: %v", err)
	}
	defer server.Close()

	router, err := server.Router()
	if err != nil {
		logrus.Fatalf("configure router: %v", err)
	}

	logrus.Infof("starting vachan backend on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logrus.Fatalf("server exited: %v", err)
	}
}
