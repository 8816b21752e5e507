// Package config reads runtime settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"tasktrack/internal/util"
)

// Config holds every runtime setting of the server.
type Config struct {
	AppName      string
	Addr         string
	DBPath       string
	StaticDir    string
	SecretKey    string
	Algorithm    string
	TokenTTL     time.Duration
	AllowOrigins []string
	WriteTimeout time.Duration
	LogLevel     slog.Level
}

// Load reads envFiles (missing files are ignored) and then the process environment.
// Variables already set in the environment take precedence over file values.
func Load(envFiles ...string) (Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	cfg := Config{
		AppName:      util.EnvOrDefault("APP_NAME", "TaskTrack"),
		Addr:         util.EnvOrDefault("TASKTRACK_ADDR", ":8080"),
		DBPath:       util.EnvOrDefault("TASKTRACK_DB_PATH", "data/tasktrack.db"),
		StaticDir:    util.EnvOrDefault("TASKTRACK_STATIC_DIR", "web/dist"),
		SecretKey:    util.EnvOrDefault("SECRET_KEY", "change-me"),
		Algorithm:    util.EnvOrDefault("AUTH_ALGORITHM", "HS256"),
		TokenTTL:     time.Duration(util.EnvIntOrDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 60)) * time.Minute,
		AllowOrigins: util.EnvListOrDefault("CORS_ALLOW_ORIGINS", []string{"*"}),
		WriteTimeout: time.Duration(util.EnvIntOrDefault("WS_WRITE_TIMEOUT_SECONDS", 10)) * time.Second,
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(util.EnvOrDefault("LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("parse LOG_LEVEL: %w", err)
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	if cfg.WriteTimeout <= 0 {
		return Config{}, fmt.Errorf("WS_WRITE_TIMEOUT_SECONDS must be positive")
	}
	cfg.Algorithm = strings.ToUpper(cfg.Algorithm)
	return cfg, nil
}
