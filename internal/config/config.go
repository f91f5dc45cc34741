// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds every setting the API server and the manage tool need.
type Config struct {
	Server struct {
		Port                 string
		APIPrefix            string
		SlowRequestThreshold time.Duration
	}
	Database Database
	Auth     struct {
		SecretKey       string
		AccessTokenTTL  time.Duration
		RefreshTokenTTL time.Duration
		SessionMaxAge   time.Duration
	}
	Media struct {
		Root string
		URL  string
	}
	Log struct {
		Level        string
		LogstashAddr string
	}
}

// Database selects and parameterises the store backend. An empty Host
// means SQLite at SQLitePath.
type Database struct {
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	MaxConns   int32
	SQLitePath string
}

// UsesPostgres reports whether a remote PostgreSQL server is configured.
func (d Database) UsesPostgres() bool {
	return d.Host != ""
}

// DSN returns the PostgreSQL connection string.
func (d Database) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// Load reads the configuration from environment variables, falling back to
// defaults suitable for local development.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	cfg.Server.Port = getEnv("PORT", ":9090")
	cfg.Server.APIPrefix = getEnv("API_PREFIX", "/api/v1")
	if cfg.Server.SlowRequestThreshold, err = getDuration("SLOW_REQUEST_THRESHOLD", 2*time.Second); err != nil {
		return nil, err
	}

	cfg.Database.Host = getEnv("DB_HOST", "")
	cfg.Database.Port = getEnv("DB_PORT", "5432")
	cfg.Database.User = getEnv("DB_USER", "")
	cfg.Database.Password = getEnv("DB_PASSWORD", "")
	cfg.Database.Name = getEnv("DB_NAME", "yatube")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "require")
	cfg.Database.SQLitePath = getEnv("DATABASE", "yatube.db")
	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "10"))
	if err != nil || maxConns <= 0 {
		return nil, fmt.Errorf("config: invalid DB_MAX_CONNS %q", os.Getenv("DB_MAX_CONNS"))
	}
	cfg.Database.MaxConns = int32(maxConns)

	cfg.Auth.SecretKey = getEnv("SECRET_KEY", "SESSION_KEY")
	if cfg.Auth.AccessTokenTTL, err = getDuration("ACCESS_TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.Auth.RefreshTokenTTL, err = getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.Auth.SessionMaxAge, err = getDuration("SESSION_MAX_AGE", 16*time.Hour); err != nil {
		return nil, err
	}

	cfg.Media.Root = getEnv("MEDIA_ROOT", "media")
	cfg.Media.URL = getEnv("MEDIA_URL", "/media/")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.LogstashAddr = getEnv("LOGSTASH_ADDR", "")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s: %w", key, err)
	}
	return d, nil
}
