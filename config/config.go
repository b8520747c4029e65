/*
Package config reads the service configuration.

PURPOSE:
  Collects the runtime knobs of the financing service from command-line
  flags and environment variables. Environment variables win over flags,
  so containerized deployments can override a baked-in command line.

SOURCES (in priority order):
  1. Environment: RUN_ADDRESS, DATABASE_PATH, REDIS_ADDR
  2. Flags:       -a, -d, -r
  3. Defaults:    localhost:8080, ./llevatelo.db, "" (cache disabled)

USAGE:
  cfg, err := config.Parse()
  if err != nil { ... }
  st, err := sqlite.New(cfg.DatabasePath)
*/
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the service configuration.
type Config struct {
	// RunAddress is the host:port the HTTP server listens on.
	RunAddress string `env:"RUN_ADDRESS"`

	// DatabasePath is the SQLite database file (":memory:" for ephemeral).
	DatabasePath string `env:"DATABASE_PATH"`

	// RedisAddr enables the Redis calculation cache when non-empty.
	// Empty means in-process caching only.
	RedisAddr string `env:"REDIS_ADDR"`
}

// Parse reads the configuration from command-line flags and environment
// variables.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabasePath := cfg.DatabasePath
	envRedisAddr := cfg.RedisAddr

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabasePath, "d", "./llevatelo.db", "SQLite database path")
	flag.StringVar(&cfg.RedisAddr, "r", "", "Redis address for the calculation cache (empty disables)")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabasePath != "" {
		cfg.DatabasePath = envDatabasePath
	}
	if envRedisAddr != "" {
		cfg.RedisAddr = envRedisAddr
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}

	return cfg, nil
}
