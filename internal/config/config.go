// Package config handles configuration for the admin binary, including
// defaults, JSON overlay, environment variables, and command-line flags,
// applied in that order.
package config

import "time"

// Config holds runtime settings for the admin tool.
//
// Fields:
//   - StorageDriver: "sqlite" (default), "postgres", or "memory".
//   - DatabaseDSN: file path for sqlite, DSN for postgres (pgx).
//   - BcryptCost: work factor for credential hashing.
//   - LogLevel: debug | info | warn | error.
//   - OpTimeout: per-command context timeout in the CLI.
type Config struct {
	StorageDriver string
	DatabaseDSN   string
	BcryptCost    int
	LogLevel      string
	OpTimeout     time.Duration
}

// LoadDefaults populates Config with sensible development defaults.
func (c *Config) LoadDefaults() {
	c.StorageDriver = "sqlite"
	c.DatabaseDSN = "adminpanel.db"
	c.BcryptCost = 10
	c.LogLevel = "info"
	c.OpTimeout = 5 * time.Second
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment, and finally command-line
// flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
