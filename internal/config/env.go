package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// envConfig mirrors Config for environment parsing.
type envConfig struct {
	StorageDriver string        `env:"ADMIN_STORAGE_DRIVER"`
	DatabaseDSN   string        `env:"ADMIN_DATABASE_DSN"`
	BcryptCost    int           `env:"ADMIN_BCRYPT_COST"`
	LogLevel      string        `env:"ADMIN_LOG_LEVEL"`
	OpTimeout     time.Duration `env:"ADMIN_OP_TIMEOUT"`
}

// parseEnv overlays values from the environment onto the Config. Unset
// variables keep their previous values.
func parseEnv(config *Config) {
	e := envConfig{}
	if err := env.Parse(&e); err != nil {
		panic(err)
	}

	if e.StorageDriver != "" {
		config.StorageDriver = e.StorageDriver
	}
	if e.DatabaseDSN != "" {
		config.DatabaseDSN = e.DatabaseDSN
	}
	if e.BcryptCost != 0 {
		config.BcryptCost = e.BcryptCost
	}
	if e.LogLevel != "" {
		config.LogLevel = e.LogLevel
	}
	if e.OpTimeout != 0 {
		config.OpTimeout = e.OpTimeout
	}
}
