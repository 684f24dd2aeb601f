package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/adminpanel/internal/flagx"
	"github.com/dmitrijs2005/adminpanel/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON configuration
// files. It uses timex.Duration for interval fields, which allows parsing
// both string values such as "5s" and integer nanoseconds. After
// unmarshalling, set fields are copied into the runtime Config.
type JsonConfig struct {
	StorageDriver string         `json:"storage_driver"`
	DatabaseDSN   string         `json:"database_dsn"`
	BcryptCost    int            `json:"bcrypt_cost"`
	LogLevel      string         `json:"log_level"`
	OpTimeout     timex.Duration `json:"op_timeout"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config. The file path comes from the -c or -config flags; when neither is
// set, no file is loaded. Unset JSON fields keep their previous values. An
// unreadable or invalid file panics, as misconfiguration should stop startup.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.StorageDriver != "" {
		config.StorageDriver = c.StorageDriver
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
	if c.OpTimeout.Duration != 0 {
		config.OpTimeout = c.OpTimeout.Duration
	}
}
