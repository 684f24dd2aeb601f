package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/adminpanel/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-s string   storage driver: sqlite | postgres | memory
//	-d string   database DSN (file path for sqlite)
//	-b int      bcrypt cost
//	-l string   log level: debug | info | warn | error
//	-t int      per-command timeout, seconds
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with the -c/-config flags handled by
// the JSON loader.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-s", "-d", "-b", "-l", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.StorageDriver, "s", config.StorageDriver, "storage driver (sqlite|postgres|memory)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.IntVar(&config.BcryptCost, "b", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	opTimeout := fs.Int("t", int(config.OpTimeout.Seconds()), "per-command timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.OpTimeout = time.Duration(*opTimeout) * time.Second
}
