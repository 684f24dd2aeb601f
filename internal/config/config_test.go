package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "sqlite", c.StorageDriver)
	assert.Equal(t, "adminpanel.db", c.DatabaseDSN)
	assert.Equal(t, 10, c.BcryptCost)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, 5*time.Second, c.OpTimeout)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	c := LoadConfig()
	require.NotNil(t, c, "LoadConfig must not return nil")

	assert.Equal(t, "sqlite", c.StorageDriver)
	assert.Equal(t, "adminpanel.db", c.DatabaseDSN)
	assert.Equal(t, 10, c.BcryptCost)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, 5*time.Second, c.OpTimeout)
}
