package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oxhq/gritql/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GRITQL_CACHE_PATH", "GRITQL_SEED", "GRITQL_LOG_LEVEL", "GRITQL_CANCEL_POLL_NODES"} {
		orig, had := os.LookupEnv(k)
		os.Unsetenv(k)
		t.Cleanup(func() {
			if had {
				os.Setenv(k, orig)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg := config.Load()
	assert.Equal(t, "gritql-cache.db", cfg.CachePath)
	assert.Equal(t, int64(0), cfg.DefaultSeed)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 256, cfg.CancelPollEveryNNodes)
}

func TestLoadReadsEnvOverrides(t *testing.T) {
	clearEnv(t)
	os.Setenv("GRITQL_CACHE_PATH", "/tmp/custom.db")
	os.Setenv("GRITQL_SEED", "42")
	os.Setenv("GRITQL_LOG_LEVEL", "debug")
	os.Setenv("GRITQL_CANCEL_POLL_NODES", "10")

	cfg := config.Load()
	assert.Equal(t, "/tmp/custom.db", cfg.CachePath)
	assert.Equal(t, int64(42), cfg.DefaultSeed)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 10, cfg.CancelPollEveryNNodes)
}

func TestLoadFallsBackOnUnparsableSeed(t *testing.T) {
	clearEnv(t)
	os.Setenv("GRITQL_SEED", "not-a-number")
	cfg := config.Load()
	assert.Equal(t, int64(0), cfg.DefaultSeed)
}
