// Package config loads ambient engine configuration from the environment,
// following the teacher's internal/config/config.go pattern: a flat struct
// populated from GRITQL_-prefixed environment variables, with a .env file
// loaded first via godotenv when present.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds process-wide defaults for running the matcher. None of these
// affect matching semantics for a given Problem; they only affect where the
// no-match cache lives, how verbose diagnostics are, and the PRNG seed used
// when a caller does not supply one explicitly.
type Config struct {
	// CachePath is the sqlite DSN for the no-match cache (internal/cache).
	CachePath string

	// DefaultSeed seeds each run's State.Rand when a run does not pin one
	// itself.
	DefaultSeed int64

	// LogLevel is read from GRITQL_LOG_LEVEL. Nothing filters on it:
	// cmd/gritql prints every AnalysisLog record whatever its level, and the
	// library itself always records every level.
	LogLevel string

	// CancelPollEveryNNodes is how often, in IR-dispatch steps, the matcher
	// polls a caller-supplied cancellation flag (§5 Suspension points).
	CancelPollEveryNNodes int
}

// Load reads configuration from the environment, loading a .env file from
// the working directory first if one exists (missing .env is not an error).
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		CachePath:             envOr("GRITQL_CACHE_PATH", "gritql-cache.db"),
		DefaultSeed:           envInt64Or("GRITQL_SEED", 0),
		LogLevel:              envOr("GRITQL_LOG_LEVEL", "info"),
		CancelPollEveryNNodes: int(envInt64Or("GRITQL_CANCEL_POLL_NODES", 256)),
	}
	return cfg
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt64Or(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}
