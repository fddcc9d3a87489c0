// Package config provides configuration loading for the resolver core.
// Unlike the teacher's full service config (database, redis, auth, ...),
// the core has no server or storage of its own; this is narrowed to the
// handful of knobs the resolver actually needs.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds resolver-core configuration.
type Config struct {
	// Logging controls the ambient logger (see package logger).
	LogLevel  string
	LogFormat string

	// FunctionCacheCapacity is loaded from HTTPDEF_FUNCTION_CACHE_CAPACITY.
	// No cache in this module reads it: the function-result cache is an
	// unbounded map, and the expr validator cache holds 256 programs.
	FunctionCacheCapacity int

	// DefaultComparator is used when a legacy-form validator omits
	// "comparator" (spec §4.H.3).
	DefaultComparator string

	// StrictMode is loaded from HTTPDEF_STRICT_MODE. The Parser does not
	// read it: it always calls resolve.Resolve with ignoreSelf=false, so a
	// self-referencing variable is an error regardless of this value.
	StrictMode bool
}

// Default returns the resolver core's baseline configuration.
func Default() Config {
	return Config{
		LogLevel:              "warn",
		LogFormat:             "text",
		FunctionCacheCapacity: 256,
		DefaultComparator:     "eq",
		StrictMode:            true,
	}
}

// Load builds a Config from environment variables, optionally seeded by a
// .env file at dotenvPath (ignored if the file does not exist). Mirrors
// the teacher's pattern of godotenv.Load followed by explicit os.Getenv
// parsing rather than reflection-based env binding.
func Load(dotenvPath string) Config {
	if dotenvPath != "" {
		_ = godotenv.Load(dotenvPath)
	}

	cfg := Default()

	if v := os.Getenv("HTTPDEF_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("HTTPDEF_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("HTTPDEF_FUNCTION_CACHE_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.FunctionCacheCapacity = n
		}
	}
	if v := os.Getenv("HTTPDEF_DEFAULT_COMPARATOR"); v != "" {
		cfg.DefaultComparator = v
	}
	if v := os.Getenv("HTTPDEF_STRICT_MODE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.StrictMode = b
		}
	}

	return cfg
}
