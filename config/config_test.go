package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"HTTPDEF_LOG_LEVEL",
		"HTTPDEF_LOG_FORMAT",
		"HTTPDEF_FUNCTION_CACHE_CAPACITY",
		"HTTPDEF_DEFAULT_COMPARATOR",
		"HTTPDEF_STRICT_MODE",
	} {
		os.Unsetenv(k)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 256, cfg.FunctionCacheCapacity)
	assert.Equal(t, "eq", cfg.DefaultComparator)
	assert.True(t, cfg.StrictMode)
}

func TestLoad_DefaultsWhenEnvUnset(t *testing.T) {
	clearEnv(t)
	cfg := Load("")
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesFromEnv(t *testing.T) {
	clearEnv(t)
	os.Setenv("HTTPDEF_LOG_LEVEL", "debug")
	os.Setenv("HTTPDEF_LOG_FORMAT", "json")
	os.Setenv("HTTPDEF_FUNCTION_CACHE_CAPACITY", "64")
	os.Setenv("HTTPDEF_DEFAULT_COMPARATOR", "contains")
	os.Setenv("HTTPDEF_STRICT_MODE", "false")
	defer clearEnv(t)

	cfg := Load("")
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 64, cfg.FunctionCacheCapacity)
	assert.Equal(t, "contains", cfg.DefaultComparator)
	assert.False(t, cfg.StrictMode)
}

func TestLoad_IgnoresInvalidNumericAndBoolEnv(t *testing.T) {
	clearEnv(t)
	os.Setenv("HTTPDEF_FUNCTION_CACHE_CAPACITY", "not-a-number")
	os.Setenv("HTTPDEF_STRICT_MODE", "not-a-bool")
	defer clearEnv(t)

	cfg := Load("")
	assert.Equal(t, Default().FunctionCacheCapacity, cfg.FunctionCacheCapacity)
	assert.Equal(t, Default().StrictMode, cfg.StrictMode)
}

func TestLoad_MissingDotenvFileIsIgnored(t *testing.T) {
	clearEnv(t)
	cfg := Load("/nonexistent/path/to/.env")
	assert.Equal(t, Default(), cfg)
}
