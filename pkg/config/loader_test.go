package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authgateway/pkg/config"
)

type serverConfig struct {
	Addr    string        `env:"TEST_CFG_ADDR" envDefault:":8080"`
	Timeout time.Duration `env:"TEST_CFG_TIMEOUT" envDefault:"5s"`
	Nested  nestedConfig
}

type nestedConfig struct {
	Enabled bool `env:"TEST_CFG_NESTED_ENABLED" envDefault:"true"`
}

type requiredConfig struct {
	Secret string `env:"TEST_CFG_REQUIRED_SECRET,required"`
}

func TestLoad(t *testing.T) {
	config.ResetCache()
	t.Setenv("TEST_CFG_ADDR", ":9090")
	t.Setenv("TEST_CFG_NESTED_ENABLED", "false")

	var cfg serverConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.False(t, cfg.Nested.Enabled)

	// Cached per type.
	t.Setenv("TEST_CFG_ADDR", ":7070")
	var again serverConfig
	require.NoError(t, config.Load(&again))
	assert.Equal(t, ":9090", again.Addr)

	config.ResetCache()
	require.NoError(t, config.Load(&again))
	assert.Equal(t, ":7070", again.Addr)
}

func TestLoad_Errors(t *testing.T) {
	config.ResetCache()

	assert.ErrorIs(t, config.Load[serverConfig](nil), config.ErrNilPointer)

	var cfg requiredConfig
	assert.ErrorIs(t, config.Load(&cfg), config.ErrParsingConfig)
	assert.Panics(t, func() { config.MustLoad(&cfg) })

	// A failed parse is not cached.
	t.Setenv("TEST_CFG_REQUIRED_SECRET", "s3cret")
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "s3cret", cfg.Secret)
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, ".env")
	override := filepath.Join(dir, ".env.local")
	require.NoError(t, os.WriteFile(base, []byte("TEST_CFG_FILE_A=base\nTEST_CFG_FILE_B=base\n"), 0o600))
	require.NoError(t, os.WriteFile(override, []byte("TEST_CFG_FILE_B=override\n"), 0o600))

	for _, k := range []string{"TEST_CFG_FILE_A", "TEST_CFG_FILE_B"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	require.NoError(t, config.LoadEnv(base, override))
	assert.Equal(t, "base", os.Getenv("TEST_CFG_FILE_A"))
	assert.Equal(t, "override", os.Getenv("TEST_CFG_FILE_B"))

	err := config.LoadEnv(filepath.Join(dir, "missing.env"))
	assert.ErrorIs(t, err, config.ErrLoadingEnvFile)
}
