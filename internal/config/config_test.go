package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 12*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "showtime", cfg.ValkeyPrefix)
	assert.Equal(t, SinkMemory, cfg.SaveSink)
}

func TestLoadUnknownSink(t *testing.T) {
	t.Setenv("SHOWTIME_SAVE_SINK", "s3")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SHOWTIME_ADDR=:9090\nSHOWTIME_TOKEN_TTL=30m\n"), 0o644))
	t.Setenv("SHOWTIME_ADDR", "")
	t.Setenv("SHOWTIME_TOKEN_TTL", "")
	os.Unsetenv("SHOWTIME_ADDR")
	os.Unsetenv("SHOWTIME_TOKEN_TTL")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
}

func TestEnvironmentWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SHOWTIME_VALKEY_ADDR=file:6379\n"), 0o644))
	t.Setenv("SHOWTIME_VALKEY_ADDR", "env:6379")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env:6379", cfg.ValkeyAddr)
}

func TestLoadBadDuration(t *testing.T) {
	t.Setenv("SHOWTIME_TOKEN_TTL", "soon")
	_, err := Load()
	assert.Error(t, err)
}
