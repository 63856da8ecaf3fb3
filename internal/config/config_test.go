package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"TAREAS_CONFIG", "PORT", "CORS_ORIGINS", "LOG_LEVEL", "LOG_FORMAT", "MAX_CONNS"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultOrigins, cfg.AllowedOrigins)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultLogFormat, cfg.LogFormat)
	assert.Equal(t, 0, cfg.MaxConns)
	assert.Equal(t, "0.0.0.0:3000", cfg.Addr())
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MAX_CONNS", "64")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 64, cfg.MaxConns)
}

func TestLoadInvalidPortFallsBack(t *testing.T) {
	tests := []struct {
		name string
		port string
	}{
		{"not a number", "abc"},
		{"zero", "0"},
		{"negative", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("PORT", tt.port)

			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, DefaultPort, cfg.Port)
		})
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "tareas.toml")
	content := `
port = 4000
allowed_origins = ["https://file.example"]
log_format = "json"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("TAREAS_CONFIG", path)
	t.Setenv("PORT", "5000")

	cfg, err := Load()
	require.NoError(t, err)

	// env wins over the file
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, []string{"https://file.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
}

func TestLoadBadFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("port = ["), 0o644))
	t.Setenv("TAREAS_CONFIG", path)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode config")
}
