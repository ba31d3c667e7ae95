package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_URL", "")
	t.Setenv("SESSION_BACKEND", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.ServerPort)
	require.Equal(t, "http://localhost:4000/graphql", cfg.APIURL)
	require.Equal(t, SessionBackendFile, cfg.SessionBackend)
	require.Equal(t, 500*time.Millisecond, cfg.SearchDebounce)
	require.Equal(t, 20, cfg.PageLimit)
	require.Equal(t, int64(5*1024*1024), cfg.MaxUploadSize)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("API_URL", "https://api.example.com/graphql")
	t.Setenv("SEARCH_DEBOUNCE", "250ms")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("PAGE_LIMIT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 250*time.Millisecond, cfg.SearchDebounce)
	require.Equal(t, slog.LevelDebug, cfg.LogLevel)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	require.Equal(t, 20, cfg.PageLimit)
}

func TestValidate(t *testing.T) {
	t.Run("postgres backend needs a database url", func(t *testing.T) {
		t.Setenv("SESSION_BACKEND", "postgres")
		t.Setenv("DATABASE_URL", "")

		_, err := Load()
		require.ErrorContains(t, err, "DATABASE_URL")
	})

	t.Run("unknown backend is rejected", func(t *testing.T) {
		t.Setenv("SESSION_BACKEND", "redis")

		_, err := Load()
		require.ErrorContains(t, err, "SESSION_BACKEND")
	})

	t.Run("relative api url is rejected", func(t *testing.T) {
		t.Setenv("API_URL", "/graphql")

		_, err := Load()
		require.ErrorContains(t, err, "API_URL")
	})
}
