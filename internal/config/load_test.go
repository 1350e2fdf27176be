package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tasksvc/tasksvc-api/internal/config"
)

// setRequiredEnv sets the variables without defaults. Tests using t.Setenv
// cannot run in parallel.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TASKS_AUTH_JWT_SECRET", "test-secret-key-thats-at-least-32-chars")
	t.Setenv("TASKS_DATABASE_URL", "postgres://localhost:5432/tasks_test")
}

func TestLoad(t *testing.T) {
	t.Run("defaults with required env set", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := config.Load()
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, "info", cfg.Server.LogLevel)
		assert.Equal(t, 720, cfg.Auth.TokenLifetimeMinutes)
		assert.Equal(t, 43200, cfg.Auth.RefreshTokenLifetimeMinutes)
		assert.Equal(t, 10, cfg.Auth.BCryptCost)
		assert.Equal(t, 8, cfg.Auth.PasswordMinLength)
		assert.Equal(t, "postgres://localhost:5432/tasks_test", cfg.Database.URL)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("TASKS_SERVER_PORT", "9090")
		t.Setenv("TASKS_SERVER_LOG_LEVEL", "debug")
		t.Setenv("TASKS_AUTH_TOKEN_LIFETIME_MINUTES", "15")

		cfg, err := config.Load()
		require.NoError(t, err)

		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, "debug", cfg.Server.LogLevel)
		assert.Equal(t, 15, cfg.Auth.TokenLifetimeMinutes)
	})

	t.Run("missing jwt secret fails validation", func(t *testing.T) {
		t.Setenv("TASKS_DATABASE_URL", "postgres://localhost:5432/tasks_test")
		t.Setenv("TASKS_AUTH_JWT_SECRET", "")

		_, err := config.Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})

	t.Run("short jwt secret fails validation", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("TASKS_AUTH_JWT_SECRET", "too-short")

		_, err := config.Load()
		assert.Error(t, err)
	})

	t.Run("bad log level fails validation", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("TASKS_SERVER_LOG_LEVEL", "verbose")

		_, err := config.Load()
		assert.Error(t, err)
	})

	t.Run("out-of-range port fails validation", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("TASKS_SERVER_PORT", "70000")

		_, err := config.Load()
		assert.Error(t, err)
	})
}
