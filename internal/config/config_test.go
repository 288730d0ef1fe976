package config_test

import (
	"testing"
	"time"

	"github.com/gust-labs/weather-alerts-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("ADMIN_SECRET", "top-secret")
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		setRequired(t)
		t.Setenv("PORT", "")
		t.Setenv("FCM_SERVER_KEY", "")
		t.Setenv("FCM_ENDPOINT", "")
		t.Setenv("FCM_BATCH_SIZE", "")
		t.Setenv("GATEWAY_TIMEOUT_SECONDS", "")

		cfg, err := config.Load()
		require.NoError(t, err)

		assert.Equal(t, "4000", cfg.Port)
		assert.Equal(t, "https://fcm.googleapis.com/fcm/send", cfg.FCMEndpoint)
		assert.Equal(t, 500, cfg.BatchSize)
		assert.Equal(t, 10*time.Second, cfg.GatewayTimeout)
		assert.Empty(t, cfg.FCMServerKey, "FCM server key is optional")
	})

	t.Run("redis url is required", func(t *testing.T) {
		t.Setenv("REDIS_URL", "")
		t.Setenv("ADMIN_SECRET", "top-secret")

		_, err := config.Load()
		require.Error(t, err)
	})

	t.Run("admin secret is required", func(t *testing.T) {
		t.Setenv("REDIS_URL", "redis://localhost:6379/0")
		t.Setenv("ADMIN_SECRET", "")

		_, err := config.Load()
		require.Error(t, err)
	})

	t.Run("invalid numbers fall back", func(t *testing.T) {
		setRequired(t)
		t.Setenv("FCM_BATCH_SIZE", "lots")

		cfg, err := config.Load()
		require.NoError(t, err)
		assert.Equal(t, 500, cfg.BatchSize)
	})
}
