package gateway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gust-labs/weather-alerts-backend/internal/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigured(t *testing.T) {
	assert.False(t, gateway.NewClient("", "http://example.invalid", time.Second).Configured())
	assert.True(t, gateway.NewClient("server-key", "http://example.invalid", time.Second).Configured())
}

func TestSendBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("request carries key auth and the batch payload", func(t *testing.T) {
		var captured struct {
			RegistrationIDs []string `json:"registration_ids"`
			Notification    struct {
				Title string `json:"title"`
				Body  string `json:"body"`
			} `json:"notification"`
			Priority string `json:"priority"`
		}
		var authHeader, contentType string

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader = r.Header.Get("Authorization")
			contentType = r.Header.Get("Content-Type")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			_, _ = w.Write([]byte(`{"success": 2, "failure": 0}`))
		}))
		defer server.Close()

		client := gateway.NewClient("server-key", server.URL, time.Second)
		response, ok, err := client.SendBatch(ctx, []string{"a", "b"}, "Storm", "Incoming")

		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "key=server-key", authHeader)
		assert.Equal(t, "application/json", contentType)
		assert.Equal(t, []string{"a", "b"}, captured.RegistrationIDs)
		assert.Equal(t, "Storm", captured.Notification.Title)
		assert.Equal(t, "Incoming", captured.Notification.Body)
		assert.Equal(t, "high", captured.Priority)
		assert.Equal(t, 2.0, response["success"])
	})

	t.Run("non-JSON body falls back to a status-only record", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html>not json</html>"))
		}))
		defer server.Close()

		client := gateway.NewClient("server-key", server.URL, time.Second)
		response, ok, err := client.SendBatch(ctx, []string{"a"}, "Storm", "")

		require.NoError(t, err, "a malformed gateway response must not abort the broadcast")
		assert.True(t, ok)
		assert.Equal(t, map[string]any{"status": http.StatusOK}, response)
	})

	t.Run("error status reports not ok but still decodes the body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error": "InvalidApiKey"}`))
		}))
		defer server.Close()

		client := gateway.NewClient("bad-key", server.URL, time.Second)
		response, ok, err := client.SendBatch(ctx, []string{"a"}, "Storm", "")

		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, "InvalidApiKey", response["error"])
	})

	t.Run("unreachable endpoint is a transport error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		server.Close()

		client := gateway.NewClient("server-key", server.URL, time.Second)
		_, _, err := client.SendBatch(ctx, []string{"a"}, "Storm", "")
		require.Error(t, err)
	})
}
