package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	RedisURL       string
	AdminSecret    string
	FCMServerKey   string
	FCMEndpoint    string
	BatchSize      int
	GatewayTimeout time.Duration

	SubscribeRateLimit int
	SubscribeWindow    time.Duration
}

func Load() (Config, error) {
	_ = godotenv.Load()

	config := Config{
		Port:               getEnv("PORT", "4000"),
		RedisURL:           strings.TrimSpace(os.Getenv("REDIS_URL")),
		AdminSecret:        strings.TrimSpace(os.Getenv("ADMIN_SECRET")),
		FCMServerKey:       strings.TrimSpace(os.Getenv("FCM_SERVER_KEY")),
		FCMEndpoint:        getEnv("FCM_ENDPOINT", "https://fcm.googleapis.com/fcm/send"),
		BatchSize:          getEnvInt("FCM_BATCH_SIZE", 500),
		GatewayTimeout:     time.Duration(getEnvInt("GATEWAY_TIMEOUT_SECONDS", 10)) * time.Second,
		SubscribeRateLimit: getEnvInt("SUBSCRIBE_RATE_LIMIT", 5),
		SubscribeWindow:    time.Duration(getEnvInt("SUBSCRIBE_RATE_WINDOW_SECONDS", 60)) * time.Second,
	}

	if config.RedisURL == "" {
		return Config{}, errors.New("REDIS_URL is required")
	}
	if config.AdminSecret == "" {
		return Config{}, errors.New("ADMIN_SECRET is required")
	}
	// FCM_SERVER_KEY stays optional: without it broadcasts report
	// sent=0 reason=no_fcm_key instead of failing at startup.
	if config.BatchSize < 1 {
		config.BatchSize = 500
	}
	if config.GatewayTimeout <= 0 {
		config.GatewayTimeout = 10 * time.Second
	}

	return config, nil
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
