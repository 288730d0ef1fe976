package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gust-labs/weather-alerts-backend/internal/config"
	"github.com/gust-labs/weather-alerts-backend/internal/gateway"
	"github.com/gust-labs/weather-alerts-backend/internal/httpapi"
	"github.com/gust-labs/weather-alerts-backend/internal/metrics"
	"github.com/gust-labs/weather-alerts-backend/internal/ratelimit"
	"github.com/gust-labs/weather-alerts-backend/internal/service"
	"github.com/gust-labs/weather-alerts-backend/internal/store"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	redisOptions, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	redisClient := redis.NewClient(redisOptions)
	defer redisClient.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Fatalf("redis ping failed: %v", err)
	}

	repository := store.NewRedis(redisClient)
	limiter := ratelimit.New(cfg.SubscribeRateLimit, cfg.SubscribeWindow)
	pushGateway := gateway.NewClient(cfg.FCMServerKey, cfg.FCMEndpoint, cfg.GatewayTimeout)
	collector := metrics.New()

	if !pushGateway.Configured() {
		log.Printf("FCM_SERVER_KEY not set: broadcasts will no-op with reason=no_fcm_key")
	}

	appService := service.New(cfg, repository, limiter, pushGateway, collector)
	router := httpapi.NewRouter(appService, collector.Handler())

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("weather-alerts-backend listening on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server failed: %v", err)
		}
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	<-signals

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
}
