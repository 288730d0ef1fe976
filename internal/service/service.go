package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gust-labs/weather-alerts-backend/internal/config"
	"github.com/gust-labs/weather-alerts-backend/internal/domain"
	"github.com/gust-labs/weather-alerts-backend/internal/metrics"
	"github.com/gust-labs/weather-alerts-backend/internal/ratelimit"
	"github.com/gust-labs/weather-alerts-backend/internal/store"
)

// ErrTokenRequired marks structurally invalid registration input. It is the
// only registration failure surfaced to the caller.
var ErrTokenRequired = errors.New("push token required")

// Gateway is the batched push delivery dependency. SendBatch returns the raw
// gateway response and whether the gateway reported overall success for the
// request; the error return is reserved for transport failures.
type Gateway interface {
	Configured() bool
	SendBatch(ctx context.Context, tokens []string, title, body string) (map[string]any, bool, error)
}

type Service struct {
	config     config.Config
	repository store.TokenStore
	limiter    *ratelimit.Limiter
	gateway    Gateway
	metrics    *metrics.Metrics
	now        func() time.Time
}

func New(config config.Config, repository store.TokenStore, limiter *ratelimit.Limiter, gateway Gateway, collector *metrics.Metrics) *Service {
	return &Service{
		config:     config,
		repository: repository,
		limiter:    limiter,
		gateway:    gateway,
		metrics:    collector,
		now:        time.Now,
	}
}

func (service *Service) AllowSubscribe(ip string) bool {
	if service.limiter == nil {
		return true
	}
	return service.limiter.Allow(ip)
}

func (service *Service) ValidateAdminSecret(secret string) bool {
	return secureCompare(service.config.AdminSecret, secret)
}

// Register records one device's push token and its tags. The set-add and the
// metadata overwrite are two independent single-key writes, and both are
// best-effort: a failing store is logged, not surfaced, because dropping one
// registration is cheaper than failing the mobile client's request.
func (service *Service) Register(ctx context.Context, token string, tags []string) error {
	if token == "" {
		service.metrics.RecordRegistrationRejected()
		return ErrTokenRequired
	}

	if err := service.repository.AddToken(ctx, token); err != nil {
		log.Printf("register token set-add failed: %v", err)
		service.metrics.RecordStoreWriteError()
		service.metrics.RecordRegistration()
		return nil
	}

	if err := service.repository.WriteMeta(ctx, token, domain.NormalizeTags(tags), service.now()); err != nil {
		log.Printf("register metadata write failed: %v", err)
		service.metrics.RecordStoreWriteError()
	}

	service.metrics.RecordRegistration()
	return nil
}

// SubscriptionStatus reports whether a token is registered and the tags last
// recorded for it. A registered token with missing or unreadable metadata is
// reported as active with no tags.
func (service *Service) SubscriptionStatus(ctx context.Context, token string) (string, []string, error) {
	meta, found, err := service.repository.GetMeta(ctx, token)
	if err != nil {
		service.metrics.RecordStoreReadError()
		return "", nil, err
	}
	if !found {
		return "inactive", []string{}, nil
	}
	return "active", meta.Tags, nil
}

// Broadcast fans one alert out to every registered token in batches. Batches
// dispatch sequentially; a failed batch contributes zero to the sent count
// but its result entry stays in place, so delivery is at-least-once per
// attempted batch and never atomic across the whole broadcast.
func (service *Service) Broadcast(ctx context.Context, request domain.AlertRequest) (domain.BroadcastResult, error) {
	title := request.ResolvedTitle()

	tokens, err := service.repository.ListTokens(ctx)
	if err != nil {
		service.metrics.RecordStoreReadError()
		return domain.BroadcastResult{}, fmt.Errorf("listing push tokens: %w", err)
	}

	if len(tokens) == 0 {
		service.metrics.RecordBroadcast(true)
		return domain.BroadcastResult{Reason: domain.ReasonNoTokens}, nil
	}

	if !service.gateway.Configured() {
		service.metrics.RecordBroadcast(true)
		return domain.BroadcastResult{Reason: domain.ReasonNoFCMKey}, nil
	}

	service.metrics.RecordBroadcast(false)
	broadcastID := uuid.NewString()
	batchSize := service.config.BatchSize
	if batchSize < 1 {
		batchSize = 500
	}

	result := domain.BroadcastResult{
		Results: make([]map[string]any, 0, (len(tokens)+batchSize-1)/batchSize),
	}

	for start := 0; start < len(tokens); start += batchSize {
		end := min(start+batchSize, len(tokens))
		batch := tokens[start:end]

		started := service.now()
		response, ok, err := service.gateway.SendBatch(ctx, batch, title, request.Body)
		elapsed := time.Since(started)

		if err != nil {
			// One unreachable batch must not abort the rest of the fan-out.
			log.Printf("broadcast %s: batch %d-%d dispatch failed: %v", broadcastID, start, end, err)
			service.metrics.RecordBatch(len(batch), false, elapsed)
			result.Results = append(result.Results, map[string]any{"error": err.Error()})
			continue
		}

		service.metrics.RecordBatch(len(batch), ok, elapsed)
		result.Results = append(result.Results, response)
		if ok {
			result.Sent += len(batch)
		} else {
			log.Printf("broadcast %s: batch %d-%d rejected by gateway", broadcastID, start, end)
		}
	}

	log.Printf("broadcast %s: addressed %d/%d tokens across %d batches", broadcastID, result.Sent, len(tokens), len(result.Results))
	return result, nil
}

func secureCompare(expected, actual string) bool {
	if len(expected) == 0 || len(actual) == 0 {
		return false
	}
	if len(expected) != len(actual) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(actual)) == 1
}
