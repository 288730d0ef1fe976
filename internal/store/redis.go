package store

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const tokenSetKey = "push_tokens"

// Meta is the per-token registration record kept alongside the token set.
type Meta struct {
	Tags      []string
	CreatedAt time.Time
}

type TokenStore interface {
	AddToken(ctx context.Context, token string) error
	WriteMeta(ctx context.Context, token string, tags []string, at time.Time) error
	ListTokens(ctx context.Context) ([]string, error)
	GetMeta(ctx context.Context, token string) (Meta, bool, error)
}

type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (repository *Redis) AddToken(ctx context.Context, token string) error {
	return repository.client.SAdd(ctx, tokenSetKey, token).Err()
}

// WriteMeta overwrites the token's metadata wholesale. It is a separate
// single-key write from AddToken; a crash between the two leaves the token in
// the set with stale or missing metadata, which readers treat as tags unknown.
func (repository *Redis) WriteMeta(ctx context.Context, token string, tags []string, at time.Time) error {
	encoded, err := json.Marshal(tags)
	if err != nil {
		return err
	}

	return repository.client.HSet(ctx, metaKey(token),
		"tags", string(encoded),
		"createdAt", at.UnixMilli(),
	).Err()
}

func (repository *Redis) ListTokens(ctx context.Context) ([]string, error) {
	return repository.client.SMembers(ctx, tokenSetKey).Result()
}

func (repository *Redis) GetMeta(ctx context.Context, token string) (Meta, bool, error) {
	registered, err := repository.client.SIsMember(ctx, tokenSetKey, token).Result()
	if err != nil {
		return Meta{}, false, err
	}
	if !registered {
		return Meta{}, false, nil
	}

	fields, err := repository.client.HGetAll(ctx, metaKey(token)).Result()
	if err != nil {
		return Meta{}, false, err
	}

	meta := Meta{Tags: []string{}}
	if raw, ok := fields["tags"]; ok {
		// Unparseable metadata is reported as tags unknown, not as an error.
		var tags []string
		if err := json.Unmarshal([]byte(raw), &tags); err == nil && tags != nil {
			meta.Tags = tags
		}
	}
	if raw, ok := fields["createdAt"]; ok {
		if millis, err := strconv.ParseInt(raw, 10, 64); err == nil {
			meta.CreatedAt = time.UnixMilli(millis)
		}
	}

	return meta, true, nil
}

func metaKey(token string) string {
	return "push_meta:" + token
}
