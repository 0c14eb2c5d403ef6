package storage

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/commerce-kit/internal/core/domain"
)

const (
	idempotencyKeyPrefix = "idempotency:"
	fulfillmentKeyPrefix = "fulfillment:"
)

type RedisAdapter struct {
	client         *redis.Client
	idempotencyTTL time.Duration
	cacheTTL       time.Duration
}

func NewRedisAdapter(client *redis.Client, idempotencyTTL, cacheTTL time.Duration) *RedisAdapter {
	return &RedisAdapter{
		client:         client,
		idempotencyTTL: idempotencyTTL,
		cacheTTL:       cacheTTL,
	}
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, idempotencyKeyPrefix+key, 1, r.idempotencyTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (r *RedisAdapter) ReleaseIdempotency(ctx context.Context, key string) error {
	return r.client.Del(ctx, idempotencyKeyPrefix+key).Err()
}

func (r *RedisAdapter) GetFulfillment(ctx context.Context, id int64) (*domain.Fulfillment, error) {
	data, err := r.client.Get(ctx, fulfillmentKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var f domain.Fulfillment
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *RedisAdapter) SetFulfillment(ctx context.Context, f *domain.Fulfillment) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, fulfillmentKey(f.ID), data, r.cacheTTL).Err()
}

func fulfillmentKey(id int64) string {
	return fulfillmentKeyPrefix + strconv.FormatInt(id, 10)
}
