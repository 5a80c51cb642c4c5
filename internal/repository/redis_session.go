package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "strengthscope:session:"

// RedisSessionRepo stores sessions as JSON values with a TTL.
type RedisSessionRepo struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient connects to the server named by a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

// NewRedisSessionRepo creates a RedisSessionRepo; every Save refreshes the TTL.
func NewRedisSessionRepo(client *redis.Client, ttl time.Duration) *RedisSessionRepo {
	return &RedisSessionRepo{client: client, ttl: ttl}
}

func (r *RedisSessionRepo) Save(ctx context.Context, rec *SessionRecord) error {
	rec.UpdatedAt = time.Now().UTC()
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, sessionKeyPrefix+rec.Session.ID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("saving session %s: %w", rec.Session.ID, err)
	}
	return nil
}

func (r *RedisSessionRepo) Get(ctx context.Context, id string) (*SessionRecord, error) {
	data, err := r.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", id, err)
	}
	return decodeRecord(id, data)
}

func (r *RedisSessionRepo) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	return nil
}

// Ping checks connectivity.
func (r *RedisSessionRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

var _ SessionRepo = (*RedisSessionRepo)(nil)
