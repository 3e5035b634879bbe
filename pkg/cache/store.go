package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the backing key/value store for the cache tier. Keys handed to a
// Store are already hashed; tag bookkeeping is the store's responsibility so
// that Redis can use native sets for it.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	// SetNX sets the key only if it does not exist. Used for cache locks.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	AddTags(ctx context.Context, key string, tags []string) error
	TaggedKeys(ctx context.Context, tag string) ([]string, error)
	ClearTag(ctx context.Context, tag string) error
}

const tagSetPrefix = "cachetag:"

// redisStore is the production Store backed by Redis.
type redisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Store on top of a Redis client
func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *redisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *redisStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

func (s *redisStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, key, value, ttl).Result()
}

func (s *redisStore) AddTags(ctx context.Context, key string, tags []string) error {
	for _, tag := range tags {
		if err := s.client.SAdd(ctx, tagSetPrefix+tag, key).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (s *redisStore) TaggedKeys(ctx context.Context, tag string) ([]string, error) {
	return s.client.SMembers(ctx, tagSetPrefix+tag).Result()
}

func (s *redisStore) ClearTag(ctx context.Context, tag string) error {
	return s.client.Del(ctx, tagSetPrefix+tag).Err()
}
