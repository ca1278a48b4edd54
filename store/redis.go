package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tailored-agentic-units/concierge/catalog"
)

const (
	redisKeyPrefix = "catalog:"
	defaultTTL     = 30 * 24 * time.Hour
)

// RedisStore keeps payloads in Redis under "catalog:<key>". Reads refresh
// the key's TTL so catalogs in use do not expire.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed Store. A non-positive ttl uses the
// default of 30 days.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) key(key string) string {
	return redisKeyPrefix + key
}

func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	var keys []string
	it := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for it.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(it.Val(), redisKeyPrefix))
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *RedisStore) Load(ctx context.Context, key string) (catalog.Payload, error) {
	if err := validateKey(key); err != nil {
		return catalog.Payload{}, err
	}

	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return catalog.Payload{}, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	if err != nil {
		return catalog.Payload{}, fmt.Errorf("%w: %s: %v", ErrLoadFailed, key, err)
	}

	var payload catalog.Payload
	if err := json.Unmarshal(val, &payload); err != nil {
		return catalog.Payload{}, fmt.Errorf("%w: %s: %w", ErrLoadFailed, key, err)
	}

	// A failed refresh only shortens the key's life; the load still succeeded.
	_ = s.client.Expire(ctx, s.key(key), s.ttl).Err()

	return payload, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, payload catalog.Payload) error {
	if err := validateKey(key); err != nil {
		return err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, key, err)
	}
	if err := s.client.Set(ctx, s.key(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, key := range keys {
		if err := validateKey(key); err != nil {
			return err
		}
		full = append(full, s.key(key))
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
