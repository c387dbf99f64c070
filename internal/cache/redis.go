package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// deleteMatchingScript removes every key matching ARGV[1]. Scripts run
// atomically in Redis, so the whole family disappears in one step.
var deleteMatchingScript = redis.NewScript(`
local keys = redis.call('KEYS', ARGV[1])
local deleted = 0
for i = 1, #keys, 500 do
	local last = math.min(i + 499, #keys)
	deleted = deleted + redis.call('DEL', unpack(keys, i, last))
end
return deleted
`)

type RedisOptions struct {
	Host         string
	Port         int
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func NewRedisClient(opts RedisOptions) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	})
}

// RedisStore is the shared Store used by every API instance. Each call is
// bounded by opTimeout so an unavailable Redis surfaces as an error instead
// of hanging the request.
type RedisStore struct {
	client    redis.UniversalClient
	opTimeout time.Duration
}

func NewRedisStore(client redis.UniversalClient, opTimeout time.Duration) *RedisStore {
	if opTimeout <= 0 {
		opTimeout = 250 * time.Millisecond
	}

	return &RedisStore{client: client, opTimeout: opTimeout}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	value, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %q: %w", key, err)
	}

	return value, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := ValidateKey(key); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (s *RedisStore) DeleteMatching(ctx context.Context, pattern string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	deleted, err := deleteMatchingScript.Run(ctx, s.client, nil, pattern).Int64()
	if err != nil {
		return 0, fmt.Errorf("redis delete matching %q: %w", pattern, err)
	}
	return deleted, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	return s.client.Ping(ctx).Err()
}

var _ Store = (*RedisStore)(nil)
