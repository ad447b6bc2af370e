package purchase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

// IdempotencyStore remembers payment references whose purchase already
// committed, keyed to the order they paid for. It only short-cuts redeliveries:
// the purchases table is the record of what was processed, so a store that
// lost an entry costs a database round trip, never a second grant.
type IdempotencyStore interface {
	// Lookup returns the order remembered for ref, if any.
	Lookup(ctx context.Context, ref string) (order string, found bool, err error)
	// Remember records that ref committed for order.
	Remember(ctx context.Context, ref, order string) error
}

// RedisStore shares completed references between every instance pointing at the same Redis.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisStoreWithClient(client, DefaultKeyPrefix, cfg.TTL), nil
}

// NewRedisStoreWithClient creates a store over an existing client
func NewRedisStoreWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (s *RedisStore) Lookup(ctx context.Context, ref string) (string, bool, error) {
	order, err := s.client.Get(ctx, s.keyPrefix+ref).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to look up payment reference: %w", err)
	}
	return order, true, nil
}

// Remember writes the order with the store TTL
func (s *RedisStore) Remember(ctx context.Context, ref, order string) error {
	if err := s.client.Set(ctx, s.keyPrefix+ref, order, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to remember payment reference: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// MemoryStore keeps completed references in process. Entries expire after the
// TTL or when the store is full, whichever comes first.
type MemoryStore struct {
	orders *expirable.LRU[string, string]
}

// NewMemoryStore creates an in-process store
func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	if size <= 0 {
		size = DefaultMemoryStoreSize
	}
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &MemoryStore{orders: expirable.NewLRU[string, string](size, nil, ttl)}
}

func (s *MemoryStore) Lookup(ctx context.Context, ref string) (string, bool, error) {
	order, ok := s.orders.Get(ref)
	return order, ok, nil
}

func (s *MemoryStore) Remember(ctx context.Context, ref, order string) error {
	s.orders.Add(ref, order)
	return nil
}

var (
	_ IdempotencyStore = (*RedisStore)(nil)
	_ IdempotencyStore = (*MemoryStore)(nil)
)
