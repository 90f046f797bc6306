package verify

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "verify:code:"

// RedisStore keeps issued codes in Redis, using key TTLs for expiry. Codes
// survive process restarts and are shared across replicas.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a RedisStore from a redis connection URL.
func NewRedisStore(url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	return &RedisStore{client: redis.NewClient(opts)}, nil
}

// Ping checks connectivity; used by the readiness probe.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Put(ctx context.Context, phone, code string, ttl time.Duration) error {
	return s.client.Set(ctx, redisKeyPrefix+phone, code, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, phone string) (string, error) {
	code, err := s.client.Get(ctx, redisKeyPrefix+phone).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return code, nil
}

func (s *RedisStore) Delete(ctx context.Context, phone string) error {
	return s.client.Del(ctx, redisKeyPrefix+phone).Err()
}

// MemoryStore keeps issued codes in process memory. It is the fallback when
// no Redis URL is configured, suitable for a single instance.
type MemoryStore struct {
	mu    sync.Mutex
	codes map[string]memoryEntry
	now   func() time.Time
}

type memoryEntry struct {
	code      string
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		codes: make(map[string]memoryEntry),
		now:   time.Now,
	}
}

func (s *MemoryStore) Put(_ context.Context, phone, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[phone] = memoryEntry{code: code, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, phone string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.codes[phone]
	if !ok {
		return "", nil
	}
	if s.now().After(e.expiresAt) {
		delete(s.codes, phone)
		return "", nil
	}
	return e.code, nil
}

func (s *MemoryStore) Delete(_ context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, phone)
	return nil
}
