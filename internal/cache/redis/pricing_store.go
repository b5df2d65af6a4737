package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/davidbz/llmcost/internal/domain"
	"github.com/davidbz/llmcost/internal/observability"
)

// Config contains Redis settings. An empty URL disables the Redis store.
type Config struct {
	URL string `env:"REDIS_URL"`
	Key string `env:"REDIS_KEY" envDefault:"llmcost:pricing"`
}

// PricingStore keeps the pricing snapshot in a single Redis key so several
// processes can share one fetched list.
type PricingStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewPricingStore creates a Redis-backed pricing store. Entries expire after
// ttl; a non-positive ttl keeps them until cleared.
func NewPricingStore(client *redis.Client, key string, ttl time.Duration) *PricingStore {
	return &PricingStore{
		client: client,
		key:    key,
		ttl:    ttl,
	}
}

// NewClient parses a redis:// URL into a client.
func NewClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

// Load returns the stored snapshot, or nil when the key does not exist.
func (s *PricingStore) Load(ctx context.Context) (*domain.PricingSnapshot, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil //nolint:nilnil // A missing key is an empty store
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read pricing snapshot: %w", err)
	}

	var snapshot domain.PricingSnapshot
	if unmarshalErr := json.Unmarshal(data, &snapshot); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to decode pricing snapshot: %w", unmarshalErr)
	}

	return &snapshot, nil
}

// Save replaces the stored snapshot.
func (s *PricingStore) Save(ctx context.Context, snapshot *domain.PricingSnapshot) error {
	if snapshot == nil {
		return errors.New("snapshot cannot be nil")
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode pricing snapshot: %w", err)
	}

	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}

	if setErr := s.client.Set(ctx, s.key, data, ttl).Err(); setErr != nil {
		return fmt.Errorf("failed to write pricing snapshot: %w", setErr)
	}

	observability.FromContext(ctx).Debug("pricing snapshot stored",
		observability.String("key", s.key),
		observability.Int("models", len(snapshot.Data)),
		observability.Int("size", len(data)))

	return nil
}

// Clear removes the stored snapshot.
func (s *PricingStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to clear pricing snapshot: %w", err)
	}
	return nil
}
