package fixturecast

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps model blobs in redis under a key prefix
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ ArtifactStore = (*RedisStore)(nil)

// NewRedisStore wraps an existing client
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "fixturecast:model:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

// OpenRedisStore parses a redis:// URL and checks the server answers
func OpenRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return NewRedisStore(client, ""), nil
}

// Save stores the model without expiry, replacing any previous blob
func (s *RedisStore) Save(ctx context.Context, name string, m *Model) error {
	if err := validateArtifactName(name); err != nil {
		return err
	}
	data, err := m.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+name, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store model in redis: %w", err)
	}
	return nil
}

// Load fetches and validates the named model
func (s *RedisStore) Load(ctx context.Context, name string) (*Model, error) {
	if err := validateArtifactName(name); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, s.prefix+name).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%s in redis: %w", name, ErrModelNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read model from redis: %w", err)
	}
	return UnmarshalModel(data)
}

// Close releases the client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
