package artifacts

import (
	"context"
	"delivery-eta-service/internal/ports"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisArtifactStore keeps artifacts as plain string values under Prefix+name.
type RedisArtifactStore struct {
	Client redis.UniversalClient
	Prefix string
}

func NewRedisArtifactStore(client redis.UniversalClient, prefix string) *RedisArtifactStore {
	if prefix == "" {
		prefix = "eta:artifacts:"
	}
	return &RedisArtifactStore{Client: client, Prefix: prefix}
}

func (s *RedisArtifactStore) key(name string) string { return s.Prefix + name }

func (s *RedisArtifactStore) Location(name string) string {
	return "redis:" + s.key(name)
}

func (s *RedisArtifactStore) Save(ctx context.Context, name string, data []byte) error {
	if s.Client == nil {
		return errors.New("artifact store: redis client is nil")
	}
	if err := validName(name); err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}

	if err := s.Client.Set(ctx, s.key(name), data, 0).Err(); err != nil {
		return fmt.Errorf("save artifact %q: %w", name, err)
	}
	return nil
}

func (s *RedisArtifactStore) Load(ctx context.Context, name string) ([]byte, error) {
	if s.Client == nil {
		return nil, errors.New("artifact store: redis client is nil")
	}
	if err := validName(name); err != nil {
		return nil, fmt.Errorf("load artifact: %w", err)
	}

	data, err := s.Client.Get(ctx, s.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("load artifact %q: %w", name, ports.ErrArtifactNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load artifact %q: %w", name, err)
	}
	return data, nil
}
