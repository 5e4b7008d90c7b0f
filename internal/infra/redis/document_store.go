package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"telegram-giveaway-bot/internal/domain"
	"telegram-giveaway-bot/internal/domain/ports/repository"
)

var _ repository.DocumentStore = (*DocumentStore)(nil)

// DocumentStore keeps each document as one non-expiring string key.
type DocumentStore struct {
	client RedisClient
	prefix string
}

func NewDocumentStore(client RedisClient, prefix string) *DocumentStore {
	if prefix == "" {
		prefix = "giveaway:doc:"
	}
	return &DocumentStore{client: client, prefix: prefix}
}

func (s *DocumentStore) key(name string) string { return s.prefix + name }

func (s *DocumentStore) Load(ctx context.Context, name string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(name))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", name, err)
	}
	return []byte(data), nil
}

func (s *DocumentStore) Save(ctx context.Context, name string, body []byte) error {
	if err := s.client.Set(ctx, s.key(name), body, 0); err != nil {
		return fmt.Errorf("redis set %s: %w", name, err)
	}
	return nil
}
