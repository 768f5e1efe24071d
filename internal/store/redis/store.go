package redis

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/bookmarker/internal/domain"
	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the backend
const DefaultPrefix = "bookmarker:"

// Store is a store.Backend over Redis. Values are written without TTL.
type Store struct {
	client *redis.Client
	prefix string
}

// NewStore creates a new Redis store. An empty prefix selects DefaultPrefix.
func NewStore(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{
		client: client,
		prefix: prefix,
	}
}

// Key returns the Redis key holding the named value
func (s *Store) Key(name string) string {
	return s.prefix + name
}

// Get reads all names with a single MGET
func (s *Store) Get(ctx context.Context, names ...string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(names))
	if len(names) == 0 {
		return out, nil
	}

	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = s.Key(name)
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read keys: %w", err)
	}

	for i, v := range vals {
		switch val := v.(type) {
		case nil:
			// Missing key
		case string:
			out[names[i]] = []byte(val)
		default:
			return nil, fmt.Errorf("unexpected value type %T for %s", v, keys[i])
		}
	}
	return out, nil
}

// Set writes every value inside MULTI/EXEC
func (s *Store) Set(ctx context.Context, values map[string][]byte) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		s.queueSet(ctx, pipe, values)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write values: %w", err)
	}
	return nil
}

// CompareAndSet watches guardKey and writes values only if it still holds
// expected when EXEC runs
func (s *Store) CompareAndSet(ctx context.Context, guardKey string, expected []byte, values map[string][]byte) error {
	key := s.Key(guardKey)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			current = nil
		} else if err != nil {
			return fmt.Errorf("failed to read %s: %w", key, err)
		}

		if (current == nil) != (expected == nil) || !bytes.Equal(current, expected) {
			return domain.ErrConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			s.queueSet(ctx, pipe, values)
			return nil
		})
		return err
	}, key)

	switch {
	case errors.Is(err, redis.TxFailedErr), errors.Is(err, domain.ErrConflict):
		return domain.ErrConflict
	case err != nil:
		return fmt.Errorf("failed to write values: %w", err)
	}
	return nil
}

func (s *Store) queueSet(ctx context.Context, pipe redis.Pipeliner, values map[string][]byte) {
	for name, v := range values {
		pipe.Set(ctx, s.Key(name), v, 0)
	}
}

// Ping checks the connection
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
