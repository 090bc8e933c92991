// Package redisstore persists the operator session in Redis.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/walletmine/admin-gateway/internal/core/domain"
	"github.com/walletmine/admin-gateway/internal/core/port"
)

// SessionStore keeps the whole persisted session under a single key as one
// JSON value, so token and identity are written and cleared in one command.
type SessionStore struct {
	client *redis.Client
	key    string
}

// NewSessionStore constructs a store using the provided Redis client and key prefix.
func NewSessionStore(client *redis.Client, keyPrefix string) *SessionStore {
	key := "session"
	if keyPrefix != "" {
		key = fmt.Sprintf("%s:%s", keyPrefix, key)
	}
	return &SessionStore{client: client, key: key}
}

// Load fetches the persisted session, or port.ErrNoSession when absent.
func (s *SessionStore) Load(ctx context.Context) (*domain.PersistedSession, error) {
	raw, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, port.ErrNoSession
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var record domain.PersistedSession
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, fmt.Errorf("decode session record: %w", err)
	}

	return &record, nil
}

// Save writes the persisted session in a single SET.
func (s *SessionStore) Save(ctx context.Context, session domain.PersistedSession) error {
	encoded, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session record: %w", err)
	}

	if err := s.client.Set(ctx, s.key, encoded, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Clear removes the persisted session. Clearing an absent session is a no-op.
func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

var _ port.SessionStore = (*SessionStore)(nil)
