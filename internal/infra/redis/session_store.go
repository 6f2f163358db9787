package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"gamification-engine/internal/domain"
)

// SessionStore keeps live sessions in Redis as JSON with a TTL. A session
// that outlives its TTL simply disappears, which is the storage-level form
// of the expired state; the service also marks past-due sessions expired
// while they are still readable, so replays keep working for a while.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Save(ctx context.Context, session *domain.GameSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(session.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: save session: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*domain.GameSession, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get session: %v", domain.ErrStorageUnavailable, err)
	}
	var session domain.GameSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

func (s *SessionStore) key(id string) string {
	return "session:" + id
}
