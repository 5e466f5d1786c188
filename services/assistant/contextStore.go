// File: services/assistant/contextStore.go
package assistant

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"medichat/models"

	"github.com/go-redis/redis/v8"
)

const sessionContextPrefix = "assistant:ctx:"

// ContextStore owns SessionContext entries keyed by session id. A Get on an
// unknown session returns an empty context rather than an error, so the
// orchestrator never needs a separate create step. Implementations may be
// wrapped by TTL eviction; the assistant treats an evicted context the same
// as a fresh one.
type ContextStore interface {
	Get(ctx context.Context, sessionID string) (*models.SessionContext, error)
	Set(ctx context.Context, sessionID string, sc *models.SessionContext) error
	Clear(ctx context.Context, sessionID string) error
}

// RedisContextStore persists contexts as JSON blobs with a TTL, so a
// multi-instance deployment sees the same session state on every turn.
type RedisContextStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisContextStore(client *redis.Client, ttl time.Duration) *RedisContextStore {
	return &RedisContextStore{client: client, ttl: ttl}
}

func (s *RedisContextStore) Get(ctx context.Context, sessionID string) (*models.SessionContext, error) {
	key := sessionContextPrefix + sessionID
	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return &models.SessionContext{}, nil
	}
	if err != nil {
		return nil, err
	}
	var sc models.SessionContext
	if err := json.Unmarshal([]byte(data), &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (s *RedisContextStore) Set(ctx context.Context, sessionID string, sc *models.SessionContext) error {
	key := sessionContextPrefix + sessionID
	b, err := json.Marshal(sc)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, b, s.ttl).Err()
}

func (s *RedisContextStore) Clear(ctx context.Context, sessionID string) error {
	key := sessionContextPrefix + sessionID
	return s.client.Del(ctx, key).Err()
}

// MemoryContextStore backs tests and single-node development.
type MemoryContextStore struct {
	mu       sync.RWMutex
	contexts map[string]models.SessionContext
}

func NewMemoryContextStore() *MemoryContextStore {
	return &MemoryContextStore{contexts: make(map[string]models.SessionContext)}
}

func (s *MemoryContextStore) Get(ctx context.Context, sessionID string) (*models.SessionContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sc, ok := s.contexts[sessionID]
	if !ok {
		return &models.SessionContext{}, nil
	}
	copied := sc
	return &copied, nil
}

func (s *MemoryContextStore) Set(ctx context.Context, sessionID string, sc *models.SessionContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts[sessionID] = *sc
	return nil
}

func (s *MemoryContextStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.contexts, sessionID)
	return nil
}
