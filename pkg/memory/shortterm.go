// Package memory provides the agents' persistence: a Redis-backed
// short-term history with an in-memory fallback, and an optional Neo4j
// long-term note graph.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store is the short-term memory interface shared by all agents. It keeps
// an append-only history of items per agent.
type Store interface {
	// Append persists an item for the given agent.
	Append(ctx context.Context, agent, item string) error

	// History returns up to limit most recent items for the agent, oldest
	// first.
	History(ctx context.Context, agent string, limit int) ([]string, error)
}

func agentKey(agent string) string {
	return "stm:" + agent
}

// RedisStore keeps per-agent history in Redis lists. Safe for concurrent
// use from multiple goroutines.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore connects to Redis and verifies connectivity with a ping.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis unreachable: %w", err)
	}

	return &RedisStore{rdb: rdb}, nil
}

// Append pushes an item onto the agent's history list.
func (s *RedisStore) Append(ctx context.Context, agent, item string) error {
	if err := s.rdb.RPush(ctx, agentKey(agent), item).Err(); err != nil {
		return fmt.Errorf("failed to append to short-term memory: %w", err)
	}
	return nil
}

// History returns the last limit items for the agent.
func (s *RedisStore) History(ctx context.Context, agent string, limit int) ([]string, error) {
	items, err := s.rdb.LRange(ctx, agentKey(agent), int64(-limit), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read short-term memory: %w", err)
	}
	return items, nil
}

// Close closes the Redis connection. Implements io.Closer.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// InMemoryStore is the fallback store for dev and tests. Safe for
// concurrent use.
type InMemoryStore struct {
	mu    sync.Mutex
	items map[string][]string
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{items: make(map[string][]string)}
}

// Append records an item for the agent.
func (s *InMemoryStore) Append(_ context.Context, agent, item string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[agent] = append(s.items[agent], item)
	return nil
}

// History returns the last limit items for the agent.
func (s *InMemoryStore) History(_ context.Context, agent string, limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := s.items[agent]
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	out := make([]string, len(history))
	copy(out, history)
	return out, nil
}

// NewStore returns a Redis-backed store when url is set and reachable,
// otherwise the in-memory fallback. The fallback path is expected for
// local runs without Redis; it is logged, not an error.
func NewStore(ctx context.Context, url string, log *zap.Logger) Store {
	if log == nil {
		log = zap.NewNop()
	}
	if url == "" {
		log.Info("short-term memory using in-memory store")
		return NewInMemoryStore()
	}

	store, err := NewRedisStore(ctx, url)
	if err != nil {
		log.Warn("falling back to in-memory short-term store", zap.Error(err))
		return NewInMemoryStore()
	}
	log.Info("short-term memory using redis", zap.String("url", url))
	return store
}
