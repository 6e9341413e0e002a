// internal/wizard/persist-draft/store.go
package persistdraft

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"bursary-portal/internal/common/database"
)

// Store is string-keyed durable storage scoped to one session.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Backend hands out per-session stores.
type Backend interface {
	Session(sessionID string) Store
	Sessions(ctx context.Context) ([]string, error)
}

// ==========================
// Memory
// ==========================

type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string]map[string]string)}
}

func (b *MemoryBackend) Session(sessionID string) Store {
	return &memoryStore{backend: b, session: sessionID}
}

func (b *MemoryBackend) Sessions(_ context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.data))
	for id, kv := range b.data {
		if len(kv) > 0 {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out, nil
}

type memoryStore struct {
	backend *MemoryBackend
	session string
}

// NewMemoryStore returns a standalone in-memory store.
func NewMemoryStore() Store {
	return NewMemoryBackend().Session("default")
}

func (s *memoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.backend.mu.RLock()
	defer s.backend.mu.RUnlock()
	v, ok := s.backend.data[s.session][key]
	return v, ok, nil
}

func (s *memoryStore) Set(_ context.Context, key, value string) error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	kv, ok := s.backend.data[s.session]
	if !ok {
		kv = make(map[string]string)
		s.backend.data[s.session] = kv
	}
	kv[key] = value
	return nil
}

func (s *memoryStore) Delete(_ context.Context, keys ...string) error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	kv := s.backend.data[s.session]
	for _, k := range keys {
		delete(kv, k)
	}
	if len(kv) == 0 {
		delete(s.backend.data, s.session)
	}
	return nil
}

// ==========================
// Redis
// ==========================

// RedisBackend stores keys as <namespace>:<session>:<key>.
type RedisBackend struct {
	client    *database.RedisClient
	namespace string
	ttl       time.Duration
}

func NewRedisBackend(client *database.RedisClient, config *Config) *RedisBackend {
	ns := "bursary"
	var ttl time.Duration
	if config != nil {
		if config.Namespace != "" {
			ns = config.Namespace
		}
		ttl = config.TTL
	}
	return &RedisBackend{client: client, namespace: ns, ttl: ttl}
}

func (b *RedisBackend) Session(sessionID string) Store {
	return &redisStore{backend: b, prefix: fmt.Sprintf("%s:%s:", b.namespace, sessionID)}
}

func (b *RedisBackend) Sessions(ctx context.Context) ([]string, error) {
	keys, err := b.client.Keys(ctx, b.namespace+":*")
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	for _, k := range keys {
		rest := strings.TrimPrefix(k, b.namespace+":")
		if i := strings.Index(rest, ":"); i > 0 {
			seen[rest[:i]] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

type redisStore struct {
	backend *RedisBackend
	prefix  string
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.backend.client.Get(ctx, s.prefix+key)
	if database.IsNil(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *redisStore) Set(ctx context.Context, key, value string) error {
	if err := s.backend.client.Set(ctx, s.prefix+key, value, s.backend.ttl); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.prefix + k
	}
	if err := s.backend.client.Del(ctx, full...); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
