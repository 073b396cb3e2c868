package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RefreshTokenStore registra el dueño de cada jti de refresh emitido.
// Take consume el jti de forma atómica: dos rotaciones concurrentes del mismo token no pueden ganar ambas.
type RefreshTokenStore interface {
	Save(ctx context.Context, jti, userID string, ttl time.Duration) error
	Take(ctx context.Context, jti string) (string, error)
	Revoke(ctx context.Context, jti string) error
}

const (
	redisTimeout      = 500 * time.Millisecond
	refreshKeyPrefix  = "auth:refresh:"
	defaultRefreshTTL = 30 * 24 * time.Hour
)

type refreshEntry struct {
	userID    string
	expiresAt time.Time
}

type memoryRefreshTokenStore struct {
	mu      sync.Mutex
	entries map[string]refreshEntry
	now     func() time.Time
}

// NewMemoryRefreshTokenStore se usa sin Redis; las sesiones no sobreviven a un reinicio.
func NewMemoryRefreshTokenStore() RefreshTokenStore {
	return &memoryRefreshTokenStore{
		entries: make(map[string]refreshEntry),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *memoryRefreshTokenStore) Save(_ context.Context, jti, userID string, ttl time.Duration) error {
	jti = strings.TrimSpace(jti)
	if jti == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultRefreshTTL
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[jti] = refreshEntry{userID: userID, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *memoryRefreshTokenStore) Take(_ context.Context, jti string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[strings.TrimSpace(jti)]
	if !ok {
		return "", nil
	}
	delete(s.entries, strings.TrimSpace(jti))
	if s.now().After(entry.expiresAt) {
		return "", nil
	}
	return entry.userID, nil
}

func (s *memoryRefreshTokenStore) Revoke(_ context.Context, jti string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, strings.TrimSpace(jti))
	return nil
}

type refreshKV interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	GetDel(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisRefreshTokenStore struct {
	kv refreshKV
}

func NewRedisRefreshTokenStore(client redis.UniversalClient) RefreshTokenStore {
	if client == nil {
		return nil
	}
	return &redisRefreshTokenStore{kv: client}
}

func (s *redisRefreshTokenStore) Save(ctx context.Context, jti, userID string, ttl time.Duration) error {
	jti = strings.TrimSpace(jti)
	if jti == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultRefreshTTL
	}
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	return s.kv.Set(ctx, refreshKeyPrefix+jti, userID, ttl).Err()
}

func (s *redisRefreshTokenStore) Take(ctx context.Context, jti string) (string, error) {
	jti = strings.TrimSpace(jti)
	if jti == "" {
		return "", nil
	}
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	userID, err := s.kv.GetDel(ctx, refreshKeyPrefix+jti).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return userID, err
}

func (s *redisRefreshTokenStore) Revoke(ctx context.Context, jti string) error {
	jti = strings.TrimSpace(jti)
	if jti == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	return s.kv.Del(ctx, refreshKeyPrefix+jti).Err()
}
