package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/local1284/membership/internal/config"
	"github.com/redis/go-redis/v9"
)

// Class is a sensitive-action category with its own window and ceiling.
type Class string

const (
	ClassGeneral       Class = "general"
	ClassLogin         Class = "login"
	ClassPasswordReset Class = "password-reset"
	ClassAdminAction   Class = "admin-action"
)

// CounterStore is the shared keyed counter table. Incr must be atomic per
// key: concurrent bursts may not observe the same count.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, retryAfter time.Duration, err error)
}

// Result of a limiter check.
type Result struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Limiter bounds request rate per identity-or-IP key per action class.
type Limiter struct {
	store  CounterStore
	limits map[Class]config.RateLimit
}

func New(store CounterStore, cfg *config.Config) *Limiter {
	return &Limiter{
		store: store,
		limits: map[Class]config.RateLimit{
			ClassGeneral:       cfg.RateLimitGeneral,
			ClassLogin:         cfg.RateLimitLogin,
			ClassPasswordReset: cfg.RateLimitPasswordReset,
			ClassAdminAction:   cfg.RateLimitAdminAction,
		},
	}
}

// Check admits exactly ceiling requests per key per window. Unknown classes
// fall back to the general limits. Store errors fail open; callers log them.
func (l *Limiter) Check(ctx context.Context, class Class, key string) (Result, error) {
	limit, ok := l.limits[class]
	if !ok {
		limit = l.limits[ClassGeneral]
	}

	count, retryAfter, err := l.store.Incr(ctx, "rl:"+string(class)+":"+key, limit.Window)
	if err != nil {
		return Result{Allowed: true}, err
	}
	if count > int64(limit.Max) {
		return Result{Allowed: false, RetryAfter: retryAfter}, nil
	}
	return Result{Allowed: true}, nil
}

// RedisCounterStore backs the window table with shared Redis counters so
// ceilings hold across processes.
type RedisCounterStore struct {
	client *redis.Client
}

func NewRedisCounterStore(client *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{client: client}
}

func (s *RedisCounterStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	if count == 1 {
		s.client.Expire(ctx, key, window)
	}
	ttl, err := s.client.PTTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = window
	}
	return count, ttl, nil
}

// MemoryCounterStore is a process-local store for tests and single-node
// development runs.
type MemoryCounterStore struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
	now     func() time.Time
}

type memoryWindow struct {
	count     int64
	expiresAt time.Time
}

func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{
		windows: make(map[string]*memoryWindow),
		now:     time.Now,
	}
}

func (s *MemoryCounterStore) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w, ok := s.windows[key]
	if !ok || now.After(w.expiresAt) {
		w = &memoryWindow{expiresAt: now.Add(window)}
		s.windows[key] = w
	}
	w.count++
	return w.count, w.expiresAt.Sub(now), nil
}

// SetClock overrides the time source, letting tests roll windows over.
func (s *MemoryCounterStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
