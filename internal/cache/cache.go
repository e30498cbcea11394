package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"vachan/backend/internal/factcheck"
)

// Reports stores model-generated reports keyed by claim fingerprint.
type Reports interface {
	Get(ctx context.Context, key string) (factcheck.Report, bool, error)
	Set(ctx context.Context, key string, report factcheck.Report) error
}

// Config drives cache construction.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
	Prefix        string
}

const defaultTTL = 6 * time.Hour

// New returns a redis-backed cache when an address is configured and an
// in-process cache otherwise.
func New(ctx context.Context, cfg Config) (Reports, error) {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return NewMemory(ttl), nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     strings.TrimSpace(cfg.RedisAddr),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedis(rdb, cfg.Prefix, ttl), nil
}

type memoryEntry struct {
	at     time.Time
	report factcheck.Report
}

// Memory is a TTL cache held in process memory. Expired entries are dropped
// when read and by a sweep that runs at most once per TTL on writes.
type Memory struct {
	ttl     time.Duration
	entries sync.Map // map[string]memoryEntry
	now     func() time.Time

	sweepMu   sync.Mutex
	lastSweep time.Time
}

// NewMemory constructs an in-process cache.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Memory{ttl: ttl, now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) (factcheck.Report, bool, error) {
	if entry, ok := m.entries.Load(key); ok {
		cached := entry.(memoryEntry)
		if m.now().Sub(cached.at) < m.ttl {
			return cached.report, true, nil
		}
		m.entries.Delete(key)
	}
	return factcheck.Report{}, false, nil
}

func (m *Memory) Set(_ context.Context, key string, report factcheck.Report) error {
	now := m.now()
	m.sweep(now)
	m.entries.Store(key, memoryEntry{at: now, report: report})
	return nil
}

func (m *Memory) sweep(now time.Time) {
	m.sweepMu.Lock()
	if now.Sub(m.lastSweep) < m.ttl {
		m.sweepMu.Unlock()
		return
	}
	m.lastSweep = now
	m.sweepMu.Unlock()

	m.entries.Range(func(key, value any) bool {
		if now.Sub(value.(memoryEntry).at) >= m.ttl {
			m.entries.Delete(key)
		}
		return true
	})
}

// Redis shares cached reports between instances.
type Redis struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis wraps an existing client.
func NewRedis(rdb *redis.Client, prefix string, ttl time.Duration) *Redis {
	if strings.TrimSpace(prefix) == "" {
		prefix = "vachan:factcheck:"
	}
	return &Redis{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, key string) (factcheck.Report, bool, error) {
	raw, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return factcheck.Report{}, false, nil
	}
	if err != nil {
		return factcheck.Report{}, false, fmt.Errorf("redis get: %w", err)
	}
	var report factcheck.Report
	if err := json.Unmarshal(raw, &report); err != nil {
		return factcheck.Report{}, false, fmt.Errorf("decode cached report: %w", err)
	}
	return report, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, report factcheck.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := r.rdb.Set(ctx, r.prefix+key, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close releases the redis connection pool.
func (r *Redis) Close() error {
	return r.rdb.Close()
}
