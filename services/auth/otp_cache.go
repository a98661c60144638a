package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/patrickmn/go-cache"
)

// OTPRecord is a stored login code: its hash and absolute expiry.
type OTPRecord struct {
	Hash      string
	ExpiresAt time.Time
}

// OTPCache holds login codes for principals that have no database record.
type OTPCache interface {
	// Put overwrites any code stored under key.
	Put(ctx context.Context, key string, rec OTPRecord, ttl time.Duration) error
	// Get reports whether a code is stored under key.
	Get(ctx context.Context, key string) (OTPRecord, bool, error)
	// DeleteIfMatch removes the entry only if it is still rec, and reports
	// whether this call removed it.
	DeleteIfMatch(ctx context.Context, key string, rec OTPRecord) (bool, error)
}

// MemoryOTPCache is a process-local OTPCache. It is not shared between instances.
type MemoryOTPCache struct {
	mu    sync.Mutex
	store *cache.Cache
}

func NewMemoryOTPCache() *MemoryOTPCache {
	return &MemoryOTPCache{store: cache.New(10*time.Minute, time.Minute)}
}

func (m *MemoryOTPCache) Put(_ context.Context, key string, rec OTPRecord, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store.Set(key, rec, ttl)
	return nil
}

func (m *MemoryOTPCache) Get(_ context.Context, key string) (OTPRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.store.Get(key)
	if !ok {
		return OTPRecord{}, false, nil
	}
	return v.(OTPRecord), true, nil
}

func (m *MemoryOTPCache) DeleteIfMatch(_ context.Context, key string, rec OTPRecord) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.store.Get(key)
	if !ok {
		return false, nil
	}
	cur := v.(OTPRecord)
	if cur.Hash != rec.Hash || !cur.ExpiresAt.Equal(rec.ExpiresAt) {
		return false, nil
	}
	m.store.Delete(key)
	return true, nil
}

// compareAndDelete removes KEYS[1] only while it still holds ARGV[1].
var compareAndDelete = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisOTPCache shares login codes between instances through Redis.
type RedisOTPCache struct {
	client *redis.Client
}

func NewRedisOTPCache(client *redis.Client) *RedisOTPCache {
	return &RedisOTPCache{client: client}
}

type redisOTPEntry struct {
	Hash    string `json:"h"`
	Expires int64  `json:"e"`
}

func encodeOTPRecord(rec OTPRecord) (string, error) {
	b, err := json.Marshal(redisOTPEntry{Hash: rec.Hash, Expires: rec.ExpiresAt.UnixNano()})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *RedisOTPCache) Put(ctx context.Context, key string, rec OTPRecord, ttl time.Duration) error {
	val, err := encodeOTPRecord(rec)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key, val, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store login code: %w", err)
	}
	return nil
}

func (r *RedisOTPCache) Get(ctx context.Context, key string) (OTPRecord, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return OTPRecord{}, false, nil
	}
	if err != nil {
		return OTPRecord{}, false, fmt.Errorf("failed to read login code: %w", err)
	}
	var e redisOTPEntry
	if err := json.Unmarshal([]byte(val), &e); err != nil {
		return OTPRecord{}, false, fmt.Errorf("corrupt login code entry: %w", err)
	}
	return OTPRecord{Hash: e.Hash, ExpiresAt: time.Unix(0, e.Expires)}, true, nil
}

func (r *RedisOTPCache) DeleteIfMatch(ctx context.Context, key string, rec OTPRecord) (bool, error) {
	val, err := encodeOTPRecord(rec)
	if err != nil {
		return false, err
	}
	n, err := compareAndDelete.Run(ctx, r.client, []string{key}, val).Int()
	if err != nil {
		return false, fmt.Errorf("failed to remove login code: %w", err)
	}
	return n == 1, nil
}
