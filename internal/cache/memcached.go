package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// Memcached is a Cache backed by one or more memcached servers.
type Memcached struct {
	client *memcache.Client
	log    *slog.Logger
	now    func() time.Time
}

var _ Cache = (*Memcached)(nil)

// NewMemcached returns a Memcached cache over the given server addresses.
func NewMemcached(log *slog.Logger, servers ...string) *Memcached {
	return &Memcached{client: memcache.New(servers...), log: log, now: time.Now}
}

// Ping checks that every server is reachable.
func (m *Memcached) Ping(_ context.Context) error {
	if err := m.client.Ping(); err != nil {
		return fmt.Errorf("cache.Memcached.Ping: %w", err)
	}
	return nil
}

// maxKeyLen is memcached's key length limit.
const maxKeyLen = 250

// memcachedKey returns key unchanged when memcached accepts it. Keys that are
// too long or contain spaces or control characters are replaced by the
// SHA-256 of the key, keeping the prefix up to the last ':' readable.
func memcachedKey(key string) string {
	if len(key) <= maxKeyLen && validKey(key) {
		return key
	}
	sum := sha256.Sum256([]byte(key))
	prefix := ""
	if i := strings.LastIndexByte(key, ':'); i >= 0 && i < 64 && validKey(key[:i+1]) {
		prefix = key[:i+1]
	}
	return prefix + "sha256:" + hex.EncodeToString(sum[:])
}

func validKey(key string) bool {
	for i := 0; i < len(key); i++ {
		if key[i] <= ' ' || key[i] == 0x7f {
			return false
		}
	}
	return true
}

func (m *Memcached) Get(ctx context.Context, key string) ([]byte, bool) {
	key = memcachedKey(key)
	item, err := m.client.Get(key)
	if err != nil {
		if !errors.Is(err, memcache.ErrCacheMiss) {
			m.log.WarnContext(ctx, "cache get failed", "backend", "memcached", "key", key, "error", err)
		}
		return nil, false
	}
	return item.Value, true
}

func (m *Memcached) Set(ctx context.Context, key string, val []byte, ttl time.Duration) {
	key = memcachedKey(key)
	item := &memcache.Item{Key: key, Value: val, Expiration: int32(ttl / time.Second)}
	if err := m.client.Set(item); err != nil {
		m.log.WarnContext(ctx, "cache set failed", "backend", "memcached", "key", key, "error", err)
	}
}

func (m *Memcached) Delete(ctx context.Context, key string) {
	key = memcachedKey(key)
	if err := m.client.Delete(key); err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		m.log.WarnContext(ctx, "cache delete failed", "backend", "memcached", "key", key, "error", err)
	}
}

// Incr increments key. memcached may evict counters, so a missing counter is
// seeded from the clock rather than zero; a restarted counter never revisits
// a value handed out before the eviction.
func (m *Memcached) Incr(_ context.Context, key string) (int64, error) {
	key = memcachedKey(key)
	for attempt := 0; attempt < 2; attempt++ {
		n, err := m.client.Increment(key, 1)
		if err == nil {
			return int64(n), nil
		}
		if !errors.Is(err, memcache.ErrCacheMiss) {
			return 0, fmt.Errorf("cache.Memcached.Incr: %w", err)
		}

		seed := m.now().UnixNano()
		err = m.client.Add(&memcache.Item{Key: key, Value: []byte(strconv.FormatInt(seed, 10))})
		if err == nil {
			return seed, nil
		}
		if !errors.Is(err, memcache.ErrNotStored) {
			return 0, fmt.Errorf("cache.Memcached.Incr: seed: %w", err)
		}
		// Another writer seeded it first; increment theirs.
	}
	return 0, fmt.Errorf("cache.Memcached.Incr: counter %q kept disappearing", key)
}
