package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/karlseguin/ccache/v3"
)

// counterTTL keeps Incr counters alive for the life of the process.
const counterTTL = 100 * 365 * 24 * time.Hour

// Memory is an in-process LRU cache.
type Memory struct {
	lru *ccache.Cache[[]byte]

	// mu serialises Incr's read-modify-write.
	mu sync.Mutex
}

var _ Cache = (*Memory)(nil)

// NewMemory returns a Memory cache holding at most maxItems entries.
func NewMemory(maxItems int64) *Memory {
	return &Memory{
		lru: ccache.New(ccache.Configure[[]byte]().MaxSize(maxItems)),
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	item := m.lru.Get(key)
	if item == nil || item.Expired() {
		return nil, false
	}
	return item.Value(), true
}

func (m *Memory) Set(_ context.Context, key string, val []byte, ttl time.Duration) {
	m.lru.Set(key, val, ttl)
}

func (m *Memory) Delete(_ context.Context, key string) {
	m.lru.Delete(key)
}

func (m *Memory) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	if item := m.lru.Get(key); item != nil && !item.Expired() {
		cur, err := strconv.ParseInt(string(item.Value()), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("cache.Memory.Incr: %w", err)
		}
		n = cur
	}
	n++
	m.lru.Set(key, []byte(strconv.FormatInt(n, 10)), counterTTL)
	return n, nil
}

// Close stops the cache's background worker.
func (m *Memory) Close() {
	m.lru.Stop()
}
