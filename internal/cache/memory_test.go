package cache_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripplanner/backend/internal/cache"
)

func newMemory(t *testing.T) *cache.Memory {
	t.Helper()
	m := cache.NewMemory(100)
	t.Cleanup(m.Close)
	return m
}

func TestMemory_SetGetDelete(t *testing.T) {
	m := newMemory(t)
	ctx := context.Background()

	_, ok := m.Get(ctx, "k")
	assert.False(t, ok)

	m.Set(ctx, "k", []byte("v"), time.Minute)
	got, ok := m.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	m.Delete(ctx, "k")
	_, ok = m.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemory_ExpiredEntryIsMiss(t *testing.T) {
	m := newMemory(t)
	ctx := context.Background()

	m.Set(ctx, "k", []byte("v"), -time.Second)

	_, ok := m.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemory_Incr(t *testing.T) {
	m := newMemory(t)
	ctx := context.Background()

	n, err := m.Incr(ctx, "gen")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = m.Incr(ctx, "gen")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	raw, ok := m.Get(ctx, "gen")
	require.True(t, ok)
	assert.Equal(t, "2", string(raw))
}

func TestMemory_IncrConcurrent(t *testing.T) {
	m := newMemory(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.Incr(ctx, "gen")
		}()
	}
	wg.Wait()

	raw, ok := m.Get(ctx, "gen")
	require.True(t, ok)
	assert.Equal(t, "50", string(raw))
}

func TestMemory_IncrNonNumeric(t *testing.T) {
	m := newMemory(t)
	ctx := context.Background()

	m.Set(ctx, "gen", []byte("abc"), time.Minute)

	_, err := m.Incr(ctx, "gen")
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	var c cache.Cache = cache.Nop{}
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), time.Minute)
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}
