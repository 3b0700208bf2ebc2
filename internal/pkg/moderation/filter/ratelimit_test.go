package filter

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	cacheport "go-agora/internal/infrastructure/cache/port"
	moderation "go-agora/internal/pkg/moderation/domain"
)

// fakeCache is an in-memory counter store with a switchable failure mode.
type fakeCache struct {
	mu     sync.Mutex
	values map[string]int64
	broken bool
}

func newFakeCache() *fakeCache { return &fakeCache{values: make(map[string]int64)} }

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.broken {
		return "", errors.New("cache down")
	}
	v, ok := f.values[key]
	if !ok {
		return "", cacheport.ErrMiss
	}
	return strconv.FormatInt(v, 10), nil
}

func (f *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, _ := strconv.ParseInt(value, 10, 64)
	f.values[key] = n
	return nil
}

func (f *fakeCache) Incr(_ context.Context, key string, _ time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.broken {
		return 0, errors.New("cache down")
	}
	f.values[key]++
	return f.values[key], nil
}

func (f *fakeCache) Del(_ context.Context, keys ...string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := int64(0)
	for _, k := range keys {
		if _, ok := f.values[k]; ok {
			delete(f.values, k)
			n++
		}
	}
	return n, nil
}

func (f *fakeCache) Ping(context.Context) error { return nil }
func (f *fakeCache) Close() error               { return nil }

func TestRateLimiterAdmitsWithinLimit(t *testing.T) {
	rl := NewRateLimiter(zap.NewNop(), newFakeCache(), "messages", 10, 10*time.Second)

	for i := 0; i < 10; i++ {
		res := rl.Check(context.Background(), "u-1")
		require.Equal(t, moderation.ActionAllow, res.Action, "message %d within limit", i+1)
	}
}

func TestRateLimiterBlocksBeyondLimit(t *testing.T) {
	rl := NewRateLimiter(zap.NewNop(), newFakeCache(), "messages", 3, 10*time.Second)

	for i := 0; i < 3; i++ {
		require.Equal(t, moderation.ActionAllow, rl.Check(context.Background(), "u-1").Action)
	}

	res := rl.Check(context.Background(), "u-1")
	assert.Equal(t, moderation.ActionBlock, res.Action)
	assert.Equal(t, moderation.SeverityMedium, res.Severity)
	assert.Equal(t, moderation.ReasonRateLimited, res.Reason)
	assert.False(t, res.Allowed)
}

func TestRateLimiterIsPerAuthor(t *testing.T) {
	rl := NewRateLimiter(zap.NewNop(), newFakeCache(), "messages", 1, 10*time.Second)

	require.Equal(t, moderation.ActionAllow, rl.Check(context.Background(), "u-1").Action)
	require.Equal(t, moderation.ActionBlock, rl.Check(context.Background(), "u-1").Action)

	// A different author has an untouched window.
	assert.Equal(t, moderation.ActionAllow, rl.Check(context.Background(), "u-2").Action)
}

func TestRateLimiterFailsOpenOnStoreError(t *testing.T) {
	cache := newFakeCache()
	cache.broken = true
	rl := NewRateLimiter(zap.NewNop(), cache, "messages", 1, 10*time.Second)

	for i := 0; i < 5; i++ {
		res := rl.Check(context.Background(), "u-1")
		assert.Equal(t, moderation.ActionAllow, res.Action)
		assert.True(t, res.Allowed)
	}
}

func TestRateLimiterFailsOpenWithoutStore(t *testing.T) {
	rl := NewRateLimiter(zap.NewNop(), nil, "messages", 1, 10*time.Second)
	assert.Equal(t, moderation.ActionAllow, rl.Check(context.Background(), "u-1").Action)
}
