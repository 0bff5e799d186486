package gate

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anirame128/fortnite-insight-dashboard/internal/logging"
)

// Test helper: get Redis URL from env or default
func getRedisURL() string {
	if url := os.Getenv("REDIS_URL"); url != "" {
		return url
	}
	return "redis://localhost:6379"
}

func newTestRedisStore(t *testing.T, cfg Config) *RedisStore {
	t.Helper()
	prefix := fmt.Sprintf("fni-test:%d", time.Now().UnixNano())
	store, err := NewRedisStore(RedisConfig{URL: getRedisURL(), KeyPrefix: prefix}, cfg, WithLogger(logging.NewNop()))
	if err != nil {
		t.Skip("Redis not available, skipping test")
	}
	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := store.client.Keys(ctx, prefix+":*").Result()
		if len(keys) > 0 {
			store.client.Del(ctx, keys...)
		}
		_ = store.Close()
	})
	return store
}

func TestRedisStore_InFlightLease(t *testing.T) {
	store := newTestRedisStore(t, DefaultConfig())
	ctx := context.Background()

	require.NoError(t, store.Begin(ctx, "s1"))
	assert.ErrorIs(t, store.Begin(ctx, "s1"), ErrFetchInFlight)

	snap, err := store.Snapshot(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, Fetching, snap.State)

	require.NoError(t, store.End(ctx, "s1", nil))
	assert.NoError(t, store.Begin(ctx, "s1"))
	store.Cancel(ctx, "s1")
}

func TestRedisStore_Cooldown(t *testing.T) {
	store := newTestRedisStore(t, Config{MaxFailures: 3, Cooldown: time.Second})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		require.NoError(t, store.Begin(ctx, "s2"))
		assert.Equal(t, errUpstream, store.End(ctx, "s2", errUpstream))
	}
	require.NoError(t, store.Begin(ctx, "s2"))
	err := store.End(ctx, "s2", errUpstream)
	assert.ErrorIs(t, err, ErrCoolingDown)
	assert.ErrorIs(t, err, errUpstream)

	assert.ErrorIs(t, store.Begin(ctx, "s2"), ErrCoolingDown)

	time.Sleep(1100 * time.Millisecond)
	snap, err := store.Snapshot(ctx, "s2")
	require.NoError(t, err)
	assert.Equal(t, Idle, snap.State)
	assert.Equal(t, 0, snap.Failures)
	assert.NoError(t, store.Begin(ctx, "s2"))
}

func TestRedisStore_BadURL(t *testing.T) {
	_, err := NewRedisStore(RedisConfig{URL: "redis://127.0.0.1:1"}, DefaultConfig())
	assert.Error(t, err)
}
