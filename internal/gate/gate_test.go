package gate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anirame128/fortnite-insight-dashboard/internal/config"
	"github.com/anirame128/fortnite-insight-dashboard/internal/logging"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var errUpstream = errors.New("upstream 503")

func newTestGate(clock *fakeClock) *Gate {
	return New(DefaultConfig(), WithClock(clock.Now), WithLogger(logging.NewNop()))
}

func fail(ctx context.Context) error { return errUpstream }
func succeed(ctx context.Context) error { return nil }

func TestGate_StartsIdle(t *testing.T) {
	g := newTestGate(newFakeClock())
	assert.Equal(t, Idle, g.State())
	assert.Equal(t, 0, g.Snapshot().Failures)
}

func TestGate_ThirdFailureStartsCooldown(t *testing.T) {
	clock := newFakeClock()
	g := newTestGate(clock)
	ctx := context.Background()

	assert.Equal(t, errUpstream, g.Do(ctx, fail))
	assert.Equal(t, errUpstream, g.Do(ctx, fail))
	assert.Equal(t, Idle, g.State())
	assert.Equal(t, 2, g.Snapshot().Failures)

	err := g.Do(ctx, fail)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCoolingDown))
	assert.True(t, errors.Is(err, errUpstream))
	assert.Equal(t, Cooldown, g.State())

	var ce *CooldownError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "Multiple failed attempts. Please wait 30 s before retrying.", ce.Message)
	assert.Equal(t, 30, ce.RetryAfterSeconds())
}

func TestGate_CooldownRejectsWithoutCallingOp(t *testing.T) {
	clock := newFakeClock()
	g := newTestGate(clock)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_ = g.Do(ctx, fail)
	}

	clock.Advance(10 * time.Second)
	called := false
	err := g.Do(ctx, func(ctx context.Context) error {
		called = true
		return nil
	})

	assert.False(t, called)
	var ce *CooldownError
	require.True(t, errors.As(err, &ce))
	assert.Nil(t, ce.Err)
	assert.Equal(t, 20*time.Second, ce.Remaining)
	assert.Equal(t, 20, ce.RetryAfterSeconds())
}

func TestGate_CooldownExpiryResetsFailures(t *testing.T) {
	clock := newFakeClock()
	g := newTestGate(clock)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_ = g.Do(ctx, fail)
	}

	clock.Advance(30 * time.Second)
	assert.Equal(t, Idle, g.State())
	assert.Equal(t, 0, g.Snapshot().Failures)

	// a fresh streak is needed to trip again
	assert.Equal(t, errUpstream, g.Do(ctx, fail))
	assert.Equal(t, errUpstream, g.Do(ctx, fail))
	assert.Equal(t, Idle, g.State())
}

func TestGate_SuccessResetsFailures(t *testing.T) {
	g := newTestGate(newFakeClock())
	ctx := context.Background()

	_ = g.Do(ctx, fail)
	_ = g.Do(ctx, fail)
	require.NoError(t, g.Do(ctx, succeed))
	assert.Equal(t, 0, g.Snapshot().Failures)

	_ = g.Do(ctx, fail)
	_ = g.Do(ctx, fail)
	assert.Equal(t, Idle, g.State())
}

func TestGate_ConcurrentFetchRejected(t *testing.T) {
	g := newTestGate(newFakeClock())

	require.NoError(t, g.Begin())
	assert.Equal(t, Fetching, g.State())

	err := g.Do(context.Background(), succeed)
	assert.ErrorIs(t, err, ErrFetchInFlight)
	// the rejected attempt does not count as a failure
	assert.Equal(t, 0, g.Snapshot().Failures)

	require.NoError(t, g.End(nil))
	assert.Equal(t, Idle, g.State())
	assert.NoError(t, g.Do(context.Background(), succeed))
}

func TestGate_OverlappingCallers(t *testing.T) {
	g := newTestGate(newFakeClock())
	release := make(chan struct{})
	started := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = g.Do(context.Background(), func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started
	assert.ErrorIs(t, g.Begin(), ErrFetchInFlight)
	close(release)
	wg.Wait()
	assert.Equal(t, Idle, g.State())
}

func TestGate_Cancel(t *testing.T) {
	g := newTestGate(newFakeClock())
	require.NoError(t, g.Begin())
	g.Cancel()
	assert.Equal(t, Idle, g.State())
	assert.Equal(t, 0, g.Snapshot().Failures)
}

func TestConfigFrom(t *testing.T) {
	c := ConfigFrom(config.GateConfig{MaxFailures: 5, Cooldown: time.Minute})
	assert.Equal(t, 5, c.MaxFailures)
	assert.Equal(t, "Multiple failed attempts. Please wait 60 s before retrying.", c.Message())

	assert.Equal(t, DefaultConfig(), ConfigFrom(config.GateConfig{}))
}

func TestMemoryStore_SessionsAreIndependent(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore(DefaultConfig(), WithClock(clock.Now), WithLogger(logging.NewNop()))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Begin(ctx, "alice"))
		_ = store.End(ctx, "alice", errUpstream)
	}

	assert.ErrorIs(t, store.Begin(ctx, "alice"), ErrCoolingDown)
	require.NoError(t, store.Begin(ctx, "bob"))
	assert.ErrorIs(t, store.Begin(ctx, "bob"), ErrFetchInFlight)
	store.Cancel(ctx, "bob")

	snap, err := store.Snapshot(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, Cooldown, snap.State)
	assert.Equal(t, clock.Now().Add(30*time.Second), snap.CooldownUntil)
}

func TestMemoryStore_Sweep(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore(DefaultConfig(), WithClock(clock.Now), WithLogger(logging.NewNop()))
	ctx := context.Background()

	require.NoError(t, store.Begin(ctx, "done"))
	require.NoError(t, store.End(ctx, "done", nil))
	require.NoError(t, store.Begin(ctx, "failing"))
	_ = store.End(ctx, "failing", errUpstream)

	clock.Advance(time.Hour)
	assert.Equal(t, 1, store.Sweep(10*time.Minute))
	assert.Equal(t, 1, store.Len())
}

func TestNewStore(t *testing.T) {
	store, err := NewStore(config.GateConfig{Store: "memory"}, logging.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)
	assert.NoError(t, store.Close())

	_, err = NewStore(config.GateConfig{Store: "etcd"}, nil)
	assert.Error(t, err)
}
