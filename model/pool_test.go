package model

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ostraka/segstream/errors"
)

// slowLoader counts loads and can be made to fail, for coalescing tests.
type slowLoader struct {
	delay time.Duration
	fail  atomic.Bool
	loads atomic.Int64
}

func (l *slowLoader) Load(ctx context.Context, mode Mode) (Backend, error) {
	l.loads.Add(1)
	if l.delay > 0 {
		select {
		case <-time.After(l.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if l.fail.Load() {
		return nil, errors.Newf("synthetic load failure for %s", mode)
	}
	return NewDevBackend(mode), nil
}

func TestPoolGetCachesBackend(t *testing.T) {
	loader := &slowLoader{}
	pool := NewPool(loader, nil)
	ctx := context.Background()

	a, err := pool.Get(ctx, ModeBalanced)
	require.NoError(t, err)
	b, err := pool.Get(ctx, ModeBalanced)
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.EqualValues(t, 1, loader.loads.Load())
}

// Concurrent first calls for the same mode coalesce onto a single load and
// all observe the same backend.
func TestPoolGetCoalescesConcurrentLoads(t *testing.T) {
	loader := &slowLoader{delay: 50 * time.Millisecond}
	pool := NewPool(loader, nil)
	ctx := context.Background()

	const callers = 8
	backends := make([]Backend, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, err := pool.Get(ctx, ModeFast)
			assert.NoError(t, err)
			backends[i] = b
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, loader.loads.Load())
	for i := 1; i < callers; i++ {
		assert.Same(t, backends[0], backends[i])
	}
}

// A failed load is not cached: every waiter sees the error and the next Get
// retries.
func TestPoolGetRetriesAfterFailure(t *testing.T) {
	loader := &slowLoader{}
	loader.fail.Store(true)
	pool := NewPool(loader, nil)
	ctx := context.Background()

	_, err := pool.Get(ctx, ModeAccurate)
	require.Error(t, err)

	loader.fail.Store(false)
	b, err := pool.Get(ctx, ModeAccurate)
	require.NoError(t, err)
	assert.NotNil(t, b)
	assert.EqualValues(t, 2, loader.loads.Load())
}

func TestPoolWarmRequiresLoad(t *testing.T) {
	pool := NewPool(&slowLoader{}, nil)
	ctx := context.Background()

	// Marking an unloaded mode is a no-op.
	pool.MarkWarm(ModeSOTA)
	assert.False(t, pool.IsWarm(ModeSOTA))

	_, err := pool.Get(ctx, ModeSOTA)
	require.NoError(t, err)
	pool.MarkWarm(ModeSOTA)
	assert.True(t, pool.IsWarm(ModeSOTA))
}

func TestPoolClearResetsEverything(t *testing.T) {
	loader := &slowLoader{}
	pool := NewPool(loader, nil)
	ctx := context.Background()

	_, err := pool.Get(ctx, ModeFast)
	require.NoError(t, err)
	pool.MarkWarm(ModeFast)

	pool.Clear()
	assert.False(t, pool.IsWarm(ModeFast))

	// The pool stays usable: the next Get reloads.
	_, err = pool.Get(ctx, ModeFast)
	require.NoError(t, err)
	assert.EqualValues(t, 2, loader.loads.Load())
}

// Clear during an in-flight load fails that load's waiters but leaves the
// pool usable.
func TestPoolClearDuringLoad(t *testing.T) {
	loader := &slowLoader{delay: 100 * time.Millisecond}
	pool := NewPool(loader, nil)
	ctx := context.Background()

	errCh := make(chan error, 1)
	go func() {
		_, err := pool.Get(ctx, ModeBalanced)
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	pool.Clear()

	err := <-errCh
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrPoolClosed))

	b, err := pool.Get(ctx, ModeBalanced)
	require.NoError(t, err)
	assert.NotNil(t, b)
}

func TestPoolGetRespectsContext(t *testing.T) {
	loader := &slowLoader{delay: time.Second}
	pool := NewPool(loader, nil)

	// First caller owns the load; a second caller with a short deadline
	// gives up waiting.
	go pool.Get(context.Background(), ModeSOTA)
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := pool.Get(ctx, ModeSOTA)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestParseModeRoundTrip(t *testing.T) {
	for _, m := range Modes() {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseMode("turbo")
	assert.Error(t, err)
}

func TestProfilesComplete(t *testing.T) {
	for _, m := range Modes() {
		p := m.Profile()
		assert.NotEmpty(t, p.Name, m.String())
		assert.Positive(t, p.InputH)
		assert.Positive(t, p.InputW)
		assert.Positive(t, m.NumClasses())
		assert.Len(t, m.Labels(), m.NumClasses())
	}
	assert.Equal(t, 100, ModeSOTA.Profile().Queries)
}
