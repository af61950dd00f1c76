package valuecache_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/on-the-ground/easing_ive_go/easing"
	"github.com/on-the-ground/easing_ive_go/valuecache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(p float64) valuecache.Key {
	return valuecache.Key{Instance: "spring(100,10)", Progress: p}
}

func TestCache_ComputesOncePerKey(t *testing.T) {
	c := valuecache.New(valuecache.NewTrieStore(64))
	var calls atomic.Int32
	compute := func(v float64) func(context.Context) (valuecache.Entry, bool) {
		return func(context.Context) (valuecache.Entry, bool) {
			calls.Add(1)
			return valuecache.Entry{Value: v * 2}, true
		}
	}

	for i := 0; i < 5; i++ {
		assert.Equal(t, 1.0, c.Get(context.Background(), key(0.5), compute(0.5)).Value)
		assert.Equal(t, 1.4, c.Get(context.Background(), key(0.7), compute(0.7)).Value)
	}
	assert.Equal(t, int32(2), calls.Load())

	stats := c.Stats()
	assert.Equal(t, uint64(8), stats.Hits)
	assert.Equal(t, uint64(2), stats.Misses)
	assert.Equal(t, uint64(2), stats.Computations)
}

func TestCache_ErroredIsTerminalPerKey(t *testing.T) {
	store := valuecache.NewTrieStore(64)
	c := valuecache.New(store)
	boom := errors.New("boom")
	var calls atomic.Int32

	for i := 0; i < 3; i++ {
		e := c.Get(context.Background(), key(0.3), func(context.Context) (valuecache.Entry, bool) {
			calls.Add(1)
			return valuecache.Entry{Err: boom}, true
		})
		res := e.Result()
		assert.False(t, res.OK())
		assert.Equal(t, easing.ReasonErrored, res.Reason)
		assert.ErrorIs(t, res.Err, boom)
	}
	assert.Equal(t, int32(1), calls.Load())

	_, ok := store.Load(key(0.1))
	assert.False(t, ok)
}

func TestCache_NonCacheableIsRecomputed(t *testing.T) {
	c := valuecache.New(valuecache.NewTrieStore(64))
	var calls atomic.Int32
	compute := func(context.Context) (valuecache.Entry, bool) {
		calls.Add(1)
		return valuecache.Entry{Err: easing.ErrContextDiscarded}, false
	}
	c.Get(context.Background(), key(0.5), compute)
	c.Get(context.Background(), key(0.5), compute)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCache_ConcurrentMissesShareComputation(t *testing.T) {
	c := valuecache.New(valuecache.NewTrieStore(64))
	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	results := make([]float64, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Get(context.Background(), key(0.9), func(context.Context) (valuecache.Entry, bool) {
				calls.Add(1)
				<-release
				return valuecache.Entry{Value: 0.81}, true
			}).Value
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, 0.81, r)
	}
	// duplicate work is allowed, but it must be bounded by the number of callers
	assert.LessOrEqual(t, calls.Load(), int32(len(results)))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}

func TestCache_EvictionOnlyForcesRecompute(t *testing.T) {
	store := valuecache.NewTrieStore(2)
	c := valuecache.New(store)
	var calls atomic.Int32
	compute := func(p float64) func(context.Context) (valuecache.Entry, bool) {
		return func(context.Context) (valuecache.Entry, bool) {
			calls.Add(1)
			return valuecache.Entry{Value: p * p}, true
		}
	}

	for round := 0; round < 3; round++ {
		for _, p := range []float64{0.1, 0.2, 0.3, 0.4, 0.5} {
			assert.Equal(t, p*p, c.Get(context.Background(), key(p), compute(p)).Value)
		}
	}
	assert.Greater(t, store.Rotations(), uint64(0))
	assert.Greater(t, calls.Load(), int32(5))
}

func TestCache_ProgressBitsAreExact(t *testing.T) {
	store := valuecache.NewTrieStore(16)
	store.Store(key(1.4), valuecache.Entry{Value: 1.1})

	e, ok := store.Load(key(1.4))
	require.True(t, ok)
	assert.Equal(t, 1.1, e.Value)

	same := 1.40000000000000001
	require.Equal(t, math.Float64bits(1.4), math.Float64bits(same))
	_, ok = store.Load(key(same))
	assert.True(t, ok)

	_, ok = store.Load(key(math.Nextafter(1.4, 2)))
	assert.False(t, ok)
	_, ok = store.Load(key(1.40000001))
	assert.False(t, ok)
}

func TestCache_CancelledCallerDoesNotFailOthers(t *testing.T) {
	c := valuecache.New(valuecache.NewTrieStore(16))
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	compute := func(ctx context.Context) (valuecache.Entry, bool) {
		calls.Add(1)
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return valuecache.Entry{Err: err}, false
		}
		return valuecache.Entry{Value: 0.25}, true
	}

	leaderCtx, cancel := context.WithCancel(context.Background())
	leader := make(chan valuecache.Entry, 1)
	go func() { leader <- c.Get(leaderCtx, key(0.5), compute) }()
	<-started

	follower := make(chan valuecache.Entry, 1)
	go func() { follower <- c.Get(context.Background(), key(0.5), compute) }()
	require.Eventually(t, func() bool { return c.Stats().Misses == 2 }, time.Second, time.Millisecond)

	cancel()
	e := <-leader
	assert.ErrorIs(t, e.Err, context.Canceled)

	close(release)
	e = <-follower
	require.NoError(t, e.Err)
	assert.Equal(t, 0.25, e.Value)
	assert.Equal(t, int32(1), calls.Load())

	e = c.Get(context.Background(), key(0.5), compute)
	assert.Equal(t, 0.25, e.Value)
	assert.Equal(t, uint64(1), c.Stats().Hits)
}

func TestRistrettoStore(t *testing.T) {
	store, err := valuecache.NewRistrettoStore(128)
	require.NoError(t, err)
	defer store.Close()

	c := valuecache.New(store)
	var calls atomic.Int32
	compute := func(context.Context) (valuecache.Entry, bool) {
		calls.Add(1)
		return valuecache.Entry{Value: 0.25}, true
	}

	assert.Equal(t, 0.25, c.Get(context.Background(), key(0.5), compute).Value)
	store.Wait()
	assert.Equal(t, 0.25, c.Get(context.Background(), key(0.5), compute).Value)
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
	assert.LessOrEqual(t, calls.Load(), int32(2))
}
