// Package valuecache memoizes (instance, progress) → result.
//
// Evaluation is assumed to be a pure function of the instance identity and the
// progress value, so a stored entry is returned as-is and never recomputed while
// it is retained. Stores may evict; eviction only forces recomputation.
package valuecache

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits         uint64
	Misses       uint64
	Computations uint64
}

// Cache is a read-through cache over a Store.
type Cache struct {
	store Store
	group singleflight.Group

	hits         atomic.Uint64
	misses       atomic.Uint64
	computations atomic.Uint64
}

// New creates a cache over store.
func New(store Store) *Cache {
	return &Cache{store: store}
}

// Get returns the entry for key, computing it on a miss.
//
// compute reports whether its entry is cacheable; transient faults such as a
// discarded evaluation context must not be memoized. Concurrent misses for the
// same key share one computation, which runs under a context that is never
// cancelled. A caller whose ctx is done gets an entry carrying ctx.Err(); that
// entry is not stored.
func (c *Cache) Get(ctx context.Context, key Key, compute func(ctx context.Context) (Entry, bool)) Entry {
	if e, ok := c.store.Load(key); ok {
		c.hits.Add(1)
		return e
	}
	c.misses.Add(1)

	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key.String(), func() (any, error) {
		if e, ok := c.store.Load(key); ok {
			return e, nil
		}
		c.computations.Add(1)
		e, cacheable := compute(shared)
		if cacheable {
			c.store.Store(key, e)
		}
		return e, nil
	})
	select {
	case <-ctx.Done():
		return Entry{Err: ctx.Err()}
	case res := <-ch:
		return res.Val.(Entry)
	}
}

// Stats returns the current counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:         c.hits.Load(),
		Misses:       c.misses.Load(),
		Computations: c.computations.Load(),
	}
}
