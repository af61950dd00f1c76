package pure

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Key is one level of a trie path. It must be comparable or implement fmt.Stringer.
type Key any

func tableKey(k Key) Key {
	if stringer, ok := k.(fmt.Stringer); ok {
		return stringer.String()
	}
	return k
}

// Trie is a bounded memo table for pure functions, keyed by a fixed-length path.
//
// Entries live in two generations. Stores go to the current generation; when it
// holds maxSize entries the previous generation is dropped and the current one
// takes its place. A hit in the previous generation is copied forward. Rotation
// only ever forgets entries: a later Load either misses or returns the value that
// was stored for that path.
type Trie[O any] struct {
	mu       sync.RWMutex
	current  *sync.Map
	previous *sync.Map
	size     atomic.Uint32
	maxSize  uint32
	rotation atomic.Uint64
}

// NewTrie creates a trie holding at most maxSize entries per generation.
func NewTrie[O any](maxSize uint32) *Trie[O] {
	if maxSize == 0 {
		panic("maxSize should be greater than 0")
	}
	return &Trie[O]{
		current:  &sync.Map{},
		previous: &sync.Map{},
		maxSize:  maxSize,
	}
}

// Load returns the value stored for keys, if any generation still holds it.
func (t *Trie[O]) Load(keys []Key) (O, bool) {
	t.mu.RLock()
	current, previous := t.current, t.previous
	t.mu.RUnlock()

	if v, ok := lookup(current, keys); ok {
		return v.(O), true
	}
	if v, ok := lookup(previous, keys); ok {
		t.Store(keys, v.(O))
		return v.(O), true
	}
	var zero O
	return zero, false
}

// Store records value for keys in the current generation, rotating first if it is full.
// An entry already present in the current generation is kept.
func (t *Trie[O]) Store(keys []Key, value O) {
	if len(keys) == 0 {
		panic("store: empty keys")
	}
	if t.size.Load() >= t.maxSize {
		t.rotate()
	}

	t.mu.RLock()
	current := t.current
	t.mu.RUnlock()

	m, k := traverse(current, keys, true)
	if _, loaded := m.LoadOrStore(k, value); !loaded {
		t.size.Add(1)
	}
}

// Len approximates the number of entries in the current generation.
func (t *Trie[O]) Len() int {
	return int(t.size.Load())
}

// Rotations returns how many times a generation has been dropped.
func (t *Trie[O]) Rotations() uint64 {
	return t.rotation.Load()
}

func (t *Trie[O]) rotate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.size.Load() < t.maxSize {
		// another writer rotated first
		return
	}
	t.previous = t.current
	t.current = &sync.Map{}
	t.size.Store(0)
	t.rotation.Add(1)
}

func lookup(root *sync.Map, keys []Key) (any, bool) {
	if len(keys) == 0 {
		panic("load: empty keys")
	}
	m, k := traverse(root, keys, false)
	if m == nil {
		return nil, false
	}
	return m.Load(k)
}

// traverse walks every key but the last, creating intermediate levels when create is set.
func traverse(root *sync.Map, keys []Key, create bool) (*sync.Map, Key) {
	length := len(keys)
	targetMap := root
	for _, k := range keys[:length-1] {
		k = tableKey(k)
		v, ok := targetMap.Load(k)
		if !ok {
			if !create {
				return nil, nil
			}
			v, _ = targetMap.LoadOrStore(k, &sync.Map{})
		}
		targetMap = v.(*sync.Map)
	}
	return targetMap, tableKey(keys[length-1])
}
