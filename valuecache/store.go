package valuecache

import (
	"fmt"
	"math"
	"strconv"

	ristretto "github.com/dgraph-io/ristretto/v2"

	"github.com/on-the-ground/easing_ive_go/easing"
	"github.com/on-the-ground/easing_ive_go/pure"
)

// Key identifies one memoized evaluation.
type Key struct {
	Instance easing.InstanceKey
	Progress float64
}

// String renders the key with the exact bit pattern of the progress value.
func (k Key) String() string {
	return string(k.Instance) + "@" + strconv.FormatUint(math.Float64bits(k.Progress), 16)
}

// Entry is a terminal evaluation outcome: a value, or the fault that user logic raised
// for this exact progress value.
type Entry struct {
	Value float64
	Err   error
}

// Result converts the entry to the host-boundary result.
func (e Entry) Result() easing.Result {
	if e.Err != nil {
		return easing.Invalid(easing.ReasonOf(e.Err), e.Err)
	}
	return easing.Ok(e.Value)
}

// Store is the backing table of a Cache. Implementations may forget entries at
// any time but must never return an entry other than the one stored for a key.
type Store interface {
	Load(key Key) (Entry, bool)
	Store(key Key, entry Entry)
}

// TrieStore keeps entries in a two-generation pure.Trie.
type TrieStore struct {
	trie *pure.Trie[Entry]
}

var _ Store = (*TrieStore)(nil)

// NewTrieStore creates a store that keeps between size and 2*size entries.
func NewTrieStore(size int) *TrieStore {
	if size <= 0 {
		size = 1
	}
	return &TrieStore{trie: pure.NewTrie[Entry](uint32(size))}
}

func trieKeys(key Key) []pure.Key {
	return []pure.Key{string(key.Instance), math.Float64bits(key.Progress)}
}

func (s *TrieStore) Load(key Key) (Entry, bool) {
	return s.trie.Load(trieKeys(key))
}

func (s *TrieStore) Store(key Key, entry Entry) {
	s.trie.Store(trieKeys(key), entry)
}

// Rotations reports how many generations were dropped.
func (s *TrieStore) Rotations() uint64 {
	return s.trie.Rotations()
}

// RistrettoStore keeps entries in a cost-bounded ristretto cache.
// Ristretto may refuse or delay admission; a refused entry is simply recomputed.
type RistrettoStore struct {
	*ristretto.Cache[string, Entry]
}

var _ Store = RistrettoStore{}

// NewRistrettoStore creates a store admitting roughly size entries.
func NewRistrettoStore(size int) (RistrettoStore, error) {
	if size <= 0 {
		size = 1
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, Entry]{
		NumCounters: int64(size) * 10, // track frequency of 10x the admitted keys.
		MaxCost:     int64(size),      // each entry costs 1.
		BufferItems: 64,               // number of keys per Get buffer.
	})
	if err != nil {
		return RistrettoStore{}, fmt.Errorf("failed to create ristretto store: %w", err)
	}
	return RistrettoStore{Cache: cache}, nil
}

func (r RistrettoStore) Load(key Key) (Entry, bool) {
	return r.Cache.Get(key.String())
}

func (r RistrettoStore) Store(key Key, entry Entry) {
	r.Cache.Set(key.String(), entry, 1)
}
