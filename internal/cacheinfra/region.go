package cacheinfra

import (
	"sort"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/viccon/sturdyc"
)

// Entry is a shared tier record. Value holds the stored result in read-only
// mode; Payload holds its encoded form in copy mode. Gens records the
// generation of every collection the result depends on at compute time.
type Entry struct {
	Key         string
	Collections []string
	Value       any
	Payload     []byte
	Gens        map[string]uint64
	Created     time.Time
	Handle      uint64
}

// Region is the shared tier: one sturdyc client holding the entries of every
// collection, a generation counter per collection and a membership index used
// to drop a collection's entries on invalidation.
//
// Invalidation and Put for a collection are serialized on a per-collection
// mutex. Put is a compare-and-set against the generations captured when the
// entry was computed, so a result computed before an invalidation can never
// be stored after it.
type Region struct {
	client  *sturdyc.Client[*Entry]
	gens    *xsync.MapOf[string, uint64]
	locks   *xsync.MapOf[string, *sync.Mutex]
	members *xsync.MapOf[string, map[string]struct{}]
	limit   int
}

// NewRegion validates cfg and builds an empty region store.
func NewRegion(cfg Config) (*Region, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[*Entry](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)

	return &Region{
		client:  client,
		gens:    xsync.NewMapOf[string, uint64](),
		locks:   xsync.NewMapOf[string, *sync.Mutex](),
		members: xsync.NewMapOf[string, map[string]struct{}](),
		limit:   cfg.Capacity,
	}, nil
}

// Generation returns the current generation of collection.
func (r *Region) Generation(collection string) uint64 {
	g, _ := r.gens.Load(collection)
	return g
}

// Snapshot returns the current generation of each collection.
func (r *Region) Snapshot(collections ...string) map[string]uint64 {
	out := make(map[string]uint64, len(collections))
	for _, c := range collections {
		out[c] = r.Generation(c)
	}
	return out
}

// Fresh reports whether gens still matches the current generations.
func (r *Region) Fresh(gens map[string]uint64) bool {
	for c, g := range gens {
		if r.Generation(c) != g {
			return false
		}
	}
	return true
}

// Get returns the entry stored under key when none of its collections has
// been invalidated since it was computed.
func (r *Region) Get(key string) (*Entry, bool) {
	e, ok := r.client.Get(key)
	if !ok || e == nil {
		return nil, false
	}
	if !r.Fresh(e.Gens) {
		return nil, false
	}
	return e, true
}

// Put stores e, overwriting any entry under the same key. It returns false
// without storing when one of the entry's collections moved past the
// generation recorded in e.Gens.
func (r *Region) Put(e *Entry) bool {
	unlock := r.lockAll(e.Collections)
	defer unlock()

	for _, c := range e.Collections {
		if r.Generation(c) != e.Gens[c] {
			return false
		}
	}

	r.client.Set(e.Key, e)
	for _, c := range e.Collections {
		r.register(c, e.Key)
	}
	return true
}

// Invalidate bumps the generation of collection and deletes every entry
// registered under it. It returns the number of keys removed.
func (r *Region) Invalidate(collection string) int {
	mu := r.lock(collection)
	mu.Lock()
	defer mu.Unlock()

	g, _ := r.gens.Load(collection)
	r.gens.Store(collection, g+1)

	set, ok := r.members.LoadAndDelete(collection)
	if !ok {
		return 0
	}
	for key := range set {
		r.client.Delete(key)
	}
	return len(set)
}

// Len returns the number of entries held by the store.
func (r *Region) Len() int {
	return r.client.Size()
}

// Purge removes every entry. Generations are kept so in-flight results stay
// comparable.
func (r *Region) Purge() int {
	keys := r.client.ScanKeys()
	for _, key := range keys {
		r.client.Delete(key)
	}
	r.members.Clear()
	return len(keys)
}

// register must be called with the collection lock held.
func (r *Region) register(collection, key string) {
	set, _ := r.members.LoadOrCompute(collection, func() map[string]struct{} {
		return make(map[string]struct{})
	})
	set[key] = struct{}{}

	if len(set) > r.limit {
		for k := range set {
			if _, ok := r.client.Get(k); !ok {
				delete(set, k)
			}
		}
	}
}

func (r *Region) lock(collection string) *sync.Mutex {
	mu, _ := r.locks.LoadOrCompute(collection, func() *sync.Mutex {
		return &sync.Mutex{}
	})
	return mu
}

// lockAll acquires the locks of every collection in sorted order.
func (r *Region) lockAll(collections []string) func() {
	sorted := append([]string(nil), collections...)
	sort.Strings(sorted)

	held := make([]*sync.Mutex, 0, len(sorted))
	for i, c := range sorted {
		if i > 0 && sorted[i-1] == c {
			continue
		}
		mu := r.lock(c)
		mu.Lock()
		held = append(held, mu)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
