package tiered

import (
	"context"
	"time"

	"github.com/goliatone/go-tiered-cache/cache"
	"github.com/google/uuid"
)

// Session is one unit of work with a private local tier. A session must be
// used from a single goroutine.
type Session struct {
	id    string
	cache *Cache
	local map[string]*localEntry
	ended bool
}

type localEntry struct {
	key         cache.Key
	collections []string
	value       any
	gens        map[string]uint64
	created     time.Time
	handle      uint64
}

// Entry is a read-only view of a local tier record.
type Entry struct {
	Key         string
	Collections []string
	Value       any
	Created     time.Time
	handle      uint64
}

// Handle identifies the stored result. It is assigned when the result is
// computed and carried unchanged through both tiers, so two sessions reading
// the same shared entry see the same handle even in copy mode.
func (e Entry) Handle() uint64 {
	return e.handle
}

// OpenSession starts a new session with an empty local tier.
func (c *Cache) OpenSession() *Session {
	s := &Session{
		id:    uuid.NewString(),
		cache: c,
		local: make(map[string]*localEntry),
	}
	c.stats.openSessions.Inc()
	c.metrics.SessionOpened()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Cache returns the cache that opened the session.
func (s *Session) Cache() *Cache {
	return s.cache
}

// Ended reports whether End has been called.
func (s *Session) Ended() bool {
	return s.ended
}

// Len returns the number of entries in the local tier.
func (s *Session) Len() int {
	return len(s.local)
}

// Peek returns the local entry stored for key without running a lookup.
func (s *Session) Peek(key cache.Key) (Entry, bool) {
	if s.ended {
		return Entry{}, false
	}
	id := s.cache.storageKey(key)
	e, ok := s.local[id]
	if !ok {
		return Entry{}, false
	}
	return Entry{
		Key:         id,
		Collections: append([]string(nil), e.collections...),
		Value:       e.value,
		Created:     e.created,
		handle:      e.handle,
	}, true
}

// Clear empties the local tier. The shared tier is untouched.
func (s *Session) Clear() error {
	if s == nil || s.ended {
		return cache.ErrSessionEnded
	}
	if len(s.local) > 0 {
		s.local = make(map[string]*localEntry)
	}
	return nil
}

// End closes the session. When persist is true every local entry is merged
// into the shared tier first, replacing entries under the same key. Entries
// whose collections were invalidated after they were computed are skipped.
func (s *Session) End(persist bool) error {
	if s == nil || s.ended {
		return cache.ErrSessionEnded
	}
	c := s.cache

	if persist && c.cfg.SharedEnabled {
		stored, skipped := 0, 0
		for id, e := range s.local {
			if c.merge(id, e) {
				stored++
			} else {
				skipped++
			}
		}
		c.stats.merged.Add(int64(stored))
		c.stats.mergeSkipped.Add(int64(skipped))
		c.metrics.Merged(stored, skipped)
		c.logger.Debug("session merged", cache.Fields{
			"session": s.id,
			"stored":  stored,
			"skipped": skipped,
		})
	}

	s.local = nil
	s.ended = true
	c.stats.openSessions.Dec()
	c.metrics.SessionEnded(persist)
	return nil
}

// InvalidateCollection invalidates collection in the shared tier and drops
// the session's own entries that depend on it. It may be called after End,
// in which case only the shared tier is affected.
func (s *Session) InvalidateCollection(collection string) error {
	if err := s.cache.InvalidateCollection(collection); err != nil {
		return err
	}
	for id, e := range s.local {
		for _, c := range e.collections {
			if c == collection {
				delete(s.local, id)
				break
			}
		}
	}
	return nil
}

// Mutate runs fn and, when it succeeds, invalidates every listed collection.
// A failed mutation leaves both tiers untouched and returns fn's error.
func (s *Session) Mutate(ctx context.Context, fn func(ctx context.Context) error, collections ...string) error {
	if s == nil || s.ended {
		return cache.ErrSessionEnded
	}
	for _, c := range collections {
		if err := cache.ValidateCollection(c); err != nil {
			return err
		}
	}
	if err := fn(ctx); err != nil {
		return err
	}
	for _, c := range collections {
		if err := s.InvalidateCollection(c); err != nil {
			return err
		}
	}
	return nil
}
