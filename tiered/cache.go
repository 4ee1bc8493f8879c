package tiered

import (
	"sync/atomic"
	"time"

	"github.com/goliatone/go-tiered-cache/cache"
	"github.com/goliatone/go-tiered-cache/internal/cacheinfra"
	"github.com/puzpuzpuz/xsync/v3"
)

// Cache owns the shared tier and hands out sessions. It is safe for
// concurrent use; the sessions it opens are not.
type Cache struct {
	cfg     cache.Config
	region  *cacheinfra.Region
	codec   cache.Codec
	keys    cache.KeySerializer
	logger  cache.Logger
	metrics cache.Metrics
	now     func() time.Time

	handles atomic.Uint64
	stats   counters
}

type counters struct {
	localHits     *xsync.Counter
	sharedHits    *xsync.Counter
	misses        *xsync.Counter
	computeErrors *xsync.Counter
	invalidations *xsync.Counter
	merged        *xsync.Counter
	mergeSkipped  *xsync.Counter
	openSessions  *xsync.Counter
}

// Stats is a point in time view of cache activity.
type Stats struct {
	LocalHits     int64
	SharedHits    int64
	Misses        int64
	ComputeErrors int64
	Invalidations int64
	Merged        int64
	MergeSkipped  int64
	OpenSessions  int64
	SharedEntries int
}

// Option customizes a Cache.
type Option func(*Cache)

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l cache.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics sets the metrics sink. A nil sink is ignored.
func WithMetrics(m cache.Metrics) Option {
	return func(c *Cache) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithKeySerializer replaces the default key serializer.
func WithKeySerializer(s cache.KeySerializer) Option {
	return func(c *Cache) {
		if s != nil {
			c.keys = s
		}
	}
}

// WithClock overrides the time source used for entry creation times.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// New validates cfg and builds a Cache with an empty shared tier.
func New(cfg cache.Config, opts ...Option) (*Cache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	region, err := cacheinfra.NewRegion(cfg.Region())
	if err != nil {
		return nil, err
	}

	var codec cache.Codec
	if !cfg.ReadOnly {
		if codec, err = cache.NewCodec(cfg.Codec); err != nil {
			return nil, err
		}
	}

	c := &Cache{
		cfg:     cfg,
		region:  region,
		codec:   codec,
		keys:    cache.NewDefaultKeySerializer(),
		logger:  cache.NopLogger{},
		metrics: cache.NopMetrics{},
		now:     time.Now,
		stats: counters{
			localHits:     xsync.NewCounter(),
			sharedHits:    xsync.NewCounter(),
			misses:        xsync.NewCounter(),
			computeErrors: xsync.NewCounter(),
			invalidations: xsync.NewCounter(),
			merged:        xsync.NewCounter(),
			mergeSkipped:  xsync.NewCounter(),
			openSessions:  xsync.NewCounter(),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns the configuration the cache was built with.
func (c *Cache) Config() cache.Config {
	return c.cfg
}

// KeySerializer returns the serializer used to build storage keys.
func (c *Cache) KeySerializer() cache.KeySerializer {
	return c.keys
}

// InvalidateCollection drops every shared entry that depends on collection.
// Local tiers notice on their next lookup, see Session.InvalidateCollection
// for the variant that also purges the caller's own entries.
func (c *Cache) InvalidateCollection(collection string) error {
	if err := cache.ValidateCollection(collection); err != nil {
		return err
	}

	removed := c.region.Invalidate(collection)
	c.stats.invalidations.Inc()
	c.metrics.Invalidated(collection, removed)
	c.logger.Debug("collection invalidated", cache.Fields{
		"collection": collection,
		"removed":    removed,
		"generation": c.region.Generation(collection),
	})
	return nil
}

// ClearSession empties the local tier of s.
func (c *Cache) ClearSession(s *Session) error {
	return s.Clear()
}

// EndSession ends s, merging its local tier into the shared tier first when
// persist is true.
func (c *Cache) EndSession(s *Session, persist bool) error {
	return s.End(persist)
}

// Purge drops every shared entry.
func (c *Cache) Purge() {
	n := c.region.Purge()
	c.logger.Info("shared tier purged", cache.Fields{"removed": n})
}

// Stats returns the current counters.
func (c *Cache) Stats() Stats {
	return Stats{
		LocalHits:     c.stats.localHits.Value(),
		SharedHits:    c.stats.sharedHits.Value(),
		Misses:        c.stats.misses.Value(),
		ComputeErrors: c.stats.computeErrors.Value(),
		Invalidations: c.stats.invalidations.Value(),
		Merged:        c.stats.merged.Value(),
		MergeSkipped:  c.stats.mergeSkipped.Value(),
		OpenSessions:  c.stats.openSessions.Value(),
		SharedEntries: c.region.Len(),
	}
}

func (c *Cache) storageKey(k cache.Key) string {
	return k.Serialize(c.keys)
}

func (c *Cache) nextHandle() uint64 {
	return c.handles.Add(1)
}

// merge publishes a session entry to the shared tier.
func (c *Cache) merge(id string, e *localEntry) bool {
	entry := &cacheinfra.Entry{
		Key:         id,
		Collections: e.collections,
		Gens:        e.gens,
		Created:     e.created,
		Handle:      e.handle,
	}

	if c.codec == nil {
		entry.Value = e.value
	} else {
		payload, err := c.codec.Marshal(e.value)
		if err != nil {
			c.logger.Warn("encode failed, entry not shared", cache.Fields{
				"key":   e.key.Fingerprint(),
				"codec": c.codec.Name(),
				"error": err.Error(),
			})
			return false
		}
		entry.Payload = payload
	}

	if !c.region.Put(entry) {
		c.logger.Debug("stale entry not shared", cache.Fields{
			"key":        e.key.Fingerprint(),
			"collection": e.key.Collection,
		})
		return false
	}
	return true
}
