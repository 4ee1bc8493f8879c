package tiered

import (
	"context"
	"errors"

	"github.com/goliatone/go-tiered-cache/cache"
	"github.com/goliatone/go-tiered-cache/internal/cacheinfra"
)

// Lookup returns the result for key, consulting the session's local tier,
// then the shared tier, then compute.
//
// A computed result is kept in the local tier only. It becomes visible to
// other sessions once s ends with persist set. A compute error is returned
// as is and nothing is stored.
//
// Since Go methods cannot have type parameters, this is a package-level
// function: Lookup[*Employee](ctx, s, key, fetch).
func Lookup[T any](ctx context.Context, s *Session, key cache.Key, compute cache.FetchFn[T]) (T, error) {
	var zero T
	if s == nil || s.ended {
		return zero, cache.ErrSessionEnded
	}
	if err := key.Validate(); err != nil {
		return zero, err
	}
	if compute == nil {
		return zero, cache.ErrNilFetch
	}

	c := s.cache
	id := c.storageKey(key)

	if e, ok := s.local[id]; ok {
		if c.region.Fresh(e.gens) {
			c.stats.localHits.Inc()
			c.metrics.LocalHit(key.Collection)
			return cache.As[T](e.value)
		}
		delete(s.local, id)
	}

	if c.cfg.SharedEnabled {
		if se, ok := c.region.Get(id); ok {
			value, err := sharedValue[T](c, se)
			switch {
			case err == nil:
				s.local[id] = &localEntry{
					key:         key,
					collections: se.Collections,
					value:       value,
					gens:        se.Gens,
					created:     se.Created,
					handle:      se.Handle,
				}
				c.stats.sharedHits.Inc()
				c.metrics.SharedHit(key.Collection)
				return value, nil
			case errors.Is(err, cache.ErrInvalidResultType):
				return zero, err
			default:
				c.logger.Warn("decode failed, recomputing", cache.Fields{
					"key":   key.Fingerprint(),
					"error": err.Error(),
				})
			}
		}
	}

	collections := key.Collections()
	gens := c.region.Snapshot(collections...)

	c.stats.misses.Inc()
	c.metrics.Miss(key.Collection)

	value, err := compute(ctx)
	if err != nil {
		c.stats.computeErrors.Inc()
		c.metrics.ComputeError(key.Collection)
		return zero, err
	}

	s.local[id] = &localEntry{
		key:         key,
		collections: collections,
		value:       value,
		gens:        gens,
		created:     c.now(),
		handle:      c.nextHandle(),
	}
	return value, nil
}

func sharedValue[T any](c *Cache, e *cacheinfra.Entry) (T, error) {
	if e.Payload == nil {
		return cache.As[T](e.Value)
	}
	var out T
	if err := c.codec.Unmarshal(e.Payload, &out); err != nil {
		return out, err
	}
	return out, nil
}
