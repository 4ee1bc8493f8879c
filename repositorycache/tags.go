package repositorycache

import (
	"context"
)

type (
	relatedCollectionsKey struct{}
	cacheKeyPartsKey      struct{}
)

// WithCacheKey names the result of the next criteria reads. Select criteria
// are functions and cannot be compared, so reads that pass criteria skip the
// cache unless ctx carries parts that identify what the criteria select, for
// example the column and value given to SelectBy. Parts follow the same rules
// as cache.Key params.
func WithCacheKey(ctx context.Context, parts ...any) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(parts) == 0 {
		return ctx
	}
	return context.WithValue(ctx, cacheKeyPartsKey{}, append([]any(nil), parts...))
}

func cacheKeyFromContext(ctx context.Context) ([]any, bool) {
	if ctx == nil {
		return nil, false
	}
	parts, ok := ctx.Value(cacheKeyPartsKey{}).([]any)
	return parts, ok
}

// WithRelatedCollections declares extra collections the next reads depend on,
// for example a department table pulled in by a join. Cached reads made with
// the returned context are invalidated when any of them is mutated, and
// writes made with it invalidate them as well.
func WithRelatedCollections(ctx context.Context, collections ...string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(collections) == 0 {
		return ctx
	}

	combined := dedupeStrings(append(relatedFromContext(ctx), collections...))
	if len(combined) == 0 {
		return ctx
	}

	return context.WithValue(ctx, relatedCollectionsKey{}, combined)
}

func relatedFromContext(ctx context.Context) []string {
	if ctx == nil {
		return nil
	}
	if related, ok := ctx.Value(relatedCollectionsKey{}).([]string); ok {
		return append([]string(nil), related...)
	}
	return nil
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
