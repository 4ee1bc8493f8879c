// Package repositorycache provides a session-scoped caching decorator for
// go-repository-bun repositories.
//
// # Overview
//
// CachedRepository wraps a base repository and routes its reads through a
// tiered.Session. Each repository maps to one collection, derived from the
// model type name unless WithCollection is given:
//
//	c, _ := tiered.New(cache.DefaultConfig())
//	s := c.OpenSession()
//	users := repositorycache.New[*User](base, s)
//
//	u1, _ := users.GetByID(ctx, "user-123")
//	u2, _ := users.GetByID(ctx, "user-123") // same value, no query
//	_ = s.End(true)                         // publish results to other sessions
//
// # Cached vs Pass-through Operations
//
// Cached: Get, GetByID, GetByIdentifier, List, Count.
//
// Select criteria are functions and cannot be compared, so a read that passes
// criteria goes straight to the base repository unless the context names it
// with WithCacheKey:
//
//	ctx = repositorycache.WithCacheKey(ctx, "name", "=", name)
//	u, _ := users.Get(ctx, repository.SelectBy("name", "=", name))
//
// The parts must identify everything the criteria select.
//
// Pass-through: the *Tx read variants and Raw/RawTx. Reads inside a
// transaction may observe uncommitted rows and must not be shared.
//
// Every write (Create, Update, Upsert, Delete, GetOrCreate and their Many/Tx
// variants) runs through Session.Mutate and invalidates the repository
// collection once the base call succeeds. A failed write invalidates nothing.
//
// # Related Collections
//
// Reads that join other tables can declare them on the context:
//
//	ctx = repositorycache.WithRelatedCollections(ctx, "department")
//	ctx = repositorycache.WithCacheKey(ctx, "with_department")
//	u, _ := users.Get(ctx, withDepartment)
//
// A mutation of "department" then drops the cached read as well.
//
// # Compatibility
//
// CachedRepository[T] implements repository.Repository[T], so it is a drop-in
// replacement wherever the base repository was used. A repository is bound to
// one session; build a new one per unit of work, or use pkg/di.
package repositorycache
