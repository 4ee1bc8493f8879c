// Package tiered implements a two level query result cache.
//
// Every Session owns a private local tier. Behind it sits a shared tier,
// partitioned by collection, that all sessions of a Cache read from:
//
//	c, _ := tiered.New(cache.DefaultConfig())
//	s := c.OpenSession()
//	emp, err := tiered.Lookup(ctx, s, cache.NewKey("emp", "getEmpById", 3), func(ctx context.Context) (*Employee, error) {
//		return db.FindEmployee(ctx, 3)
//	})
//	_ = s.End(true) // publish the session's results
//
// Within a session a repeated lookup returns the identical value until the
// session is cleared, ended, or a collection the entry depends on is
// invalidated. Results a session computes stay private until the session
// ends with persist set; only then are they merged into the shared tier.
//
// Invalidation is generation based. Each collection has a counter that
// InvalidateCollection bumps while deleting the collection's shared entries.
// Entries remember the generations they were computed under, so a local tier
// entry from before a mutation is treated as a miss even in a session that
// did not perform the mutation, and a session that ends after a peer
// invalidated one of its collections does not publish the stale result.
package tiered
