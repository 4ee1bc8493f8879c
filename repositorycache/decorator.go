package repositorycache

import (
	"context"
	"reflect"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-tiered-cache/cache"
	"github.com/goliatone/go-tiered-cache/tiered"
	"github.com/uptrace/bun"
)

// Interface assertion to ensure CachedRepository implements Repository[T]
var _ repository.Repository[any] = (*CachedRepository[any])(nil)

// listResult wraps the tuple result from List operations for caching
type listResult[T any] struct {
	Records []T `json:"records" msgpack:"records"`
	Total   int `json:"total" msgpack:"total"`
}

// CachedRepository decorates a base repository with a session's tiered cache.
// Reads go through tiered.Lookup under the repository's collection, every
// successful write invalidates that collection.
type CachedRepository[T any] struct {
	base       repository.Repository[T]
	session    *tiered.Session
	collection string
}

// Option customizes a CachedRepository.
type Option func(*options)

type options struct {
	collection string
}

// WithCollection sets the collection name used for keys and invalidation.
func WithCollection(name string) Option {
	return func(o *options) {
		o.collection = name
	}
}

// New wraps base for use inside session. The collection defaults to the
// snake_case name of T.
func New[T any](base repository.Repository[T], session *tiered.Session, opts ...Option) *CachedRepository[T] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.collection == "" {
		o.collection = collectionFor[T]()
	}
	return &CachedRepository[T]{
		base:       base,
		session:    session,
		collection: o.collection,
	}
}

// Collection returns the collection this repository reads and invalidates.
func (c *CachedRepository[T]) Collection() string {
	return c.collection
}

// Session returns the session the repository is bound to.
func (c *CachedRepository[T]) Session() *tiered.Session {
	return c.session
}

// Get retrieves a single record using the provided criteria, with caching.
// Criteria reads are cached only under a key set with WithCacheKey.
func (c *CachedRepository[T]) Get(ctx context.Context, criteria ...repository.SelectCriteria) (T, error) {
	key, ok := c.key(ctx, "Get", criteria)
	if !ok {
		if err := c.open(); err != nil {
			var zero T
			return zero, err
		}
		return c.base.Get(ctx, criteria...)
	}
	return tiered.Lookup(ctx, c.session, key, func(ctx context.Context) (T, error) {
		return c.base.Get(ctx, criteria...)
	})
}

// GetByID retrieves a record by ID with optional criteria, with caching
func (c *CachedRepository[T]) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (T, error) {
	key, ok := c.key(ctx, "GetByID", criteria, id)
	if !ok {
		if err := c.open(); err != nil {
			var zero T
			return zero, err
		}
		return c.base.GetByID(ctx, id, criteria...)
	}
	return tiered.Lookup(ctx, c.session, key, func(ctx context.Context) (T, error) {
		return c.base.GetByID(ctx, id, criteria...)
	})
}

// List retrieves multiple records using the provided criteria, with caching
func (c *CachedRepository[T]) List(ctx context.Context, criteria ...repository.SelectCriteria) ([]T, int, error) {
	key, ok := c.key(ctx, "List", criteria)
	if !ok {
		if err := c.open(); err != nil {
			return nil, 0, err
		}
		return c.base.List(ctx, criteria...)
	}
	res, err := tiered.Lookup(ctx, c.session, key, func(ctx context.Context) (listResult[T], error) {
		records, total, err := c.base.List(ctx, criteria...)
		return listResult[T]{Records: records, Total: total}, err
	})
	if err != nil {
		return nil, 0, err
	}
	return res.Records, res.Total, nil
}

// Count returns the number of records matching the criteria, with caching
func (c *CachedRepository[T]) Count(ctx context.Context, criteria ...repository.SelectCriteria) (int, error) {
	key, ok := c.key(ctx, "Count", criteria)
	if !ok {
		if err := c.open(); err != nil {
			return 0, err
		}
		return c.base.Count(ctx, criteria...)
	}
	return tiered.Lookup(ctx, c.session, key, func(ctx context.Context) (int, error) {
		return c.base.Count(ctx, criteria...)
	})
}

// GetByIdentifier retrieves a record by identifier with optional criteria, with caching
func (c *CachedRepository[T]) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (T, error) {
	key, ok := c.key(ctx, "GetByIdentifier", criteria, identifier)
	if !ok {
		if err := c.open(); err != nil {
			var zero T
			return zero, err
		}
		return c.base.GetByIdentifier(ctx, identifier, criteria...)
	}
	return tiered.Lookup(ctx, c.session, key, func(ctx context.Context) (T, error) {
		return c.base.GetByIdentifier(ctx, identifier, criteria...)
	})
}

// Create creates a new record.
func (c *CachedRepository[T]) Create(ctx context.Context, record T, criteria ...repository.InsertCriteria) (T, error) {
	return c.mutateRecord(ctx, func(ctx context.Context) (T, error) {
		return c.base.Create(ctx, record, criteria...)
	})
}

// CreateTx creates a new record within a transaction
func (c *CachedRepository[T]) CreateTx(ctx context.Context, tx bun.IDB, record T, criteria ...repository.InsertCriteria) (T, error) {
	return c.mutateRecord(ctx, func(ctx context.Context) (T, error) {
		return c.base.CreateTx(ctx, tx, record, criteria...)
	})
}

// CreateMany creates multiple records
func (c *CachedRepository[T]) CreateMany(ctx context.Context, records []T, criteria ...repository.InsertCriteria) ([]T, error) {
	return c.mutateRecords(ctx, func(ctx context.Context) ([]T, error) {
		return c.base.CreateMany(ctx, records, criteria...)
	})
}

// CreateManyTx creates multiple records within a transaction
func (c *CachedRepository[T]) CreateManyTx(ctx context.Context, tx bun.IDB, records []T, criteria ...repository.InsertCriteria) ([]T, error) {
	return c.mutateRecords(ctx, func(ctx context.Context) ([]T, error) {
		return c.base.CreateManyTx(ctx, tx, records, criteria...)
	})
}

// GetOrCreate gets a record or creates it if it doesn't exist. It may write,
// so it always invalidates on success.
func (c *CachedRepository[T]) GetOrCreate(ctx context.Context, record T) (T, error) {
	return c.mutateRecord(ctx, func(ctx context.Context) (T, error) {
		return c.base.GetOrCreate(ctx, record)
	})
}

// GetOrCreateTx gets a record or creates it if it doesn't exist within a transaction
func (c *CachedRepository[T]) GetOrCreateTx(ctx context.Context, tx bun.IDB, record T) (T, error) {
	return c.mutateRecord(ctx, func(ctx context.Context) (T, error) {
		return c.base.GetOrCreateTx(ctx, tx, record)
	})
}

// Update updates a record
func (c *CachedRepository[T]) Update(ctx context.Context, record T, criteria ...repository.UpdateCriteria) (T, error) {
	return c.mutateRecord(ctx, func(ctx context.Context) (T, error) {
		return c.base.Update(ctx, record, criteria...)
	})
}

// UpdateTx updates a record within a transaction
func (c *CachedRepository[T]) UpdateTx(ctx context.Context, tx bun.IDB, record T, criteria ...repository.UpdateCriteria) (T, error) {
	return c.mutateRecord(ctx, func(ctx context.Context) (T, error) {
		return c.base.UpdateTx(ctx, tx, record, criteria...)
	})
}

// UpdateMany updates multiple records
func (c *CachedRepository[T]) UpdateMany(ctx context.Context, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	return c.mutateRecords(ctx, func(ctx context.Context) ([]T, error) {
		return c.base.UpdateMany(ctx, records, criteria...)
	})
}

// UpdateManyTx updates multiple records within a transaction
func (c *CachedRepository[T]) UpdateManyTx(ctx context.Context, tx bun.IDB, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	return c.mutateRecords(ctx, func(ctx context.Context) ([]T, error) {
		return c.base.UpdateManyTx(ctx, tx, records, criteria...)
	})
}

// Upsert inserts or updates a record
func (c *CachedRepository[T]) Upsert(ctx context.Context, record T, criteria ...repository.UpdateCriteria) (T, error) {
	return c.mutateRecord(ctx, func(ctx context.Context) (T, error) {
		return c.base.Upsert(ctx, record, criteria...)
	})
}

// UpsertTx inserts or updates a record within a transaction
func (c *CachedRepository[T]) UpsertTx(ctx context.Context, tx bun.IDB, record T, criteria ...repository.UpdateCriteria) (T, error) {
	return c.mutateRecord(ctx, func(ctx context.Context) (T, error) {
		return c.base.UpsertTx(ctx, tx, record, criteria...)
	})
}

// UpsertMany inserts or updates multiple records
func (c *CachedRepository[T]) UpsertMany(ctx context.Context, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	return c.mutateRecords(ctx, func(ctx context.Context) ([]T, error) {
		return c.base.UpsertMany(ctx, records, criteria...)
	})
}

// UpsertManyTx inserts or updates multiple records within a transaction
func (c *CachedRepository[T]) UpsertManyTx(ctx context.Context, tx bun.IDB, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	return c.mutateRecords(ctx, func(ctx context.Context) ([]T, error) {
		return c.base.UpsertManyTx(ctx, tx, records, criteria...)
	})
}

// Delete deletes a record
func (c *CachedRepository[T]) Delete(ctx context.Context, record T) error {
	return c.mutate(ctx, func(ctx context.Context) error {
		return c.base.Delete(ctx, record)
	})
}

// DeleteTx deletes a record within a transaction
func (c *CachedRepository[T]) DeleteTx(ctx context.Context, tx bun.IDB, record T) error {
	return c.mutate(ctx, func(ctx context.Context) error {
		return c.base.DeleteTx(ctx, tx, record)
	})
}

// DeleteMany deletes multiple records based on criteria
func (c *CachedRepository[T]) DeleteMany(ctx context.Context, criteria ...repository.DeleteCriteria) error {
	return c.mutate(ctx, func(ctx context.Context) error {
		return c.base.DeleteMany(ctx, criteria...)
	})
}

// DeleteManyTx deletes multiple records based on criteria within a transaction
func (c *CachedRepository[T]) DeleteManyTx(ctx context.Context, tx bun.IDB, criteria ...repository.DeleteCriteria) error {
	return c.mutate(ctx, func(ctx context.Context) error {
		return c.base.DeleteManyTx(ctx, tx, criteria...)
	})
}

// DeleteWhere deletes records based on criteria
func (c *CachedRepository[T]) DeleteWhere(ctx context.Context, criteria ...repository.DeleteCriteria) error {
	return c.mutate(ctx, func(ctx context.Context) error {
		return c.base.DeleteWhere(ctx, criteria...)
	})
}

// DeleteWhereTx deletes records based on criteria within a transaction
func (c *CachedRepository[T]) DeleteWhereTx(ctx context.Context, tx bun.IDB, criteria ...repository.DeleteCriteria) error {
	return c.mutate(ctx, func(ctx context.Context) error {
		return c.base.DeleteWhereTx(ctx, tx, criteria...)
	})
}

// ForceDelete force deletes a record (bypassing soft delete)
func (c *CachedRepository[T]) ForceDelete(ctx context.Context, record T) error {
	return c.mutate(ctx, func(ctx context.Context) error {
		return c.base.ForceDelete(ctx, record)
	})
}

// ForceDeleteTx force deletes a record within a transaction (bypassing soft delete)
func (c *CachedRepository[T]) ForceDeleteTx(ctx context.Context, tx bun.IDB, record T) error {
	return c.mutate(ctx, func(ctx context.Context) error {
		return c.base.ForceDeleteTx(ctx, tx, record)
	})
}

// GetTx bypasses the cache; reads inside a transaction may see uncommitted rows.
func (c *CachedRepository[T]) GetTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) (T, error) {
	return c.base.GetTx(ctx, tx, criteria...)
}

// GetByIDTx retrieves a record by ID within a transaction, bypassing the cache
func (c *CachedRepository[T]) GetByIDTx(ctx context.Context, tx bun.IDB, id string, criteria ...repository.SelectCriteria) (T, error) {
	return c.base.GetByIDTx(ctx, tx, id, criteria...)
}

// ListTx retrieves multiple records within a transaction, bypassing the cache
func (c *CachedRepository[T]) ListTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) ([]T, int, error) {
	return c.base.ListTx(ctx, tx, criteria...)
}

// CountTx counts records within a transaction, bypassing the cache
func (c *CachedRepository[T]) CountTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) (int, error) {
	return c.base.CountTx(ctx, tx, criteria...)
}

// GetByIdentifierTx retrieves a record by identifier within a transaction, bypassing the cache
func (c *CachedRepository[T]) GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, criteria ...repository.SelectCriteria) (T, error) {
	return c.base.GetByIdentifierTx(ctx, tx, identifier, criteria...)
}

// Raw executes a raw SQL query. Raw SQL may write, so it is never cached.
func (c *CachedRepository[T]) Raw(ctx context.Context, sql string, args ...any) ([]T, error) {
	return c.base.Raw(ctx, sql, args...)
}

// RawTx executes a raw SQL query within a transaction
func (c *CachedRepository[T]) RawTx(ctx context.Context, tx bun.IDB, sql string, args ...any) ([]T, error) {
	return c.base.RawTx(ctx, tx, sql, args...)
}

// Handlers returns the model handlers from the base repository
func (c *CachedRepository[T]) Handlers() repository.ModelHandlers[T] {
	return c.base.Handlers()
}

// key builds the cache key of a read. Criteria are closures with no
// comparable form, so a read that passes them is only cached when ctx carries
// a key from WithCacheKey; otherwise ok is false and the read goes to base.
func (c *CachedRepository[T]) key(ctx context.Context, statement string, criteria []repository.SelectCriteria, params ...any) (key cache.Key, ok bool) {
	if parts, set := cacheKeyFromContext(ctx); set {
		params = append(params, parts...)
	} else if len(criteria) > 0 {
		return cache.Key{}, false
	}
	return cache.NewKey(c.collection, statement, params...).WithRelated(relatedFromContext(ctx)...), true
}

func (c *CachedRepository[T]) open() error {
	if c.session == nil || c.session.Ended() {
		return cache.ErrSessionEnded
	}
	return nil
}

// mutate runs a write and invalidates the repository collection, plus any
// related collections declared on ctx, when it succeeds.
func (c *CachedRepository[T]) mutate(ctx context.Context, fn func(ctx context.Context) error) error {
	collections := append([]string{c.collection}, relatedFromContext(ctx)...)
	return c.session.Mutate(ctx, fn, collections...)
}

func (c *CachedRepository[T]) mutateRecord(ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := c.mutate(ctx, func(ctx context.Context) error {
		var err error
		result, err = fn(ctx)
		return err
	})
	return result, err
}

func (c *CachedRepository[T]) mutateRecords(ctx context.Context, fn func(ctx context.Context) ([]T, error)) ([]T, error) {
	var result []T
	err := c.mutate(ctx, func(ctx context.Context) error {
		var err error
		result, err = fn(ctx)
		return err
	})
	return result, err
}

// collectionFor derives a collection name from the type parameter,
// e.g. *models.TestUser becomes "test_user".
func collectionFor[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Ptr || t.Kind() == reflect.Slice {
		t = t.Elem()
	}
	name := toSnake(t.Name())
	if name == "" {
		name = toSnake(t.String())
	}
	if name == "" {
		name = "any"
	}
	return name
}
