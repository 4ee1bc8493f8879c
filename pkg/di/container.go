package di

import (
	"errors"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-tiered-cache/cache"
	"github.com/goliatone/go-tiered-cache/mapper"
	"github.com/goliatone/go-tiered-cache/repositorycache"
	"github.com/goliatone/go-tiered-cache/tiered"
)

// ErrNoDatabase is returned by Mappers when the container was built without
// a database.
var ErrNoDatabase = errors.New("di: no database configured")

// Container wires the tiered cache with its logger, metrics and database,
// and hands out sessions and session-bound cached repositories.
type Container struct {
	cache   *tiered.Cache
	config  cache.Config
	logger  cache.Logger
	metrics cache.Metrics
	db      *bun.DB
}

// Option customizes a Container.
type Option func(*Container)

// WithLogger sets the logger passed to the cache.
func WithLogger(l cache.Logger) Option {
	return func(c *Container) { c.logger = l }
}

// WithMetrics sets the metrics sink passed to the cache.
func WithMetrics(m cache.Metrics) Option {
	return func(c *Container) { c.metrics = m }
}

// WithDB sets the database the mapper factories run against.
func WithDB(db *bun.DB) Option {
	return func(c *Container) { c.db = db }
}

// NewContainer builds the cache from config. The container owns one shared
// tier for its lifetime.
func NewContainer(config cache.Config, opts ...Option) (*Container, error) {
	c := &Container{
		config:  config,
		logger:  cache.NopLogger{},
		metrics: cache.NopMetrics{},
	}
	for _, opt := range opts {
		opt(c)
	}

	tc, err := tiered.New(config, tiered.WithLogger(c.logger), tiered.WithMetrics(c.metrics))
	if err != nil {
		return nil, err
	}
	c.cache = tc

	c.logger.Info("tiered cache ready", cache.Fields{
		"capacity":  config.Capacity,
		"ttl":       config.TTL.String(),
		"shared":    config.SharedEnabled,
		"read_only": config.ReadOnly,
	})
	return c, nil
}

// NewContainerWithDefaults builds a container from cache.DefaultConfig.
func NewContainerWithDefaults(opts ...Option) (*Container, error) {
	return NewContainer(cache.DefaultConfig(), opts...)
}

// NewContainerFromFile loads a YAML config from path and builds a container.
func NewContainerFromFile(path string, opts ...Option) (*Container, error) {
	config, err := cache.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return NewContainer(config, opts...)
}

// Cache returns the tiered cache.
func (c *Container) Cache() *tiered.Cache {
	return c.cache
}

func (c *Container) Config() cache.Config {
	return c.config
}

func (c *Container) KeySerializer() cache.KeySerializer {
	return c.cache.KeySerializer()
}

func (c *Container) DB() *bun.DB {
	return c.db
}

// NewSession opens a session on the container's cache.
func (c *Container) NewSession() *tiered.Session {
	return c.cache.OpenSession()
}

// Mappers returns cached mappers bound to session.
func (c *Container) Mappers(session *tiered.Session) (*mapper.Mappers, error) {
	if c.db == nil {
		return nil, ErrNoDatabase
	}
	return mapper.NewSessionMappers(c.db, session), nil
}

// NewCachedRepository wraps base with a repository bound to session. A nil
// session opens a new one on the container's cache.
//
// Since Go methods cannot have type parameters, this is provided as a package-level function.
// Example: NewCachedRepository[User](container, session, baseUserRepository)
func NewCachedRepository[T any](container *Container, session *tiered.Session, base repository.Repository[T], opts ...repositorycache.Option) *repositorycache.CachedRepository[T] {
	if session == nil {
		session = container.NewSession()
	}
	return repositorycache.New(base, session, opts...)
}
