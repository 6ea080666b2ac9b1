package di

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/shelfd/shelfd/cache"
	"github.com/shelfd/shelfd/internal/cacheinfra"
	"github.com/shelfd/shelfd/internal/config"
	"github.com/shelfd/shelfd/internal/domain"
	"github.com/shelfd/shelfd/internal/store"
	"github.com/shelfd/shelfd/storecache"
)

// Container wires the store, the cache services, and the caching decorators
// from one configuration. It owns the lifetime of the store connection and,
// when the redis backend is selected, the redis client.
type Container struct {
	store store.Store
	books *storecache.Books
	users *storecache.Users
	rdb   *goredis.Client
}

// services groups one cache service per value family. Entity and list
// families carry different TTLs, and the book list service is shared between
// filtered lists, popular rankings, and per-user relation reads.
type services struct {
	bookEntities cache.Service[*domain.Book]
	userEntities cache.Service[*domain.User]
	bookLists    cache.Service[[]*domain.Book]
	userLists    cache.Service[[]*domain.User]
}

// NewContainer builds the full dependency graph.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	st, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	entityCfg := cache.DefaultEntityConfig()
	if cfg.Cache.EntityTTLSecs > 0 {
		entityCfg.TTL = cfg.Cache.EntityTTL()
	}
	listCfg := cache.DefaultListConfig()
	if cfg.Cache.ListTTLSecs > 0 {
		listCfg.TTL = cfg.Cache.ListTTL()
	}

	c := &Container{store: st}

	var svc *services
	switch cfg.Cache.Backend {
	case "memory":
		svc, err = memoryServices(entityCfg, listCfg)
	case "redis":
		c.rdb = goredis.NewClient(&goredis.Options{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		svc, err = redisServices(c.rdb, entityCfg, listCfg)
	default:
		err = fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
	if err != nil {
		c.Close()
		return nil, err
	}

	gens := cache.NewGenerations()
	inv := storecache.NewInvalidator(gens, svc.bookEntities, svc.userEntities)
	c.books = storecache.NewBooks(st, svc.bookEntities, svc.bookLists, gens, inv)
	c.users = storecache.NewUsers(st, svc.userEntities, svc.userLists, svc.bookLists, gens, inv)
	return c, nil
}

func memoryServices(entityCfg, listCfg cache.Config) (*services, error) {
	bookEntities, err := cacheinfra.NewSturdycService[*domain.Book](entityCfg)
	if err != nil {
		return nil, err
	}
	userEntities, err := cacheinfra.NewSturdycService[*domain.User](entityCfg)
	if err != nil {
		return nil, err
	}
	bookLists, err := cacheinfra.NewSturdycService[[]*domain.Book](listCfg)
	if err != nil {
		return nil, err
	}
	userLists, err := cacheinfra.NewSturdycService[[]*domain.User](listCfg)
	if err != nil {
		return nil, err
	}
	return &services{
		bookEntities: bookEntities,
		userEntities: userEntities,
		bookLists:    bookLists,
		userLists:    userLists,
	}, nil
}

func redisServices(rdb *goredis.Client, entityCfg, listCfg cache.Config) (*services, error) {
	bookEntities, err := cacheinfra.NewRedisService(rdb, cacheinfra.Msgpack[*domain.Book]{}, entityCfg)
	if err != nil {
		return nil, err
	}
	userEntities, err := cacheinfra.NewRedisService(rdb, cacheinfra.Msgpack[*domain.User]{}, entityCfg)
	if err != nil {
		return nil, err
	}
	bookLists, err := cacheinfra.NewRedisService(rdb, cacheinfra.Msgpack[[]*domain.Book]{}, listCfg)
	if err != nil {
		return nil, err
	}
	userLists, err := cacheinfra.NewRedisService(rdb, cacheinfra.Msgpack[[]*domain.User]{}, listCfg)
	if err != nil {
		return nil, err
	}
	return &services{
		bookEntities: bookEntities,
		userEntities: userEntities,
		bookLists:    bookLists,
		userLists:    userLists,
	}, nil
}

func openStore(ctx context.Context, cfg config.StorageConfig) (store.Store, error) {
	switch cfg.Driver {
	case "memory":
		return store.NewMemoryStore(), nil
	case "sqlite3", "postgres":
		return store.OpenSQL(ctx, cfg.Driver, cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// Books returns the cached book operations.
func (c *Container) Books() *storecache.Books {
	return c.books
}

// Users returns the cached user and ownership operations.
func (c *Container) Users() *storecache.Users {
	return c.users
}

// Store returns the underlying store, mainly for health checks.
func (c *Container) Store() store.Store {
	return c.store
}

// Close releases the store connection and, if present, the redis client.
func (c *Container) Close() error {
	var first error
	if c.rdb != nil {
		if err := c.rdb.Close(); err != nil {
			first = err
		}
	}
	if c.store != nil {
		if err := c.store.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
