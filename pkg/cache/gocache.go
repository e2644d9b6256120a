package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// goCache 基于 patrickmn/go-cache 的实现
type goCache struct {
	client *gocache.Cache
}

// NewGoCache 创建 go-cache 缓存
func NewGoCache(config LocalConfig) Cache {
	defaultExpiration := config.DefaultExpiration
	if defaultExpiration <= 0 {
		defaultExpiration = gocache.NoExpiration
	}
	cleanup := config.CleanupInterval
	if cleanup <= 0 {
		cleanup = 10 * time.Minute
	}
	return &goCache{client: gocache.New(defaultExpiration, cleanup)}
}

func (g *goCache) Get(_ context.Context, key string) (interface{}, bool) {
	return g.client.Get(key)
}

func (g *goCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	g.client.Set(key, value, expiration)
	return nil
}

func (g *goCache) Delete(_ context.Context, key string) error {
	g.client.Delete(key)
	return nil
}

func (g *goCache) Exists(_ context.Context, key string) bool {
	_, ok := g.client.Get(key)
	return ok
}

func (g *goCache) Clear(_ context.Context) error {
	g.client.Flush()
	return nil
}

func (g *goCache) Close() error { return nil }
