package cache

import (
	"context"
	"sync"
	"time"
)

// localCache 本地缓存实现
type localCache struct {
	mu      sync.RWMutex
	items   map[string]localItem
	config  LocalConfig
	stopGC  chan struct{}
	stopped bool
}

type localItem struct {
	value     interface{}
	expiresAt time.Time // zero means no expiration
}

func (it localItem) expired(now time.Time) bool {
	return !it.expiresAt.IsZero() && now.After(it.expiresAt)
}

// NewLocalCache 创建本地缓存
func NewLocalCache(config LocalConfig) Cache {
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 10 * time.Minute
	}
	c := &localCache{
		items:  make(map[string]localItem),
		config: config,
		stopGC: make(chan struct{}),
	}
	go c.gcLoop()
	return c
}

func (c *localCache) gcLoop() {
	t := time.NewTicker(c.config.CleanupInterval)
	defer t.Stop()
	for {
		select {
		case <-c.stopGC:
			return
		case now := <-t.C:
			c.mu.Lock()
			for k, it := range c.items {
				if it.expired(now) {
					delete(c.items, k)
				}
			}
			c.mu.Unlock()
		}
	}
}

func (c *localCache) Get(_ context.Context, key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	it, ok := c.items[key]
	if !ok || it.expired(time.Now()) {
		return nil, false
	}
	return it.value, true
}

func (c *localCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	if expiration <= 0 {
		expiration = c.config.DefaultExpiration
	}
	var expiresAt time.Time
	if expiration > 0 {
		expiresAt = time.Now().Add(expiration)
	}
	c.mu.Lock()
	c.items[key] = localItem{value: value, expiresAt: expiresAt}
	c.mu.Unlock()
	return nil
}

func (c *localCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	return nil
}

func (c *localCache) Exists(ctx context.Context, key string) bool {
	_, ok := c.Get(ctx, key)
	return ok
}

func (c *localCache) Clear(_ context.Context) error {
	c.mu.Lock()
	c.items = make(map[string]localItem)
	c.mu.Unlock()
	return nil
}

func (c *localCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.stopped {
		c.stopped = true
		close(c.stopGC)
	}
	return nil
}
