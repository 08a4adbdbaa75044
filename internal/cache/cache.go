package cache

import (
	"context"
	"sync"
	"time"
)

// Store is a byte cache with per-key expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Cache is the in-process Store.
type Cache struct {
	sync.RWMutex
	items map[string]Item
	stop  chan struct{}
	once  sync.Once
}

type Item struct {
	Value      []byte
	Expiration int64
}

func (i Item) expired(now int64) bool {
	return i.Expiration > 0 && now > i.Expiration
}

func NewCache() *Cache {
	return newCache(time.Minute)
}

func newCache(sweep time.Duration) *Cache {
	cache := &Cache{
		items: make(map[string]Item),
		stop:  make(chan struct{}),
	}
	go cache.startCleanup(sweep)
	return cache
}

// Set stores value. A ttl of zero or less never expires.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.Lock()
	defer c.Unlock()

	var expiration int64
	if ttl > 0 {
		expiration = time.Now().Add(ttl).UnixNano()
	}
	c.items[key] = Item{
		Value:      append([]byte(nil), value...),
		Expiration: expiration,
	}
	return nil
}

func (c *Cache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.RLock()
	defer c.RUnlock()

	item, exists := c.items[key]
	if !exists || item.expired(time.Now().UnixNano()) {
		return nil, false, nil
	}
	return append([]byte(nil), item.Value...), true, nil
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.Lock()
	defer c.Unlock()
	delete(c.items, key)
	return nil
}

// Close stops the sweeper. It is safe to call more than once.
func (c *Cache) Close() error {
	c.once.Do(func() { close(c.stop) })
	return nil
}

func (c *Cache) startCleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache) cleanup() {
	c.Lock()
	defer c.Unlock()

	now := time.Now().UnixNano()
	for key, item := range c.items {
		if item.expired(now) {
			delete(c.items, key)
		}
	}
}

func (c *Cache) len() int {
	c.RLock()
	defer c.RUnlock()
	return len(c.items)
}
