package cache

import (
	"context"
	"sync"
	"time"

	"StockScreener/internal/model"
)

type memoryItem struct {
	bars     []model.OHLCV
	expireAt time.Time
}

// MemoryCache is an in-process Cache. Expired items are dropped on read.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	now   func() time.Time
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		items: make(map[string]memoryItem),
		now:   time.Now,
	}
}

func (c *MemoryCache) GetBars(_ context.Context, key string) ([]model.OHLCV, error) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, ErrMiss
	}
	if c.now().After(item.expireAt) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return nil, ErrMiss
	}
	return append([]model.OHLCV(nil), item.bars...), nil
}

func (c *MemoryCache) SetBars(_ context.Context, key string, bars []model.OHLCV, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c.mu.Lock()
	c.items[key] = memoryItem{
		bars:     append([]model.OHLCV(nil), bars...),
		expireAt: c.now().Add(ttl),
	}
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *MemoryCache) Close() error { return nil }
