package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"multidrop-route-service/internal/ports"
)

type memoryEntry struct {
	key       string
	value     ports.TravelEstimate
	expiresAt time.Time
}

// MemoryTravelCache is a bounded in-process travel cache. Entries expire
// after ttl and the least recently used entry is evicted when full.
// It is safe for concurrent use.
type MemoryTravelCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	maxSize int
	order   *list.List
	entries map[string]*list.Element
	now     func() time.Time
}

func NewMemoryTravelCache(maxSize int, ttl time.Duration) *MemoryTravelCache {
	if maxSize < 1 {
		maxSize = 1
	}
	return &MemoryTravelCache{
		ttl:     ttl,
		maxSize: maxSize,
		order:   list.New(),
		entries: make(map[string]*list.Element, maxSize),
		now:     time.Now,
	}
}

func (c *MemoryTravelCache) GetMany(_ context.Context, keys []string) (map[string]ports.TravelEstimate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	out := make(map[string]ports.TravelEstimate, len(keys))
	for _, k := range keys {
		el, ok := c.entries[k]
		if !ok {
			continue
		}
		e := el.Value.(*memoryEntry)
		if !now.Before(e.expiresAt) {
			c.remove(el)
			continue
		}
		c.order.MoveToFront(el)
		out[k] = e.value
	}
	return out, nil
}

func (c *MemoryTravelCache) PutMany(_ context.Context, results map[string]ports.TravelEstimate) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)
	for k, v := range results {
		if el, ok := c.entries[k]; ok {
			e := el.Value.(*memoryEntry)
			e.value, e.expiresAt = v, expiresAt
			c.order.MoveToFront(el)
			continue
		}

		c.entries[k] = c.order.PushFront(&memoryEntry{key: k, value: v, expiresAt: expiresAt})
		for c.order.Len() > c.maxSize {
			c.remove(c.order.Back())
		}
	}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryTravelCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *MemoryTravelCache) remove(el *list.Element) {
	c.order.Remove(el)
	delete(c.entries, el.Value.(*memoryEntry).key)
}
