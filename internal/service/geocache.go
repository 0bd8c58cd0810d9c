package service

import (
	"container/list"
	"sync"

	"sportsearch/internal/model"
)

// GeoCache is the process-wide place→coordinate cache shared by all
// pipeline instances. Place names are unbounded user input, so the cache
// holds at most capacity entries and evicts least-recently-used. Safe for
// concurrent use. Only successful resolutions are stored; callers must
// never cache failures.
type GeoCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	order    *list.List
}

type cacheEntry struct {
	key   string
	point model.GeoPoint
}

// NewGeoCache creates a bounded cache. Capacity below 1 is coerced to 1.
func NewGeoCache(capacity int) *GeoCache {
	if capacity < 1 {
		capacity = 1
	}
	return &GeoCache{
		capacity: capacity,
		entries:  make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

// Get returns the cached point for a normalized key, marking it recently
// used.
func (c *GeoCache) Get(key string) (model.GeoPoint, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return model.GeoPoint{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).point, true
}

// Add stores a resolved point under a normalized key, evicting the least
// recently used entry when full.
func (c *GeoCache) Add(key string, point model.GeoPoint) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).point = point
		c.order.MoveToFront(el)
		return
	}

	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).key)
		}
	}

	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, point: point})
}

// Len returns the number of cached entries.
func (c *GeoCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
