package supervisor

import (
	"container/list"
	"sync"
	"time"
)

// idempotencyCache is a bounded, TTL-expiring LRU keyed by
// Idempotency-Key header value. A repeated key within the TTL window
// returns the same run id instead of starting a second supervisor turn.
type idempotencyCache struct {
	mu       sync.Mutex
	ttl      time.Duration
	maxSize  int
	items    map[string]*list.Element
	order    *list.List // front = most recently used
}

type idempotencyEntry struct {
	key       string
	runID     string
	expiresAt time.Time
}

func newIdempotencyCache(ttl time.Duration, maxSize int) *idempotencyCache {
	return &idempotencyCache{
		ttl:     ttl,
		maxSize: maxSize,
		items:   make(map[string]*list.Element),
		order:   list.New(),
	}
}

// Get returns the cached run id for key, if present and not expired.
func (c *idempotencyCache) Get(key string, now time.Time) (string, bool) {
	if key == "" {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return "", false
	}
	entry := elem.Value.(*idempotencyEntry)
	if now.After(entry.expiresAt) {
		c.order.Remove(elem)
		delete(c.items, key)
		return "", false
	}
	c.order.MoveToFront(elem)
	return entry.runID, true
}

// Put records key -> runID, evicting the least recently used entry if
// the cache is at capacity.
func (c *idempotencyCache) Put(key, runID string, now time.Time) {
	if key == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		entry := elem.Value.(*idempotencyEntry)
		entry.runID = runID
		entry.expiresAt = now.Add(c.ttl)
		c.order.MoveToFront(elem)
		return
	}

	entry := &idempotencyEntry{key: key, runID: runID, expiresAt: now.Add(c.ttl)}
	elem := c.order.PushFront(entry)
	c.items[key] = elem

	for c.order.Len() > c.maxSize {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*idempotencyEntry).key)
	}
}
