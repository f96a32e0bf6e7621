package supervisor

import (
	"testing"
	"time"
)

func TestIdempotencyCacheHitAndExpiry(t *testing.T) {
	c := newIdempotencyCache(time.Minute, 10)
	now := time.Now()

	if _, ok := c.Get("key-1", now); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Put("key-1", "run-1", now)
	if runID, ok := c.Get("key-1", now.Add(30*time.Second)); !ok || runID != "run-1" {
		t.Fatalf("expected hit with run-1, got %q, %v", runID, ok)
	}

	if _, ok := c.Get("key-1", now.Add(2*time.Minute)); ok {
		t.Fatal("expected miss after ttl expiry")
	}
}

func TestIdempotencyCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := newIdempotencyCache(time.Hour, 2)
	now := time.Now()

	c.Put("a", "run-a", now)
	c.Put("b", "run-b", now)
	c.Put("c", "run-c", now)

	if _, ok := c.Get("a", now); ok {
		t.Fatal("expected a to be evicted")
	}
	if _, ok := c.Get("b", now); !ok {
		t.Fatal("expected b to survive")
	}
	if _, ok := c.Get("c", now); !ok {
		t.Fatal("expected c to survive")
	}
}
