// Package cache is a small in-process TTL map. The dashboard uses it to hand
// a calculated earnings amount from the POST that computed it to the next
// page render, once.
package cache

import (
	"sync"
	"time"
)

type Cache[V any] struct {
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time
	m   map[string]entry[V]
}

type entry[V any] struct {
	val V
	exp time.Time
}

func New[V any](ttl time.Duration) *Cache[V] {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &Cache[V]{
		ttl: ttl,
		now: time.Now,
		m:   make(map[string]entry[V]),
	}
}

func (c *Cache[V]) Set(key string, val V) {
	c.mu.Lock()
	c.m[key] = entry[V]{val: val, exp: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lookup(key, false)
}

// Pop returns the value and removes it.
func (c *Cache[V]) Pop(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lookup(key, true)
}

func (c *Cache[V]) lookup(key string, remove bool) (V, bool) {
	var zero V

	e, ok := c.m[key]
	if !ok {
		return zero, false
	}

	if c.now().After(e.exp) {
		delete(c.m, key)
		return zero, false
	}

	if remove {
		delete(c.m, key)
	}
	return e.val, true
}

func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
}
