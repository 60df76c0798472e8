// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package cache provides a small thread-safe LRU cache for values that are
// expensive to build, such as compiled shader modules.
//
//	c := cache.New[string, []uint32](32)
//	words, err := c.GetOrCompute(src, func() ([]uint32, error) {
//		return compile(src)
//	})
//
// Failed computations are not cached.
package cache

import "sync"

// LRU is a least-recently-used cache with a hard capacity.
//
// LRU is safe for concurrent use and must not be copied after creation.
type LRU[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	entries  map[K]*node[K, V]
	order    list[K, V]
	stats    Stats
}

// Stats counts cache activity.
type Stats struct {
	Len       int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// New creates a cache holding at most capacity entries. A capacity of 0 or
// less means unlimited.
func New[K comparable, V any](capacity int) *LRU[K, V] {
	return &LRU[K, V]{
		capacity: capacity,
		entries:  make(map[K]*node[K, V]),
	}
}

// get returns the value for key and marks it most recently used.
func (c *LRU[K, V]) get(key K) (V, bool) {
	n, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		var zero V
		return zero, false
	}
	c.stats.Hits++
	c.order.moveToFront(n)
	return n.value, true
}

// set stores value under key, evicting the least recently used entry when
// the cache is full.
func (c *LRU[K, V]) set(key K, value V) {
	if n, ok := c.entries[key]; ok {
		n.value = value
		c.order.moveToFront(n)
		return
	}
	n := &node[K, V]{key: key, value: value}
	c.entries[key] = n
	c.order.pushFront(n)
	if c.capacity > 0 && len(c.entries) > c.capacity {
		oldest := c.order.back()
		c.order.remove(oldest)
		delete(c.entries, oldest.key)
		c.stats.Evictions++
	}
}

// GetOrCompute returns the cached value for key or stores the result of
// compute. compute runs under the cache lock, so concurrent callers for the
// same key compute once.
func (c *LRU[K, V]) GetOrCompute(key K, compute func() (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.get(key); ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		return v, err
	}
	c.set(key, v)
	return v, nil
}

// Delete removes key and reports whether it was present.
func (c *LRU[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.entries[key]
	if !ok {
		return false
	}
	c.order.remove(n)
	delete(c.entries, key)
	return true
}

// Stats returns a snapshot of the counters.
func (c *LRU[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Len = len(c.entries)
	return s
}

// Clear removes every entry. Counters are kept.
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]*node[K, V])
	c.order = list[K, V]{}
}
