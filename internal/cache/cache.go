// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/tomtom215/waypoint/internal/metrics"
)

// DefaultCapacity bounds a Cache created with capacity <= 0.
const DefaultCapacity = 10000

type entry struct {
	key       string
	value     any
	expiresAt time.Time
}

// Cache is a thread-safe TTL cache with LRU eviction at capacity.
type Cache struct {
	name     string
	ttl      time.Duration
	capacity int

	mu    sync.Mutex
	items map[string]*list.Element
	order *list.List // front = most recently used
	stats Stats

	now func() time.Time
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	Keys        int
	LastCleanup time.Time
}

// New creates a cache. name labels the hit/miss metrics.
func New(name string, ttl time.Duration, capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		name:     name,
		ttl:      ttl,
		capacity: capacity,
		items:    make(map[string]*list.Element),
		order:    list.New(),
		now:      time.Now,
	}
}

// Get returns the value for key if present and not expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.miss()
		return nil, false
	}
	e := el.Value.(*entry)
	if !c.now().Before(e.expiresAt) {
		c.removeElement(el)
		c.stats.Evictions++
		c.miss()
		return nil, false
	}

	c.order.MoveToFront(el)
	c.stats.Hits++
	metrics.RecordCacheLookup(c.name, true)
	return e.value, true
}

func (c *Cache) miss() {
	c.stats.Misses++
	metrics.RecordCacheLookup(c.name, false)
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value under key for ttl. A non-positive ttl is a no-op.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.now().Add(ttl)
	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry)
		e.value = value
		e.expiresAt = expires
		c.order.MoveToFront(el)
		return
	}

	c.items[key] = c.order.PushFront(&entry{key: key, value: value, expiresAt: expires})
	for c.order.Len() > c.capacity {
		c.removeElement(c.order.Back())
		c.stats.Evictions++
	}
}

// Delete removes key. Missing keys are ignored.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeElement(el)
		c.stats.Evictions++
	}
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Evictions += int64(len(c.items))
	c.items = make(map[string]*list.Element)
	c.order.Init()
}

// Len returns the number of entries, including expired ones not yet
// cleaned up.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Keys = len(c.items)
	return s
}

// HitRate returns hits as a percentage of lookups.
func (c *Cache) HitRate() float64 {
	s := c.Stats()
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

func (c *Cache) removeElement(el *list.Element) {
	e := c.order.Remove(el).(*entry)
	delete(c.items, e.key)
}

// Cleanup removes expired entries and returns how many were removed.
func (c *Cache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		if !now.Before(el.Value.(*entry).expiresAt) {
			c.removeElement(el)
			removed++
		}
		el = prev
	}
	c.stats.Evictions += int64(removed)
	c.stats.LastCleanup = now
	return removed
}

// Serve runs Cleanup periodically until ctx is canceled.
func (c *Cache) Serve(ctx context.Context) error {
	interval := c.ttl
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.Cleanup()
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (c *Cache) String() string {
	return "cache-cleanup:" + c.name
}
