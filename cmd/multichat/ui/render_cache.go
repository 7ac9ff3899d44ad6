package ui

import (
	"hash/fnv"
	"strconv"
	"sync"
)

// RenderCache memoizes rendered message bodies so the viewport can be
// rebuilt on every spinner tick without re-running markdown rendering.
// Once full, the oldest entry is evicted.
type RenderCache struct {
	mu      sync.Mutex
	entries map[uint64]string
	order   []uint64
	maxSize int
	hits    int
	misses  int
}

// NewRenderCache creates a cache holding at most maxSize entries.
func NewRenderCache(maxSize int) *RenderCache {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &RenderCache{
		entries: make(map[uint64]string, maxSize),
		maxSize: maxSize,
	}
}

// Key hashes the inputs that change a rendered body.
func Key(id string, width int, dark bool) uint64 {
	h := fnv.New64a()
	h.Write([]byte(id))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(width)))
	if dark {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
	return h.Sum64()
}

// Get returns a cached body.
func (c *RenderCache) Get(key uint64) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}

// Set stores a body, evicting the oldest entry when full.
func (c *RenderCache) Set(key uint64, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		if len(c.order) >= c.maxSize {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = content
}

// GetOrCompute returns the cached body or renders and stores it.
func (c *RenderCache) GetOrCompute(key uint64, render func() string) string {
	if v, ok := c.Get(key); ok {
		return v
	}
	v := render()
	c.Set(key, v)
	return v
}

// Len returns the number of cached bodies.
func (c *RenderCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns hit and miss counts.
func (c *RenderCache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Clear empties the cache.
func (c *RenderCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[uint64]string, c.maxSize)
	c.order = nil
}
