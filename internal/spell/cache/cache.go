// Package cache implements the bounded correction cache. Entries are keyed
// by (word, threshold); correction is a pure function of that pair, so the
// cache can never change results, only skip work. The map is sharded so the
// lock scope of a lookup or insert is a single shard operation.
package cache

import (
	"hash/fnv"
	"sync"
)

// shardCount balances contention against per-shard eviction granularity.
const shardCount = 16

// Key identifies one correction request.
type Key struct {
	Word      string
	Threshold float64
}

// Result is a cached correction outcome. OK is false when no candidate
// cleared the threshold; that outcome is cached too.
type Result struct {
	Corrected string
	OK        bool
}

type shard struct {
	mu       sync.Mutex
	capacity int
	entries  map[Key]Result
	order    []Key // insertion order, oldest first
}

// Cache is a size-bounded FIFO map. When a shard fills up, the oldest
// quarter of its entries is evicted before the insert proceeds.
type Cache struct {
	shards [shardCount]*shard
}

// New creates a Cache holding at most capacity entries across all shards.
// A capacity below shardCount still allows one entry per shard.
func New(capacity int) *Cache {
	perShard := capacity / shardCount
	if perShard < 1 {
		perShard = 1
	}
	c := &Cache{}
	for i := range c.shards {
		c.shards[i] = &shard{
			capacity: perShard,
			entries:  make(map[Key]Result, perShard),
		}
	}
	return c
}

func (c *Cache) shardFor(k Key) *shard {
	h := fnv.New32a()
	h.Write([]byte(k.Word))
	return c.shards[h.Sum32()%shardCount]
}

// Get returns the cached result for k, if present.
func (c *Cache) Get(k Key) (Result, bool) {
	s := c.shardFor(k)
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.entries[k]
	return r, ok
}

// Put inserts or overwrites the result for k, evicting the oldest quarter
// of the shard first when it is full.
func (c *Cache) Put(k Key, r Result) {
	s := c.shardFor(k)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[k]; exists {
		s.entries[k] = r
		return
	}
	if len(s.entries) >= s.capacity {
		drop := len(s.entries) / 4
		if drop < 1 {
			drop = 1
		}
		for _, old := range s.order[:drop] {
			delete(s.entries, old)
		}
		s.order = append(s.order[:0], s.order[drop:]...)
	}
	s.entries[k] = r
	s.order = append(s.order, k)
}

// Len returns the total number of cached entries.
func (c *Cache) Len() int {
	total := 0
	for _, s := range c.shards {
		s.mu.Lock()
		total += len(s.entries)
		s.mu.Unlock()
	}
	return total
}

// Clear drops all entries.
func (c *Cache) Clear() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.entries = make(map[Key]Result, s.capacity)
		s.order = s.order[:0]
		s.mu.Unlock()
	}
}
