package cache

import (
	"encoding/binary"
	"sync"
	"sync/atomic"
)

// Default configuration constants.
const (
	// DefaultShardCount is the number of shards for reduced lock contention.
	// Must be a power of 2 for fast modulo via bitwise AND.
	DefaultShardCount = 16

	// shardMask is used for fast shard selection (DefaultShardCount - 1).
	shardMask = DefaultShardCount - 1
)

// Hasher is a function that computes a hash for a key.
// Used by Map for shard selection.
type Hasher[K any] func(K) uint64

// Bytes16Hasher folds a 16-byte key (such as a UUID) into a hash.
func Bytes16Hasher(b [16]byte) uint64 {
	return binary.LittleEndian.Uint64(b[:8]) ^ binary.LittleEndian.Uint64(b[8:])
}

// Map is a thread-safe, sharded, append-only cache.
//
// Entries are created once and never evicted or replaced, so a value
// returned for a key stays valid for the lifetime of the Map. This is the
// shape needed for GPU resources that are cached per asset identity:
// a key maps to exactly one created value.
type Map[K comparable, V any] struct {
	shards [DefaultShardCount]*mapShard[K, V]
	hasher Hasher[K]

	// Statistics (atomic for zero-allocation reads)
	hits    atomic.Uint64
	misses  atomic.Uint64
	creates atomic.Uint64
}

// mapShard is a single shard of the map.
// Each shard has its own mutex for reduced contention.
type mapShard[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]V
}

// NewMap creates a new sharded map.
//
// The hasher function is used to compute hash values for shard selection.
// Bytes16Hasher covers UUID-shaped keys.
func NewMap[K comparable, V any](hasher Hasher[K]) *Map[K, V] {
	m := &Map[K, V]{hasher: hasher}
	for i := range m.shards {
		m.shards[i] = &mapShard[K, V]{entries: make(map[K]V)}
	}
	return m
}

// getShard returns the shard for a given key.
func (m *Map[K, V]) getShard(key K) *mapShard[K, V] {
	return m.shards[m.hasher(key)&shardMask]
}

// Get retrieves a cached value by key.
// Returns (value, true) if found, (zero, false) otherwise.
func (m *Map[K, V]) Get(key K) (V, bool) {
	shard := m.getShard(key)

	shard.mu.RLock()
	value, ok := shard.entries[key]
	shard.mu.RUnlock()

	if ok {
		m.hits.Add(1)
	} else {
		m.misses.Add(1)
	}
	return value, ok
}

// GetOrCreate returns the cached value for key, or calls create and stores
// its result. The boolean reports whether the value already existed.
//
// If create returns an error nothing is stored and the error is returned,
// so the next call for the same key retries. The create function runs with
// the shard lock held; two concurrent callers for one key never both create.
func (m *Map[K, V]) GetOrCreate(key K, create func() (V, error)) (V, bool, error) {
	shard := m.getShard(key)

	// Fast path: read lock
	shard.mu.RLock()
	value, ok := shard.entries[key]
	shard.mu.RUnlock()
	if ok {
		m.hits.Add(1)
		return value, true, nil
	}

	shard.mu.Lock()
	defer shard.mu.Unlock()

	// Re-check after acquiring write lock
	if value, ok := shard.entries[key]; ok {
		m.hits.Add(1)
		return value, true, nil
	}

	m.misses.Add(1)

	value, err := create()
	if err != nil {
		var zero V
		return zero, false, err
	}
	shard.entries[key] = value
	m.creates.Add(1)
	return value, false, nil
}

// Len returns the total number of entries across all shards.
func (m *Map[K, V]) Len() int {
	total := 0
	for _, shard := range m.shards {
		shard.mu.RLock()
		total += len(shard.entries)
		shard.mu.RUnlock()
	}
	return total
}

// Range calls fn for every entry until fn returns false.
// Iteration order is unspecified.
func (m *Map[K, V]) Range(fn func(K, V) bool) {
	for _, shard := range m.shards {
		shard.mu.RLock()
		for k, v := range shard.entries {
			if !fn(k, v) {
				shard.mu.RUnlock()
				return
			}
		}
		shard.mu.RUnlock()
	}
}

// Stats returns current cache statistics.
func (m *Map[K, V]) Stats() Stats {
	hits := m.hits.Load()
	misses := m.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Len:     m.Len(),
		Hits:    hits,
		Misses:  misses,
		Creates: m.creates.Load(),
		HitRate: hitRate,
	}
}

// ResetStats zeroes the hit, miss and create counters. Entries are kept,
// so per-frame statistics are a ResetStats at frame start and a Stats at
// the end.
func (m *Map[K, V]) ResetStats() {
	m.hits.Store(0)
	m.misses.Store(0)
	m.creates.Store(0)
}

// Stats holds cache statistics.
type Stats struct {
	Len     int
	Hits    uint64
	Misses  uint64
	Creates uint64
	HitRate float64
}
