package scim

import (
	"context"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/nlstn/go-scim/filter"
)

// defaultFilterCacheCapacity bounds the package-level parse cache.
const defaultFilterCacheCapacity = 256

// parseCache is a simple bounded cache that maps filter strings to their
// parsed trees. It is designed to be used across requests so that repeated
// identical filters (common when clients poll with a fixed query) do not
// incur tokenizing and parsing every time.
//
// Keys are xxhash digests of the input; each entry keeps the raw input so
// a digest collision degrades to a cache miss instead of returning the
// wrong tree.
//
// Eviction strategy: when the cache reaches its capacity limit the entire
// map is replaced. This is simpler than a true LRU and sufficient for the
// target use-case (a small number of distinct filter templates repeated
// many times).
//
// Thread safety: all methods are safe for concurrent use. Cached trees are
// never handed out directly; CachedParseFilter clones on every return.
type parseCache struct {
	mu    sync.RWMutex
	items map[uint64]parseCacheEntry
	max   int
}

type parseCacheEntry struct {
	input string
	node  filter.Node
}

var globalFilterCache = &parseCache{
	items: make(map[uint64]parseCacheEntry, defaultFilterCacheCapacity),
	max:   defaultFilterCacheCapacity,
}

func (c *parseCache) get(key uint64, input string) (filter.Node, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.items[key]
	if !ok || e.input != input {
		return nil, false
	}
	return e.node, true
}

func (c *parseCache) put(key uint64, input string, node filter.Node) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.max < 1 {
		return
	}
	if len(c.items) >= c.max {
		// Evict everything and start fresh rather than tracking individual entry ages.
		c.items = make(map[uint64]parseCacheEntry, c.max)
	}
	c.items[key] = parseCacheEntry{input: input, node: node}
}

func (c *parseCache) setCapacity(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.max = n
	if n < 1 {
		n = 0
	}
	c.items = make(map[uint64]parseCacheEntry, n)
}

// SetFilterCacheCapacity replaces the parse cache with an empty one
// holding at most n entries. The default is 256. A value below 1 disables
// caching: CachedParseFilter then parses on every call.
func SetFilterCacheCapacity(n int) {
	globalFilterCache.setCapacity(n)
}

// CachedParseFilter is ParseFilter backed by the package-level parse
// cache. Parse errors are not cached. The returned tree is a deep copy
// owned by the caller; modifying it does not affect later lookups.
func CachedParseFilter(input string) (filter.Node, error) {
	if input == "" {
		return nil, nil
	}

	key := xxhash.Sum64String(input)
	if node, ok := globalFilterCache.get(key, input); ok {
		if obs != nil {
			obs.Metrics().RecordCacheHit(context.Background())
		}
		return filter.Clone(node), nil
	}
	if obs != nil {
		obs.Metrics().RecordCacheMiss(context.Background())
	}

	node, err := ParseFilter(input)
	if err != nil {
		return nil, err
	}
	globalFilterCache.put(key, input, node)
	return filter.Clone(node), nil
}
