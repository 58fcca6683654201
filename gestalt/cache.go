package gestalt

import (
	"sync"
)

// Cache wraps a Core with a decoded-value memo keyed by (path, type, tags),
// per spec.md §4.9 "Cache wraps core with a mapping keyed by (path, type,
// tags) → decoded value. Reads check the cache under a shared lock ...;
// misses delegate to core and insert under an exclusive lock; reload events
// clear the map." The teacher has no analogous cache (every Entry lookup
// walks the tree directly); this is modeled on the same
// shared-lock-then-upgrade shape manager.Manager already uses for its own
// tree swap, applied here to a plain map instead of a single pointer.
type Cache struct {
	core *Core

	mu    sync.RWMutex
	items map[string]cacheEntry
}

type cacheEntry struct {
	value interface{}
	err   error
}

// NewCache wraps core. It registers itself as a before-publish listener so
// every successful LoadConfigs clears the whole memo before the new
// generation becomes visible to readers — never just the entries touched
// since the last build, and never after a reader could already see the new
// generation (spec.md §5 "reload clears the cache before publishing the new
// generation").
func NewCache(core *Core) *Cache {
	c := &Cache{core: core, items: map[string]cacheEntry{}}
	core.OnBeforePublish(c.clear)
	return c
}

func (c *Cache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = map[string]cacheEntry{}
}

func (c *Cache) get(key string) (cacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.items[key]
	return e, ok
}

func (c *Cache) put(key string, e cacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = e
}

// CachedConfig is GetConfig memoized by cache's (path, type, tags) key.
// Errors are memoized too: a corrupt value does not get re-decoded on
// every call until the next reload.
func CachedConfig[T any](cache *Cache, pathStr string, tags ...string) (T, error) {
	typ := typeOf[T]()
	key := cacheKey(pathStr, typ, tags)

	if e, ok := cache.get(key); ok {
		if e.err != nil {
			var zero T
			return zero, e.err
		}
		return e.value.(T), nil
	}

	v, err := GetConfig[T](cache.core, pathStr, tags...)
	if err != nil {
		cache.put(key, cacheEntry{err: err})
		return v, err
	}
	cache.put(key, cacheEntry{value: v})
	return v, nil
}

// CachedConfigOptional is GetConfigOptional memoized the same way.
func CachedConfigOptional[T any](cache *Cache, pathStr string, tags ...string) (T, bool, error) {
	typ := typeOf[T]()
	key := cacheKey(pathStr, typ, tags) + "\x00optional"

	if e, ok := cache.get(key); ok {
		if e.err != nil {
			var zero T
			return zero, false, e.err
		}
		if e.value == nil {
			var zero T
			return zero, false, nil
		}
		return e.value.(T), true, nil
	}

	v, present, err := GetConfigOptional[T](cache.core, pathStr, tags...)
	switch {
	case err != nil:
		cache.put(key, cacheEntry{err: err})
	case !present:
		cache.put(key, cacheEntry{value: nil})
	default:
		cache.put(key, cacheEntry{value: v})
	}
	return v, present, err
}
