package cache

import (
	"context"
	"sync"
)

// Resolver resolves a key to a value. A nil-error empty result is a valid
// negative outcome and is cached as such.
type Resolver func(ctx context.Context, key string) (string, bool, error)

type entry struct {
	value string
	found bool
}

type call struct {
	done chan struct{}
	entry
}

// LookupCache memoizes resolved values by opaque, case-sensitive key for
// the process lifetime. Concurrent lookups for the same key coalesce onto
// a single resolver invocation; negative results are cached too. A
// resolver error is swallowed and cached as a miss, never propagated.
type LookupCache struct {
	mu       sync.Mutex
	entries  map[string]entry
	inflight map[string]*call
}

func NewLookupCache() *LookupCache {
	return &LookupCache{
		entries:  make(map[string]entry),
		inflight: make(map[string]*call),
	}
}

// Get returns the cached value without invoking any resolver. The second
// return reports whether the key resolved to a value (false for a cached
// negative), the third whether any entry exists at all.
func (c *LookupCache) Get(key string) (string, bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return e.value, e.found, ok
}

// GetOrResolve returns the cached value for key, invoking resolver at
// most once per key even under concurrent calls. The result, including a
// negative one, is stored before anyone returns.
func (c *LookupCache) GetOrResolve(ctx context.Context, key string, resolver Resolver) (string, bool) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return e.value, e.found
	}
	if cl, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		<-cl.done
		return cl.value, cl.found
	}

	cl := &call{done: make(chan struct{})}
	c.inflight[key] = cl
	c.mu.Unlock()

	value, found, err := resolver(ctx, key)
	if err != nil {
		// Resolution failure behaves as a cached miss.
		value, found = "", false
	}
	cl.value = value
	cl.found = found

	c.mu.Lock()
	c.entries[key] = cl.entry
	delete(c.inflight, key)
	c.mu.Unlock()

	close(cl.done)
	return value, found
}

// Clear empties the cache; subsequent lookups re-resolve.
func (c *LookupCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len returns the number of stored entries, negatives included.
func (c *LookupCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
