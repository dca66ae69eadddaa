// Package cache provides the process-wide, version-tagged metadata cache.
//
// The cache is an explicitly constructed instance that gets injected into
// the components that need it, so tests can run against isolated caches.
package cache

import "sync"

// Cache maps keys to opaque values with an optional version tag per key.
// There is no eviction; entries live until Clear or process exit.
type Cache struct {
	mu       sync.Mutex
	values   map[string]any
	versions map[string]string
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		values:   map[string]any{},
		versions: map[string]string{},
	}
}

// Get returns the cached value for key. When version is non-empty, a hit
// additionally requires the stored version tag to equal it exactly; a
// mismatched or absent tag is a miss. An empty version matches any entry.
func (c *Cache) Get(key, version string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	if !ok {
		return nil, false
	}
	if version != "" && c.versions[key] != version {
		return nil, false
	}
	return v, true
}

// Set stores value under key. The value is always overwritten; the stored
// version tag is only overwritten when version is non-empty, so an
// unversioned Set does not clear an existing tag.
func (c *Cache) Set(key string, value any, version string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	if version != "" {
		c.versions[key] = version
	}
}

// Clear drops all entries and version tags.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = map[string]any{}
	c.versions = map[string]string{}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.values)
}
