package cache

import (
	"sync"
	"time"
)

// Cache is a thread-safe in-process key-value store with TTLs and tag
// invalidation. Read paths cache derived set payloads here; lifecycle
// commits invalidate by set tag.
type Cache struct {
	m        sync.Map
	tagIndex sync.Map // tag -> map[string]struct{}
	tagMu    sync.Mutex
}

var (
	once     sync.Once
	instance *Cache
)

func GetInstance() *Cache {
	once.Do(func() {
		instance = NewCache()
	})
	return instance
}

func NewCache() *Cache {
	return &Cache{}
}

type cacheItem struct {
	Value     interface{}
	ExpiresAt int64 // unix nanos; 0 means no expiration
}

// Set stores a value with an optional TTL in seconds (0 = no expiry)
// and optional tags for group invalidation.
func (c *Cache) Set(key string, value interface{}, ttl int64, tags []string) {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(time.Duration(ttl) * time.Second).UnixNano()
	}
	c.m.Store(key, cacheItem{Value: value, ExpiresAt: expiresAt})
	if len(tags) > 0 {
		c.tag(key, tags)
	}
}

// Get returns (value, true) when present and not expired.
func (c *Cache) Get(key string) (interface{}, bool) {
	v, ok := c.m.Load(key)
	if !ok {
		return nil, false
	}
	item := v.(cacheItem)
	if item.ExpiresAt > 0 && time.Now().UnixNano() > item.ExpiresAt {
		c.m.Delete(key)
		return nil, false
	}
	return item.Value, true
}

// Delete removes a single key.
func (c *Cache) Delete(key string) {
	c.m.Delete(key)
}

func (c *Cache) tag(key string, tags []string) {
	c.tagMu.Lock()
	defer c.tagMu.Unlock()
	for _, t := range tags {
		var set map[string]struct{}
		if v, ok := c.tagIndex.Load(t); ok {
			set = v.(map[string]struct{})
		} else {
			set = make(map[string]struct{})
		}
		set[key] = struct{}{}
		c.tagIndex.Store(t, set)
	}
}

// InvalidateTag removes every key registered under the tag.
func (c *Cache) InvalidateTag(tag string) {
	c.tagMu.Lock()
	defer c.tagMu.Unlock()
	if v, ok := c.tagIndex.Load(tag); ok {
		for key := range v.(map[string]struct{}) {
			c.m.Delete(key)
		}
		c.tagIndex.Delete(tag)
	}
}

// Flush drops everything (tests, cache-warm restarts).
func (c *Cache) Flush() {
	c.m.Range(func(key, _ interface{}) bool {
		c.m.Delete(key)
		return true
	})
	c.tagIndex.Range(func(key, _ interface{}) bool {
		c.tagIndex.Delete(key)
		return true
	})
}
