// Package cache provides a small in-memory TTL cache used by the store to
// avoid repeated reads of hot rows.
package cache

import (
	"sync"
	"time"
)

// Config controls cache behavior.
type Config struct {
	// DefaultTTL is applied by Set. Zero means entries never expire.
	DefaultTTL time.Duration
	// CleanupInterval is how often expired entries are swept. Zero disables
	// the background sweeper; expired entries are then dropped lazily on Get.
	CleanupInterval time.Duration
	// MaxItems caps the cache size. When full, the entry closest to expiry
	// is evicted to make room. Zero means unbounded.
	MaxItems int
	// OnEviction is called after an entry is removed by expiry or capacity
	// pressure. It is not called for explicit Delete.
	OnEviction func(key string, value any)
}

type entry struct {
	value     any
	expiresAt time.Time // zero means no expiry
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Cache is a thread-safe in-memory key/value cache with per-entry TTL.
type Cache struct {
	config Config

	mu    sync.RWMutex
	items map[string]entry

	done      chan struct{}
	closeOnce sync.Once
}

// New creates a cache and starts its cleanup goroutine when a cleanup
// interval is configured. Close must be called to stop it.
func New(config Config) *Cache {
	c := &Cache{
		config: config,
		items:  make(map[string]entry),
		done:   make(chan struct{}),
	}
	if config.CleanupInterval > 0 {
		go c.cleanupLoop()
	}
	return c
}

// Get returns the value for key, dropping it first if it has expired.
func (c *Cache) Get(key string) (any, bool) {
	now := time.Now()

	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !e.expired(now) {
		return e.value, true
	}

	var evictedValue any
	evicted := false

	c.mu.Lock()
	// Re-check under the write lock; another goroutine may have replaced it.
	if current, ok := c.items[key]; ok && current.expired(now) {
		delete(c.items, key)
		evictedValue, evicted = current.value, true
	}
	c.mu.Unlock()

	if evicted && c.config.OnEviction != nil {
		c.config.OnEviction(key, evictedValue)
	}
	return nil, false
}

// Set stores a value with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.config.DefaultTTL)
}

// SetWithTTL stores a value with an explicit TTL. A zero or negative TTL
// means the entry never expires.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	var evictedKey string
	var evictedValue any
	evicted := false

	c.mu.Lock()
	if _, exists := c.items[key]; !exists && c.config.MaxItems > 0 && len(c.items) >= c.config.MaxItems {
		evictedKey, evictedValue, evicted = c.evictOne()
	}
	c.items[key] = entry{value: value, expiresAt: expiresAt}
	c.mu.Unlock()

	if evicted && c.config.OnEviction != nil {
		c.config.OnEviction(evictedKey, evictedValue)
	}
}

// evictOne removes the entry closest to expiry and reports what was
// removed. Entries without expiry are only chosen when every entry lacks
// one. Caller must hold the write lock.
func (c *Cache) evictOne() (string, any, bool) {
	var victim string
	var victimAt time.Time
	found := false

	for key, e := range c.items {
		if !found {
			victim, victimAt, found = key, e.expiresAt, true
			continue
		}
		if victimAt.IsZero() || (!e.expiresAt.IsZero() && e.expiresAt.Before(victimAt)) {
			victim, victimAt = key, e.expiresAt
		}
	}
	if !found {
		return "", nil, false
	}

	value := c.items[victim].value
	delete(c.items, victim)
	return victim, value, true
}

// Delete removes an entry without invoking the eviction callback.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Len returns the number of entries, including any not yet swept.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (c *Cache) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.done:
			return
		}
	}
}

func (c *Cache) removeExpired() {
	now := time.Now()

	type dropped struct {
		key   string
		value any
	}
	var removed []dropped

	c.mu.Lock()
	for key, e := range c.items {
		if e.expired(now) {
			delete(c.items, key)
			if c.config.OnEviction != nil {
				removed = append(removed, dropped{key: key, value: e.value})
			}
		}
	}
	c.mu.Unlock()

	for _, d := range removed {
		c.config.OnEviction(d.key, d.value)
	}
}
