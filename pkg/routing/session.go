package routing

import (
	"sync"
	"time"
)

// sessionEntry is one pinned decision in the session cache.
type sessionEntry struct {
	chain          TargetChain
	expiresAt      time.Time
	lastAccessedAt time.Time
}

// SessionCache pins routing decisions to session identifiers with TTL and
// LRU eviction, so a conversation keeps hitting the same chain while it
// stays active. Entries expire after the configured TTL; when the cache
// reaches max capacity, the least recently accessed entry is evicted.
type SessionCache struct {
	// entries maps session identifiers to pinned decisions
	entries map[string]*sessionEntry

	// ttl is the time-to-live for pins (0 = no expiry)
	ttl time.Duration

	// maxEntries is the maximum number of pins (0 = unlimited)
	maxEntries int

	// mu protects concurrent access to the cache
	mu sync.Mutex

	// stopCh signals the cleanup goroutine to stop
	stopCh chan struct{}

	// cleanupInterval is how often to run expiry cleanup
	cleanupInterval time.Duration
}

// NewSessionCache creates a session cache with the specified TTL and max
// entries. If ttl is 0, pins never expire. If maxEntries is 0, the cache has
// unlimited size. The cleanup interval defaults to ttl/2, floored at 10
// seconds.
func NewSessionCache(ttl time.Duration, maxEntries int) *SessionCache {
	cleanupInterval := time.Minute
	if ttl > 0 {
		cleanupInterval = ttl / 2
		if cleanupInterval < 10*time.Second {
			cleanupInterval = 10 * time.Second
		}
	}

	cache := &SessionCache{
		entries:         make(map[string]*sessionEntry),
		ttl:             ttl,
		maxEntries:      maxEntries,
		stopCh:          make(chan struct{}),
		cleanupInterval: cleanupInterval,
	}

	if ttl > 0 {
		go cache.cleanupExpired()
	}

	return cache
}

// Get retrieves the pinned chain for a session. Returns (chain, true) if
// present and not expired, refreshing the access time for LRU ordering.
func (c *SessionCache) Get(sessionID string) (TargetChain, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[sessionID]
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && time.Now().After(entry.expiresAt) {
		delete(c.entries, sessionID)
		return nil, false
	}

	entry.lastAccessedAt = time.Now()
	return entry.chain, true
}

// Set pins a chain to a session with the configured TTL. If the cache is
// full, the least recently used pin is evicted first.
func (c *SessionCache) Set(sessionID string, chain TargetChain) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		if _, exists := c.entries[sessionID]; !exists {
			c.evictLRU()
		}
	}

	now := time.Now()
	expiresAt := time.Time{}
	if c.ttl > 0 {
		expiresAt = now.Add(c.ttl)
	}

	c.entries[sessionID] = &sessionEntry{
		chain:          chain,
		expiresAt:      expiresAt,
		lastAccessedAt: now,
	}
}

// Delete removes a session pin.
func (c *SessionCache) Delete(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, sessionID)
}

// Size returns the current number of pins.
func (c *SessionCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Close stops the background cleanup goroutine. The cache must not be used
// after Close.
func (c *SessionCache) Close() {
	close(c.stopCh)
}

// evictLRU evicts the least recently accessed pin.
// Must be called with the lock held.
func (c *SessionCache) evictLRU() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range c.entries {
		if oldestKey == "" || entry.lastAccessedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.lastAccessedAt
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// cleanupExpired runs periodically to remove expired pins until Close is
// called.
func (c *SessionCache) cleanupExpired() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stopCh:
			return
		}
	}
}

// removeExpired removes all expired pins.
func (c *SessionCache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}
