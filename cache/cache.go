// Package cache is a small in-memory TTL cache for search-volume lookups.
// Volume metrics are monthly aggregates, so repeated lookups for the same
// keyword set within a batch (or across close batches) need not hit the
// paid provider twice.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/seatpick/copysmith/models"
)

// entry holds a cached record set with its creation timestamp.
type entry struct {
	records   []models.SearchVolumeRecord
	createdAt time.Time
}

// Cache is an in-memory cache for search-volume lookups.
// It is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
}

// New creates a new Cache with the given maximum number of entries.
// A background goroutine runs every 5 minutes to evict expired entries
// (older than 1 hour).
func New(maxEntries int) *Cache {
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
	}

	go c.cleanupLoop()
	return c
}

// Key generates a cache key from the keyword list, location and language.
// The keyword list is hashed as given: callers that normalize spelling get
// the hit rate benefit, callers that don't still get correct results.
func Key(keywords []string, location int, language string) string {
	h := sha256.New()
	h.Write([]byte(strings.Join(keywords, "\x00")))
	fmt.Fprintf(h, "|%d|%s", location, language)
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves cached records if they exist and are younger than maxAge.
// If maxAge <= 0, no cache lookup is performed.
// Returns the records and whether it was a cache hit.
func (c *Cache) Get(key string, maxAge time.Duration) ([]models.SearchVolumeRecord, bool) {
	if maxAge <= 0 {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Since(e.createdAt) > maxAge {
		return nil, false
	}

	return e.records, true
}

// Set stores a record set in the cache. If the cache is at capacity,
// a random entry is evicted to make room.
func (c *Cache) Set(key string, records []models.SearchVolumeRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Evict one random entry if at capacity (map iteration is random in Go).
	if len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	c.store[key] = &entry{
		records:   records,
		createdAt: time.Now(),
	}
}

// cleanupLoop evicts entries older than 1 hour every 5 minutes.
func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-1 * time.Hour)
		c.mu.Lock()
		for k, e := range c.store {
			if e.createdAt.Before(cutoff) {
				delete(c.store, k)
			}
		}
		c.mu.Unlock()
	}
}
