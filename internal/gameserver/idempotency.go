package gameserver

import (
	"sync"
	"time"

	"github.com/mitchelldurbincs/chesstx/internal/game/move"
)

const maxIdempotencyEntries = 1000

// idempotencyEntry stores a cached outcome with timestamp
type idempotencyEntry struct {
	outcome   move.Outcome
	createdAt time.Time
}

// IdempotencyManager caches move outcomes by client-supplied key so that a
// retried submission gets the first answer instead of a second transaction.
type IdempotencyManager struct {
	cache map[string]*idempotencyEntry
	ttl   time.Duration
	now   func() time.Time
	mu    sync.RWMutex
}

// NewIdempotencyManager creates a new idempotency manager
func NewIdempotencyManager(ttl time.Duration) *IdempotencyManager {
	return &IdempotencyManager{
		cache: make(map[string]*idempotencyEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Check returns the cached outcome for key, if one is still valid
func (im *IdempotencyManager) Check(key string) (move.Outcome, bool) {
	if key == "" {
		return move.Outcome{}, false
	}

	im.mu.RLock()
	defer im.mu.RUnlock()

	entry, exists := im.cache[key]
	if !exists || im.expired(entry) {
		return move.Outcome{}, false
	}
	return entry.outcome, true
}

// Store caches the outcome for key
func (im *IdempotencyManager) Store(key string, outcome move.Outcome) {
	if key == "" {
		return
	}

	im.mu.Lock()
	defer im.mu.Unlock()

	im.cache[key] = &idempotencyEntry{
		outcome:   outcome,
		createdAt: im.now(),
	}

	if len(im.cache) > maxIdempotencyEntries {
		im.cleanupOldEntriesLocked()
	}
}

// Cleanup drops expired entries and returns how many were removed
func (im *IdempotencyManager) Cleanup() int {
	im.mu.Lock()
	defer im.mu.Unlock()
	return im.cleanupOldEntriesLocked()
}

// Len returns the number of cached entries
func (im *IdempotencyManager) Len() int {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return len(im.cache)
}

func (im *IdempotencyManager) expired(e *idempotencyEntry) bool {
	return im.ttl > 0 && im.now().Sub(e.createdAt) > im.ttl
}

// cleanupOldEntriesLocked must be called with mu held
func (im *IdempotencyManager) cleanupOldEntriesLocked() int {
	removed := 0
	for key, entry := range im.cache {
		if im.expired(entry) {
			delete(im.cache, key)
			removed++
		}
	}
	return removed
}
