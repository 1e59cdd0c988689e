package storage

import (
	"context"
	"encoding/json"
	"time"
)

// CacheStorage defines interface for the persistent read cache.
// Expiry is stored with each entry; interpreting it (expired == miss)
// is the cache service's responsibility, the storage returns entries as-is.
type CacheStorage interface {
	// GetEntry returns the stored entry for key
	// Returns ErrCacheMiss if the key is absent
	GetEntry(ctx context.Context, key string) (*CacheEntry, error)

	// SetEntry unconditionally overwrites the entry for its key
	SetEntry(ctx context.Context, entry *CacheEntry) error

	// RemoveEntry deletes the entry for key. Removing an absent key is not an error.
	RemoveEntry(ctx context.Context, key string) error

	// PurgeEntries deletes all cached entries (logout / tenant switch)
	PurgeEntries(ctx context.Context) error
}

// CacheEntry represents one cached value with its expiry.
// Value хранится сериализованным: кеш не интерпретирует содержимое.
type CacheEntry struct {
	ExpiresAt time.Time       `json:"expires_at"`
	StoredAt  time.Time       `json:"stored_at"`
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
}

// Expired reports whether the entry must be treated as a miss.
func (e *CacheEntry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}
