package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/maintly/fieldsync/internal/client/storage"
)

// Compile-time check that Storage implements CacheStorage
var _ storage.CacheStorage = (*Storage)(nil)

// GetEntry returns the stored cache entry for key
func (s *Storage) GetEntry(ctx context.Context, key string) (*storage.CacheEntry, error) {
	var entry *storage.CacheEntry

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCache)
		if bucket == nil {
			return fmt.Errorf("cache bucket not found")
		}

		data := bucket.Get([]byte(key))
		if data == nil {
			return storage.ErrCacheMiss
		}

		// Десериализуем
		entry = &storage.CacheEntry{}
		if err := json.Unmarshal(data, entry); err != nil {
			return fmt.Errorf("failed to unmarshal cache entry: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return entry, nil
}

// SetEntry unconditionally overwrites the entry for its key
func (s *Storage) SetEntry(ctx context.Context, entry *storage.CacheEntry) error {
	if entry.Key == "" {
		return fmt.Errorf("cache entry key cannot be empty")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCache)
		if bucket == nil {
			return fmt.Errorf("cache bucket not found")
		}

		// Сериализуем запись целиком (значение + срок жизни)
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to marshal cache entry: %w", err)
		}

		if err := bucket.Put([]byte(entry.Key), data); err != nil {
			return fmt.Errorf("failed to save cache entry: %w", err)
		}

		return nil
	})
}

// RemoveEntry deletes the entry for key. Removing an absent key is not an error.
func (s *Storage) RemoveEntry(ctx context.Context, key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCache)
		if bucket == nil {
			return fmt.Errorf("cache bucket not found")
		}

		if err := bucket.Delete([]byte(key)); err != nil {
			return fmt.Errorf("failed to delete cache entry: %w", err)
		}

		return nil
	})
}

// PurgeEntries deletes all cached entries
func (s *Storage) PurgeEntries(ctx context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketCache); err != nil {
			return fmt.Errorf("failed to delete cache bucket: %w", err)
		}

		if _, err := tx.CreateBucket(bucketCache); err != nil {
			return fmt.Errorf("failed to recreate cache bucket: %w", err)
		}

		return nil
	})
}
