package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/maintly/fieldsync/internal/client/storage"
)

var deviceKey = []byte("identity")

// Compile-time check that Storage implements DeviceStorage
var _ storage.DeviceStorage = (*Storage)(nil)

// GetDevice returns the stored device identity
func (s *Storage) GetDevice(ctx context.Context) (*storage.DeviceIdentity, error) {
	var device *storage.DeviceIdentity

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketDevice)
		if bucket == nil {
			return fmt.Errorf("device bucket not found")
		}

		data := bucket.Get(deviceKey)
		if data == nil {
			return storage.ErrDeviceNotFound
		}

		device = &storage.DeviceIdentity{}
		if err := json.Unmarshal(data, device); err != nil {
			return fmt.Errorf("failed to unmarshal device identity: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return device, nil
}

// SaveDevice stores the device identity
func (s *Storage) SaveDevice(ctx context.Context, device *storage.DeviceIdentity) error {
	if device.DeviceID == "" {
		return fmt.Errorf("device id cannot be empty")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketDevice)
		if bucket == nil {
			return fmt.Errorf("device bucket not found")
		}

		data, err := json.Marshal(device)
		if err != nil {
			return fmt.Errorf("failed to marshal device identity: %w", err)
		}

		if err := bucket.Put(deviceKey, data); err != nil {
			return fmt.Errorf("failed to save device identity: %w", err)
		}

		return nil
	})
}
