package boltdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maintly/fieldsync/internal/client/storage"
)

func TestStorage_Device_Roundtrip(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	// До сохранения — ErrDeviceNotFound
	_, err := store.GetDevice(ctx)
	assert.ErrorIs(t, err, storage.ErrDeviceNotFound)

	device := &storage.DeviceIdentity{
		DeviceID:    "0b5c2e1a-9f4d-4c1b-8a3e-111111111111",
		StorageSalt: "c2FsdC1zYWx0LXNhbHQ=",
	}
	require.NoError(t, store.SaveDevice(ctx, device))

	got, err := store.GetDevice(ctx)
	require.NoError(t, err)
	assert.Equal(t, device.DeviceID, got.DeviceID)
	assert.Equal(t, device.StorageSalt, got.StorageSalt)
}

func TestStorage_SaveDevice_EmptyID(t *testing.T) {
	store := createTestStorage(t)

	err := store.SaveDevice(context.Background(), &storage.DeviceIdentity{})
	assert.Error(t, err)
}
