package storage

import (
	"context"
	"time"
)

// AuthStorage defines interface for storing authentication data on client.
// This is the lowest storage layer - it works with raw data (already encrypted
// tokens) and doesn't perform any encryption/decryption itself.
type AuthStorage interface {
	// SaveAuth stores authentication data as-is (tokens should already be encrypted)
	SaveAuth(ctx context.Context, auth *AuthData) error

	// GetAuth retrieves stored authentication data as-is (tokens will be encrypted)
	// Returns ErrAuthNotFound if no auth data exists
	GetAuth(ctx context.Context) (*AuthData, error)

	// DeleteAuth removes stored authentication data (logout)
	DeleteAuth(ctx context.Context) error

	// IsAuthenticated checks if valid authentication exists (not expired)
	IsAuthenticated(ctx context.Context) (bool, error)
}

// DeviceStorage defines interface for the stable device identity.
// The device id namespaces idempotency keys and binds the token encryption
// key to this install.
type DeviceStorage interface {
	// GetDevice returns the stored device identity
	// Returns ErrDeviceNotFound if none exists yet
	GetDevice(ctx context.Context) (*DeviceIdentity, error)

	// SaveDevice stores the device identity
	SaveDevice(ctx context.Context, device *DeviceIdentity) error
}

// AuthData represents authentication information in storage.
// IMPORTANT: This struct is used at different layers with different token states:
// - In memory (business logic): tokens are plaintext
// - In storage (BoltDB): tokens are encrypted (base64-encoded ciphertext)
// The encryption/decryption happens in the auth.Service layer.
type AuthData struct {
	Username     string `json:"username"`
	UserID       string `json:"user_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TenantSlug   string `json:"tenant_slug"`
	SchemaName   string `json:"schema_name"`
	ExpiresAt    int64  `json:"expires_at"` // unix seconds, срок access token
}

// Expired reports whether the access token lifetime has passed.
func (a *AuthData) Expired(now time.Time) bool {
	return a.ExpiresAt > 0 && now.Unix() >= a.ExpiresAt
}

// DeviceIdentity represents the per-install identity of this client.
type DeviceIdentity struct {
	DeviceID    string `json:"device_id"`    // стабильный UUID установки
	StorageSalt string `json:"storage_salt"` // base64 соль для ключа шифрования токенов
}
