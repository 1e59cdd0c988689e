package auth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/maintly/fieldsync/internal/client/api"
	"github.com/maintly/fieldsync/internal/client/storage"
	"github.com/maintly/fieldsync/internal/crypto"
	"github.com/maintly/fieldsync/internal/models"
	"github.com/maintly/fieldsync/internal/validation"
	pkgapi "github.com/maintly/fieldsync/pkg/api"
)

// service реализует Service поверх локального хранилища.
// Токены шифруются перед записью и расшифровываются при чтении; ключ
// выводится из идентификатора устройства и соли установки, поэтому
// скопированный файл БД на другом устройстве бесполезен.
type service struct {
	authStorage   storage.AuthStorage
	deviceStorage storage.DeviceStorage
	logger        *slog.Logger

	mu     sync.Mutex
	device *storage.DeviceIdentity
	key    []byte
}

// Compile-time check that service implements Service and api.TokenSource
var (
	_ Service         = (*service)(nil)
	_ api.TokenSource = (*service)(nil)
)

// NewService создает новый сервис сессии
func NewService(authStorage storage.AuthStorage, deviceStorage storage.DeviceStorage, logger *slog.Logger) Service {
	return &service{
		authStorage:   authStorage,
		deviceStorage: deviceStorage,
		logger:        logger,
	}
}

// Device возвращает идентичность устройства, создавая ее при первом запуске
func (s *service) Device(ctx context.Context) (*storage.DeviceIdentity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deviceLocked(ctx)
}

func (s *service) deviceLocked(ctx context.Context) (*storage.DeviceIdentity, error) {
	if s.device != nil {
		return s.device, nil
	}

	device, err := s.deviceStorage.GetDevice(ctx)
	if err == nil {
		s.device = device
		return device, nil
	}
	if err != storage.ErrDeviceNotFound {
		return nil, fmt.Errorf("failed to get device identity: %w", err)
	}

	// Первый запуск: генерируем стабильный device id и соль установки
	salt, err := crypto.GenerateSaltBase64()
	if err != nil {
		return nil, fmt.Errorf("failed to generate storage salt: %w", err)
	}

	device = &storage.DeviceIdentity{
		DeviceID:    uuid.New().String(),
		StorageSalt: salt,
	}

	if err := s.deviceStorage.SaveDevice(ctx, device); err != nil {
		return nil, fmt.Errorf("failed to save device identity: %w", err)
	}

	s.logger.Info("device identity created", "device_id", device.DeviceID)
	s.device = device

	return device, nil
}

// storageKey выводит (и мемоизирует) ключ шифрования токенов
func (s *service) storageKey(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key != nil {
		return s.key, nil
	}

	device, err := s.deviceLocked(ctx)
	if err != nil {
		return nil, err
	}

	key, err := crypto.DeriveStorageKeyFromBase64Salt(device.DeviceID, device.StorageSalt)
	if err != nil {
		return nil, fmt.Errorf("failed to derive storage key: %w", err)
	}

	s.key = key
	return key, nil
}

// SaveSession шифрует и сохраняет сессию после успешного логина
func (s *service) SaveSession(ctx context.Context, username string, resp *pkgapi.SessionResponse) error {
	if err := validation.ValidateTenantSlug(resp.TenantSlug); err != nil {
		return fmt.Errorf("invalid tenant slug in session: %w", err)
	}

	auth := &storage.AuthData{
		Username:     username,
		UserID:       resp.UserID,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TenantSlug:   resp.TenantSlug,
		SchemaName:   resp.SchemaName,
		ExpiresAt:    time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second).Unix(),
	}

	return s.saveEncrypted(ctx, auth)
}

// saveEncrypted шифрует токены и передает запись в хранилище
func (s *service) saveEncrypted(ctx context.Context, auth *storage.AuthData) error {
	key, err := s.storageKey(ctx)
	if err != nil {
		return err
	}

	encryptedAccess, err := crypto.EncryptToBase64([]byte(auth.AccessToken), key)
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}
	encryptedRefresh, err := crypto.EncryptToBase64([]byte(auth.RefreshToken), key)
	if err != nil {
		return fmt.Errorf("failed to encrypt refresh token: %w", err)
	}

	// Копируем структуру, чтобы не менять входящую
	authCopy := *auth
	authCopy.AccessToken = encryptedAccess
	authCopy.RefreshToken = encryptedRefresh

	return s.authStorage.SaveAuth(ctx, &authCopy)
}

// Session загружает сессию и расшифровывает токены
func (s *service) Session(ctx context.Context) (*storage.AuthData, error) {
	stored, err := s.authStorage.GetAuth(ctx)
	if err != nil {
		return nil, err
	}

	key, err := s.storageKey(ctx)
	if err != nil {
		return nil, err
	}

	accessBytes, err := crypto.DecryptFromBase64(stored.AccessToken, key)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt access token: %w", err)
	}
	refreshBytes, err := crypto.DecryptFromBase64(stored.RefreshToken, key)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt refresh token: %w", err)
	}

	auth := *stored
	auth.AccessToken = string(accessBytes)
	auth.RefreshToken = string(refreshBytes)

	return &auth, nil
}

// TenantContext возвращает контекст организации текущей сессии
func (s *service) TenantContext(ctx context.Context) (models.TenantContext, error) {
	stored, err := s.authStorage.GetAuth(ctx)
	if err != nil {
		return models.TenantContext{}, err
	}

	return models.TenantContext{
		Slug:       stored.TenantSlug,
		SchemaName: stored.SchemaName,
	}, nil
}

// IsAuthenticated проверяет наличие непросроченной сессии
func (s *service) IsAuthenticated(ctx context.Context) (bool, error) {
	return s.authStorage.IsAuthenticated(ctx)
}

// ClearSession удаляет локальную сессию (logout)
func (s *service) ClearSession(ctx context.Context) error {
	if err := s.authStorage.DeleteAuth(ctx); err != nil {
		if err == storage.ErrAuthNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Tokens реализует api.TokenSource: текущая пара в plaintext
func (s *service) Tokens(ctx context.Context) (*api.Tokens, error) {
	auth, err := s.Session(ctx)
	if err != nil {
		return nil, err
	}

	return &api.Tokens{
		Access:  auth.AccessToken,
		Refresh: auth.RefreshToken,
	}, nil
}

// StoreTokens реализует api.TokenSource: атомарная замена пары после refresh
func (s *service) StoreTokens(ctx context.Context, tokens *api.Tokens) error {
	auth, err := s.Session(ctx)
	if err != nil {
		return fmt.Errorf("failed to load session for rotation: %w", err)
	}

	auth.AccessToken = tokens.Access
	auth.RefreshToken = tokens.Refresh
	auth.ExpiresAt = time.Now().Add(time.Duration(tokens.ExpiresIn) * time.Second).Unix()

	if err := s.saveEncrypted(ctx, auth); err != nil {
		return fmt.Errorf("failed to save rotated tokens: %w", err)
	}

	s.logger.Debug("token pair rotated")
	return nil
}

// ClearTokens реализует api.TokenSource: невосстановимый отказ refresh
func (s *service) ClearTokens(ctx context.Context) error {
	s.logger.Warn("clearing session after refresh failure")
	return s.ClearSession(ctx)
}
