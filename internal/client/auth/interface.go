package auth

import (
	"context"

	"github.com/maintly/fieldsync/internal/client/api"
	"github.com/maintly/fieldsync/internal/client/storage"
	"github.com/maintly/fieldsync/internal/models"
	pkgapi "github.com/maintly/fieldsync/pkg/api"
)

//go:generate moq -out service_mock.go . Service

// Service управляет локальной сессией техника: идентичностью устройства,
// шифрованием токенов и их ротацией. Реализует api.TokenSource, так что
// HTTP-клиент читает и обновляет пару токенов через этот же сервис.
type Service interface {
	// Device возвращает стабильную идентичность установки (создает при первом запуске)
	Device(ctx context.Context) (*storage.DeviceIdentity, error)

	// SaveSession сохраняет сессию после успешного логина
	SaveSession(ctx context.Context, username string, resp *pkgapi.SessionResponse) error

	// Session возвращает сессию с расшифрованными токенами
	// Возвращает storage.ErrAuthNotFound, если сессии нет
	Session(ctx context.Context) (*storage.AuthData, error)

	// TenantContext возвращает организацию текущей сессии
	TenantContext(ctx context.Context) (models.TenantContext, error)

	// IsAuthenticated проверяет наличие непросроченной сессии
	IsAuthenticated(ctx context.Context) (bool, error)

	// ClearSession удаляет локальную сессию
	ClearSession(ctx context.Context) error

	// api.TokenSource implementation
	Tokens(ctx context.Context) (*api.Tokens, error)
	StoreTokens(ctx context.Context, tokens *api.Tokens) error
	ClearTokens(ctx context.Context) error
}
