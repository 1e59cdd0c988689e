package boltdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maintly/fieldsync/internal/client/storage"
)

func TestStorage_SaveGetDeleteAuth(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	auth := &storage.AuthData{
		Username:     "j.smith",
		UserID:       "user-id-123",
		AccessToken:  "encrypted-access-token",
		RefreshToken: "encrypted-refresh-token",
		TenantSlug:   "acme-plant-7",
		SchemaName:   "tenant_acme_plant_7",
		ExpiresAt:    time.Now().Add(time.Hour).Unix(),
	}

	// GetAuth до сохранения выдает ErrAuthNotFound
	_, err := store.GetAuth(ctx)
	assert.ErrorIs(t, err, storage.ErrAuthNotFound)

	// Сохраняем auth
	err = store.SaveAuth(ctx, auth)
	require.NoError(t, err)

	// Получаем auth и сравниваем
	got, err := store.GetAuth(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, auth.Username, got.Username)
	assert.Equal(t, auth.UserID, got.UserID)
	assert.Equal(t, auth.AccessToken, got.AccessToken)
	assert.Equal(t, auth.RefreshToken, got.RefreshToken)
	assert.Equal(t, auth.TenantSlug, got.TenantSlug)
	assert.Equal(t, auth.SchemaName, got.SchemaName)
	assert.Equal(t, auth.ExpiresAt, got.ExpiresAt)

	// IsAuthenticated должна вернуть true (токен не просрочен)
	authOk, err := store.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.True(t, authOk)

	// Обновляем auth с истекшим токеном
	auth.ExpiresAt = time.Now().Add(-time.Hour).Unix()
	err = store.SaveAuth(ctx, auth)
	require.NoError(t, err)

	authOk, err = store.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.False(t, authOk)

	// Удаляем auth
	err = store.DeleteAuth(ctx)
	require.NoError(t, err)

	// После удаления GetAuth должен вернуть ErrAuthNotFound
	_, err = store.GetAuth(ctx)
	assert.ErrorIs(t, err, storage.ErrAuthNotFound)

	// Удаление уже отсутствующего auth — ошибка
	err = store.DeleteAuth(ctx)
	assert.ErrorIs(t, err, storage.ErrAuthNotFound)
}

func TestStorage_IsAuthenticated_NoAuth(t *testing.T) {
	store := createTestStorage(t)

	ok, err := store.IsAuthenticated(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStorage_SaveAuth_Overwrite(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	first := &storage.AuthData{
		Username:    "j.smith",
		AccessToken: "token-1",
		TenantSlug:  "acme",
		ExpiresAt:   time.Now().Add(time.Hour).Unix(),
	}
	require.NoError(t, store.SaveAuth(ctx, first))

	// Повторное сохранение полностью заменяет запись (refresh токенов)
	second := &storage.AuthData{
		Username:    "j.smith",
		AccessToken: "token-2",
		TenantSlug:  "acme",
		ExpiresAt:   time.Now().Add(2 * time.Hour).Unix(),
	}
	require.NoError(t, store.SaveAuth(ctx, second))

	got, err := store.GetAuth(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-2", got.AccessToken)
}
