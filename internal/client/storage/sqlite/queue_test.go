package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maintly/fieldsync/internal/client/storage"
)

// создаём тестовое SQLite хранилище очереди (in-memory)
func createTestQueue(t *testing.T) *Storage {
	t.Helper()

	store, err := New(context.Background(), ":memory:")
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	return store
}

func newTestMutation(key string) *storage.QueuedMutation {
	return &storage.QueuedMutation{
		ID:             uuid.New().String(),
		EntityType:     "alert",
		EntityID:       "42",
		Action:         storage.ActionAcknowledge,
		Endpoint:       "/api/v1/alerts/42/acknowledge/",
		Method:         "POST",
		IdempotencyKey: key,
		TenantSlug:     "acme",
		Payload:        json.RawMessage(`{"note":""}`),
		Status:         storage.MutationStatusPending,
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
	}
}

func TestStorage_AddGetMutation(t *testing.T) {
	ctx := context.Background()
	store := createTestQueue(t)

	m := newTestMutation("dev-1:alert:acknowledge:42:aabbccdd00112233")

	// До сохранения — ErrMutationNotFound
	_, err := store.GetMutationByKey(ctx, m.IdempotencyKey)
	assert.ErrorIs(t, err, storage.ErrMutationNotFound)

	require.NoError(t, store.AddMutation(ctx, m))

	got, err := store.GetMutationByKey(ctx, m.IdempotencyKey)
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)
	assert.Equal(t, m.EntityType, got.EntityType)
	assert.Equal(t, m.EntityID, got.EntityID)
	assert.Equal(t, m.Action, got.Action)
	assert.Equal(t, m.Endpoint, got.Endpoint)
	assert.Equal(t, m.Method, got.Method)
	assert.Equal(t, m.TenantSlug, got.TenantSlug)
	assert.Equal(t, storage.MutationStatusPending, got.Status)
	assert.JSONEq(t, string(m.Payload), string(got.Payload))
	assert.True(t, m.CreatedAt.Equal(got.CreatedAt))
}

func TestStorage_AddMutation_DuplicateKey(t *testing.T) {
	ctx := context.Background()
	store := createTestQueue(t)

	m := newTestMutation("dev-1:alert:acknowledge:42:aabbccdd00112233")
	require.NoError(t, store.AddMutation(ctx, m))

	// Та же логическая мутация с тем же ключом не создает вторую запись
	dup := newTestMutation(m.IdempotencyKey)
	err := store.AddMutation(ctx, dup)
	assert.ErrorIs(t, err, storage.ErrDuplicateMutation)

	pending, err := store.ListPending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
	assert.Equal(t, m.ID, pending[0].ID)
}

func TestStorage_ListPending_FIFO(t *testing.T) {
	ctx := context.Background()
	store := createTestQueue(t)

	// Ставим в очередь A, B, C
	var ids []string
	for i := 0; i < 3; i++ {
		m := newTestMutation(fmt.Sprintf("dev-1:alert:acknowledge:%d:hash%d", i, i))
		ids = append(ids, m.ID)
		require.NoError(t, store.AddMutation(ctx, m))
	}

	pending, err := store.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 3)

	// Порядок строго FIFO
	for i, m := range pending {
		assert.Equal(t, ids[i], m.ID)
	}
}

func TestStorage_RemoveMutation(t *testing.T) {
	ctx := context.Background()
	store := createTestQueue(t)

	m := newTestMutation("dev-1:alert:acknowledge:42:aabbccdd00112233")
	require.NoError(t, store.AddMutation(ctx, m))

	require.NoError(t, store.RemoveMutation(ctx, m.ID))

	_, err := store.GetMutationByKey(ctx, m.IdempotencyKey)
	assert.ErrorIs(t, err, storage.ErrMutationNotFound)

	// Повторное удаление — ErrMutationNotFound
	err = store.RemoveMutation(ctx, m.ID)
	assert.ErrorIs(t, err, storage.ErrMutationNotFound)
}

func TestStorage_MarkConflict(t *testing.T) {
	ctx := context.Background()
	store := createTestQueue(t)

	m := newTestMutation("dev-1:alert:acknowledge:42:aabbccdd00112233")
	require.NoError(t, store.AddMutation(ctx, m))

	require.NoError(t, store.MarkConflict(ctx, m.ID, "server error (400): already resolved"))

	// Конфликтная запись убрана из pending, но сохранена для разбора
	pending, err := store.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	conflicts, err := store.ListConflicts(ctx)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, m.ID, conflicts[0].ID)
	assert.Equal(t, storage.MutationStatusConflict, conflicts[0].Status)
	assert.Contains(t, conflicts[0].LastError, "already resolved")

	err = store.MarkConflict(ctx, "absent-id", "x")
	assert.ErrorIs(t, err, storage.ErrMutationNotFound)
}

func TestStorage_IncrementAttempt(t *testing.T) {
	ctx := context.Background()
	store := createTestQueue(t)

	m := newTestMutation("dev-1:alert:acknowledge:42:aabbccdd00112233")
	require.NoError(t, store.AddMutation(ctx, m))

	require.NoError(t, store.IncrementAttempt(ctx, m.ID))
	require.NoError(t, store.IncrementAttempt(ctx, m.ID))

	got, err := store.GetMutationByKey(ctx, m.IdempotencyKey)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AttemptCount)

	err = store.IncrementAttempt(ctx, "absent-id")
	assert.ErrorIs(t, err, storage.ErrMutationNotFound)
}

func TestStorage_CountPending(t *testing.T) {
	ctx := context.Background()
	store := createTestQueue(t)

	count, err := store.CountPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	first := newTestMutation("dev-1:alert:acknowledge:1:hash1")
	second := newTestMutation("dev-1:alert:acknowledge:2:hash2")
	require.NoError(t, store.AddMutation(ctx, first))
	require.NoError(t, store.AddMutation(ctx, second))

	count, err = store.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Конфликт не считается pending
	require.NoError(t, store.MarkConflict(ctx, second.ID, "validation error"))

	count, err = store.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
