package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maintly/fieldsync/internal/client/api"
	"github.com/maintly/fieldsync/internal/client/storage"
	"github.com/maintly/fieldsync/internal/client/storage/sqlite"
)

// fakeReplayer программируется на последовательность исходов по endpoint
type fakeReplayer struct {
	// fail возвращает ошибку для endpoint, если задана
	fail map[string]error
	// calls фиксирует порядок воспроизведения
	calls []string
}

func (f *fakeReplayer) ReplayMutation(_ context.Context, m *storage.QueuedMutation) (json.RawMessage, error) {
	f.calls = append(f.calls, m.Endpoint)
	if err, ok := f.fail[m.Endpoint]; ok {
		return nil, err
	}
	return json.RawMessage(fmt.Sprintf(`{"endpoint":%q,"status":"ok"}`, m.Endpoint)), nil
}

func newTestQueue(t *testing.T, replayer Replayer) *Service {
	t.Helper()

	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return NewService(store, replayer, "device-1", slog.New(slog.DiscardHandler))
}

func enqueueN(t *testing.T, s *Service, endpoints ...string) {
	t.Helper()
	for i, ep := range endpoints {
		_, created, err := s.Enqueue(context.Background(), EnqueueRequest{
			EntityType: "alert",
			EntityID:   fmt.Sprintf("%d", i+1),
			Action:     storage.ActionAcknowledge,
			Endpoint:   ep,
			Method:     "POST",
			TenantSlug: "acme",
			Payload:    map[string]string{"endpoint": ep},
		})
		require.NoError(t, err)
		require.True(t, created)
	}
}

func TestBuildIdempotencyKey(t *testing.T) {
	payload := []byte(`{"status":"acknowledged"}`)

	mustKey := func(deviceID, entityType string, action storage.MutationAction, entityID string, p []byte) string {
		key, err := BuildIdempotencyKey(deviceID, entityType, action, entityID, p)
		require.NoError(t, err)
		return key
	}

	key := mustKey("device-1", "alert", storage.ActionAcknowledge, "42", payload)
	assert.Equal(t, key, mustKey("device-1", "alert", storage.ActionAcknowledge, "42", payload))

	// Любая компонента меняет ключ
	assert.NotEqual(t, key, mustKey("device-2", "alert", storage.ActionAcknowledge, "42", payload))
	assert.NotEqual(t, key, mustKey("device-1", "alert", storage.ActionResolve, "42", payload))
	assert.NotEqual(t, key, mustKey("device-1", "alert", storage.ActionAcknowledge, "7", payload))
	assert.NotEqual(t, key, mustKey("device-1", "alert", storage.ActionAcknowledge, "42", []byte(`{}`)))

	_, err := BuildIdempotencyKey("device-1", "alert", storage.ActionAcknowledge, "42", nil)
	assert.Error(t, err)
}

func TestService_EnqueueDeduplicates(t *testing.T) {
	s := newTestQueue(t, &fakeReplayer{})
	ctx := context.Background()

	req := EnqueueRequest{
		EntityType: "alert",
		EntityID:   "42",
		Action:     storage.ActionAcknowledge,
		Endpoint:   "/api/v1/alerts/42/acknowledge/",
		Method:     "POST",
		TenantSlug: "acme",
		Payload:    map[string]string{"status": "acknowledged"},
	}

	first, created, err := s.Enqueue(ctx, req)
	require.NoError(t, err)
	assert.True(t, created)

	// Двойное нажатие: тот же ключ, та же запись очереди
	second, created, err := s.Enqueue(ctx, req)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	count, err := s.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestService_DrainReplaysInOrder(t *testing.T) {
	replayer := &fakeReplayer{}
	s := newTestQueue(t, replayer)
	ctx := context.Background()

	enqueueN(t, s, "/a", "/b", "/c")

	result, err := s.Drain(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"/a", "/b", "/c"}, replayer.calls)
	assert.Len(t, result.Replayed, 3)
	assert.Equal(t, 0, result.Conflicts)
	assert.Equal(t, 0, result.Remaining)

	count, err := s.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestService_DrainHaltsOnNetworkError(t *testing.T) {
	netErr := &api.NetworkError{Err: errors.New("connection refused")}
	replayer := &fakeReplayer{fail: map[string]error{"/b": fmt.Errorf("replay failed: %w", netErr)}}
	s := newTestQueue(t, replayer)
	ctx := context.Background()

	enqueueN(t, s, "/a", "/b", "/c")

	result, err := s.Drain(ctx)
	require.Error(t, err)
	assert.True(t, api.IsNetworkError(err))

	// /a подтверждена, /b и /c остались pending в исходном порядке
	assert.Equal(t, []string{"/a", "/b"}, replayer.calls)
	assert.Len(t, result.Replayed, 1)
	assert.Equal(t, "/a", result.Replayed[0].Mutation.Endpoint)
	assert.Equal(t, 2, result.Remaining)

	count, err := s.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Сеть вернулась: хвост уходит без /a
	replayer.fail = nil
	replayer.calls = nil

	result, err = s.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"/b", "/c"}, replayer.calls)
	assert.Len(t, result.Replayed, 2)
}

func TestService_DrainMarksConflictAndContinues(t *testing.T) {
	httpErr := &api.HTTPError{Status: 409, Message: "alert already resolved"}
	replayer := &fakeReplayer{fail: map[string]error{"/b": fmt.Errorf("replay failed: %w", httpErr)}}
	s := newTestQueue(t, replayer)
	ctx := context.Background()

	enqueueN(t, s, "/a", "/b", "/c")

	result, err := s.Drain(ctx)
	require.NoError(t, err)

	// Конфликт не останавливает проход
	assert.Equal(t, []string{"/a", "/b", "/c"}, replayer.calls)
	assert.Len(t, result.Replayed, 2)
	assert.Equal(t, 1, result.Conflicts)
	assert.Equal(t, 0, result.Remaining)

	conflicts, err := s.Conflicts(ctx)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "/b", conflicts[0].Endpoint)
	assert.Equal(t, storage.MutationStatusConflict, conflicts[0].Status)
	assert.Contains(t, conflicts[0].LastError, "alert already resolved")
	assert.Equal(t, 1, conflicts[0].AttemptCount)

	// Конфликтная запись не участвует в следующих drain
	replayer.calls = nil
	result, err = s.Drain(ctx)
	require.NoError(t, err)
	assert.Empty(t, replayer.calls)
	assert.Empty(t, result.Replayed)

	// Ручной разбор: удаляем конфликт
	require.NoError(t, s.Discard(ctx, conflicts[0].ID))
	conflicts, err = s.Conflicts(ctx)
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestService_DrainEmptyQueue(t *testing.T) {
	replayer := &fakeReplayer{}
	s := newTestQueue(t, replayer)

	result, err := s.Drain(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Replayed)
	assert.Empty(t, replayer.calls)
}
