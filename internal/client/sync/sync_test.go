package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maintly/fieldsync/internal/client/api"
	"github.com/maintly/fieldsync/internal/client/cache"
	"github.com/maintly/fieldsync/internal/client/queue"
	"github.com/maintly/fieldsync/internal/client/storage"
	"github.com/maintly/fieldsync/internal/client/storage/boltdb"
	"github.com/maintly/fieldsync/internal/client/storage/sqlite"
	pkgapi "github.com/maintly/fieldsync/pkg/api"
)

// scriptedReplayer отдает заранее заданные исходы: на каждый endpoint -
// очередь ответов, исчерпание очереди означает успех
type scriptedReplayer struct {
	responses map[string]json.RawMessage
	failures  map[string][]error // снимается по одному на вызов
	calls     []string
}

func (f *scriptedReplayer) ReplayMutation(_ context.Context, m *storage.QueuedMutation) (json.RawMessage, error) {
	f.calls = append(f.calls, m.Endpoint)

	if errs := f.failures[m.Endpoint]; len(errs) > 0 {
		err := errs[0]
		f.failures[m.Endpoint] = errs[1:]
		return nil, err
	}

	if resp, ok := f.responses[m.Endpoint]; ok {
		return resp, nil
	}
	return json.RawMessage(`{}`), nil
}

type fixture struct {
	svc      *Service
	queue    *queue.Service
	cache    cache.Cache
	replayer *scriptedReplayer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)

	queueStore, err := sqlite.New(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = queueStore.Close() })

	boltStore, err := boltdb.New(ctx, filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = boltStore.Close() })

	replayer := &scriptedReplayer{
		responses: map[string]json.RawMessage{},
		failures:  map[string][]error{},
	}

	q := queue.NewService(queueStore, replayer, "device-1", logger)
	c := cache.New(boltStore, logger)

	svc := NewService(q, c, logger)
	svc.baseDelay = time.Millisecond // тесты не должны ждать настоящий backoff

	return &fixture{svc: svc, queue: q, cache: c, replayer: replayer}
}

func (f *fixture) enqueue(t *testing.T, req queue.EnqueueRequest) *storage.QueuedMutation {
	t.Helper()
	m, created, err := f.queue.Enqueue(context.Background(), req)
	require.NoError(t, err)
	require.True(t, created)
	return m
}

func ackAlertRequest(id int64) queue.EnqueueRequest {
	return queue.EnqueueRequest{
		EntityType: cache.EntityAlert,
		EntityID:   fmt.Sprintf("%d", id),
		Action:     storage.ActionAcknowledge,
		Endpoint:   fmt.Sprintf("/api/v1/alerts/%d/acknowledge/", id),
		Method:     "POST",
		TenantSlug: "acme",
		Payload:    pkgapi.AlertActionRequest{},
	}
}

func TestSync_EmptyQueue(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Sync(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Replayed)
	assert.Zero(t, res.Remaining)
}

func TestSync_RefreshesCacheFromReplayResponses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Кешированный список несет прежний статус алерта
	listKey := cache.ListKey("acme", cache.EntityAlert, cache.FilterSignature(nil))
	require.NoError(t, f.cache.Set(ctx, listKey,
		[]pkgapi.Alert{{ID: 42, Status: "active"}}, cache.TTLAlerts))

	f.enqueue(t, ackAlertRequest(42))
	f.replayer.responses["/api/v1/alerts/42/acknowledge/"] = json.RawMessage(
		`{"id":42,"status":"acknowledged","rule_name":"vibration_high"}`,
	)

	res, err := f.svc.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Replayed)
	assert.Zero(t, res.Remaining)

	// Кеш обновлен авторитетным ответом сервера
	var alert pkgapi.Alert
	key := cache.EntityKey("acme", cache.EntityAlert, "42")
	require.NoError(t, f.cache.Get(ctx, key, &alert))
	assert.Equal(t, "acknowledged", alert.Status)
	assert.Equal(t, "vibration_high", alert.RuleName)

	// Устаревший список сброшен
	var alerts []pkgapi.Alert
	assert.ErrorIs(t, f.cache.Get(ctx, listKey, &alerts), storage.ErrCacheMiss)
}

func TestSync_RetriesFlappingNetwork(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.enqueue(t, ackAlertRequest(1))
	f.enqueue(t, ackAlertRequest(2))

	// Первая попытка /2 падает по сети, повторный drain добирает хвост
	netErr := fmt.Errorf("replay failed: %w", &api.NetworkError{Err: errors.New("dial timeout")})
	f.replayer.failures["/api/v1/alerts/2/acknowledge/"] = []error{netErr}

	res, err := f.svc.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Replayed)
	assert.Zero(t, res.Remaining)

	// /1 ушел один раз, /2 - после повтора
	assert.Equal(t, []string{
		"/api/v1/alerts/1/acknowledge/",
		"/api/v1/alerts/2/acknowledge/",
		"/api/v1/alerts/2/acknowledge/",
	}, f.replayer.calls)
}

func TestSync_GivesUpWhenNetworkStaysDown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.enqueue(t, ackAlertRequest(1))

	netErr := fmt.Errorf("replay failed: %w", &api.NetworkError{Err: errors.New("no route to host")})
	down := make([]error, DefaultMaxRetries+1)
	for i := range down {
		down[i] = netErr
	}
	f.replayer.failures["/api/v1/alerts/1/acknowledge/"] = down

	res, err := f.svc.Sync(ctx)
	require.Error(t, err)
	assert.True(t, api.IsNetworkError(err))
	assert.Equal(t, 1, res.Remaining, "mutation stays queued for the next sync")

	count, err := f.svc.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSync_ConflictsAreSurfacedNotRetried(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.enqueue(t, ackAlertRequest(1))
	f.enqueue(t, ackAlertRequest(2))

	httpErr := fmt.Errorf("replay failed: %w", &api.HTTPError{Status: 409, Message: "already resolved"})
	f.replayer.failures["/api/v1/alerts/1/acknowledge/"] = []error{httpErr}

	res, err := f.svc.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Replayed)
	assert.Equal(t, 1, res.Conflicts)

	conflicts, err := f.svc.Conflicts(ctx)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "/api/v1/alerts/1/acknowledge/", conflicts[0].Endpoint)
}

func TestSync_MovementReplayInvalidatesItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Оптимистичная копия позиции в кеше
	key := cache.EntityKey("acme", cache.EntityInventory, "3")
	require.NoError(t, f.cache.Set(ctx, key, pkgapi.InventoryItem{ID: 3, Quantity: 8}, cache.TTLInventory))

	f.enqueue(t, queue.EnqueueRequest{
		EntityType: cache.EntityInventory,
		EntityID:   "3",
		Action:     storage.ActionMovement,
		Endpoint:   "/api/v1/inventory/items/3/movements/",
		Method:     "POST",
		TenantSlug: "acme",
		Payload:    pkgapi.StockMovementRequest{Type: "out", Quantity: 2},
	})

	_, err := f.svc.Sync(ctx)
	require.NoError(t, err)

	// Локальная копия убрана: остаток пересчитывает сервер
	var item pkgapi.InventoryItem
	assert.ErrorIs(t, f.cache.Get(ctx, key, &item), storage.ErrCacheMiss)
}
