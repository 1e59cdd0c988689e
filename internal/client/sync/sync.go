package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/maintly/fieldsync/internal/client/api"
	"github.com/maintly/fieldsync/internal/client/cache"
	"github.com/maintly/fieldsync/internal/client/queue"
	"github.com/maintly/fieldsync/internal/client/storage"
	pkgapi "github.com/maintly/fieldsync/pkg/api"
)

const (
	// DefaultBaseDelay - базовая задержка экспоненциального backoff
	DefaultBaseDelay = 500 * time.Millisecond
	// DefaultMaxRetries - число повторов drain при мерцающей сети
	DefaultMaxRetries = 4
)

// Result суммирует один запуск синхронизации
type Result struct {
	// Replayed - мутации, подтвержденные сервером
	Replayed int
	// Conflicts - мутации, переведенные в conflict и ждущие разбора
	Conflicts int
	// Remaining - мутации, оставшиеся pending (сеть так и не появилась)
	Remaining int
}

// Service воспроизводит очередь отложенных мутаций и обновляет кеш
// ответами сервера. Мерцающая сеть пережидается экспоненциальным backoff:
// каждый повтор продолжает с того места, где drain остановился.
type Service struct {
	queue      *queue.Service
	cache      cache.Cache
	logger     *slog.Logger
	baseDelay  time.Duration
	maxRetries uint64
}

// NewService создает сервис синхронизации
func NewService(q *queue.Service, c cache.Cache, logger *slog.Logger) *Service {
	return &Service{
		queue:      q,
		cache:      c,
		logger:     logger,
		baseDelay:  DefaultBaseDelay,
		maxRetries: DefaultMaxRetries,
	}
}

// Sync воспроизводит все pending-мутации. Возвращает сводку даже при
// ошибке: часть очереди могла уйти до того, как сеть снова пропала.
func (s *Service) Sync(ctx context.Context) (*Result, error) {
	total := &Result{}

	backoff := retry.WithMaxRetries(s.maxRetries, retry.NewExponential(s.baseDelay))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		dr, drainErr := s.queue.Drain(ctx)
		if dr != nil {
			total.Replayed += len(dr.Replayed)
			total.Conflicts += dr.Conflicts
			total.Remaining = dr.Remaining

			for _, r := range dr.Replayed {
				s.refreshCache(ctx, r)
			}
		}

		if drainErr != nil {
			if api.IsNetworkError(drainErr) {
				s.logger.Info("network still unavailable, backing off",
					"remaining", total.Remaining,
				)
				return retry.RetryableError(drainErr)
			}
			return drainErr
		}

		return nil
	})
	if err != nil {
		return total, fmt.Errorf("sync failed: %w", err)
	}

	s.logger.Info("sync completed",
		"replayed", total.Replayed,
		"conflicts", total.Conflicts,
	)

	return total, nil
}

// PendingCount возвращает число мутаций, ожидающих синхронизации
func (s *Service) PendingCount(ctx context.Context) (int, error) {
	return s.queue.PendingCount(ctx)
}

// Conflicts возвращает мутации, требующие ручного разбора
func (s *Service) Conflicts(ctx context.Context) ([]*storage.QueuedMutation, error) {
	return s.queue.Conflicts(ctx)
}

// refreshCache доводит кеш до состояния сервера после подтвержденного
// replay. Ответ сервера авторитетен: он замещает оптимистичные копии.
func (s *Service) refreshCache(ctx context.Context, r queue.Replayed) {
	m := r.Mutation

	switch {
	case m.EntityType == cache.EntityAlert:
		storeEntity(ctx, s, m.TenantSlug, cache.EntityAlert, r.Response, cache.TTLAlerts, func(v *pkgapi.Alert) int64 { return v.ID })
		s.removeList(ctx, m.TenantSlug, cache.EntityAlert)

	case m.EntityType == cache.EntityWorkOrder && (m.Action == storage.ActionCreate || m.Action == storage.ActionUpdate):
		storeEntity(ctx, s, m.TenantSlug, cache.EntityWorkOrder, r.Response, cache.TTLWorkOrders, func(v *pkgapi.WorkOrder) int64 { return v.ID })
		s.removeList(ctx, m.TenantSlug, cache.EntityWorkOrder)

	case m.EntityType == cache.EntityWorkOrder && m.Action == storage.ActionPartUsage:
		// Списание меняет и заявку, и остаток позиции: обе копии недостоверны
		s.removeEntity(ctx, m.TenantSlug, cache.EntityWorkOrder, m.EntityID)
		s.removeList(ctx, m.TenantSlug, cache.EntityWorkOrder)
		s.removeList(ctx, m.TenantSlug, cache.EntityInventory)
		var usage pkgapi.PartUsage
		if err := json.Unmarshal(r.Response, &usage); err == nil && usage.ItemID != 0 {
			s.removeEntity(ctx, m.TenantSlug, cache.EntityInventory, fmt.Sprintf("%d", usage.ItemID))
		}

	case m.EntityType == cache.EntityAsset && m.Action == storage.ActionReading:
		// Показание меняет состояние оборудования на сервере
		s.removeEntity(ctx, m.TenantSlug, cache.EntityAsset, m.EntityID)
		s.removeList(ctx, m.TenantSlug, cache.EntityAsset)

	case m.EntityType == cache.EntityInventory && m.Action == storage.ActionMovement:
		// Остаток пересчитан сервером: локальную (возможно оптимистичную)
		// копию убираем, следующий Get заберет свежую
		s.removeEntity(ctx, m.TenantSlug, cache.EntityInventory, m.EntityID)
		s.removeList(ctx, m.TenantSlug, cache.EntityInventory)
	}
}

func storeEntityKey(tenant, entityType string, id int64) string {
	return cache.EntityKey(tenant, entityType, fmt.Sprintf("%d", id))
}

func storeEntity[T any](ctx context.Context, s *Service, tenant, entityType string, raw json.RawMessage, ttl time.Duration, id func(*T) int64) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		s.logger.Warn("failed to decode replay response", "entity_type", entityType, "error", err)
		return
	}

	key := storeEntityKey(tenant, entityType, id(&v))
	if err := s.cache.Set(ctx, key, v, ttl); err != nil {
		s.logger.Warn("failed to refresh cache after replay", "key", key, "error", err)
	}
}

func (s *Service) removeList(ctx context.Context, tenant, entityType string) {
	key := cache.ListKey(tenant, entityType, cache.FilterSignature(nil))
	if err := s.cache.Remove(ctx, key); err != nil {
		s.logger.Warn("failed to invalidate cached list after replay", "key", key, "error", err)
	}
}

func (s *Service) removeEntity(ctx context.Context, tenant, entityType, id string) {
	if id == "" {
		return
	}
	key := cache.EntityKey(tenant, entityType, id)
	if err := s.cache.Remove(ctx, key); err != nil {
		s.logger.Warn("failed to invalidate cache after replay", "key", key, "error", err)
	}
}
