package services

import (
	"context"
	"log/slog"

	"github.com/maintly/fieldsync/internal/client/api"
	"github.com/maintly/fieldsync/internal/client/cache"
	"github.com/maintly/fieldsync/internal/client/queue"
)

// deps - общие зависимости доменных сервисов.
// Каждый сервис работает по одной схеме: чтения ходят в сеть и наполняют
// кеш, сетевая ошибка чтения возвращается вызывающему - кеш доступен
// только через явные Cached-методы. Запись при сетевой ошибке встает в
// очередь с оптимистичным результатом. Application error сервера
// (4xx/5xx) всегда возвращается как есть и никогда не ставится в очередь.
type deps struct {
	api    api.ClientAPI
	cache  cache.Cache
	queue  *queue.Service
	logger *slog.Logger
}

// tenantSlug возвращает slug текущей организации для ключей кеша и очереди
func (d *deps) tenantSlug() string {
	return d.api.Tenant().Slug
}

// Services собирает доменные сервисы поверх общих зависимостей
type Services struct {
	Alerts     *AlertService
	WorkOrders *WorkOrderService
	Assets     *AssetService
	Inventory  *InventoryService
}

// New создает доменные сервисы
func New(client api.ClientAPI, c cache.Cache, q *queue.Service, logger *slog.Logger) *Services {
	d := &deps{
		api:    client,
		cache:  c,
		queue:  q,
		logger: logger,
	}

	return &Services{
		Alerts:     &AlertService{deps: d},
		WorkOrders: &WorkOrderService{deps: d},
		Assets:     &AssetService{deps: d},
		Inventory:  &InventoryService{deps: d},
	}
}

// invalidateList сбрасывает кешированный список сущности. Вызывается
// после любой подтвержденной мутации: следующий List заберет свежий
// срез с сервера вместо устаревшего.
func (d *deps) invalidateList(ctx context.Context, entityType string) {
	key := cache.ListKey(d.tenantSlug(), entityType, cache.FilterSignature(nil))
	if err := d.cache.Remove(ctx, key); err != nil {
		d.logger.Warn("failed to invalidate cached list", "key", key, "error", err)
	}
}

// invalidateEntity сбрасывает кешированную копию одной сущности
func (d *deps) invalidateEntity(ctx context.Context, entityType, id string) {
	key := cache.EntityKey(d.tenantSlug(), entityType, id)
	if err := d.cache.Remove(ctx, key); err != nil {
		d.logger.Warn("failed to invalidate cached entity", "key", key, "error", err)
	}
}

// fromCache читает значение только из кеша, без обращения к сети.
// Просроченная или отсутствующая запись - storage.ErrCacheMiss.
func fromCache[T any](ctx context.Context, d *deps, key string) (*Result[T], error) {
	var cached T
	if err := d.cache.Get(ctx, key, &cached); err != nil {
		return nil, err
	}
	return Cached(cached), nil
}
