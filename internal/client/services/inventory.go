package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/maintly/fieldsync/internal/client/api"
	"github.com/maintly/fieldsync/internal/client/cache"
	"github.com/maintly/fieldsync/internal/client/queue"
	"github.com/maintly/fieldsync/internal/client/storage"
	"github.com/maintly/fieldsync/internal/models"
	pkgapi "github.com/maintly/fieldsync/pkg/api"
)

// InventoryService предоставляет offline-aware операции над складом
type InventoryService struct {
	*deps
}

// List возвращает складские позиции тенанта с сервера и наполняет кеш
func (s *InventoryService) List(ctx context.Context) (*Result[[]pkgapi.InventoryItem], error) {
	key := cache.ListKey(s.tenantSlug(), cache.EntityInventory, cache.FilterSignature(nil))

	resp, err := s.api.ListInventoryItems(ctx)
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cache.Set(ctx, key, resp.Results, cache.TTLInventory); cacheErr != nil {
		s.logger.Warn("failed to cache inventory list", "error", cacheErr)
	}

	return Confirmed(resp.Results), nil
}

// Get возвращает складскую позицию по ID с сервера и кеширует ее
func (s *InventoryService) Get(ctx context.Context, id int64) (*Result[pkgapi.InventoryItem], error) {
	key := s.entityKey(id)

	item, err := s.api.GetInventoryItem(ctx, id)
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cache.Set(ctx, key, item, cache.TTLInventory); cacheErr != nil {
		s.logger.Warn("failed to cache inventory item", "id", id, "error", cacheErr)
	}

	return Confirmed(*item), nil
}

// ListCached возвращает складские позиции только из локального кеша
func (s *InventoryService) ListCached(ctx context.Context) (*Result[[]pkgapi.InventoryItem], error) {
	key := cache.ListKey(s.tenantSlug(), cache.EntityInventory, cache.FilterSignature(nil))
	return fromCache[[]pkgapi.InventoryItem](ctx, s.deps, key)
}

// GetCached возвращает складскую позицию только из локального кеша
func (s *InventoryService) GetCached(ctx context.Context, id int64) (*Result[pkgapi.InventoryItem], error) {
	return fromCache[pkgapi.InventoryItem](ctx, s.deps, s.entityKey(id))
}

// RegisterMovement регистрирует движение по складу. В offline движение
// ставится в очередь, а кешированный остаток корректируется оптимистично.
func (s *InventoryService) RegisterMovement(ctx context.Context, itemID int64, req pkgapi.StockMovementRequest) (*Result[pkgapi.StockMovement], error) {
	if _, err := models.ParseMovementType(req.Type); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal stock movement: %w", err)
	}

	idempotencyKey, err := s.queue.IdempotencyKey(cache.EntityInventory, storage.ActionMovement, strconv.FormatInt(itemID, 10), payload)
	if err != nil {
		return nil, err
	}

	movement, apiErr := s.api.RegisterStockMovement(ctx, itemID, req, idempotencyKey)
	if apiErr == nil {
		// Остаток позиции изменился: локальная копия и список недостоверны
		s.invalidateEntity(ctx, cache.EntityInventory, strconv.FormatInt(itemID, 10))
		s.invalidateList(ctx, cache.EntityInventory)
		return Confirmed(*movement), nil
	}

	if !api.IsNetworkError(apiErr) {
		return nil, apiErr
	}

	m, _, err := s.queue.Enqueue(ctx, queue.EnqueueRequest{
		EntityType: cache.EntityInventory,
		EntityID:   strconv.FormatInt(itemID, 10),
		Action:     storage.ActionMovement,
		Endpoint:   fmt.Sprintf("/api/v1/inventory/items/%d/movements/", itemID),
		Method:     "POST",
		TenantSlug: s.tenantSlug(),
		Payload:    req,
	})
	if err != nil {
		return nil, err
	}

	s.adjustCachedQuantity(ctx, itemID, req)

	optimistic := pkgapi.StockMovement{
		ItemID:      itemID,
		Type:        req.Type,
		Quantity:    req.Quantity,
		Note:        req.Note,
		WorkOrderID: req.WorkOrderID,
		MovedAt:     time.Now(),
	}

	return Optimistic(optimistic, m.ID), nil
}

// adjustCachedQuantity оптимистично корректирует кешированный остаток.
// Для adjustment итог знает только сервер, поэтому копия инвалидируется.
func (s *InventoryService) adjustCachedQuantity(ctx context.Context, itemID int64, req pkgapi.StockMovementRequest) {
	key := s.entityKey(itemID)

	var item pkgapi.InventoryItem
	if err := s.cache.Get(ctx, key, &item); err != nil {
		return
	}

	switch models.MovementType(req.Type) {
	case models.MovementTypeIn:
		item.Quantity += req.Quantity
	case models.MovementTypeOut:
		item.Quantity -= req.Quantity
	default:
		if err := s.cache.Remove(ctx, key); err != nil {
			s.logger.Warn("failed to invalidate inventory item", "id", itemID, "error", err)
		}
		return
	}

	if err := s.cache.Set(ctx, key, item, cache.TTLInventory); err != nil {
		s.logger.Warn("failed to cache optimistic inventory item", "id", itemID, "error", err)
	}
}

func (s *InventoryService) entityKey(id int64) string {
	return cache.EntityKey(s.tenantSlug(), cache.EntityInventory, strconv.FormatInt(id, 10))
}
