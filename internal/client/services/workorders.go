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

// WorkOrderService предоставляет offline-aware операции над заявками
type WorkOrderService struct {
	*deps
}

// List возвращает заявки тенанта с сервера и наполняет кеш
func (s *WorkOrderService) List(ctx context.Context) (*Result[[]pkgapi.WorkOrder], error) {
	key := cache.ListKey(s.tenantSlug(), cache.EntityWorkOrder, cache.FilterSignature(nil))

	resp, err := s.api.ListWorkOrders(ctx)
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cache.Set(ctx, key, resp.Results, cache.TTLWorkOrders); cacheErr != nil {
		s.logger.Warn("failed to cache work order list", "error", cacheErr)
	}

	return Confirmed(resp.Results), nil
}

// Get возвращает заявку по ID с сервера и кеширует ее
func (s *WorkOrderService) Get(ctx context.Context, id int64) (*Result[pkgapi.WorkOrder], error) {
	key := s.entityKey(id)

	wo, err := s.api.GetWorkOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cache.Set(ctx, key, wo, cache.TTLWorkOrders); cacheErr != nil {
		s.logger.Warn("failed to cache work order", "id", id, "error", cacheErr)
	}

	return Confirmed(*wo), nil
}

// ListCached возвращает заявки только из локального кеша
func (s *WorkOrderService) ListCached(ctx context.Context) (*Result[[]pkgapi.WorkOrder], error) {
	key := cache.ListKey(s.tenantSlug(), cache.EntityWorkOrder, cache.FilterSignature(nil))
	return fromCache[[]pkgapi.WorkOrder](ctx, s.deps, key)
}

// GetCached возвращает заявку только из локального кеша
func (s *WorkOrderService) GetCached(ctx context.Context, id int64) (*Result[pkgapi.WorkOrder], error) {
	return fromCache[pkgapi.WorkOrder](ctx, s.deps, s.entityKey(id))
}

// Create создает заявку. В offline заявка ставится в очередь; серверные
// поля (ID, номер) у оптимистичного результата отсутствуют до синхронизации.
func (s *WorkOrderService) Create(ctx context.Context, req pkgapi.WorkOrderCreateRequest) (*Result[pkgapi.WorkOrder], error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal work order: %w", err)
	}

	idempotencyKey, err := s.queue.IdempotencyKey(cache.EntityWorkOrder, storage.ActionCreate, "", payload)
	if err != nil {
		return nil, err
	}

	wo, apiErr := s.api.CreateWorkOrder(ctx, req, idempotencyKey)
	if apiErr == nil {
		if cacheErr := s.cache.Set(ctx, s.entityKey(wo.ID), wo, cache.TTLWorkOrders); cacheErr != nil {
			s.logger.Warn("failed to cache work order", "id", wo.ID, "error", cacheErr)
		}
		s.invalidateList(ctx, cache.EntityWorkOrder)
		return Confirmed(*wo), nil
	}

	if !api.IsNetworkError(apiErr) {
		return nil, apiErr
	}

	m, _, err := s.queue.Enqueue(ctx, queue.EnqueueRequest{
		EntityType: cache.EntityWorkOrder,
		Action:     storage.ActionCreate,
		Endpoint:   "/api/v1/work-orders/",
		Method:     "POST",
		TenantSlug: s.tenantSlug(),
		Payload:    req,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	optimistic := pkgapi.WorkOrder{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      string(models.WorkOrderStatusOpen),
		AssetID:     req.AssetID,
		DueDate:     req.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	return Optimistic(optimistic, m.ID), nil
}

// Update частично обновляет заявку (PATCH). В offline изменения
// накладываются на кешированную копию.
func (s *WorkOrderService) Update(ctx context.Context, id int64, req pkgapi.WorkOrderUpdateRequest) (*Result[pkgapi.WorkOrder], error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal work order update: %w", err)
	}

	idempotencyKey, err := s.queue.IdempotencyKey(cache.EntityWorkOrder, storage.ActionUpdate, strconv.FormatInt(id, 10), payload)
	if err != nil {
		return nil, err
	}

	wo, apiErr := s.api.UpdateWorkOrder(ctx, id, req, idempotencyKey)
	if apiErr == nil {
		if cacheErr := s.cache.Set(ctx, s.entityKey(id), wo, cache.TTLWorkOrders); cacheErr != nil {
			s.logger.Warn("failed to cache work order", "id", id, "error", cacheErr)
		}
		s.invalidateList(ctx, cache.EntityWorkOrder)
		return Confirmed(*wo), nil
	}

	if !api.IsNetworkError(apiErr) {
		return nil, apiErr
	}

	m, _, err := s.queue.Enqueue(ctx, queue.EnqueueRequest{
		EntityType: cache.EntityWorkOrder,
		EntityID:   strconv.FormatInt(id, 10),
		Action:     storage.ActionUpdate,
		Endpoint:   fmt.Sprintf("/api/v1/work-orders/%d/", id),
		Method:     "PATCH",
		TenantSlug: s.tenantSlug(),
		Payload:    req,
	})
	if err != nil {
		return nil, err
	}

	optimistic := s.optimisticUpdate(ctx, id, req)
	return Optimistic(optimistic, m.ID), nil
}

// AddPartUsage списывает запчасть на заявку с offline-очередью
func (s *WorkOrderService) AddPartUsage(ctx context.Context, workOrderID int64, req pkgapi.PartUsageRequest) (*Result[pkgapi.PartUsage], error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal part usage: %w", err)
	}

	idempotencyKey, err := s.queue.IdempotencyKey(cache.EntityWorkOrder, storage.ActionPartUsage, strconv.FormatInt(workOrderID, 10), payload)
	if err != nil {
		return nil, err
	}

	usage, apiErr := s.api.AddPartUsage(ctx, workOrderID, req, idempotencyKey)
	if apiErr == nil {
		// Списание меняет и заявку, и складской остаток: обе кешированные
		// копии и их списки больше недостоверны
		s.invalidateEntity(ctx, cache.EntityWorkOrder, strconv.FormatInt(workOrderID, 10))
		s.invalidateList(ctx, cache.EntityWorkOrder)
		s.invalidateEntity(ctx, cache.EntityInventory, strconv.FormatInt(req.ItemID, 10))
		s.invalidateList(ctx, cache.EntityInventory)
		return Confirmed(*usage), nil
	}

	if !api.IsNetworkError(apiErr) {
		return nil, apiErr
	}

	m, _, err := s.queue.Enqueue(ctx, queue.EnqueueRequest{
		EntityType: cache.EntityWorkOrder,
		EntityID:   strconv.FormatInt(workOrderID, 10),
		Action:     storage.ActionPartUsage,
		Endpoint:   fmt.Sprintf("/api/v1/work-orders/%d/part-usages/", workOrderID),
		Method:     "POST",
		TenantSlug: s.tenantSlug(),
		Payload:    req,
	})
	if err != nil {
		return nil, err
	}

	optimistic := pkgapi.PartUsage{
		WorkOrderID: workOrderID,
		ItemID:      req.ItemID,
		Quantity:    req.Quantity,
		Note:        req.Note,
		UsedAt:      time.Now(),
	}

	return Optimistic(optimistic, m.ID), nil
}

// optimisticUpdate накладывает PATCH-поля на кешированную копию заявки
func (s *WorkOrderService) optimisticUpdate(ctx context.Context, id int64, req pkgapi.WorkOrderUpdateRequest) pkgapi.WorkOrder {
	key := s.entityKey(id)

	var wo pkgapi.WorkOrder
	if err := s.cache.Get(ctx, key, &wo); err != nil {
		wo = pkgapi.WorkOrder{ID: id}
	}

	if req.Title != nil {
		wo.Title = *req.Title
	}
	if req.Description != nil {
		wo.Description = *req.Description
	}
	if req.Status != nil {
		wo.Status = *req.Status
	}
	if req.Priority != nil {
		wo.Priority = *req.Priority
	}
	if req.AssignedTo != nil {
		wo.AssignedTo = *req.AssignedTo
	}
	if req.DueDate != nil {
		wo.DueDate = req.DueDate
	}
	wo.UpdatedAt = time.Now()

	if err := s.cache.Set(ctx, key, wo, cache.TTLWorkOrders); err != nil {
		s.logger.Warn("failed to cache optimistic work order", "id", id, "error", err)
	}

	return wo
}

func (s *WorkOrderService) entityKey(id int64) string {
	return cache.EntityKey(s.tenantSlug(), cache.EntityWorkOrder, strconv.FormatInt(id, 10))
}
