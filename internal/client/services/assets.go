package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/maintly/fieldsync/internal/client/api"
	"github.com/maintly/fieldsync/internal/client/cache"
	"github.com/maintly/fieldsync/internal/client/queue"
	"github.com/maintly/fieldsync/internal/client/storage"
	pkgapi "github.com/maintly/fieldsync/pkg/api"
)

// AssetService предоставляет offline-aware операции над оборудованием
type AssetService struct {
	*deps
}

// List возвращает оборудование тенанта с сервера и наполняет кеш
func (s *AssetService) List(ctx context.Context) (*Result[[]pkgapi.Asset], error) {
	key := cache.ListKey(s.tenantSlug(), cache.EntityAsset, cache.FilterSignature(nil))

	resp, err := s.api.ListAssets(ctx)
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cache.Set(ctx, key, resp.Results, cache.TTLAssets); cacheErr != nil {
		s.logger.Warn("failed to cache asset list", "error", cacheErr)
	}

	return Confirmed(resp.Results), nil
}

// Get возвращает единицу оборудования по ID с сервера и кеширует ее
func (s *AssetService) Get(ctx context.Context, id int64) (*Result[pkgapi.Asset], error) {
	key := cache.EntityKey(s.tenantSlug(), cache.EntityAsset, strconv.FormatInt(id, 10))

	asset, err := s.api.GetAsset(ctx, id)
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cache.Set(ctx, key, asset, cache.TTLAssets); cacheErr != nil {
		s.logger.Warn("failed to cache asset", "id", id, "error", cacheErr)
	}

	return Confirmed(*asset), nil
}

// ListCached возвращает оборудование только из локального кеша
func (s *AssetService) ListCached(ctx context.Context) (*Result[[]pkgapi.Asset], error) {
	key := cache.ListKey(s.tenantSlug(), cache.EntityAsset, cache.FilterSignature(nil))
	return fromCache[[]pkgapi.Asset](ctx, s.deps, key)
}

// GetCached возвращает единицу оборудования только из локального кеша
func (s *AssetService) GetCached(ctx context.Context, id int64) (*Result[pkgapi.Asset], error) {
	key := cache.EntityKey(s.tenantSlug(), cache.EntityAsset, strconv.FormatInt(id, 10))
	return fromCache[pkgapi.Asset](ctx, s.deps, key)
}

// AddMeterReading регистрирует ручное показание счетчика. В offline
// показание ставится в очередь; клиентское время записи сохраняется в
// payload и уходит на сервер при replay как есть.
func (s *AssetService) AddMeterReading(ctx context.Context, assetID int64, req pkgapi.MeterReadingRequest) (*Result[pkgapi.MeterReading], error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal meter reading: %w", err)
	}

	idempotencyKey, err := s.queue.IdempotencyKey(cache.EntityAsset, storage.ActionReading, strconv.FormatInt(assetID, 10), payload)
	if err != nil {
		return nil, err
	}

	reading, apiErr := s.api.AddMeterReading(ctx, assetID, req, idempotencyKey)
	if apiErr == nil {
		// Показание меняет состояние оборудования (последнее снятие)
		s.invalidateEntity(ctx, cache.EntityAsset, strconv.FormatInt(assetID, 10))
		s.invalidateList(ctx, cache.EntityAsset)
		return Confirmed(*reading), nil
	}

	if !api.IsNetworkError(apiErr) {
		return nil, apiErr
	}

	m, _, err := s.queue.Enqueue(ctx, queue.EnqueueRequest{
		EntityType: cache.EntityAsset,
		EntityID:   strconv.FormatInt(assetID, 10),
		Action:     storage.ActionReading,
		Endpoint:   fmt.Sprintf("/api/v1/assets/%d/readings/", assetID),
		Method:     "POST",
		TenantSlug: s.tenantSlug(),
		Payload:    req,
	})
	if err != nil {
		return nil, err
	}

	optimistic := pkgapi.MeterReading{
		AssetID:    assetID,
		Meter:      req.Meter,
		Unit:       req.Unit,
		Value:      req.Value,
		RecordedAt: req.RecordedAt,
	}

	return Optimistic(optimistic, m.ID), nil
}
