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

// AlertService предоставляет offline-aware операции над алертами
type AlertService struct {
	*deps
}

// List возвращает алерты тенанта с сервера и наполняет кеш.
// Сетевая ошибка возвращается вызывающему: чтение из кеша - это
// явный ListCached, а не скрытый фолбэк.
func (s *AlertService) List(ctx context.Context) (*Result[[]pkgapi.Alert], error) {
	key := cache.ListKey(s.tenantSlug(), cache.EntityAlert, cache.FilterSignature(nil))

	resp, err := s.api.ListAlerts(ctx)
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cache.Set(ctx, key, resp.Results, cache.TTLAlerts); cacheErr != nil {
		s.logger.Warn("failed to cache alert list", "error", cacheErr)
	}

	return Confirmed(resp.Results), nil
}

// Get возвращает алерт по ID с сервера и кеширует его
func (s *AlertService) Get(ctx context.Context, id int64) (*Result[pkgapi.Alert], error) {
	key := s.entityKey(id)

	alert, err := s.api.GetAlert(ctx, id)
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cache.Set(ctx, key, alert, cache.TTLAlerts); cacheErr != nil {
		s.logger.Warn("failed to cache alert", "id", id, "error", cacheErr)
	}

	return Confirmed(*alert), nil
}

// ListCached возвращает алерты только из локального кеша
func (s *AlertService) ListCached(ctx context.Context) (*Result[[]pkgapi.Alert], error) {
	key := cache.ListKey(s.tenantSlug(), cache.EntityAlert, cache.FilterSignature(nil))
	return fromCache[[]pkgapi.Alert](ctx, s.deps, key)
}

// GetCached возвращает алерт только из локального кеша
func (s *AlertService) GetCached(ctx context.Context, id int64) (*Result[pkgapi.Alert], error) {
	return fromCache[pkgapi.Alert](ctx, s.deps, s.entityKey(id))
}

// Acknowledge подтверждает получение алерта. В offline мутация ставится
// в очередь, а результат синтезируется локально.
func (s *AlertService) Acknowledge(ctx context.Context, id int64, note string) (*Result[pkgapi.Alert], error) {
	return s.action(ctx, id, note, storage.ActionAcknowledge)
}

// Resolve закрывает алерт, с той же offline-семантикой что и Acknowledge
func (s *AlertService) Resolve(ctx context.Context, id int64, note string) (*Result[pkgapi.Alert], error) {
	return s.action(ctx, id, note, storage.ActionResolve)
}

func (s *AlertService) action(ctx context.Context, id int64, note string, action storage.MutationAction) (*Result[pkgapi.Alert], error) {
	req := pkgapi.AlertActionRequest{Note: note}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal alert action: %w", err)
	}

	idempotencyKey, err := s.queue.IdempotencyKey(cache.EntityAlert, action, strconv.FormatInt(id, 10), payload)
	if err != nil {
		return nil, err
	}

	var (
		alert  *pkgapi.Alert
		apiErr error
	)
	switch action {
	case storage.ActionResolve:
		alert, apiErr = s.api.ResolveAlert(ctx, id, req, idempotencyKey)
	default:
		alert, apiErr = s.api.AcknowledgeAlert(ctx, id, req, idempotencyKey)
	}

	if apiErr == nil {
		if cacheErr := s.cache.Set(ctx, s.entityKey(id), alert, cache.TTLAlerts); cacheErr != nil {
			s.logger.Warn("failed to cache alert", "id", id, "error", cacheErr)
		}
		// Кешированный список все еще несет прежний статус
		s.invalidateList(ctx, cache.EntityAlert)
		return Confirmed(*alert), nil
	}

	if !api.IsNetworkError(apiErr) {
		// Сервер отверг мутацию: в очередь не ставим, ошибку наверх
		return nil, apiErr
	}

	m, _, err := s.queue.Enqueue(ctx, queue.EnqueueRequest{
		EntityType: cache.EntityAlert,
		EntityID:   strconv.FormatInt(id, 10),
		Action:     action,
		Endpoint:   fmt.Sprintf("/api/v1/alerts/%d/%s/", id, actionPath(action)),
		Method:     "POST",
		TenantSlug: s.tenantSlug(),
		Payload:    req,
	})
	if err != nil {
		return nil, err
	}

	optimistic := s.optimisticAlert(ctx, id, action)
	return Optimistic(optimistic, m.ID), nil
}

func actionPath(action storage.MutationAction) string {
	if action == storage.ActionResolve {
		return "resolve"
	}
	return "acknowledge"
}

// optimisticAlert синтезирует локальное состояние алерта после отложенной
// мутации: берет кешированную копию (если есть) и применяет переход статуса
// с клиентским временем.
func (s *AlertService) optimisticAlert(ctx context.Context, id int64, action storage.MutationAction) pkgapi.Alert {
	key := s.entityKey(id)

	var alert pkgapi.Alert
	if err := s.cache.Get(ctx, key, &alert); err != nil {
		alert = pkgapi.Alert{ID: id}
	}

	now := time.Now()
	switch action {
	case storage.ActionResolve:
		alert.Status = string(models.AlertStatusResolved)
		alert.ResolvedAt = &now
	default:
		alert.Status = string(models.AlertStatusAcknowledged)
		alert.AcknowledgedAt = &now
	}

	// Оптимистичное состояние кешируем: до синхронизации Get должен
	// показывать технику результат его действия, а не прежний статус
	if err := s.cache.Set(ctx, key, alert, cache.TTLAlerts); err != nil {
		s.logger.Warn("failed to cache optimistic alert", "id", id, "error", err)
	}

	return alert
}

func (s *AlertService) entityKey(id int64) string {
	return cache.EntityKey(s.tenantSlug(), cache.EntityAlert, strconv.FormatInt(id, 10))
}
