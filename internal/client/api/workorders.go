package api

import (
	"context"
	"fmt"

	"github.com/maintly/fieldsync/pkg/api"
)

// ListWorkOrders возвращает страницу заявок тенанта
func (c *Client) ListWorkOrders(ctx context.Context) (*api.WorkOrderListResponse, error) {
	var resp api.WorkOrderListResponse
	if err := c.Do(ctx, "GET", "/api/v1/work-orders/", nil, &resp); err != nil {
		return nil, fmt.Errorf("list work orders request failed: %w", err)
	}
	return &resp, nil
}

// GetWorkOrder возвращает заявку по ID
func (c *Client) GetWorkOrder(ctx context.Context, id int64) (*api.WorkOrder, error) {
	var resp api.WorkOrder
	path := fmt.Sprintf("/api/v1/work-orders/%d/", id)
	if err := c.Do(ctx, "GET", path, nil, &resp); err != nil {
		return nil, fmt.Errorf("get work order request failed: %w", err)
	}
	return &resp, nil
}

// CreateWorkOrder создает новую заявку
func (c *Client) CreateWorkOrder(ctx context.Context, req api.WorkOrderCreateRequest, idempotencyKey string) (*api.WorkOrder, error) {
	var resp api.WorkOrder
	if err := c.Do(ctx, "POST", "/api/v1/work-orders/", req, &resp, WithIdempotencyKey(idempotencyKey)); err != nil {
		return nil, fmt.Errorf("create work order request failed: %w", err)
	}
	return &resp, nil
}

// UpdateWorkOrder частично обновляет заявку
func (c *Client) UpdateWorkOrder(ctx context.Context, id int64, req api.WorkOrderUpdateRequest, idempotencyKey string) (*api.WorkOrder, error) {
	var resp api.WorkOrder
	path := fmt.Sprintf("/api/v1/work-orders/%d/", id)
	if err := c.Do(ctx, "PATCH", path, req, &resp, WithIdempotencyKey(idempotencyKey)); err != nil {
		return nil, fmt.Errorf("update work order request failed: %w", err)
	}
	return &resp, nil
}

// AddPartUsage списывает запчасть на заявку
func (c *Client) AddPartUsage(ctx context.Context, workOrderID int64, req api.PartUsageRequest, idempotencyKey string) (*api.PartUsage, error) {
	var resp api.PartUsage
	path := fmt.Sprintf("/api/v1/work-orders/%d/part-usages/", workOrderID)
	if err := c.Do(ctx, "POST", path, req, &resp, WithIdempotencyKey(idempotencyKey)); err != nil {
		return nil, fmt.Errorf("add part usage request failed: %w", err)
	}
	return &resp, nil
}
