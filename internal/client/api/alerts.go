package api

import (
	"context"
	"fmt"

	"github.com/maintly/fieldsync/pkg/api"
)

// ListAlerts возвращает страницу алертов тенанта
func (c *Client) ListAlerts(ctx context.Context) (*api.AlertListResponse, error) {
	var resp api.AlertListResponse
	if err := c.Do(ctx, "GET", "/api/v1/alerts/", nil, &resp); err != nil {
		return nil, fmt.Errorf("list alerts request failed: %w", err)
	}
	return &resp, nil
}

// GetAlert возвращает алерт по ID
func (c *Client) GetAlert(ctx context.Context, id int64) (*api.Alert, error) {
	var resp api.Alert
	path := fmt.Sprintf("/api/v1/alerts/%d/", id)
	if err := c.Do(ctx, "GET", path, nil, &resp); err != nil {
		return nil, fmt.Errorf("get alert request failed: %w", err)
	}
	return &resp, nil
}

// AcknowledgeAlert подтверждает получение алерта техником
func (c *Client) AcknowledgeAlert(ctx context.Context, id int64, req api.AlertActionRequest, idempotencyKey string) (*api.Alert, error) {
	var resp api.Alert
	path := fmt.Sprintf("/api/v1/alerts/%d/acknowledge/", id)
	if err := c.Do(ctx, "POST", path, req, &resp, WithIdempotencyKey(idempotencyKey)); err != nil {
		return nil, fmt.Errorf("acknowledge alert request failed: %w", err)
	}
	return &resp, nil
}

// ResolveAlert закрывает алерт
func (c *Client) ResolveAlert(ctx context.Context, id int64, req api.AlertActionRequest, idempotencyKey string) (*api.Alert, error) {
	var resp api.Alert
	path := fmt.Sprintf("/api/v1/alerts/%d/resolve/", id)
	if err := c.Do(ctx, "POST", path, req, &resp, WithIdempotencyKey(idempotencyKey)); err != nil {
		return nil, fmt.Errorf("resolve alert request failed: %w", err)
	}
	return &resp, nil
}
