package api

import (
	"context"
	"fmt"

	"github.com/maintly/fieldsync/pkg/api"
)

// ListInventoryItems возвращает страницу складских позиций тенанта
func (c *Client) ListInventoryItems(ctx context.Context) (*api.InventoryListResponse, error) {
	var resp api.InventoryListResponse
	if err := c.Do(ctx, "GET", "/api/v1/inventory/items/", nil, &resp); err != nil {
		return nil, fmt.Errorf("list inventory items request failed: %w", err)
	}
	return &resp, nil
}

// GetInventoryItem возвращает складскую позицию по ID
func (c *Client) GetInventoryItem(ctx context.Context, id int64) (*api.InventoryItem, error) {
	var resp api.InventoryItem
	path := fmt.Sprintf("/api/v1/inventory/items/%d/", id)
	if err := c.Do(ctx, "GET", path, nil, &resp); err != nil {
		return nil, fmt.Errorf("get inventory item request failed: %w", err)
	}
	return &resp, nil
}

// RegisterStockMovement регистрирует движение по складу
func (c *Client) RegisterStockMovement(ctx context.Context, itemID int64, req api.StockMovementRequest, idempotencyKey string) (*api.StockMovement, error) {
	var resp api.StockMovement
	path := fmt.Sprintf("/api/v1/inventory/items/%d/movements/", itemID)
	if err := c.Do(ctx, "POST", path, req, &resp, WithIdempotencyKey(idempotencyKey)); err != nil {
		return nil, fmt.Errorf("register stock movement request failed: %w", err)
	}
	return &resp, nil
}
