package api

import (
	"context"
	"fmt"

	"github.com/maintly/fieldsync/pkg/api"
)

// ListAssets возвращает страницу оборудования тенанта
func (c *Client) ListAssets(ctx context.Context) (*api.AssetListResponse, error) {
	var resp api.AssetListResponse
	if err := c.Do(ctx, "GET", "/api/v1/assets/", nil, &resp); err != nil {
		return nil, fmt.Errorf("list assets request failed: %w", err)
	}
	return &resp, nil
}

// GetAsset возвращает единицу оборудования по ID
func (c *Client) GetAsset(ctx context.Context, id int64) (*api.Asset, error) {
	var resp api.Asset
	path := fmt.Sprintf("/api/v1/assets/%d/", id)
	if err := c.Do(ctx, "GET", path, nil, &resp); err != nil {
		return nil, fmt.Errorf("get asset request failed: %w", err)
	}
	return &resp, nil
}

// AddMeterReading регистрирует ручное показание счетчика
func (c *Client) AddMeterReading(ctx context.Context, assetID int64, req api.MeterReadingRequest, idempotencyKey string) (*api.MeterReading, error) {
	var resp api.MeterReading
	path := fmt.Sprintf("/api/v1/assets/%d/readings/", assetID)
	if err := c.Do(ctx, "POST", path, req, &resp, WithIdempotencyKey(idempotencyKey)); err != nil {
		return nil, fmt.Errorf("add meter reading request failed: %w", err)
	}
	return &resp, nil
}
