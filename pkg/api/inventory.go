package api

import "time"

// InventoryItem представляет складскую позицию в формате REST API
type InventoryItem struct {
	UpdatedAt   time.Time `json:"updated_at"`
	SKU         string    `json:"sku"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Unit        string    `json:"unit"` // единица учета (pcs, l, kg)
	Location    string    `json:"location,omitempty"`
	UnitCost    float64   `json:"unit_cost"`
	ID          int64     `json:"id"`
	Quantity    int64     `json:"quantity"`
	MinQuantity int64     `json:"min_quantity"`
}

// InventoryListResponse представляет страницу списка складских позиций
type InventoryListResponse struct {
	Next     *string         `json:"next"`
	Previous *string         `json:"previous"`
	Results  []InventoryItem `json:"results"`
	Count    int             `json:"count"`
}

// StockMovement представляет движение по складу
type StockMovement struct {
	MovedAt     time.Time `json:"moved_at"`
	Type        string    `json:"type"` // in | out | adjustment
	Note        string    `json:"note,omitempty"`
	WorkOrderID *int64    `json:"work_order_id,omitempty"`
	ID          int64     `json:"id"`
	ItemID      int64     `json:"item_id"`
	Quantity    int64     `json:"quantity"`
}

// StockMovementRequest представляет запрос на регистрацию движения
type StockMovementRequest struct {
	Type        string `json:"type"`
	Note        string `json:"note,omitempty"`
	WorkOrderID *int64 `json:"work_order_id,omitempty"`
	Quantity    int64  `json:"quantity"`
}
