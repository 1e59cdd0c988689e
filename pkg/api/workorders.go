package api

import "time"

// WorkOrder представляет заявку на обслуживание в формате REST API
type WorkOrder struct {
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Number      string     `json:"number"` // человекочитаемый номер (WO-2026-0042)
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	AssetName   string     `json:"asset_name"`
	AssignedTo  string     `json:"assigned_to,omitempty"`
	ID          int64      `json:"id"`
	AssetID     int64      `json:"asset_id"`
}

// WorkOrderListResponse представляет страницу списка заявок
type WorkOrderListResponse struct {
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  []WorkOrder `json:"results"`
	Count    int         `json:"count"`
}

// WorkOrderCreateRequest представляет запрос на создание заявки
type WorkOrderCreateRequest struct {
	DueDate     *time.Time `json:"due_date,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    string     `json:"priority"`
	AssetID     int64      `json:"asset_id"`
}

// WorkOrderUpdateRequest представляет частичное обновление заявки (PATCH)
type WorkOrderUpdateRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	AssignedTo  *string    `json:"assigned_to,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// PartUsage представляет списание запчасти на заявку
type PartUsage struct {
	UsedAt      time.Time `json:"used_at"`
	ItemName    string    `json:"item_name"`
	Note        string    `json:"note,omitempty"`
	ID          int64     `json:"id"`
	WorkOrderID int64     `json:"work_order_id"`
	ItemID      int64     `json:"item_id"`
	Quantity    int64     `json:"quantity"`
}

// PartUsageRequest представляет запрос на списание запчасти
type PartUsageRequest struct {
	Note     string `json:"note,omitempty"`
	ItemID   int64  `json:"item_id"`
	Quantity int64  `json:"quantity"`
}
