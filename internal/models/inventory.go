package models

import (
	"fmt"
	"time"

	"github.com/maintly/fieldsync/pkg/api"
)

// MovementType определяет тип складского движения
type MovementType string

const (
	MovementTypeIn         MovementType = "in"
	MovementTypeOut        MovementType = "out"
	MovementTypeAdjustment MovementType = "adjustment"
)

// InventoryItem представляет складскую позицию на клиенте
type InventoryItem struct {
	UpdatedAt   time.Time `json:"updated_at"`
	SKU         string    `json:"sku"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Unit        string    `json:"unit"`
	Location    string    `json:"location,omitempty"`
	UnitCost    float64   `json:"unit_cost"`
	ID          int64     `json:"id"`
	Quantity    int64     `json:"quantity"`
	MinQuantity int64     `json:"min_quantity"`
}

// BelowMinimum reports whether the stock level is at or below the reorder point.
func (i *InventoryItem) BelowMinimum() bool {
	return i.Quantity <= i.MinQuantity
}

// StockMovement представляет движение по складу на клиенте
type StockMovement struct {
	MovedAt     time.Time    `json:"moved_at"`
	Note        string       `json:"note,omitempty"`
	Type        MovementType `json:"type"`
	WorkOrderID *int64       `json:"work_order_id,omitempty"`
	ID          int64        `json:"id"`
	ItemID      int64        `json:"item_id"`
	Quantity    int64        `json:"quantity"`
}

// ParseMovementType валидирует строковый тип движения из ответа сервера
func ParseMovementType(s string) (MovementType, error) {
	switch MovementType(s) {
	case MovementTypeIn, MovementTypeOut, MovementTypeAdjustment:
		return MovementType(s), nil
	default:
		return "", fmt.Errorf("unknown movement type %q", s)
	}
}

// InventoryItemFromAPI конвертирует wire-представление в доменную модель
func InventoryItemFromAPI(i api.InventoryItem) *InventoryItem {
	return &InventoryItem{
		ID:          i.ID,
		SKU:         i.SKU,
		Name:        i.Name,
		Category:    i.Category,
		Unit:        i.Unit,
		Location:    i.Location,
		UnitCost:    i.UnitCost,
		Quantity:    i.Quantity,
		MinQuantity: i.MinQuantity,
		UpdatedAt:   i.UpdatedAt,
	}
}

// InventoryItemsFromAPI конвертирует список позиций
func InventoryItemsFromAPI(list []api.InventoryItem) []*InventoryItem {
	items := make([]*InventoryItem, 0, len(list))
	for _, i := range list {
		items = append(items, InventoryItemFromAPI(i))
	}
	return items
}

// StockMovementFromAPI конвертирует движение по складу
func StockMovementFromAPI(m api.StockMovement) (*StockMovement, error) {
	movementType, err := ParseMovementType(m.Type)
	if err != nil {
		return nil, fmt.Errorf("movement %d: %w", m.ID, err)
	}

	return &StockMovement{
		ID:          m.ID,
		ItemID:      m.ItemID,
		Type:        movementType,
		Quantity:    m.Quantity,
		WorkOrderID: m.WorkOrderID,
		Note:        m.Note,
		MovedAt:     m.MovedAt,
	}, nil
}
