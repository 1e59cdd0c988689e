package models

import (
	"fmt"
	"time"

	"github.com/maintly/fieldsync/pkg/api"
)

// WorkOrderStatus определяет статус заявки на обслуживание
type WorkOrderStatus string

const (
	WorkOrderStatusOpen       WorkOrderStatus = "open"
	WorkOrderStatusInProgress WorkOrderStatus = "in_progress"
	WorkOrderStatusOnHold     WorkOrderStatus = "on_hold"
	WorkOrderStatusCompleted  WorkOrderStatus = "completed"
	WorkOrderStatusCancelled  WorkOrderStatus = "cancelled"
)

// WorkOrderPriority определяет приоритет заявки
type WorkOrderPriority string

const (
	WorkOrderPriorityLow    WorkOrderPriority = "low"
	WorkOrderPriorityMedium WorkOrderPriority = "medium"
	WorkOrderPriorityHigh   WorkOrderPriority = "high"
	WorkOrderPriorityUrgent WorkOrderPriority = "urgent"
)

// WorkOrder представляет заявку на обслуживание на клиенте
type WorkOrder struct {
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	DueDate     *time.Time        `json:"due_date,omitempty"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	Number      string            `json:"number"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	AssetName   string            `json:"asset_name"`
	AssignedTo  string            `json:"assigned_to,omitempty"`
	Status      WorkOrderStatus   `json:"status"`
	Priority    WorkOrderPriority `json:"priority"`
	ID          int64             `json:"id"`
	AssetID     int64             `json:"asset_id"`
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

// ParseWorkOrderStatus валидирует строковый статус из ответа сервера
func ParseWorkOrderStatus(s string) (WorkOrderStatus, error) {
	switch WorkOrderStatus(s) {
	case WorkOrderStatusOpen, WorkOrderStatusInProgress, WorkOrderStatusOnHold,
		WorkOrderStatusCompleted, WorkOrderStatusCancelled:
		return WorkOrderStatus(s), nil
	default:
		return "", fmt.Errorf("unknown work order status %q", s)
	}
}

// ParseWorkOrderPriority валидирует строковый приоритет из ответа сервера
func ParseWorkOrderPriority(s string) (WorkOrderPriority, error) {
	switch WorkOrderPriority(s) {
	case WorkOrderPriorityLow, WorkOrderPriorityMedium, WorkOrderPriorityHigh, WorkOrderPriorityUrgent:
		return WorkOrderPriority(s), nil
	default:
		return "", fmt.Errorf("unknown work order priority %q", s)
	}
}

// WorkOrderFromAPI конвертирует wire-представление в доменную модель
func WorkOrderFromAPI(w api.WorkOrder) (*WorkOrder, error) {
	status, err := ParseWorkOrderStatus(w.Status)
	if err != nil {
		return nil, fmt.Errorf("work order %d: %w", w.ID, err)
	}
	priority, err := ParseWorkOrderPriority(w.Priority)
	if err != nil {
		return nil, fmt.Errorf("work order %d: %w", w.ID, err)
	}

	return &WorkOrder{
		ID:          w.ID,
		Number:      w.Number,
		Title:       w.Title,
		Description: w.Description,
		Status:      status,
		Priority:    priority,
		AssetID:     w.AssetID,
		AssetName:   w.AssetName,
		AssignedTo:  w.AssignedTo,
		DueDate:     w.DueDate,
		CompletedAt: w.CompletedAt,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}, nil
}

// WorkOrdersFromAPI конвертирует список заявок
func WorkOrdersFromAPI(list []api.WorkOrder) ([]*WorkOrder, error) {
	orders := make([]*WorkOrder, 0, len(list))
	for _, w := range list {
		order, err := WorkOrderFromAPI(w)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// PartUsageFromAPI конвертирует списание запчасти
func PartUsageFromAPI(p api.PartUsage) *PartUsage {
	return &PartUsage{
		ID:          p.ID,
		WorkOrderID: p.WorkOrderID,
		ItemID:      p.ItemID,
		ItemName:    p.ItemName,
		Quantity:    p.Quantity,
		Note:        p.Note,
		UsedAt:      p.UsedAt,
	}
}
