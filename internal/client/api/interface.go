package api

import (
	"context"
	"encoding/json"

	"github.com/maintly/fieldsync/internal/client/storage"
	"github.com/maintly/fieldsync/internal/models"
	pkgapi "github.com/maintly/fieldsync/pkg/api"
)

//go:generate moq -out client_mock.go . ClientAPI

// ClientAPI defines the full surface of the HTTP client consumed by the
// auth, queue, sync and domain service layers.
type ClientAPI interface {
	// Tenant context
	SetTenant(tenant models.TenantContext)
	ClearTenant()
	Tenant() models.TenantContext

	// Auth
	Login(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.SessionResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*pkgapi.TokenResponse, error)
	Logout(ctx context.Context) error

	// Alerts
	ListAlerts(ctx context.Context) (*pkgapi.AlertListResponse, error)
	GetAlert(ctx context.Context, id int64) (*pkgapi.Alert, error)
	AcknowledgeAlert(ctx context.Context, id int64, req pkgapi.AlertActionRequest, idempotencyKey string) (*pkgapi.Alert, error)
	ResolveAlert(ctx context.Context, id int64, req pkgapi.AlertActionRequest, idempotencyKey string) (*pkgapi.Alert, error)

	// Work orders
	ListWorkOrders(ctx context.Context) (*pkgapi.WorkOrderListResponse, error)
	GetWorkOrder(ctx context.Context, id int64) (*pkgapi.WorkOrder, error)
	CreateWorkOrder(ctx context.Context, req pkgapi.WorkOrderCreateRequest, idempotencyKey string) (*pkgapi.WorkOrder, error)
	UpdateWorkOrder(ctx context.Context, id int64, req pkgapi.WorkOrderUpdateRequest, idempotencyKey string) (*pkgapi.WorkOrder, error)
	AddPartUsage(ctx context.Context, workOrderID int64, req pkgapi.PartUsageRequest, idempotencyKey string) (*pkgapi.PartUsage, error)

	// Assets
	ListAssets(ctx context.Context) (*pkgapi.AssetListResponse, error)
	GetAsset(ctx context.Context, id int64) (*pkgapi.Asset, error)
	AddMeterReading(ctx context.Context, assetID int64, req pkgapi.MeterReadingRequest, idempotencyKey string) (*pkgapi.MeterReading, error)

	// Inventory
	ListInventoryItems(ctx context.Context) (*pkgapi.InventoryListResponse, error)
	GetInventoryItem(ctx context.Context, id int64) (*pkgapi.InventoryItem, error)
	RegisterStockMovement(ctx context.Context, itemID int64, req pkgapi.StockMovementRequest, idempotencyKey string) (*pkgapi.StockMovement, error)

	// Queue replay
	ReplayMutation(ctx context.Context, m *storage.QueuedMutation) (json.RawMessage, error)
}

// Compile-time check that Client implements ClientAPI
var _ ClientAPI = (*Client)(nil)
