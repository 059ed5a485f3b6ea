package repository

import (
	"context"

	"ueesync/internal/models"
)

// Repository is the storage surface of the sync pipeline. All writes are
// per-row (per-oid for orders); no cross-table transaction is assumed.
type Repository interface {
	// Sync cursor.
	GetSyncState(ctx context.Context, job string) (*models.SyncState, error)
	SaveSyncState(ctx context.Context, state *models.SyncState) error
	// MarkSyncError records a failure without touching the cursor.
	MarkSyncError(ctx context.Context, job, errMsg string) error
	ListSyncStates(ctx context.Context) ([]models.SyncState, error)

	// Slim orders.
	GetSlimOrder(ctx context.Context, oid string) (*models.SlimOrder, error)
	UpsertSlimOrder(ctx context.Context, order *models.SlimOrder) error
	ListSlimOrders(ctx context.Context, offset, limit int) ([]models.SlimOrder, error)
	CountSlimOrders(ctx context.Context) (int64, error)
	ListOrdersByAnyPID(ctx context.Context, pids []string, offset, limit int) ([]models.SlimOrder, error)
	UpdateOrderAttribution(ctx context.Context, oid string, anchorIDs []string, visible bool) error

	// Anchor bindings (read-only snapshot; admin tooling owns the rows).
	ListAnchorBindings(ctx context.Context) ([]models.AnchorProductMap, error)
	ListVisibleBindingsByPIDs(ctx context.Context, pids []string) ([]models.AnchorProductMap, error)
	ListBindingsByAnchor(ctx context.Context, anchorID string) ([]models.AnchorProductMap, error)

	// Products.
	UpsertProducts(ctx context.Context, items []models.Product) error

	// Monitor.
	InsertMonitorStat(ctx context.Context, item *models.MonitorStat) error
	ListMonitorStats(ctx context.Context, statType string, limit int) ([]models.MonitorStat, error)

	// Structured sync event stream.
	InsertSyncLog(ctx context.Context, item *models.SyncLog) error
	ListRecentSyncLogs(ctx context.Context, action string, limit int) ([]models.SyncLog, error)
}
