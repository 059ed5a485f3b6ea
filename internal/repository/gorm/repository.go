package gormrepository

import (
	"context"
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ueesync/internal/models"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// --- Sync cursor -------------------------------------------------------------

func (s *Store) GetSyncState(ctx context.Context, job string) (*models.SyncState, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var state models.SyncState
	err := s.db.WithContext(ctx).First(&state, "job = ?", job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *Store) SaveSyncState(ctx context.Context, state *models.SyncState) error {
	if s == nil || s.db == nil || state == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "job"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"last_sync_sec",
			"last_success_at",
			"last_error",
		}),
	}).Create(state).Error
}

func (s *Store) MarkSyncError(ctx context.Context, job, errMsg string) error {
	if s == nil || s.db == nil {
		return nil
	}
	state := &models.SyncState{Job: job, LastError: errMsg}
	// Only last_error is assigned on conflict: the cursor must survive a
	// failed pass untouched.
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "job"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"last_error",
		}),
	}).Create(state).Error
}

func (s *Store) ListSyncStates(ctx context.Context) ([]models.SyncState, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var states []models.SyncState
	if err := s.db.WithContext(ctx).Order("job asc").Find(&states).Error; err != nil {
		return nil, err
	}
	return states, nil
}

// --- Slim orders -------------------------------------------------------------

func (s *Store) GetSlimOrder(ctx context.Context, oid string) (*models.SlimOrder, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var order models.SlimOrder
	err := s.db.WithContext(ctx).First(&order, "oid = ?", oid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Store) UpsertSlimOrder(ctx context.Context, order *models.SlimOrder) error {
	if s == nil || s.db == nil || order == nil {
		return nil
	}
	if strings.TrimSpace(order.OID) == "" {
		return nil
	}
	// Full-record replace: stale field residue from an older vendor
	// revision must not survive an accepted overwrite.
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "oid"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"order_created_at",
			"order_date",
			"source_updated_at",
			"pay_time",
			"order_status",
			"payment_status",
			"shipping_status",
			"order_total_price",
			"product_amount",
			"shipping_price",
			"tax_price",
			"coupon_price",
			"discount_price",
			"fee_price",
			"customer_email",
			"customer_country",
			"customer_name",
			"customer_ip",
			"currency",
			"shipping_method",
			"tracking_number",
			"shipping_address",
			"package_weight",
			"package_qty",
			"customer_note",
			"admin_note",
			"items",
			"pid_list",
			"anchor_id_list",
			"visible_to_anchors",
			"channel_type",
			"synced_at",
		}),
	}).Create(order).Error
}

func (s *Store) ListSlimOrders(ctx context.Context, offset, limit int) ([]models.SlimOrder, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	limit = normalizeLimit(limit, 50)
	offset = normalizeOffset(offset)
	var orders []models.SlimOrder
	if err := s.db.WithContext(ctx).
		Order("oid asc").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Store) CountSlimOrders(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.SlimOrder{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) ListOrdersByAnyPID(ctx context.Context, pids []string, offset, limit int) ([]models.SlimOrder, error) {
	if s == nil || s.db == nil || len(pids) == 0 {
		return nil, nil
	}
	limit = normalizeLimit(limit, 100)
	offset = normalizeOffset(offset)
	var orders []models.SlimOrder
	if err := s.db.WithContext(ctx).
		Where("jsonb_exists_any(pid_list, ?)", pq.StringArray(pids)).
		Order("oid asc").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Store) UpdateOrderAttribution(ctx context.Context, oid string, anchorIDs []string, visible bool) error {
	if s == nil || s.db == nil || strings.TrimSpace(oid) == "" {
		return nil
	}
	if anchorIDs == nil {
		anchorIDs = []string{}
	}
	return s.db.WithContext(ctx).
		Model(&models.SlimOrder{}).
		Where("oid = ?", oid).
		Updates(map[string]any{
			"anchor_id_list":     datatypes.NewJSONSlice(anchorIDs),
			"visible_to_anchors": visible,
		}).Error
}

// --- Anchor bindings ---------------------------------------------------------

func (s *Store) ListAnchorBindings(ctx context.Context) ([]models.AnchorProductMap, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var rows []models.AnchorProductMap
	if err := s.db.WithContext(ctx).
		Order("product_id asc, anchor_id asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) ListVisibleBindingsByPIDs(ctx context.Context, pids []string) ([]models.AnchorProductMap, error) {
	if s == nil || s.db == nil || len(pids) == 0 {
		return nil, nil
	}
	var rows []models.AnchorProductMap
	if err := s.db.WithContext(ctx).
		Where("product_id IN ?", pids).
		Where("visible_to_anchors = ?", true).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) ListBindingsByAnchor(ctx context.Context, anchorID string) ([]models.AnchorProductMap, error) {
	if s == nil || s.db == nil || strings.TrimSpace(anchorID) == "" {
		return nil, nil
	}
	var rows []models.AnchorProductMap
	if err := s.db.WithContext(ctx).
		Where("anchor_id = ?", anchorID).
		Where("visible_to_anchors = ?", true).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// --- Products ----------------------------------------------------------------

func (s *Store) UpsertProducts(ctx context.Context, items []models.Product) error {
	if s == nil || s.db == nil || len(items) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "pid"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name",
			"sku",
			"price",
			"pic_path",
			"source_updated_at",
			"synced_at",
		}),
	}).CreateInBatches(items, 100).Error
}

// --- Monitor -----------------------------------------------------------------

func (s *Store) InsertMonitorStat(ctx context.Context, item *models.MonitorStat) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListMonitorStats(ctx context.Context, statType string, limit int) ([]models.MonitorStat, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	limit = normalizeLimit(limit, 50)
	query := s.db.WithContext(ctx).Model(&models.MonitorStat{})
	if strings.TrimSpace(statType) != "" {
		query = query.Where("type = ?", strings.TrimSpace(statType))
	}
	var stats []models.MonitorStat
	if err := query.Order("timestamp desc").Limit(limit).Find(&stats).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

// --- Sync event stream -------------------------------------------------------

func (s *Store) InsertSyncLog(ctx context.Context, item *models.SyncLog) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListRecentSyncLogs(ctx context.Context, action string, limit int) ([]models.SyncLog, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	limit = normalizeLimit(limit, 50)
	query := s.db.WithContext(ctx).Model(&models.SyncLog{})
	if strings.TrimSpace(action) != "" {
		query = query.Where("action = ?", strings.TrimSpace(action))
	}
	var logs []models.SyncLog
	if err := query.Order("timestamp desc").Limit(limit).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
