package service

import (
	"context"
	"sort"

	"ueesync/internal/models"
)

// stubRepo is a test-only in-memory implementation of repository.Repository.
type stubRepo struct {
	states   map[string]models.SyncState
	orders   map[string]models.SlimOrder
	bindings []models.AnchorProductMap
	products map[string]models.Product
	stats    []models.MonitorStat
	logs     []models.SyncLog

	// failUpsertAt makes the Nth order upsert fail (1-based, 0 disables).
	failUpsertAt int
	upsertCalls  int

	bindingErr error
	fetchErr   error
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		states:   map[string]models.SyncState{},
		orders:   map[string]models.SlimOrder{},
		products: map[string]models.Product{},
	}
}

func (s *stubRepo) GetSyncState(ctx context.Context, job string) (*models.SyncState, error) {
	state, ok := s.states[job]
	if !ok {
		return nil, nil
	}
	out := state
	return &out, nil
}

func (s *stubRepo) SaveSyncState(ctx context.Context, state *models.SyncState) error {
	s.states[state.Job] = *state
	return nil
}

func (s *stubRepo) MarkSyncError(ctx context.Context, job, errMsg string) error {
	state := s.states[job]
	state.Job = job
	state.LastError = errMsg
	s.states[job] = state
	return nil
}

func (s *stubRepo) ListSyncStates(ctx context.Context) ([]models.SyncState, error) {
	out := make([]models.SyncState, 0, len(s.states))
	for _, state := range s.states {
		out = append(out, state)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Job < out[j].Job })
	return out, nil
}

func (s *stubRepo) GetSlimOrder(ctx context.Context, oid string) (*models.SlimOrder, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	order, ok := s.orders[oid]
	if !ok {
		return nil, nil
	}
	out := order
	return &out, nil
}

func (s *stubRepo) UpsertSlimOrder(ctx context.Context, order *models.SlimOrder) error {
	s.upsertCalls++
	if s.failUpsertAt > 0 && s.upsertCalls >= s.failUpsertAt {
		return errStorage
	}
	s.orders[order.OID] = *order
	return nil
}

func (s *stubRepo) ListSlimOrders(ctx context.Context, offset, limit int) ([]models.SlimOrder, error) {
	all := s.sortedOrders()
	return sliceWindow(all, offset, limit), nil
}

func (s *stubRepo) CountSlimOrders(ctx context.Context) (int64, error) {
	return int64(len(s.orders)), nil
}

func (s *stubRepo) ListOrdersByAnyPID(ctx context.Context, pids []string, offset, limit int) ([]models.SlimOrder, error) {
	want := map[string]bool{}
	for _, pid := range pids {
		want[pid] = true
	}
	matched := make([]models.SlimOrder, 0)
	for _, order := range s.sortedOrders() {
		for _, pid := range order.PIDList {
			if want[pid] {
				matched = append(matched, order)
				break
			}
		}
	}
	return sliceWindow(matched, offset, limit), nil
}

func (s *stubRepo) UpdateOrderAttribution(ctx context.Context, oid string, anchorIDs []string, visible bool) error {
	order, ok := s.orders[oid]
	if !ok {
		return nil
	}
	order.AnchorIDList = append([]string{}, anchorIDs...)
	order.VisibleToAnchors = visible
	s.orders[oid] = order
	return nil
}

func (s *stubRepo) ListAnchorBindings(ctx context.Context) ([]models.AnchorProductMap, error) {
	if s.bindingErr != nil {
		return nil, s.bindingErr
	}
	return append([]models.AnchorProductMap{}, s.bindings...), nil
}

func (s *stubRepo) ListVisibleBindingsByPIDs(ctx context.Context, pids []string) ([]models.AnchorProductMap, error) {
	if s.bindingErr != nil {
		return nil, s.bindingErr
	}
	want := map[string]bool{}
	for _, pid := range pids {
		want[pid] = true
	}
	out := make([]models.AnchorProductMap, 0)
	for _, row := range s.bindings {
		if row.VisibleToAnchors && want[row.ProductID] {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *stubRepo) ListBindingsByAnchor(ctx context.Context, anchorID string) ([]models.AnchorProductMap, error) {
	if s.bindingErr != nil {
		return nil, s.bindingErr
	}
	out := make([]models.AnchorProductMap, 0)
	for _, row := range s.bindings {
		if row.VisibleToAnchors && row.AnchorID == anchorID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *stubRepo) UpsertProducts(ctx context.Context, items []models.Product) error {
	for _, item := range items {
		s.products[item.PID] = item
	}
	return nil
}

func (s *stubRepo) InsertMonitorStat(ctx context.Context, item *models.MonitorStat) error {
	s.stats = append(s.stats, *item)
	return nil
}

func (s *stubRepo) ListMonitorStats(ctx context.Context, statType string, limit int) ([]models.MonitorStat, error) {
	out := make([]models.MonitorStat, 0)
	for i := len(s.stats) - 1; i >= 0 && len(out) < limit; i-- {
		if statType == "" || s.stats[i].Type == statType {
			out = append(out, s.stats[i])
		}
	}
	return out, nil
}

func (s *stubRepo) InsertSyncLog(ctx context.Context, item *models.SyncLog) error {
	s.logs = append(s.logs, *item)
	return nil
}

func (s *stubRepo) ListRecentSyncLogs(ctx context.Context, action string, limit int) ([]models.SyncLog, error) {
	out := make([]models.SyncLog, 0)
	for i := len(s.logs) - 1; i >= 0 && len(out) < limit; i-- {
		if action == "" || s.logs[i].Action == action {
			out = append(out, s.logs[i])
		}
	}
	return out, nil
}

func (s *stubRepo) sortedOrders() []models.SlimOrder {
	out := make([]models.SlimOrder, 0, len(s.orders))
	for _, order := range s.orders {
		out = append(out, order)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OID < out[j].OID })
	return out
}

func sliceWindow(all []models.SlimOrder, offset, limit int) []models.SlimOrder {
	if offset >= len(all) {
		return nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return append([]models.SlimOrder{}, all[offset:end]...)
}
