package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"ueesync/internal/repository"
)

// rebuildBatchSize bounds one storage round trip during bulk scans.
const rebuildBatchSize = 50

// RecomputeService re-derives order attribution from the mapping table in
// bulk. Maintenance tooling for after manual edits to the mapping table;
// no vendor calls involved.
type RecomputeService struct {
	Store  repository.Repository
	Logger *zap.Logger
}

type RebuildResult struct {
	Total   int `json:"total"`
	Updated int `json:"updated"`
}

// RebuildAnchorsFromMap recomputes every order's attribution against one
// snapshot of the mapping table taken at the start of the run.
func (s *RecomputeService) RebuildAnchorsFromMap(ctx context.Context) (RebuildResult, error) {
	rows, err := s.Store.ListAnchorBindings(ctx)
	if err != nil {
		return RebuildResult{}, err
	}
	snapshot := BuildSnapshot(rows)

	result := RebuildResult{}
	for offset := 0; ; offset += rebuildBatchSize {
		orders, err := s.Store.ListSlimOrders(ctx, offset, rebuildBatchSize)
		if err != nil {
			return result, err
		}
		if len(orders) == 0 {
			break
		}
		for i := range orders {
			order := &orders[i]
			result.Total++
			attr := snapshot.Resolve([]string(order.PIDList))
			if order.VisibleToAnchors == attr.Visible && sameStringSet([]string(order.AnchorIDList), attr.AnchorIDs) {
				continue
			}
			if err := s.Store.UpdateOrderAttribution(ctx, order.OID, attr.AnchorIDs, attr.Visible); err != nil {
				return result, err
			}
			result.Updated++
		}
		if len(orders) < rebuildBatchSize {
			break
		}
	}

	if s.Logger != nil {
		s.Logger.Info("anchor rebuild finished",
			zap.Int("total", result.Total),
			zap.Int("updated", result.Updated),
		)
	}
	return result, nil
}

type BackfillResult struct {
	Total   int `json:"total"`
	Updated int `json:"updated"`
}

// BackfillAnchorOrders adds one anchor to every historical order that
// references any of the anchor's bound products. Additive only: existing
// attributions are kept and orders already carrying the anchor are skipped.
func (s *RecomputeService) BackfillAnchorOrders(ctx context.Context, anchorID string) (BackfillResult, error) {
	anchorID = strings.TrimSpace(anchorID)
	if anchorID == "" {
		return BackfillResult{}, errors.New("anchor id is required")
	}

	binds, err := s.Store.ListBindingsByAnchor(ctx, anchorID)
	if err != nil {
		return BackfillResult{}, err
	}
	pids := make([]string, 0, len(binds))
	seen := make(map[string]bool)
	for _, b := range binds {
		pid := strings.TrimSpace(b.ProductID)
		if pid == "" || seen[pid] {
			continue
		}
		seen[pid] = true
		pids = append(pids, pid)
	}
	if len(pids) == 0 {
		return BackfillResult{}, nil
	}

	result := BackfillResult{}
	for offset := 0; ; offset += rebuildBatchSize {
		orders, err := s.Store.ListOrdersByAnyPID(ctx, pids, offset, rebuildBatchSize)
		if err != nil {
			return result, err
		}
		if len(orders) == 0 {
			break
		}
		for i := range orders {
			order := &orders[i]
			result.Total++
			if containsString([]string(order.AnchorIDList), anchorID) {
				continue
			}
			updated := append(append([]string{}, []string(order.AnchorIDList)...), anchorID)
			if err := s.Store.UpdateOrderAttribution(ctx, order.OID, updated, true); err != nil {
				return result, err
			}
			result.Updated++
		}
		if len(orders) < rebuildBatchSize {
			break
		}
	}

	if s.Logger != nil {
		s.Logger.Info("anchor backfill finished",
			zap.String("anchor_id", anchorID),
			zap.Int("total", result.Total),
			zap.Int("updated", result.Updated),
		)
	}
	return result, nil
}
