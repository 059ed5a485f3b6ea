package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"ueesync/internal/models"
	"ueesync/internal/repository"
)

const (
	ChannelAnchor  = "anchor"
	ChannelOrganic = "organic"
)

// Attribution is the derived channel classification for one order.
type Attribution struct {
	AnchorIDs []string
	Visible   bool
	Channel   string
}

func organicAttribution() Attribution {
	return Attribution{AnchorIDs: []string{}, Visible: false, Channel: ChannelOrganic}
}

// MappingSnapshot is a point-in-time index of the effective product to
// anchor bindings. Attribution is always recomputed from whatever snapshot
// is current, never treated as a sticky historical fact.
type MappingSnapshot struct {
	byPID map[string][]string
}

// BuildSnapshot indexes the given mapping rows by product id, keeping only
// rows whose binding is in effect and deduplicating anchors per product.
func BuildSnapshot(rows []models.AnchorProductMap) *MappingSnapshot {
	byPID := make(map[string][]string)
	seen := make(map[string]map[string]bool)
	for _, row := range rows {
		pid := strings.TrimSpace(row.ProductID)
		aid := strings.TrimSpace(row.AnchorID)
		if pid == "" || aid == "" || !row.VisibleToAnchors {
			continue
		}
		if seen[pid] == nil {
			seen[pid] = make(map[string]bool)
		}
		if seen[pid][aid] {
			continue
		}
		seen[pid][aid] = true
		byPID[pid] = append(byPID[pid], aid)
	}
	return &MappingSnapshot{byPID: byPID}
}

// Resolve unions the anchors bound to any of the given product ids.
// Pure and deterministic for a fixed snapshot.
func (s *MappingSnapshot) Resolve(pids []string) Attribution {
	if s == nil || len(pids) == 0 {
		return organicAttribution()
	}
	anchorIDs := []string{}
	seen := make(map[string]bool)
	for _, pid := range pids {
		for _, aid := range s.byPID[strings.TrimSpace(pid)] {
			if seen[aid] {
				continue
			}
			seen[aid] = true
			anchorIDs = append(anchorIDs, aid)
		}
	}
	if len(anchorIDs) == 0 {
		return organicAttribution()
	}
	return Attribution{AnchorIDs: anchorIDs, Visible: true, Channel: ChannelAnchor}
}

// AttributionResolver resolves per-order attribution against the live
// mapping table. Lookup failures degrade to organic rather than failing
// the pass: attribution is best-effort derived state and a recompute job
// can repair it afterwards.
type AttributionResolver struct {
	Store  repository.Repository
	Logger *zap.Logger
}

func (r *AttributionResolver) ResolveForOrder(ctx context.Context, pids []string) Attribution {
	if len(pids) == 0 {
		return organicAttribution()
	}
	rows, err := r.Store.ListVisibleBindingsByPIDs(ctx, pids)
	if err != nil {
		if r.Logger != nil {
			r.Logger.Warn("anchor mapping lookup failed", zap.Error(err))
		}
		return organicAttribution()
	}
	return BuildSnapshot(rows).Resolve(pids)
}
