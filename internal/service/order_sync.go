package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"ueesync/internal/client/ueeshop"
	"ueesync/internal/models"
	"ueesync/internal/repository"
)

// JobOrders keys the order pipeline's row in sync_state.
const JobOrders = "orders"

// DefaultSafetyBackSec is the fixed backward overlap re-fetched on every
// pass so a record updated right at the previous cutoff is never missed.
const DefaultSafetyBackSec = 300

// OrderFetcher is the slice of the gateway client the pipeline needs.
type OrderFetcher interface {
	FetchOrdersPage(ctx context.Context, fromSec, toSec int64, status string, count, page int) (ueeshop.OrdersPage, error)
}

// OrderSyncService runs one incremental pull of updated vendor orders:
// window from the stored cursor minus the safety overlap up to now, page
// by page, normalize, attribute, freshness-checked upsert.
type OrderSyncService struct {
	Store    repository.Repository
	Client   OrderFetcher
	Resolver *AttributionResolver
	Recorder *SyncLogRecorder
	Logger   *zap.Logger

	SafetyBackSec int64
	PageSize      int
	OrderStatus   string

	// Now is swapped in tests.
	Now func() time.Time
}

type RunOptions struct {
	// ForceFromSec overrides the stored cursor for a manual backfill.
	ForceFromSec int64
}

type RunResult struct {
	FromSec int64 `json:"from_sec"`
	ToSec   int64 `json:"to_sec"`
	Pages   int   `json:"pages"`
	Fetched int   `json:"fetched"`
	Applied int   `json:"applied"`
	Stale   int   `json:"stale"`
	Skipped int   `json:"skipped"`
}

func (s *OrderSyncService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *OrderSyncService) Run(ctx context.Context, opts RunOptions) (RunResult, error) {
	state, err := s.Store.GetSyncState(ctx, JobOrders)
	if err != nil {
		return RunResult{}, err
	}

	var baseFrom int64
	if opts.ForceFromSec > 0 {
		baseFrom = opts.ForceFromSec
	} else if state != nil {
		baseFrom = state.LastSyncSec
	}

	safety := s.SafetyBackSec
	if safety <= 0 {
		safety = DefaultSafetyBackSec
	}
	fromSec := baseFrom - safety
	if fromSec < 0 {
		fromSec = 0
	}
	toSec := s.now().Unix()

	result := RunResult{FromSec: fromSec, ToSec: toSec}
	if err := s.drainWindow(ctx, fromSec, toSec, &result); err != nil {
		s.recordFailure(ctx, err)
		return result, err
	}

	if err := s.Store.SaveSyncState(ctx, &models.SyncState{
		Job:           JobOrders,
		LastSyncSec:   toSec,
		LastSuccessAt: s.now().Unix(),
		LastError:     "",
	}); err != nil {
		s.recordFailure(ctx, err)
		return result, err
	}

	s.Recorder.Record(ctx, LevelInfo, ActionOrderSync, "SYNC_OK", map[string]any{
		"from_sec": fromSec,
		"to_sec":   toSec,
		"pages":    result.Pages,
		"fetched":  result.Fetched,
		"applied":  result.Applied,
		"stale":    result.Stale,
		"skipped":  result.Skipped,
	})
	return result, nil
}

// drainWindow walks the window's pages strictly in order. The cursor only
// moves after the whole window is drained, so a mid-run failure retries
// the same window on the next pass.
func (s *OrderSyncService) drainWindow(ctx context.Context, fromSec, toSec int64, result *RunResult) error {
	for page := 1; ; page++ {
		pageRes, err := s.Client.FetchOrdersPage(ctx, fromSec, toSec, s.OrderStatus, s.PageSize, page)
		if err != nil {
			return err
		}
		result.Pages++
		for _, raw := range pageRes.Records {
			result.Fetched++
			slim, err := BuildSlimOrder(raw)
			if errors.Is(err, ErrMissingOrderID) {
				// Malformed record: skip it, count it, keep the pass alive.
				result.Skipped++
				s.Recorder.Record(ctx, LevelWarn, ActionOrderSync, "ORDER_MISSING_OID", map[string]any{
					"page": page,
				})
				continue
			}
			if err != nil {
				return err
			}
			applied, err := s.upsertOne(ctx, &slim)
			if err != nil {
				return err
			}
			if applied {
				result.Applied++
			} else {
				result.Stale++
			}
		}
		if page >= pageRes.TotalPages {
			return nil
		}
	}
}

// upsertOne applies the freshness check and then replaces the record whole.
// Compare-then-write, not compare-and-swap: two overlapping runs may race,
// but neither can regress a newer record to an older one because both carry
// the same vendor timestamps.
func (s *OrderSyncService) upsertOne(ctx context.Context, slim *models.SlimOrder) (bool, error) {
	existing, err := s.Store.GetSlimOrder(ctx, slim.OID)
	if err != nil {
		return false, err
	}
	if existing != nil && existing.SourceUpdatedAt >= slim.SourceUpdatedAt {
		return false, nil
	}

	attr := s.Resolver.ResolveForOrder(ctx, []string(slim.PIDList))
	slim.AnchorIDList = datatypes.NewJSONSlice(attr.AnchorIDs)
	slim.VisibleToAnchors = attr.Visible
	slim.ChannelType = attr.Channel
	slim.SyncedAt = s.now().UTC()

	if err := s.Store.UpsertSlimOrder(ctx, slim); err != nil {
		return false, err
	}
	return true, nil
}

func (s *OrderSyncService) recordFailure(ctx context.Context, runErr error) {
	if err := s.Store.MarkSyncError(ctx, JobOrders, runErr.Error()); err != nil && s.Logger != nil {
		s.Logger.Warn("mark sync error failed", zap.Error(err))
	}
	s.Recorder.Record(ctx, LevelError, ActionOrderSync, "SYNC_FAILED", map[string]any{
		"error": runErr.Error(),
	})
}
