package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"ueesync/internal/client/ueeshop"
	"ueesync/internal/models"
	"ueesync/internal/repository"
)

// JobProducts keys the product catalog refresh in sync_state.
const JobProducts = "products"

// ProductFetcher is the slice of the gateway client the refresh needs.
type ProductFetcher interface {
	FetchProductsPage(ctx context.Context, count, page int) (ueeshop.ProductsPage, error)
}

// ProductSyncService refreshes the local product catalog from the vendor.
// The catalog is lookup data for ops tooling; orders never join against it
// on the hot path.
type ProductSyncService struct {
	Store    repository.Repository
	Client   ProductFetcher
	Recorder *SyncLogRecorder
	Logger   *zap.Logger

	PageSize int
	MaxPages int

	Now func() time.Time
}

type ProductSyncResult struct {
	Pages   int `json:"pages"`
	Fetched int `json:"fetched"`
}

func (s *ProductSyncService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *ProductSyncService) Run(ctx context.Context) (ProductSyncResult, error) {
	maxPages := s.MaxPages
	if maxPages <= 0 {
		maxPages = 50
	}

	result := ProductSyncResult{}
	for page := 1; page <= maxPages; page++ {
		pageRes, err := s.Client.FetchProductsPage(ctx, s.PageSize, page)
		if err != nil {
			s.recordFailure(ctx, err)
			return result, err
		}
		batch := make([]models.Product, 0, len(pageRes.Records))
		for _, rec := range pageRes.Records {
			pid := rec.Str(pidAliases...)
			if pid == "" {
				continue
			}
			batch = append(batch, models.Product{
				PID:             pid,
				Name:            rec.Str("Name"),
				SKU:             rec.Str("SKU"),
				Price:           rec.Money("Price"),
				PicPath:         rec.Str("PicPath"),
				SourceUpdatedAt: rec.Sec("UpdateTime"),
				SyncedAt:        s.now().UTC(),
			})
		}
		if err := s.Store.UpsertProducts(ctx, batch); err != nil {
			s.recordFailure(ctx, err)
			return result, err
		}
		result.Pages++
		result.Fetched += len(batch)
		if page >= pageRes.TotalPages {
			break
		}
	}

	nowSec := s.now().Unix()
	if err := s.Store.SaveSyncState(ctx, &models.SyncState{
		Job:           JobProducts,
		LastSyncSec:   nowSec,
		LastSuccessAt: nowSec,
		LastError:     "",
	}); err != nil {
		s.recordFailure(ctx, err)
		return result, err
	}

	s.Recorder.Record(ctx, LevelInfo, ActionProductSync, "PRODUCT_SYNC_OK", map[string]any{
		"pages":   result.Pages,
		"fetched": result.Fetched,
	})
	return result, nil
}

func (s *ProductSyncService) recordFailure(ctx context.Context, runErr error) {
	if err := s.Store.MarkSyncError(ctx, JobProducts, runErr.Error()); err != nil && s.Logger != nil {
		s.Logger.Warn("mark sync error failed", zap.Error(err))
	}
	s.Recorder.Record(ctx, LevelError, ActionProductSync, "PRODUCT_SYNC_FAILED", map[string]any{
		"error": runErr.Error(),
	})
}
