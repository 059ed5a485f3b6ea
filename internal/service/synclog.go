package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"ueesync/internal/models"
	"ueesync/internal/repository"
)

const (
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Action tags on the structured sync event stream.
const (
	ActionOrderSync   = "order_sync"
	ActionProductSync = "product_sync"
	ActionMonitor     = "monitor_sync"
)

// SyncLogRecorder mirrors pipeline events into sync_logs so the watchdog
// can sample them. The process log still gets everything via zap; a failed
// row insert is logged and otherwise ignored.
type SyncLogRecorder struct {
	Store  repository.Repository
	Logger *zap.Logger
}

func (r *SyncLogRecorder) Record(ctx context.Context, level, action, message string, details map[string]any) {
	if r == nil {
		return
	}
	if r.Logger != nil {
		fields := make([]zap.Field, 0, len(details)+1)
		fields = append(fields, zap.String("action", action))
		for k, v := range details {
			fields = append(fields, zap.Any(k, v))
		}
		switch level {
		case LevelError:
			r.Logger.Error(message, fields...)
		case LevelWarn:
			r.Logger.Warn(message, fields...)
		default:
			r.Logger.Info(message, fields...)
		}
	}
	if r.Store == nil {
		return
	}
	entry := &models.SyncLog{
		Timestamp: time.Now().UTC(),
		Level:     level,
		Action:    action,
		Message:   message,
		Details:   mustJSON(details),
	}
	if err := r.Store.InsertSyncLog(ctx, entry); err != nil && r.Logger != nil {
		r.Logger.Warn("sync log write failed", zap.Error(err))
	}
}
