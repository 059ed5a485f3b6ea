package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"ueesync/internal/alert"
	"ueesync/internal/models"
	"ueesync/internal/repository"
)

// MonitorTypeOrderSync tags the watchdog's rows in monitor_stats.
const MonitorTypeOrderSync = "order_sync"

// MonitorService is the watchdog over the order pipeline. Every run
// persists a stat row, healthy or not; alerts go out only on issues.
type MonitorService struct {
	Store    repository.Repository
	Alerter  alert.Alerter
	Recorder *SyncLogRecorder
	Logger   *zap.Logger

	DelayThresholdSec  int64
	SampleSize         int
	ErrorRateThreshold float64
	MinErrorCount      int

	Now func() time.Time
}

type MonitorResult struct {
	DelaySec  *int64   `json:"delay_sec"`
	ErrorRate float64  `json:"error_rate"`
	Issues    []string `json:"issues"`
}

func (m *MonitorService) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *MonitorService) Run(ctx context.Context) (MonitorResult, error) {
	nowSec := m.now().Unix()

	var delaySec *int64
	state, err := m.Store.GetSyncState(ctx, JobOrders)
	if err != nil {
		return MonitorResult{}, err
	}
	if state != nil {
		d := nowSec - state.LastSyncSec
		delaySec = &d
	}

	sample := m.SampleSize
	if sample <= 0 {
		sample = 50
	}
	logs, err := m.Store.ListRecentSyncLogs(ctx, ActionOrderSync, sample)
	if err != nil {
		return MonitorResult{}, err
	}
	errorCount := 0
	for _, entry := range logs {
		if entry.Level == LevelError {
			errorCount++
		}
	}
	total := len(logs)
	if total == 0 {
		total = 1
	}
	errorRate := float64(errorCount) / float64(total)

	delayLimit := m.DelayThresholdSec
	if delayLimit <= 0 {
		delayLimit = 600
	}
	rateLimit := m.ErrorRateThreshold
	if rateLimit <= 0 {
		rateLimit = 0.5
	}
	minErrors := m.MinErrorCount
	if minErrors <= 0 {
		minErrors = 5
	}

	issues := []string{}
	if delaySec != nil && *delaySec > delayLimit {
		issues = append(issues, fmt.Sprintf("order sync delayed %ds, threshold %ds", *delaySec, delayLimit))
	}
	if errorRate > rateLimit && errorCount >= minErrors {
		issues = append(issues, fmt.Sprintf("order sync error rate %d/%d over recent runs", errorCount, len(logs)))
	}

	if len(issues) > 0 {
		m.Recorder.Record(ctx, LevelWarn, ActionMonitor, "ISSUES_DETECTED", map[string]any{
			"issues":     issues,
			"error_rate": errorRate,
		})
		if m.Alerter != nil {
			// Delivery is best-effort; a push failure must not fail the run.
			if err := m.Alerter.Send(ctx, issues); err != nil && m.Logger != nil {
				m.Logger.Warn("alert delivery failed", zap.Error(err))
			}
		}
	}

	stat := &models.MonitorStat{
		Type:      MonitorTypeOrderSync,
		Timestamp: nowSec,
		DelaySec:  delaySec,
		ErrorRate: errorRate,
		Issues:    datatypes.NewJSONSlice(issues),
	}
	if err := m.Store.InsertMonitorStat(ctx, stat); err != nil {
		return MonitorResult{}, err
	}

	return MonitorResult{DelaySec: delaySec, ErrorRate: errorRate, Issues: issues}, nil
}
