package models

import (
	"time"

	"gorm.io/datatypes"
)

// SyncLog is the structured event stream the watchdog samples for its
// error-rate check. Rows are written alongside the process log.
type SyncLog struct {
	ID        uint64         `gorm:"primaryKey;autoIncrement"`
	Timestamp time.Time      `gorm:"type:timestamptz;not null;index;comment:记录时间"`
	Level     string         `gorm:"type:text;not null;index;comment:级别 info/warn/error"`
	Action    string         `gorm:"type:text;not null;index;comment:动作标签"`
	Message   string         `gorm:"type:text;not null;comment:消息"`
	Details   datatypes.JSON `gorm:"type:jsonb;comment:详情"`
}

func (SyncLog) TableName() string {
	return "sync_logs"
}
