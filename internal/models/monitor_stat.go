package models

import (
	"gorm.io/datatypes"
)

// MonitorStat is one append-only health snapshot written per watchdog run.
type MonitorStat struct {
	ID        uint64                      `gorm:"primaryKey;autoIncrement"`
	Type      string                      `gorm:"type:text;not null;index;comment:监控类型"`
	Timestamp int64                       `gorm:"not null;index;comment:采样时间(秒)"`
	DelaySec  *int64                      `gorm:"comment:同步延迟(秒)"`
	ErrorRate float64                     `gorm:"not null;default:0;comment:错误率 0..1"`
	Issues    datatypes.JSONSlice[string] `gorm:"type:jsonb;comment:异常描述列表"`
}

func (MonitorStat) TableName() string {
	return "monitor_stats"
}
