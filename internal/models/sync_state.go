package models

// SyncState is the per-job progress marker. LastSyncSec is the high-water
// mark of the last fully drained window and only ever moves forward after
// a successful pass.
type SyncState struct {
	Job           string `gorm:"primaryKey;type:text;comment:任务名"`
	LastSyncSec   int64  `gorm:"not null;default:0;comment:游标水位(秒)"`
	LastSuccessAt int64  `gorm:"not null;default:0;comment:最近成功时间(秒)"`
	LastError     string `gorm:"type:text;comment:最近错误信息"`
}

func (SyncState) TableName() string {
	return "sync_state"
}
