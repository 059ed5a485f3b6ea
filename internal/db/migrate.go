package db

import (
	"ueesync/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.SyncState{},
		&models.SlimOrder{},
		&models.AnchorProductMap{},
		&models.Product{},
		&models.MonitorStat{},
		&models.SyncLog{},
	)
}
