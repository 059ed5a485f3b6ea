package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the slim vendor product record used to seed the anchor
// binding screens with valid product ids.
type Product struct {
	PID             string          `gorm:"column:pid;primaryKey;type:text;comment:商品ID"`
	Name            string          `gorm:"type:text;comment:商品名称"`
	SKU             string          `gorm:"type:text;comment:SKU"`
	Price           decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0;comment:售价"`
	PicPath         string          `gorm:"type:text;comment:主图"`
	SourceUpdatedAt int64           `gorm:"not null;default:0;comment:源端更新时间(秒)"`
	SyncedAt        time.Time       `gorm:"type:timestamptz;not null;comment:本地同步时间"`
}

func (Product) TableName() string {
	return "products"
}
