package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AnchorProductMap binds one product to one anchor. Rows are owned by the
// admin tooling; the sync pipeline only reads them.
type AnchorProductMap struct {
	ProductID        string          `gorm:"primaryKey;type:text;comment:商品ID"`
	AnchorID         string          `gorm:"primaryKey;type:text;comment:主播ID"`
	AnchorName       string          `gorm:"type:text;comment:主播名称"`
	VisibleToAnchors bool            `gorm:"not null;default:true;comment:该绑定是否生效"`
	CommissionRate   decimal.Decimal `gorm:"type:numeric(10,4);not null;default:0;comment:佣金比例"`
	Priority         int             `gorm:"not null;default:0;comment:优先级"`
	CreatedAt        time.Time       `gorm:"type:timestamptz;autoCreateTime;comment:创建时间"`
	UpdatedAt        time.Time       `gorm:"type:timestamptz;autoUpdateTime;comment:更新时间"`
}

func (AnchorProductMap) TableName() string {
	return "anchor_product_map"
}
