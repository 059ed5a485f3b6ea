package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// SlimOrder is the normalized, storage-ready projection of a vendor order.
// The record is replaced whole on every accepted sync; SourceUpdatedAt
// guards against out-of-order delivery (strictly newer wins).
type SlimOrder struct {
	OID string `gorm:"column:oid;primaryKey;type:text;comment:订单号"`

	OrderCreatedAt  int64  `gorm:"not null;default:0;comment:下单时间(秒)"`
	OrderDate       string `gorm:"type:text;comment:下单日期(yyyy-mm-dd)"`
	SourceUpdatedAt int64  `gorm:"not null;default:0;index;comment:源端更新时间(秒)"`
	PayTime         int64  `gorm:"not null;default:0;comment:支付时间(秒)"`

	OrderStatus    int    `gorm:"not null;default:0;comment:订单状态码"`
	PaymentStatus  string `gorm:"type:text;index;comment:支付状态"`
	ShippingStatus string `gorm:"type:text;index;comment:发货状态"`

	OrderTotalPrice decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0;comment:订单总额"`
	ProductAmount   decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0;comment:商品金额"`
	ShippingPrice   decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0;comment:运费"`
	TaxPrice        decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0;comment:税费"`
	CouponPrice     decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0;comment:优惠券金额"`
	DiscountPrice   decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0;comment:折扣金额"`
	FeePrice        decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0;comment:手续费"`

	CustomerEmail   string `gorm:"type:text;comment:客户邮箱"`
	CustomerCountry string `gorm:"type:text;comment:客户国家"`
	CustomerName    string `gorm:"type:text;comment:客户姓名"`
	CustomerIP      string `gorm:"type:text;comment:客户IP"`
	Currency        string `gorm:"type:text;not null;default:'USD';comment:币种"`

	ShippingMethod  string          `gorm:"type:text;comment:物流方式"`
	TrackingNumber  string          `gorm:"type:text;comment:运单号"`
	ShippingAddress string          `gorm:"type:text;comment:收货地址"`
	PackageWeight   decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0;comment:包裹重量"`
	PackageQty      int             `gorm:"not null;default:0;comment:商品件数"`

	CustomerNote string `gorm:"type:text;comment:顾客备注"`
	AdminNote    string `gorm:"type:text;comment:后台备注"`

	Items   datatypes.JSON              `gorm:"type:jsonb;comment:商品清单"`
	PIDList datatypes.JSONSlice[string] `gorm:"column:pid_list;type:jsonb;comment:商品ID列表"`

	AnchorIDList     datatypes.JSONSlice[string] `gorm:"column:anchor_id_list;type:jsonb;comment:归因主播ID列表"`
	VisibleToAnchors bool                        `gorm:"not null;default:false;index;comment:主播是否可见"`
	ChannelType      string                      `gorm:"type:text;not null;default:'organic';index;comment:渠道类型 anchor/organic"`

	SyncedAt time.Time `gorm:"type:timestamptz;not null;comment:本地同步时间"`
}

func (SlimOrder) TableName() string {
	return "orders_slim"
}

// OrderItem is the shape of one entry in Items.
type OrderItem struct {
	Pic      string          `json:"pic"`
	Name     string          `json:"name"`
	SKU      string          `json:"sku"`
	Qty      int             `json:"qty"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
}
