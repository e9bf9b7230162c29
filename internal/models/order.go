// internal/models/order.go
package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is created at verified-payment time, not at intent creation. Amount is
// the post-discount total computed when the gateway order was created.
type Order struct {
	BaseModel
	UserID           string          `json:"user_id" gorm:"size:100;not null;index"`
	Amount           decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	CouponCode       string          `json:"coupon_code,omitempty" gorm:"size:50"`
	GatewayOrderID   string          `json:"gateway_order_id" gorm:"size:100;uniqueIndex"`
	GatewayPaymentID string          `json:"gateway_payment_id" gorm:"size:100;index"`
	Status           OrderStatus     `json:"status" gorm:"type:varchar(20);default:'pending';index"`

	// Relationships
	Items    []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	Licenses []License   `json:"licenses,omitempty" gorm:"foreignKey:OrderID"`
}

// OrderItem is one cart line, owned exclusively by its order.
type OrderItem struct {
	BaseModel
	OrderID     uuid.UUID       `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID   string          `json:"product_id" gorm:"size:100;not null;index"`
	ProductSlug string          `json:"product_slug" gorm:"size:200"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	LicenseTier string          `json:"license_tier" gorm:"size:100"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
