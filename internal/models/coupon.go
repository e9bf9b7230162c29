// internal/models/coupon.go
package models

import (
	"strings"
	"time"
)

// Coupon is a percentage discount code. Codes are stored uppercase and matched
// exactly. A nil MaxUses means unlimited redemptions; a nil ValidUntil means no
// expiry; a nil ProductID means the coupon applies to every product.
type Coupon struct {
	BaseModel
	Code               string     `json:"code" gorm:"uniqueIndex;size:50;not null"`
	DiscountPercentage int        `json:"discount_percentage" gorm:"not null"`
	MaxUses            *int       `json:"max_uses"`
	CurrentUses        int        `json:"current_uses" gorm:"not null;default:0"`
	ValidUntil         *time.Time `json:"valid_until"`
	IsActive           bool       `json:"is_active" gorm:"not null;default:true"`
	ProductID          *string    `json:"product_id" gorm:"size:100;index"`
}

// NormalizeCouponCode maps user input to the stored form.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
