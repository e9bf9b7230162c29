// internal/pricing/coupon.go
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/exetool/store-backend/internal/models"
)

// Rejection reasons returned verbatim to the caller.
const (
	ReasonInactive   = "inactive"
	ReasonUsageLimit = "usage limit reached"
	ReasonExpired    = "expired"
	ReasonNotInCart  = "does not apply to cart"
)

// DiscountResult is the outcome of evaluating a coupon against a cart.
type DiscountResult struct {
	Valid              bool
	DiscountPercentage int
	Code               string
	Reason             string
}

// EvaluateCoupon decides whether a coupon is currently redeemable for the given
// cart. It is the single source of truth shared by the validation endpoint and
// the checkout intent path, and it never mutates anything; usage is consumed
// separately at redemption time.
//
// Checks short-circuit in order: active flag, usage cap, expiry, product scope.
// The first failing check determines the reason.
func EvaluateCoupon(coupon *models.Coupon, items []models.CartItem, now time.Time) DiscountResult {
	reject := func(reason string) DiscountResult {
		return DiscountResult{Valid: false, Code: coupon.Code, Reason: reason}
	}

	if !coupon.IsActive {
		return reject(ReasonInactive)
	}

	if coupon.MaxUses != nil && coupon.CurrentUses >= *coupon.MaxUses {
		return reject(ReasonUsageLimit)
	}

	if coupon.ValidUntil != nil && now.After(*coupon.ValidUntil) {
		return reject(ReasonExpired)
	}

	if coupon.ProductID != nil {
		applies := false
		for _, item := range items {
			if item.ProductID == *coupon.ProductID {
				applies = true
				break
			}
		}
		if !applies {
			return reject(ReasonNotInCart)
		}
	}

	return DiscountResult{
		Valid:              true,
		DiscountPercentage: coupon.DiscountPercentage,
		Code:               coupon.Code,
	}
}

// Subtotal sums cart line prices.
func Subtotal(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(decimal.NewFromFloat(item.Price))
	}
	return total
}

// ApplyDiscount subtracts pct percent from subtotal, floored at zero.
func ApplyDiscount(subtotal decimal.Decimal, pct int) decimal.Decimal {
	discount := subtotal.Mul(decimal.NewFromInt(int64(pct))).Div(decimal.NewFromInt(100))
	result := subtotal.Sub(discount)
	if result.IsNegative() {
		return decimal.Zero
	}
	return result
}

// ToMinorUnits converts a major-unit amount to the smallest currency unit,
// rounding halves away from zero (standard rounding, not banker's rounding).
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
