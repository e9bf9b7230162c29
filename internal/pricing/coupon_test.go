// internal/pricing/coupon_test.go
package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/exetool/store-backend/internal/models"
)

func intPtr(v int) *int              { return &v }
func strPtr(v string) *string        { return &v }
func timePtr(v time.Time) *time.Time { return &v }

func cart(productIDs ...string) []models.CartItem {
	items := make([]models.CartItem, 0, len(productIDs))
	for _, id := range productIDs {
		items = append(items, models.CartItem{ProductID: id, Price: 100})
	}
	return items
}

func TestEvaluateCoupon(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	tests := []struct {
		name       string
		coupon     models.Coupon
		items      []models.CartItem
		wantValid  bool
		wantReason string
		wantPct    int
	}{
		{
			name:      "active unlimited unscoped",
			coupon:    models.Coupon{Code: "SAVE20", DiscountPercentage: 20, IsActive: true},
			items:     cart("p1"),
			wantValid: true,
			wantPct:   20,
		},
		{
			name:       "inactive",
			coupon:     models.Coupon{Code: "OFF", DiscountPercentage: 10, IsActive: false},
			items:      cart("p1"),
			wantValid:  false,
			wantReason: ReasonInactive,
		},
		{
			name: "usage cap reached",
			coupon: models.Coupon{
				Code: "CAPPED", DiscountPercentage: 10, IsActive: true,
				MaxUses: intPtr(5), CurrentUses: 5,
			},
			items:      cart("p1"),
			wantValid:  false,
			wantReason: ReasonUsageLimit,
		},
		{
			name: "usage cap reached wins over expiry",
			coupon: models.Coupon{
				Code: "CAPPED", DiscountPercentage: 10, IsActive: true,
				MaxUses: intPtr(3), CurrentUses: 7,
				ValidUntil: timePtr(yesterday),
			},
			items:      cart("p1"),
			wantValid:  false,
			wantReason: ReasonUsageLimit,
		},
		{
			name: "expired even with uses remaining",
			coupon: models.Coupon{
				Code: "EXPIRED10", DiscountPercentage: 10, IsActive: true,
				MaxUses: intPtr(100), CurrentUses: 1,
				ValidUntil: timePtr(yesterday),
			},
			items:      cart("p1"),
			wantValid:  false,
			wantReason: ReasonExpired,
		},
		{
			name: "valid until tomorrow passes",
			coupon: models.Coupon{
				Code: "FRESH", DiscountPercentage: 15, IsActive: true,
				ValidUntil: timePtr(tomorrow),
			},
			items:     cart("p1"),
			wantValid: true,
			wantPct:   15,
		},
		{
			name: "scoped coupon with no matching item",
			coupon: models.Coupon{
				Code: "ONLYP9", DiscountPercentage: 25, IsActive: true,
				ProductID: strPtr("p9"),
			},
			items:      cart("p1", "p2"),
			wantValid:  false,
			wantReason: ReasonNotInCart,
		},
		{
			name: "scoped coupon with one matching item",
			coupon: models.Coupon{
				Code: "ONLYP2", DiscountPercentage: 25, IsActive: true,
				ProductID: strPtr("p2"),
			},
			items:     cart("p1", "p2"),
			wantValid: true,
			wantPct:   25,
		},
		{
			name: "unlimited uses with nil max",
			coupon: models.Coupon{
				Code: "FOREVER", DiscountPercentage: 5, IsActive: true,
				CurrentUses: 1_000_000,
			},
			items:     cart("p1"),
			wantValid: true,
			wantPct:   5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateCoupon(&tt.coupon, tt.items, now)
			assert.Equal(t, tt.wantValid, got.Valid)
			if tt.wantValid {
				assert.Equal(t, tt.wantPct, got.DiscountPercentage)
				assert.Empty(t, got.Reason)
			} else {
				assert.Equal(t, tt.wantReason, got.Reason)
			}
		})
	}
}

func TestApplyDiscount(t *testing.T) {
	subtotal := decimal.NewFromInt(1000)

	discounted := ApplyDiscount(subtotal, 20)
	assert.True(t, discounted.Equal(decimal.NewFromInt(800)), "got %s", discounted)
	assert.Equal(t, int64(80000), ToMinorUnits(discounted))

	// 100% floors at zero, never negative
	assert.True(t, ApplyDiscount(subtotal, 100).IsZero())
	assert.True(t, ApplyDiscount(decimal.Zero, 50).IsZero())
}

func TestDiscountOrderIndependent(t *testing.T) {
	a := []models.CartItem{
		{ProductID: "p1", Price: 499.50},
		{ProductID: "p2", Price: 500.50},
	}
	b := []models.CartItem{a[1], a[0]}

	amountA := ToMinorUnits(ApplyDiscount(Subtotal(a), 20))
	amountB := ToMinorUnits(ApplyDiscount(Subtotal(b), 20))
	assert.Equal(t, amountA, amountB)
	assert.Equal(t, int64(80000), amountA)
}

func TestToMinorUnitsRounding(t *testing.T) {
	// standard rounding: halves go up for positive amounts
	assert.Equal(t, int64(50000), ToMinorUnits(decimal.NewFromInt(500)))
	assert.Equal(t, int64(12346), ToMinorUnits(decimal.NewFromFloat(123.455)))
	assert.Equal(t, int64(12345), ToMinorUnits(decimal.NewFromFloat(123.454)))
}
