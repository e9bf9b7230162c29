// internal/services/coupon_service_test.go
package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exetool/store-backend/internal/models"
	"github.com/exetool/store-backend/internal/pricing"
)

func testCart() []models.CartItem {
	return []models.CartItem{{ProductID: "prod-1", Price: 500}}
}

func TestValidateUnknownCode(t *testing.T) {
	svc := &CouponService{finder: &fakeCouponFinder{}}

	_, err := svc.Validate(context.Background(), "MISSING", testCart())
	assert.ErrorIs(t, err, ErrCouponNotFound)
}

func TestValidateEmptyCart(t *testing.T) {
	svc := &CouponService{finder: &fakeCouponFinder{}}

	_, err := svc.Validate(context.Background(), "ANY", nil)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestValidateNormalizesCode(t *testing.T) {
	svc := &CouponService{finder: &fakeCouponFinder{coupons: map[string]*models.Coupon{
		"SAVE20": {Code: "SAVE20", DiscountPercentage: 20, IsActive: true},
	}}}

	result, err := svc.Validate(context.Background(), "  save20 ", testCart())
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, "SAVE20", result.Code)
	assert.Equal(t, 20, result.DiscountPercentage)
}

func TestValidateReasonMapping(t *testing.T) {
	yesterday := time.Now().Add(-24 * time.Hour)
	maxed := 5
	scoped := "other-product"

	tests := []struct {
		name       string
		coupon     *models.Coupon
		wantReason string
	}{
		{
			name:       "inactive",
			coupon:     &models.Coupon{Code: "A", DiscountPercentage: 10},
			wantReason: pricing.ReasonInactive,
		},
		{
			name:       "usage cap hit",
			coupon:     &models.Coupon{Code: "B", DiscountPercentage: 10, IsActive: true, MaxUses: &maxed, CurrentUses: 5},
			wantReason: pricing.ReasonUsageLimit,
		},
		{
			name:       "expired",
			coupon:     &models.Coupon{Code: "C", DiscountPercentage: 10, IsActive: true, ValidUntil: &yesterday},
			wantReason: pricing.ReasonExpired,
		},
		{
			name:       "scoped to absent product",
			coupon:     &models.Coupon{Code: "D", DiscountPercentage: 10, IsActive: true, ProductID: &scoped},
			wantReason: pricing.ReasonNotInCart,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &CouponService{finder: &fakeCouponFinder{coupons: map[string]*models.Coupon{
				tt.coupon.Code: tt.coupon,
			}}}

			result, err := svc.Validate(context.Background(), tt.coupon.Code, testCart())
			require.NoError(t, err)
			assert.False(t, result.Valid)
			assert.Equal(t, tt.wantReason, result.Reason)
		})
	}
}

func TestValidateDoesNotMutateUsage(t *testing.T) {
	coupon := &models.Coupon{Code: "SAVE20", DiscountPercentage: 20, IsActive: true, CurrentUses: 3}
	svc := &CouponService{finder: &fakeCouponFinder{coupons: map[string]*models.Coupon{
		"SAVE20": coupon,
	}}}

	for i := 0; i < 5; i++ {
		_, err := svc.Validate(context.Background(), "SAVE20", testCart())
		require.NoError(t, err)
	}

	assert.Equal(t, 3, coupon.CurrentUses)
}

func TestUniqueViolationDetection(t *testing.T) {
	wrapped := fmt.Errorf("insert failed: %w", &pgconn.PgError{Code: "23505"})
	assert.True(t, isUniqueViolation(wrapped))

	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
	assert.False(t, isUniqueViolation(nil))
}
