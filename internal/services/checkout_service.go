// internal/services/checkout_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/exetool/store-backend/internal/config"
	"github.com/exetool/store-backend/internal/gateway"
	"github.com/exetool/store-backend/internal/models"
	"github.com/exetool/store-backend/internal/pricing"
	"github.com/exetool/store-backend/internal/utils"
)

var ErrInvalidAmount = errors.New("amount must be greater than zero")

type CheckoutRequest struct {
	Items      []models.CartItem `json:"items" validate:"required,min=1,dive"`
	CouponCode string            `json:"couponCode" validate:"omitempty,coupon_code"`
}

type CustomCheckoutRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Label  string  `json:"label" validate:"required,max=200"`
}

// CheckoutService creates gateway order intents. Pricing is always recomputed
// server-side; a client-supplied discount is never trusted.
type CheckoutService struct {
	coupons  *CouponService
	gateway  gateway.OrderCreator
	currency string
}

func NewCheckoutService(coupons *CouponService, gw gateway.OrderCreator, cfg config.GatewayConfig) *CheckoutService {
	return &CheckoutService{
		coupons:  coupons,
		gateway:  gw,
		currency: cfg.Currency,
	}
}

// CreateOrderIntent sums the cart, applies a valid coupon if one was supplied,
// and creates a gateway order for the final amount in minor units. An invalid
// coupon does not fail checkout; the order is simply created at full price.
func (s *CheckoutService) CreateOrderIntent(ctx context.Context, req *CheckoutRequest) (*gateway.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	subtotal := pricing.Subtotal(req.Items)
	total := subtotal
	notes := map[string]interface{}{}

	if req.CouponCode != "" {
		result, err := s.coupons.Validate(ctx, req.CouponCode, req.Items)
		switch {
		case err == nil && result.Valid:
			total = pricing.ApplyDiscount(subtotal, result.DiscountPercentage)
			notes["coupon_code"] = result.Code
			notes["discount_percentage"] = result.DiscountPercentage
		case errors.Is(err, ErrCouponNotFound):
			logrus.WithField("code", req.CouponCode).Info("Unknown coupon ignored at checkout")
		case err != nil:
			return nil, err
		default:
			logrus.WithFields(logrus.Fields{
				"code":   result.Code,
				"reason": result.Reason,
			}).Info("Invalid coupon ignored at checkout")
		}
	}

	amountMinor := pricing.ToMinorUnits(total)
	receipt := fmt.Sprintf("rcpt_%d", time.Now().UnixNano())

	order, err := s.gateway.CreateOrder(ctx, amountMinor, s.currency, receipt, notes)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway order: %w", err)
	}

	return order, nil
}

// CreateCustomOrderIntent handles ad hoc payment links where the amount comes
// from an admin-generated URL rather than a cart. No coupon logic applies.
func (s *CheckoutService) CreateCustomOrderIntent(ctx context.Context, req *CustomCheckoutRequest) (*gateway.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	amount := decimal.NewFromFloat(req.Amount)
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	receipt := fmt.Sprintf("rcpt_custom_%d", time.Now().UnixNano())
	notes := map[string]interface{}{
		"custom": true,
		"label":  req.Label,
	}

	order, err := s.gateway.CreateOrder(ctx, pricing.ToMinorUnits(amount), s.currency, receipt, notes)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway order: %w", err)
	}

	return order, nil
}
