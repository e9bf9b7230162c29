// internal/services/checkout_service_test.go
package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exetool/store-backend/internal/config"
	"github.com/exetool/store-backend/internal/gateway"
	"github.com/exetool/store-backend/internal/models"
)

type fakeOrderCreator struct {
	lastAmount   int64
	lastCurrency string
	lastNotes    map[string]interface{}
	err          error
}

func (f *fakeOrderCreator) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]interface{}) (*gateway.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastAmount = amountMinor
	f.lastCurrency = currency
	f.lastNotes = notes
	return &gateway.Order{ID: "order_test123", Amount: amountMinor, Currency: currency}, nil
}

type fakeCouponFinder struct {
	coupons map[string]*models.Coupon
}

func (f *fakeCouponFinder) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	return f.coupons[code], nil
}

func newTestCheckoutService(gw *fakeOrderCreator, coupons map[string]*models.Coupon) *CheckoutService {
	couponSvc := &CouponService{finder: &fakeCouponFinder{coupons: coupons}}
	return NewCheckoutService(couponSvc, gw, config.GatewayConfig{Currency: "INR"})
}

func TestCreateOrderIntentAppliesValidCoupon(t *testing.T) {
	gw := &fakeOrderCreator{}
	svc := newTestCheckoutService(gw, map[string]*models.Coupon{
		"SAVE20": {Code: "SAVE20", DiscountPercentage: 20, IsActive: true},
	})

	order, err := svc.CreateOrderIntent(context.Background(), &CheckoutRequest{
		Items:      []models.CartItem{{ProductID: "prod-1", Price: 500}},
		CouponCode: "save20",
	})

	require.NoError(t, err)
	assert.Equal(t, "order_test123", order.ID)
	assert.Equal(t, int64(40000), gw.lastAmount)
	assert.Equal(t, "INR", gw.lastCurrency)
	assert.Equal(t, "SAVE20", gw.lastNotes["coupon_code"])
}

func TestCreateOrderIntentIgnoresExpiredCoupon(t *testing.T) {
	yesterday := time.Now().Add(-24 * time.Hour)
	gw := &fakeOrderCreator{}
	svc := newTestCheckoutService(gw, map[string]*models.Coupon{
		"EXPIRED10": {Code: "EXPIRED10", DiscountPercentage: 10, IsActive: true, ValidUntil: &yesterday},
	})

	order, err := svc.CreateOrderIntent(context.Background(), &CheckoutRequest{
		Items:      []models.CartItem{{ProductID: "prod-1", Price: 500}},
		CouponCode: "EXPIRED10",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(50000), gw.lastAmount)
	assert.NotContains(t, gw.lastNotes, "coupon_code")
	assert.NotNil(t, order)
}

func TestCreateOrderIntentIgnoresUnknownCoupon(t *testing.T) {
	gw := &fakeOrderCreator{}
	svc := newTestCheckoutService(gw, nil)

	_, err := svc.CreateOrderIntent(context.Background(), &CheckoutRequest{
		Items:      []models.CartItem{{ProductID: "prod-1", Price: 250.50}},
		CouponCode: "NOPE",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(25050), gw.lastAmount)
}

func TestCreateOrderIntentEmptyCart(t *testing.T) {
	svc := newTestCheckoutService(&fakeOrderCreator{}, nil)

	_, err := svc.CreateOrderIntent(context.Background(), &CheckoutRequest{Items: []models.CartItem{}})
	assert.Error(t, err)
}

func TestCreateOrderIntentGatewayFailure(t *testing.T) {
	gw := &fakeOrderCreator{err: errors.New("gateway unreachable")}
	svc := newTestCheckoutService(gw, nil)

	_, err := svc.CreateOrderIntent(context.Background(), &CheckoutRequest{
		Items: []models.CartItem{{ProductID: "prod-1", Price: 100}},
	})
	assert.ErrorContains(t, err, "gateway")
}

func TestCreateCustomOrderIntent(t *testing.T) {
	gw := &fakeOrderCreator{}
	svc := newTestCheckoutService(gw, nil)

	order, err := svc.CreateCustomOrderIntent(context.Background(), &CustomCheckoutRequest{
		Amount: 1234.50,
		Label:  "consulting invoice",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(123450), gw.lastAmount)
	assert.Equal(t, true, gw.lastNotes["custom"])
	assert.Equal(t, "consulting invoice", gw.lastNotes["label"])
	assert.NotNil(t, order)
}

func TestCreateCustomOrderIntentRejectsZeroAmount(t *testing.T) {
	svc := newTestCheckoutService(&fakeOrderCreator{}, nil)

	_, err := svc.CreateCustomOrderIntent(context.Background(), &CustomCheckoutRequest{
		Amount: 0,
		Label:  "zero",
	})
	assert.Error(t, err)
}
