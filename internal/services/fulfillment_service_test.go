// internal/services/fulfillment_service_test.go
package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exetool/store-backend/internal/gateway"
	"github.com/exetool/store-backend/internal/models"
)

const testGatewaySecret = "test_secret_key"

type fakeFulfillmentStore struct {
	saveErr   error
	redeemErr error

	savedOrder    *models.Order
	savedItems    []models.OrderItem
	savedLicenses []models.License
	redeemedCodes []string
	queuedTasks   []*models.ReconciliationTask
}

func (f *fakeFulfillmentStore) SaveFulfillment(ctx context.Context, order *models.Order, items []models.OrderItem, licenses []models.License) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.savedOrder = order
	f.savedItems = items
	f.savedLicenses = licenses
	return nil
}

func (f *fakeFulfillmentStore) RedeemCoupon(ctx context.Context, code string) error {
	if f.redeemErr != nil {
		return f.redeemErr
	}
	f.redeemedCodes = append(f.redeemedCodes, code)
	return nil
}

func (f *fakeFulfillmentStore) QueueReconciliation(ctx context.Context, task *models.ReconciliationTask) error {
	f.queuedTasks = append(f.queuedTasks, task)
	return nil
}

func signedVerifyRequest(items []models.CartItem) *VerifyPaymentRequest {
	orderID := "order_abc"
	paymentID := "pay_def"
	return &VerifyPaymentRequest{
		RazorpayOrderID:   orderID,
		RazorpayPaymentID: paymentID,
		RazorpaySignature: gateway.SignPayment(testGatewaySecret, orderID, paymentID),
		CartItems:         items,
		UserID:            "user-1",
		Amount:            80000,
	}
}

func TestVerifyPaymentRejectsBadSignature(t *testing.T) {
	store := &fakeFulfillmentStore{}
	svc := NewFulfillmentService(store, testGatewaySecret, nil, nil)

	req := signedVerifyRequest([]models.CartItem{{ProductID: "prod-1", Price: 500}})
	req.RazorpaySignature = "deadbeef"

	_, err := svc.VerifyPayment(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidSignature)
	assert.Nil(t, store.savedOrder)
}

func TestVerifyPaymentTwoItemCart(t *testing.T) {
	store := &fakeFulfillmentStore{}
	svc := NewFulfillmentService(store, testGatewaySecret, nil, nil)

	req := signedVerifyRequest([]models.CartItem{
		{ProductID: "prod-1", Slug: "tool-one", Price: 500, LicenseTier: "pro", DownloadLink: "https://dl.example.com/one"},
		{ProductID: "prod-2", Slug: "tool-two", Price: 300, LicenseTier: "basic", DownloadLink: "https://dl.example.com/two"},
	})

	resp, err := svc.VerifyPayment(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Len(t, resp.LicenseKeys, 2)
	assert.Empty(t, resp.DBWarnings)
	assert.Equal(t, "https://dl.example.com/one", resp.PrimaryDownload)

	require.NotNil(t, store.savedOrder)
	assert.Equal(t, models.OrderStatusCompleted, store.savedOrder.Status)
	assert.Len(t, store.savedItems, 2)
	assert.Len(t, store.savedLicenses, 2)

	for _, lic := range store.savedLicenses {
		assert.True(t, strings.HasPrefix(lic.LicenseKey, "KEY-"))
		assert.Equal(t, models.LicenseStatusActive, lic.Status)
		assert.Equal(t, store.savedOrder.ID, *lic.OrderID)
	}
}

func TestVerifyPaymentPersistenceFailureStillSucceeds(t *testing.T) {
	store := &fakeFulfillmentStore{saveErr: errors.New("connection refused")}
	svc := NewFulfillmentService(store, testGatewaySecret, nil, nil)

	req := signedVerifyRequest([]models.CartItem{{ProductID: "prod-1", Price: 500}})

	resp, err := svc.VerifyPayment(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Len(t, resp.LicenseKeys, 1)
	require.NotEmpty(t, resp.DBWarnings)
	assert.Contains(t, resp.DBWarnings[0], "connection refused")
	assert.Len(t, store.queuedTasks, 1)
	assert.Empty(t, store.redeemedCodes)
}

func TestVerifyPaymentRedeemsCouponOnSuccess(t *testing.T) {
	store := &fakeFulfillmentStore{}
	svc := NewFulfillmentService(store, testGatewaySecret, nil, nil)

	req := signedVerifyRequest([]models.CartItem{{ProductID: "prod-1", Price: 400}})
	req.CouponCode = "save20"

	resp, err := svc.VerifyPayment(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"SAVE20"}, store.redeemedCodes)
}

func TestVerifyPaymentCouponRedemptionFailureIsAdvisory(t *testing.T) {
	store := &fakeFulfillmentStore{redeemErr: ErrCouponLimitReached}
	svc := NewFulfillmentService(store, testGatewaySecret, nil, nil)

	req := signedVerifyRequest([]models.CartItem{{ProductID: "prod-1", Price: 400}})
	req.CouponCode = "SAVE20"

	resp, err := svc.VerifyPayment(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	require.NotEmpty(t, resp.DBWarnings)
	assert.Contains(t, resp.DBWarnings[0], "SAVE20")
	assert.Empty(t, store.queuedTasks)
}

func TestVerifyPaymentCustomOrder(t *testing.T) {
	store := &fakeFulfillmentStore{}
	svc := NewFulfillmentService(store, testGatewaySecret, nil, nil)

	req := signedVerifyRequest(nil)
	req.IsCustomOrder = true
	req.Label = "invoice 42"

	resp, err := svc.VerifyPayment(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "custom-pay_def", resp.OrderID)
	assert.Empty(t, resp.LicenseKeys)
	assert.Nil(t, store.savedOrder)
}

func TestVerifyPaymentEmptyCartIsError(t *testing.T) {
	store := &fakeFulfillmentStore{}
	svc := NewFulfillmentService(store, testGatewaySecret, nil, nil)

	_, err := svc.VerifyPayment(context.Background(), signedVerifyRequest(nil))
	assert.ErrorIs(t, err, ErrEmptyCart)
}
