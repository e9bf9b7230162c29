// internal/handlers/checkout_handler_test.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exetool/store-backend/internal/config"
	"github.com/exetool/store-backend/internal/gateway"
	"github.com/exetool/store-backend/internal/models"
	"github.com/exetool/store-backend/internal/services"
	"github.com/exetool/store-backend/internal/utils"
)

const testGatewaySecret = "gw-secret"

type stubOrderCreator struct {
	err error
}

func (s *stubOrderCreator) CreateOrder(_ context.Context, amountMinor int64, currency, receipt string, notes map[string]interface{}) (*gateway.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &gateway.Order{ID: "order_test1", Amount: amountMinor, Currency: currency}, nil
}

type stubFulfillmentStore struct{}

func (s *stubFulfillmentStore) SaveFulfillment(context.Context, *models.Order, []models.OrderItem, []models.License) error {
	return nil
}

func (s *stubFulfillmentStore) RedeemCoupon(context.Context, string) error { return nil }

func (s *stubFulfillmentStore) QueueReconciliation(context.Context, *models.ReconciliationTask) error {
	return nil
}

func newCheckoutRouter(gw gateway.OrderCreator) *gin.Engine {
	coupons := services.NewCouponServiceWithFinder(&stubCouponFinder{})
	checkout := services.NewCheckoutService(coupons, gw, config.GatewayConfig{Currency: "INR"})
	fulfillment := services.NewFulfillmentService(&stubFulfillmentStore{}, testGatewaySecret, nil, nil)
	h := NewCheckoutHandler(checkout, fulfillment)

	r := gin.New()
	r.POST("/api/checkout", h.CreateOrderIntent)
	r.POST("/api/checkout/custom", h.CreateCustomOrderIntent)
	r.POST("/api/checkout/verify", h.VerifyPayment)
	return r
}

func testAccessToken(t *testing.T, subject string) string {
	t.Helper()

	utils.SetJWTSecrets("session-secret", "auth-secret")
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("auth-secret"))
	require.NoError(t, err)
	return token
}

type orderEnvelope struct {
	Order struct {
		ID       string `json:"id"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	} `json:"order"`
}

func TestCheckoutEndpointOrderShape(t *testing.T) {
	r := newCheckoutRouter(&stubOrderCreator{})

	w := postJSON(t, r, "/api/checkout", gin.H{
		"items": []gin.H{{"productId": "prod-1", "price": 500}},
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp orderEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "order_test1", resp.Order.ID)
	assert.Equal(t, int64(50000), resp.Order.Amount)
	assert.Equal(t, "INR", resp.Order.Currency)
}

func TestCustomCheckoutEndpointOrderShape(t *testing.T) {
	r := newCheckoutRouter(&stubOrderCreator{})

	w := postJSON(t, r, "/api/checkout/custom", gin.H{
		"amount": 1234.50,
		"label":  "Setup fee",
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp orderEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "order_test1", resp.Order.ID)
	assert.Equal(t, int64(123450), resp.Order.Amount)
}

func TestVerifyEndpointBadSignature(t *testing.T) {
	r := newCheckoutRouter(&stubOrderCreator{})

	w := postJSON(t, r, "/api/checkout/verify", gin.H{
		"razorpay_order_id":   "order_abc",
		"razorpay_payment_id": "pay_def",
		"razorpay_signature":  "deadbeef",
		"cartItems":           []gin.H{{"productId": "prod-1", "price": 500}},
		"accessToken":         testAccessToken(t, "user-1"),
		"userId":              "user-1",
		"amount":              50000,
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Invalid payment signature", body["error"])
}

func TestVerifyEndpointTokenSubjectMismatch(t *testing.T) {
	r := newCheckoutRouter(&stubOrderCreator{})

	w := postJSON(t, r, "/api/checkout/verify", gin.H{
		"razorpay_order_id":   "order_abc",
		"razorpay_payment_id": "pay_def",
		"razorpay_signature":  gateway.SignPayment(testGatewaySecret, "order_abc", "pay_def"),
		"cartItems":           []gin.H{{"productId": "prod-1", "price": 500}},
		"accessToken":         testAccessToken(t, "user-2"),
		"userId":              "user-1",
		"amount":              50000,
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVerifyEndpointSuccess(t *testing.T) {
	r := newCheckoutRouter(&stubOrderCreator{})

	w := postJSON(t, r, "/api/checkout/verify", gin.H{
		"razorpay_order_id":   "order_abc",
		"razorpay_payment_id": "pay_def",
		"razorpay_signature":  gateway.SignPayment(testGatewaySecret, "order_abc", "pay_def"),
		"cartItems": []gin.H{{
			"productId":    "prod-1",
			"price":        500,
			"downloadLink": "https://dl.example.com/prod-1",
		}},
		"accessToken": testAccessToken(t, "user-1"),
		"userId":      "user-1",
		"amount":      50000,
	})

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["licenseKeys"], 1)
	assert.Equal(t, "https://dl.example.com/prod-1", body["primaryDownload"])
}
