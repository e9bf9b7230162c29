// internal/services/fulfillment_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/exetool/store-backend/internal/gateway"
	"github.com/exetool/store-backend/internal/models"
	"github.com/exetool/store-backend/internal/utils"
)

var ErrInvalidSignature = errors.New("Invalid payment signature")

// FulfillmentStore persists the results of a verified payment. The gorm
// implementation writes the order/items/licenses triple in one transaction;
// tests substitute a fake.
type FulfillmentStore interface {
	SaveFulfillment(ctx context.Context, order *models.Order, items []models.OrderItem, licenses []models.License) error
	RedeemCoupon(ctx context.Context, code string) error
	QueueReconciliation(ctx context.Context, task *models.ReconciliationTask) error
}

type VerifyPaymentRequest struct {
	RazorpayOrderID   string            `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string            `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string            `json:"razorpay_signature" validate:"required"`
	CartItems         []models.CartItem `json:"cartItems"`
	AccessToken       string            `json:"accessToken"`
	UserID            string            `json:"userId" validate:"required"`
	Email             string            `json:"email" validate:"omitempty,email"`
	Amount            int64             `json:"amount" validate:"gte=0"`
	CouponCode        string            `json:"couponCode"`
	IsCustomOrder     bool              `json:"isCustomOrder"`
	Label             string            `json:"label"`
}

type VerifyPaymentResponse struct {
	Success         bool     `json:"success"`
	OrderID         string   `json:"orderId"`
	LicenseKeys     []string `json:"licenseKeys,omitempty"`
	DownloadLinks   []string `json:"downloadLinks"`
	PrimaryDownload string   `json:"primaryDownload,omitempty"`
	DBWarnings      []string `json:"dbWarnings,omitempty"`
}

// FulfillmentService verifies gateway payment confirmations and issues
// licenses. The signature check is the only fatal rejection: once a payment is
// verified, persistence failures surface as advisory warnings plus a queued
// reconciliation task, never as a failed response, because the gateway has
// already captured the customer's money.
type FulfillmentService struct {
	store         FulfillmentStore
	gatewaySecret string
	notifications *NotificationService
	audit         *AuditService
}

func NewFulfillmentService(store FulfillmentStore, gatewaySecret string, notifications *NotificationService, audit *AuditService) *FulfillmentService {
	return &FulfillmentService{
		store:         store,
		gatewaySecret: gatewaySecret,
		notifications: notifications,
		audit:         audit,
	}
}

func (s *FulfillmentService) VerifyPayment(ctx context.Context, req *VerifyPaymentRequest) (*VerifyPaymentResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if !gateway.VerifyPaymentSignature(s.gatewaySecret, req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		return nil, ErrInvalidSignature
	}

	// Ad hoc payment links carry no cart and issue no licenses.
	if req.IsCustomOrder {
		s.recordAudit("custom_payment_verified",
			fmt.Sprintf("custom payment %s verified (%s)", req.RazorpayPaymentID, req.Label))
		return &VerifyPaymentResponse{
			Success:       true,
			OrderID:       "custom-" + req.RazorpayPaymentID,
			DownloadLinks: []string{},
		}, nil
	}

	if len(req.CartItems) == 0 {
		return nil, ErrEmptyCart
	}

	order := &models.Order{
		UserID:           req.UserID,
		Amount:           decimal.NewFromInt(req.Amount).Div(decimal.NewFromInt(100)),
		CouponCode:       models.NormalizeCouponCode(req.CouponCode),
		GatewayOrderID:   req.RazorpayOrderID,
		GatewayPaymentID: req.RazorpayPaymentID,
		Status:           models.OrderStatusCompleted,
	}
	// Pre-assign the id so a reconciliation replay cannot double-insert.
	order.ID = uuid.New()

	items := make([]models.OrderItem, 0, len(req.CartItems))
	licenses := make([]models.License, 0, len(req.CartItems))
	keys := make([]string, 0, len(req.CartItems))
	downloadLinks := make([]string, 0, len(req.CartItems))

	for _, cartItem := range req.CartItems {
		items = append(items, models.OrderItem{
			OrderID:     order.ID,
			ProductID:   cartItem.ProductID,
			ProductSlug: cartItem.Slug,
			Price:       decimal.NewFromFloat(cartItem.Price),
			LicenseTier: cartItem.LicenseTier,
		})

		key, err := utils.GeneratePurchaseLicenseKey()
		if err != nil {
			return nil, fmt.Errorf("failed to generate license key: %w", err)
		}
		keys = append(keys, key)

		orderID := order.ID
		licenses = append(licenses, models.License{
			UserID:      req.UserID,
			ProductID:   cartItem.ProductID,
			OrderID:     &orderID,
			LicenseKey:  key,
			LicenseTier: cartItem.LicenseTier,
			Status:      models.LicenseStatusActive,
		})

		if cartItem.DownloadLink != "" {
			downloadLinks = append(downloadLinks, cartItem.DownloadLink)
		}
	}

	var warnings []string

	if err := s.store.SaveFulfillment(ctx, order, items, licenses); err != nil {
		logrus.WithError(err).WithField("gateway_order_id", req.RazorpayOrderID).
			Warn("Fulfillment persistence failed after verified payment")
		warnings = append(warnings, fmt.Sprintf("failed to record order: %v", err))
		s.queueReconciliation(ctx, order, items, licenses)
	} else if order.CouponCode != "" {
		if err := s.store.RedeemCoupon(ctx, order.CouponCode); err != nil {
			logrus.WithError(err).WithField("code", order.CouponCode).
				Warn("Coupon redemption failed after verified payment")
			warnings = append(warnings, fmt.Sprintf("failed to redeem coupon %s: %v", order.CouponCode, err))
		}
	}

	s.recordAudit("purchase_fulfilled",
		fmt.Sprintf("order %s fulfilled for user %s (%d items)", order.ID, req.UserID, len(items)))

	if s.notifications != nil && req.Email != "" {
		go s.notifications.SendPurchaseReceipt(req.Email, order, keys, downloadLinks)
	}

	resp := &VerifyPaymentResponse{
		Success:       true,
		OrderID:       order.ID.String(),
		LicenseKeys:   keys,
		DownloadLinks: downloadLinks,
		DBWarnings:    warnings,
	}
	if len(downloadLinks) > 0 {
		resp.PrimaryDownload = downloadLinks[0]
	}

	return resp, nil
}

func (s *FulfillmentService) queueReconciliation(ctx context.Context, order *models.Order, items []models.OrderItem, licenses []models.License) {
	task := &models.ReconciliationTask{
		Payload: models.JSONB{
			"order":       order,
			"items":       items,
			"licenses":    licenses,
			"coupon_code": order.CouponCode,
		},
	}

	if err := s.store.QueueReconciliation(ctx, task); err != nil {
		logrus.WithError(err).WithField("gateway_order_id", order.GatewayOrderID).
			Error("Failed to queue reconciliation task; fulfillment records must be repaired manually")
	}
}

func (s *FulfillmentService) recordAudit(actionType, description string) {
	if s.audit != nil {
		s.audit.Record(actionType, description, "")
	}
}
