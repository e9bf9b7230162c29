// internal/handlers/checkout_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/exetool/store-backend/internal/services"
	"github.com/exetool/store-backend/internal/utils"
)

type CheckoutHandler struct {
	checkout    *services.CheckoutService
	fulfillment *services.FulfillmentService
}

func NewCheckoutHandler(checkout *services.CheckoutService, fulfillment *services.FulfillmentService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, fulfillment: fulfillment}
}

// CreateOrderIntent handles POST /api/checkout. The response carries the
// gateway order id the frontend hands to the payment widget.
func (h *CheckoutHandler) CreateOrderIntent(c *gin.Context) {
	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}

	order, err := h.checkout.CreateOrderIntent(c.Request.Context(), &req)
	if err != nil {
		if strings.Contains(err.Error(), "validation failed") {
			utils.BadRequestResponse(c, err.Error(), utils.GetValidationErrors(err))
			return
		}
		logrus.WithError(err).Error("Failed to create order intent")
		utils.InternalErrorResponse(c, "Failed to create payment order")
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// CreateCustomOrderIntent handles POST /api/checkout/custom for ad hoc
// payment links with an arbitrary amount.
func (h *CheckoutHandler) CreateCustomOrderIntent(c *gin.Context) {
	var req services.CustomCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}

	order, err := h.checkout.CreateCustomOrderIntent(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidAmount) || strings.Contains(err.Error(), "validation failed") {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		logrus.WithError(err).Error("Failed to create custom order intent")
		utils.InternalErrorResponse(c, "Failed to create payment order")
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// VerifyPayment handles POST /api/checkout/verify. The caller must present a
// valid access token whose subject matches the claimed user id; the gateway
// signature decides everything after that.
func (h *CheckoutHandler) VerifyPayment(c *gin.Context) {
	var req services.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}

	if req.AccessToken == "" {
		utils.UnauthorizedResponse(c, "Access token is required")
		return
	}
	subject, err := utils.ValidateAccessToken(req.AccessToken)
	if err != nil || subject != req.UserID {
		utils.UnauthorizedResponse(c, "Invalid access token")
		return
	}

	resp, err := h.fulfillment.VerifyPayment(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidSignature):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		case errors.Is(err, services.ErrEmptyCart):
			utils.BadRequestResponse(c, err.Error(), nil)
		case strings.Contains(err.Error(), "validation failed"):
			utils.BadRequestResponse(c, err.Error(), utils.GetValidationErrors(err))
		default:
			logrus.WithError(err).Error("Payment verification failed")
			utils.InternalErrorResponse(c, "Payment verification failed")
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}
