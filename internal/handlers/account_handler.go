// internal/handlers/account_handler.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/exetool/store-backend/internal/services"
	"github.com/exetool/store-backend/internal/utils"
)

// AccountHandler serves a shopper's own purchase data. The user id always
// comes from the validated access token, never from the request.
type AccountHandler struct {
	orders   *services.OrderService
	licenses *services.LicenseService
}

func NewAccountHandler(orders *services.OrderService, licenses *services.LicenseService) *AccountHandler {
	return &AccountHandler{orders: orders, licenses: licenses}
}

// MyOrders handles GET /api/orders.
func (h *AccountHandler) MyOrders(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	orders, err := h.orders.ListForUser(c.Request.Context(), userID)
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch user orders")
		utils.InternalErrorResponse(c, "Failed to fetch orders")
		return
	}

	utils.SuccessResponse(c, orders)
}

// MyLicenses handles GET /api/licenses.
func (h *AccountHandler) MyLicenses(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	licenses, err := h.licenses.ListForUser(c.Request.Context(), userID)
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch user licenses")
		utils.InternalErrorResponse(c, "Failed to fetch licenses")
		return
	}

	utils.SuccessResponse(c, licenses)
}
