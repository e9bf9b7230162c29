// internal/handlers/admin_handler.go
package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/exetool/store-backend/internal/services"
	"github.com/exetool/store-backend/internal/utils"
)

type AdminHandler struct {
	admin  *services.AdminService
	orders *services.OrderService
	audit  *services.AuditService
}

func NewAdminHandler(admin *services.AdminService, orders *services.OrderService, audit *services.AuditService) *AdminHandler {
	return &AdminHandler{admin: admin, orders: orders, audit: audit}
}

// Login handles POST /api/admin/login. A wrong password and a missing
// configuration both come back as 401 to avoid leaking setup state.
func (h *AdminHandler) Login(c *gin.Context) {
	var req services.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}

	resp, err := h.admin.Login(&req)
	if err != nil {
		if strings.Contains(err.Error(), "validation failed") {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		if !errors.Is(err, services.ErrInvalidCredentials) {
			logrus.WithError(err).Warn("Admin login error")
		}
		h.audit.Record("admin_login_failed", "failed admin console login", c.ClientIP())
		utils.UnauthorizedResponse(c, "Invalid credentials")
		return
	}

	h.audit.Record("admin_login", "admin console login", c.ClientIP())
	utils.SuccessResponse(c, resp)
}

// ListOrders handles GET /api/admin/orders.
func (h *AdminHandler) ListOrders(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	orders, total, err := h.orders.List(c.Request.Context(), params)
	if err != nil {
		logrus.WithError(err).Error("Failed to list orders")
		utils.InternalErrorResponse(c, "Failed to list orders")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(orders, total, params))
}

// ListLogs handles GET /api/admin/logs.
func (h *AdminHandler) ListLogs(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	logs, total, err := h.audit.List(c.Request.Context(), params)
	if err != nil {
		logrus.WithError(err).Error("Failed to list audit logs")
		utils.InternalErrorResponse(c, "Failed to list audit logs")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(logs, total, params))
}
