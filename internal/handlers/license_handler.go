// internal/handlers/license_handler.go
package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/exetool/store-backend/internal/services"
	"github.com/exetool/store-backend/internal/utils"
)

type LicenseHandler struct {
	licenses *services.LicenseService
	audit    *services.AuditService
}

func NewLicenseHandler(licenses *services.LicenseService, audit *services.AuditService) *LicenseHandler {
	return &LicenseHandler{licenses: licenses, audit: audit}
}

// List handles GET /api/admin/licenses.
func (h *LicenseHandler) List(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	licenses, total, err := h.licenses.List(c.Request.Context(), params)
	if err != nil {
		logrus.WithError(err).Error("Failed to list licenses")
		utils.InternalErrorResponse(c, "Failed to list licenses")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(licenses, total, params))
}

// Issue handles POST /api/admin/licenses (manual grant).
func (h *LicenseHandler) Issue(c *gin.Context) {
	var req services.IssueLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}

	license, err := h.licenses.Issue(c.Request.Context(), &req)
	if err != nil {
		if strings.Contains(err.Error(), "validation failed") {
			utils.BadRequestResponse(c, err.Error(), utils.GetValidationErrors(err))
			return
		}
		logrus.WithError(err).Error("Failed to issue license")
		utils.InternalErrorResponse(c, "Failed to issue license")
		return
	}

	h.audit.Record("license_issued",
		fmt.Sprintf("manual license %s issued to user %s for product %s", license.LicenseKey, req.UserID, req.ProductID),
		c.ClientIP())

	utils.CreatedResponse(c, license)
}

// Revoke handles DELETE /api/admin/licenses?id=. Revocation is a hard delete.
func (h *LicenseHandler) Revoke(c *gin.Context) {
	id, err := uuid.Parse(c.Query("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid license id", nil)
		return
	}

	if err := h.licenses.Revoke(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrLicenseNotFound) {
			utils.NotFoundResponse(c, "License")
			return
		}
		logrus.WithError(err).Error("Failed to revoke license")
		utils.InternalErrorResponse(c, "Failed to revoke license")
		return
	}

	h.audit.Record("license_revoked", fmt.Sprintf("license %s revoked", id), c.ClientIP())

	utils.SuccessResponse(c, gin.H{"revoked": true})
}
