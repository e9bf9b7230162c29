// internal/handlers/coupon_handler.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/exetool/store-backend/internal/models"
	"github.com/exetool/store-backend/internal/services"
	"github.com/exetool/store-backend/internal/utils"
)

type CouponHandler struct {
	coupons *services.CouponService
	audit   *services.AuditService
}

func NewCouponHandler(coupons *services.CouponService, audit *services.AuditService) *CouponHandler {
	return &CouponHandler{coupons: coupons, audit: audit}
}

type validateCouponRequest struct {
	Code  string            `json:"code" binding:"required"`
	Items []models.CartItem `json:"cartItems" binding:"required"`
}

// Validate handles POST /api/coupons/validate. A rejected coupon is not a
// server error; the rejection reason travels as the error string in a 400
// body so the frontend can show it verbatim.
func (h *CouponHandler) Validate(c *gin.Context) {
	var req validateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}

	result, err := h.coupons.Validate(c.Request.Context(), req.Code, req.Items)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCouponNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Coupon not found"})
		case errors.Is(err, services.ErrEmptyCart):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		default:
			logrus.WithError(err).Error("Coupon validation failed")
			utils.InternalErrorResponse(c, "Coupon validation failed")
		}
		return
	}

	if !result.Valid {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": result.Reason})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"discountPercentage": result.DiscountPercentage,
		"code":               result.Code,
	})
}

// Admin CRUD endpoints.

func (h *CouponHandler) Create(c *gin.Context) {
	var req services.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}

	coupon, err := h.coupons.Create(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCouponCodeTaken):
			utils.ConflictResponse(c, err.Error())
		case strings.Contains(err.Error(), "validation failed"):
			utils.BadRequestResponse(c, err.Error(), utils.GetValidationErrors(err))
		default:
			logrus.WithError(err).Error("Failed to create coupon")
			utils.InternalErrorResponse(c, "Failed to create coupon")
		}
		return
	}

	h.audit.Record("coupon_created",
		fmt.Sprintf("coupon %s created (%d%%)", coupon.Code, coupon.DiscountPercentage),
		c.ClientIP())

	utils.CreatedResponse(c, coupon)
}

func (h *CouponHandler) List(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	coupons, total, err := h.coupons.List(c.Request.Context(), params)
	if err != nil {
		logrus.WithError(err).Error("Failed to list coupons")
		utils.InternalErrorResponse(c, "Failed to list coupons")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(coupons, total, params))
}

func (h *CouponHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid coupon id", nil)
		return
	}

	var req services.UpdateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}

	coupon, err := h.coupons.Update(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, services.ErrCouponNotFound) {
			utils.NotFoundResponse(c, "Coupon")
			return
		}
		logrus.WithError(err).Error("Failed to update coupon")
		utils.InternalErrorResponse(c, "Failed to update coupon")
		return
	}

	h.audit.Record("coupon_updated", fmt.Sprintf("coupon %s updated", coupon.Code), c.ClientIP())

	utils.SuccessResponse(c, coupon)
}

func (h *CouponHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid coupon id", nil)
		return
	}

	if err := h.coupons.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrCouponNotFound) {
			utils.NotFoundResponse(c, "Coupon")
			return
		}
		logrus.WithError(err).Error("Failed to delete coupon")
		utils.InternalErrorResponse(c, "Failed to delete coupon")
		return
	}

	h.audit.Record("coupon_deleted", fmt.Sprintf("coupon %s deleted", id), c.ClientIP())

	utils.SuccessResponse(c, gin.H{"deleted": true})
}
