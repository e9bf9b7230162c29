// internal/handlers/review_handler.go
package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/exetool/store-backend/internal/models"
	"github.com/exetool/store-backend/internal/services"
	"github.com/exetool/store-backend/internal/utils"
)

type ReviewHandler struct {
	reviews *services.ReviewService
}

func NewReviewHandler(reviews *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

type submitReviewBody struct {
	ProductID   string `json:"productId"`
	Rating      int    `json:"rating"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	AccessToken string `json:"accessToken"`
	UserID      string `json:"userId"`
}

// Submit handles POST /api/reviews. The access token must belong to the
// claimed user; purchase verification happens in the service.
func (h *ReviewHandler) Submit(c *gin.Context) {
	var body submitReviewBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}

	if body.AccessToken == "" {
		utils.UnauthorizedResponse(c, "Access token is required")
		return
	}
	subject, err := utils.ValidateAccessToken(body.AccessToken)
	if err != nil || subject != body.UserID {
		utils.UnauthorizedResponse(c, "Invalid access token")
		return
	}

	review, err := h.reviews.Submit(c.Request.Context(), &services.SubmitReviewRequest{
		UserID:    body.UserID,
		ProductID: body.ProductID,
		Rating:    body.Rating,
		Title:     body.Title,
		Body:      body.Body,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoPurchase):
			utils.ForbiddenResponse(c, "Reviews require a verified purchase")
		case strings.Contains(err.Error(), "validation failed"):
			utils.BadRequestResponse(c, err.Error(), utils.GetValidationErrors(err))
		default:
			logrus.WithError(err).Error("Failed to submit review")
			utils.InternalErrorResponse(c, "Failed to submit review")
		}
		return
	}

	utils.CreatedResponse(c, review)
}

// ListByProduct handles GET /api/reviews?productId=. Only approved reviews
// are public.
func (h *ReviewHandler) ListByProduct(c *gin.Context) {
	productID := c.Query("productId")
	if productID == "" {
		utils.BadRequestResponse(c, "productId is required", nil)
		return
	}

	reviews, err := h.reviews.ListApproved(c.Request.Context(), productID)
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch reviews")
		utils.InternalErrorResponse(c, "Failed to fetch reviews")
		return
	}

	utils.SuccessResponse(c, reviews)
}

type moderateReviewBody struct {
	Status models.ReviewStatus `json:"status" binding:"required"`
}

// Moderate handles PATCH /api/admin/reviews/:id.
func (h *ReviewHandler) Moderate(c *gin.Context) {
	var body moderateReviewBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}

	if err := h.reviews.Moderate(c.Request.Context(), c.Param("id"), body.Status); err != nil {
		if strings.Contains(err.Error(), "record not found") {
			utils.NotFoundResponse(c, "Review")
			return
		}
		if strings.Contains(err.Error(), "invalid review status") {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		logrus.WithError(err).Error("Failed to moderate review")
		utils.InternalErrorResponse(c, "Failed to moderate review")
		return
	}

	utils.SuccessResponse(c, gin.H{"updated": true})
}
