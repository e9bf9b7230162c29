// internal/services/review_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/exetool/store-backend/internal/models"
	"github.com/exetool/store-backend/internal/utils"
)

var ErrNoPurchase = errors.New("no verified purchase for this product")

// PurchaseChecker answers whether a user owns any license for a product.
type PurchaseChecker interface {
	HasPurchase(ctx context.Context, userID, productID string) (bool, error)
}

type reviewStore interface {
	Create(ctx context.Context, review *models.Review) error
}

type gormReviewStore struct {
	db *gorm.DB
}

func (s *gormReviewStore) Create(ctx context.Context, review *models.Review) error {
	return s.db.WithContext(ctx).Create(review).Error
}

type SubmitReviewRequest struct {
	UserID    string `json:"userId" validate:"required"`
	ProductID string `json:"productId" validate:"required"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Title     string `json:"title" validate:"max=255"`
	Body      string `json:"body" validate:"max=5000"`
}

type ReviewService struct {
	db          *gorm.DB
	store       reviewStore
	purchases   PurchaseChecker
	autoApprove bool
}

func NewReviewService(db *gorm.DB, purchases PurchaseChecker, autoApprove bool) *ReviewService {
	return &ReviewService{
		db:          db,
		store:       &gormReviewStore{db: db},
		purchases:   purchases,
		autoApprove: autoApprove,
	}
}

// Submit stores a review after confirming the author actually owns a license
// for the product. All stored reviews are purchase-verified.
func (s *ReviewService) Submit(ctx context.Context, req *SubmitReviewRequest) (*models.Review, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	owns, err := s.purchases.HasPurchase(ctx, req.UserID, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to check purchase: %w", err)
	}
	if !owns {
		return nil, ErrNoPurchase
	}

	status := models.ReviewStatusPending
	if s.autoApprove {
		status = models.ReviewStatusApproved
	}

	review := &models.Review{
		UserID:             req.UserID,
		ProductID:          req.ProductID,
		Rating:             req.Rating,
		Title:              req.Title,
		Body:               req.Body,
		Status:             status,
		IsVerifiedPurchase: true,
	}

	if err := s.store.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	return review, nil
}

// ListApproved returns approved reviews for a product, newest first.
func (s *ReviewService) ListApproved(ctx context.Context, productID string) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.WithContext(ctx).
		Where("product_id = ? AND status = ?", productID, models.ReviewStatusApproved).
		Order("created_at desc").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reviews: %w", err)
	}
	return reviews, nil
}

// Moderate updates a pending review's status from the admin console.
func (s *ReviewService) Moderate(ctx context.Context, id string, status models.ReviewStatus) error {
	if status != models.ReviewStatusApproved && status != models.ReviewStatusRejected {
		return fmt.Errorf("invalid review status: %s", status)
	}
	result := s.db.WithContext(ctx).Model(&models.Review{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update review: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
