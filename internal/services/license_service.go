// internal/services/license_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/exetool/store-backend/internal/models"
	"github.com/exetool/store-backend/internal/utils"
)

var ErrLicenseNotFound = errors.New("license not found")

type IssueLicenseRequest struct {
	UserID    string `json:"userId" validate:"required"`
	ProductID string `json:"productId" validate:"required"`
	Tier      string `json:"tier" validate:"required"`
}

type LicenseService struct {
	db *gorm.DB
}

func NewLicenseService(db *gorm.DB) *LicenseService {
	return &LicenseService{db: db}
}

// Issue creates a manually granted license with the admin key format, distinct
// from the automatic purchase-flow format.
func (s *LicenseService) Issue(ctx context.Context, req *IssueLicenseRequest) (*models.License, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	key, err := utils.GenerateAdminLicenseKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate license key: %w", err)
	}

	license := &models.License{
		UserID:      req.UserID,
		ProductID:   req.ProductID,
		LicenseKey:  key,
		LicenseTier: req.Tier,
		Status:      models.LicenseStatusActive,
	}

	if err := s.db.WithContext(ctx).Create(license).Error; err != nil {
		return nil, fmt.Errorf("failed to create license: %w", err)
	}

	return license, nil
}

func (s *LicenseService) List(ctx context.Context, params utils.PaginationParams) ([]models.License, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.License{})

	if params.Search != "" {
		query = query.Where("user_id = ? OR product_id = ? OR license_key ILIKE ?",
			params.Search, params.Search, "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count licenses: %w", err)
	}

	allowedSortFields := []string{"created_at", "user_id", "product_id"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var licenses []models.License
	if err := query.Find(&licenses).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch licenses: %w", err)
	}

	return licenses, total, nil
}

func (s *LicenseService) ListForUser(ctx context.Context, userID string) ([]models.License, error) {
	var licenses []models.License
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&licenses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user licenses: %w", err)
	}
	return licenses, nil
}

// Revoke hard-deletes a license. Revocation is permanent; there is no
// suspended state to restore from.
func (s *LicenseService) Revoke(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Unscoped().Delete(&models.License{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to revoke license: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrLicenseNotFound
	}
	return nil
}

// HasPurchase reports whether any license row exists for the user/product
// pair. Review eligibility is decided by this check.
func (s *LicenseService) HasPurchase(ctx context.Context, userID, productID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.License{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check purchase: %w", err)
	}
	return count > 0, nil
}
