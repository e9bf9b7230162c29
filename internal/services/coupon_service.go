// internal/services/coupon_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/exetool/store-backend/internal/models"
	"github.com/exetool/store-backend/internal/pricing"
	"github.com/exetool/store-backend/internal/utils"
)

var (
	ErrCouponNotFound     = errors.New("coupon not found")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrCouponCodeTaken    = errors.New("coupon code already exists")
	ErrCouponLimitReached = errors.New("coupon usage limit reached")
)

// CouponFinder abstracts the coupon lookup so validation can be exercised
// against a fake store.
type CouponFinder interface {
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
}

type gormCouponFinder struct {
	db *gorm.DB
}

func (f *gormCouponFinder) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := f.db.WithContext(ctx).Where("code = ?", code).First(&coupon).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up coupon: %w", err)
	}
	return &coupon, nil
}

type CouponService struct {
	db     *gorm.DB
	finder CouponFinder
}

func NewCouponService(db *gorm.DB) *CouponService {
	return &CouponService{
		db:     db,
		finder: &gormCouponFinder{db: db},
	}
}

// NewCouponServiceWithFinder wires an alternate coupon lookup. Production
// code uses NewCouponService; this exists for callers that run without a
// database behind them.
func NewCouponServiceWithFinder(finder CouponFinder) *CouponService {
	return &CouponService{finder: finder}
}

// Validate evaluates a code against a cart without mutating anything. Usage is
// consumed separately at redemption time, never here.
func (s *CouponService) Validate(ctx context.Context, code string, items []models.CartItem) (pricing.DiscountResult, error) {
	if len(items) == 0 {
		return pricing.DiscountResult{}, ErrEmptyCart
	}

	normalized := models.NormalizeCouponCode(code)
	coupon, err := s.finder.FindByCode(ctx, normalized)
	if err != nil {
		return pricing.DiscountResult{}, err
	}
	if coupon == nil {
		return pricing.DiscountResult{}, ErrCouponNotFound
	}

	return pricing.EvaluateCoupon(coupon, items, time.Now()), nil
}

// Redeem consumes one use with a single atomic conditional update; zero rows
// affected means a concurrent redemption hit the cap first.
func (s *CouponService) Redeem(ctx context.Context, code string) error {
	return redeemCoupon(s.db.WithContext(ctx), models.NormalizeCouponCode(code))
}

func redeemCoupon(db *gorm.DB, code string) error {
	result := db.Exec(
		`UPDATE coupons
		 SET current_uses = current_uses + 1, updated_at = NOW()
		 WHERE code = ? AND deleted_at IS NULL
		   AND is_active = true
		   AND (max_uses IS NULL OR current_uses < max_uses)`,
		code,
	)
	if result.Error != nil {
		return fmt.Errorf("failed to redeem coupon %s: %w", code, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCouponLimitReached
	}
	return nil
}

// Admin CRUD

type CreateCouponRequest struct {
	Code               string     `json:"code" validate:"required,coupon_code"`
	DiscountPercentage int        `json:"discountPercentage" validate:"required,min=1,max=100"`
	MaxUses            *int       `json:"maxUses" validate:"omitempty,min=1"`
	ValidUntil         *time.Time `json:"validUntil"`
	IsActive           *bool      `json:"isActive"`
	ProductID          *string    `json:"productId"`
}

type UpdateCouponRequest struct {
	DiscountPercentage *int       `json:"discountPercentage" validate:"omitempty,min=1,max=100"`
	MaxUses            *int       `json:"maxUses" validate:"omitempty,min=1"`
	ValidUntil         *time.Time `json:"validUntil"`
	IsActive           *bool      `json:"isActive"`
	ProductID          *string    `json:"productId"`
}

func (s *CouponService) Create(ctx context.Context, req *CreateCouponRequest) (*models.Coupon, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	coupon := &models.Coupon{
		Code:               models.NormalizeCouponCode(req.Code),
		DiscountPercentage: req.DiscountPercentage,
		MaxUses:            req.MaxUses,
		ValidUntil:         req.ValidUntil,
		IsActive:           true,
		ProductID:          req.ProductID,
	}
	if req.IsActive != nil {
		coupon.IsActive = *req.IsActive
	}

	// The unique index on code is the source of truth; a pre-insert existence
	// check would race with concurrent creates.
	if err := s.db.WithContext(ctx).Create(coupon).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrCouponCodeTaken
		}
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}

	return coupon, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *CouponService) List(ctx context.Context, params utils.PaginationParams) ([]models.Coupon, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Coupon{})

	if params.Search != "" {
		query = query.Where("code ILIKE ?", "%"+models.NormalizeCouponCode(params.Search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count coupons: %w", err)
	}

	allowedSortFields := []string{"created_at", "code", "current_uses", "valid_until"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var coupons []models.Coupon
	if err := query.Find(&coupons).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch coupons: %w", err)
	}

	return coupons, total, nil
}

func (s *CouponService) Update(ctx context.Context, id uuid.UUID, req *UpdateCouponRequest) (*models.Coupon, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var coupon models.Coupon
	if err := s.db.WithContext(ctx).First(&coupon, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if req.DiscountPercentage != nil {
		coupon.DiscountPercentage = *req.DiscountPercentage
	}
	if req.MaxUses != nil {
		coupon.MaxUses = req.MaxUses
	}
	if req.ValidUntil != nil {
		coupon.ValidUntil = req.ValidUntil
	}
	if req.IsActive != nil {
		coupon.IsActive = *req.IsActive
	}
	if req.ProductID != nil {
		coupon.ProductID = req.ProductID
	}

	if err := s.db.WithContext(ctx).Save(&coupon).Error; err != nil {
		return nil, fmt.Errorf("failed to update coupon: %w", err)
	}

	return &coupon, nil
}

func (s *CouponService) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&models.Coupon{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete coupon: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCouponNotFound
	}
	return nil
}
