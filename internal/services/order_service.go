// internal/services/order_service.go
package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/exetool/store-backend/internal/models"
	"github.com/exetool/store-backend/internal/utils"
)

type OrderService struct {
	db *gorm.DB
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

// List returns orders with their items and licenses for the admin console,
// newest first.
func (s *OrderService) List(ctx context.Context, params utils.PaginationParams) ([]models.Order, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Order{})

	if params.Search != "" {
		query = query.Where("user_id = ? OR gateway_order_id = ? OR gateway_payment_id = ?",
			params.Search, params.Search, params.Search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "amount", "status"})
	query = utils.ApplyPagination(query, params)

	var orders []models.Order
	if err := query.Preload("Items").Preload("Licenses").Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	return orders, total, nil
}

// ListForUser returns a shopper's own order history.
func (s *OrderService) ListForUser(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Items").
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user orders: %w", err)
	}
	return orders, nil
}
