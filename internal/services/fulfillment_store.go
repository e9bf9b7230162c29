// internal/services/fulfillment_store.go
package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/exetool/store-backend/internal/database"
	"github.com/exetool/store-backend/internal/models"
)

type gormFulfillmentStore struct {
	db *gorm.DB
}

func NewFulfillmentStore(db *gorm.DB) FulfillmentStore {
	return &gormFulfillmentStore{db: db}
}

// SaveFulfillment writes the order, its items, and its licenses as one
// transaction so a purchase never leaves a partial triple behind.
func (s *gormFulfillmentStore) SaveFulfillment(ctx context.Context, order *models.Order, items []models.OrderItem, licenses []models.License) error {
	return database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return fmt.Errorf("failed to create order items: %w", err)
			}
		}
		if len(licenses) > 0 {
			if err := tx.Create(&licenses).Error; err != nil {
				return fmt.Errorf("failed to create licenses: %w", err)
			}
		}
		return nil
	})
}

func (s *gormFulfillmentStore) RedeemCoupon(ctx context.Context, code string) error {
	return redeemCoupon(s.db.WithContext(ctx), code)
}

func (s *gormFulfillmentStore) QueueReconciliation(ctx context.Context, task *models.ReconciliationTask) error {
	if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("failed to queue reconciliation task: %w", err)
	}
	return nil
}
