// internal/services/reconciliation.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/exetool/store-backend/internal/models"
)

const reconcileMaxAttempts = 10

// Reconciler replays fulfillment writes that failed after a payment was
// already captured. The customer got their success response and their keys at
// verification time; this closes the bookkeeping gap between the gateway's
// record of truth and ours.
type Reconciler struct {
	db       *gorm.DB
	store    FulfillmentStore
	interval time.Duration
}

func NewReconciler(db *gorm.DB, store FulfillmentStore, interval time.Duration) *Reconciler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Reconciler{db: db, store: store, interval: interval}
}

// Start runs the claim-and-replay loop until ctx is cancelled.
func (r *Reconciler) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

func (r *Reconciler) runOnce(ctx context.Context) {
	var tasks []models.ReconciliationTask
	err := r.db.WithContext(ctx).
		Where("done = false AND attempts < ?", reconcileMaxAttempts).
		Order("created_at asc").
		Limit(20).
		Find(&tasks).Error
	if err != nil {
		logrus.WithError(err).Error("Failed to load reconciliation tasks")
		return
	}

	for _, task := range tasks {
		if err := r.replay(ctx, &task); err != nil {
			task.Attempts++
			task.LastError = err.Error()
			logrus.WithError(err).WithFields(logrus.Fields{
				"task_id":  task.ID,
				"attempts": task.Attempts,
			}).Warn("Fulfillment replay failed")
		} else {
			task.Done = true
			task.LastError = ""
			logrus.WithField("task_id", task.ID).Info("Fulfillment records reconciled")
		}

		if err := r.db.WithContext(ctx).Save(&task).Error; err != nil {
			logrus.WithError(err).WithField("task_id", task.ID).Error("Failed to update reconciliation task")
		}
	}
}

type fulfillmentPayload struct {
	Order      models.Order       `json:"order"`
	Items      []models.OrderItem `json:"items"`
	Licenses   []models.License   `json:"licenses"`
	CouponCode string             `json:"coupon_code"`
}

func (r *Reconciler) replay(ctx context.Context, task *models.ReconciliationTask) error {
	raw, err := json.Marshal(task.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode task payload: %w", err)
	}

	var payload fulfillmentPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("failed to decode task payload: %w", err)
	}

	// The order id was assigned at verification time; a replay that raced a
	// partially successful write trips the unique gateway_order_id instead of
	// inserting a duplicate, which we treat as already reconciled.
	var existing models.Order
	err = r.db.WithContext(ctx).Where("gateway_order_id = ?", payload.Order.GatewayOrderID).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check existing order: %w", err)
	}

	if err := r.store.SaveFulfillment(ctx, &payload.Order, payload.Items, payload.Licenses); err != nil {
		return err
	}

	if payload.CouponCode != "" {
		if err := r.store.RedeemCoupon(ctx, payload.CouponCode); err != nil && !errors.Is(err, ErrCouponLimitReached) {
			logrus.WithError(err).WithField("code", payload.CouponCode).
				Warn("Coupon redemption failed during reconciliation")
		}
	}

	return nil
}
