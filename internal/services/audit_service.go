// internal/services/audit_service.go
package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/exetool/store-backend/internal/models"
	"github.com/exetool/store-backend/internal/utils"
)

// AuditService writes the append-only admin_logs table. Recording happens off
// the request path; a failed write is logged and dropped, never retried.
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

func (s *AuditService) Record(actionType, description, ipAddress string) {
	go func() {
		entry := &models.AdminLog{
			ActionType:  actionType,
			Description: description,
			IPAddress:   ipAddress,
		}
		if err := s.db.Create(entry).Error; err != nil {
			logrus.WithError(err).WithField("action_type", actionType).Warn("Failed to write audit log")
		}
	}()
}

func (s *AuditService) List(ctx context.Context, params utils.PaginationParams) ([]models.AdminLog, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.AdminLog{})

	if params.Search != "" {
		query = query.Where("action_type ILIKE ? OR description ILIKE ?",
			"%"+params.Search+"%", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "action_type"})
	query = utils.ApplyPagination(query, params)

	var logs []models.AdminLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}

	return logs, total, nil
}
