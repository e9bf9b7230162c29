// internal/services/contact_service.go
package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/exetool/store-backend/internal/models"
	"github.com/exetool/store-backend/internal/utils"
)

type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"max=255"`
	Message string `json:"message" validate:"required,max=5000"`
}

type ContactService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewContactService(db *gorm.DB, notifications *NotificationService) *ContactService {
	return &ContactService{db: db, notifications: notifications}
}

// Submit persists the submission, then relays it by email. The relay is best
// effort; the stored row is the durable record.
func (s *ContactService) Submit(ctx context.Context, req *ContactRequest) (*models.ContactSubmission, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	sub := &models.ContactSubmission{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	}

	if err := s.db.WithContext(ctx).Create(sub).Error; err != nil {
		return nil, fmt.Errorf("failed to save contact submission: %w", err)
	}

	if s.notifications != nil {
		go func() {
			if err := s.notifications.RelayContactSubmission(sub); err != nil {
				logrus.WithError(err).Warn("Failed to relay contact submission")
			}
		}()
	}

	return sub, nil
}
