// internal/services/admin_service.go
package services

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/exetool/store-backend/internal/config"
	"github.com/exetool/store-backend/internal/utils"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type AdminLoginRequest struct {
	Password string `json:"password" validate:"required"`
}

type AdminLoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"` // seconds
}

// AdminService gates the admin console. The shared console password is only
// ever compared server-side against a bcrypt hash; a successful check issues a
// short-lived signed session token.
type AdminService struct {
	db     *gorm.DB
	config *config.Config
}

func NewAdminService(db *gorm.DB, config *config.Config) *AdminService {
	return &AdminService{db: db, config: config}
}

func (s *AdminService) Login(req *AdminLoginRequest) (*AdminLoginResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if s.config.Admin.PasswordHash == "" {
		return nil, errors.New("admin login is not configured")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.config.Admin.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateAdminSession(s.config.JWT.AdminSessionTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	return &AdminLoginResponse{
		Token:     token,
		ExpiresIn: s.config.JWT.AdminSessionTTL * 3600,
	}, nil
}
