// internal/handlers/contact_handler.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/exetool/store-backend/internal/services"
	"github.com/exetool/store-backend/internal/utils"
)

type ContactHandler struct {
	contact *services.ContactService
}

func NewContactHandler(contact *services.ContactService) *ContactHandler {
	return &ContactHandler{contact: contact}
}

// Submit handles POST /api/contact.
func (h *ContactHandler) Submit(c *gin.Context) {
	var req services.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}

	if _, err := h.contact.Submit(c.Request.Context(), &req); err != nil {
		if strings.Contains(err.Error(), "validation failed") {
			utils.BadRequestResponse(c, err.Error(), utils.GetValidationErrors(err))
			return
		}
		logrus.WithError(err).Error("Failed to save contact submission")
		utils.InternalErrorResponse(c, "Failed to submit message")
		return
	}

	utils.SuccessResponse(c, gin.H{"received": true})
}
