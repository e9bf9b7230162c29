// internal/handlers/content_handler.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/exetool/store-backend/internal/cms"
	"github.com/exetool/store-backend/internal/services"
	"github.com/exetool/store-backend/internal/utils"
)

type ContentHandler struct {
	cms     *cms.Client
	content *services.ContentService
	storage *services.StorageService
}

func NewContentHandler(client *cms.Client, content *services.ContentService, storage *services.StorageService) *ContentHandler {
	return &ContentHandler{cms: client, content: content, storage: storage}
}

// respondUpstream forwards the CMS's raw error body on integration failures,
// matching the convention that upstream errors are surfaced, not rewrapped.
func respondUpstream(c *gin.Context, err error) {
	var upstream *cms.UpstreamError
	if errors.As(err, &upstream) {
		c.Data(upstream.StatusCode, "application/json", []byte(upstream.Body))
		return
	}
	logrus.WithError(err).Error("CMS request failed")
	utils.InternalErrorResponse(c, "Content service unavailable")
}

// Public catalog endpoints. Missing content yields empty arrays, not 404.

func (h *ContentHandler) ListProducts(c *gin.Context) {
	products, err := h.cms.GetProducts(c.Request.Context())
	if err != nil {
		respondUpstream(c, err)
		return
	}
	utils.SuccessResponse(c, products)
}

func (h *ContentHandler) GetProductBySlug(c *gin.Context) {
	product, err := h.cms.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondUpstream(c, err)
		return
	}
	if product == nil {
		utils.NotFoundResponse(c, "Product")
		return
	}
	utils.SuccessResponse(c, product)
}

func (h *ContentHandler) ListPosts(c *gin.Context) {
	posts, err := h.cms.GetPosts(c.Request.Context())
	if err != nil {
		respondUpstream(c, err)
		return
	}
	utils.SuccessResponse(c, posts)
}

func (h *ContentHandler) GetSiteSettings(c *gin.Context) {
	settings, err := h.cms.GetSiteSettings(c.Request.Context())
	if err != nil {
		respondUpstream(c, err)
		return
	}
	utils.SuccessResponse(c, settings)
}

func (h *ContentHandler) ListStoredLinks(c *gin.Context) {
	links, err := h.cms.GetStoredLinks(c.Request.Context())
	if err != nil {
		respondUpstream(c, err)
		return
	}
	utils.SuccessResponse(c, links)
}

// Admin content proxy, keyed by the type query parameter.

func (h *ContentHandler) AdminList(c *gin.Context) {
	docs, err := h.content.List(c.Request.Context(), c.Query("type"))
	if err != nil {
		if errors.Is(err, services.ErrUnknownContentType) {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		respondUpstream(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", docs)
}

func (h *ContentHandler) AdminCreate(c *gin.Context) {
	var doc map[string]interface{}
	if err := c.ShouldBindJSON(&doc); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}

	result, err := h.content.Create(c.Request.Context(), c.Query("type"), doc)
	if err != nil {
		if errors.Is(err, services.ErrUnknownContentType) {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		respondUpstream(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", result)
}

func (h *ContentHandler) AdminPatch(c *gin.Context) {
	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}

	result, err := h.content.Patch(c.Request.Context(), c.Query("type"), c.Query("id"), fields)
	if err != nil {
		if errors.Is(err, services.ErrUnknownContentType) || err.Error() == "document id is required" {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		respondUpstream(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", result)
}

func (h *ContentHandler) AdminDelete(c *gin.Context) {
	result, err := h.content.Delete(c.Request.Context(), c.Query("type"), c.Query("id"))
	if err != nil {
		if errors.Is(err, services.ErrUnknownContentType) || err.Error() == "document id is required" {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		respondUpstream(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", result)
}

// Upload handles POST /api/admin/uploads (multipart form, field "file").
func (h *ContentHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "Missing file", err.Error())
		return
	}
	defer file.Close()

	result, err := h.storage.UploadImage(c.Request.Context(), file, header)
	if err != nil {
		logrus.WithError(err).Error("Image upload failed")
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, result)
}
