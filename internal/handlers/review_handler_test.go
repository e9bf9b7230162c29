// internal/handlers/review_handler_test.go
package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exetool/store-backend/internal/services"
)

type stubPurchaseChecker struct {
	owns bool
}

func (s *stubPurchaseChecker) HasPurchase(context.Context, string, string) (bool, error) {
	return s.owns, nil
}

func newReviewRouter(purchases services.PurchaseChecker) *gin.Engine {
	h := NewReviewHandler(services.NewReviewService(nil, purchases, true))
	r := gin.New()
	r.POST("/api/reviews", h.Submit)
	return r
}

func TestSubmitReviewEndpointTokenMismatch(t *testing.T) {
	r := newReviewRouter(&stubPurchaseChecker{owns: true})

	w := postJSON(t, r, "/api/reviews", gin.H{
		"productId":   "prod-1",
		"rating":      5,
		"title":       "Great tool",
		"body":        "Works as advertised.",
		"accessToken": testAccessToken(t, "user-2"),
		"userId":      "user-1",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSubmitReviewEndpointMissingToken(t *testing.T) {
	r := newReviewRouter(&stubPurchaseChecker{owns: true})

	w := postJSON(t, r, "/api/reviews", gin.H{
		"productId": "prod-1",
		"rating":    5,
		"userId":    "user-1",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSubmitReviewEndpointRequiresPurchase(t *testing.T) {
	r := newReviewRouter(&stubPurchaseChecker{owns: false})

	w := postJSON(t, r, "/api/reviews", gin.H{
		"productId":   "prod-1",
		"rating":      5,
		"title":       "Great tool",
		"body":        "Works as advertised.",
		"accessToken": testAccessToken(t, "user-1"),
		"userId":      "user-1",
	})

	require.Equal(t, http.StatusForbidden, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	errBody, ok := body["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Reviews require a verified purchase", errBody["message"])
}
