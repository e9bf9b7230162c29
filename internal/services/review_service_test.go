// internal/services/review_service_test.go
package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exetool/store-backend/internal/models"
)

type fakePurchaseChecker struct {
	owned map[string]bool // userID + "/" + productID
}

func (f *fakePurchaseChecker) HasPurchase(ctx context.Context, userID, productID string) (bool, error) {
	return f.owned[userID+"/"+productID], nil
}

type fakeReviewStore struct {
	created []*models.Review
}

func (f *fakeReviewStore) Create(ctx context.Context, review *models.Review) error {
	f.created = append(f.created, review)
	return nil
}

func newTestReviewService(owned map[string]bool, autoApprove bool) (*ReviewService, *fakeReviewStore) {
	store := &fakeReviewStore{}
	return &ReviewService{
		store:       store,
		purchases:   &fakePurchaseChecker{owned: owned},
		autoApprove: autoApprove,
	}, store
}

func validReviewRequest() *SubmitReviewRequest {
	return &SubmitReviewRequest{
		UserID:    "user-1",
		ProductID: "prod-1",
		Rating:    5,
		Title:     "Great tool",
		Body:      "Does exactly what it says.",
	}
}

func TestSubmitReviewWithoutPurchase(t *testing.T) {
	svc, store := newTestReviewService(nil, true)

	_, err := svc.Submit(context.Background(), validReviewRequest())
	assert.ErrorIs(t, err, ErrNoPurchase)
	assert.Empty(t, store.created)
}

func TestSubmitReviewWithPurchase(t *testing.T) {
	svc, store := newTestReviewService(map[string]bool{"user-1/prod-1": true}, true)

	review, err := svc.Submit(context.Background(), validReviewRequest())
	require.NoError(t, err)

	assert.True(t, review.IsVerifiedPurchase)
	assert.Equal(t, models.ReviewStatusApproved, review.Status)
	assert.Len(t, store.created, 1)
}

func TestSubmitReviewModerationQueue(t *testing.T) {
	svc, _ := newTestReviewService(map[string]bool{"user-1/prod-1": true}, false)

	review, err := svc.Submit(context.Background(), validReviewRequest())
	require.NoError(t, err)
	assert.Equal(t, models.ReviewStatusPending, review.Status)
}

func TestSubmitReviewRatingBounds(t *testing.T) {
	svc, _ := newTestReviewService(map[string]bool{"user-1/prod-1": true}, true)

	for _, rating := range []int{-1, 0, 6, 100} {
		req := validReviewRequest()
		req.Rating = rating
		_, err := svc.Submit(context.Background(), req)
		assert.Error(t, err, "rating %d should be rejected", rating)
	}
}
