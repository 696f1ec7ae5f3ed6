package service

import (
	"context"
	"database/sql"
	"testing"

	"sanita/internal/review"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reviewKey struct {
	userID    int64
	productID int64
}

type fakeReviewRepo struct {
	byID    map[int64]*review.Review
	byKey   map[reviewKey]*review.Review
	nextID  int64
	deleted []int64
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{
		byID:   map[int64]*review.Review{},
		byKey:  map[reviewKey]*review.Review{},
		nextID: 1,
	}
}

func (r *fakeReviewRepo) Upsert(_ context.Context, rv *review.Review) error {
	key := reviewKey{rv.UserID, rv.ProductID}
	if existing, ok := r.byKey[key]; ok {
		existing.Rating = rv.Rating
		existing.Comment = rv.Comment
		*rv = *existing
		return nil
	}
	rv.ID = r.nextID
	r.nextID++
	cp := *rv
	r.byID[rv.ID] = &cp
	r.byKey[key] = &cp
	return nil
}

func (r *fakeReviewRepo) GetByID(_ context.Context, id int64) (*review.Review, error) {
	rv, ok := r.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rv, nil
}

func (r *fakeReviewRepo) GetByProduct(_ context.Context, productID int64) ([]*review.Review, error) {
	var out []*review.Review
	for _, rv := range r.byID {
		if rv.ProductID == productID {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (r *fakeReviewRepo) GetAll(_ context.Context) ([]*review.Review, error) {
	var out []*review.Review
	for _, rv := range r.byID {
		out = append(out, rv)
	}
	return out, nil
}

func (r *fakeReviewRepo) RatingsFor(_ context.Context, productID int64) ([]int, error) {
	var out []int
	for _, rv := range r.byID {
		if rv.ProductID == productID {
			out = append(out, rv.Rating)
		}
	}
	return out, nil
}

func (r *fakeReviewRepo) Delete(_ context.Context, id int64) error {
	rv, ok := r.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	delete(r.byKey, reviewKey{rv.UserID, rv.ProductID})
	delete(r.byID, id)
	r.deleted = append(r.deleted, id)
	return nil
}

// fakeDelivered marks (user, product) pairs that reached the delivered state.
type fakeDelivered map[reviewKey]bool

func (f fakeDelivered) HasDeliveredProduct(_ context.Context, userID, productID int64) (bool, error) {
	return f[reviewKey{userID, productID}], nil
}

func TestSubmitRequiresDelivery(t *testing.T) {
	repo := newFakeReviewRepo()
	svc := NewService(repo, fakeDelivered{{userID: 1, productID: 7}: true})

	// User 1 received product 7, user 2 did not.
	rv, err := svc.Submit(context.Background(), 1, 7, 5, "Rất tốt")
	require.NoError(t, err)
	assert.Equal(t, 5, rv.Rating)

	_, err = svc.Submit(context.Background(), 2, 7, 5, "ok")
	assert.ErrorIs(t, err, ErrNotEligible)

	// Shipping but not delivered is still ineligible.
	_, err = svc.Submit(context.Background(), 1, 8, 4, "ok")
	assert.ErrorIs(t, err, ErrNotEligible)
}

func TestSubmitValidatesRating(t *testing.T) {
	svc := NewService(newFakeReviewRepo(), fakeDelivered{{userID: 1, productID: 7}: true})

	for _, rating := range []int{0, -1, 6} {
		_, err := svc.Submit(context.Background(), 1, 7, rating, "x")
		assert.ErrorIs(t, err, ErrInvalidRating, "rating %d", rating)
	}
}

func TestSubmitOverwritesExistingReview(t *testing.T) {
	repo := newFakeReviewRepo()
	svc := NewService(repo, fakeDelivered{{userID: 1, productID: 7}: true})

	first, err := svc.Submit(context.Background(), 1, 7, 2, "tạm được")
	require.NoError(t, err)

	second, err := svc.Submit(context.Background(), 1, 7, 5, "dùng lâu mới thấy tốt")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	reviews, err := svc.ListByProduct(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, 5, reviews[0].Rating)
}

func TestCanReview(t *testing.T) {
	svc := NewService(newFakeReviewRepo(), fakeDelivered{{userID: 1, productID: 7}: true})

	ok, err := svc.CanReview(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.CanReview(context.Background(), 1, 8)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProductStats(t *testing.T) {
	repo := newFakeReviewRepo()
	delivered := fakeDelivered{}
	for userID := int64(1); userID <= 4; userID++ {
		delivered[reviewKey{userID, 7}] = true
	}
	svc := NewService(repo, delivered)

	for userID, rating := range map[int64]int{1: 5, 2: 4, 3: 4, 4: 2} {
		_, err := svc.Submit(context.Background(), userID, 7, rating, "")
		require.NoError(t, err)
	}

	stats, err := svc.ProductStats(context.Background(), 7)
	require.NoError(t, err)

	// (5+4+4+2)/4 = 3.75, rounded to one decimal.
	assert.True(t, stats.AverageRating.Equal(decimal.NewFromFloat(3.8)), "got %s", stats.AverageRating)
	assert.Equal(t, 4, stats.TotalReviews)
	assert.Equal(t, map[int]int{1: 0, 2: 1, 3: 0, 4: 2, 5: 1}, stats.Distribution)
}

func TestProductStatsEmpty(t *testing.T) {
	svc := NewService(newFakeReviewRepo(), fakeDelivered{})

	stats, err := svc.ProductStats(context.Background(), 7)
	require.NoError(t, err)

	assert.True(t, stats.AverageRating.IsZero())
	assert.Equal(t, 0, stats.TotalReviews)
}

func TestDeleteOwnership(t *testing.T) {
	repo := newFakeReviewRepo()
	svc := NewService(repo, fakeDelivered{{userID: 1, productID: 7}: true})

	rv, err := svc.Submit(context.Background(), 1, 7, 3, "")
	require.NoError(t, err)

	// Another user cannot delete it; the owner and admins can.
	err = svc.Delete(context.Background(), rv.ID, 2, false)
	assert.ErrorIs(t, err, ErrNotOwner)

	err = svc.Delete(context.Background(), rv.ID, 1, false)
	require.NoError(t, err)

	err = svc.Delete(context.Background(), rv.ID, 1, false)
	assert.ErrorIs(t, err, ErrReviewNotFound)
}
