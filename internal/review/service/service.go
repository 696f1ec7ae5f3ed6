package service

import (
	"context"
	"database/sql"
	"errors"

	"sanita/internal/review"

	"github.com/shopspring/decimal"
)

var (
	ErrNotEligible    = errors.New("bạn chỉ có thể đánh giá sau khi đơn hàng đã giao thành công")
	ErrInvalidRating  = errors.New("rating must be between 1 and 5")
	ErrReviewNotFound = errors.New("review not found")
	ErrNotOwner       = errors.New("review belongs to another user")
)

type ReviewRepository interface {
	Upsert(ctx context.Context, rv *review.Review) error
	GetByID(ctx context.Context, id int64) (*review.Review, error)
	GetByProduct(ctx context.Context, productID int64) ([]*review.Review, error)
	GetAll(ctx context.Context) ([]*review.Review, error)
	RatingsFor(ctx context.Context, productID int64) ([]int, error)
	Delete(ctx context.Context, id int64) error
}

// DeliveredChecker answers whether a user has a delivered order containing a
// product. Implemented by the order repository.
type DeliveredChecker interface {
	HasDeliveredProduct(ctx context.Context, userID, productID int64) (bool, error)
}

type Service struct {
	repo   ReviewRepository
	orders DeliveredChecker
}

func NewService(repo ReviewRepository, orders DeliveredChecker) *Service {
	return &Service{
		repo:   repo,
		orders: orders,
	}
}

// CanReview is the eligibility gate: only users whose order containing the
// product reached the delivered state may review it.
func (s *Service) CanReview(ctx context.Context, userID, productID int64) (bool, error) {
	return s.orders.HasDeliveredProduct(ctx, userID, productID)
}

// Submit writes the review after the eligibility gate passes. Re-submission
// overwrites the user's existing review of the product.
func (s *Service) Submit(ctx context.Context, userID, productID int64, rating int, comment string) (*review.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	eligible, err := s.CanReview(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, ErrNotEligible
	}

	rv := &review.Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    rating,
		Comment:   comment,
	}

	if err := s.repo.Upsert(ctx, rv); err != nil {
		return nil, err
	}

	return rv, nil
}

func (s *Service) ListByProduct(ctx context.Context, productID int64) ([]*review.Review, error) {
	return s.repo.GetByProduct(ctx, productID)
}

func (s *Service) ListAll(ctx context.Context) ([]*review.Review, error) {
	return s.repo.GetAll(ctx)
}

// ProductStats aggregates ratings for a product page: average to one decimal
// place and a star distribution.
func (s *Service) ProductStats(ctx context.Context, productID int64) (*review.Stats, error) {
	ratings, err := s.repo.RatingsFor(ctx, productID)
	if err != nil {
		return nil, err
	}

	stats := &review.Stats{
		AverageRating: decimal.Zero,
		TotalReviews:  len(ratings),
		Distribution:  map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}

	if len(ratings) == 0 {
		return stats, nil
	}

	sum := 0
	for _, rating := range ratings {
		sum += rating
		stats.Distribution[rating]++
	}

	stats.AverageRating = decimal.NewFromInt(int64(sum)).
		Div(decimal.NewFromInt(int64(len(ratings)))).
		Round(1)

	return stats, nil
}

// Delete removes a review. Owners may delete their own; admins may delete any.
func (s *Service) Delete(ctx context.Context, reviewID, userID int64, isAdmin bool) error {
	rv, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrReviewNotFound
		}
		return err
	}

	if !isAdmin && rv.UserID != userID {
		return ErrNotOwner
	}

	return s.repo.Delete(ctx, reviewID)
}
