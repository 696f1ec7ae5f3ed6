package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"sanita/internal/metrics"
	"sanita/internal/promotion"

	"github.com/shopspring/decimal"
)

var (
	ErrSaleNotFound  = errors.New("mã giảm giá không tồn tại")
	ErrSaleExhausted = errors.New("mã giảm giá đã hết lượt sử dụng")
)

// User-facing rejection messages. Vietnamese is the domain vocabulary here;
// translation happens at the UI, not in this layer.
const (
	msgNotFound     = "Mã giảm giá không tồn tại"
	msgDisabled     = "Mã giảm giá đã bị vô hiệu hóa"
	msgExpired      = "Mã giảm giá đã hết hạn"
	msgExhausted    = "Mã giảm giá đã hết lượt sử dụng"
	msgBelowMinimum = "Đơn hàng tối thiểu %s$ để sử dụng mã này"
)

type SaleRepository interface {
	Create(ctx context.Context, sale *promotion.Sale) error
	GetByCode(ctx context.Context, code string) (*promotion.Sale, error)
	GetAll(ctx context.Context) ([]*promotion.Sale, error)
	Update(ctx context.Context, sale *promotion.Sale) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
	// Redeem increments used_count only while it is below usage_limit and
	// reports whether a row was updated. The conditional update is what keeps
	// used_count <= usage_limit under concurrent redemptions.
	Redeem(ctx context.Context, code string) (bool, error)
}

type Service struct {
	repo SaleRepository
	now  func() time.Time
}

func NewService(repo SaleRepository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

var oneHundred = decimal.NewFromInt(100)

// Evaluate validates a sale code against an order total and computes the
// discounted total. It is read-only: previewing a code never consumes usage.
func (s *Service) Evaluate(ctx context.Context, code string, orderTotal decimal.Decimal) (promotion.Result, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	sale, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s.reject(promotion.ReasonNotFound, msgNotFound), nil
		}
		return promotion.Result{}, err
	}

	if !sale.IsActive {
		return s.reject(promotion.ReasonDisabled, msgDisabled), nil
	}

	if sale.ExpiresAt != nil && s.now().After(*sale.ExpiresAt) {
		return s.reject(promotion.ReasonExpired, msgExpired), nil
	}

	if sale.UsedCount >= sale.UsageLimit {
		return s.reject(promotion.ReasonExhausted, msgExhausted), nil
	}

	if orderTotal.LessThan(sale.MinOrder) {
		msg := fmt.Sprintf(msgBelowMinimum, sale.MinOrder.String())
		return s.reject(promotion.ReasonBelowMinimum, msg), nil
	}

	var raw decimal.Decimal
	switch sale.Kind {
	case promotion.KindPercent:
		raw = orderTotal.Mul(sale.Discount).Div(oneHundred)
		if sale.MaxDiscount.Valid && raw.GreaterThan(sale.MaxDiscount.Decimal) {
			raw = sale.MaxDiscount.Decimal
		}
	case promotion.KindFixed:
		raw = sale.Discount
	}

	// A fixed discount larger than the subtotal is clamped so the final
	// total never goes negative.
	if raw.GreaterThan(orderTotal) {
		raw = orderTotal
	}

	metrics.SaleEvaluationsTotal.WithLabelValues("valid").Inc()

	return promotion.Result{
		Valid: true,
		Sale: &promotion.Applied{
			Code:           sale.Code,
			Discount:       sale.Discount,
			Kind:           sale.Kind,
			DiscountAmount: raw.Round(2),
			FinalTotal:     orderTotal.Sub(raw).Round(2),
		},
	}, nil
}

func (s *Service) reject(reason promotion.Reason, message string) promotion.Result {
	metrics.SaleEvaluationsTotal.WithLabelValues(strings.ToLower(string(reason))).Inc()
	return promotion.Result{
		Valid:   false,
		Reason:  reason,
		Message: message,
	}
}

// Redeem consumes one usage of the code. It is called exactly once per paid
// order, never during evaluation.
func (s *Service) Redeem(ctx context.Context, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))

	redeemed, err := s.repo.Redeem(ctx, code)
	if err != nil {
		return err
	}
	if !redeemed {
		return ErrSaleExhausted
	}

	metrics.SaleRedemptionsTotal.Inc()
	return nil
}

// CreateSale registers a new code. The code is stored upper-cased so that
// lookups remain case-insensitive.
func (s *Service) CreateSale(ctx context.Context, sale *promotion.Sale) (*promotion.Sale, error) {
	sale.Code = strings.ToUpper(strings.TrimSpace(sale.Code))
	if sale.Code == "" {
		return nil, errors.New("sale code must not be empty")
	}
	if sale.UsageLimit <= 0 {
		sale.UsageLimit = 100
	}
	sale.UsedCount = 0
	sale.IsActive = true

	if err := s.repo.Create(ctx, sale); err != nil {
		return nil, err
	}
	return sale, nil
}

func (s *Service) ListSales(ctx context.Context) ([]*promotion.Sale, error) {
	return s.repo.GetAll(ctx)
}

func (s *Service) UpdateSale(ctx context.Context, sale *promotion.Sale) error {
	sale.Code = strings.ToUpper(strings.TrimSpace(sale.Code))
	return s.repo.Update(ctx, sale)
}

// DeactivateSale is the preferred way to retire a code: historical orders may
// still reference it, so soft-disable beats deletion.
func (s *Service) DeactivateSale(ctx context.Context, id int64) error {
	return s.repo.SetActive(ctx, id, false)
}

func (s *Service) DeleteSale(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
