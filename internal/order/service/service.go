package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"sanita/internal/catalog"
	"sanita/internal/logger"
	"sanita/internal/metrics"
	"sanita/internal/order"
	"sanita/internal/promotion"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrEmptyOrder        = errors.New("order must contain at least one item")
	ErrInvalidQuantity   = errors.New("item quantity must be positive")
	ErrUnknownProduct    = errors.New("unknown product")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrUnknownStatus     = errors.New("unknown order status")
)

// SaleRejectedError carries the shopper-facing reason a sale code could not
// be applied at checkout.
type SaleRejectedError struct {
	Message string
}

func (e *SaleRejectedError) Error() string {
	return e.Message
}

type OrderRepository interface {
	Create(ctx context.Context, o *order.Order, memoPrefix string) error
	GetByID(ctx context.Context, id int64) (*order.Order, error)
	GetAll(ctx context.Context) ([]*order.Order, error)
	GetByUserID(ctx context.Context, userID int64) ([]*order.Order, error)
	UpdateStatus(ctx context.Context, id int64, status order.Status) error
	MarkPaid(ctx context.Context, id int64) (bool, error)
}

// ProductCatalog is the slice of the catalog the order flow needs: the
// authoritative price at creation time, and the sold counter bumped on
// delivery. PriceOf reports an unknown product as catalog.ErrProductNotFound.
type ProductCatalog interface {
	PriceOf(ctx context.Context, productID int64) (decimal.Decimal, error)
	IncrementSold(ctx context.Context, productID int64, qty int) error
}

type SaleService interface {
	Evaluate(ctx context.Context, code string, orderTotal decimal.Decimal) (promotion.Result, error)
	Redeem(ctx context.Context, code string) error
}

type Service struct {
	repo       OrderRepository
	catalog    ProductCatalog
	sales      SaleService
	memoPrefix string
}

func NewService(repo OrderRepository, catalog ProductCatalog, sales SaleService, memoPrefix string) *Service {
	return &Service{
		repo:       repo,
		catalog:    catalog,
		sales:      sales,
		memoPrefix: memoPrefix,
	}
}

type CreateItem struct {
	ProductID int64
	Quantity  int
}

type CreateInput struct {
	UserID          *int64
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	Note            string
	SaleCode        string
	Items           []CreateItem
}

// Create builds the order with server-side pricing: every unit price is
// re-read from the catalog, never taken from the client. The order, its items
// and the payment memo are persisted atomically.
func (s *Service) Create(ctx context.Context, input CreateInput) (*order.Order, error) {
	if len(input.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	subtotal := decimal.Zero
	items := make([]order.Item, 0, len(input.Items))
	for _, in := range input.Items {
		if in.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}

		price, err := s.catalog.PriceOf(ctx, in.ProductID)
		if err != nil {
			if errors.Is(err, catalog.ErrProductNotFound) {
				return nil, ErrUnknownProduct
			}
			return nil, err
		}

		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(in.Quantity))))
		items = append(items, order.Item{
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			UnitPrice: price,
		})
	}

	total := subtotal.Round(2)
	var saleCode *string
	if input.SaleCode != "" {
		result, err := s.sales.Evaluate(ctx, input.SaleCode, subtotal)
		if err != nil {
			return nil, err
		}
		if !result.Valid {
			return nil, &SaleRejectedError{Message: result.Message}
		}
		total = result.Sale.FinalTotal
		saleCode = &result.Sale.Code
	}

	o := &order.Order{
		UserID:          input.UserID,
		CustomerName:    input.CustomerName,
		CustomerPhone:   input.CustomerPhone,
		CustomerAddress: input.CustomerAddress,
		Note:            input.Note,
		Total:           total,
		Status:          order.StatusAwaitingPayment,
		SaleCode:        saleCode,
		Items:           items,
	}

	if err := s.repo.Create(ctx, o, s.memoPrefix); err != nil {
		return nil, err
	}
	o.StatusLabel = o.Status.Label()

	metrics.OrdersCreatedTotal.Inc()
	logger.Log.Info("order created",
		zap.Int64("order_id", o.ID),
		zap.String("memo", o.PaymentMemo),
		zap.String("total", o.Total.String()),
	)

	return o, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*order.Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

func (s *Service) ListByUser(ctx context.Context, userID int64) ([]*order.Order, error) {
	return s.repo.GetByUserID(ctx, userID)
}

func (s *Service) ListAll(ctx context.Context) ([]*order.Order, error) {
	return s.repo.GetAll(ctx)
}

// MarkPaid applies the idempotent AWAITING_PAYMENT -> PAID transition and
// reports whether this call performed it. The attached sale code is redeemed
// only on the first transition, so duplicate webhook deliveries never consume
// usage twice.
func (s *Service) MarkPaid(ctx context.Context, id int64) (bool, error) {
	transitioned, err := s.repo.MarkPaid(ctx, id)
	if err != nil {
		return false, err
	}
	if !transitioned {
		return false, nil
	}

	metrics.OrdersPaidTotal.Inc()

	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return true, err
	}

	if o.SaleCode != nil {
		if err := s.sales.Redeem(ctx, *o.SaleCode); err != nil {
			// The order stays paid; an exhausted counter at this point is an
			// operator concern, not a payment failure.
			logger.Log.Warn("sale redemption failed",
				zap.Int64("order_id", id),
				zap.String("code", *o.SaleCode),
				zap.Error(err),
			)
		}
	}

	return true, nil
}

// UpdateStatus moves an order through the state machine. The transition table
// gates the move unless force is set, which is the documented administrative
// escape hatch for manual correction.
func (s *Service) UpdateStatus(ctx context.Context, id int64, to order.Status, force bool) (*order.Order, error) {
	if !to.Known() {
		return nil, ErrUnknownStatus
	}

	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if cur.Status == to {
		return cur, nil
	}

	if !force && !cur.Status.CanTransitionTo(to) {
		return nil, ErrInvalidTransition
	}

	if to == order.StatusPaid {
		transitioned, err := s.MarkPaid(ctx, id)
		if err != nil {
			return nil, err
		}
		if !transitioned {
			// Forced jump back into PAID from a later state: plain update,
			// no redemption.
			if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
				return nil, err
			}
		}
	} else {
		if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrOrderNotFound
			}
			return nil, err
		}
	}

	// First arrival in DELIVERED bumps the sold counters.
	if to == order.StatusDelivered && cur.Status != order.StatusDelivered {
		for _, item := range cur.Items {
			if err := s.catalog.IncrementSold(ctx, item.ProductID, item.Quantity); err != nil {
				logger.Log.Warn("sold counter update failed",
					zap.Int64("order_id", id),
					zap.Int64("product_id", item.ProductID),
					zap.Error(err),
				)
			}
		}
		logger.Log.Info("order delivered",
			zap.Int64("order_id", id),
			zap.Int("items", len(cur.Items)),
		)
	}

	return s.Get(ctx, id)
}

// PaymentMemoFor regenerates the transfer memo for an order id. The memo is
// deterministic, so losing the persisted copy is never fatal.
func (s *Service) PaymentMemoFor(id int64) string {
	return s.memoPrefix + strconv.FormatInt(id, 10)
}
