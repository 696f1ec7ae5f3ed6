package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"sanita/internal/config"
	"sanita/internal/logger"
	"sanita/internal/metrics"
	"sanita/internal/order"
	orderservice "sanita/internal/order/service"
	"sanita/internal/payment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Webhook result messages are part of the gateway contract; the gateway
// operator reads them, not shoppers.
const (
	msgIgnored          = "Ignored: not money in"
	msgNoReference      = "Order ID not found in content"
	msgOrderNotFound    = "Order not found"
	msgPaymentConfirmed = "Payment confirmed"
)

type OrderService interface {
	Get(ctx context.Context, id int64) (*order.Order, error)
	MarkPaid(ctx context.Context, id int64) (bool, error)
}

type EventRepository interface {
	Record(ctx context.Context, ev *payment.Event) error
	ListByOrder(ctx context.Context, orderID int64) ([]*payment.Event, error)
}

type Service struct {
	orders OrderService
	events EventRepository
	bank   config.BankAccount
	memoRe *regexp.Regexp
}

func NewService(orders OrderService, events EventRepository, bank config.BankAccount) *Service {
	return &Service{
		orders: orders,
		events: events,
		bank:   bank,
		// Tolerant match: the memo prefix followed immediately by digits,
		// anywhere in the free-text transfer description, any case.
		memoRe: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(bank.MemoPrefix) + `(\d+)`),
	}
}

// parseOrderID extracts the order reference from a transfer description.
// Payers type the memo by hand, so anything without the exact prefix+digits
// shape is rejected rather than guessed at.
func (s *Service) parseOrderID(content string) (int64, bool) {
	m := s.memoRe.FindStringSubmatch(content)
	if m == nil {
		return 0, false
	}

	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}

	return id, true
}

// amountTolerance allows small gaps from transfer fees before warning.
var amountTolerance = decimal.NewFromFloat(0.99)

// ProcessWebhook correlates an inbound bank notification with an order and
// applies the idempotent paid transition. Every notification is recorded for
// manual reconciliation of unmatched payments.
func (s *Service) ProcessWebhook(ctx context.Context, ev payment.WebhookEvent) (payment.Result, error) {
	logger.Log.Info("payment webhook received",
		zap.Int64("transaction_id", ev.ID),
		zap.String("gateway", ev.Gateway),
		zap.String("transfer_type", ev.TransferType),
		zap.String("content", ev.Content),
	)

	if ev.TransferType != "in" {
		s.record(ctx, ev, nil, "ignored")
		metrics.WebhooksTotal.WithLabelValues("ignored").Inc()
		return payment.Result{Success: true, Message: msgIgnored}, nil
	}

	orderID, ok := s.parseOrderID(ev.Content)
	if !ok {
		logger.Log.Warn("order reference not found in transfer content", zap.String("content", ev.Content))
		s.record(ctx, ev, nil, "no_reference")
		metrics.WebhooksTotal.WithLabelValues("no_reference").Inc()
		return payment.Result{Success: false, Message: msgNoReference}, nil
	}

	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, orderservice.ErrOrderNotFound) {
			logger.Log.Warn("webhook for unknown order", zap.Int64("order_id", orderID))
			s.record(ctx, ev, nil, "order_not_found")
			metrics.WebhooksTotal.WithLabelValues("order_not_found").Inc()
			return payment.Result{Success: false, Message: msgOrderNotFound}, nil
		}
		return payment.Result{}, err
	}

	// The transferred amount is checked but a mismatch does not reject the
	// payment; it is surfaced for manual review instead.
	if ev.TransferAmount.LessThan(o.Total.Mul(amountTolerance)) {
		logger.Log.Warn("transfer amount below order total",
			zap.Int64("order_id", orderID),
			zap.String("received", ev.TransferAmount.String()),
			zap.String("expected", o.Total.String()),
		)
		metrics.WebhookAmountMismatchTotal.Inc()
	}

	transitioned, err := s.orders.MarkPaid(ctx, orderID)
	if err != nil {
		return payment.Result{}, err
	}

	s.record(ctx, ev, &orderID, "confirmed")
	metrics.WebhooksTotal.WithLabelValues("confirmed").Inc()

	if transitioned {
		logger.Log.Info("order payment confirmed", zap.Int64("order_id", orderID))
	} else {
		logger.Log.Info("duplicate payment notification", zap.Int64("order_id", orderID))
	}

	return payment.Result{Success: true, OrderID: orderID, Message: msgPaymentConfirmed}, nil
}

// record persists the audit row. Audit failure never fails the webhook.
func (s *Service) record(ctx context.Context, ev payment.WebhookEvent, orderID *int64, result string) {
	if s.events == nil {
		return
	}

	err := s.events.Record(ctx, &payment.Event{
		ID:              uuid.New(),
		Gateway:         ev.Gateway,
		TransactionID:   ev.ID,
		TransactionDate: ev.TransactionDate,
		AccountNumber:   ev.AccountNumber,
		Content:         ev.Content,
		TransferType:    ev.TransferType,
		TransferAmount:  ev.TransferAmount,
		Accumulated:     ev.Accumulated,
		OrderID:         orderID,
		Result:          result,
	})
	if err != nil {
		logger.Log.Error("failed to record payment event", zap.Error(err))
	}
}

// EventsForOrder returns the audit trail of notifications matched to an
// order, for manual reconciliation.
func (s *Service) EventsForOrder(ctx context.Context, orderID int64) ([]*payment.Event, error) {
	if s.events == nil {
		return nil, nil
	}
	return s.events.ListByOrder(ctx, orderID)
}

// Status backs the checkout polling endpoint.
func (s *Service) Status(ctx context.Context, orderID int64) (bool, string, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, orderservice.ErrOrderNotFound) {
			return false, "not_found", nil
		}
		return false, "", err
	}

	return o.Status == order.StatusPaid, o.Status.Label(), nil
}

// QR builds the VietQR image URL and bank details for an order.
func (s *Service) QR(ctx context.Context, orderID int64) (*payment.QRInfo, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	content := o.PaymentMemo
	if content == "" {
		content = fmt.Sprintf("%s%d", s.bank.MemoPrefix, o.ID)
	}

	qrURL := fmt.Sprintf(
		"https://img.vietqr.io/image/%s-%s-compact2.png?amount=%s&addInfo=%s&accountName=%s",
		s.bank.Code,
		s.bank.AccountNumber,
		o.Total.String(),
		url.QueryEscape(content),
		url.QueryEscape(s.bank.AccountName),
	)

	return &payment.QRInfo{
		BankCode:      s.bank.Code,
		BankName:      s.bank.Name,
		AccountNumber: s.bank.AccountNumber,
		AccountName:   s.bank.AccountName,
		Amount:        o.Total,
		Content:       content,
		QRURL:         qrURL,
	}, nil
}

// ConfirmManual is the operator fallback for transfers the webhook could not
// match: it routes a synthetic notification through the normal reconciliation
// path so the audit trail and idempotency guarantees are identical.
func (s *Service) ConfirmManual(ctx context.Context, orderID int64) (payment.Result, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, orderservice.ErrOrderNotFound) {
			return payment.Result{Success: false, Message: msgOrderNotFound}, nil
		}
		return payment.Result{}, err
	}

	return s.ProcessWebhook(ctx, payment.WebhookEvent{
		ID:              time.Now().UnixMilli(),
		Gateway:         "Manual",
		TransactionDate: time.Now().Format(time.RFC3339),
		AccountNumber:   s.bank.AccountNumber,
		Content:         fmt.Sprintf("%s%d", s.bank.MemoPrefix, orderID),
		TransferType:    "in",
		TransferAmount:  o.Total,
		Accumulated:     decimal.Zero,
	})
}
