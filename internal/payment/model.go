package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WebhookEvent is the SePay callback payload for a bank transaction.
type WebhookEvent struct {
	ID              int64           `json:"id"`
	Gateway         string          `json:"gateway"`
	TransactionDate string          `json:"transactionDate"`
	AccountNumber   string          `json:"accountNumber"`
	Content         string          `json:"content"`
	TransferType    string          `json:"transferType"`
	TransferAmount  decimal.Decimal `json:"transferAmount"`
	Accumulated     decimal.Decimal `json:"accumulated"`
	SubAccount      string          `json:"subAccount,omitempty"`
	ReferenceCode   string          `json:"referenceCode,omitempty"`
	Description     string          `json:"description,omitempty"`
}

// Result is the reconciliation outcome returned to the gateway. Webhooks are
// answered with 200 regardless of outcome so the gateway does not retry
// permanently-unresolvable references.
type Result struct {
	Success bool   `json:"success"`
	OrderID int64  `json:"orderId,omitempty"`
	Message string `json:"message"`
}

// Event is the persisted audit record for every inbound notification.
type Event struct {
	ID              uuid.UUID
	Gateway         string
	TransactionID   int64
	TransactionDate string
	AccountNumber   string
	Content         string
	TransferType    string
	TransferAmount  decimal.Decimal
	Accumulated     decimal.Decimal
	OrderID         *int64
	Result          string
	ReceivedAt      time.Time
}

// QRInfo is everything the checkout page needs to render a VietQR payment
// block for an order.
type QRInfo struct {
	BankCode      string          `json:"bankCode"`
	BankName      string          `json:"bankName"`
	AccountNumber string          `json:"accountNumber"`
	AccountName   string          `json:"accountName"`
	Amount        decimal.Decimal `json:"amount"`
	Content       string          `json:"content"`
	QRURL         string          `json:"qrUrl"`
}
