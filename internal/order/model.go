package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is an order line. UnitPrice is snapshotted from the catalog at
// creation time so historical totals stay stable when prices change.
type Item struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// Order is a customer order. UserID is nil for guest checkout. PaymentMemo is
// the token a payer must include in the bank transfer description; it is
// derived from the id ("DH" + id) so it can always be regenerated.
type Order struct {
	ID              int64           `json:"id"`
	UserID          *int64          `json:"userId"`
	CustomerName    string          `json:"customerName"`
	CustomerPhone   string          `json:"customerPhone"`
	CustomerAddress string          `json:"customerAddress"`
	Note            string          `json:"note"`
	Total           decimal.Decimal `json:"total"`
	Status          Status          `json:"status"`
	StatusLabel     string          `json:"statusLabel"`
	SaleCode        *string         `json:"saleCode"`
	PaymentMemo     string          `json:"paymentMemo"`
	Items           []Item          `json:"items"`
	CreatedAt       time.Time       `json:"createdAt"`
}
