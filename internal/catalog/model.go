package catalog

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrProductNotFound is the shared not-found sentinel for product lookups.
// Every consumer of the catalog, including the order flow, matches on this
// rather than on a storage error.
var ErrProductNotFound = errors.New("product not found")

type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Slug          string          `json:"slug"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Image         string          `json:"image"`
	Stock         int             `json:"stock"`
	SoldCount     int             `json:"soldCount"`
	SubcategoryID *int64          `json:"subcategoryId"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// ListFilter narrows and orders the product listing.
type ListFilter struct {
	Search        string
	SubcategoryID *int64
	// SortBySold orders by best-selling instead of newest.
	SortBySold bool
}
