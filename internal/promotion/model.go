package promotion

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Kind says how the discount value of a sale code is interpreted.
type Kind int

const (
	// KindPercent discounts a percentage of the order total, optionally
	// capped by MaxDiscount.
	KindPercent Kind = iota
	// KindFixed discounts a fixed amount.
	KindFixed
)

func (k Kind) String() string {
	switch k {
	case KindPercent:
		return "PERCENT"
	case KindFixed:
		return "FIXED"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func ParseKind(s string) (Kind, error) {
	switch s {
	case "PERCENT":
		return KindPercent, nil
	case "FIXED":
		return KindFixed, nil
	}
	return 0, fmt.Errorf("unknown discount kind %q", s)
}

func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Sale is a shopper-entered discount code. Codes are stored upper-cased and
// looked up case-insensitively.
type Sale struct {
	ID          int64               `json:"id"`
	Code        string              `json:"code"`
	Discount    decimal.Decimal     `json:"discount"`
	Kind        Kind                `json:"type"`
	MinOrder    decimal.Decimal     `json:"minOrder"`
	MaxDiscount decimal.NullDecimal `json:"maxDiscount"`
	UsageLimit  int                 `json:"usageLimit"`
	UsedCount   int                 `json:"usedCount"`
	IsActive    bool                `json:"isActive"`
	ExpiresAt   *time.Time          `json:"expiresAt"`
	CreatedAt   time.Time           `json:"createdAt"`
}

// Reason identifies why a sale code was rejected.
type Reason string

const (
	ReasonNotFound     Reason = "NOT_FOUND"
	ReasonDisabled     Reason = "DISABLED"
	ReasonExpired      Reason = "EXPIRED"
	ReasonExhausted    Reason = "EXHAUSTED_USAGE"
	ReasonBelowMinimum Reason = "BELOW_MINIMUM"
)

// Applied is the successful outcome of evaluating a sale code against an
// order total.
type Applied struct {
	Code           string          `json:"code"`
	Discount       decimal.Decimal `json:"discount"`
	Kind           Kind            `json:"type"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	FinalTotal     decimal.Decimal `json:"finalTotal"`
}

// Result is a discriminated evaluation outcome. Invalid codes are an expected
// input, so rejections are carried here rather than as errors; Message is the
// user-facing text shown to the shopper.
type Result struct {
	Valid   bool
	Reason  Reason
	Message string
	Sale    *Applied
}
