package review

import (
	"time"

	"github.com/shopspring/decimal"
)

// Review is a user's rating of a product. One review per (user, product):
// resubmitting overwrites the previous rating and comment.
type Review struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	UserName  string    `json:"userName,omitempty"`
	ProductID int64     `json:"productId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Stats is the aggregate shown on a product page.
type Stats struct {
	AverageRating decimal.Decimal `json:"averageRating"`
	TotalReviews  int             `json:"totalReviews"`
	Distribution  map[int]int     `json:"distribution"`
}
