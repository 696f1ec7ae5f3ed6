package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"sanita/internal/catalog"

	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = catalog.ErrProductNotFound
	ErrInvalidPrice    = errors.New("price must be positive")
)

type ProductRepository interface {
	GetAll(ctx context.Context, filter catalog.ListFilter) ([]*catalog.Product, error)
	GetByID(ctx context.Context, id int64) (*catalog.Product, error)
	GetBySlug(ctx context.Context, slug string) (*catalog.Product, error)
	Create(ctx context.Context, p *catalog.Product) error
	Update(ctx context.Context, p *catalog.Product) error
	Delete(ctx context.Context, id int64) error
	PriceOf(ctx context.Context, productID int64) (decimal.Decimal, error)
	IncrementSold(ctx context.Context, productID int64, qty int) error
}

type Service struct {
	repo ProductRepository
}

func NewService(repo ProductRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filter catalog.ListFilter) ([]*catalog.Product, error) {
	return s.repo.GetAll(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id int64) (*catalog.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	return p, err
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	p, err := s.repo.GetBySlug(ctx, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	return p, err
}

func (s *Service) Create(ctx context.Context, p *catalog.Product) error {
	if !p.Price.IsPositive() {
		return ErrInvalidPrice
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Update(ctx context.Context, p *catalog.Product) error {
	if !p.Price.IsPositive() {
		return ErrInvalidPrice
	}
	if _, err := s.Get(ctx, p.ID); err != nil {
		return err
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// PriceOf is the pricing source for order creation.
func (s *Service) PriceOf(ctx context.Context, productID int64) (decimal.Decimal, error) {
	price, err := s.repo.PriceOf(ctx, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Decimal{}, ErrProductNotFound
	}
	return price, err
}

func (s *Service) IncrementSold(ctx context.Context, productID int64, qty int) error {
	return s.repo.IncrementSold(ctx, productID, qty)
}

// vnFold maps Vietnamese letters to their base ASCII form for slugs.
var vnFold = strings.NewReplacer(
	"à", "a", "á", "a", "ả", "a", "ã", "a", "ạ", "a",
	"ă", "a", "ằ", "a", "ắ", "a", "ẳ", "a", "ẵ", "a", "ặ", "a",
	"â", "a", "ầ", "a", "ấ", "a", "ẩ", "a", "ẫ", "a", "ậ", "a",
	"è", "e", "é", "e", "ẻ", "e", "ẽ", "e", "ẹ", "e",
	"ê", "e", "ề", "e", "ế", "e", "ể", "e", "ễ", "e", "ệ", "e",
	"ì", "i", "í", "i", "ỉ", "i", "ĩ", "i", "ị", "i",
	"ò", "o", "ó", "o", "ỏ", "o", "õ", "o", "ọ", "o",
	"ô", "o", "ồ", "o", "ố", "o", "ổ", "o", "ỗ", "o", "ộ", "o",
	"ơ", "o", "ờ", "o", "ớ", "o", "ở", "o", "ỡ", "o", "ợ", "o",
	"ù", "u", "ú", "u", "ủ", "u", "ũ", "u", "ụ", "u",
	"ư", "u", "ừ", "u", "ứ", "u", "ử", "u", "ữ", "u", "ự", "u",
	"ỳ", "y", "ý", "y", "ỷ", "y", "ỹ", "y", "ỵ", "y",
	"đ", "d",
)

// Slugify builds a URL slug from a product name, folding Vietnamese
// diacritics first so "Bồn cầu" becomes "bon-cau".
func Slugify(name string) string {
	s := vnFold.Replace(strings.ToLower(strings.TrimSpace(name)))
	var b strings.Builder
	lastHyphen := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
