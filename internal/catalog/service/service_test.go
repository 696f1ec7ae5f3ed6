package service

import (
	"context"
	"database/sql"
	"testing"

	"sanita/internal/catalog"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProductRepo struct {
	products map[int64]*catalog.Product
	nextID   int64
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[int64]*catalog.Product{}, nextID: 1}
}

func (r *fakeProductRepo) GetAll(_ context.Context, _ catalog.ListFilter) ([]*catalog.Product, error) {
	var out []*catalog.Product
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id int64) (*catalog.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return p, nil
}

func (r *fakeProductRepo) GetBySlug(_ context.Context, slug string) (*catalog.Product, error) {
	for _, p := range r.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeProductRepo) Create(_ context.Context, p *catalog.Product) error {
	p.ID = r.nextID
	r.nextID++
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *catalog.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id int64) error {
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) PriceOf(_ context.Context, productID int64) (decimal.Decimal, error) {
	p, ok := r.products[productID]
	if !ok {
		return decimal.Decimal{}, sql.ErrNoRows
	}
	return p.Price, nil
}

func (r *fakeProductRepo) IncrementSold(_ context.Context, productID int64, qty int) error {
	r.products[productID].SoldCount += qty
	return nil
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Bồn cầu", "bon-cau"},
		{"Vòi sen tắm đứng", "voi-sen-tam-dung"},
		{"Lavabo Đặt Bàn 60cm", "lavabo-dat-ban-60cm"},
		{"  Chậu rửa  ", "chau-rua"},
		{"Gương LED (60x80)", "guong-led-60x80"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestCreateGeneratesSlug(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewService(repo)

	p := &catalog.Product{
		Name:  "Bồn cầu một khối",
		Price: decimal.NewFromInt(4500000),
	}
	require.NoError(t, svc.Create(context.Background(), p))
	assert.Equal(t, "bon-cau-mot-khoi", p.Slug)

	got, err := svc.GetBySlug(context.Background(), "bon-cau-mot-khoi")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestCreateRejectsNonPositivePrice(t *testing.T) {
	svc := NewService(newFakeProductRepo())

	err := svc.Create(context.Background(), &catalog.Product{Name: "x"})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	err = svc.Create(context.Background(), &catalog.Product{
		Name:  "x",
		Price: decimal.NewFromInt(-1),
	})
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestGetNotFound(t *testing.T) {
	svc := NewService(newFakeProductRepo())

	_, err := svc.Get(context.Background(), 404)
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = svc.PriceOf(context.Background(), 404)
	assert.ErrorIs(t, err, ErrProductNotFound)
}
