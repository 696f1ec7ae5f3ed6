package service

import (
	"context"
	"database/sql"
	"strconv"
	"testing"

	"sanita/internal/catalog"
	catalogservice "sanita/internal/catalog/service"
	"sanita/internal/order"
	"sanita/internal/promotion"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderRepo struct {
	orders map[int64]*order.Order
	nextID int64
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[int64]*order.Order{}, nextID: 1}
}

func (r *fakeOrderRepo) Create(_ context.Context, o *order.Order, memoPrefix string) error {
	o.ID = r.nextID
	r.nextID++
	o.PaymentMemo = memoPrefix + strconv.FormatInt(o.ID, 10)
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id int64) (*order.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) GetAll(_ context.Context) ([]*order.Order, error) {
	var out []*order.Order
	for _, o := range r.orders {
		out = append(out, o)
	}
	return out, nil
}

func (r *fakeOrderRepo) GetByUserID(_ context.Context, userID int64) ([]*order.Order, error) {
	var out []*order.Order
	for _, o := range r.orders {
		if o.UserID != nil && *o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id int64, status order.Status) error {
	o, ok := r.orders[id]
	if !ok {
		return sql.ErrNoRows
	}
	o.Status = status
	return nil
}

func (r *fakeOrderRepo) MarkPaid(_ context.Context, id int64) (bool, error) {
	o, ok := r.orders[id]
	if !ok {
		return false, nil
	}
	if o.Status != order.StatusAwaitingPayment {
		return false, nil
	}
	o.Status = order.StatusPaid
	return true, nil
}

type fakeCatalog struct {
	prices map[int64]decimal.Decimal
	sold   map[int64]int
}

func newFakeCatalog(prices map[int64]decimal.Decimal) *fakeCatalog {
	return &fakeCatalog{prices: prices, sold: map[int64]int{}}
}

func (c *fakeCatalog) PriceOf(_ context.Context, productID int64) (decimal.Decimal, error) {
	price, ok := c.prices[productID]
	if !ok {
		return decimal.Decimal{}, catalog.ErrProductNotFound
	}
	return price, nil
}

func (c *fakeCatalog) IncrementSold(_ context.Context, productID int64, qty int) error {
	c.sold[productID] += qty
	return nil
}

type fakeSales struct {
	result  promotion.Result
	redeems map[string]int
}

func newFakeSales(result promotion.Result) *fakeSales {
	return &fakeSales{result: result, redeems: map[string]int{}}
}

func (s *fakeSales) Evaluate(_ context.Context, _ string, _ decimal.Decimal) (promotion.Result, error) {
	return s.result, nil
}

func (s *fakeSales) Redeem(_ context.Context, code string) error {
	s.redeems[code]++
	return nil
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func newTestService(repo *fakeOrderRepo, catalog *fakeCatalog, sales *fakeSales) *Service {
	return NewService(repo, catalog, sales, "DH")
}

func TestCreateUsesCatalogPrices(t *testing.T) {
	repo := newFakeOrderRepo()
	catalog := newFakeCatalog(map[int64]decimal.Decimal{
		1: dec("150000"),
		2: dec("80000"),
	})
	svc := newTestService(repo, catalog, newFakeSales(promotion.Result{}))

	o, err := svc.Create(context.Background(), CreateInput{
		CustomerName: "Nguyễn Văn A",
		Items: []CreateItem{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.True(t, o.Total.Equal(dec("380000")), "got %s", o.Total)
	assert.Equal(t, order.StatusAwaitingPayment, o.Status)
	assert.Equal(t, "DH1", o.PaymentMemo)
	require.Len(t, o.Items, 2)
	assert.True(t, o.Items[0].UnitPrice.Equal(dec("150000")))
}

func TestCreateRejectsBadInput(t *testing.T) {
	repo := newFakeOrderRepo()
	catalog := newFakeCatalog(map[int64]decimal.Decimal{1: dec("1000")})
	svc := newTestService(repo, catalog, newFakeSales(promotion.Result{}))

	_, err := svc.Create(context.Background(), CreateInput{})
	assert.ErrorIs(t, err, ErrEmptyOrder)

	_, err = svc.Create(context.Background(), CreateInput{
		Items: []CreateItem{{ProductID: 1, Quantity: 0}},
	})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.Create(context.Background(), CreateInput{
		Items: []CreateItem{{ProductID: 99, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrUnknownProduct)
}

// emptyProductRepo backs a real catalog service with no rows, so the lookup
// surfaces a missing product the same way the production wiring does.
type emptyProductRepo struct{}

func (emptyProductRepo) GetAll(context.Context, catalog.ListFilter) ([]*catalog.Product, error) {
	return nil, nil
}

func (emptyProductRepo) GetByID(context.Context, int64) (*catalog.Product, error) {
	return nil, sql.ErrNoRows
}

func (emptyProductRepo) GetBySlug(context.Context, string) (*catalog.Product, error) {
	return nil, sql.ErrNoRows
}

func (emptyProductRepo) Create(context.Context, *catalog.Product) error { return nil }
func (emptyProductRepo) Update(context.Context, *catalog.Product) error { return nil }
func (emptyProductRepo) Delete(context.Context, int64) error            { return nil }

func (emptyProductRepo) PriceOf(context.Context, int64) (decimal.Decimal, error) {
	return decimal.Decimal{}, sql.ErrNoRows
}

func (emptyProductRepo) IncrementSold(context.Context, int64, int) error { return nil }

func TestCreateUnknownProductThroughCatalogService(t *testing.T) {
	pricing := catalogservice.NewService(emptyProductRepo{})
	svc := NewService(newFakeOrderRepo(), pricing, newFakeSales(promotion.Result{}), "DH")

	_, err := svc.Create(context.Background(), CreateInput{
		Items: []CreateItem{{ProductID: 42, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrUnknownProduct)
}

func TestCreateAppliesSaleCode(t *testing.T) {
	repo := newFakeOrderRepo()
	catalog := newFakeCatalog(map[int64]decimal.Decimal{1: dec("1000000")})
	sales := newFakeSales(promotion.Result{
		Valid: true,
		Sale: &promotion.Applied{
			Code:           "SALE10",
			DiscountAmount: dec("50000"),
			FinalTotal:     dec("950000"),
		},
	})
	svc := newTestService(repo, catalog, sales)

	o, err := svc.Create(context.Background(), CreateInput{
		SaleCode: "SALE10",
		Items:    []CreateItem{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	assert.True(t, o.Total.Equal(dec("950000")))
	require.NotNil(t, o.SaleCode)
	assert.Equal(t, "SALE10", *o.SaleCode)
	// Evaluation at checkout must not consume usage.
	assert.Empty(t, sales.redeems)
}

func TestCreateRejectedSaleCode(t *testing.T) {
	repo := newFakeOrderRepo()
	catalog := newFakeCatalog(map[int64]decimal.Decimal{1: dec("1000")})
	sales := newFakeSales(promotion.Result{
		Valid:   false,
		Reason:  promotion.ReasonExpired,
		Message: "Mã giảm giá đã hết hạn",
	})
	svc := newTestService(repo, catalog, sales)

	_, err := svc.Create(context.Background(), CreateInput{
		SaleCode: "OLD",
		Items:    []CreateItem{{ProductID: 1, Quantity: 1}},
	})

	var rejected *SaleRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "Mã giảm giá đã hết hạn", rejected.Message)
}

func TestMarkPaidRedeemsOnce(t *testing.T) {
	repo := newFakeOrderRepo()
	catalog := newFakeCatalog(map[int64]decimal.Decimal{1: dec("1000000")})
	sales := newFakeSales(promotion.Result{
		Valid: true,
		Sale:  &promotion.Applied{Code: "SALE10", FinalTotal: dec("950000")},
	})
	svc := newTestService(repo, catalog, sales)

	o, err := svc.Create(context.Background(), CreateInput{
		SaleCode: "SALE10",
		Items:    []CreateItem{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	transitioned, err := svc.MarkPaid(context.Background(), o.ID)
	require.NoError(t, err)
	assert.True(t, transitioned)
	assert.Equal(t, 1, sales.redeems["SALE10"])

	// A duplicate confirmation is a no-op and must not redeem again.
	transitioned, err = svc.MarkPaid(context.Background(), o.ID)
	require.NoError(t, err)
	assert.False(t, transitioned)
	assert.Equal(t, 1, sales.redeems["SALE10"])
}

func TestUpdateStatusGating(t *testing.T) {
	repo := newFakeOrderRepo()
	catalog := newFakeCatalog(map[int64]decimal.Decimal{1: dec("1000")})
	svc := newTestService(repo, catalog, newFakeSales(promotion.Result{}))

	o, err := svc.Create(context.Background(), CreateInput{
		Items: []CreateItem{{ProductID: 1, Quantity: 3}},
	})
	require.NoError(t, err)

	// Skipping straight to SHIPPING is not in the table.
	_, err = svc.UpdateStatus(context.Background(), o.ID, order.StatusShipping, false)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// With force the move goes through anyway.
	got, err := svc.UpdateStatus(context.Background(), o.ID, order.StatusShipping, true)
	require.NoError(t, err)
	assert.Equal(t, order.StatusShipping, got.Status)

	_, err = svc.UpdateStatus(context.Background(), o.ID, order.Status("LOST"), false)
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestUpdateStatusDeliveredBumpsSoldCounters(t *testing.T) {
	repo := newFakeOrderRepo()
	catalog := newFakeCatalog(map[int64]decimal.Decimal{1: dec("1000"), 2: dec("2000")})
	svc := newTestService(repo, catalog, newFakeSales(promotion.Result{}))

	o, err := svc.Create(context.Background(), CreateInput{
		Items: []CreateItem{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 1},
		},
	})
	require.NoError(t, err)

	got, err := svc.UpdateStatus(context.Background(), o.ID, order.StatusDelivered, true)
	require.NoError(t, err)
	assert.Equal(t, order.StatusDelivered, got.Status)
	assert.Equal(t, 2, catalog.sold[1])
	assert.Equal(t, 1, catalog.sold[2])

	// Re-sending DELIVERED is a no-op; counters stay put.
	_, err = svc.UpdateStatus(context.Background(), o.ID, order.StatusDelivered, true)
	require.NoError(t, err)
	assert.Equal(t, 2, catalog.sold[1])
}

func TestUpdateStatusToPaidRoutesThroughMarkPaid(t *testing.T) {
	repo := newFakeOrderRepo()
	catalog := newFakeCatalog(map[int64]decimal.Decimal{1: dec("1000000")})
	sales := newFakeSales(promotion.Result{
		Valid: true,
		Sale:  &promotion.Applied{Code: "SALE10", FinalTotal: dec("950000")},
	})
	svc := newTestService(repo, catalog, sales)

	o, err := svc.Create(context.Background(), CreateInput{
		SaleCode: "SALE10",
		Items:    []CreateItem{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	got, err := svc.UpdateStatus(context.Background(), o.ID, order.StatusPaid, false)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPaid, got.Status)
	assert.Equal(t, 1, sales.redeems["SALE10"])
}

func TestPaymentMemoFor(t *testing.T) {
	svc := newTestService(newFakeOrderRepo(), newFakeCatalog(nil), newFakeSales(promotion.Result{}))
	assert.Equal(t, "DH482", svc.PaymentMemoFor(482))
}
