package repository

import (
	"context"
	"database/sql"

	"sanita/internal/promotion"
)

type PostgresSaleRepository struct {
	db *sql.DB
}

func NewPostgresSaleRepository(db *sql.DB) *PostgresSaleRepository {
	return &PostgresSaleRepository{db: db}
}

const saleColumns = `id, code, discount, kind, min_order, max_discount, usage_limit, used_count, is_active, expires_at, created_at`

func scanSale(row interface{ Scan(...interface{}) error }) (*promotion.Sale, error) {
	sale := &promotion.Sale{}
	var kind string
	err := row.Scan(
		&sale.ID,
		&sale.Code,
		&sale.Discount,
		&kind,
		&sale.MinOrder,
		&sale.MaxDiscount,
		&sale.UsageLimit,
		&sale.UsedCount,
		&sale.IsActive,
		&sale.ExpiresAt,
		&sale.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	sale.Kind, err = promotion.ParseKind(kind)
	if err != nil {
		return nil, err
	}

	return sale, nil
}

func (r *PostgresSaleRepository) Create(ctx context.Context, sale *promotion.Sale) error {
	query := `
        INSERT INTO sales (code, discount, kind, min_order, max_discount, usage_limit, is_active, expires_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		sale.Code,
		sale.Discount,
		sale.Kind.String(),
		sale.MinOrder,
		sale.MaxDiscount,
		sale.UsageLimit,
		sale.IsActive,
		sale.ExpiresAt,
	).Scan(&sale.ID, &sale.CreatedAt)
}

func (r *PostgresSaleRepository) GetByCode(ctx context.Context, code string) (*promotion.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE code = $1`
	return scanSale(r.db.QueryRowContext(ctx, query, code))
}

func (r *PostgresSaleRepository) GetAll(ctx context.Context) ([]*promotion.Sale, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+saleColumns+` FROM sales ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []*promotion.Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}

	return sales, rows.Err()
}

func (r *PostgresSaleRepository) Update(ctx context.Context, sale *promotion.Sale) error {
	query := `UPDATE sales SET
              code = $1,
              discount = $2,
              kind = $3,
              min_order = $4,
              max_discount = $5,
              usage_limit = $6,
              is_active = $7,
              expires_at = $8
              WHERE id = $9`
	_, err := r.db.ExecContext(ctx, query,
		sale.Code,
		sale.Discount,
		sale.Kind.String(),
		sale.MinOrder,
		sale.MaxDiscount,
		sale.UsageLimit,
		sale.IsActive,
		sale.ExpiresAt,
		sale.ID)
	return err
}

func (r *PostgresSaleRepository) SetActive(ctx context.Context, id int64, active bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE sales SET is_active = $1 WHERE id = $2`, active, id)
	return err
}

func (r *PostgresSaleRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sales WHERE id = $1`, id)
	return err
}

// Redeem performs the atomic increment-and-check. Two concurrent redemptions
// of a code with one remaining usage race on this statement; the database
// lets exactly one of them through.
func (r *PostgresSaleRepository) Redeem(ctx context.Context, code string) (bool, error) {
	query := `UPDATE sales SET used_count = used_count + 1
              WHERE code = $1 AND used_count < usage_limit`
	res, err := r.db.ExecContext(ctx, query, code)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}
