package repository

import (
	"context"
	"database/sql"
	"strconv"

	"sanita/internal/catalog"

	"github.com/shopspring/decimal"
)

type PostgresProductRepository struct {
	db *sql.DB
}

func NewPostgresProductRepository(db *sql.DB) *PostgresProductRepository {
	return &PostgresProductRepository{db: db}
}

const productColumns = `id, name, slug, description, price, image, stock, sold_count, subcategory_id, created_at`

func scanProduct(row interface{ Scan(...interface{}) error }) (*catalog.Product, error) {
	p := &catalog.Product{}
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.Price,
		&p.Image,
		&p.Stock,
		&p.SoldCount,
		&p.SubcategoryID,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresProductRepository) GetAll(ctx context.Context, filter catalog.ListFilter) ([]*catalog.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []interface{}{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += ` AND (name ILIKE $1 OR description ILIKE $1)`
	}
	if filter.SubcategoryID != nil {
		args = append(args, *filter.SubcategoryID)
		query += ` AND subcategory_id = $` + strconv.Itoa(len(args))
	}

	if filter.SortBySold {
		query += ` ORDER BY sold_count DESC`
	} else {
		query += ` ORDER BY created_at DESC`
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*catalog.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

func (r *PostgresProductRepository) GetByID(ctx context.Context, id int64) (*catalog.Product, error) {
	return scanProduct(r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
}

func (r *PostgresProductRepository) GetBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	return scanProduct(r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE slug = $1`, slug))
}

func (r *PostgresProductRepository) Create(ctx context.Context, p *catalog.Product) error {
	query := `
        INSERT INTO products (name, slug, description, price, image, stock, subcategory_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		p.Name, p.Slug, p.Description, p.Price, p.Image, p.Stock, p.SubcategoryID,
	).Scan(&p.ID, &p.CreatedAt)
}

func (r *PostgresProductRepository) Update(ctx context.Context, p *catalog.Product) error {
	query := `UPDATE products SET
              name = $1,
              slug = $2,
              description = $3,
              price = $4,
              image = $5,
              stock = $6,
              subcategory_id = $7
              WHERE id = $8`
	_, err := r.db.ExecContext(ctx, query,
		p.Name, p.Slug, p.Description, p.Price, p.Image, p.Stock, p.SubcategoryID, p.ID)
	return err
}

func (r *PostgresProductRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	return err
}

// PriceOf returns the current catalog price. Order creation reads prices
// through this, never from the client.
func (r *PostgresProductRepository) PriceOf(ctx context.Context, productID int64) (decimal.Decimal, error) {
	var price decimal.Decimal
	err := r.db.QueryRowContext(ctx, `SELECT price FROM products WHERE id = $1`, productID).Scan(&price)
	return price, err
}

func (r *PostgresProductRepository) IncrementSold(ctx context.Context, productID int64, qty int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE products SET sold_count = sold_count + $1 WHERE id = $2`, qty, productID)
	return err
}
