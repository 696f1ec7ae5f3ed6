package repository

import (
	"context"
	"database/sql"

	"sanita/internal/category"
)

type PostgresCategoryRepository struct {
	db *sql.DB
}

func NewPostgresCategoryRepository(db *sql.DB) *PostgresCategoryRepository {
	return &PostgresCategoryRepository{db: db}
}

// GetAll returns every category with its subcategories nested, the shape the
// storefront navigation consumes.
func (r *PostgresCategoryRepository) GetAll(ctx context.Context) ([]*category.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, slug FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*category.Category
	byID := map[int64]*category.Category{}
	for rows.Next() {
		c := &category.Category{Subcategories: []category.Subcategory{}}
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, err
		}
		categories = append(categories, c)
		byID[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	subRows, err := r.db.QueryContext(ctx,
		`SELECT id, category_id, name, slug FROM subcategories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer subRows.Close()

	for subRows.Next() {
		var sub category.Subcategory
		if err := subRows.Scan(&sub.ID, &sub.CategoryID, &sub.Name, &sub.Slug); err != nil {
			return nil, err
		}
		if c, ok := byID[sub.CategoryID]; ok {
			c.Subcategories = append(c.Subcategories, sub)
		}
	}

	return categories, subRows.Err()
}

func (r *PostgresCategoryRepository) GetCategoryByID(ctx context.Context, id int64) (*category.Category, error) {
	c := &category.Category{Subcategories: []category.Subcategory{}}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, slug FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Slug)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *PostgresCategoryRepository) CreateCategory(ctx context.Context, c *category.Category) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO categories (name, slug) VALUES ($1, $2) RETURNING id`,
		c.Name, c.Slug).Scan(&c.ID)
}

func (r *PostgresCategoryRepository) UpdateCategory(ctx context.Context, c *category.Category) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = $1, slug = $2 WHERE id = $3`, c.Name, c.Slug, c.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *PostgresCategoryRepository) DeleteCategory(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *PostgresCategoryRepository) CreateSubcategory(ctx context.Context, sub *category.Subcategory) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO subcategories (category_id, name, slug) VALUES ($1, $2, $3) RETURNING id`,
		sub.CategoryID, sub.Name, sub.Slug).Scan(&sub.ID)
}

func (r *PostgresCategoryRepository) UpdateSubcategory(ctx context.Context, sub *category.Subcategory) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE subcategories SET name = $1, slug = $2 WHERE id = $3`, sub.Name, sub.Slug, sub.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *PostgresCategoryRepository) DeleteSubcategory(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM subcategories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
