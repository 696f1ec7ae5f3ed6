package repository

import (
	"context"
	"database/sql"

	"sanita/internal/review"
)

type PostgresReviewRepository struct {
	db *sql.DB
}

func NewPostgresReviewRepository(db *sql.DB) *PostgresReviewRepository {
	return &PostgresReviewRepository{db: db}
}

// Upsert inserts the review or overwrites the existing one for the same
// (user, product) pair.
func (r *PostgresReviewRepository) Upsert(ctx context.Context, rv *review.Review) error {
	query := `
        INSERT INTO reviews (user_id, product_id, rating, comment)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (user_id, product_id)
        DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, updated_at = NOW()
        RETURNING id, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query, rv.UserID, rv.ProductID, rv.Rating, rv.Comment).
		Scan(&rv.ID, &rv.CreatedAt, &rv.UpdatedAt)
}

func (r *PostgresReviewRepository) GetByID(ctx context.Context, id int64) (*review.Review, error) {
	rv := &review.Review{}
	err := r.db.QueryRowContext(ctx, `
        SELECT id, user_id, product_id, rating, comment, created_at, updated_at
        FROM reviews WHERE id = $1`, id).
		Scan(&rv.ID, &rv.UserID, &rv.ProductID, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return rv, nil
}

func (r *PostgresReviewRepository) listQuery(ctx context.Context, query string, args ...interface{}) ([]*review.Review, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*review.Review
	for rows.Next() {
		rv := &review.Review{}
		err := rows.Scan(&rv.ID, &rv.UserID, &rv.UserName, &rv.ProductID, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}

	return reviews, rows.Err()
}

func (r *PostgresReviewRepository) GetByProduct(ctx context.Context, productID int64) ([]*review.Review, error) {
	return r.listQuery(ctx, `
        SELECT r.id, r.user_id, u.name, r.product_id, r.rating, r.comment, r.created_at, r.updated_at
        FROM reviews r
        JOIN users u ON u.id = r.user_id
        WHERE r.product_id = $1
        ORDER BY r.created_at DESC`, productID)
}

func (r *PostgresReviewRepository) GetAll(ctx context.Context) ([]*review.Review, error) {
	return r.listQuery(ctx, `
        SELECT r.id, r.user_id, u.name, r.product_id, r.rating, r.comment, r.created_at, r.updated_at
        FROM reviews r
        JOIN users u ON u.id = r.user_id
        ORDER BY r.created_at DESC`)
}

func (r *PostgresReviewRepository) RatingsFor(ctx context.Context, productID int64) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT rating FROM reviews WHERE product_id = $1`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ratings []int
	for rows.Next() {
		var rating int
		if err := rows.Scan(&rating); err != nil {
			return nil, err
		}
		ratings = append(ratings, rating)
	}

	return ratings, rows.Err()
}

func (r *PostgresReviewRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}
