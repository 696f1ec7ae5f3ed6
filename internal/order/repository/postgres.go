package repository

import (
	"context"
	"database/sql"
	"fmt"

	"sanita/internal/order"
)

type PostgresOrderRepository struct {
	db *sql.DB
}

func NewPostgresOrderRepository(db *sql.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

const orderColumns = `id, user_id, customer_name, customer_phone, customer_address, note, total, status, sale_code, payment_memo, created_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (*order.Order, error) {
	o := &order.Order{}
	var status string
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.CustomerName,
		&o.CustomerPhone,
		&o.CustomerAddress,
		&o.Note,
		&o.Total,
		&status,
		&o.SaleCode,
		&o.PaymentMemo,
		&o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.Status, err = order.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	o.StatusLabel = o.Status.Label()

	return o, nil
}

// Create persists the order, its items and the payment memo in one
// transaction, so a half-written order is never visible. The memo needs the
// generated id, hence the second statement inside the same tx.
func (r *PostgresOrderRepository) Create(ctx context.Context, o *order.Order, memoPrefix string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
        INSERT INTO orders (user_id, customer_name, customer_phone, customer_address, note, total, status, sale_code)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at`,
		o.UserID,
		o.CustomerName,
		o.CustomerPhone,
		o.CustomerAddress,
		o.Note,
		o.Total,
		string(o.Status),
		o.SaleCode,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return err
	}

	for i := range o.Items {
		item := &o.Items[i]
		err = tx.QueryRowContext(ctx, `
            INSERT INTO order_items (order_id, product_id, quantity, unit_price)
            VALUES ($1, $2, $3, $4) RETURNING id`,
			o.ID, item.ProductID, item.Quantity, item.UnitPrice,
		).Scan(&item.ID)
		if err != nil {
			return err
		}
	}

	o.PaymentMemo = fmt.Sprintf("%s%d", memoPrefix, o.ID)
	if _, err := tx.ExecContext(ctx, `UPDATE orders SET payment_memo = $1 WHERE id = $2`, o.PaymentMemo, o.ID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PostgresOrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}

	o.Items, err = r.itemsFor(ctx, id)
	if err != nil {
		return nil, err
	}

	return o, nil
}

func (r *PostgresOrderRepository) itemsFor(ctx context.Context, orderID int64) ([]order.Item, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT i.id, i.product_id, p.name, i.quantity, i.unit_price
        FROM order_items i
        JOIN products p ON p.id = i.product_id
        WHERE i.order_id = $1
        ORDER BY i.id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []order.Item
	for rows.Next() {
		var item order.Item
		if err := rows.Scan(&item.ID, &item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *PostgresOrderRepository) listWhere(ctx context.Context, where string, args ...interface{}) ([]*order.Order, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders `+where+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, o := range orders {
		if o.Items, err = r.itemsFor(ctx, o.ID); err != nil {
			return nil, err
		}
	}

	return orders, nil
}

func (r *PostgresOrderRepository) GetAll(ctx context.Context) ([]*order.Order, error) {
	return r.listWhere(ctx, "")
}

func (r *PostgresOrderRepository) GetByUserID(ctx context.Context, userID int64) ([]*order.Order, error) {
	return r.listWhere(ctx, "WHERE user_id = $1", userID)
}

func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, id int64, status order.Status) error {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, string(status), id)
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

// MarkPaid flips an awaiting order to PAID and reports whether this call did
// the flip. Duplicate webhook deliveries find the guard already consumed and
// report false without touching the row.
func (r *PostgresOrderRepository) MarkPaid(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $1 WHERE id = $2 AND status = $3`,
		string(order.StatusPaid), id, string(order.StatusAwaitingPayment))
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// HasDeliveredProduct reports whether the user has at least one delivered
// order containing the product. Backs the review-eligibility gate.
func (r *PostgresOrderRepository) HasDeliveredProduct(ctx context.Context, userID, productID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
        SELECT EXISTS(
            SELECT 1 FROM orders o
            JOIN order_items i ON i.order_id = o.id
            WHERE o.user_id = $1 AND i.product_id = $2 AND o.status = $3
        )`, userID, productID, string(order.StatusDelivered)).Scan(&exists)
	return exists, err
}
