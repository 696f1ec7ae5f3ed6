package repository

import (
	"context"
	"database/sql"

	"sanita/internal/payment"
)

type PostgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) *PostgresEventRepository {
	return &PostgresEventRepository{db: db}
}

func (r *PostgresEventRepository) Record(ctx context.Context, ev *payment.Event) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO payment_events
            (id, gateway, transaction_id, transaction_date, account_number, content,
             transfer_type, transfer_amount, accumulated, order_id, result)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		ev.ID,
		ev.Gateway,
		ev.TransactionID,
		ev.TransactionDate,
		ev.AccountNumber,
		ev.Content,
		ev.TransferType,
		ev.TransferAmount,
		ev.Accumulated,
		ev.OrderID,
		ev.Result,
	)
	return err
}

func (r *PostgresEventRepository) ListByOrder(ctx context.Context, orderID int64) ([]*payment.Event, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, gateway, transaction_id, transaction_date, account_number, content,
               transfer_type, transfer_amount, accumulated, order_id, result, received_at
        FROM payment_events WHERE order_id = $1 ORDER BY received_at DESC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*payment.Event
	for rows.Next() {
		ev := &payment.Event{}
		err := rows.Scan(
			&ev.ID,
			&ev.Gateway,
			&ev.TransactionID,
			&ev.TransactionDate,
			&ev.AccountNumber,
			&ev.Content,
			&ev.TransferType,
			&ev.TransferAmount,
			&ev.Accumulated,
			&ev.OrderID,
			&ev.Result,
			&ev.ReceivedAt,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}

	return events, rows.Err()
}
