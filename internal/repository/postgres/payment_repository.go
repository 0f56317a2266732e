package postgres

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/boat_booking/internal/model"
	"github.com/Freeeeeet/boat_booking/internal/repository/base"
)

type PaymentRepository struct {
	base.Repository
}

// Create inserts a payment attempt
func (r *PaymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	query := `
		INSERT INTO payments (booking_id, payment_method, amount_cents, transaction_id, status, payment_details, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.DB().QueryRow(
		ctx, query,
		payment.BookingID,
		payment.PaymentMethod,
		payment.Amount,
		payment.TransactionID,
		payment.Status,
		payment.Details,
		payment.PaidAt,
	).Scan(&payment.ID, &payment.CreatedAt)

	if err != nil {
		return fmt.Errorf("create payment: %w", err)
	}

	return nil
}

// ListByBooking returns payment attempts of a booking, oldest first
func (r *PaymentRepository) ListByBooking(ctx context.Context, bookingID int64) ([]*model.Payment, error) {
	query := `
		SELECT id, booking_id, payment_method, amount_cents, transaction_id, status, payment_details, paid_at, created_at
		FROM payments
		WHERE booking_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.DB().Query(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []*model.Payment
	for rows.Next() {
		var payment model.Payment
		err := rows.Scan(
			&payment.ID,
			&payment.BookingID,
			&payment.PaymentMethod,
			&payment.Amount,
			&payment.TransactionID,
			&payment.Status,
			&payment.Details,
			&payment.PaidAt,
			&payment.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, &payment)
	}

	return payments, rows.Err()
}

// SumCompleted totals the amounts of completed payments
func (r *PaymentRepository) SumCompleted(ctx context.Context) (model.Money, error) {
	var total model.Money
	err := r.DB().QueryRow(ctx, `SELECT COALESCE(SUM(amount_cents), 0)::BIGINT FROM payments WHERE status = 'completed'`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum completed payments: %w", err)
	}

	return total, nil
}
