package postgres

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/boat_booking/internal/domain"
	"github.com/Freeeeeet/boat_booking/internal/model"
	"github.com/Freeeeeet/boat_booking/internal/repository"
	"github.com/Freeeeeet/boat_booking/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

const bookingColumns = `
	id, booking_code, user_id, schedule_id, customer_name, customer_email, customer_phone,
	passenger_count, total_amount_cents, payment_status, booking_status, notes, created_at, updated_at
`

type BookingRepository struct {
	base.Repository
}

// Create inserts a booking; a taken booking code yields domain.ErrDuplicateBookingCode
func (r *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	// ON CONFLICT keeps the transaction usable so the caller can retry with a new code.
	query := `
		INSERT INTO bookings (booking_code, user_id, schedule_id, customer_name, customer_email, customer_phone,
		                      passenger_count, total_amount_cents, payment_status, booking_status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (booking_code) DO NOTHING
		RETURNING id, created_at, updated_at
	`

	err := r.DB().QueryRow(
		ctx, query,
		booking.BookingCode,
		booking.UserID,
		booking.ScheduleID,
		booking.CustomerName,
		booking.CustomerEmail,
		booking.CustomerPhone,
		booking.PassengerCount,
		booking.TotalAmount,
		booking.PaymentStatus,
		booking.BookingStatus,
		booking.Notes,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)

	if err != nil {
		if base.IsNotFound(err) || base.IsUniqueViolation(err, "bookings_booking_code_key") {
			return domain.ErrDuplicateBookingCode
		}
		return fmt.Errorf("create booking: %w", err)
	}

	return nil
}

// GetByID returns a booking without relations
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*model.Booking, error) {
	query := "SELECT " + bookingColumns + " FROM bookings WHERE id = $1"

	booking, err := scanBooking(r.DB().QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, domain.NotFound("booking", id)
		}
		return nil, fmt.Errorf("get booking by id: %w", err)
	}

	return booking, nil
}

// CodeExists checks whether a booking code is already used
func (r *BookingRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.DB().QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM bookings WHERE booking_code = $1)`, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check booking code: %w", err)
	}

	return exists, nil
}

// List returns bookings matching the query, newest first
func (r *BookingRepository) List(ctx context.Context, q repository.BookingQuery) ([]*model.Booking, error) {
	where := bookingWhere(q)

	query := "SELECT " + bookingColumns + " FROM bookings " + where.SQL() + " ORDER BY created_at DESC, id DESC"
	if q.Limit > 0 {
		query += " LIMIT " + where.Next(q.Limit)
	}
	if q.Offset > 0 {
		query += " OFFSET " + where.Next(q.Offset)
	}

	rows, err := r.DB().Query(ctx, query, where.Args()...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

// Count returns the number of bookings matching the query
func (r *BookingRepository) Count(ctx context.Context, q repository.BookingQuery) (int, error) {
	where := bookingWhere(q)

	var count int
	err := r.DB().QueryRow(ctx, "SELECT COUNT(*) FROM bookings "+where.SQL(), where.Args()...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count bookings: %w", err)
	}

	return count, nil
}

// SumBookedSeats aggregates passengers of confirmed, not failed bookings
func (r *BookingRepository) SumBookedSeats(ctx context.Context, scheduleID int64) (int, error) {
	query := `
		SELECT COALESCE(SUM(passenger_count), 0)::BIGINT
		FROM bookings
		WHERE schedule_id = $1
		  AND booking_status = 'confirmed'
		  AND payment_status <> 'failed'
	`

	var seats int
	if err := r.DB().QueryRow(ctx, query, scheduleID).Scan(&seats); err != nil {
		return 0, fmt.Errorf("sum booked seats: %w", err)
	}

	return seats, nil
}

// UpdateStatus writes the admin-editable fields
func (r *BookingRepository) UpdateStatus(ctx context.Context, booking *model.Booking) error {
	query := `
		UPDATE bookings
		SET booking_status = $1, payment_status = $2, notes = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`

	err := r.DB().QueryRow(ctx, query, booking.BookingStatus, booking.PaymentStatus, booking.Notes, booking.ID).
		Scan(&booking.UpdatedAt)
	if err != nil {
		if base.IsNotFound(err) {
			return domain.NotFound("booking", booking.ID)
		}
		return fmt.Errorf("update booking status: %w", err)
	}

	return nil
}

// MarkPaid flips payment_status to paid unless it already is
func (r *BookingRepository) MarkPaid(ctx context.Context, id int64) error {
	query := `
		UPDATE bookings
		SET payment_status = 'paid', updated_at = NOW()
		WHERE id = $1 AND payment_status <> 'paid'
	`

	affected, err := r.ExecAffected(ctx, query, id)
	if err != nil {
		return fmt.Errorf("mark booking paid: %w", err)
	}

	if affected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return domain.ErrAlreadyPaid
	}

	return nil
}

func bookingWhere(q repository.BookingQuery) *base.Where {
	where := &base.Where{}

	if q.UserID != nil {
		where.Add("user_id = ?", *q.UserID)
	}
	if q.ScheduleID != 0 {
		where.Add("schedule_id = ?", q.ScheduleID)
	}
	if q.PaymentStatus != "" {
		where.Add("payment_status = ?", q.PaymentStatus)
	}
	if q.BookingStatus != "" {
		where.Add("booking_status = ?", q.BookingStatus)
	}
	if q.Search != "" {
		like := "%" + q.Search + "%"
		where.Add("(booking_code ILIKE ? OR customer_name ILIKE ? OR customer_email ILIKE ?)", like, like, like)
	}

	return where
}

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var booking model.Booking
	err := row.Scan(
		&booking.ID,
		&booking.BookingCode,
		&booking.UserID,
		&booking.ScheduleID,
		&booking.CustomerName,
		&booking.CustomerEmail,
		&booking.CustomerPhone,
		&booking.PassengerCount,
		&booking.TotalAmount,
		&booking.PaymentStatus,
		&booking.BookingStatus,
		&booking.Notes,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &booking, nil
}
