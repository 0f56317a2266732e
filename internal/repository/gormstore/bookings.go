package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/boat_booking/internal/domain"
	"github.com/Freeeeeet/boat_booking/internal/model"
	"github.com/Freeeeeet/boat_booking/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type bookingRepository struct {
	db *gorm.DB
}

func (r *bookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	row := Booking{
		BookingCode:      booking.BookingCode,
		UserID:           booking.UserID,
		ScheduleID:       booking.ScheduleID,
		CustomerName:     booking.CustomerName,
		CustomerEmail:    booking.CustomerEmail,
		CustomerPhone:    booking.CustomerPhone,
		PassengerCount:   booking.PassengerCount,
		TotalAmountCents: int64(booking.TotalAmount),
		PaymentStatus:    string(booking.PaymentStatus),
		BookingStatus:    string(booking.BookingStatus),
		Notes:            booking.Notes,
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "booking_code"}},
			DoNothing: true,
		}).
		Create(&row)
	if isUniqueConflict(result.Error) {
		return domain.ErrDuplicateBookingCode
	}
	if result.Error != nil {
		return fmt.Errorf("create booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrDuplicateBookingCode
	}

	booking.ID = row.ID
	booking.CreatedAt = row.CreatedAt
	booking.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id int64) (*model.Booking, error) {
	var row Booking
	err := r.db.WithContext(ctx).Take(&row, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("booking", id)
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return mapBooking(row), nil
}

func (r *bookingRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&Booking{}).Where("booking_code = ?", code).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check booking code: %w", err)
	}
	return count > 0, nil
}

func (r *bookingRepository) List(ctx context.Context, q repository.BookingQuery) ([]*model.Booking, error) {
	query := r.db.WithContext(ctx).Scopes(bookingFilter(q)).Order("created_at DESC, id DESC")
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if q.Offset > 0 {
		query = query.Offset(q.Offset)
	}

	var rows []Booking
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	bookings := make([]*model.Booking, 0, len(rows))
	for _, row := range rows {
		bookings = append(bookings, mapBooking(row))
	}
	return bookings, nil
}

func (r *bookingRepository) Count(ctx context.Context, q repository.BookingQuery) (int, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&Booking{}).Scopes(bookingFilter(q)).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	return int(total), nil
}

func (r *bookingRepository) SumBookedSeats(ctx context.Context, scheduleID int64) (int, error) {
	var sum sqlSum
	err := r.db.WithContext(ctx).
		Model(&Booking{}).
		Select("coalesce(sum(passenger_count),0) as total").
		Where("schedule_id = ? AND booking_status = ? AND payment_status <> ?",
			scheduleID, string(model.BookingStatusConfirmed), string(model.PaymentStatusFailed)).
		Scan(&sum).Error
	if err != nil {
		return 0, fmt.Errorf("sum booked seats: %w", err)
	}
	return int(sum.Total), nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, booking *model.Booking) error {
	updatedAt := now()
	result := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ?", booking.ID).
		Updates(map[string]any{
			"booking_status": string(booking.BookingStatus),
			"payment_status": string(booking.PaymentStatus),
			"notes":          booking.Notes,
			"updated_at":     updatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("update booking status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NotFound("booking", booking.ID)
	}
	booking.UpdatedAt = updatedAt
	return nil
}

// MarkPaid is a compare-and-set from any unpaid status to paid.
func (r *bookingRepository) MarkPaid(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ? AND payment_status <> ?", id, string(model.PaymentStatusPaid)).
		Updates(map[string]any{
			"payment_status": string(model.PaymentStatusPaid),
			"updated_at":     now(),
		})
	if result.Error != nil {
		return fmt.Errorf("mark booking paid: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&Booking{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("check booking: %w", err)
		}
		if count == 0 {
			return domain.NotFound("booking", id)
		}
		return domain.ErrAlreadyPaid
	}
	return nil
}

func bookingFilter(q repository.BookingQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q.UserID != nil {
			db = db.Where("user_id = ?", *q.UserID)
		}
		if q.ScheduleID != 0 {
			db = db.Where("schedule_id = ?", q.ScheduleID)
		}
		if q.PaymentStatus != "" {
			db = db.Where("payment_status = ?", string(q.PaymentStatus))
		}
		if q.BookingStatus != "" {
			db = db.Where("booking_status = ?", string(q.BookingStatus))
		}
		if q.Search != "" {
			pattern := "%" + strings.ToLower(q.Search) + "%"
			db = db.Where("(LOWER(booking_code) LIKE ? OR LOWER(customer_name) LIKE ? OR LOWER(customer_email) LIKE ?)",
				pattern, pattern, pattern)
		}
		return db
	}
}

func mapBooking(row Booking) *model.Booking {
	return &model.Booking{
		ID:             row.ID,
		BookingCode:    row.BookingCode,
		UserID:         row.UserID,
		ScheduleID:     row.ScheduleID,
		CustomerName:   row.CustomerName,
		CustomerEmail:  row.CustomerEmail,
		CustomerPhone:  row.CustomerPhone,
		PassengerCount: row.PassengerCount,
		TotalAmount:    model.Money(row.TotalAmountCents),
		PaymentStatus:  model.PaymentStatus(row.PaymentStatus),
		BookingStatus:  model.BookingStatus(row.BookingStatus),
		Notes:          row.Notes,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}
