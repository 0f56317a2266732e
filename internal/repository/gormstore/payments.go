package gormstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Freeeeeet/boat_booking/internal/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type paymentRepository struct {
	db *gorm.DB
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	details, err := json.Marshal(payment.Details)
	if err != nil {
		return fmt.Errorf("encode payment details: %w", err)
	}

	var paidAt = payment.PaidAt
	if paidAt != nil {
		utc := paidAt.UTC()
		paidAt = &utc
	}

	row := Payment{
		BookingID:      payment.BookingID,
		PaymentMethod:  payment.PaymentMethod,
		AmountCents:    int64(payment.Amount),
		TransactionID:  payment.TransactionID,
		Status:         string(payment.Status),
		PaymentDetails: datatypes.JSON(details),
		PaidAt:         paidAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	payment.ID = row.ID
	payment.CreatedAt = row.CreatedAt
	return nil
}

func (r *paymentRepository) ListByBooking(ctx context.Context, bookingID int64) ([]*model.Payment, error) {
	var rows []Payment
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}

	payments := make([]*model.Payment, 0, len(rows))
	for _, row := range rows {
		payment, err := mapPayment(row)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, nil
}

func (r *paymentRepository) SumCompleted(ctx context.Context) (model.Money, error) {
	var sum sqlSum
	err := r.db.WithContext(ctx).
		Model(&Payment{}).
		Select("coalesce(sum(amount_cents),0) as total").
		Where("status = ?", string(model.TransactionCompleted)).
		Scan(&sum).Error
	if err != nil {
		return 0, fmt.Errorf("sum completed payments: %w", err)
	}
	return model.Money(sum.Total), nil
}

func mapPayment(row Payment) (*model.Payment, error) {
	payment := &model.Payment{
		ID:            row.ID,
		BookingID:     row.BookingID,
		PaymentMethod: row.PaymentMethod,
		Amount:        model.Money(row.AmountCents),
		TransactionID: row.TransactionID,
		Status:        model.TransactionStatus(row.Status),
		PaidAt:        row.PaidAt,
		CreatedAt:     row.CreatedAt,
	}
	if len(row.PaymentDetails) > 0 {
		if err := json.Unmarshal(row.PaymentDetails, &payment.Details); err != nil {
			return nil, fmt.Errorf("decode payment details %d: %w", row.ID, err)
		}
	}
	return payment, nil
}
