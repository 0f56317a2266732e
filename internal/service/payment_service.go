package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/boat_booking/internal/domain"
	"github.com/Freeeeeet/boat_booking/internal/events"
	"github.com/Freeeeeet/boat_booking/internal/model"
	"github.com/Freeeeeet/boat_booking/internal/payment"
	"github.com/Freeeeeet/boat_booking/internal/repository"
	"go.uber.org/zap"
)

type PaymentService struct {
	store    repository.Store
	gateway  payment.Gateway
	bookings *BookingService
	logger   *zap.Logger
	opts     options
}

func NewPaymentService(
	store repository.Store,
	gateway payment.Gateway,
	bookings *BookingService,
	logger *zap.Logger,
	opts ...Option,
) *PaymentService {
	return &PaymentService{
		store:    store,
		gateway:  gateway,
		bookings: bookings,
		logger:   logger,
		opts:     newOptions(opts),
	}
}

// PaymentInput is the submitted card form. Only the last four digits and the
// cardholder name are ever stored.
type PaymentInput struct {
	PaymentMethod  string
	CardNumber     string
	ExpiryMonth    int
	ExpiryYear     int
	CVV            string
	CardholderName string
}

func (in PaymentInput) validate(currentYear int) error {
	if err := requireText("payment_method", in.PaymentMethod, 50); err != nil {
		return err
	}
	digits := in.cardDigits()
	if !allDigits(digits) || len(digits) < 12 || len(digits) > 19 {
		return domain.Invalid("card_number", "must be 12 to 19 digits")
	}
	if in.ExpiryMonth < 1 || in.ExpiryMonth > 12 {
		return domain.Invalid("expiry_month", "must be between 1 and 12")
	}
	if in.ExpiryYear < currentYear {
		return domain.Invalid("expiry_year", fmt.Sprintf("must be %d or later", currentYear))
	}
	if len(in.CVV) != 3 || !allDigits(in.CVV) {
		return domain.Invalid("cvv", "must be 3 digits")
	}
	return requireText("cardholder_name", in.CardholderName, 255)
}

func (in PaymentInput) cardDigits() string {
	return strings.NewReplacer(" ", "", "-", "").Replace(in.CardNumber)
}

func (in PaymentInput) lastFour() string {
	digits := in.cardDigits()
	return digits[len(digits)-4:]
}

// PaymentOutcome is the result of one payment attempt. A declined attempt is
// not an error: the booking stays pending and may be paid again.
type PaymentOutcome struct {
	Success bool           `json:"success"`
	Reason  string         `json:"reason,omitempty"`
	Payment *model.Payment `json:"payment,omitempty"`
}

// Err returns domain.ErrPaymentDeclined for a declined attempt.
func (o PaymentOutcome) Err() error {
	if o.Success {
		return nil
	}
	return domain.ErrPaymentDeclined
}

// SubmitPayment pays a booking on behalf of its owner or an admin.
func (s *PaymentService) SubmitPayment(ctx context.Context, actor model.Actor, bookingID int64, in PaymentInput) (PaymentOutcome, error) {
	booking, err := s.bookings.GetBookingFor(ctx, actor, bookingID)
	if err != nil {
		return PaymentOutcome{}, err
	}
	return s.ProcessPayment(ctx, booking, in)
}

// ProcessPayment charges the booking total. On approval the payment record and
// the paid status are written together; on decline nothing is written.
func (s *PaymentService) ProcessPayment(ctx context.Context, booking *model.Booking, in PaymentInput) (PaymentOutcome, error) {
	now := s.opts.now()

	if err := in.validate(now.In(s.opts.location).Year()); err != nil {
		return PaymentOutcome{}, err
	}
	if booking.IsPaid() {
		return PaymentOutcome{}, domain.ErrAlreadyPaid
	}

	result, err := s.gateway.Charge(ctx, payment.ChargeRequest{
		BookingID:      booking.ID,
		BookingCode:    booking.BookingCode,
		Amount:         booking.TotalAmount,
		Method:         in.PaymentMethod,
		CardNumber:     in.cardDigits(),
		ExpiryMonth:    in.ExpiryMonth,
		ExpiryYear:     in.ExpiryYear,
		CVV:            in.CVV,
		CardholderName: in.CardholderName,
	})
	if err != nil {
		return PaymentOutcome{}, fmt.Errorf("charge booking %s: %w", booking.BookingCode, err)
	}

	if !result.Approved {
		s.logger.Warn("Payment declined",
			zap.Int64("booking_id", booking.ID),
			zap.String("booking_code", booking.BookingCode),
			zap.String("reason", result.DeclineReason),
		)
		return PaymentOutcome{Success: false, Reason: result.DeclineReason}, nil
	}

	paidAt := now
	record := &model.Payment{
		BookingID:     booking.ID,
		PaymentMethod: in.PaymentMethod,
		Amount:        booking.TotalAmount,
		TransactionID: result.TransactionID,
		Status:        model.TransactionCompleted,
		Details: model.PaymentDetails{
			CardLastFour:   in.lastFour(),
			CardholderName: in.CardholderName,
		},
		PaidAt: &paidAt,
	}

	err = s.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := tx.Bookings().MarkPaid(ctx, booking.ID); err != nil {
			return err
		}
		return tx.Payments().Create(ctx, record)
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyPaid) {
			// The charge stands; Gateway has no void call.
			s.logger.Error("Charge approved for a booking paid concurrently",
				zap.Int64("booking_id", booking.ID),
				zap.String("transaction_id", result.TransactionID),
			)
		}
		return PaymentOutcome{}, fmt.Errorf("record payment: %w", err)
	}

	booking.PaymentStatus = model.PaymentStatusPaid
	booking.Payments = append(booking.Payments, record)

	s.logger.Info("Booking paid",
		zap.Int64("booking_id", booking.ID),
		zap.String("booking_code", booking.BookingCode),
		zap.String("transaction_id", record.TransactionID),
		zap.Stringer("amount", record.Amount),
	)

	event := events.NewBookingEvent(events.BookingPaid, booking, now)
	event.TransactionID = record.TransactionID
	if err := s.opts.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish booking event",
			zap.String("type", string(event.Type)),
			zap.Int64("booking_id", booking.ID),
			zap.Error(err),
		)
	}
	if err := s.opts.notifier.BookingPaid(ctx, booking, record); err != nil {
		s.logger.Warn("Failed to notify admins", zap.Int64("booking_id", booking.ID), zap.Error(err))
	}

	return PaymentOutcome{Success: true, Payment: record}, nil
}
