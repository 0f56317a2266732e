package memory

import (
	"context"
	"sort"

	"github.com/Freeeeeet/boat_booking/internal/domain"
	"github.com/Freeeeeet/boat_booking/internal/model"
)

type paymentRepository struct{ s *Store }

func (r *paymentRepository) Create(_ context.Context, payment *model.Payment) error {
	defer r.s.lock()()

	if _, ok := r.s.data.bookings[payment.BookingID]; !ok {
		return domain.NotFound("booking", payment.BookingID)
	}

	payment.ID = r.s.data.nextID()
	payment.CreatedAt = r.s.now()
	r.s.data.payments[payment.ID] = *payment
	return nil
}

func (r *paymentRepository) ListByBooking(_ context.Context, bookingID int64) ([]*model.Payment, error) {
	defer r.s.lock()()

	var payments []*model.Payment
	for _, payment := range r.s.data.payments {
		if payment.BookingID != bookingID {
			continue
		}
		payment := payment
		payments = append(payments, &payment)
	}
	sort.Slice(payments, func(i, j int) bool { return payments[i].ID < payments[j].ID })
	return payments, nil
}

func (r *paymentRepository) SumCompleted(_ context.Context) (model.Money, error) {
	defer r.s.lock()()

	var total model.Money
	for _, payment := range r.s.data.payments {
		if payment.Status == model.TransactionCompleted {
			total += payment.Amount
		}
	}
	return total, nil
}
