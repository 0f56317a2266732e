package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/Freeeeeet/boat_booking/internal/domain"
	"github.com/Freeeeeet/boat_booking/internal/model"
	"github.com/Freeeeeet/boat_booking/internal/repository"
)

type bookingRepository struct{ s *Store }

func (r *bookingRepository) Create(_ context.Context, booking *model.Booking) error {
	defer r.s.lock()()

	if _, ok := r.s.data.schedules[booking.ScheduleID]; !ok {
		return domain.NotFound("schedule", booking.ScheduleID)
	}
	for _, existing := range r.s.data.bookings {
		if existing.BookingCode == booking.BookingCode {
			return domain.ErrDuplicateBookingCode
		}
	}

	booking.ID = r.s.data.nextID()
	booking.CreatedAt = r.s.now()
	booking.UpdatedAt = booking.CreatedAt
	r.s.data.bookings[booking.ID] = stripBooking(*booking)
	return nil
}

func (r *bookingRepository) GetByID(_ context.Context, id int64) (*model.Booking, error) {
	defer r.s.lock()()

	booking, ok := r.s.data.bookings[id]
	if !ok {
		return nil, domain.NotFound("booking", id)
	}
	return &booking, nil
}

func (r *bookingRepository) CodeExists(_ context.Context, code string) (bool, error) {
	defer r.s.lock()()

	for _, booking := range r.s.data.bookings {
		if booking.BookingCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *bookingRepository) List(_ context.Context, q repository.BookingQuery) ([]*model.Booking, error) {
	defer r.s.lock()()

	bookings := r.matching(q)
	sort.Slice(bookings, func(i, j int) bool {
		if !bookings[i].CreatedAt.Equal(bookings[j].CreatedAt) {
			return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
		}
		return bookings[i].ID > bookings[j].ID
	})
	return paginate(bookings, q.Offset, q.Limit), nil
}

func (r *bookingRepository) Count(_ context.Context, q repository.BookingQuery) (int, error) {
	defer r.s.lock()()
	return len(r.matching(q)), nil
}

func (r *bookingRepository) SumBookedSeats(_ context.Context, scheduleID int64) (int, error) {
	defer r.s.lock()()

	seats := 0
	for _, booking := range r.s.data.bookings {
		if booking.ScheduleID == scheduleID && booking.CountsTowardBookedSeats() {
			seats += booking.PassengerCount
		}
	}
	return seats, nil
}

func (r *bookingRepository) UpdateStatus(_ context.Context, booking *model.Booking) error {
	defer r.s.lock()()

	stored, ok := r.s.data.bookings[booking.ID]
	if !ok {
		return domain.NotFound("booking", booking.ID)
	}
	stored.BookingStatus = booking.BookingStatus
	stored.PaymentStatus = booking.PaymentStatus
	stored.Notes = copyString(booking.Notes)
	stored.UpdatedAt = r.s.now()
	booking.UpdatedAt = stored.UpdatedAt
	r.s.data.bookings[booking.ID] = stored
	return nil
}

func (r *bookingRepository) MarkPaid(_ context.Context, id int64) error {
	defer r.s.lock()()

	stored, ok := r.s.data.bookings[id]
	if !ok {
		return domain.NotFound("booking", id)
	}
	if stored.PaymentStatus == model.PaymentStatusPaid {
		return domain.ErrAlreadyPaid
	}
	stored.PaymentStatus = model.PaymentStatusPaid
	stored.UpdatedAt = r.s.now()
	r.s.data.bookings[id] = stored
	return nil
}

func (r *bookingRepository) matching(q repository.BookingQuery) []*model.Booking {
	search := strings.ToLower(q.Search)

	var out []*model.Booking
	for _, stored := range r.s.data.bookings {
		booking := stored
		switch {
		case q.UserID != nil && !booking.OwnedBy(*q.UserID):
			continue
		case q.ScheduleID != 0 && booking.ScheduleID != q.ScheduleID:
			continue
		case q.PaymentStatus != "" && booking.PaymentStatus != q.PaymentStatus:
			continue
		case q.BookingStatus != "" && booking.BookingStatus != q.BookingStatus:
			continue
		case search != "" &&
			!strings.Contains(strings.ToLower(booking.BookingCode), search) &&
			!strings.Contains(strings.ToLower(booking.CustomerName), search) &&
			!strings.Contains(strings.ToLower(booking.CustomerEmail), search):
			continue
		}
		out = append(out, &booking)
	}
	return out
}

func stripBooking(booking model.Booking) model.Booking {
	booking.UserID = copyInt64(booking.UserID)
	booking.Notes = copyString(booking.Notes)
	booking.Schedule = nil
	booking.Payments = nil
	return booking
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
