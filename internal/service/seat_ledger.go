package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/boat_booking/internal/domain"
	"github.com/Freeeeeet/boat_booking/internal/model"
	"github.com/Freeeeeet/boat_booking/internal/repository"
)

// SeatLedger is the only code that moves a schedule's seat counter.
//
// Seats are consumed when a booking is created and are not given back when an
// administrator cancels it, so the counter and the booked-seat aggregate can
// drift apart. WithRestoreOnCancel switches to returning them.
type SeatLedger struct {
	restoreOnCancel bool
}

type SeatLedgerOption func(*SeatLedger)

func WithRestoreOnCancel() SeatLedgerOption {
	return func(l *SeatLedger) { l.restoreOnCancel = true }
}

func NewSeatLedger(opts ...SeatLedgerOption) *SeatLedger {
	l := &SeatLedger{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Reserve takes n seats of schedule if it still accepts bookings at now.
func (l *SeatLedger) Reserve(ctx context.Context, schedules repository.ScheduleRepository, schedule *model.Schedule, n int, now time.Time) error {
	if n < model.MinPassengers || n > model.MaxPassengers {
		return domain.Invalid("passenger_count",
			fmt.Sprintf("must be between %d and %d", model.MinPassengers, model.MaxPassengers))
	}
	if !schedule.AcceptsBookings(now) {
		return domain.ErrScheduleUnavailable
	}
	if schedule.AvailableSeats < n {
		return domain.ErrInsufficientCapacity
	}

	if err := schedules.DecrementSeats(ctx, schedule.ID, n); err != nil {
		return err
	}
	schedule.AvailableSeats -= n
	return nil
}

// Release runs when booking is cancelled.
func (l *SeatLedger) Release(ctx context.Context, schedules repository.ScheduleRepository, booking *model.Booking) error {
	if !l.restoreOnCancel {
		return nil
	}
	return schedules.IncrementSeats(ctx, booking.ScheduleID, booking.PassengerCount)
}

// Reclaim runs when a cancelled booking is confirmed again and undoes Release.
func (l *SeatLedger) Reclaim(ctx context.Context, schedules repository.ScheduleRepository, booking *model.Booking) error {
	if !l.restoreOnCancel {
		return nil
	}
	return schedules.DecrementSeats(ctx, booking.ScheduleID, booking.PassengerCount)
}

// RestoresOnCancel reports the configured cancellation policy.
func (l *SeatLedger) RestoresOnCancel() bool {
	return l.restoreOnCancel
}
