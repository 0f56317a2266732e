package repository

import (
	"context"
	"time"

	"github.com/Freeeeeet/boat_booking/internal/model"
)

// Store groups the repositories of one datastore. Repositories obtained from
// the store passed to WithTx's callback share its transaction.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error

	Routes() RouteRepository
	Boats() BoatRepository
	Schedules() ScheduleRepository
	Bookings() BookingRepository
	Payments() PaymentRepository
}

type RouteRepository interface {
	Create(ctx context.Context, route *model.Route) error
	GetByID(ctx context.Context, id int64) (*model.Route, error)
	List(ctx context.Context, activeOnly bool) ([]*model.Route, error)
}

type BoatRepository interface {
	Create(ctx context.Context, boat *model.Boat) error
	GetByID(ctx context.Context, id int64) (*model.Boat, error)
	List(ctx context.Context, activeOnly bool) ([]*model.Boat, error)
}

// ScheduleQuery selects schedules. Zero values disable a condition.
type ScheduleQuery struct {
	// AvailableAt keeps active schedules with seats left departing after it.
	AvailableAt     time.Time
	Status          model.ScheduleStatus
	DeparturePort   string
	DestinationPort string
	DepartFrom      time.Time // inclusive
	DepartBefore    time.Time // exclusive
	// Search matches boat name or either port, case-insensitively.
	Search     string
	Descending bool
	Limit      int
	Offset     int
}

type ScheduleRepository interface {
	Create(ctx context.Context, schedule *model.Schedule) error
	// GetByID returns the schedule with Boat and Route loaded.
	GetByID(ctx context.Context, id int64) (*model.Schedule, error)
	// GetForUpdate is GetByID holding a row lock until the transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*model.Schedule, error)
	Update(ctx context.Context, schedule *model.Schedule) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, query ScheduleQuery) ([]*model.Schedule, error)
	Count(ctx context.Context, query ScheduleQuery) (int, error)

	// DecrementSeats takes n seats only if at least n remain and returns
	// domain.ErrInsufficientCapacity otherwise.
	DecrementSeats(ctx context.Context, id int64, n int) error
	IncrementSeats(ctx context.Context, id int64, n int) error
}

// BookingQuery selects bookings, newest first.
type BookingQuery struct {
	UserID        *int64
	ScheduleID    int64
	Search        string // booking code, customer name or email
	PaymentStatus model.PaymentStatus
	BookingStatus model.BookingStatus
	Limit         int
	Offset        int
}

type BookingRepository interface {
	// Create returns domain.ErrDuplicateBookingCode when the code is taken
	// and leaves any surrounding transaction usable.
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id int64) (*model.Booking, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, query BookingQuery) ([]*model.Booking, error)
	Count(ctx context.Context, query BookingQuery) (int, error)

	// SumBookedSeats sums passenger_count of confirmed bookings whose payment did not fail.
	SumBookedSeats(ctx context.Context, scheduleID int64) (int, error)

	// UpdateStatus writes booking status, payment status and notes.
	UpdateStatus(ctx context.Context, booking *model.Booking) error
	// MarkPaid flips payment_status to paid, or returns domain.ErrAlreadyPaid.
	MarkPaid(ctx context.Context, id int64) error
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	ListByBooking(ctx context.Context, bookingID int64) ([]*model.Payment, error)
	SumCompleted(ctx context.Context) (model.Money, error)
}
