// Package storetest holds the behavior every repository.Store backend must share.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Freeeeeet/boat_booking/internal/domain"
	"github.com/Freeeeeet/boat_booking/internal/model"
	"github.com/Freeeeeet/boat_booking/internal/repository"
	"github.com/stretchr/testify/require"
)

// Fixture is a route, a boat and one schedule on them.
type Fixture struct {
	Route    *model.Route
	Boat     *model.Boat
	Schedule *model.Schedule
}

// Seed creates a fixture whose schedule departs in two days with capacity seats.
func Seed(t *testing.T, store repository.Store, capacity int, price model.Money) Fixture {
	t.Helper()
	ctx := context.Background()

	route := &model.Route{
		DeparturePort:   "Harbor",
		DestinationPort: "Island",
		DurationMinutes: 150,
		BasePrice:       price,
		Status:          model.RouteStatusActive,
	}
	require.NoError(t, store.Routes().Create(ctx, route))

	boat := &model.Boat{Name: "Sea Breeze", Capacity: capacity, Status: model.BoatStatusActive}
	require.NoError(t, store.Boats().Create(ctx, boat))

	departure := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	schedule := &model.Schedule{
		BoatID:         boat.ID,
		RouteID:        route.ID,
		DepartureTime:  departure,
		ArrivalTime:    departure.Add(150 * time.Minute),
		Price:          price,
		AvailableSeats: capacity,
		Status:         model.ScheduleStatusActive,
	}
	require.NoError(t, store.Schedules().Create(ctx, schedule))

	return Fixture{Route: route, Boat: boat, Schedule: schedule}
}

// NewBooking returns an unsaved confirmed, pending booking.
func NewBooking(scheduleID int64, code string, passengers int, userID *int64) *model.Booking {
	return &model.Booking{
		BookingCode:    code,
		UserID:         userID,
		ScheduleID:     scheduleID,
		CustomerName:   "Jane Doe",
		CustomerEmail:  "jane@example.com",
		CustomerPhone:  "+6281234567",
		PassengerCount: passengers,
		TotalAmount:    model.MoneyFromUnits(3500).Mul(passengers),
		PaymentStatus:  model.PaymentStatusPending,
		BookingStatus:  model.BookingStatusConfirmed,
	}
}

// Run executes the shared store contract against stores built by newStore.
func Run(t *testing.T, newStore func(t *testing.T) repository.Store) {
	t.Run("seat counter is compare-and-set", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		fx := Seed(t, store, 5, model.MoneyFromUnits(3500))

		require.NoError(t, store.Schedules().DecrementSeats(ctx, fx.Schedule.ID, 3))
		err := store.Schedules().DecrementSeats(ctx, fx.Schedule.ID, 3)
		require.ErrorIs(t, err, domain.ErrInsufficientCapacity)

		schedule, err := store.Schedules().GetByID(ctx, fx.Schedule.ID)
		require.NoError(t, err)
		require.Equal(t, 2, schedule.AvailableSeats)
		require.NotNil(t, schedule.Boat)
		require.NotNil(t, schedule.Route)
		require.Equal(t, "Sea Breeze", schedule.Boat.Name)

		require.NoError(t, store.Schedules().IncrementSeats(ctx, fx.Schedule.ID, 1))
		schedule, err = store.Schedules().GetByID(ctx, fx.Schedule.ID)
		require.NoError(t, err)
		require.Equal(t, 3, schedule.AvailableSeats)

		err = store.Schedules().DecrementSeats(ctx, fx.Schedule.ID+1000, 1)
		require.True(t, domain.IsNotFound(err), "got %v", err)
	})

	t.Run("transaction rolls back on error", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		fx := Seed(t, store, 5, model.MoneyFromUnits(100))

		boom := errors.New("boom")
		err := store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
			if err := tx.Schedules().DecrementSeats(ctx, fx.Schedule.ID, 4); err != nil {
				return err
			}
			if err := tx.Bookings().Create(ctx, NewBooking(fx.Schedule.ID, "FBROLLBACK", 4, nil)); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		schedule, err := store.Schedules().GetByID(ctx, fx.Schedule.ID)
		require.NoError(t, err)
		require.Equal(t, 5, schedule.AvailableSeats)

		exists, err := store.Bookings().CodeExists(ctx, "FBROLLBACK")
		require.NoError(t, err)
		require.False(t, exists)
	})

	t.Run("duplicate booking code keeps transaction usable", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		fx := Seed(t, store, 10, model.MoneyFromUnits(100))

		require.NoError(t, store.Bookings().Create(ctx, NewBooking(fx.Schedule.ID, "FBTAKEN001", 1, nil)))

		err := store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
			err := tx.Bookings().Create(ctx, NewBooking(fx.Schedule.ID, "FBTAKEN001", 1, nil))
			require.ErrorIs(t, err, domain.ErrDuplicateBookingCode)
			return tx.Bookings().Create(ctx, NewBooking(fx.Schedule.ID, "FBFRESH001", 1, nil))
		})
		require.NoError(t, err)

		exists, err := store.Bookings().CodeExists(ctx, "FBFRESH001")
		require.NoError(t, err)
		require.True(t, exists)
	})

	t.Run("mark paid once", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		fx := Seed(t, store, 10, model.MoneyFromUnits(100))

		booking := NewBooking(fx.Schedule.ID, "FBPAYONCE1", 2, nil)
		require.NoError(t, store.Bookings().Create(ctx, booking))

		require.NoError(t, store.Bookings().MarkPaid(ctx, booking.ID))
		require.ErrorIs(t, store.Bookings().MarkPaid(ctx, booking.ID), domain.ErrAlreadyPaid)
		require.True(t, domain.IsNotFound(store.Bookings().MarkPaid(ctx, booking.ID+1000)))

		stored, err := store.Bookings().GetByID(ctx, booking.ID)
		require.NoError(t, err)
		require.Equal(t, model.PaymentStatusPaid, stored.PaymentStatus)
	})

	t.Run("booked seats skip cancelled and failed bookings", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		fx := Seed(t, store, 20, model.MoneyFromUnits(100))

		confirmed := NewBooking(fx.Schedule.ID, "FBSEATS001", 3, nil)
		cancelled := NewBooking(fx.Schedule.ID, "FBSEATS002", 2, nil)
		failed := NewBooking(fx.Schedule.ID, "FBSEATS003", 4, nil)
		for _, b := range []*model.Booking{confirmed, cancelled, failed} {
			require.NoError(t, store.Bookings().Create(ctx, b))
		}

		cancelled.BookingStatus = model.BookingStatusCancelled
		require.NoError(t, store.Bookings().UpdateStatus(ctx, cancelled))
		failed.PaymentStatus = model.PaymentStatusFailed
		note := "card chargeback"
		failed.Notes = &note
		require.NoError(t, store.Bookings().UpdateStatus(ctx, failed))

		seats, err := store.Bookings().SumBookedSeats(ctx, fx.Schedule.ID)
		require.NoError(t, err)
		require.Equal(t, 3, seats)

		stored, err := store.Bookings().GetByID(ctx, failed.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.Notes)
		require.Equal(t, note, *stored.Notes)
	})

	t.Run("booking listing filters and pages", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		fx := Seed(t, store, 50, model.MoneyFromUnits(100))

		owner := int64(7)
		other := int64(8)
		for i := 0; i < 12; i++ {
			userID := &owner
			if i%3 == 0 {
				userID = &other
			}
			require.NoError(t, store.Bookings().Create(ctx, NewBooking(fx.Schedule.ID, fmt.Sprintf("FBLIST%04d", i), 1, userID)))
		}

		q := repository.BookingQuery{UserID: &owner, Limit: 5}
		total, err := store.Bookings().Count(ctx, q)
		require.NoError(t, err)
		require.Equal(t, 8, total)

		page, err := store.Bookings().List(ctx, q)
		require.NoError(t, err)
		require.Len(t, page, 5)
		for i := 1; i < len(page); i++ {
			require.False(t, page[i].CreatedAt.After(page[i-1].CreatedAt))
		}

		found, err := store.Bookings().List(ctx, repository.BookingQuery{Search: "fblist0011"})
		require.NoError(t, err)
		require.Len(t, found, 1)
		require.Equal(t, "FBLIST0011", found[0].BookingCode)
	})

	t.Run("schedule listing filters", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		fx := Seed(t, store, 5, model.MoneyFromUnits(100))

		past := &model.Schedule{
			BoatID:         fx.Boat.ID,
			RouteID:        fx.Route.ID,
			DepartureTime:  time.Now().UTC().Add(-time.Hour).Truncate(time.Second),
			ArrivalTime:    time.Now().UTC().Add(time.Hour).Truncate(time.Second),
			Price:          model.MoneyFromUnits(100),
			AvailableSeats: 5,
			Status:         model.ScheduleStatusActive,
		}
		require.NoError(t, store.Schedules().Create(ctx, past))

		available, err := store.Schedules().List(ctx, repository.ScheduleQuery{AvailableAt: time.Now().UTC()})
		require.NoError(t, err)
		require.Len(t, available, 1)
		require.Equal(t, fx.Schedule.ID, available[0].ID)

		byPort, err := store.Schedules().Count(ctx, repository.ScheduleQuery{DeparturePort: "Harbor", DestinationPort: "Island"})
		require.NoError(t, err)
		require.Equal(t, 2, byPort)

		bySearch, err := store.Schedules().List(ctx, repository.ScheduleQuery{Search: "breeze", Descending: true})
		require.NoError(t, err)
		require.Len(t, bySearch, 2)
		require.Equal(t, fx.Schedule.ID, bySearch[0].ID)

		require.NoError(t, store.Schedules().Delete(ctx, past.ID))
		_, err = store.Schedules().GetByID(ctx, past.ID)
		require.True(t, domain.IsNotFound(err))
	})

	t.Run("payments keep details and sum completed", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		fx := Seed(t, store, 5, model.MoneyFromUnits(100))

		booking := NewBooking(fx.Schedule.ID, "FBPAYMENT1", 2, nil)
		require.NoError(t, store.Bookings().Create(ctx, booking))

		paidAt := time.Now().UTC().Truncate(time.Second)
		payment := &model.Payment{
			BookingID:     booking.ID,
			PaymentMethod: "credit_card",
			Amount:        booking.TotalAmount,
			TransactionID: "TXNABC",
			Status:        model.TransactionCompleted,
			Details:       model.PaymentDetails{CardLastFour: "1111", CardholderName: "JANE DOE"},
			PaidAt:        &paidAt,
		}
		require.NoError(t, store.Payments().Create(ctx, payment))
		require.NotZero(t, payment.ID)

		payments, err := store.Payments().ListByBooking(ctx, booking.ID)
		require.NoError(t, err)
		require.Len(t, payments, 1)
		require.Equal(t, "1111", payments[0].Details.CardLastFour)
		require.Equal(t, "JANE DOE", payments[0].Details.CardholderName)

		revenue, err := store.Payments().SumCompleted(ctx)
		require.NoError(t, err)
		require.Equal(t, booking.TotalAmount, revenue)
	})
}
