package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/boat_booking/internal/domain"
	"github.com/Freeeeeet/boat_booking/internal/events"
	"github.com/Freeeeeet/boat_booking/internal/model"
	"github.com/Freeeeeet/boat_booking/internal/repository"
	"github.com/Freeeeeet/boat_booking/internal/repository/gormstore"
	"github.com/Freeeeeet/boat_booking/internal/repository/memory"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func int64Ptr(v int64) *int64 { return &v }

func TestCreateBookingReservesSeatsAndFreezesTotal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t, nil)
	fx := h.seed(t, 5, model.MoneyFromUnits(350000))

	booking, err := h.bookings.CreateBooking(ctx, nil, janeDoe(fx.Schedule.ID, 3))
	require.NoError(t, err)
	require.Regexp(t, `^FB[A-Z0-9]{8}$`, booking.BookingCode)
	require.Equal(t, model.MoneyFromUnits(1050000), booking.TotalAmount)
	require.Equal(t, "1050000.00", booking.TotalAmount.String())
	require.Equal(t, model.PaymentStatusPending, booking.PaymentStatus)
	require.Equal(t, model.BookingStatusConfirmed, booking.BookingStatus)
	require.Nil(t, booking.UserID)

	schedule, err := h.schedules.GetSchedule(ctx, fx.Schedule.ID)
	require.NoError(t, err)
	require.Equal(t, 2, schedule.AvailableSeats)

	_, err = h.bookings.CreateBooking(ctx, nil, janeDoe(fx.Schedule.ID, 3))
	require.ErrorIs(t, err, domain.ErrInsufficientCapacity)

	schedule, err = h.schedules.GetSchedule(ctx, fx.Schedule.ID)
	require.NoError(t, err)
	require.Equal(t, 2, schedule.AvailableSeats)

	total, err := h.store.Bookings().Count(ctx, repository.BookingQuery{})
	require.NoError(t, err)
	require.Equal(t, 1, total)

	require.Equal(t, []events.Type{events.BookingCreated}, h.publisher.types())
	require.Equal(t, 1, h.cache.invalidations)
}

func TestCreateBookingTotalSurvivesPriceChange(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t, nil)
	fx := h.seed(t, 10, model.MoneyFromUnits(100))

	booking, err := h.bookings.CreateBooking(ctx, nil, janeDoe(fx.Schedule.ID, 2))
	require.NoError(t, err)

	_, err = h.schedules.UpdateSchedule(ctx, fx.Schedule.ID, ScheduleInput{
		BoatID:        fx.Boat.ID,
		RouteID:       fx.Route.ID,
		DepartureTime: fx.Schedule.DepartureTime,
		ArrivalTime:   fx.Schedule.ArrivalTime,
		Price:         model.MoneyFromUnits(999),
	})
	require.NoError(t, err)

	stored, err := h.bookings.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	require.Equal(t, model.MoneyFromUnits(200), stored.TotalAmount)
	require.Equal(t, model.MoneyFromUnits(999), stored.Schedule.Price)
}

func TestCreateBookingRejectsUnavailableSchedules(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("unknown schedule", func(t *testing.T) {
		h := newHarness(t, nil)
		_, err := h.bookings.CreateBooking(ctx, nil, janeDoe(999, 1))
		require.True(t, domain.IsNotFound(err))
	})

	t.Run("departed", func(t *testing.T) {
		store := memory.NewStore()
		h := newHarnessWithStore(t, store, nil)
		fx := h.seed(t, 5, model.MoneyFromUnits(100))

		late := newHarnessWithStore(t, store, nil, WithClock(func() time.Time {
			return fx.Schedule.DepartureTime.Add(time.Minute)
		}))
		_, err := late.bookings.CreateBooking(ctx, nil, janeDoe(fx.Schedule.ID, 1))
		require.ErrorIs(t, err, domain.ErrScheduleUnavailable)
	})

	for _, status := range []model.ScheduleStatus{model.ScheduleStatusCancelled, model.ScheduleStatusFull} {
		t.Run(string(status), func(t *testing.T) {
			h := newHarness(t, nil)
			fx := h.seed(t, 5, model.MoneyFromUnits(100))

			fx.Schedule.Status = status
			require.NoError(t, h.store.Schedules().Update(ctx, fx.Schedule))

			_, err := h.bookings.CreateBooking(ctx, nil, janeDoe(fx.Schedule.ID, 1))
			require.ErrorIs(t, err, domain.ErrScheduleUnavailable)

			schedule, err := h.schedules.GetSchedule(ctx, fx.Schedule.ID)
			require.NoError(t, err)
			require.Equal(t, 5, schedule.AvailableSeats)
		})
	}
}

func TestCreateBookingValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t, nil)
	fx := h.seed(t, 20, model.MoneyFromUnits(100))
	longNotes := strings.Repeat("n", 501)

	cases := map[string]struct {
		mutate func(in *BookingInput)
		field  string
	}{
		"missing schedule": {func(in *BookingInput) { in.ScheduleID = 0 }, "schedule_id"},
		"empty name":       {func(in *BookingInput) { in.CustomerName = "  " }, "customer_name"},
		"bad email":        {func(in *BookingInput) { in.CustomerEmail = "not-an-email" }, "customer_email"},
		"long phone":       {func(in *BookingInput) { in.CustomerPhone = "+123456789012345678901" }, "customer_phone"},
		"no passengers":    {func(in *BookingInput) { in.PassengerCount = 0 }, "passenger_count"},
		"too many":         {func(in *BookingInput) { in.PassengerCount = 11 }, "passenger_count"},
		"long notes":       {func(in *BookingInput) { in.Notes = &longNotes }, "notes"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			in := janeDoe(fx.Schedule.ID, 1)
			tc.mutate(&in)

			_, err := h.bookings.CreateBooking(ctx, nil, in)
			var verr domain.ValidationError
			require.ErrorAs(t, err, &verr)
			require.Equal(t, tc.field, verr.Field)
		})
	}

	schedule, err := h.schedules.GetSchedule(ctx, fx.Schedule.ID)
	require.NoError(t, err)
	require.Equal(t, 20, schedule.AvailableSeats)
}

func TestCreateBookingRetriesCodeCollisions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	taken := uuid.MustParse("6f1c2d3e-4a5b-4c6d-8e7f-8091a2b3c4d5")
	fresh := uuid.MustParse("0a1b2c3d-4e5f-4a6b-8c7d-8e9fa0b1c2d3")

	var (
		mu    sync.Mutex
		calls int
	)
	source := func() uuid.UUID {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls <= 3 {
			return taken
		}
		return fresh
	}

	h := newHarness(t, nil, WithCodeSource(source))
	fx := h.seed(t, 10, model.MoneyFromUnits(100))

	first, err := h.bookings.CreateBooking(ctx, nil, janeDoe(fx.Schedule.ID, 1))
	require.NoError(t, err)
	require.Equal(t, NewBookingCode(taken), first.BookingCode)

	second, err := h.bookings.CreateBooking(ctx, nil, janeDoe(fx.Schedule.ID, 1))
	require.NoError(t, err)
	require.Equal(t, NewBookingCode(fresh), second.BookingCode)
	require.Equal(t, 4, calls)
}

func TestCreateBookingGivesUpAfterMaxCodeAttempts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	var calls int
	source := func() uuid.UUID {
		calls++
		return uuid.Nil
	}

	h := newHarness(t, nil, WithCodeSource(source))
	fx := h.seed(t, 10, model.MoneyFromUnits(100))

	_, err := h.bookings.CreateBooking(ctx, nil, janeDoe(fx.Schedule.ID, 2))
	require.NoError(t, err)
	require.Equal(t, 1, calls)

	_, err = h.bookings.CreateBooking(ctx, nil, janeDoe(fx.Schedule.ID, 2))
	require.ErrorIs(t, err, domain.ErrCodeGenerationExhausted)
	require.Equal(t, 1+DefaultMaxCodeAttempts, calls)

	schedule, err := h.schedules.GetSchedule(ctx, fx.Schedule.ID)
	require.NoError(t, err)
	require.Equal(t, 8, schedule.AvailableSeats)
}

func TestConcurrentBookingsNeverOversell(t *testing.T) {
	t.Parallel()

	stores := map[string]func(t *testing.T) repository.Store{
		"memory": func(*testing.T) repository.Store { return memory.NewStore() },
		"sqlite": openSQLiteStore,
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			h := newHarnessWithStore(t, newStore(t), nil)
			fx := h.seed(t, 4, model.MoneyFromUnits(100))

			const attempts = 12
			var (
				wg        sync.WaitGroup
				mu        sync.Mutex
				succeeded int
			)
			for i := 0; i < attempts; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					in := janeDoe(fx.Schedule.ID, 1)
					in.CustomerName = fmt.Sprintf("Passenger %d", i)

					_, err := h.bookings.CreateBooking(context.Background(), nil, in)
					if err != nil {
						assert.ErrorIs(t, err, domain.ErrInsufficientCapacity)
						return
					}
					mu.Lock()
					succeeded++
					mu.Unlock()
				}(i)
			}
			wg.Wait()

			require.Equal(t, 4, succeeded)

			schedule, err := h.schedules.GetSchedule(context.Background(), fx.Schedule.ID)
			require.NoError(t, err)
			require.Equal(t, 0, schedule.AvailableSeats)

			booked, err := h.schedules.ComputeBookedSeats(context.Background(), fx.Schedule.ID)
			require.NoError(t, err)
			require.Equal(t, 4, booked)
		})
	}
}

func openSQLiteStore(t *testing.T) repository.Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(t.TempDir()+"/service.db"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gormstore.AutoMigrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return gormstore.New(db)
}

func TestGetBookingForChecksOwnership(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t, nil)
	fx := h.seed(t, 10, model.MoneyFromUnits(100))

	owned, err := h.bookings.CreateBooking(ctx, int64Ptr(7), janeDoe(fx.Schedule.ID, 1))
	require.NoError(t, err)
	guest, err := h.bookings.CreateBooking(ctx, nil, janeDoe(fx.Schedule.ID, 1))
	require.NoError(t, err)

	got, err := h.bookings.GetBookingFor(ctx, model.Actor{UserID: 7}, owned.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Schedule)
	require.NotNil(t, got.Schedule.Route)

	_, err = h.bookings.GetBookingFor(ctx, model.Actor{UserID: 8}, owned.ID)
	require.True(t, domain.IsAuthorization(err))

	_, err = h.bookings.GetBookingFor(ctx, model.Actor{UserID: 7}, guest.ID)
	require.True(t, domain.IsAuthorization(err))

	_, err = h.bookings.GetBookingFor(ctx, model.Actor{UserID: 1, Admin: true}, guest.ID)
	require.NoError(t, err)

	_, err = h.bookings.GetBookingFor(ctx, model.Actor{UserID: 7}, 999)
	require.True(t, domain.IsNotFound(err))
}

func TestListUserBookingsPages(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t, nil)
	fx := h.seed(t, 30, model.MoneyFromUnits(100))

	for i := 0; i < 12; i++ {
		_, err := h.bookings.CreateBooking(ctx, int64Ptr(7), janeDoe(fx.Schedule.ID, 1))
		require.NoError(t, err)
	}
	_, err := h.bookings.CreateBooking(ctx, int64Ptr(8), janeDoe(fx.Schedule.ID, 1))
	require.NoError(t, err)

	page, err := h.bookings.ListUserBookings(ctx, model.Actor{UserID: 7}, 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 10)
	require.Equal(t, 12, page.Total)
	require.Equal(t, 2, page.LastPage())
	for _, booking := range page.Items {
		require.True(t, booking.OwnedBy(7))
		require.NotNil(t, booking.Schedule)
	}

	page, err = h.bookings.ListUserBookings(ctx, model.Actor{UserID: 7}, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
}

func TestListBookingsAdminFilters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t, nil)
	fx := h.seed(t, 30, model.MoneyFromUnits(100))

	paid, err := h.bookings.CreateBooking(ctx, nil, janeDoe(fx.Schedule.ID, 1))
	require.NoError(t, err)
	other := janeDoe(fx.Schedule.ID, 1)
	other.CustomerName = "Budi Santoso"
	other.CustomerEmail = "budi@example.com"
	_, err = h.bookings.CreateBooking(ctx, nil, other)
	require.NoError(t, err)

	_, err = h.payments.ProcessPayment(ctx, paid, validCard())
	require.NoError(t, err)

	page, err := h.bookings.ListBookingsAdmin(ctx, model.BookingFilter{PaymentStatus: model.PaymentStatusPaid})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	require.Equal(t, paid.ID, page.Items[0].ID)

	page, err = h.bookings.ListBookingsAdmin(ctx, model.BookingFilter{Search: "budi"})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	require.Equal(t, "Budi Santoso", page.Items[0].CustomerName)

	page, err = h.bookings.ListBookingsAdmin(ctx, model.BookingFilter{Search: paid.BookingCode})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)

	_, err = h.bookings.ListBookingsAdmin(ctx, model.BookingFilter{PaymentStatus: "lost"})
	require.True(t, domain.IsValidation(err))
}

func TestUpdateBookingAdminKeepsSeatsByDefault(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t, nil)
	fx := h.seed(t, 10, model.MoneyFromUnits(100))

	booking, err := h.bookings.CreateBooking(ctx, nil, janeDoe(fx.Schedule.ID, 3))
	require.NoError(t, err)

	cancelled := model.BookingStatusCancelled
	notes := "customer called"
	updated, err := h.bookings.UpdateBookingAdmin(ctx, booking.ID, AdminBookingUpdate{
		BookingStatus: &cancelled,
		Notes:         &notes,
	})
	require.NoError(t, err)
	require.Equal(t, model.BookingStatusCancelled, updated.BookingStatus)
	require.Equal(t, model.PaymentStatusPending, updated.PaymentStatus)
	require.Equal(t, notes, *updated.Notes)

	schedule, err := h.schedules.GetSchedule(ctx, fx.Schedule.ID)
	require.NoError(t, err)
	require.Equal(t, 7, schedule.AvailableSeats)

	booked, err := h.schedules.ComputeBookedSeats(ctx, fx.Schedule.ID)
	require.NoError(t, err)
	require.Equal(t, 0, booked)

	drifts, err := h.schedules.ReconcileSeats(ctx)
	require.NoError(t, err)
	require.Len(t, drifts, 1)
	require.Equal(t, 3, drifts[0].Delta())
}

func TestUpdateBookingAdminRestoresSeatsWhenConfigured(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t, NewSeatLedger(WithRestoreOnCancel()))
	fx := h.seed(t, 10, model.MoneyFromUnits(100))

	booking, err := h.bookings.CreateBooking(ctx, nil, janeDoe(fx.Schedule.ID, 3))
	require.NoError(t, err)

	cancelled := model.BookingStatusCancelled
	_, err = h.bookings.UpdateBookingAdmin(ctx, booking.ID, AdminBookingUpdate{BookingStatus: &cancelled})
	require.NoError(t, err)

	schedule, err := h.schedules.GetSchedule(ctx, fx.Schedule.ID)
	require.NoError(t, err)
	require.Equal(t, 10, schedule.AvailableSeats)

	confirmed := model.BookingStatusConfirmed
	_, err = h.bookings.UpdateBookingAdmin(ctx, booking.ID, AdminBookingUpdate{BookingStatus: &confirmed})
	require.NoError(t, err)

	schedule, err = h.schedules.GetSchedule(ctx, fx.Schedule.ID)
	require.NoError(t, err)
	require.Equal(t, 7, schedule.AvailableSeats)

	drifts, err := h.schedules.ReconcileSeats(ctx)
	require.NoError(t, err)
	require.Empty(t, drifts)
}

func TestUpdateBookingAdminValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t, nil)
	fx := h.seed(t, 10, model.MoneyFromUnits(100))
	booking, err := h.bookings.CreateBooking(ctx, nil, janeDoe(fx.Schedule.ID, 1))
	require.NoError(t, err)

	status := model.BookingStatus("pending")
	_, err = h.bookings.UpdateBookingAdmin(ctx, booking.ID, AdminBookingUpdate{BookingStatus: &status})
	require.True(t, domain.IsValidation(err))

	refunded := model.PaymentStatusRefunded
	updated, err := h.bookings.UpdateBookingAdmin(ctx, booking.ID, AdminBookingUpdate{PaymentStatus: &refunded})
	require.NoError(t, err)
	require.Equal(t, model.PaymentStatusRefunded, updated.PaymentStatus)

	_, err = h.bookings.UpdateBookingAdmin(ctx, 999, AdminBookingUpdate{PaymentStatus: &refunded})
	require.True(t, domain.IsNotFound(err))
}

func TestDashboard(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t, nil)
	fx := h.seed(t, 10, model.MoneyFromUnits(100))

	first, err := h.bookings.CreateBooking(ctx, nil, janeDoe(fx.Schedule.ID, 2))
	require.NoError(t, err)
	_, err = h.bookings.CreateBooking(ctx, nil, janeDoe(fx.Schedule.ID, 1))
	require.NoError(t, err)

	_, err = h.payments.ProcessPayment(ctx, first, validCard())
	require.NoError(t, err)

	dashboard, err := h.bookings.Dashboard(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, dashboard.Stats.TotalBookings)
	require.Equal(t, 1, dashboard.Stats.PendingPayments)
	require.Equal(t, model.MoneyFromUnits(200), dashboard.Stats.TotalRevenue)
	require.Equal(t, 1, dashboard.Stats.ActiveSchedules)
	require.Len(t, dashboard.RecentBookings, 2)
	require.Len(t, dashboard.UpcomingSchedules, 1)
}
