package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/boat_booking/internal/domain"
	"github.com/Freeeeeet/boat_booking/internal/events"
	"github.com/Freeeeeet/boat_booking/internal/model"
	"github.com/Freeeeeet/boat_booking/internal/repository"
	"go.uber.org/zap"
)

const (
	userBookingsPerPage      = 10
	adminBookingsPerPage     = 15
	dashboardRecentBookings  = 10
	dashboardUpcomingSailing = 5
	maxNotesLength           = 500
)

type BookingService struct {
	store  repository.Store
	ledger *SeatLedger
	logger *zap.Logger
	opts   options
}

func NewBookingService(store repository.Store, ledger *SeatLedger, logger *zap.Logger, opts ...Option) *BookingService {
	return &BookingService{
		store:  store,
		ledger: ledger,
		logger: logger,
		opts:   newOptions(opts),
	}
}

type BookingInput struct {
	ScheduleID     int64
	CustomerName   string
	CustomerEmail  string
	CustomerPhone  string
	PassengerCount int
	Notes          *string
}

func (in BookingInput) validate() error {
	if in.ScheduleID <= 0 {
		return domain.Invalid("schedule_id", "please select a valid schedule")
	}
	err := firstError(
		requireText("customer_name", in.CustomerName, 255),
		validateEmail("customer_email", in.CustomerEmail),
		requireText("customer_phone", in.CustomerPhone, 20),
	)
	if err != nil {
		return err
	}
	if in.PassengerCount < model.MinPassengers {
		return domain.Invalid("passenger_count", "at least 1 passenger is required")
	}
	if in.PassengerCount > model.MaxPassengers {
		return domain.Invalid("passenger_count", "maximum 10 passengers allowed per booking")
	}
	if in.Notes != nil {
		return maxLength("notes", *in.Notes, maxNotesLength)
	}
	return nil
}

// CreateBooking reserves seats and stores the booking in one transaction.
// userID is nil for guest bookings.
func (s *BookingService) CreateBooking(ctx context.Context, userID *int64, in BookingInput) (*model.Booking, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := s.opts.now()

	var booking *model.Booking
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		schedule, err := tx.Schedules().GetByID(ctx, in.ScheduleID)
		if err != nil {
			return err
		}

		if err := s.ledger.Reserve(ctx, tx.Schedules(), schedule, in.PassengerCount, now); err != nil {
			return err
		}

		booking = &model.Booking{
			UserID:         userID,
			ScheduleID:     schedule.ID,
			CustomerName:   in.CustomerName,
			CustomerEmail:  in.CustomerEmail,
			CustomerPhone:  in.CustomerPhone,
			PassengerCount: in.PassengerCount,
			TotalAmount:    schedule.Price.Mul(in.PassengerCount),
			PaymentStatus:  model.PaymentStatusPending,
			BookingStatus:  model.BookingStatusConfirmed,
			Notes:          in.Notes,
		}
		if err := s.insertWithUniqueCode(ctx, tx.Bookings(), booking); err != nil {
			return err
		}

		booking.Schedule = schedule
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.opts.cache.Invalidate(ctx)
	s.publish(ctx, events.NewBookingEvent(events.BookingCreated, booking, now))

	s.logger.Info("Booking created",
		zap.Int64("booking_id", booking.ID),
		zap.String("booking_code", booking.BookingCode),
		zap.Int64("schedule_id", booking.ScheduleID),
		zap.Int("passenger_count", booking.PassengerCount),
		zap.Stringer("total_amount", booking.TotalAmount),
	)

	return booking, nil
}

// insertWithUniqueCode draws codes until one is both unused and accepted by the unique index.
func (s *BookingService) insertWithUniqueCode(ctx context.Context, bookings repository.BookingRepository, booking *model.Booking) error {
	for attempt := 1; attempt <= s.opts.maxCodeAttempts; attempt++ {
		code := NewBookingCode(s.opts.codeSource())

		taken, err := bookings.CodeExists(ctx, code)
		if err != nil {
			return err
		}
		if taken {
			s.logger.Debug("Booking code collision", zap.String("booking_code", code), zap.Int("attempt", attempt))
			continue
		}

		booking.BookingCode = code
		err = bookings.Create(ctx, booking)
		if errors.Is(err, domain.ErrDuplicateBookingCode) {
			s.logger.Debug("Booking code taken concurrently", zap.String("booking_code", code), zap.Int("attempt", attempt))
			continue
		}
		return err
	}

	booking.BookingCode = ""
	return domain.ErrCodeGenerationExhausted
}

// GetBooking returns a booking with schedule, boat, route and payments
func (s *BookingService) GetBooking(ctx context.Context, id int64) (*model.Booking, error) {
	booking, err := s.store.Bookings().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}

	booking.Schedule, err = s.store.Schedules().GetByID(ctx, booking.ScheduleID)
	if err != nil {
		return nil, fmt.Errorf("get booking schedule: %w", err)
	}

	booking.Payments, err = s.store.Payments().ListByBooking(ctx, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("get booking payments: %w", err)
	}

	return booking, nil
}

// GetBookingFor returns the booking if actor owns it or is an admin.
func (s *BookingService) GetBookingFor(ctx context.Context, actor model.Actor, id int64) (*model.Booking, error) {
	booking, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeBooking(actor, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

func authorizeBooking(actor model.Actor, booking *model.Booking) error {
	if actor.Admin || booking.OwnedBy(actor.UserID) {
		return nil
	}
	return domain.AuthorizationError{Msg: "you do not have access to this booking"}
}

// ListUserBookings pages through the caller's bookings, newest first.
func (s *BookingService) ListUserBookings(ctx context.Context, actor model.Actor, page int) (model.Paginated[*model.Booking], error) {
	userID := actor.UserID
	return s.listBookings(ctx, repository.BookingQuery{UserID: &userID}, page, userBookingsPerPage)
}

// ListBookingsAdmin pages through all bookings matching filter, newest first.
func (s *BookingService) ListBookingsAdmin(ctx context.Context, filter model.BookingFilter) (model.Paginated[*model.Booking], error) {
	if filter.PaymentStatus != "" && !filter.PaymentStatus.Valid() {
		return model.Paginated[*model.Booking]{}, domain.Invalid("payment_status", "is not a payment status")
	}
	if filter.BookingStatus != "" && !filter.BookingStatus.Valid() {
		return model.Paginated[*model.Booking]{}, domain.Invalid("booking_status", "is not a booking status")
	}

	q := repository.BookingQuery{
		Search:        filter.Search,
		PaymentStatus: filter.PaymentStatus,
		BookingStatus: filter.BookingStatus,
	}
	return s.listBookings(ctx, q, filter.Page, adminBookingsPerPage)
}

func (s *BookingService) listBookings(ctx context.Context, q repository.BookingQuery, page, perPage int) (model.Paginated[*model.Booking], error) {
	page = max(page, 1)

	total, err := s.store.Bookings().Count(ctx, q)
	if err != nil {
		return model.Paginated[*model.Booking]{}, fmt.Errorf("count bookings: %w", err)
	}

	q.Limit = perPage
	q.Offset = model.PageOffset(page, perPage)
	bookings, err := s.store.Bookings().List(ctx, q)
	if err != nil {
		return model.Paginated[*model.Booking]{}, fmt.Errorf("list bookings: %w", err)
	}

	if err := s.attachSchedules(ctx, bookings); err != nil {
		return model.Paginated[*model.Booking]{}, err
	}

	return model.Paginated[*model.Booking]{
		Items:   bookings,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	}, nil
}

func (s *BookingService) attachSchedules(ctx context.Context, bookings []*model.Booking) error {
	schedules := make(map[int64]*model.Schedule)
	for _, booking := range bookings {
		schedule, ok := schedules[booking.ScheduleID]
		if !ok {
			var err error
			schedule, err = s.store.Schedules().GetByID(ctx, booking.ScheduleID)
			if err != nil {
				return fmt.Errorf("get booking schedule: %w", err)
			}
			schedules[booking.ScheduleID] = schedule
		}
		booking.Schedule = schedule
	}
	return nil
}

// AdminBookingUpdate holds the fields an administrator may override. Nil fields are left as they are.
type AdminBookingUpdate struct {
	BookingStatus *model.BookingStatus
	PaymentStatus *model.PaymentStatus
	Notes         *string
}

// UpdateBookingAdmin sets statuses directly, skipping the booking and payment workflows.
func (s *BookingService) UpdateBookingAdmin(ctx context.Context, id int64, in AdminBookingUpdate) (*model.Booking, error) {
	if in.BookingStatus != nil && !in.BookingStatus.Valid() {
		return nil, domain.Invalid("booking_status", "must be confirmed or cancelled")
	}
	if in.PaymentStatus != nil && !in.PaymentStatus.Valid() {
		return nil, domain.Invalid("payment_status", "must be pending, paid, failed or refunded")
	}
	if in.Notes != nil {
		if err := maxLength("notes", *in.Notes, maxNotesLength); err != nil {
			return nil, err
		}
	}

	var previous model.BookingStatus
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		booking, err := tx.Bookings().GetByID(ctx, id)
		if err != nil {
			return err
		}
		previous = booking.BookingStatus

		if in.BookingStatus != nil {
			booking.BookingStatus = *in.BookingStatus
		}
		if in.PaymentStatus != nil {
			booking.PaymentStatus = *in.PaymentStatus
		}
		if in.Notes != nil {
			booking.Notes = in.Notes
		}
		if err := tx.Bookings().UpdateStatus(ctx, booking); err != nil {
			return err
		}

		switch {
		case previous == model.BookingStatusConfirmed && booking.BookingStatus == model.BookingStatusCancelled:
			return s.ledger.Release(ctx, tx.Schedules(), booking)
		case previous == model.BookingStatusCancelled && booking.BookingStatus == model.BookingStatusConfirmed:
			return s.ledger.Reclaim(ctx, tx.Schedules(), booking)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}

	if s.ledger.RestoresOnCancel() {
		s.opts.cache.Invalidate(ctx)
	}

	booking, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Booking updated by admin",
		zap.Int64("booking_id", booking.ID),
		zap.String("booking_code", booking.BookingCode),
		zap.String("previous_booking_status", string(previous)),
		zap.String("booking_status", string(booking.BookingStatus)),
		zap.String("payment_status", string(booking.PaymentStatus)),
	)

	return booking, nil
}

// Dashboard collects the admin overview.
func (s *BookingService) Dashboard(ctx context.Context) (*model.Dashboard, error) {
	var (
		stats model.DashboardStats
		err   error
	)

	if stats.TotalBookings, err = s.store.Bookings().Count(ctx, repository.BookingQuery{}); err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}
	pending := repository.BookingQuery{PaymentStatus: model.PaymentStatusPending}
	if stats.PendingPayments, err = s.store.Bookings().Count(ctx, pending); err != nil {
		return nil, fmt.Errorf("count pending payments: %w", err)
	}
	if stats.TotalRevenue, err = s.store.Payments().SumCompleted(ctx); err != nil {
		return nil, fmt.Errorf("sum revenue: %w", err)
	}
	active := repository.ScheduleQuery{Status: model.ScheduleStatusActive}
	if stats.ActiveSchedules, err = s.store.Schedules().Count(ctx, active); err != nil {
		return nil, fmt.Errorf("count active schedules: %w", err)
	}

	recent, err := s.store.Bookings().List(ctx, repository.BookingQuery{Limit: dashboardRecentBookings})
	if err != nil {
		return nil, fmt.Errorf("list recent bookings: %w", err)
	}
	if err := s.attachSchedules(ctx, recent); err != nil {
		return nil, err
	}

	upcoming, err := s.store.Schedules().List(ctx, repository.ScheduleQuery{
		Status:     model.ScheduleStatusActive,
		DepartFrom: s.opts.now(),
		Limit:      dashboardUpcomingSailing,
	})
	if err != nil {
		return nil, fmt.Errorf("list upcoming schedules: %w", err)
	}

	return &model.Dashboard{Stats: stats, RecentBookings: recent, UpcomingSchedules: upcoming}, nil
}

func (s *BookingService) publish(ctx context.Context, event events.BookingEvent) {
	if err := s.opts.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish booking event",
			zap.String("type", string(event.Type)),
			zap.Int64("booking_id", event.BookingID),
			zap.Error(err),
		)
	}
}
