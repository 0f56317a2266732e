package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Freeeeeet/boat_booking/internal/domain"
	"github.com/Freeeeeet/boat_booking/internal/model"
	"github.com/Freeeeeet/boat_booking/internal/repository"
	"go.uber.org/zap"
)

const adminSchedulesPerPage = 15

type ScheduleService struct {
	store  repository.Store
	logger *zap.Logger
	opts   options
}

func NewScheduleService(store repository.Store, logger *zap.Logger, opts ...Option) *ScheduleService {
	return &ScheduleService{
		store:  store,
		logger: logger,
		opts:   newOptions(opts),
	}
}

// ListAvailableSchedules returns active future schedules with seats left, earliest first.
func (s *ScheduleService) ListAvailableSchedules(ctx context.Context, filter model.ScheduleFilter) ([]*model.Schedule, error) {
	now := s.opts.now()

	q, err := s.availableQuery(filter, now)
	if err != nil {
		return nil, err
	}

	schedules, err := s.opts.cache.GetOrLoad(ctx, filter, func(ctx context.Context) ([]*model.Schedule, error) {
		return s.store.Schedules().List(ctx, q)
	})
	if err != nil {
		return nil, fmt.Errorf("list available schedules: %w", err)
	}

	// Cached entries live for the TTL, drop sailings that have left since.
	available := make([]*model.Schedule, 0, len(schedules))
	for _, schedule := range schedules {
		if schedule.IsAvailable(now) {
			available = append(available, schedule)
		}
	}
	return available, nil
}

func (s *ScheduleService) availableQuery(filter model.ScheduleFilter, now time.Time) (repository.ScheduleQuery, error) {
	q := repository.ScheduleQuery{
		AvailableAt:     now,
		DeparturePort:   filter.DeparturePort,
		DestinationPort: filter.DestinationPort,
	}

	if filter.DepartureDate != "" {
		day, err := time.ParseInLocation(time.DateOnly, filter.DepartureDate, s.opts.location)
		if err != nil {
			return q, domain.Invalid("departure_date", "must be a date in YYYY-MM-DD format")
		}
		q.DepartFrom = day
		q.DepartBefore = day.AddDate(0, 0, 1)
	}
	return q, nil
}

// ListPorts returns every port served by an available schedule, sorted.
func (s *ScheduleService) ListPorts(ctx context.Context) ([]string, error) {
	schedules, err := s.ListAvailableSchedules(ctx, model.ScheduleFilter{})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	ports := make([]string, 0)
	for _, schedule := range schedules {
		if schedule.Route == nil {
			continue
		}
		for _, port := range []string{schedule.Route.DeparturePort, schedule.Route.DestinationPort} {
			if _, ok := seen[port]; ok {
				continue
			}
			seen[port] = struct{}{}
			ports = append(ports, port)
		}
	}
	sort.Strings(ports)
	return ports, nil
}

// GetSchedule returns a schedule with its boat and route
func (s *ScheduleService) GetSchedule(ctx context.Context, id int64) (*model.Schedule, error) {
	schedule, err := s.store.Schedules().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	return schedule, nil
}

// ComputeBookedSeats sums passengers of confirmed bookings whose payment has not failed.
// It is derived from bookings and never written back to the seat counter.
func (s *ScheduleService) ComputeBookedSeats(ctx context.Context, scheduleID int64) (int, error) {
	seats, err := s.store.Bookings().SumBookedSeats(ctx, scheduleID)
	if err != nil {
		return 0, fmt.Errorf("compute booked seats: %w", err)
	}
	return seats, nil
}

func (s *ScheduleService) IsFull(ctx context.Context, scheduleID int64) (bool, error) {
	schedule, err := s.GetSchedule(ctx, scheduleID)
	if err != nil {
		return false, err
	}
	return schedule.IsFull(), nil
}

// GetScheduleDetail returns a schedule with its bookings and booked-seat aggregate.
func (s *ScheduleService) GetScheduleDetail(ctx context.Context, id int64) (*model.ScheduleDetail, error) {
	schedule, err := s.GetSchedule(ctx, id)
	if err != nil {
		return nil, err
	}

	bookings, err := s.store.Bookings().List(ctx, repository.BookingQuery{ScheduleID: id})
	if err != nil {
		return nil, fmt.Errorf("list schedule bookings: %w", err)
	}

	booked, err := s.ComputeBookedSeats(ctx, id)
	if err != nil {
		return nil, err
	}

	return &model.ScheduleDetail{Schedule: schedule, BookedSeats: booked, Bookings: bookings}, nil
}

type ScheduleInput struct {
	BoatID        int64
	RouteID       int64
	DepartureTime time.Time
	ArrivalTime   time.Time
	Price         model.Money
	Status        model.ScheduleStatus // defaults to active on create

	// AvailableSeats lets an administrator correct the seat counter on update.
	AvailableSeats *int
}

// CreateSchedule seeds the seat counter from the boat capacity.
func (s *ScheduleService) CreateSchedule(ctx context.Context, in ScheduleInput) (*model.Schedule, error) {
	now := s.opts.now()

	if in.Status == "" {
		in.Status = model.ScheduleStatusActive
	}
	if in.Status != model.ScheduleStatusActive && in.Status != model.ScheduleStatusCancelled {
		return nil, domain.Invalid("status", "must be active or cancelled")
	}
	if !in.DepartureTime.After(now) {
		return nil, domain.Invalid("departure_time", "must be in the future")
	}
	if err := validateScheduleInput(in); err != nil {
		return nil, err
	}

	var schedule *model.Schedule
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		boat, route, err := loadFleet(ctx, tx, in.BoatID, in.RouteID)
		if err != nil {
			return err
		}

		schedule = &model.Schedule{
			BoatID:         boat.ID,
			RouteID:        route.ID,
			DepartureTime:  in.DepartureTime,
			ArrivalTime:    in.ArrivalTime,
			Price:          in.Price,
			AvailableSeats: boat.Capacity,
			Status:         in.Status,
		}
		if err := tx.Schedules().Create(ctx, schedule); err != nil {
			return err
		}
		schedule.Boat = boat
		schedule.Route = route
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create schedule: %w", err)
	}

	s.opts.cache.Invalidate(ctx)
	s.logger.Info("Schedule created",
		zap.Int64("schedule_id", schedule.ID),
		zap.Int64("boat_id", schedule.BoatID),
		zap.Int64("route_id", schedule.RouteID),
		zap.Time("departure_time", schedule.DepartureTime),
		zap.Int("available_seats", schedule.AvailableSeats),
	)

	return schedule, nil
}

// UpdateSchedule rewrites the editable fields. The seat counter only changes
// when AvailableSeats is given.
func (s *ScheduleService) UpdateSchedule(ctx context.Context, id int64, in ScheduleInput) (*model.Schedule, error) {
	if in.Status == "" {
		in.Status = model.ScheduleStatusActive
	}
	if !in.Status.Valid() {
		return nil, domain.Invalid("status", "must be active, cancelled or full")
	}
	if err := validateScheduleInput(in); err != nil {
		return nil, err
	}

	var schedule *model.Schedule
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		var err error
		schedule, err = tx.Schedules().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		boat, route, err := loadFleet(ctx, tx, in.BoatID, in.RouteID)
		if err != nil {
			return err
		}

		if in.AvailableSeats != nil {
			if *in.AvailableSeats < 0 || *in.AvailableSeats > boat.Capacity {
				return domain.Invalid("available_seats", fmt.Sprintf("must be between 0 and %d", boat.Capacity))
			}
			schedule.AvailableSeats = *in.AvailableSeats
		}

		schedule.BoatID = boat.ID
		schedule.RouteID = route.ID
		schedule.DepartureTime = in.DepartureTime
		schedule.ArrivalTime = in.ArrivalTime
		schedule.Price = in.Price
		schedule.Status = in.Status
		if err := tx.Schedules().Update(ctx, schedule); err != nil {
			return err
		}
		schedule.Boat = boat
		schedule.Route = route
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update schedule: %w", err)
	}

	s.opts.cache.Invalidate(ctx)
	s.logger.Info("Schedule updated",
		zap.Int64("schedule_id", schedule.ID),
		zap.String("status", string(schedule.Status)),
		zap.Int("available_seats", schedule.AvailableSeats),
	)

	return schedule, nil
}

// DeleteSchedule removes a schedule that no booking references.
func (s *ScheduleService) DeleteSchedule(ctx context.Context, id int64) error {
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.Schedules().GetForUpdate(ctx, id); err != nil {
			return err
		}

		bookings, err := tx.Bookings().Count(ctx, repository.BookingQuery{ScheduleID: id})
		if err != nil {
			return err
		}
		if bookings > 0 {
			return domain.ErrHasDependentBookings
		}

		return tx.Schedules().Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}

	s.opts.cache.Invalidate(ctx)
	s.logger.Info("Schedule deleted", zap.Int64("schedule_id", id))
	return nil
}

// ListSchedulesAdmin pages through all schedules, latest departure first.
func (s *ScheduleService) ListSchedulesAdmin(ctx context.Context, filter model.AdminScheduleFilter) (model.Paginated[*model.Schedule], error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return model.Paginated[*model.Schedule]{}, domain.Invalid("status", "is not a schedule status")
	}
	page := max(filter.Page, 1)

	q := repository.ScheduleQuery{
		Status:     filter.Status,
		Search:     filter.Search,
		Descending: true,
	}

	total, err := s.store.Schedules().Count(ctx, q)
	if err != nil {
		return model.Paginated[*model.Schedule]{}, fmt.Errorf("count schedules: %w", err)
	}

	q.Limit = adminSchedulesPerPage
	q.Offset = model.PageOffset(page, adminSchedulesPerPage)
	schedules, err := s.store.Schedules().List(ctx, q)
	if err != nil {
		return model.Paginated[*model.Schedule]{}, fmt.Errorf("list schedules: %w", err)
	}

	return model.Paginated[*model.Schedule]{
		Items:   schedules,
		Total:   total,
		Page:    page,
		PerPage: adminSchedulesPerPage,
	}, nil
}

// ReconcileSeats reports schedules whose seat counter disagrees with the booked-seat aggregate.
func (s *ScheduleService) ReconcileSeats(ctx context.Context) ([]model.SeatDrift, error) {
	schedules, err := s.store.Schedules().List(ctx, repository.ScheduleQuery{})
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}

	var drifts []model.SeatDrift
	for _, schedule := range schedules {
		booked, err := s.ComputeBookedSeats(ctx, schedule.ID)
		if err != nil {
			return nil, err
		}

		drift := model.SeatDrift{
			ScheduleID:     schedule.ID,
			DepartureTime:  schedule.DepartureTime,
			Capacity:       schedule.Capacity(),
			AvailableSeats: schedule.AvailableSeats,
			BookedSeats:    booked,
		}
		if drift.Delta() != 0 {
			drifts = append(drifts, drift)
		}
	}
	return drifts, nil
}

type BoatInput struct {
	Name        string
	Capacity    int
	Description string
	Status      model.BoatStatus
}

func (s *ScheduleService) CreateBoat(ctx context.Context, in BoatInput) (*model.Boat, error) {
	if in.Status == "" {
		in.Status = model.BoatStatusActive
	}
	err := firstError(
		requireText("name", in.Name, 255),
		maxLength("description", in.Description, 1000),
	)
	if err != nil {
		return nil, err
	}
	if in.Capacity <= 0 {
		return nil, domain.Invalid("capacity", "must be at least 1")
	}
	if !in.Status.Valid() {
		return nil, domain.Invalid("status", "must be active or inactive")
	}

	boat := &model.Boat{Name: in.Name, Capacity: in.Capacity, Description: in.Description, Status: in.Status}
	if err := s.store.Boats().Create(ctx, boat); err != nil {
		return nil, fmt.Errorf("create boat: %w", err)
	}

	s.logger.Info("Boat created", zap.Int64("boat_id", boat.ID), zap.Int("capacity", boat.Capacity))
	return boat, nil
}

func (s *ScheduleService) ListBoats(ctx context.Context, activeOnly bool) ([]*model.Boat, error) {
	boats, err := s.store.Boats().List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list boats: %w", err)
	}
	return boats, nil
}

type RouteInput struct {
	DeparturePort   string
	DestinationPort string
	DurationMinutes int
	BasePrice       model.Money
	Status          model.RouteStatus
}

func (s *ScheduleService) CreateRoute(ctx context.Context, in RouteInput) (*model.Route, error) {
	if in.Status == "" {
		in.Status = model.RouteStatusActive
	}
	err := firstError(
		requireText("departure_port", in.DeparturePort, 100),
		requireText("destination_port", in.DestinationPort, 100),
	)
	if err != nil {
		return nil, err
	}
	if in.DeparturePort == in.DestinationPort {
		return nil, domain.Invalid("destination_port", "must differ from the departure port")
	}
	if in.DurationMinutes <= 0 {
		return nil, domain.Invalid("duration_minutes", "must be at least 1")
	}
	if in.BasePrice < 0 {
		return nil, domain.Invalid("base_price", "must be greater than or equal to 0")
	}
	if !in.Status.Valid() {
		return nil, domain.Invalid("status", "must be active or inactive")
	}

	route := &model.Route{
		DeparturePort:   in.DeparturePort,
		DestinationPort: in.DestinationPort,
		DurationMinutes: in.DurationMinutes,
		BasePrice:       in.BasePrice,
		Status:          in.Status,
	}
	if err := s.store.Routes().Create(ctx, route); err != nil {
		return nil, fmt.Errorf("create route: %w", err)
	}

	s.logger.Info("Route created", zap.Int64("route_id", route.ID), zap.String("route", route.Name()))
	return route, nil
}

func (s *ScheduleService) ListRoutes(ctx context.Context, activeOnly bool) ([]*model.Route, error) {
	routes, err := s.store.Routes().List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	return routes, nil
}

func validateScheduleInput(in ScheduleInput) error {
	switch {
	case in.BoatID <= 0:
		return domain.Invalid("boat_id", "please select a boat")
	case in.RouteID <= 0:
		return domain.Invalid("route_id", "please select a route")
	case in.DepartureTime.IsZero():
		return domain.Invalid("departure_time", "is required")
	case !in.ArrivalTime.After(in.DepartureTime):
		return domain.Invalid("arrival_time", "must be after departure time")
	case in.Price < 0:
		return domain.Invalid("price", "must be greater than or equal to 0")
	}
	return nil
}

// loadFleet resolves the boat and route of a schedule; unknown ids are validation errors.
func loadFleet(ctx context.Context, tx repository.Store, boatID, routeID int64) (*model.Boat, *model.Route, error) {
	boat, err := tx.Boats().GetByID(ctx, boatID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, nil, domain.Invalid("boat_id", "the selected boat is invalid")
		}
		return nil, nil, err
	}

	route, err := tx.Routes().GetByID(ctx, routeID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, nil, domain.Invalid("route_id", "the selected route is invalid")
		}
		return nil, nil, err
	}
	return boat, route, nil
}
