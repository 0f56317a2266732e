package postgres

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/boat_booking/internal/domain"
	"github.com/Freeeeeet/boat_booking/internal/model"
	"github.com/Freeeeeet/boat_booking/internal/repository"
	"github.com/Freeeeeet/boat_booking/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

const scheduleColumns = `
	s.id, s.boat_id, s.route_id, s.departure_time, s.arrival_time, s.price_cents, s.available_seats, s.status, s.created_at, s.updated_at,
	b.id, b.name, b.capacity, b.description, b.status, b.created_at, b.updated_at,
	r.id, r.departure_port, r.destination_port, r.duration_minutes, r.base_price_cents, r.status, r.created_at, r.updated_at
`

const scheduleJoins = `
	FROM schedules s
	JOIN boats b ON b.id = s.boat_id
	JOIN routes r ON r.id = s.route_id
`

type ScheduleRepository struct {
	base.Repository
}

// Create inserts a new schedule
func (r *ScheduleRepository) Create(ctx context.Context, schedule *model.Schedule) error {
	query := `
		INSERT INTO schedules (boat_id, route_id, departure_time, arrival_time, price_cents, available_seats, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.DB().QueryRow(
		ctx, query,
		schedule.BoatID,
		schedule.RouteID,
		schedule.DepartureTime,
		schedule.ArrivalTime,
		schedule.Price,
		schedule.AvailableSeats,
		schedule.Status,
	).Scan(&schedule.ID, &schedule.CreatedAt, &schedule.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}

	return nil
}

// GetByID returns a schedule with boat and route
func (r *ScheduleRepository) GetByID(ctx context.Context, id int64) (*model.Schedule, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate locks the schedule row for the rest of the transaction
func (r *ScheduleRepository) GetForUpdate(ctx context.Context, id int64) (*model.Schedule, error) {
	return r.get(ctx, id, "FOR UPDATE OF s")
}

func (r *ScheduleRepository) get(ctx context.Context, id int64, lock string) (*model.Schedule, error) {
	query := "SELECT " + scheduleColumns + scheduleJoins + " WHERE s.id = $1 " + lock

	schedule, err := scanSchedule(r.DB().QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, domain.NotFound("schedule", id)
		}
		return nil, fmt.Errorf("get schedule by id: %w", err)
	}

	return schedule, nil
}

// Update writes every mutable column of the schedule
func (r *ScheduleRepository) Update(ctx context.Context, schedule *model.Schedule) error {
	query := `
		UPDATE schedules
		SET boat_id = $1, route_id = $2, departure_time = $3, arrival_time = $4,
		    price_cents = $5, available_seats = $6, status = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`

	err := r.DB().QueryRow(
		ctx, query,
		schedule.BoatID,
		schedule.RouteID,
		schedule.DepartureTime,
		schedule.ArrivalTime,
		schedule.Price,
		schedule.AvailableSeats,
		schedule.Status,
		schedule.ID,
	).Scan(&schedule.UpdatedAt)

	if err != nil {
		if base.IsNotFound(err) {
			return domain.NotFound("schedule", schedule.ID)
		}
		return fmt.Errorf("update schedule: %w", err)
	}

	return nil
}

// Delete removes the schedule row
func (r *ScheduleRepository) Delete(ctx context.Context, id int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}

	if affected == 0 {
		return domain.NotFound("schedule", id)
	}

	return nil
}

// List returns schedules matching the query, by departure time
func (r *ScheduleRepository) List(ctx context.Context, q repository.ScheduleQuery) ([]*model.Schedule, error) {
	where := scheduleWhere(q)

	order := "ASC"
	if q.Descending {
		order = "DESC"
	}
	query := "SELECT " + scheduleColumns + scheduleJoins + where.SQL() +
		fmt.Sprintf(" ORDER BY s.departure_time %s, s.id %s", order, order)
	if q.Limit > 0 {
		query += " LIMIT " + where.Next(q.Limit)
	}
	if q.Offset > 0 {
		query += " OFFSET " + where.Next(q.Offset)
	}

	rows, err := r.DB().Query(ctx, query, where.Args()...)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	var schedules []*model.Schedule
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		schedules = append(schedules, schedule)
	}

	return schedules, rows.Err()
}

// Count returns the number of schedules matching the query
func (r *ScheduleRepository) Count(ctx context.Context, q repository.ScheduleQuery) (int, error) {
	where := scheduleWhere(q)

	var count int
	err := r.DB().QueryRow(ctx, "SELECT COUNT(*) "+scheduleJoins+where.SQL(), where.Args()...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count schedules: %w", err)
	}

	return count, nil
}

// DecrementSeats takes n seats in one conditional statement
func (r *ScheduleRepository) DecrementSeats(ctx context.Context, id int64, n int) error {
	query := `
		UPDATE schedules
		SET available_seats = available_seats - $1, updated_at = NOW()
		WHERE id = $2 AND available_seats >= $1
	`

	affected, err := r.ExecAffected(ctx, query, n, id)
	if err != nil {
		return fmt.Errorf("decrement seats: %w", err)
	}

	if affected == 0 {
		if err := r.ensureExists(ctx, id); err != nil {
			return err
		}
		return domain.ErrInsufficientCapacity
	}

	return nil
}

// IncrementSeats returns n seats to the schedule
func (r *ScheduleRepository) IncrementSeats(ctx context.Context, id int64, n int) error {
	query := `
		UPDATE schedules
		SET available_seats = available_seats + $1, updated_at = NOW()
		WHERE id = $2
	`

	affected, err := r.ExecAffected(ctx, query, n, id)
	if err != nil {
		return fmt.Errorf("increment seats: %w", err)
	}

	if affected == 0 {
		return domain.NotFound("schedule", id)
	}

	return nil
}

func (r *ScheduleRepository) ensureExists(ctx context.Context, id int64) error {
	var exists bool
	err := r.DB().QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM schedules WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check schedule exists: %w", err)
	}

	if !exists {
		return domain.NotFound("schedule", id)
	}

	return nil
}

func scheduleWhere(q repository.ScheduleQuery) *base.Where {
	where := &base.Where{}

	if !q.AvailableAt.IsZero() {
		where.Add("s.status = ?", model.ScheduleStatusActive)
		where.Add("s.available_seats > 0")
		where.Add("s.departure_time > ?", q.AvailableAt)
	}
	if q.Status != "" {
		where.Add("s.status = ?", q.Status)
	}
	if q.DeparturePort != "" {
		where.Add("r.departure_port = ?", q.DeparturePort)
	}
	if q.DestinationPort != "" {
		where.Add("r.destination_port = ?", q.DestinationPort)
	}
	if !q.DepartFrom.IsZero() {
		where.Add("s.departure_time >= ?", q.DepartFrom)
	}
	if !q.DepartBefore.IsZero() {
		where.Add("s.departure_time < ?", q.DepartBefore)
	}
	if q.Search != "" {
		like := "%" + q.Search + "%"
		where.Add("(b.name ILIKE ? OR r.departure_port ILIKE ? OR r.destination_port ILIKE ?)", like, like, like)
	}

	return where
}

func scanSchedule(row pgx.Row) (*model.Schedule, error) {
	var (
		schedule model.Schedule
		boat     model.Boat
		route    model.Route
	)

	err := row.Scan(
		&schedule.ID,
		&schedule.BoatID,
		&schedule.RouteID,
		&schedule.DepartureTime,
		&schedule.ArrivalTime,
		&schedule.Price,
		&schedule.AvailableSeats,
		&schedule.Status,
		&schedule.CreatedAt,
		&schedule.UpdatedAt,
		&boat.ID,
		&boat.Name,
		&boat.Capacity,
		&boat.Description,
		&boat.Status,
		&boat.CreatedAt,
		&boat.UpdatedAt,
		&route.ID,
		&route.DeparturePort,
		&route.DestinationPort,
		&route.DurationMinutes,
		&route.BasePrice,
		&route.Status,
		&route.CreatedAt,
		&route.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	schedule.Boat = &boat
	schedule.Route = &route
	return &schedule, nil
}
