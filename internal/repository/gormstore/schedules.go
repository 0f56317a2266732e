package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/boat_booking/internal/domain"
	"github.com/Freeeeeet/boat_booking/internal/model"
	"github.com/Freeeeeet/boat_booking/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type scheduleRepository struct {
	db *gorm.DB
}

func (r *scheduleRepository) Create(ctx context.Context, schedule *model.Schedule) error {
	row := Schedule{
		BoatID:         schedule.BoatID,
		RouteID:        schedule.RouteID,
		DepartureTime:  schedule.DepartureTime.UTC(),
		ArrivalTime:    schedule.ArrivalTime.UTC(),
		PriceCents:     int64(schedule.Price),
		AvailableSeats: schedule.AvailableSeats,
		Status:         string(schedule.Status),
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&row).Error; err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	schedule.ID = row.ID
	schedule.CreatedAt = row.CreatedAt
	schedule.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *scheduleRepository) GetByID(ctx context.Context, id int64) (*model.Schedule, error) {
	return r.get(r.db.WithContext(ctx), id)
}

func (r *scheduleRepository) GetForUpdate(ctx context.Context, id int64) (*model.Schedule, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *scheduleRepository) get(db *gorm.DB, id int64) (*model.Schedule, error) {
	var row Schedule
	err := db.Preload("Boat").Preload("Route").Take(&row, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("schedule", id)
		}
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	return mapSchedule(row), nil
}

func (r *scheduleRepository) Update(ctx context.Context, schedule *model.Schedule) error {
	updatedAt := now()
	result := r.db.WithContext(ctx).
		Model(&Schedule{}).
		Where("id = ?", schedule.ID).
		Updates(map[string]any{
			"boat_id":         schedule.BoatID,
			"route_id":        schedule.RouteID,
			"departure_time":  schedule.DepartureTime.UTC(),
			"arrival_time":    schedule.ArrivalTime.UTC(),
			"price_cents":     int64(schedule.Price),
			"available_seats": schedule.AvailableSeats,
			"status":          string(schedule.Status),
			"updated_at":      updatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("update schedule: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NotFound("schedule", schedule.ID)
	}
	schedule.UpdatedAt = updatedAt
	return nil
}

func (r *scheduleRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&Schedule{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete schedule: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NotFound("schedule", id)
	}
	return nil
}

func (r *scheduleRepository) List(ctx context.Context, q repository.ScheduleQuery) ([]*model.Schedule, error) {
	order := "schedules.departure_time ASC, schedules.id ASC"
	if q.Descending {
		order = "schedules.departure_time DESC, schedules.id DESC"
	}

	query := r.db.WithContext(ctx).
		Scopes(scheduleFilter(q)).
		Preload("Boat").
		Preload("Route").
		Order(order)
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if q.Offset > 0 {
		query = query.Offset(q.Offset)
	}

	var rows []Schedule
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}

	schedules := make([]*model.Schedule, 0, len(rows))
	for _, row := range rows {
		schedules = append(schedules, mapSchedule(row))
	}
	return schedules, nil
}

func (r *scheduleRepository) Count(ctx context.Context, q repository.ScheduleQuery) (int, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&Schedule{}).Scopes(scheduleFilter(q)).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count schedules: %w", err)
	}
	return int(total), nil
}

// DecrementSeats is a compare-and-set on available_seats.
func (r *scheduleRepository) DecrementSeats(ctx context.Context, id int64, n int) error {
	result := r.db.WithContext(ctx).
		Model(&Schedule{}).
		Where("id = ? AND available_seats >= ?", id, n).
		Updates(map[string]any{
			"available_seats": gorm.Expr("available_seats - ?", n),
			"updated_at":      now(),
		})
	if result.Error != nil {
		return fmt.Errorf("decrement seats: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		if err := r.ensureExists(ctx, id); err != nil {
			return err
		}
		return domain.ErrInsufficientCapacity
	}
	return nil
}

func (r *scheduleRepository) IncrementSeats(ctx context.Context, id int64, n int) error {
	result := r.db.WithContext(ctx).
		Model(&Schedule{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"available_seats": gorm.Expr("available_seats + ?", n),
			"updated_at":      now(),
		})
	if result.Error != nil {
		return fmt.Errorf("increment seats: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NotFound("schedule", id)
	}
	return nil
}

func (r *scheduleRepository) ensureExists(ctx context.Context, id int64) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&Schedule{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("check schedule: %w", err)
	}
	if count == 0 {
		return domain.NotFound("schedule", id)
	}
	return nil
}

func scheduleFilter(q repository.ScheduleQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.
			Joins("JOIN boats ON boats.id = schedules.boat_id").
			Joins("JOIN routes ON routes.id = schedules.route_id")

		if !q.AvailableAt.IsZero() {
			db = db.Where("schedules.status = ? AND schedules.departure_time > ? AND schedules.available_seats > 0",
				string(model.ScheduleStatusActive), q.AvailableAt.UTC())
		}
		if q.Status != "" {
			db = db.Where("schedules.status = ?", string(q.Status))
		}
		if q.DeparturePort != "" {
			db = db.Where("routes.departure_port = ?", q.DeparturePort)
		}
		if q.DestinationPort != "" {
			db = db.Where("routes.destination_port = ?", q.DestinationPort)
		}
		if !q.DepartFrom.IsZero() {
			db = db.Where("schedules.departure_time >= ?", q.DepartFrom.UTC())
		}
		if !q.DepartBefore.IsZero() {
			db = db.Where("schedules.departure_time < ?", q.DepartBefore.UTC())
		}
		if q.Search != "" {
			pattern := "%" + strings.ToLower(q.Search) + "%"
			db = db.Where("(LOWER(boats.name) LIKE ? OR LOWER(routes.departure_port) LIKE ? OR LOWER(routes.destination_port) LIKE ?)",
				pattern, pattern, pattern)
		}
		return db
	}
}

func mapSchedule(row Schedule) *model.Schedule {
	schedule := &model.Schedule{
		ID:             row.ID,
		BoatID:         row.BoatID,
		RouteID:        row.RouteID,
		DepartureTime:  row.DepartureTime,
		ArrivalTime:    row.ArrivalTime,
		Price:          model.Money(row.PriceCents),
		AvailableSeats: row.AvailableSeats,
		Status:         model.ScheduleStatus(row.Status),
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
	if row.Boat != nil {
		boat := mapBoat(*row.Boat)
		schedule.Boat = &boat
	}
	if row.Route != nil {
		route := mapRoute(*row.Route)
		schedule.Route = &route
	}
	return schedule
}
