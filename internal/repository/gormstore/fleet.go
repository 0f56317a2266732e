package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/boat_booking/internal/domain"
	"github.com/Freeeeeet/boat_booking/internal/model"
	"gorm.io/gorm"
)

type routeRepository struct {
	db *gorm.DB
}

func (r *routeRepository) Create(ctx context.Context, route *model.Route) error {
	row := Route{
		DeparturePort:   route.DeparturePort,
		DestinationPort: route.DestinationPort,
		DurationMinutes: route.DurationMinutes,
		BasePriceCents:  int64(route.BasePrice),
		Status:          string(route.Status),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("create route: %w", err)
	}
	*route = mapRoute(row)
	return nil
}

func (r *routeRepository) GetByID(ctx context.Context, id int64) (*model.Route, error) {
	var row Route
	err := r.db.WithContext(ctx).Take(&row, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("route", id)
		}
		return nil, fmt.Errorf("get route: %w", err)
	}
	route := mapRoute(row)
	return &route, nil
}

func (r *routeRepository) List(ctx context.Context, activeOnly bool) ([]*model.Route, error) {
	query := r.db.WithContext(ctx).Order("departure_port, destination_port, id")
	if activeOnly {
		query = query.Where("status = ?", string(model.RouteStatusActive))
	}

	var rows []Route
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}

	routes := make([]*model.Route, 0, len(rows))
	for _, row := range rows {
		route := mapRoute(row)
		routes = append(routes, &route)
	}
	return routes, nil
}

type boatRepository struct {
	db *gorm.DB
}

func (r *boatRepository) Create(ctx context.Context, boat *model.Boat) error {
	row := Boat{
		Name:        boat.Name,
		Capacity:    boat.Capacity,
		Description: boat.Description,
		Status:      string(boat.Status),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("create boat: %w", err)
	}
	*boat = mapBoat(row)
	return nil
}

func (r *boatRepository) GetByID(ctx context.Context, id int64) (*model.Boat, error) {
	var row Boat
	err := r.db.WithContext(ctx).Take(&row, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("boat", id)
		}
		return nil, fmt.Errorf("get boat: %w", err)
	}
	boat := mapBoat(row)
	return &boat, nil
}

func (r *boatRepository) List(ctx context.Context, activeOnly bool) ([]*model.Boat, error) {
	query := r.db.WithContext(ctx).Order("name, id")
	if activeOnly {
		query = query.Where("status = ?", string(model.BoatStatusActive))
	}

	var rows []Boat
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list boats: %w", err)
	}

	boats := make([]*model.Boat, 0, len(rows))
	for _, row := range rows {
		boat := mapBoat(row)
		boats = append(boats, &boat)
	}
	return boats, nil
}

func mapRoute(row Route) model.Route {
	return model.Route{
		ID:              row.ID,
		DeparturePort:   row.DeparturePort,
		DestinationPort: row.DestinationPort,
		DurationMinutes: row.DurationMinutes,
		BasePrice:       model.Money(row.BasePriceCents),
		Status:          model.RouteStatus(row.Status),
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

func mapBoat(row Boat) model.Boat {
	return model.Boat{
		ID:          row.ID,
		Name:        row.Name,
		Capacity:    row.Capacity,
		Description: row.Description,
		Status:      model.BoatStatus(row.Status),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
