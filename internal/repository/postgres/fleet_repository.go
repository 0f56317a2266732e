package postgres

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/boat_booking/internal/domain"
	"github.com/Freeeeeet/boat_booking/internal/model"
	"github.com/Freeeeeet/boat_booking/internal/repository/base"
)

type RouteRepository struct {
	base.Repository
}

// Create inserts a new route
func (r *RouteRepository) Create(ctx context.Context, route *model.Route) error {
	query := `
		INSERT INTO routes (departure_port, destination_port, duration_minutes, base_price_cents, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.DB().QueryRow(
		ctx, query,
		route.DeparturePort,
		route.DestinationPort,
		route.DurationMinutes,
		route.BasePrice,
		route.Status,
	).Scan(&route.ID, &route.CreatedAt, &route.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create route: %w", err)
	}

	return nil
}

// GetByID returns a route or domain.NotFoundError
func (r *RouteRepository) GetByID(ctx context.Context, id int64) (*model.Route, error) {
	query := `
		SELECT id, departure_port, destination_port, duration_minutes, base_price_cents, status, created_at, updated_at
		FROM routes
		WHERE id = $1
	`

	var route model.Route
	err := r.DB().QueryRow(ctx, query, id).Scan(
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
		if base.IsNotFound(err) {
			return nil, domain.NotFound("route", id)
		}
		return nil, fmt.Errorf("get route by id: %w", err)
	}

	return &route, nil
}

// List returns routes ordered by ports
func (r *RouteRepository) List(ctx context.Context, activeOnly bool) ([]*model.Route, error) {
	query := `
		SELECT id, departure_port, destination_port, duration_minutes, base_price_cents, status, created_at, updated_at
		FROM routes
		WHERE ($1 = FALSE OR status = 'active')
		ORDER BY departure_port, destination_port, id
	`

	rows, err := r.DB().Query(ctx, query, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	defer rows.Close()

	var routes []*model.Route
	for rows.Next() {
		var route model.Route
		err := rows.Scan(
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
			return nil, fmt.Errorf("scan route: %w", err)
		}
		routes = append(routes, &route)
	}

	return routes, rows.Err()
}

type BoatRepository struct {
	base.Repository
}

// Create inserts a new boat
func (r *BoatRepository) Create(ctx context.Context, boat *model.Boat) error {
	query := `
		INSERT INTO boats (name, capacity, description, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.DB().QueryRow(ctx, query, boat.Name, boat.Capacity, boat.Description, boat.Status).
		Scan(&boat.ID, &boat.CreatedAt, &boat.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create boat: %w", err)
	}

	return nil
}

// GetByID returns a boat or domain.NotFoundError
func (r *BoatRepository) GetByID(ctx context.Context, id int64) (*model.Boat, error) {
	query := `
		SELECT id, name, capacity, description, status, created_at, updated_at
		FROM boats
		WHERE id = $1
	`

	var boat model.Boat
	err := r.DB().QueryRow(ctx, query, id).Scan(
		&boat.ID,
		&boat.Name,
		&boat.Capacity,
		&boat.Description,
		&boat.Status,
		&boat.CreatedAt,
		&boat.UpdatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, domain.NotFound("boat", id)
		}
		return nil, fmt.Errorf("get boat by id: %w", err)
	}

	return &boat, nil
}

// List returns boats ordered by name
func (r *BoatRepository) List(ctx context.Context, activeOnly bool) ([]*model.Boat, error) {
	query := `
		SELECT id, name, capacity, description, status, created_at, updated_at
		FROM boats
		WHERE ($1 = FALSE OR status = 'active')
		ORDER BY name, id
	`

	rows, err := r.DB().Query(ctx, query, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list boats: %w", err)
	}
	defer rows.Close()

	var boats []*model.Boat
	for rows.Next() {
		var boat model.Boat
		err := rows.Scan(
			&boat.ID,
			&boat.Name,
			&boat.Capacity,
			&boat.Description,
			&boat.Status,
			&boat.CreatedAt,
			&boat.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan boat: %w", err)
		}
		boats = append(boats, &boat)
	}

	return boats, rows.Err()
}
