package memory

import (
	"context"
	"sort"

	"github.com/Freeeeeet/boat_booking/internal/domain"
	"github.com/Freeeeeet/boat_booking/internal/model"
)

type routeRepository struct{ s *Store }

func (r *routeRepository) Create(_ context.Context, route *model.Route) error {
	defer r.s.lock()()

	route.ID = r.s.data.nextID()
	route.CreatedAt = r.s.now()
	route.UpdatedAt = route.CreatedAt
	r.s.data.routes[route.ID] = *route
	return nil
}

func (r *routeRepository) GetByID(_ context.Context, id int64) (*model.Route, error) {
	defer r.s.lock()()

	route, ok := r.s.data.routes[id]
	if !ok {
		return nil, domain.NotFound("route", id)
	}
	return &route, nil
}

func (r *routeRepository) List(_ context.Context, activeOnly bool) ([]*model.Route, error) {
	defer r.s.lock()()

	var routes []*model.Route
	for _, route := range r.s.data.routes {
		if activeOnly && route.Status != model.RouteStatusActive {
			continue
		}
		route := route
		routes = append(routes, &route)
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].DeparturePort != routes[j].DeparturePort {
			return routes[i].DeparturePort < routes[j].DeparturePort
		}
		if routes[i].DestinationPort != routes[j].DestinationPort {
			return routes[i].DestinationPort < routes[j].DestinationPort
		}
		return routes[i].ID < routes[j].ID
	})
	return routes, nil
}

type boatRepository struct{ s *Store }

func (r *boatRepository) Create(_ context.Context, boat *model.Boat) error {
	defer r.s.lock()()

	boat.ID = r.s.data.nextID()
	boat.CreatedAt = r.s.now()
	boat.UpdatedAt = boat.CreatedAt
	r.s.data.boats[boat.ID] = *boat
	return nil
}

func (r *boatRepository) GetByID(_ context.Context, id int64) (*model.Boat, error) {
	defer r.s.lock()()

	boat, ok := r.s.data.boats[id]
	if !ok {
		return nil, domain.NotFound("boat", id)
	}
	return &boat, nil
}

func (r *boatRepository) List(_ context.Context, activeOnly bool) ([]*model.Boat, error) {
	defer r.s.lock()()

	var boats []*model.Boat
	for _, boat := range r.s.data.boats {
		if activeOnly && boat.Status != model.BoatStatusActive {
			continue
		}
		boat := boat
		boats = append(boats, &boat)
	}
	sort.Slice(boats, func(i, j int) bool {
		if boats[i].Name != boats[j].Name {
			return boats[i].Name < boats[j].Name
		}
		return boats[i].ID < boats[j].ID
	})
	return boats, nil
}
