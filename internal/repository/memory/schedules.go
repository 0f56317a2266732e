package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/Freeeeeet/boat_booking/internal/domain"
	"github.com/Freeeeeet/boat_booking/internal/model"
	"github.com/Freeeeeet/boat_booking/internal/repository"
)

type scheduleRepository struct{ s *Store }

func (r *scheduleRepository) Create(_ context.Context, schedule *model.Schedule) error {
	defer r.s.lock()()

	if _, ok := r.s.data.boats[schedule.BoatID]; !ok {
		return domain.NotFound("boat", schedule.BoatID)
	}
	if _, ok := r.s.data.routes[schedule.RouteID]; !ok {
		return domain.NotFound("route", schedule.RouteID)
	}

	schedule.ID = r.s.data.nextID()
	schedule.CreatedAt = r.s.now()
	schedule.UpdatedAt = schedule.CreatedAt
	r.s.data.schedules[schedule.ID] = stripSchedule(*schedule)
	return nil
}

func (r *scheduleRepository) GetByID(_ context.Context, id int64) (*model.Schedule, error) {
	defer r.s.lock()()
	return r.get(id)
}

// GetForUpdate needs no extra locking: transactions already run one at a time.
func (r *scheduleRepository) GetForUpdate(ctx context.Context, id int64) (*model.Schedule, error) {
	return r.GetByID(ctx, id)
}

func (r *scheduleRepository) get(id int64) (*model.Schedule, error) {
	schedule, ok := r.s.data.schedules[id]
	if !ok {
		return nil, domain.NotFound("schedule", id)
	}
	return r.withRelations(schedule), nil
}

func (r *scheduleRepository) withRelations(schedule model.Schedule) *model.Schedule {
	if boat, ok := r.s.data.boats[schedule.BoatID]; ok {
		schedule.Boat = &boat
	}
	if route, ok := r.s.data.routes[schedule.RouteID]; ok {
		schedule.Route = &route
	}
	return &schedule
}

func (r *scheduleRepository) Update(_ context.Context, schedule *model.Schedule) error {
	defer r.s.lock()()

	if _, ok := r.s.data.schedules[schedule.ID]; !ok {
		return domain.NotFound("schedule", schedule.ID)
	}
	schedule.UpdatedAt = r.s.now()
	r.s.data.schedules[schedule.ID] = stripSchedule(*schedule)
	return nil
}

func (r *scheduleRepository) Delete(_ context.Context, id int64) error {
	defer r.s.lock()()

	if _, ok := r.s.data.schedules[id]; !ok {
		return domain.NotFound("schedule", id)
	}
	delete(r.s.data.schedules, id)
	return nil
}

func (r *scheduleRepository) List(_ context.Context, q repository.ScheduleQuery) ([]*model.Schedule, error) {
	defer r.s.lock()()

	schedules := r.matching(q)
	sort.Slice(schedules, func(i, j int) bool {
		a, b := schedules[i], schedules[j]
		if q.Descending {
			a, b = b, a
		}
		if !a.DepartureTime.Equal(b.DepartureTime) {
			return a.DepartureTime.Before(b.DepartureTime)
		}
		return a.ID < b.ID
	})
	return paginate(schedules, q.Offset, q.Limit), nil
}

func (r *scheduleRepository) Count(_ context.Context, q repository.ScheduleQuery) (int, error) {
	defer r.s.lock()()
	return len(r.matching(q)), nil
}

func (r *scheduleRepository) DecrementSeats(_ context.Context, id int64, n int) error {
	defer r.s.lock()()

	schedule, ok := r.s.data.schedules[id]
	if !ok {
		return domain.NotFound("schedule", id)
	}
	if schedule.AvailableSeats < n {
		return domain.ErrInsufficientCapacity
	}
	schedule.AvailableSeats -= n
	schedule.UpdatedAt = r.s.now()
	r.s.data.schedules[id] = schedule
	return nil
}

func (r *scheduleRepository) IncrementSeats(_ context.Context, id int64, n int) error {
	defer r.s.lock()()

	schedule, ok := r.s.data.schedules[id]
	if !ok {
		return domain.NotFound("schedule", id)
	}
	schedule.AvailableSeats += n
	schedule.UpdatedAt = r.s.now()
	r.s.data.schedules[id] = schedule
	return nil
}

func (r *scheduleRepository) matching(q repository.ScheduleQuery) []*model.Schedule {
	search := strings.ToLower(q.Search)

	var out []*model.Schedule
	for _, stored := range r.s.data.schedules {
		schedule := r.withRelations(stored)
		boat, route := schedule.Boat, schedule.Route
		if boat == nil || route == nil {
			continue
		}

		switch {
		case !q.AvailableAt.IsZero() && !schedule.IsAvailable(q.AvailableAt):
			continue
		case q.Status != "" && schedule.Status != q.Status:
			continue
		case q.DeparturePort != "" && route.DeparturePort != q.DeparturePort:
			continue
		case q.DestinationPort != "" && route.DestinationPort != q.DestinationPort:
			continue
		case !q.DepartFrom.IsZero() && schedule.DepartureTime.Before(q.DepartFrom):
			continue
		case !q.DepartBefore.IsZero() && !schedule.DepartureTime.Before(q.DepartBefore):
			continue
		case search != "" &&
			!strings.Contains(strings.ToLower(boat.Name), search) &&
			!strings.Contains(strings.ToLower(route.DeparturePort), search) &&
			!strings.Contains(strings.ToLower(route.DestinationPort), search):
			continue
		}
		out = append(out, schedule)
	}
	return out
}

func stripSchedule(schedule model.Schedule) model.Schedule {
	schedule.Boat = nil
	schedule.Route = nil
	return schedule
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
