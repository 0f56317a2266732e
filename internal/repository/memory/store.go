// Package memory keeps the whole dataset in process memory. Transactions are
// serialized by one mutex and rolled back by restoring a snapshot.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Freeeeeet/boat_booking/internal/model"
	"github.com/Freeeeeet/boat_booking/internal/repository"
)

type dataset struct {
	routes    map[int64]model.Route
	boats     map[int64]model.Boat
	schedules map[int64]model.Schedule
	bookings  map[int64]model.Booking
	payments  map[int64]model.Payment
	lastID    int64
}

func newDataset() *dataset {
	return &dataset{
		routes:    make(map[int64]model.Route),
		boats:     make(map[int64]model.Boat),
		schedules: make(map[int64]model.Schedule),
		bookings:  make(map[int64]model.Booking),
		payments:  make(map[int64]model.Payment),
	}
}

func (d *dataset) clone() *dataset {
	c := newDataset()
	for k, v := range d.routes {
		c.routes[k] = v
	}
	for k, v := range d.boats {
		c.boats[k] = v
	}
	for k, v := range d.schedules {
		c.schedules[k] = v
	}
	for k, v := range d.bookings {
		c.bookings[k] = v
	}
	for k, v := range d.payments {
		c.payments[k] = v
	}
	c.lastID = d.lastID
	return c
}

func (d *dataset) nextID() int64 {
	d.lastID++
	return d.lastID
}

type Store struct {
	mu   *sync.Mutex
	data *dataset
	now  func() time.Time
	inTx bool
}

func NewStore() *Store {
	return &Store{
		mu:   &sync.Mutex{},
		data: newDataset(),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// lock serializes a single operation outside of a transaction.
func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// WithTx runs fn exclusively; any error restores the dataset as it was before fn.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	tx := &Store{mu: s.mu, data: s.data, now: s.now, inTx: true}
	if err := fn(ctx, tx); err != nil {
		*s.data = *snapshot
		return err
	}
	return nil
}

func (s *Store) Routes() repository.RouteRepository       { return &routeRepository{s} }
func (s *Store) Boats() repository.BoatRepository         { return &boatRepository{s} }
func (s *Store) Schedules() repository.ScheduleRepository { return &scheduleRepository{s} }
func (s *Store) Bookings() repository.BookingRepository   { return &bookingRepository{s} }
func (s *Store) Payments() repository.PaymentRepository   { return &paymentRepository{s} }
