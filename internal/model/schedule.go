package model

import "time"

type ScheduleStatus string

const (
	ScheduleStatusActive    ScheduleStatus = "active"
	ScheduleStatusCancelled ScheduleStatus = "cancelled"
	ScheduleStatusFull      ScheduleStatus = "full"
)

func (s ScheduleStatus) Valid() bool {
	switch s {
	case ScheduleStatusActive, ScheduleStatusCancelled, ScheduleStatusFull:
		return true
	}
	return false
}

type Schedule struct {
	ID             int64          `json:"id"`
	BoatID         int64          `json:"boat_id"`
	RouteID        int64          `json:"route_id"`
	DepartureTime  time.Time      `json:"departure_time"`
	ArrivalTime    time.Time      `json:"arrival_time"`
	Price          Money          `json:"price"`
	AvailableSeats int            `json:"available_seats"` // authoritative seat counter
	Status         ScheduleStatus `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`

	// Loaded relations, not columns.
	Boat  *Boat  `json:"boat,omitempty"`
	Route *Route `json:"route,omitempty"`
}

// IsFull reports whether the seat counter is exhausted or an admin marked the sailing full.
func (s *Schedule) IsFull() bool {
	return s.AvailableSeats <= 0 || s.Status == ScheduleStatusFull
}

// AcceptsBookings reports whether the sailing is active and still in the future.
func (s *Schedule) AcceptsBookings(now time.Time) bool {
	return s.Status == ScheduleStatusActive && s.DepartureTime.After(now)
}

// IsAvailable matches the public listing: bookable and with seats left.
func (s *Schedule) IsAvailable(now time.Time) bool {
	return s.AcceptsBookings(now) && s.AvailableSeats > 0
}

// Capacity returns the boat capacity when the boat relation is loaded.
func (s *Schedule) Capacity() int {
	if s.Boat == nil {
		return 0
	}
	return s.Boat.Capacity
}
