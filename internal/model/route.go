package model

import (
	"fmt"
	"time"
)

type RouteStatus string

const (
	RouteStatusActive   RouteStatus = "active"
	RouteStatusInactive RouteStatus = "inactive"
)

func (s RouteStatus) Valid() bool {
	return s == RouteStatusActive || s == RouteStatusInactive
}

type Route struct {
	ID              int64       `json:"id"`
	DeparturePort   string      `json:"departure_port"`
	DestinationPort string      `json:"destination_port"`
	DurationMinutes int         `json:"duration_minutes"`
	BasePrice       Money       `json:"base_price"`
	Status          RouteStatus `json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// Name returns the "from → to" label of the route.
func (r *Route) Name() string {
	return fmt.Sprintf("%s → %s", r.DeparturePort, r.DestinationPort)
}

// DurationFormatted renders the duration as "2h 30m", "2h" or "45m".
func (r *Route) DurationFormatted() string {
	hours := r.DurationMinutes / 60
	minutes := r.DurationMinutes % 60
	if hours == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	if minutes == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
