package model

import "time"

// ScheduleFilter narrows the public listing of available schedules.
type ScheduleFilter struct {
	DeparturePort   string `json:"departure_port,omitempty"`
	DestinationPort string `json:"destination_port,omitempty"`
	DepartureDate   string `json:"departure_date,omitempty"` // YYYY-MM-DD
}

type AdminScheduleFilter struct {
	Search string
	Status ScheduleStatus
	Page   int
}

type BookingFilter struct {
	Search        string
	PaymentStatus PaymentStatus
	BookingStatus BookingStatus
	Page          int
}

type Paginated[T any] struct {
	Items   []T `json:"data"`
	Total   int `json:"total"`
	Page    int `json:"current_page"`
	PerPage int `json:"per_page"`
}

func (p Paginated[T]) LastPage() int {
	if p.PerPage <= 0 || p.Total == 0 {
		return 1
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}

// PageOffset converts a 1-based page number to a row offset.
func PageOffset(page, perPage int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * perPage
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID int64
	Admin  bool
}

type DashboardStats struct {
	TotalBookings   int   `json:"total_bookings"`
	PendingPayments int   `json:"pending_payments"`
	TotalRevenue    Money `json:"total_revenue"`
	ActiveSchedules int   `json:"active_schedules"`
}

type Dashboard struct {
	Stats             DashboardStats `json:"stats"`
	RecentBookings    []*Booking     `json:"recent_bookings"`
	UpcomingSchedules []*Schedule    `json:"upcoming_schedules"`
}

// SeatDrift compares the seat counter of a schedule with its booked-seat aggregate.
type SeatDrift struct {
	ScheduleID     int64     `json:"schedule_id"`
	DepartureTime  time.Time `json:"departure_time"`
	Capacity       int       `json:"capacity"`
	AvailableSeats int       `json:"available_seats"`
	BookedSeats    int       `json:"booked_seats"`
}

// Delta is positive when the counter has consumed more seats than the aggregate accounts for.
func (d SeatDrift) Delta() int {
	return (d.Capacity - d.AvailableSeats) - d.BookedSeats
}

// ScheduleDetail is the admin view of one sailing.
type ScheduleDetail struct {
	Schedule    *Schedule  `json:"schedule"`
	BookedSeats int        `json:"booked_seats"`
	Bookings    []*Booking `json:"bookings"`
}
