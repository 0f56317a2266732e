package model

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	return s == BookingStatusConfirmed || s == BookingStatusCancelled
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"   // admin-set only
	PaymentStatusRefunded PaymentStatus = "refunded" // admin-set only
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

const (
	MinPassengers = 1
	MaxPassengers = 10
)

// cancellationWindow is how long before departure a booking may still be cancelled.
const cancellationWindow = 24 * time.Hour

type Booking struct {
	ID             int64         `json:"id"`
	BookingCode    string        `json:"booking_code"`
	UserID         *int64        `json:"user_id"` // nil for guest bookings
	ScheduleID     int64         `json:"schedule_id"`
	CustomerName   string        `json:"customer_name"`
	CustomerEmail  string        `json:"customer_email"`
	CustomerPhone  string        `json:"customer_phone"`
	PassengerCount int           `json:"passenger_count"`
	TotalAmount    Money         `json:"total_amount"` // frozen at creation
	PaymentStatus  PaymentStatus `json:"payment_status"`
	BookingStatus  BookingStatus `json:"booking_status"`
	Notes          *string       `json:"notes"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`

	Schedule *Schedule  `json:"schedule,omitempty"`
	Payments []*Payment `json:"payments,omitempty"`
}

func (b *Booking) IsPaid() bool {
	return b.PaymentStatus == PaymentStatusPaid
}

// CanBeCancelled requires the schedule relation to be loaded.
func (b *Booking) CanBeCancelled(now time.Time) bool {
	if b.BookingStatus != BookingStatusConfirmed || b.Schedule == nil {
		return false
	}
	return b.Schedule.DepartureTime.After(now.Add(cancellationWindow))
}

// CountsTowardBookedSeats reports whether the booking contributes to the booked-seat aggregate.
func (b *Booking) CountsTowardBookedSeats() bool {
	return b.BookingStatus == BookingStatusConfirmed && b.PaymentStatus != PaymentStatusFailed
}

// OwnedBy reports whether userID made the booking. Guest bookings have no owner.
func (b *Booking) OwnedBy(userID int64) bool {
	return b.UserID != nil && *b.UserID == userID
}
