package gormstore

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Route mirrors the routes table.
type Route struct {
	ID              int64     `gorm:"primaryKey"`
	DeparturePort   string    `gorm:"size:100;not null;index:idx_routes_ports,priority:1"`
	DestinationPort string    `gorm:"size:100;not null;index:idx_routes_ports,priority:2"`
	DurationMinutes int       `gorm:"not null"`
	BasePriceCents  int64     `gorm:"not null"`
	Status          string    `gorm:"size:20;not null"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

func (Route) TableName() string { return "routes" }

// Boat mirrors the boats table.
type Boat struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"size:255;not null"`
	Capacity    int       `gorm:"not null"`
	Description string    `gorm:"type:text;not null;default:''"`
	Status      string    `gorm:"size:20;not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (Boat) TableName() string { return "boats" }

// Schedule mirrors the schedules table; Boat and Route are loaded with Preload.
type Schedule struct {
	ID             int64     `gorm:"primaryKey"`
	BoatID         int64     `gorm:"not null;index"`
	RouteID        int64     `gorm:"not null;index:idx_schedules_route_departure,priority:1"`
	DepartureTime  time.Time `gorm:"not null;index:idx_schedules_route_departure,priority:2;index:idx_schedules_departure_status,priority:1"`
	ArrivalTime    time.Time `gorm:"not null"`
	PriceCents     int64     `gorm:"not null"`
	AvailableSeats int       `gorm:"not null"`
	Status         string    `gorm:"size:20;not null;index:idx_schedules_departure_status,priority:2"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`

	Boat  *Boat  `gorm:"foreignKey:BoatID;constraint:OnDelete:RESTRICT"`
	Route *Route `gorm:"foreignKey:RouteID;constraint:OnDelete:RESTRICT"`
}

func (Schedule) TableName() string { return "schedules" }

// Booking mirrors the bookings table.
type Booking struct {
	ID               int64     `gorm:"primaryKey"`
	BookingCode      string    `gorm:"size:20;not null;uniqueIndex:bookings_booking_code_key"`
	UserID           *int64    `gorm:"index"`
	ScheduleID       int64     `gorm:"not null;index"`
	CustomerName     string    `gorm:"size:255;not null"`
	CustomerEmail    string    `gorm:"size:255;not null"`
	CustomerPhone    string    `gorm:"size:20;not null"`
	PassengerCount   int       `gorm:"not null"`
	TotalAmountCents int64     `gorm:"not null"`
	PaymentStatus    string    `gorm:"size:20;not null;index"`
	BookingStatus    string    `gorm:"size:20;not null;index"`
	Notes            *string   `gorm:"type:text"`
	CreatedAt        time.Time `gorm:"not null;index"`
	UpdatedAt        time.Time `gorm:"not null"`
}

func (Booking) TableName() string { return "bookings" }

// Payment mirrors the payments table.
type Payment struct {
	ID             int64          `gorm:"primaryKey"`
	BookingID      int64          `gorm:"not null;index"`
	PaymentMethod  string         `gorm:"size:50;not null"`
	AmountCents    int64          `gorm:"not null"`
	TransactionID  string         `gorm:"size:100;not null"`
	Status         string         `gorm:"size:20;not null"`
	PaymentDetails datatypes.JSON `gorm:"not null"`
	PaidAt         *time.Time
	CreatedAt      time.Time `gorm:"not null"`
}

func (Payment) TableName() string { return "payments" }

// AutoMigrate creates or updates every table used by the store.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Route{}, &Boat{}, &Schedule{}, &Booking{}, &Payment{})
}
