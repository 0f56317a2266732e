package api

import (
	"time"

	"github.com/Freeeeeet/boat_booking/internal/model"
	"github.com/Freeeeeet/boat_booking/internal/service"
)

type scheduleListQuery struct {
	DeparturePort   string `form:"departure_port"`
	DestinationPort string `form:"destination_port"`
	DepartureDate   string `form:"departure_date"`
}

type pageQuery struct {
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Search string `form:"search"`
}

type adminScheduleQuery struct {
	pageQuery
	Status model.ScheduleStatus `form:"status"`
}

type adminBookingQuery struct {
	pageQuery
	PaymentStatus model.PaymentStatus `form:"payment_status"`
	BookingStatus model.BookingStatus `form:"booking_status"`
}

type createBookingRequest struct {
	ScheduleID     int64   `json:"schedule_id" binding:"required"`
	CustomerName   string  `json:"customer_name" binding:"required"`
	CustomerEmail  string  `json:"customer_email" binding:"required"`
	CustomerPhone  string  `json:"customer_phone" binding:"required"`
	PassengerCount int     `json:"passenger_count" binding:"required"`
	Notes          *string `json:"notes"`
}

func (r createBookingRequest) input() service.BookingInput {
	return service.BookingInput{
		ScheduleID:     r.ScheduleID,
		CustomerName:   r.CustomerName,
		CustomerEmail:  r.CustomerEmail,
		CustomerPhone:  r.CustomerPhone,
		PassengerCount: r.PassengerCount,
		Notes:          r.Notes,
	}
}

type paymentRequest struct {
	PaymentMethod  string `json:"payment_method" binding:"required"`
	CardNumber     string `json:"card_number" binding:"required"`
	ExpiryMonth    int    `json:"expiry_month" binding:"required"`
	ExpiryYear     int    `json:"expiry_year" binding:"required"`
	CVV            string `json:"cvv" binding:"required"`
	CardholderName string `json:"cardholder_name" binding:"required"`
}

func (r paymentRequest) input() service.PaymentInput {
	return service.PaymentInput{
		PaymentMethod:  r.PaymentMethod,
		CardNumber:     r.CardNumber,
		ExpiryMonth:    r.ExpiryMonth,
		ExpiryYear:     r.ExpiryYear,
		CVV:            r.CVV,
		CardholderName: r.CardholderName,
	}
}

type paymentResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Payment *model.Payment `json:"payment"`
	Booking *model.Booking `json:"booking"`
}

type scheduleRequest struct {
	BoatID         int64                `json:"boat_id" binding:"required"`
	RouteID        int64                `json:"route_id" binding:"required"`
	DepartureTime  time.Time            `json:"departure_time" binding:"required"`
	ArrivalTime    time.Time            `json:"arrival_time" binding:"required"`
	Price          model.Money          `json:"price"`
	Status         model.ScheduleStatus `json:"status"`
	AvailableSeats *int                 `json:"available_seats"`
}

func (r scheduleRequest) input() service.ScheduleInput {
	return service.ScheduleInput{
		BoatID:         r.BoatID,
		RouteID:        r.RouteID,
		DepartureTime:  r.DepartureTime,
		ArrivalTime:    r.ArrivalTime,
		Price:          r.Price,
		Status:         r.Status,
		AvailableSeats: r.AvailableSeats,
	}
}

type adminBookingRequest struct {
	BookingStatus *model.BookingStatus `json:"booking_status"`
	PaymentStatus *model.PaymentStatus `json:"payment_status"`
	Notes         *string              `json:"notes"`
}

type boatRequest struct {
	Name        string           `json:"name" binding:"required"`
	Capacity    int              `json:"capacity" binding:"required"`
	Description string           `json:"description"`
	Status      model.BoatStatus `json:"status"`
}

type routeRequest struct {
	DeparturePort   string            `json:"departure_port" binding:"required"`
	DestinationPort string            `json:"destination_port" binding:"required"`
	DurationMinutes int               `json:"duration_minutes" binding:"required"`
	BasePrice       model.Money       `json:"base_price"`
	Status          model.RouteStatus `json:"status"`
}

type pageResponse[T any] struct {
	Data        []T `json:"data"`
	Total       int `json:"total"`
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	LastPage    int `json:"last_page"`
}

func newPageResponse[T any](p model.Paginated[T]) pageResponse[T] {
	data := p.Items
	if data == nil {
		data = []T{}
	}
	return pageResponse[T]{
		Data:        data,
		Total:       p.Total,
		CurrentPage: p.Page,
		PerPage:     p.PerPage,
		LastPage:    p.LastPage(),
	}
}
