package domain

import (
	"errors"
	"fmt"
)

// Booking and inventory failures surfaced to callers.
var (
	ErrInsufficientCapacity    = errors.New("not enough seats available")
	ErrScheduleUnavailable     = errors.New("schedule is no longer available")
	ErrAlreadyPaid             = errors.New("booking has already been paid")
	ErrHasDependentBookings    = errors.New("cannot delete schedule with existing bookings")
	ErrCodeGenerationExhausted = errors.New("could not generate a unique booking code")
	ErrPaymentDeclined         = errors.New("payment failed, please try again")

	// ErrDuplicateBookingCode is returned by storage when a booking code is already taken.
	ErrDuplicateBookingCode = errors.New("duplicate booking code")
)

type ValidationError struct {
	Field string
	Msg   string
}

func (e ValidationError) Error() string {
	switch {
	case e.Field != "" && e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Field != "":
		return fmt.Sprintf("invalid %s", e.Field)
	default:
		return "validation error"
	}
}

// Invalid builds a ValidationError for a single field.
func Invalid(field, msg string) error {
	return ValidationError{Field: field, Msg: msg}
}

type NotFoundError struct {
	Resource string
	ID       int64
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	if e.ID == 0 {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// NotFound builds a NotFoundError for resource with the given id.
func NotFound(resource string, id int64) error {
	return NotFoundError{Resource: resource, ID: id}
}

type AuthorizationError struct {
	Msg string
}

func (e AuthorizationError) Error() string {
	if e.Msg == "" {
		return "not allowed"
	}
	return e.Msg
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsAuthorization(err error) bool {
	var target AuthorizationError
	return errors.As(err, &target)
}
