package service

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/Freeeeeet/boat_booking/internal/domain"
)

func requireText(field, value string, max int) error {
	if strings.TrimSpace(value) == "" {
		return domain.Invalid(field, "is required")
	}
	return maxLength(field, value, max)
}

func maxLength(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return domain.Invalid(field, fmt.Sprintf("may not be greater than %d characters", max))
	}
	return nil
}

func validateEmail(field, value string) error {
	if err := requireText(field, value, 255); err != nil {
		return err
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return domain.Invalid(field, "must be a valid email address")
	}
	return nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// firstError returns the first non-nil error.
func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
