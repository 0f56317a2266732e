package api

import (
	"errors"
	"net/http"

	"github.com/Freeeeeet/boat_booking/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, errorResponse{Error: message, Code: code, RequestID: requestID(c)})
}

func respondValidation(c *gin.Context, field, message string) {
	c.JSON(http.StatusUnprocessableEntity, errorResponse{
		Error:     message,
		Code:      "validation_error",
		Field:     field,
		RequestID: requestID(c),
	})
}

// respondBindError answers a request whose body or query could not be bound.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		respondValidation(c, fe.Field(), bindingMessage(fe))
		return
	}
	respondError(c, http.StatusBadRequest, "invalid_payload", "malformed request: "+err.Error())
}

func bindingMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "max":
		return fe.Field() + " may not be greater than " + fe.Param()
	case "min", "gte", "gt":
		return fe.Field() + " must be at least " + fe.Param()
	}
	return fe.Field() + " is invalid"
}

// respondDomainError maps the service error taxonomy onto HTTP statuses.
func (h *Handler) respondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		var verr domain.ValidationError
		errors.As(err, &verr)
		respondValidation(c, verr.Field, verr.Error())
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", rootMessage(err))
	case domain.IsAuthorization(err):
		respondError(c, http.StatusForbidden, "forbidden", rootMessage(err))
	case errors.Is(err, domain.ErrInsufficientCapacity):
		respondError(c, http.StatusConflict, "insufficient_capacity", domain.ErrInsufficientCapacity.Error())
	case errors.Is(err, domain.ErrScheduleUnavailable):
		respondError(c, http.StatusConflict, "schedule_unavailable", domain.ErrScheduleUnavailable.Error())
	case errors.Is(err, domain.ErrAlreadyPaid):
		respondError(c, http.StatusConflict, "already_paid", domain.ErrAlreadyPaid.Error())
	case errors.Is(err, domain.ErrHasDependentBookings):
		respondError(c, http.StatusConflict, "has_bookings", domain.ErrHasDependentBookings.Error())
	case errors.Is(err, domain.ErrCodeGenerationExhausted):
		h.logger.Warn("Booking code space exhausted", zap.String("request_id", requestID(c)))
		c.Header("Retry-After", "1")
		respondError(c, http.StatusServiceUnavailable, "code_generation_exhausted", domain.ErrCodeGenerationExhausted.Error())
	case errors.Is(err, domain.ErrPaymentDeclined):
		respondError(c, http.StatusPaymentRequired, "payment_declined", domain.ErrPaymentDeclined.Error())
	default:
		h.logger.Error("Request failed",
			zap.String("request_id", requestID(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		respondError(c, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// rootMessage strips the "verb noun:" wrapping added on the way up.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
