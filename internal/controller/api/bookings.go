package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listMyBookings(c *gin.Context) {
	actor, _ := actorFrom(c)

	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	page, err := h.bookings.ListUserBookings(c.Request.Context(), actor, q.Page)
	if err != nil {
		h.respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPageResponse(page))
}

// createBooking books seats for the caller. The booking belongs to the
// authenticated user; guest bookings only come from other channels.
func (h *Handler) createBooking(c *gin.Context) {
	actor, _ := actorFrom(c)

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	userID := actor.UserID
	booking, err := h.bookings.CreateBooking(c.Request.Context(), &userID, req.input())
	if err != nil {
		h.respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": booking})
}

func (h *Handler) getBooking(c *gin.Context) {
	actor, _ := actorFrom(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	booking, err := h.bookings.GetBookingFor(c.Request.Context(), actor, id)
	if err != nil {
		h.respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":             booking,
		"can_be_cancelled": booking.CanBeCancelled(time.Now()),
	})
}

func (h *Handler) submitPayment(c *gin.Context) {
	actor, _ := actorFrom(c)
	id, ok := pathID(c, "bookingId")
	if !ok {
		return
	}

	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	outcome, err := h.payments.SubmitPayment(c.Request.Context(), actor, id, req.input())
	if err != nil {
		h.respondDomainError(c, err)
		return
	}
	if !outcome.Success {
		respondError(c, http.StatusPaymentRequired, "payment_declined", outcome.Reason)
		return
	}

	booking, err := h.bookings.GetBooking(c.Request.Context(), id)
	if err != nil {
		h.respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, paymentResponse{
		Success: true,
		Message: "Payment successful",
		Payment: outcome.Payment,
		Booking: booking,
	})
}
