package api

import (
	"net/http"

	"github.com/Freeeeeet/boat_booking/internal/model"
	"github.com/Freeeeeet/boat_booking/internal/service"
	"github.com/gin-gonic/gin"
)

func (h *Handler) dashboard(c *gin.Context) {
	dashboard, err := h.bookings.Dashboard(c.Request.Context())
	if err != nil {
		h.respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (h *Handler) adminListSchedules(c *gin.Context) {
	var q adminScheduleQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	page, err := h.schedules.ListSchedulesAdmin(c.Request.Context(), model.AdminScheduleFilter{
		Search: q.Search,
		Status: q.Status,
		Page:   q.Page,
	})
	if err != nil {
		h.respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPageResponse(page))
}

func (h *Handler) adminCreateSchedule(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	schedule, err := h.schedules.CreateSchedule(c.Request.Context(), req.input())
	if err != nil {
		h.respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": schedule})
}

func (h *Handler) adminGetSchedule(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	detail, err := h.schedules.GetScheduleDetail(c.Request.Context(), id)
	if err != nil {
		h.respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *Handler) adminUpdateSchedule(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	schedule, err := h.schedules.UpdateSchedule(c.Request.Context(), id, req.input())
	if err != nil {
		h.respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": schedule})
}

func (h *Handler) adminDeleteSchedule(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.schedules.DeleteSchedule(c.Request.Context(), id); err != nil {
		h.respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) adminListBookings(c *gin.Context) {
	var q adminBookingQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	page, err := h.bookings.ListBookingsAdmin(c.Request.Context(), model.BookingFilter{
		Search:        q.Search,
		PaymentStatus: q.PaymentStatus,
		BookingStatus: q.BookingStatus,
		Page:          q.Page,
	})
	if err != nil {
		h.respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPageResponse(page))
}

func (h *Handler) adminGetBooking(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	booking, err := h.bookings.GetBooking(c.Request.Context(), id)
	if err != nil {
		h.respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": booking})
}

func (h *Handler) adminUpdateBooking(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req adminBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	booking, err := h.bookings.UpdateBookingAdmin(c.Request.Context(), id, service.AdminBookingUpdate{
		BookingStatus: req.BookingStatus,
		PaymentStatus: req.PaymentStatus,
		Notes:         req.Notes,
	})
	if err != nil {
		h.respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": booking})
}

func (h *Handler) adminListBoats(c *gin.Context) {
	boats, err := h.schedules.ListBoats(c.Request.Context(), activeOnly(c))
	if err != nil {
		h.respondDomainError(c, err)
		return
	}
	if boats == nil {
		boats = []*model.Boat{}
	}
	c.JSON(http.StatusOK, gin.H{"data": boats})
}

func (h *Handler) adminCreateBoat(c *gin.Context) {
	var req boatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	boat, err := h.schedules.CreateBoat(c.Request.Context(), service.BoatInput{
		Name:        req.Name,
		Capacity:    req.Capacity,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		h.respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": boat})
}

func (h *Handler) adminListRoutes(c *gin.Context) {
	routes, err := h.schedules.ListRoutes(c.Request.Context(), activeOnly(c))
	if err != nil {
		h.respondDomainError(c, err)
		return
	}
	if routes == nil {
		routes = []*model.Route{}
	}
	c.JSON(http.StatusOK, gin.H{"data": routes})
}

func (h *Handler) adminCreateRoute(c *gin.Context) {
	var req routeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	route, err := h.schedules.CreateRoute(c.Request.Context(), service.RouteInput{
		DeparturePort:   req.DeparturePort,
		DestinationPort: req.DestinationPort,
		DurationMinutes: req.DurationMinutes,
		BasePrice:       req.BasePrice,
		Status:          req.Status,
	})
	if err != nil {
		h.respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": route})
}
