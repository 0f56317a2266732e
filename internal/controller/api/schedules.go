package api

import (
	"net/http"

	"github.com/Freeeeeet/boat_booking/internal/model"
	"github.com/gin-gonic/gin"
)

func (h *Handler) listSchedules(c *gin.Context) {
	var q scheduleListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	schedules, err := h.schedules.ListAvailableSchedules(c.Request.Context(), model.ScheduleFilter{
		DeparturePort:   q.DeparturePort,
		DestinationPort: q.DestinationPort,
		DepartureDate:   q.DepartureDate,
	})
	if err != nil {
		h.respondDomainError(c, err)
		return
	}
	if schedules == nil {
		schedules = []*model.Schedule{}
	}
	c.JSON(http.StatusOK, gin.H{"data": schedules})
}

func (h *Handler) listPorts(c *gin.Context) {
	ports, err := h.schedules.ListPorts(c.Request.Context())
	if err != nil {
		h.respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": ports})
}

func (h *Handler) getSchedule(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	schedule, err := h.schedules.GetSchedule(c.Request.Context(), id)
	if err != nil {
		h.respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": schedule, "is_full": schedule.IsFull()})
}
