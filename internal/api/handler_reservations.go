package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"foodai-backend/internal/booking"
)

// PutReschedule moves a reservation to a new slot.
func (h *Handler) PutReschedule(c *gin.Context) {
	var req booking.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	res, err := h.booking.Reschedule(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type availabilityQuery struct {
	Date string `form:"date" binding:"required"`
	Time string `form:"time" binding:"required"`
}

// GetAvailability reports whether a slot can take the reservation.
func (h *Handler) GetAvailability(c *gin.Context) {
	var q availabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err.Error())
		return
	}

	out, err := h.booking.Availability(c.Request.Context(), c.Param("id"), q.Date, q.Time)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
