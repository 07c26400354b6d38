package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"foodai-backend/internal/demand"
)

type predictDemandRequest struct {
	DayOfWeek    *int     `json:"day_of_week" binding:"required,min=0,max=6"`
	IsHoliday    bool     `json:"is_holiday"`
	TemperatureC *float64 `json:"temperature_c"`
}

// PostPredict evaluates the demand formula.
func (h *Handler) PostPredict(c *gin.Context) {
	var req predictDemandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	d, err := h.demand.Predict(demand.Input{
		DayOfWeek:    *req.DayOfWeek,
		IsHoliday:    req.IsHoliday,
		TemperatureC: req.TemperatureC,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"demand": d})
}
