package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetMostBooked returns the restaurant with the most reservations.
func (h *Handler) GetMostBooked(c *gin.Context) {
	out, err := h.analytics.MostBooked(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetSummary returns reservation counts per status.
func (h *Handler) GetSummary(c *gin.Context) {
	out, err := h.analytics.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetInsights returns the predictive report for one restaurant.
func (h *Handler) GetInsights(c *gin.Context) {
	out, err := h.analytics.Insights(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
