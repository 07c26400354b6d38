package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"foodai-backend/internal/ai"
)

// PostTrain retrains the classifier on every stored reservation.
func (h *Handler) PostTrain(c *gin.Context) {
	m, err := h.ai.Train(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"mensaje":   "model trained",
		"precision": m.Accuracy,
		"fecha":     m.TrainedAt,
		"muestras":  m.Samples,
	})
}

type predictStatusQuery struct {
	RestaurantID string `form:"restaurant_id" binding:"required"`
	Guests       *int   `form:"invitados" binding:"required,min=1"`
	Hour         *int   `form:"hora" binding:"required,min=0,max=23"`
	Weekday      *int   `form:"dia_semana" binding:"required,min=0,max=6"`
}

// GetPredictStatus estimates the outcome of a prospective reservation.
func (h *Handler) GetPredictStatus(c *gin.Context) {
	var q predictStatusQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err.Error())
		return
	}

	p, err := h.ai.Predict(ai.PredictInput{
		RestaurantID: q.RestaurantID,
		Guests:       *q.Guests,
		Hour:         *q.Hour,
		Weekday:      *q.Weekday,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type recommendQuery struct {
	TopN int `form:"top_n,default=3" binding:"min=1,max=50"`
}

// GetRecommendations ranks restaurants by their best successful hour.
func (h *Handler) GetRecommendations(c *gin.Context) {
	var q recommendQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err.Error())
		return
	}

	recs, err := h.ai.Recommend(c.Request.Context(), q.TopN)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}
