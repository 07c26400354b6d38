package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"foodai-backend/internal/ai"
	"foodai-backend/internal/booking"
	"foodai-backend/internal/demand"
	"foodai-backend/internal/features"
	"foodai-backend/internal/store"
)

// Error kinds returned in the "error" field of every failure body.
const (
	KindInvalidRequest     = "invalid_request"
	KindNotFound           = "not_found"
	KindUpstream           = "upstream_unavailable"
	KindInsufficientData   = "insufficient_training_data"
	KindModelNotTrained    = "model_not_trained"
	KindUnknownCategory    = "unknown_category"
	KindSlotConflict       = "slot_conflict"
	KindServiceUnavailable = "service_unavailable"
	KindInternal           = "internal_error"
)

// classify maps domain errors onto an HTTP status and error kind.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, KindNotFound
	case errors.Is(err, store.ErrUpstream):
		return http.StatusBadGateway, KindUpstream
	case errors.Is(err, ai.ErrInsufficientData):
		return http.StatusUnprocessableEntity, KindInsufficientData
	case errors.Is(err, ai.ErrModelNotTrained):
		return http.StatusConflict, KindModelNotTrained
	case errors.Is(err, features.ErrUnknownCategory):
		return http.StatusUnprocessableEntity, KindUnknownCategory
	case errors.Is(err, booking.ErrSlotFull):
		return http.StatusConflict, KindSlotConflict
	case errors.Is(err, booking.ErrInvalid),
		errors.Is(err, ai.ErrInvalidInput),
		errors.Is(err, demand.ErrInvalidDay):
		return http.StatusBadRequest, KindInvalidRequest
	default:
		return http.StatusInternalServerError, KindInternal
	}
}

// respondError writes {"error": kind, "message": text} and aborts the chain.
func respondError(c *gin.Context, err error) {
	status, kind := classify(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": kind, "message": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": KindInvalidRequest, "message": msg})
}
