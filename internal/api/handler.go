package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"foodai-backend/internal/ai"
	"foodai-backend/internal/analytics"
	"foodai-backend/internal/booking"
	"foodai-backend/internal/demand"
	"foodai-backend/internal/logger"
	"foodai-backend/internal/notification"
	"foodai-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store     store.Store
	ai        *ai.Service
	analytics *analytics.Service
	booking   *booking.Service
	demand    demand.Coefficients
	email     notification.EmailSender
	webpush   *webpush.Options
	log       *logger.Logger
}

// Deps lists the services the handlers call into. A nil Webpush disables push endpoints.
type Deps struct {
	Store     store.Store
	AI        *ai.Service
	Analytics *analytics.Service
	Booking   *booking.Service
	Demand    demand.Coefficients
	Email     notification.EmailSender
	Webpush   *webpush.Options
	Log       *logger.Logger
}

// NewHandler creates a new API handler.
func NewHandler(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{
		store:     d.Store,
		ai:        d.AI,
		analytics: d.Analytics,
		booking:   d.Booking,
		demand:    d.Demand,
		email:     d.Email,
		webpush:   d.Webpush,
		log:       log.With("component", "api"),
	}
}
