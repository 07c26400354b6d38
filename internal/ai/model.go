// Package ai trains and serves the reservation outcome classifier and the
// restaurant/hour recommendations derived from booking history.
package ai

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"foodai-backend/internal/features"
	"foodai-backend/internal/forest"
	"foodai-backend/internal/model"
)

var (
	// ErrInsufficientData is returned when too few labeled reservations exist to train.
	ErrInsufficientData = errors.New("insufficient training data")
	// ErrModelNotTrained is returned by Predict before the first successful training.
	ErrModelNotTrained = errors.New("model not trained")
	// ErrInvalidInput is returned for out-of-range prediction inputs.
	ErrInvalidInput = errors.New("invalid input")
)

// Model is one immutable training result: the forest together with the
// encoders it was fitted against.
type Model struct {
	Forest    *forest.Forest    `json:"forest"`
	Encoder   *features.Encoder `json:"encoder"`
	Accuracy  float64           `json:"accuracy"`
	TrainedAt time.Time         `json:"trained_at"`
	Samples   int               `json:"samples"`
}

// PredictInput describes a prospective reservation.
type PredictInput struct {
	RestaurantID string
	Guests       int
	Hour         int
	Weekday      int
}

// Validate checks the input ranges.
func (in PredictInput) Validate() error {
	switch {
	case in.RestaurantID == "":
		return fmt.Errorf("%w: restaurant_id is required", ErrInvalidInput)
	case in.Guests < 1:
		return fmt.Errorf("%w: guests must be at least 1", ErrInvalidInput)
	case in.Hour < 0 || in.Hour > 23:
		return fmt.Errorf("%w: hour must be between 0 and 23", ErrInvalidInput)
	case in.Weekday < 0 || in.Weekday > 6:
		return fmt.Errorf("%w: weekday must be between 0 and 6", ErrInvalidInput)
	}
	return nil
}

// Prediction is the estimated outcome for a reservation.
type Prediction struct {
	Status     model.Status `json:"estado_estimado"`
	Confidence float64      `json:"confianza"`
	Hour       int          `json:"hora"`
	Weekday    int          `json:"dia_semana"`
}

// Predict estimates the outcome of in. Confidence is the winning class
// probability in [0,1].
func (m *Model) Predict(in PredictInput) (Prediction, error) {
	if err := in.Validate(); err != nil {
		return Prediction{}, err
	}
	x, err := m.Encoder.Vector(features.Record{
		RestaurantID: in.RestaurantID,
		Weekday:      in.Weekday,
		Hour:         in.Hour,
		Guests:       in.Guests,
	})
	if err != nil {
		return Prediction{}, err
	}
	code, p, err := m.Forest.Predict(x)
	if err != nil {
		return Prediction{}, err
	}
	label, err := m.Encoder.Statuses.Decode(code)
	if err != nil {
		return Prediction{}, err
	}
	return Prediction{
		Status:     model.Status(label),
		Confidence: round(p, 4),
		Hour:       in.Hour,
		Weekday:    in.Weekday,
	}, nil
}

// Holder owns the current model. Training swaps the whole value, so readers
// see either the previous model or the new one.
type Holder struct {
	current atomic.Pointer[Model]
}

// Load returns the current model or ErrModelNotTrained.
func (h *Holder) Load() (*Model, error) {
	m := h.current.Load()
	if m == nil {
		return nil, ErrModelNotTrained
	}
	return m, nil
}

// Store replaces the current model.
func (h *Holder) Store(m *Model) {
	h.current.Store(m)
}

// Predict runs in against the current model.
func (h *Holder) Predict(in PredictInput) (Prediction, error) {
	m, err := h.Load()
	if err != nil {
		return Prediction{}, err
	}
	return m.Predict(in)
}
