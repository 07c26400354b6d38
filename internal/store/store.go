package store

import (
	"context"
	"errors"

	"foodai-backend/internal/model"
)

var (
	// ErrNotFound means no row matched the requested identifier.
	ErrNotFound = errors.New("record not found")
	// ErrUpstream means the hosted database could not be reached or rejected the call.
	ErrUpstream = errors.New("upstream data unavailable")
)

// ReservationFilter narrows a reservation fetch. Zero fields do not filter.
type ReservationFilter struct {
	RestaurantID string
	Statuses     []model.Status
	Date         string
	Time         string
	ExcludeID    string
}

// Store defines every read and write the service performs against the
// reservations and restaurants collections.
type Store interface {
	ListReservations(ctx context.Context, f ReservationFilter) ([]model.Reservation, error)
	GetReservation(ctx context.Context, id string) (*model.Reservation, error)
	UpdateReservation(ctx context.Context, id string, u model.ReservationUpdate) error

	ListRestaurants(ctx context.Context) ([]model.Restaurant, error)
	GetRestaurant(ctx context.Context, id string) (*model.Restaurant, error)

	ListPushSubscriptions(ctx context.Context, restaurantID string) ([]model.PushSubscription, error)
	UpsertPushSubscription(ctx context.Context, sub model.PushSubscription) error
	DeletePushSubscription(ctx context.Context, endpoint string) error

	Ping(ctx context.Context) error
}

const (
	tableReservations      = "reservations"
	tableRestaurants       = "restaurants"
	tablePushSubscriptions = "push_subscriptions"
)

func statusStrings(statuses []model.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
