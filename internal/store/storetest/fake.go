// Package storetest provides an in-memory store.Store for handler and
// service tests.
package storetest

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"foodai-backend/internal/model"
	"foodai-backend/internal/store"
)

// Fake is a map-backed store.Store. Setting Err makes every call fail with it.
type Fake struct {
	mu            sync.Mutex
	Reservations  []model.Reservation
	Restaurants   []model.Restaurant
	Subscriptions map[string]model.PushSubscription
	Updates       map[string]model.ReservationUpdate
	Err           error
}

var _ store.Store = (*Fake)(nil)

// New returns a Fake seeded with the given rows.
func New(restaurants []model.Restaurant, reservations []model.Reservation) *Fake {
	return &Fake{
		Restaurants:   restaurants,
		Reservations:  reservations,
		Subscriptions: make(map[string]model.PushSubscription),
		Updates:       make(map[string]model.ReservationUpdate),
	}
}

func (f *Fake) ListReservations(_ context.Context, filter store.ReservationFilter) ([]model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	var out []model.Reservation
	for _, r := range f.Reservations {
		if filter.RestaurantID != "" && r.RestaurantID != filter.RestaurantID {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, r.Status) {
			continue
		}
		if filter.Date != "" && r.ReservationDate != filter.Date {
			continue
		}
		if filter.Time != "" && r.ReservationTime != filter.Time {
			continue
		}
		if filter.ExcludeID != "" && r.ID == filter.ExcludeID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *Fake) GetReservation(_ context.Context, id string) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	for _, r := range f.Reservations {
		if r.ID == id {
			r := r
			return &r, nil
		}
	}
	return nil, fmt.Errorf("reservation %s: %w", id, store.ErrNotFound)
}

func (f *Fake) UpdateReservation(_ context.Context, id string, u model.ReservationUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	for i := range f.Reservations {
		if f.Reservations[i].ID != id {
			continue
		}
		r := &f.Reservations[i]
		r.ReservationDate = u.ReservationDate
		r.ReservationTime = u.ReservationTime
		updatedAt := u.UpdatedAt
		r.UpdatedAt = &updatedAt
		r.ModificationReason = u.ModificationReason
		r.LastModifiedDate = &u.LastModifiedDate
		r.LastModifiedTime = &u.LastModifiedTime
		f.Updates[id] = u
		return nil
	}
	return fmt.Errorf("reservation %s: %w", id, store.ErrNotFound)
}

func (f *Fake) ListRestaurants(context.Context) ([]model.Restaurant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	return slices.Clone(f.Restaurants), nil
}

func (f *Fake) GetRestaurant(_ context.Context, id string) (*model.Restaurant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	for _, r := range f.Restaurants {
		if r.ID == id {
			r := r
			return &r, nil
		}
	}
	return nil, fmt.Errorf("restaurant %s: %w", id, store.ErrNotFound)
}

func (f *Fake) ListPushSubscriptions(_ context.Context, restaurantID string) ([]model.PushSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	var out []model.PushSubscription
	for _, s := range f.Subscriptions {
		if s.RestaurantID == restaurantID {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b model.PushSubscription) int {
		if a.Endpoint < b.Endpoint {
			return -1
		}
		if a.Endpoint > b.Endpoint {
			return 1
		}
		return 0
	})
	return out, nil
}

func (f *Fake) UpsertPushSubscription(_ context.Context, sub model.PushSubscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Subscriptions[sub.Endpoint] = sub
	return nil
}

func (f *Fake) DeletePushSubscription(_ context.Context, endpoint string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	delete(f.Subscriptions, endpoint)
	return nil
}

// Subscription reports whether endpoint is currently stored.
func (f *Fake) Subscription(endpoint string) (model.PushSubscription, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.Subscriptions[endpoint]
	return s, ok
}

func (f *Fake) Ping(context.Context) error {
	return f.Err
}
