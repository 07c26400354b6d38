package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/supabase-community/postgrest-go"

	"foodai-backend/internal/model"
	"foodai-backend/internal/supabase"
)

// restStore implements Store on top of the hosted database's REST endpoint.
type restStore struct {
	client *supabase.Client
}

// NewRESTStore creates a Store backed by the Supabase PostgREST API.
func NewRESTStore(client *supabase.Client) Store {
	return &restStore{client: client}
}

// upstream classifies a client error. Invalid identifiers (bad uuid syntax)
// and PostgREST's "no rows" answer surface as ErrNotFound.
func upstream(op string, err error) error {
	var apiErr *supabase.Error
	if errors.As(err, &apiErr) && (apiErr.Code == "22P02" || apiErr.Code == "PGRST116") {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
}

func (s *restStore) ListReservations(ctx context.Context, f ReservationFilter) ([]model.Reservation, error) {
	filter := func(q *postgrest.FilterBuilder) *postgrest.FilterBuilder {
		if f.RestaurantID != "" {
			q = q.Eq("restaurant_id", f.RestaurantID)
		}
		if len(f.Statuses) > 0 {
			q = q.In("status", statusStrings(f.Statuses))
		}
		if f.Date != "" {
			q = q.Eq("reservation_date", f.Date)
		}
		if f.Time != "" {
			q = q.Eq("reservation_time", f.Time)
		}
		if f.ExcludeID != "" {
			q = q.Neq("id", f.ExcludeID)
		}
		return q
	}

	rows, err := supabase.SelectAll[model.Reservation](ctx, s.client, tableReservations, "id", filter)
	if err != nil {
		return nil, upstream("list reservations", err)
	}
	return rows, nil
}

func (s *restStore) GetReservation(ctx context.Context, id string) (*model.Reservation, error) {
	var rows []model.Reservation
	q := s.client.From(tableReservations).Select("*", "", false).Eq("id", id).Limit(1, "")
	if _, err := s.client.Exec(ctx, q, &rows); err != nil {
		return nil, upstream("get reservation", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("reservation %s: %w", id, ErrNotFound)
	}
	return &rows[0], nil
}

func (s *restStore) UpdateReservation(ctx context.Context, id string, u model.ReservationUpdate) error {
	var updated []model.Reservation
	q := s.client.From(tableReservations).Update(u, "representation", "").Eq("id", id)
	if _, err := s.client.Exec(ctx, q, &updated); err != nil {
		return upstream("update reservation", err)
	}
	if len(updated) == 0 {
		return fmt.Errorf("reservation %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *restStore) ListRestaurants(ctx context.Context) ([]model.Restaurant, error) {
	rows, err := supabase.SelectAll[model.Restaurant](ctx, s.client, tableRestaurants, "id", nil)
	if err != nil {
		return nil, upstream("list restaurants", err)
	}
	return rows, nil
}

func (s *restStore) GetRestaurant(ctx context.Context, id string) (*model.Restaurant, error) {
	var rows []model.Restaurant
	q := s.client.From(tableRestaurants).Select("*", "", false).Eq("id", id).Limit(1, "")
	if _, err := s.client.Exec(ctx, q, &rows); err != nil {
		return nil, upstream("get restaurant", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("restaurant %s: %w", id, ErrNotFound)
	}
	return &rows[0], nil
}

func (s *restStore) ListPushSubscriptions(ctx context.Context, restaurantID string) ([]model.PushSubscription, error) {
	filter := func(q *postgrest.FilterBuilder) *postgrest.FilterBuilder {
		return q.Eq("restaurant_id", restaurantID)
	}
	rows, err := supabase.SelectAll[model.PushSubscription](ctx, s.client, tablePushSubscriptions, "endpoint", filter)
	if err != nil {
		return nil, upstream("list push subscriptions", err)
	}
	return rows, nil
}

func (s *restStore) UpsertPushSubscription(ctx context.Context, sub model.PushSubscription) error {
	q := s.client.From(tablePushSubscriptions).Upsert([]model.PushSubscription{sub}, "endpoint", "minimal", "")
	if _, err := s.client.Exec(ctx, q, nil); err != nil {
		return upstream("upsert push subscription", err)
	}
	return nil
}

func (s *restStore) DeletePushSubscription(ctx context.Context, endpoint string) error {
	q := s.client.From(tablePushSubscriptions).Delete("minimal", "").Eq("endpoint", endpoint)
	if _, err := s.client.Exec(ctx, q, nil); err != nil {
		return upstream("delete push subscription", err)
	}
	return nil
}

func (s *restStore) Ping(ctx context.Context) error {
	var rows []model.Restaurant
	q := s.client.From(tableRestaurants).Select("id", "", false).Limit(1, "")
	if _, err := s.client.Exec(ctx, q, &rows); err != nil {
		return upstream("ping", err)
	}
	return nil
}
