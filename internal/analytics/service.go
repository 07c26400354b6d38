package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"foodai-backend/internal/logger"
	"foodai-backend/internal/model"
	"foodai-backend/internal/store"
)

// Service answers the analytics endpoints from the reservation store.
type Service struct {
	store store.Store
	log   *logger.Logger
	now   func() time.Time
}

func NewService(s store.Store, log *logger.Logger) *Service {
	return &Service{store: s, log: log.With("service", "analytics"), now: time.Now}
}

// Summary fetches every reservation and summarizes it.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	reservations, err := s.store.ListReservations(ctx, store.ReservationFilter{})
	if err != nil {
		return Summary{}, err
	}
	return Summarize(reservations), nil
}

// MostBooked finds the most reserved restaurant and attaches its details.
// With no reservations it returns a zero count.
func (s *Service) MostBooked(ctx context.Context) (MostBooked, error) {
	reservations, err := s.store.ListReservations(ctx, store.ReservationFilter{})
	if err != nil {
		return MostBooked{}, err
	}
	id, count, ok := TopRestaurant(reservations)
	if !ok {
		return MostBooked{}, nil
	}

	out := MostBooked{RestaurantID: id, Name: UnknownRestaurant, Total: count}
	restaurant, err := s.store.GetRestaurant(ctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.log.Warn("most booked restaurant missing from restaurants", "restaurant_id", id)
	case err != nil:
		return MostBooked{}, err
	default:
		out.Name = restaurant.Name
		out.City = restaurant.City
		out.CuisineType = restaurant.CuisineType
		out.Rating = restaurant.Rating
	}
	return out, nil
}

// Insights builds the predictive indicators for one restaurant. A restaurant
// without reservations is reported as not found.
func (s *Service) Insights(ctx context.Context, restaurantID string) (*Insights, error) {
	var (
		reservations []model.Reservation
		restaurant   *model.Restaurant
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		reservations, err = s.store.ListReservations(gctx, store.ReservationFilter{RestaurantID: restaurantID})
		return err
	})
	g.Go(func() error {
		r, err := s.store.GetRestaurant(gctx, restaurantID)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		restaurant = r
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if restaurant == nil {
		restaurant = &model.Restaurant{ID: restaurantID}
	}

	out, err := BuildInsights(*restaurant, reservations, s.now())
	if err != nil {
		return nil, fmt.Errorf("restaurant %s: %w", restaurantID, err)
	}
	return out, nil
}
