// Package analytics computes aggregate statistics over reservations.
package analytics

import (
	"math"

	"foodai-backend/internal/model"
)

// Summary counts reservations per status. The status counts always add up to Total.
type Summary struct {
	Total         int     `json:"total_reservations"`
	Pending       int     `json:"pending"`
	Confirmed     int     `json:"confirmed"`
	Completed     int     `json:"completed"`
	Cancelled     int     `json:"cancelled"`
	Other         int     `json:"other"`
	AverageGuests float64 `json:"average_guests"`
}

// Summarize builds the status breakdown. No reservations gives all zeros.
func Summarize(reservations []model.Reservation) Summary {
	var s Summary
	guests := 0
	for _, r := range reservations {
		s.Total++
		guests += r.GuestsCount
		switch {
		case r.Status == model.StatusPending:
			s.Pending++
		case r.Status == model.StatusConfirmed:
			s.Confirmed++
		case r.Status == model.StatusCompleted:
			s.Completed++
		case r.Status.Cancelled():
			s.Cancelled++
		default:
			s.Other++
		}
	}
	if s.Total > 0 {
		s.AverageGuests = round(float64(guests)/float64(s.Total), 2)
	}
	return s
}

// MostBooked describes the restaurant with the most reservations.
type MostBooked struct {
	RestaurantID string   `json:"restaurant_id"`
	Name         string   `json:"nombre"`
	City         string   `json:"ciudad,omitempty"`
	CuisineType  string   `json:"tipo_cocina,omitempty"`
	Rating       *float64 `json:"valoracion,omitempty"`
	Total        int      `json:"total_reservaciones"`
}

// UnknownRestaurant names a restaurant id missing from the restaurants collection.
const UnknownRestaurant = "unknown"

// TopRestaurant returns the restaurant id with the most reservations and its
// count. Ties go to the id seen first. ok is false when no reservation names
// a restaurant.
func TopRestaurant(reservations []model.Reservation) (id string, count int, ok bool) {
	counts := make(map[string]int)
	var order []string
	for _, r := range reservations {
		if r.RestaurantID == "" {
			continue
		}
		if _, seen := counts[r.RestaurantID]; !seen {
			order = append(order, r.RestaurantID)
		}
		counts[r.RestaurantID]++
	}
	for _, candidate := range order {
		if counts[candidate] > count {
			id, count = candidate, counts[candidate]
		}
	}
	return id, count, count > 0
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
