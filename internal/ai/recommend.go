package ai

import (
	"sort"

	"foodai-backend/internal/model"
	"foodai-backend/internal/parse"
)

// Suggestion is one recommended restaurant and the hour it books best.
type Suggestion struct {
	RestaurantID string `json:"restaurant_id"`
	Restaurant   string `json:"restaurante"`
	Hour         int    `json:"hora_recomendada"`
	Successful   int    `json:"reservas_exitosas"`
}

// Recommendations ranks restaurants by the size of their busiest successful hour.
type Recommendations struct {
	BestHour    *int         `json:"mejor_hora_general"`
	Suggestions []Suggestion `json:"sugerencias"`
}

// Recommend returns the topN restaurants whose modal hour collects the most
// confirmed or completed reservations. Names come from restaurants when known.
func Recommend(reservations []model.Reservation, restaurants []model.Restaurant, topN int) Recommendations {
	names := make(map[string]string, len(restaurants))
	for _, r := range restaurants {
		names[r.ID] = r.Name
	}

	var global [24]int
	perRestaurant := make(map[string]*[24]int)
	for _, r := range reservations {
		if !r.Status.Successful() || r.RestaurantID == "" {
			continue
		}
		hour, _, err := parse.Clock(r.ReservationTime)
		if err != nil {
			continue
		}
		hours, ok := perRestaurant[r.RestaurantID]
		if !ok {
			hours = new([24]int)
			perRestaurant[r.RestaurantID] = hours
		}
		hours[hour]++
		global[hour]++
	}

	out := Recommendations{Suggestions: []Suggestion{}}
	if len(perRestaurant) == 0 {
		return out
	}

	best := modalHour(&global)
	out.BestHour = &best

	suggestions := make([]Suggestion, 0, len(perRestaurant))
	for id, hours := range perRestaurant {
		h := modalHour(hours)
		name := names[id]
		if name == "" {
			name = id
		}
		suggestions = append(suggestions, Suggestion{RestaurantID: id, Restaurant: name, Hour: h, Successful: hours[h]})
	}
	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].Successful != suggestions[j].Successful {
			return suggestions[i].Successful > suggestions[j].Successful
		}
		return suggestions[i].RestaurantID < suggestions[j].RestaurantID
	})
	if topN > 0 && len(suggestions) > topN {
		suggestions = suggestions[:topN]
	}
	out.Suggestions = suggestions
	return out
}

// modalHour returns the busiest hour, the earliest one on ties.
func modalHour(hours *[24]int) int {
	best := 0
	for h := 1; h < len(hours); h++ {
		if hours[h] > hours[best] {
			best = h
		}
	}
	return best
}
