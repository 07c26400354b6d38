// Package features turns reservation records into classifier input.
//
// The encoders are fitted once per training pass and travel with the trained
// model; a vector built with any other encoder is meaningless to the forest.
package features

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// ErrUnknownCategory is returned when a value was not seen during fitting.
var ErrUnknownCategory = errors.New("unknown category")

// LabelEncoder maps categorical values onto 0..n-1 in sorted order.
// It is read-only after fitting and safe for concurrent use.
type LabelEncoder struct {
	Classes []string `json:"classes"`
}

// FitLabels builds an encoder over the distinct values.
func FitLabels(values []string) *LabelEncoder {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	classes := make([]string, 0, len(seen))
	for v := range seen {
		classes = append(classes, v)
	}
	sort.Strings(classes)
	return &LabelEncoder{Classes: classes}
}

// Encode returns the code of v.
func (e *LabelEncoder) Encode(v string) (int, error) {
	code := sort.SearchStrings(e.Classes, v)
	if code >= len(e.Classes) || e.Classes[code] != v {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, v)
	}
	return code, nil
}

// Decode returns the class for code.
func (e *LabelEncoder) Decode(code int) (string, error) {
	if code < 0 || code >= len(e.Classes) {
		return "", fmt.Errorf("%w: code %d", ErrUnknownCategory, code)
	}
	return e.Classes[code], nil
}

// Len is the number of classes.
func (e *LabelEncoder) Len() int { return len(e.Classes) }

// Record is the raw input of one reservation.
type Record struct {
	RestaurantID string
	Weekday      int
	Hour         int
	Guests       int
}

// Vector positions.
const (
	ColRestaurant = iota
	ColHour
	ColWeekday
	ColGuests
	Width
)

// Encoder bundles the categorical mappings learned in one training pass.
type Encoder struct {
	Restaurants *LabelEncoder `json:"restaurants"`
	Weekdays    *LabelEncoder `json:"weekdays"`
	Statuses    *LabelEncoder `json:"statuses"`
}

// Fit learns the restaurant, weekday and label mappings from the training set.
func Fit(records []Record, labels []string) *Encoder {
	restaurants := make([]string, len(records))
	weekdays := make([]string, len(records))
	for i, r := range records {
		restaurants[i] = r.RestaurantID
		weekdays[i] = strconv.Itoa(r.Weekday)
	}
	return &Encoder{
		Restaurants: FitLabels(restaurants),
		Weekdays:    FitLabels(weekdays),
		Statuses:    FitLabels(labels),
	}
}

// Vector encodes r as [restaurant_code, hour, weekday_code, guests].
func (e *Encoder) Vector(r Record) ([]float64, error) {
	rest, err := e.Restaurants.Encode(r.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("restaurant_id: %w", err)
	}
	day, err := e.Weekdays.Encode(strconv.Itoa(r.Weekday))
	if err != nil {
		return nil, fmt.Errorf("weekday: %w", err)
	}
	v := make([]float64, Width)
	v[ColRestaurant] = float64(rest)
	v[ColHour] = float64(r.Hour)
	v[ColWeekday] = float64(day)
	v[ColGuests] = float64(r.Guests)
	return v, nil
}

// Matrix encodes every record and label.
func (e *Encoder) Matrix(records []Record, labels []string) ([][]float64, []int, error) {
	if len(records) != len(labels) {
		return nil, nil, fmt.Errorf("records and labels differ in length: %d != %d", len(records), len(labels))
	}
	X := make([][]float64, len(records))
	y := make([]int, len(labels))
	for i, r := range records {
		v, err := e.Vector(r)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", i, err)
		}
		code, err := e.Statuses.Encode(labels[i])
		if err != nil {
			return nil, nil, fmt.Errorf("row %d label: %w", i, err)
		}
		X[i] = v
		y[i] = code
	}
	return X, y, nil
}
