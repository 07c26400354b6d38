package ai

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"foodai-backend/internal/features"
	"foodai-backend/internal/forest"
	"foodai-backend/internal/model"
	"foodai-backend/internal/parse"
)

// TrainConfig controls dataset split and forest growth.
type TrainConfig struct {
	MinRows   int
	NumTrees  int
	MaxDepth  int
	Seed      int64
	TestRatio float64
}

type sample struct {
	id     string
	record features.Record
	label  string
}

// samples keeps reservations with a final status whose slot is before now,
// ordered by id so the dataset does not depend on fetch order.
func samples(reservations []model.Reservation, now time.Time) []sample {
	out := make([]sample, 0, len(reservations))
	for _, r := range reservations {
		if !r.Status.Labeled() || r.RestaurantID == "" {
			continue
		}
		slot, err := parse.ParseSlot(r.ReservationDate, r.ReservationTime)
		if err != nil || !slot.At(now.Location()).Before(now) {
			continue
		}
		out = append(out, sample{
			id: r.ID,
			record: features.Record{
				RestaurantID: r.RestaurantID,
				Weekday:      slot.Weekday,
				Hour:         slot.Hour,
				Guests:       r.GuestsCount,
			},
			label: string(r.Status.Canonical()),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Train fits a new model and measures it on a held-out split. The same
// reservations and config always produce the same model and accuracy.
func Train(reservations []model.Reservation, cfg TrainConfig, now time.Time) (*Model, error) {
	data := samples(reservations, now)
	if len(data) < cfg.MinRows || len(data) < 2 {
		return nil, fmt.Errorf("%w: %d labeled reservations, need %d", ErrInsufficientData, len(data), max(cfg.MinRows, 2))
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	rng.Shuffle(len(data), func(i, j int) { data[i], data[j] = data[j], data[i] })

	records := make([]features.Record, len(data))
	labels := make([]string, len(data))
	for i, s := range data {
		records[i] = s.record
		labels[i] = s.label
	}

	enc := features.Fit(records, labels)
	X, y, err := enc.Matrix(records, labels)
	if err != nil {
		return nil, err
	}

	nTest := int(math.Ceil(float64(len(data)) * cfg.TestRatio))
	if nTest < 1 {
		nTest = 1
	}
	if nTest >= len(data) {
		nTest = len(data) - 1
	}
	nTrain := len(data) - nTest

	f, err := forest.Fit(X[:nTrain], y[:nTrain], enc.Statuses.Len(), forest.Config{
		NumTrees: cfg.NumTrees,
		MaxDepth: cfg.MaxDepth,
		Seed:     cfg.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("fit forest: %w", err)
	}
	acc, err := f.Accuracy(X[nTrain:], y[nTrain:])
	if err != nil {
		return nil, fmt.Errorf("score forest: %w", err)
	}

	return &Model{
		Forest:    f,
		Encoder:   enc,
		Accuracy:  round(acc*100, 2),
		TrainedAt: now.UTC(),
		Samples:   len(data),
	}, nil
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
