package ai

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"foodai-backend/internal/logger"
	"foodai-backend/internal/model"
	"foodai-backend/internal/store"
)

// Service ties the classifier to the reservation store.
type Service struct {
	store  store.Store
	holder *Holder
	models ModelStore
	cfg    TrainConfig
	log    *logger.Logger
	now    func() time.Time
}

// NewService creates a Service. A nil ModelStore keeps models in memory only.
func NewService(s store.Store, models ModelStore, cfg TrainConfig, log *logger.Logger) *Service {
	if models == nil {
		models = MemoryStore{}
	}
	return &Service{
		store:  s,
		holder: &Holder{},
		models: models,
		cfg:    cfg,
		log:    log.With("service", "ai"),
		now:    time.Now,
	}
}

// Restore loads a previously saved model, if any, into the holder.
func (s *Service) Restore(ctx context.Context) error {
	m, err := s.models.Load(ctx)
	if err != nil {
		return err
	}
	if m == nil {
		s.log.Info("no saved model found")
		return nil
	}
	s.holder.Store(m)
	s.log.Info("restored model", "trained_at", m.TrainedAt, "accuracy", m.Accuracy, "samples", m.Samples)
	return nil
}

// Train fetches every reservation, fits a new model and makes it current.
// A failed save is logged; the new model still serves this process.
func (s *Service) Train(ctx context.Context) (*Model, error) {
	reservations, err := s.store.ListReservations(ctx, store.ReservationFilter{})
	if err != nil {
		return nil, fmt.Errorf("fetch reservations: %w", err)
	}

	start := time.Now()
	m, err := Train(reservations, s.cfg, s.now())
	if err != nil {
		return nil, err
	}
	s.holder.Store(m)
	s.log.Info("model trained", "samples", m.Samples, "accuracy", m.Accuracy, "duration", time.Since(start))

	if err := s.models.Save(ctx, m); err != nil {
		s.log.Warn("failed to persist model", "error", err)
	}
	return m, nil
}

// Predict runs the current model.
func (s *Service) Predict(in PredictInput) (Prediction, error) {
	return s.holder.Predict(in)
}

// Recommend fetches successful reservations and restaurant names concurrently.
func (s *Service) Recommend(ctx context.Context, topN int) (Recommendations, error) {
	var (
		reservations []model.Reservation
		restaurants  []model.Restaurant
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		reservations, err = s.store.ListReservations(gctx, store.ReservationFilter{
			Statuses: []model.Status{model.StatusConfirmed, model.StatusCompleted},
		})
		return err
	})
	g.Go(func() error {
		var err error
		restaurants, err = s.store.ListRestaurants(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Recommendations{}, err
	}
	return Recommend(reservations, restaurants, topN), nil
}
