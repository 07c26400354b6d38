package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"foodai-backend/internal/model"
)

// gormStore implements the Store interface with a direct SQL connection
// to the same database the REST endpoint fronts.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func dbError(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
}

func (s *gormStore) ListReservations(ctx context.Context, f ReservationFilter) ([]model.Reservation, error) {
	tx := s.db.WithContext(ctx).Model(&model.Reservation{})
	if f.RestaurantID != "" {
		tx = tx.Where("restaurant_id = ?", f.RestaurantID)
	}
	if len(f.Statuses) > 0 {
		tx = tx.Where("status IN ?", statusStrings(f.Statuses))
	}
	if f.Date != "" {
		tx = tx.Where("reservation_date = ?", f.Date)
	}
	if f.Time != "" {
		tx = tx.Where("reservation_time = ?", f.Time)
	}
	if f.ExcludeID != "" {
		tx = tx.Where("id <> ?", f.ExcludeID)
	}

	var rows []model.Reservation
	if err := tx.Order("created_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, dbError("list reservations", err)
	}
	return rows, nil
}

func (s *gormStore) GetReservation(ctx context.Context, id string) (*model.Reservation, error) {
	var r model.Reservation
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&r).Error; err != nil {
		return nil, dbError("get reservation "+id, err)
	}
	return &r, nil
}

func (s *gormStore) UpdateReservation(ctx context.Context, id string, u model.ReservationUpdate) error {
	res := s.db.WithContext(ctx).Model(&model.Reservation{}).Where("id = ?", id).Updates(map[string]any{
		"reservation_date":    u.ReservationDate,
		"reservation_time":    u.ReservationTime,
		"updated_at":          u.UpdatedAt,
		"modification_reason": u.ModificationReason,
		"last_modified_date":  u.LastModifiedDate,
		"last_modified_time":  u.LastModifiedTime,
	})
	if res.Error != nil {
		return dbError("update reservation "+id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("reservation %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *gormStore) ListRestaurants(ctx context.Context) ([]model.Restaurant, error) {
	var rows []model.Restaurant
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, dbError("list restaurants", err)
	}
	return rows, nil
}

func (s *gormStore) GetRestaurant(ctx context.Context, id string) (*model.Restaurant, error) {
	var r model.Restaurant
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&r).Error; err != nil {
		return nil, dbError("get restaurant "+id, err)
	}
	return &r, nil
}

func (s *gormStore) ListPushSubscriptions(ctx context.Context, restaurantID string) ([]model.PushSubscription, error) {
	var rows []model.PushSubscription
	if err := s.db.WithContext(ctx).Where("restaurant_id = ?", restaurantID).Find(&rows).Error; err != nil {
		return nil, dbError("list push subscriptions", err)
	}
	return rows, nil
}

func (s *gormStore) UpsertPushSubscription(ctx context.Context, sub model.PushSubscription) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth", "restaurant_id"}),
	}).Create(&sub).Error
	if err != nil {
		return dbError("upsert push subscription", err)
	}
	return nil
}

func (s *gormStore) DeletePushSubscription(ctx context.Context, endpoint string) error {
	if err := s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error; err != nil {
		return dbError("delete push subscription", err)
	}
	return nil
}

func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return dbError("ping", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return dbError("ping", err)
	}
	return nil
}
