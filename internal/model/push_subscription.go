package model

import "time"

// PushSubscription holds a restaurant staff browser's push subscription.
type PushSubscription struct {
	Endpoint     string    `gorm:"primaryKey" json:"endpoint"`
	P256DH       string    `gorm:"column:p256dh;not null" json:"p256dh"`
	Auth         string    `gorm:"not null" json:"auth"`
	RestaurantID string    `gorm:"index;size:64;not null" json:"restaurant_id"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}
