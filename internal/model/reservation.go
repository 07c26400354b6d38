package model

import "time"

// Status is the lifecycle state of a reservation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Statuses lists every recognized status in a stable order.
var Statuses = []Status{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted}

// Labeled reports whether the status is a final outcome usable as a training label.
func (s Status) Labeled() bool {
	return s == StatusConfirmed || s == StatusCompleted || s.Cancelled()
}

// Canonical folds alternate spellings onto the recognized status.
func (s Status) Canonical() Status {
	if s.Cancelled() {
		return StatusCancelled
	}
	return s
}

// Successful reports whether the reservation was honored.
func (s Status) Successful() bool {
	return s == StatusConfirmed || s == StatusCompleted
}

// Cancelled also accepts the American spelling some clients send.
func (s Status) Cancelled() bool {
	return s == StatusCancelled || s == "canceled"
}

// Valid reports whether s is one of the recognized statuses.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Reservation is a booking row from the reservations collection.
type Reservation struct {
	ID                 string     `gorm:"primaryKey;size:64" json:"id"`
	RestaurantID       string     `gorm:"index;size:64;not null" json:"restaurant_id"`
	ReservationDate    string     `gorm:"size:10;not null" json:"reservation_date"`
	ReservationTime    string     `gorm:"size:8;not null" json:"reservation_time"`
	GuestsCount        int        `gorm:"not null" json:"guests_count"`
	Status             Status     `gorm:"size:16;not null;index" json:"status"`
	CustomerName       string     `gorm:"size:256" json:"customer_name,omitempty"`
	CustomerEmail      string     `gorm:"size:256" json:"customer_email,omitempty"`
	CustomerCity       string     `gorm:"size:128" json:"customer_city,omitempty"`
	TotalAmount        *float64   `json:"total_amount,omitempty"`
	ModificationReason *string    `json:"modification_reason,omitempty"`
	LastModifiedDate   *string    `gorm:"size:10" json:"last_modified_date,omitempty"`
	LastModifiedTime   *string    `gorm:"size:8" json:"last_modified_time,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at,omitempty"`
}

// ReservationUpdate carries the columns written by a reschedule.
type ReservationUpdate struct {
	ReservationDate    string    `json:"reservation_date"`
	ReservationTime    string    `json:"reservation_time"`
	UpdatedAt          time.Time `json:"updated_at"`
	ModificationReason *string   `json:"modification_reason"`
	LastModifiedDate   string    `json:"last_modified_date"`
	LastModifiedTime   string    `json:"last_modified_time"`
}
