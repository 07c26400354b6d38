package model

import "time"

// Restaurant is read-only reference data.
type Restaurant struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	Name        string    `gorm:"size:256;not null" json:"name"`
	City        string    `gorm:"size:128" json:"city,omitempty"`
	CuisineType string    `gorm:"size:128" json:"cuisine_type,omitempty"`
	Rating      *float64  `json:"rating,omitempty"`
	Email       string    `gorm:"size:256" json:"email,omitempty"`
	Capacity    *int      `json:"capacity,omitempty"`
	AvgTicket   *float64  `json:"avg_ticket,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
