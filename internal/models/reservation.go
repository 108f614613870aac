package models

import "time"

type Reservation struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ClientID uint   `gorm:"not null;index" json:"client_id"`
	Client   Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	OfferingID uint     `gorm:"not null;index:idx_reservation_offering_start" json:"offering_id"`
	Offering   Offering `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	StartTime time.Time `gorm:"not null;index:idx_reservation_offering_start" json:"start_time"`
	// EndTime is derived from the offering duration at booking time and
	// only stored so range queries can run in SQL.
	EndTime time.Time `gorm:"not null" json:"end_time"`

	Status string `gorm:"size:20;not null;default:'scheduled'" json:"status"`
	Notes  string `gorm:"size:255" json:"notes"`

	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
