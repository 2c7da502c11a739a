package models

import "time"

type Service struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
	DurationMin int    `gorm:"not null" json:"duration_min"`
	// minor currency units
	PriceCents int64  `gorm:"not null" json:"price_cents"`
	Active     bool   `gorm:"default:true" json:"active"`
	Category   string `gorm:"size:50" json:"category"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s Service) Duration() time.Duration {
	return time.Duration(s.DurationMin) * time.Minute
}

// StaffService marks a staff member as qualified for a service, optionally
// with a staff-specific price.
type StaffService struct {
	StaffID   uint `gorm:"primaryKey" json:"staff_id"`
	ServiceID uint `gorm:"primaryKey" json:"service_id"`

	PriceOverrideCents *int64 `json:"price_override_cents,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
