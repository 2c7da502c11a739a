package models

import "time"

// HoldAnalyticsEvent is one row per hold lifecycle, written asynchronously.
type HoldAnalyticsEvent struct {
	ID uint `gorm:"primaryKey" json:"id"`

	HoldID    string `gorm:"size:36;uniqueIndex;not null" json:"hold_id"`
	SessionID string `gorm:"size:100;index" json:"session_id"`
	StaffID   uint   `json:"staff_id"`
	ServiceID uint   `json:"service_id"`

	HeldAt      time.Time  `gorm:"not null" json:"held_at"`
	ExpiredAt   *time.Time `json:"expired_at,omitempty"`
	Converted   bool       `gorm:"default:false" json:"converted"`
	ConvertedAt *time.Time `json:"converted_at,omitempty"`
}
