package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BookingHold is a short-lived claim on a staff slot while a customer
// completes checkout. (staff_id, start_time) is unique.
type BookingHold struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	SessionID string `gorm:"size:100;index;not null" json:"session_id"`

	StaffID   uint `gorm:"uniqueIndex:idx_holds_staff_start;not null" json:"staff_id"`
	ServiceID uint `gorm:"not null" json:"service_id"`

	StartTime time.Time `gorm:"uniqueIndex:idx_holds_staff_start;not null" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`

	CreatedAt time.Time `json:"created_at"`
}

func (h *BookingHold) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	return nil
}

func (h BookingHold) IsLive(now time.Time) bool {
	return now.Before(h.ExpiresAt)
}
