package models

import "time"

const DayOffTime = "00:00"

// StaffAvailability is either a weekly rule (OverrideDate nil) or a
// date-specific override for one staff member. Times are local wall clock
// "HH:MM" in the business timezone.
type StaffAvailability struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	StaffID uint `gorm:"index;not null" json:"staff_id"`

	DayOfWeek int    `json:"day_of_week"`
	StartTime string `gorm:"size:5;not null" json:"start_time"`
	EndTime   string `gorm:"size:5;not null" json:"end_time"`

	// YYYY-MM-DD
	OverrideDate *string `gorm:"size:10;index" json:"override_date,omitempty"`

	Blocks []ScheduleBlock `gorm:"foreignKey:AvailabilityID" json:"blocks"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StaffAvailability) TableName() string { return "staff_availability" }

func (a StaffAvailability) IsOverride() bool {
	return a.OverrideDate != nil
}

// IsDayOff reports an override that marks the whole date unavailable.
func (a StaffAvailability) IsDayOff() bool {
	return a.IsOverride() && a.StartTime == DayOffTime && a.EndTime == DayOffTime
}

type BlockType string

const (
	BlockLunch       BlockType = "lunch"
	BlockBreak       BlockType = "break"
	BlockAppointment BlockType = "appointment"
	BlockPersonal    BlockType = "personal"
)

func (t BlockType) Valid() bool {
	switch t {
	case BlockLunch, BlockBreak, BlockAppointment, BlockPersonal:
		return true
	}
	return false
}

type ScheduleBlock struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	AvailabilityID uint `gorm:"index;not null" json:"availability_id"`

	StartTime   string    `gorm:"size:5;not null" json:"start_time"`
	EndTime     string    `gorm:"size:5;not null" json:"end_time"`
	Type        BlockType `gorm:"size:20;not null" json:"type"`
	Title       string    `gorm:"size:100" json:"title"`
	IsRecurring bool      `json:"is_recurring"`

	CreatedAt time.Time `json:"created_at"`
}
