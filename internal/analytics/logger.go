package analytics

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/salon-booking/internal/models"
)

type Writer interface {
	Log(ctx context.Context, ev Event) error
}

// Logger persists one hold_analytics_events row per hold.
type Logger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

func (l *Logger) Log(ctx context.Context, ev Event) error {
	db := l.db.WithContext(ctx)

	switch ev.Kind {
	case HoldCreated:
		row := models.HoldAnalyticsEvent{
			HoldID:    ev.HoldID,
			SessionID: ev.SessionID,
			StaffID:   ev.StaffID,
			ServiceID: ev.ServiceID,
			HeldAt:    ev.At,
		}
		return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error

	case HoldConverted:
		return db.Model(&models.HoldAnalyticsEvent{}).
			Where("hold_id = ?", ev.HoldID).
			Updates(map[string]any{
				"converted":    true,
				"converted_at": ev.At,
			}).Error

	case HoldExpired:
		// a converted hold never flips to expired
		return db.Model(&models.HoldAnalyticsEvent{}).
			Where("hold_id = ? AND converted = ? AND expired_at IS NULL", ev.HoldID, false).
			Update("expired_at", ev.At).Error
	}

	return fmt.Errorf("unknown analytics event %q", ev.Kind)
}
