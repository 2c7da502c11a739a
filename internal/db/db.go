package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/BruksfildServices01/salon-booking/internal/config"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

func NewDB(cfg *config.Config) *gorm.DB {
	db, err := Open(cfg.DBUrl, logger.Warn)
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err)
	}

	if err := Migrate(db); err != nil {
		logrus.Fatalf("failed to migrate: %v", err)
	}

	return db
}

// Open picks the dialect from the DSN: postgres URLs use the postgres
// driver, anything else is handed to sqlite.
func Open(dsn string, level logger.LogLevel) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	}

	if isPostgres(dsn) {
		gcfg.PrepareStmt = true
		db, err := gorm.Open(postgres.Open(dsn), gcfg)
		if err != nil {
			return nil, err
		}

		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("get sql.DB: %w", err)
		}

		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
		sqlDB.SetConnMaxIdleTime(10 * time.Minute)
		return db, nil
	}

	db, err := gorm.Open(sqlite.Open(dsn), gcfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	// sqlite has a single writer; one connection serializes transactions
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Staff{},
		&models.Service{},
		&models.StaffService{},
		&models.Customer{},
		&models.StaffAvailability{},
		&models.ScheduleBlock{},
		&models.Booking{},
		&models.BookingHold{},
		&models.HoldAnalyticsEvent{},
	); err != nil {
		return err
	}

	// partial indexes: same syntax on postgres and sqlite
	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_staff_start_active
			ON bookings (staff_id, start_time)
			WHERE status <> 'cancelled'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_availability_weekly
			ON staff_availability (staff_id, day_of_week)
			WHERE override_date IS NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_availability_override
			ON staff_availability (staff_id, override_date)
			WHERE override_date IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_staff_window
			ON bookings (staff_id, start_time, end_time)`,
		`CREATE INDEX IF NOT EXISTS idx_holds_staff_window
			ON booking_holds (staff_id, start_time, end_time)`,
	}

	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migrate index: %w", err)
		}
	}

	return nil
}
