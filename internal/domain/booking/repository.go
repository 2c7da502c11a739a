package booking

import (
	"context"
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/models"
)

type Catalog interface {
	// -------- Staff --------
	GetStaff(
		ctx context.Context,
		id uint,
	) (*models.Staff, error)

	GetStaffByEmail(
		ctx context.Context,
		email string,
	) (*models.Staff, error)

	// LockStaff takes a row lock on the staff member for the rest of the
	// transaction. It serializes writers that touch the same schedule.
	LockStaff(
		ctx context.Context,
		id uint,
	) (*models.Staff, error)

	// -------- Service --------
	GetService(
		ctx context.Context,
		id uint,
	) (*models.Service, error)

	GetStaffService(
		ctx context.Context,
		staffID uint,
		serviceID uint,
	) (*models.StaffService, error)

	// -------- Customer --------
	GetOrCreateCustomer(
		ctx context.Context,
		name string,
		phone string,
		email string,
	) (*models.Customer, error)
}

type ScheduleStore interface {
	// GetOverride returns the override row for a "YYYY-MM-DD" date.
	GetOverride(
		ctx context.Context,
		staffID uint,
		date string,
	) (*models.StaffAvailability, error)

	GetWeeklyRule(
		ctx context.Context,
		staffID uint,
		weekday int,
	) (*models.StaffAvailability, error)

	ListSchedule(
		ctx context.Context,
		staffID uint,
	) ([]models.StaffAvailability, error)

	// ReplaceWeeklyRules deletes every weekly rule of the staff member
	// (with blocks) and inserts rules.
	ReplaceWeeklyRules(
		ctx context.Context,
		staffID uint,
		rules []models.StaffAvailability,
	) error

	UpsertOverride(
		ctx context.Context,
		rule *models.StaffAvailability,
	) error

	DeleteOverride(
		ctx context.Context,
		staffID uint,
		date string,
	) (bool, error)
}

type BookingStore interface {
	CreateBooking(
		ctx context.Context,
		b *models.Booking,
	) error

	GetBooking(
		ctx context.Context,
		id uint,
	) (*models.Booking, error)

	UpdateBooking(
		ctx context.Context,
		b *models.Booking,
	) error

	// ListBookingsOverlapping returns non-cancelled bookings of the staff
	// member intersecting [start, end).
	ListBookingsOverlapping(
		ctx context.Context,
		staffID uint,
		start time.Time,
		end time.Time,
	) ([]models.Booking, error)

	// ListActiveBookingsFrom returns non-cancelled bookings ending after from.
	ListActiveBookingsFrom(
		ctx context.Context,
		staffID uint,
		from time.Time,
	) ([]models.Booking, error)

	// ListBookingsForPeriod returns every booking starting in [start, end),
	// cancelled ones included, with staff and service loaded.
	ListBookingsForPeriod(
		ctx context.Context,
		staffID uint,
		start time.Time,
		end time.Time,
	) ([]models.Booking, error)
}

type HoldStore interface {
	CreateHold(
		ctx context.Context,
		h *models.BookingHold,
	) error

	GetHold(
		ctx context.Context,
		id string,
	) (*models.BookingHold, error)

	// LockHold reads the hold with a row lock.
	LockHold(
		ctx context.Context,
		id string,
	) (*models.BookingHold, error)

	GetLiveHoldBySession(
		ctx context.Context,
		session string,
		now time.Time,
	) (*models.BookingHold, error)

	// ListHoldsBySession includes expired rows not yet evicted.
	ListHoldsBySession(
		ctx context.Context,
		session string,
	) ([]models.BookingHold, error)

	ListLiveHoldsOverlapping(
		ctx context.Context,
		staffID uint,
		start time.Time,
		end time.Time,
		now time.Time,
	) ([]models.BookingHold, error)

	// DeleteHold is idempotent; it reports whether a row was removed.
	DeleteHold(
		ctx context.Context,
		id string,
	) (bool, error)

	ListExpiredHolds(
		ctx context.Context,
		now time.Time,
		staffID *uint,
	) ([]models.BookingHold, error)

	// DeleteExpiredHold removes the hold only if it is still expired at now.
	DeleteExpiredHold(
		ctx context.Context,
		id string,
		now time.Time,
	) (bool, error)
}

type Repository interface {
	Catalog
	ScheduleStore
	BookingStore
	HoldStore

	// Transaction runs fn against a repository bound to one transaction.
	// Returning an error rolls everything back.
	Transaction(
		ctx context.Context,
		fn func(tx Repository) error,
	) error
}
