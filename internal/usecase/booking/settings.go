package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/booking"
	"github.com/BruksfildServices01/salon-booking/internal/lock"
	"github.com/BruksfildServices01/salon-booking/internal/timezone"
)

const (
	DefaultHoldDuration = 5 * time.Minute
	DefaultGranularity  = 15
	maxGranularity      = 240
)

// Settings carries the business-wide knobs shared by the use cases.
type Settings struct {
	Location           *time.Location
	HoldDuration       time.Duration
	DefaultGranularity int
	Now                func() time.Time
}

func (s Settings) withDefaults() Settings {
	if s.Location == nil {
		s.Location = timezone.Location(timezone.DefaultTimezone)
	}
	if s.HoldDuration <= 0 {
		s.HoldDuration = DefaultHoldDuration
	}
	if s.DefaultGranularity <= 0 {
		s.DefaultGranularity = DefaultGranularity
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	return s
}

// Actor is the authenticated staff member performing a management call.
type Actor struct {
	StaffID uint
	Admin   bool
}

func (a Actor) CanManage(staffID uint) bool {
	return a.Admin || a.StaffID == staffID
}

type CustomerInfo struct {
	Name  string
	Phone string
	Email string
	Notes string
}

// withStaffLock runs fn while holding the per-staff lock. The lock is taken
// before any transaction is opened.
func withStaffLock(
	ctx context.Context,
	locker lock.Locker,
	staffID uint,
	fn func() error,
) error {
	release, err := locker.Lock(ctx, lock.StaffKey(staffID))
	if err != nil {
		return fmt.Errorf("acquire staff lock: %w", err)
	}
	defer release()

	return fn()
}

func withSessionLock(
	ctx context.Context,
	locker lock.Locker,
	sessionID string,
	fn func() error,
) error {
	release, err := locker.Lock(ctx, lock.SessionKey(sessionID))
	if err != nil {
		return fmt.Errorf("acquire session lock: %w", err)
	}
	defer release()

	return fn()
}

// resolveWindow returns the working window of the local date containing
// day: the override for that date, else the weekly rule. nil means the
// staff member is not working.
func resolveWindow(
	ctx context.Context,
	repo domain.ScheduleStore,
	staffID uint,
	day time.Time,
	loc *time.Location,
) (*domain.Window, error) {

	day = day.In(loc)

	override, err := repo.GetOverride(ctx, staffID, day.Format("2006-01-02"))
	if err == nil {
		return domain.ResolveWindow(override, day, loc)
	}
	if !errors.Is(err, domain.ErrRecordNotFound) {
		return nil, err
	}

	rule, err := repo.GetWeeklyRule(ctx, staffID, int(day.Weekday()))
	if errors.Is(err, domain.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return domain.ResolveWindow(rule, day, loc)
}

func clockRange(start, end time.Time, loc *time.Location) string {
	return start.In(loc).Format("15:04") + "-" + end.In(loc).Format("15:04")
}
