package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/booking"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/lock"
	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/timezone"
)

type BlockInput struct {
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	IsRecurring bool   `json:"is_recurring"`
}

type DayInput struct {
	DayOfWeek int          `json:"day_of_week"`
	Active    bool         `json:"active"`
	StartTime string       `json:"start_time"`
	EndTime   string       `json:"end_time"`
	Blocks    []BlockInput `json:"blocks"`
}

type OverrideInput struct {
	Date      string
	StartTime string
	EndTime   string
	Blocks    []BlockInput
}

// ScheduleConflict is a future booking the edit would leave outside the
// working window or inside a block.
type ScheduleConflict struct {
	BookingID    uint      `json:"booking_id"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	CustomerName string    `json:"customer_name"`
	Reason       string    `json:"reason"`
}

// ScheduleEditor applies staff schedule edits. Every edit is checked
// against the future bookings of the staff member inside the same
// transaction; force skips the rejection.
type ScheduleEditor struct {
	repo     domain.Repository
	locker   lock.Locker
	settings Settings
}

func NewScheduleEditor(
	repo domain.Repository,
	locker lock.Locker,
	settings Settings,
) *ScheduleEditor {
	return &ScheduleEditor{
		repo:     repo,
		locker:   locker,
		settings: settings.withDefaults(),
	}
}

func (uc *ScheduleEditor) GetSchedule(
	ctx context.Context,
	staffID uint,
) ([]models.StaffAvailability, error) {

	if _, err := uc.repo.GetStaff(ctx, staffID); err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, httperr.ErrNotFound("staff_not_found")
		}
		return nil, err
	}

	return uc.repo.ListSchedule(ctx, staffID)
}

// ======================================================
// WEEKLY
// ======================================================

func (uc *ScheduleEditor) ReplaceWeekly(
	ctx context.Context,
	staffID uint,
	days []DayInput,
	force bool,
) ([]models.StaffAvailability, error) {

	seen := make(map[int]bool, len(days))
	rules := make([]models.StaffAvailability, 0, len(days))

	for _, d := range days {
		if d.DayOfWeek < 0 || d.DayOfWeek > 6 {
			return nil, httperr.ErrValidation("invalid_input", "day_of_week must be 0..6")
		}
		if seen[d.DayOfWeek] {
			return nil, httperr.ErrValidation("invalid_input", fmt.Sprintf("day %d listed twice", d.DayOfWeek))
		}
		seen[d.DayOfWeek] = true

		if !d.Active {
			continue
		}

		rule, err := buildRule(d.StartTime, d.EndTime, d.Blocks)
		if err != nil {
			return nil, err
		}
		rule.DayOfWeek = d.DayOfWeek
		rules = append(rules, *rule)
	}

	err := uc.apply(ctx, staffID, force,
		func(s *scheduleSet) {
			s.weekly = make(map[int]*models.StaffAvailability, len(rules))
			for i := range rules {
				s.weekly[rules[i].DayOfWeek] = &rules[i]
			}
		},
		func(tx domain.Repository) error {
			return tx.ReplaceWeeklyRules(ctx, staffID, rules)
		},
	)
	if err != nil {
		return nil, err
	}

	return uc.repo.ListSchedule(ctx, staffID)
}

// ======================================================
// OVERRIDES
// ======================================================

// SetOverride replaces the schedule of one date. "00:00"-"00:00" marks the
// date as a day off.
func (uc *ScheduleEditor) SetOverride(
	ctx context.Context,
	staffID uint,
	in OverrideInput,
	force bool,
) (*models.StaffAvailability, error) {

	date, err := timezone.ParseDate(in.Date, uc.settings.Location)
	if err != nil {
		return nil, httperr.ErrValidation("invalid_date", "date must be YYYY-MM-DD")
	}
	key := date.Format("2006-01-02")

	var rule *models.StaffAvailability
	if in.StartTime == models.DayOffTime && in.EndTime == models.DayOffTime {
		if len(in.Blocks) > 0 {
			return nil, httperr.ErrValidation("invalid_input", "a day off cannot have blocks")
		}
		rule = &models.StaffAvailability{
			StartTime: models.DayOffTime,
			EndTime:   models.DayOffTime,
		}
	} else {
		rule, err = buildRule(in.StartTime, in.EndTime, in.Blocks)
		if err != nil {
			return nil, err
		}
	}

	rule.StaffID = staffID
	rule.DayOfWeek = int(date.Weekday())
	rule.OverrideDate = &key

	err = uc.apply(ctx, staffID, force,
		func(s *scheduleSet) {
			s.overrides[key] = rule
		},
		func(tx domain.Repository) error {
			return tx.UpsertOverride(ctx, rule)
		},
	)
	if err != nil {
		return nil, err
	}

	return rule, nil
}

func (uc *ScheduleEditor) ClearOverride(
	ctx context.Context,
	staffID uint,
	date string,
	force bool,
) error {

	d, err := timezone.ParseDate(date, uc.settings.Location)
	if err != nil {
		return httperr.ErrValidation("invalid_date", "date must be YYYY-MM-DD")
	}
	key := d.Format("2006-01-02")

	return uc.apply(ctx, staffID, force,
		func(s *scheduleSet) {
			delete(s.overrides, key)
		},
		func(tx domain.Repository) error {
			_, err := tx.DeleteOverride(ctx, staffID, key)
			return err
		},
	)
}

// ======================================================
// GUARD
// ======================================================

type scheduleSet struct {
	weekly    map[int]*models.StaffAvailability
	overrides map[string]*models.StaffAvailability
}

func newScheduleSet(rows []models.StaffAvailability) *scheduleSet {
	s := &scheduleSet{
		weekly:    make(map[int]*models.StaffAvailability),
		overrides: make(map[string]*models.StaffAvailability),
	}
	for i := range rows {
		r := &rows[i]
		if r.OverrideDate != nil {
			s.overrides[*r.OverrideDate] = r
		} else {
			s.weekly[r.DayOfWeek] = r
		}
	}
	return s
}

func (s *scheduleSet) ruleFor(day time.Time) *models.StaffAvailability {
	if r, ok := s.overrides[day.Format("2006-01-02")]; ok {
		return r
	}
	return s.weekly[int(day.Weekday())]
}

func (uc *ScheduleEditor) apply(
	ctx context.Context,
	staffID uint,
	force bool,
	mutate func(s *scheduleSet),
	write func(tx domain.Repository) error,
) error {

	now := uc.settings.Now()
	loc := uc.settings.Location

	return withStaffLock(ctx, uc.locker, staffID, func() error {
		return uc.repo.Transaction(ctx, func(tx domain.Repository) error {
			if _, err := tx.LockStaff(ctx, staffID); err != nil {
				if errors.Is(err, domain.ErrRecordNotFound) {
					return httperr.ErrNotFound("staff_not_found")
				}
				return err
			}

			rows, err := tx.ListSchedule(ctx, staffID)
			if err != nil {
				return err
			}
			before := newScheduleSet(rows)
			after := newScheduleSet(rows)
			mutate(after)

			future, err := tx.ListActiveBookingsFrom(ctx, staffID, now)
			if err != nil {
				return err
			}

			conflicts, err := orphanedBookings(before, after, future, loc)
			if err != nil {
				return err
			}

			if len(conflicts) > 0 {
				if !force {
					return httperr.ErrConflictDetails(
						"schedule_conflict",
						fmt.Sprintf("%d future booking(s) would fall outside the new schedule", len(conflicts)),
						conflicts,
					)
				}
				logrus.WithFields(logrus.Fields{
					"staff_id":  staffID,
					"conflicts": len(conflicts),
				}).Warn("schedule edit forced over existing bookings")
			}

			return write(tx)
		})
	})
}

// orphanedBookings lists bookings that fit the current schedule but not the
// edited one. Bookings already orphaned by an earlier forced edit are not
// reported again.
func orphanedBookings(
	before, after *scheduleSet,
	bookings []models.Booking,
	loc *time.Location,
) ([]ScheduleConflict, error) {

	var out []ScheduleConflict

	for _, b := range bookings {
		day := b.StartTime.In(loc)
		iv := domain.BookingInterval(b)

		was, err := domain.ResolveWindow(before.ruleFor(day), day, loc)
		if err != nil {
			return nil, err
		}
		if ok, _ := was.Fits(iv); !ok {
			continue
		}

		w, err := domain.ResolveWindow(after.ruleFor(day), day, loc)
		if err != nil {
			return nil, err
		}

		if ok, reason := w.Fits(iv); !ok {
			out = append(out, ScheduleConflict{
				BookingID:    b.ID,
				StartTime:    b.StartTime,
				EndTime:      b.EndTime,
				CustomerName: b.CustomerName,
				Reason:       reason,
			})
		}
	}

	return out, nil
}

// ======================================================
// VALIDATION
// ======================================================

func buildRule(start, end string, blocks []BlockInput) (*models.StaffAvailability, error) {
	startMin, err := timezone.ParseClock(start)
	if err != nil {
		return nil, httperr.ErrValidation("invalid_time", "start_time must be HH:MM")
	}
	endMin, err := timezone.ParseClock(end)
	if err != nil {
		return nil, httperr.ErrValidation("invalid_time", "end_time must be HH:MM")
	}
	if startMin >= endMin {
		return nil, httperr.ErrValidation("invalid_time", "start_time must be before end_time")
	}

	rule := &models.StaffAvailability{
		StartTime: start,
		EndTime:   end,
	}

	for _, b := range blocks {
		bs, err := timezone.ParseClock(b.StartTime)
		if err != nil {
			return nil, httperr.ErrValidation("invalid_time", "block start_time must be HH:MM")
		}
		be, err := timezone.ParseClock(b.EndTime)
		if err != nil {
			return nil, httperr.ErrValidation("invalid_time", "block end_time must be HH:MM")
		}
		if bs >= be {
			return nil, httperr.ErrValidation("invalid_time", "block start_time must be before end_time")
		}
		if bs < startMin || be > endMin {
			return nil, httperr.ErrValidation("invalid_time", "block must lie within working hours")
		}

		bt := models.BlockType(b.Type)
		if !bt.Valid() {
			return nil, httperr.ErrValidation("invalid_input", fmt.Sprintf("unknown block type %q", b.Type))
		}

		rule.Blocks = append(rule.Blocks, models.ScheduleBlock{
			StartTime:   b.StartTime,
			EndTime:     b.EndTime,
			Type:        bt,
			Title:       b.Title,
			IsRecurring: b.IsRecurring,
		})
	}

	return rule, nil
}
