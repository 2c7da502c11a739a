package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/booking"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/timezone"
)

type AvailabilityInput struct {
	StaffID   uint
	ServiceID uint
	// used when ServiceID is zero
	DurationMin int
	Date        string
	Granularity int
	// holds owned by this session do not hide slots
	SessionID string
}

type AvailabilityResult struct {
	Date  string      `json:"date"`
	Slots []time.Time `json:"slots"`
}

type GetAvailability struct {
	repo     domain.Repository
	settings Settings
}

func NewGetAvailability(
	repo domain.Repository,
	settings Settings,
) *GetAvailability {
	return &GetAvailability{
		repo:     repo,
		settings: settings.withDefaults(),
	}
}

func (uc *GetAvailability) Execute(
	ctx context.Context,
	in AvailabilityInput,
) (*AvailabilityResult, error) {

	loc := uc.settings.Location

	// --------------------------------------------------
	// Input
	// --------------------------------------------------
	granularity := in.Granularity
	if granularity == 0 {
		granularity = uc.settings.DefaultGranularity
	}
	if granularity < 1 || granularity > maxGranularity {
		return nil, httperr.ErrValidation("invalid_granularity", "granularity must be between 1 and 240 minutes")
	}

	date, err := timezone.ParseDate(in.Date, loc)
	if err != nil {
		return nil, httperr.ErrValidation("invalid_date", "date must be YYYY-MM-DD")
	}

	if in.StaffID == 0 {
		return nil, httperr.ErrValidation("invalid_input", "staff_id is required")
	}

	result := &AvailabilityResult{
		Date:  in.Date,
		Slots: []time.Time{},
	}

	// --------------------------------------------------
	// Staff / service
	// --------------------------------------------------
	staff, err := uc.repo.GetStaff(ctx, in.StaffID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, httperr.ErrNotFound("staff_not_found")
		}
		return nil, uc.lookupFailed(err, in)
	}
	// inactive staff take no bookings, so they have no slots either
	if !staff.Active {
		return nil, httperr.ErrNotFound("staff_not_found")
	}

	duration, err := uc.duration(ctx, in)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Working window (override first, then weekly)
	// --------------------------------------------------
	window, err := resolveWindow(ctx, uc.repo, in.StaffID, date, loc)
	if err != nil {
		return nil, uc.lookupFailed(err, in)
	}
	if window == nil {
		return result, nil
	}

	now := uc.settings.Now()

	// --------------------------------------------------
	// One snapshot of bookings and holds for the whole day
	// --------------------------------------------------
	bookings, err := uc.repo.ListBookingsOverlapping(
		ctx,
		in.StaffID,
		window.Open.Start,
		window.Open.End,
	)
	if err != nil {
		return nil, uc.lookupFailed(err, in)
	}

	holds, err := uc.repo.ListLiveHoldsOverlapping(
		ctx,
		in.StaffID,
		window.Open.Start,
		window.Open.End,
		now,
	)
	if err != nil {
		return nil, uc.lookupFailed(err, in)
	}

	for _, start := range candidates(window, duration, granularity, loc) {
		if start.Before(now) {
			continue
		}

		iv := domain.NewInterval(start, duration)

		if ok, _ := window.Fits(iv); !ok {
			continue
		}
		if _, hit := domain.FirstBookingConflict(iv, bookings); hit {
			continue
		}
		if _, hit := domain.FirstHoldConflict(iv, holds, in.SessionID, now); hit {
			continue
		}

		result.Slots = append(result.Slots, start.UTC())
	}

	return result, nil
}

func (uc *GetAvailability) duration(
	ctx context.Context,
	in AvailabilityInput,
) (time.Duration, error) {

	if in.ServiceID == 0 {
		if in.DurationMin <= 0 {
			return 0, httperr.ErrValidation("invalid_input", "service_id or duration is required")
		}
		return time.Duration(in.DurationMin) * time.Minute, nil
	}

	svc, err := uc.repo.GetService(ctx, in.ServiceID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return 0, httperr.ErrNotFound("service_not_found")
		}
		return 0, uc.lookupFailed(err, in)
	}

	return svc.Duration(), nil
}

func (uc *GetAvailability) lookupFailed(err error, in AvailabilityInput) error {
	logrus.WithError(err).
		WithFields(logrus.Fields{
			"staff_id": in.StaffID,
			"date":     in.Date,
		}).
		Error("availability lookup failed")
	return httperr.ErrUnavailable("availability_lookup_failed")
}

// candidates steps through the window in wall-clock minutes and converts
// each start to an absolute instant exactly once. Starts whose interval
// leaves the window (absolute time, so DST days are measured correctly)
// are dropped, as are repeated instants from a fall-back hour.
func candidates(
	w *domain.Window,
	duration time.Duration,
	granularity int,
	loc *time.Location,
) []time.Time {

	var (
		out  []time.Time
		prev time.Time
	)

	for m := w.StartMin; m < w.EndMin; m += granularity {
		start := timezone.WallClock(w.Date, m, loc)
		if !prev.IsZero() && !start.After(prev) {
			continue
		}
		prev = start

		if !domain.NewInterval(start, duration).Within(w.Open) {
			continue
		}
		out = append(out, start)
	}

	return out
}

// ======================================================
// CHECK SLOT
// ======================================================

type CheckSlotInput struct {
	StaffID     uint
	StartTime   time.Time
	DurationMin int
	SessionID   string
}

type SlotCheck struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// CheckSlot is the read-only pre-flight against bookings and live holds.
type CheckSlot struct {
	repo     domain.Repository
	settings Settings
}

func NewCheckSlot(
	repo domain.Repository,
	settings Settings,
) *CheckSlot {
	return &CheckSlot{
		repo:     repo,
		settings: settings.withDefaults(),
	}
}

func (uc *CheckSlot) Execute(
	ctx context.Context,
	in CheckSlotInput,
) (*SlotCheck, error) {

	if in.StaffID == 0 || in.StartTime.IsZero() {
		return nil, httperr.ErrValidation("invalid_input", "staff_id and start are required")
	}
	if in.DurationMin <= 0 {
		return nil, httperr.ErrValidation("invalid_input", "duration must be positive")
	}

	now := uc.settings.Now()
	if in.StartTime.Before(now) {
		return &SlotCheck{Reason: "slot is in the past"}, nil
	}

	iv := domain.NewInterval(in.StartTime.UTC(), time.Duration(in.DurationMin)*time.Minute)

	reason, err := slotConflict(ctx, uc.repo, in.StaffID, iv, in.SessionID, now, uc.settings.Location)
	if err != nil {
		logrus.WithError(err).
			WithField("staff_id", in.StaffID).
			Error("slot check failed")
		return nil, httperr.ErrUnavailable("availability_lookup_failed")
	}

	if reason != "" {
		return &SlotCheck{Reason: reason}, nil
	}

	return &SlotCheck{Available: true}, nil
}

// slotConflict reports why iv cannot be taken, or "" when it is free of
// bookings and of live holds from other sessions.
func slotConflict(
	ctx context.Context,
	repo domain.Repository,
	staffID uint,
	iv domain.Interval,
	session string,
	now time.Time,
	loc *time.Location,
) (string, error) {

	bookings, err := repo.ListBookingsOverlapping(ctx, staffID, iv.Start, iv.End)
	if err != nil {
		return "", err
	}
	if b, hit := domain.FirstBookingConflict(iv, bookings); hit {
		return bookingReason(b, loc), nil
	}

	holds, err := repo.ListLiveHoldsOverlapping(ctx, staffID, iv.Start, iv.End, now)
	if err != nil {
		return "", err
	}
	if h, hit := domain.FirstHoldConflict(iv, holds, session, now); hit {
		return holdReason(h, loc), nil
	}

	return "", nil
}

func bookingReason(b *models.Booking, loc *time.Location) string {
	return fmt.Sprintf(
		"conflicts with existing appointment %s",
		clockRange(b.StartTime, b.EndTime, loc),
	)
}

func holdReason(h *models.BookingHold, loc *time.Location) string {
	return fmt.Sprintf(
		"slot %s is being held by another customer until %s",
		clockRange(h.StartTime, h.EndTime, loc),
		h.ExpiresAt.In(loc).Format("15:04"),
	)
}
