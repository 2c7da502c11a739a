package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/BruksfildServices01/salon-booking/internal/analytics"
	domain "github.com/BruksfildServices01/salon-booking/internal/domain/booking"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/lock"
	"github.com/BruksfildServices01/salon-booking/internal/metrics"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

type CreateHoldInput struct {
	SessionID string
	StaffID   uint
	ServiceID uint
	StartTime time.Time
}

// HoldManager owns the hold lifecycle: none -> held -> expired | released |
// converted. Expired rows are never reported as live; they are evicted
// lazily and by CleanupExpiredHolds.
type HoldManager struct {
	repo     domain.Repository
	locker   lock.Locker
	sink     analytics.Sink
	writer   *CreateBooking
	settings Settings
}

func NewHoldManager(
	repo domain.Repository,
	locker lock.Locker,
	sink analytics.Sink,
	writer *CreateBooking,
	settings Settings,
) *HoldManager {
	return &HoldManager{
		repo:     repo,
		locker:   locker,
		sink:     sink,
		writer:   writer,
		settings: settings.withDefaults(),
	}
}

// ======================================================
// CREATE
// ======================================================

func (m *HoldManager) CreateHold(
	ctx context.Context,
	in CreateHoldInput,
) (*models.BookingHold, error) {

	in.SessionID = strings.TrimSpace(in.SessionID)
	if in.SessionID == "" {
		return nil, httperr.ErrValidation("invalid_input", "session_id is required")
	}
	if in.StaffID == 0 || in.ServiceID == 0 {
		return nil, httperr.ErrValidation("invalid_input", "staff_id and service_id are required")
	}
	if in.StartTime.IsZero() {
		return nil, httperr.ErrValidation("invalid_time", "start_time is required")
	}

	// global lazy eviction; failures are logged inside
	m.CleanupExpiredHolds(ctx)

	now := m.settings.Now()
	if in.StartTime.Before(now) {
		return nil, httperr.ErrValidation("slot_in_past", "the requested time has already passed")
	}

	var (
		hold     *models.BookingHold
		released []models.BookingHold
		expired  []models.BookingHold
	)

	// session before staff: two staff locks would not exclude each other
	err := withSessionLock(ctx, m.locker, in.SessionID, func() error {
		return withStaffLock(ctx, m.locker, in.StaffID, func() error {
			return m.repo.Transaction(ctx, func(tx domain.Repository) error {
				var err error
				hold, released, expired, err = m.createHold(ctx, tx, in, now)
				return err
			})
		})
	})
	if err != nil {
		if httperr.IsBusiness(err, "slot_unavailable") {
			metrics.IncHoldConflict()
		}
		return nil, err
	}

	for _, h := range expired {
		m.sink.RecordHoldExpired(h, h.ExpiresAt)
	}
	if len(expired) > 0 {
		metrics.AddHoldEvents(metrics.HoldExpired, len(expired))
	}
	if len(released) > 0 {
		metrics.AddHoldEvents(metrics.HoldReleased, len(released))
	}

	m.sink.RecordHoldCreated(*hold, now)
	metrics.IncHoldEvent(metrics.HoldCreated)

	logrus.WithFields(logrus.Fields{
		"hold_id":    hold.ID,
		"session_id": hold.SessionID,
		"staff_id":   hold.StaffID,
		"start":      hold.StartTime,
		"expires_at": hold.ExpiresAt,
	}).Debug("hold created")

	return hold, nil
}

func (m *HoldManager) createHold(
	ctx context.Context,
	tx domain.Repository,
	in CreateHoldInput,
	now time.Time,
) (hold *models.BookingHold, released, expired []models.BookingHold, err error) {

	// --------------------------------------------------
	// 1️⃣ Staff (row lock)
	// --------------------------------------------------
	if _, err := tx.LockStaff(ctx, in.StaffID); err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, nil, nil, httperr.ErrNotFound("staff_not_found")
		}
		return nil, nil, nil, err
	}

	// --------------------------------------------------
	// 2️⃣ One live hold per session
	// --------------------------------------------------
	own, err := tx.ListHoldsBySession(ctx, in.SessionID)
	if err != nil {
		return nil, nil, nil, err
	}
	for _, h := range own {
		deleted, err := tx.DeleteHold(ctx, h.ID)
		if err != nil {
			return nil, nil, nil, err
		}
		if !deleted {
			continue
		}
		if h.IsLive(now) {
			released = append(released, h)
		} else {
			expired = append(expired, h)
		}
	}

	// --------------------------------------------------
	// 3️⃣ Service
	// --------------------------------------------------
	svc, err := tx.GetService(ctx, in.ServiceID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, nil, nil, httperr.ErrNotFound("service_not_found")
		}
		return nil, nil, nil, err
	}

	if _, err := tx.GetStaffService(ctx, in.StaffID, in.ServiceID); err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, nil, nil, httperr.ErrConflict("staff_ineligible", "staff cannot perform this service")
		}
		return nil, nil, nil, err
	}

	iv := domain.NewInterval(in.StartTime.UTC(), svc.Duration())
	loc := m.settings.Location

	// --------------------------------------------------
	// 4️⃣ Re-validate: schedule, bookings, other holds
	// --------------------------------------------------
	window, err := resolveWindow(ctx, tx, in.StaffID, iv.Start, loc)
	if err != nil {
		return nil, nil, nil, err
	}
	if ok, reason := window.Fits(iv); !ok {
		return nil, nil, nil, httperr.ErrConflict("staff_unavailable", reason)
	}

	// stale rows of this staff could still occupy the unique (staff, start) key
	stale, err := tx.ListExpiredHolds(ctx, now, &in.StaffID)
	if err != nil {
		return nil, nil, nil, err
	}
	for _, h := range stale {
		deleted, err := tx.DeleteExpiredHold(ctx, h.ID, now)
		if err != nil {
			return nil, nil, nil, err
		}
		if deleted {
			expired = append(expired, h)
		}
	}

	reason, err := slotConflict(ctx, tx, in.StaffID, iv, in.SessionID, now, loc)
	if err != nil {
		return nil, nil, nil, err
	}
	if reason != "" {
		return nil, nil, nil, httperr.ErrConflict("slot_unavailable", reason)
	}

	// --------------------------------------------------
	// 5️⃣ Insert
	// --------------------------------------------------
	hold = &models.BookingHold{
		SessionID: in.SessionID,
		StaffID:   in.StaffID,
		ServiceID: in.ServiceID,
		StartTime: iv.Start,
		EndTime:   iv.End,
		ExpiresAt: now.Add(m.settings.HoldDuration),
	}

	if err := tx.CreateHold(ctx, hold); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, nil, nil, httperr.ErrConflict("slot_unavailable", "slot no longer available")
		}
		return nil, nil, nil, err
	}

	return hold, released, expired, nil
}

// ======================================================
// RELEASE / LOOKUP
// ======================================================

// ReleaseHold is idempotent: releasing a missing hold is not an error. A
// hold already past its expiry is recorded as expired, not released.
func (m *HoldManager) ReleaseHold(ctx context.Context, holdID string) error {
	h, err := m.repo.GetHold(ctx, holdID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	_, err = m.releaseHold(ctx, *h, m.settings.Now())
	return err
}

// ReleaseHoldBySession removes every hold of the session and returns how
// many of them were still live.
func (m *HoldManager) ReleaseHoldBySession(ctx context.Context, session string) (int, error) {
	holds, err := m.repo.ListHoldsBySession(ctx, session)
	if err != nil {
		return 0, err
	}

	now := m.settings.Now()
	n := 0
	for _, h := range holds {
		live, err := m.releaseHold(ctx, h, now)
		if err != nil {
			return n, err
		}
		if live {
			n++
		}
	}
	return n, nil
}

// releaseHold deletes h and reports whether this call removed a live hold.
func (m *HoldManager) releaseHold(
	ctx context.Context,
	h models.BookingHold,
	now time.Time,
) (bool, error) {

	deleted, err := m.repo.DeleteHold(ctx, h.ID)
	if err != nil {
		return false, err
	}
	// already gone: converted, released or evicted elsewhere
	if !deleted {
		return false, nil
	}

	if h.IsLive(now) {
		metrics.IncHoldEvent(metrics.HoldReleased)
		return true, nil
	}

	m.sink.RecordHoldExpired(h, h.ExpiresAt)
	metrics.IncHoldEvent(metrics.HoldExpired)
	return false, nil
}

func (m *HoldManager) GetActiveHoldBySession(
	ctx context.Context,
	session string,
) (*models.BookingHold, error) {

	h, err := m.repo.GetLiveHoldBySession(ctx, session, m.settings.Now())
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, httperr.ErrNotFound("hold_not_found")
		}
		return nil, err
	}
	return h, nil
}

// ======================================================
// CONVERT
// ======================================================

// ConvertHoldToBooking commits a booking for the hold's staff, service and
// start. The hold is re-read under lock inside the booking transaction, so
// losing a race against expiry yields hold_not_found.
func (m *HoldManager) ConvertHoldToBooking(
	ctx context.Context,
	holdID string,
	customer CustomerInfo,
) (*models.Booking, error) {

	hold, err := m.repo.GetHold(ctx, holdID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, httperr.ErrNotFound("hold_not_found")
		}
		return nil, err
	}

	if !hold.IsLive(m.settings.Now()) {
		return nil, httperr.ErrValidation("hold_expired", "hold expired, please select a new time")
	}

	return m.writer.Execute(ctx, CreateBookingInput{
		StaffID:   hold.StaffID,
		ServiceID: hold.ServiceID,
		StartTime: hold.StartTime,
		Customer:  customer,
		SessionID: hold.SessionID,
		holdID:    hold.ID,
	})
}

// ======================================================
// CLEANUP
// ======================================================

// CleanupExpiredHolds evicts every hold past its expiry and returns how many
// rows this call removed. It never fails: errors are logged.
func (m *HoldManager) CleanupExpiredHolds(ctx context.Context) int {
	now := m.settings.Now()

	holds, err := m.repo.ListExpiredHolds(ctx, now, nil)
	if err != nil {
		logrus.WithError(err).Error("list expired holds failed")
		return 0
	}

	n := 0
	for _, h := range holds {
		deleted, err := m.repo.DeleteExpiredHold(ctx, h.ID, now)
		if err != nil {
			logrus.WithError(err).
				WithField("hold_id", h.ID).
				Error("evict expired hold failed")
			continue
		}
		// already released, converted or evicted by someone else
		if !deleted {
			continue
		}
		n++
		m.sink.RecordHoldExpired(h, h.ExpiresAt)
	}

	if n > 0 {
		metrics.AddHoldEvents(metrics.HoldExpired, n)
		logrus.WithField("count", n).Debug("expired holds evicted")
	}

	return n
}
