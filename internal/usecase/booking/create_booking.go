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
	"github.com/BruksfildServices01/salon-booking/internal/validators"
)

// ======================================================
// INPUT
// ======================================================

type CreateBookingInput struct {
	StaffID   uint
	ServiceID uint
	StartTime time.Time

	Customer CustomerInfo

	// optional: holds of this session on the same slot are consumed
	SessionID string

	// set by HoldManager.ConvertHoldToBooking; the hold must still be live
	// inside the booking transaction
	holdID string
}

// ======================================================
// USE CASE
// ======================================================

// CreateBooking is the only place a booking row is written. Its overlap
// check runs inside the same transaction as the insert.
type CreateBooking struct {
	repo     domain.Repository
	locker   lock.Locker
	sink     analytics.Sink
	settings Settings
}

func NewCreateBooking(
	repo domain.Repository,
	locker lock.Locker,
	sink analytics.Sink,
	settings Settings,
) *CreateBooking {
	return &CreateBooking{
		repo:     repo,
		locker:   locker,
		sink:     sink,
		settings: settings.withDefaults(),
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateBooking) Execute(
	ctx context.Context,
	in CreateBookingInput,
) (*models.Booking, error) {

	customer, err := normalizeCustomer(in.Customer)
	if err != nil {
		return nil, err
	}
	in.Customer = customer

	if in.StaffID == 0 || in.ServiceID == 0 {
		return nil, httperr.ErrValidation("invalid_input", "staff_id and service_id are required")
	}
	if in.StartTime.IsZero() {
		return nil, httperr.ErrValidation("invalid_time", "start_time is required")
	}

	now := uc.settings.Now()
	if in.StartTime.Before(now) {
		return nil, httperr.ErrValidation("slot_in_past", "the requested time has already passed")
	}

	var (
		b        *models.Booking
		staff    *models.Staff
		svc      *models.Service
		consumed []models.BookingHold
	)

	err = withStaffLock(ctx, uc.locker, in.StaffID, func() error {
		return uc.repo.Transaction(ctx, func(tx domain.Repository) error {
			var err error
			b, staff, svc, consumed, err = uc.create(ctx, tx, in, now)
			return err
		})
	})
	if err != nil {
		if httperr.IsBusiness(err, "slot_already_booked") {
			metrics.IncBookingConflict()
		}
		return nil, err
	}

	// --------------------------------------------------
	// After commit: analytics + metrics
	// --------------------------------------------------
	for _, h := range consumed {
		uc.sink.RecordHoldConverted(h, now)
	}
	if len(consumed) > 0 {
		metrics.AddHoldEvents(metrics.HoldConverted, len(consumed))
	}

	source := metrics.SourceDirect
	if in.holdID != "" {
		source = metrics.SourceHold
	}
	metrics.IncBookingCreated(source)

	b.Staff = *staff
	b.Service = *svc

	logrus.WithFields(logrus.Fields{
		"booking_id": b.ID,
		"staff_id":   b.StaffID,
		"start":      b.StartTime,
		"source":     source,
	}).Info("booking created")

	return b, nil
}

func (uc *CreateBooking) create(
	ctx context.Context,
	tx domain.Repository,
	in CreateBookingInput,
	now time.Time,
) (*models.Booking, *models.Staff, *models.Service, []models.BookingHold, error) {

	// --------------------------------------------------
	// 1️⃣ Staff (row lock)
	// --------------------------------------------------
	staff, err := tx.LockStaff(ctx, in.StaffID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, nil, nil, nil, httperr.ErrNotFound("staff_not_found")
		}
		return nil, nil, nil, nil, err
	}

	// --------------------------------------------------
	// 2️⃣ Service + eligibility
	// --------------------------------------------------
	svc, err := tx.GetService(ctx, in.ServiceID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, nil, nil, nil, httperr.ErrNotFound("service_not_found")
		}
		return nil, nil, nil, nil, err
	}

	link, err := tx.GetStaffService(ctx, in.StaffID, in.ServiceID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, nil, nil, nil, httperr.ErrConflict("staff_ineligible", "staff cannot perform this service")
		}
		return nil, nil, nil, nil, err
	}

	iv := domain.NewInterval(in.StartTime.UTC(), svc.Duration())
	loc := uc.settings.Location

	// --------------------------------------------------
	// 3️⃣ Working hours + blocks
	// --------------------------------------------------
	window, err := resolveWindow(ctx, tx, in.StaffID, iv.Start, loc)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if ok, reason := window.Fits(iv); !ok {
		return nil, nil, nil, nil, httperr.ErrConflict("staff_unavailable", reason)
	}

	// --------------------------------------------------
	// 4️⃣ Hold being converted
	// --------------------------------------------------
	var (
		hold     *models.BookingHold
		consumed []models.BookingHold
	)

	if in.holdID != "" {
		hold, err = tx.LockHold(ctx, in.holdID)
		if err != nil {
			if errors.Is(err, domain.ErrRecordNotFound) {
				return nil, nil, nil, nil, httperr.ErrNotFound("hold_not_found")
			}
			return nil, nil, nil, nil, err
		}
		if !hold.IsLive(now) {
			return nil, nil, nil, nil, httperr.ErrValidation("hold_expired", "hold expired, please select a new time")
		}
	}

	// --------------------------------------------------
	// 5️⃣ Authoritative overlap check
	// --------------------------------------------------
	existing, err := tx.ListBookingsOverlapping(ctx, in.StaffID, iv.Start, iv.End)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if conflict, hit := domain.FirstBookingConflict(iv, existing); hit {
		return nil, nil, nil, nil, httperr.ErrConflict("slot_already_booked", bookingReason(conflict, loc))
	}

	// --------------------------------------------------
	// 6️⃣ Consume holds
	// --------------------------------------------------
	if hold != nil {
		if _, err := tx.DeleteHold(ctx, hold.ID); err != nil {
			return nil, nil, nil, nil, err
		}
		consumed = append(consumed, *hold)
	}

	if in.SessionID != "" {
		holds, err := tx.ListHoldsBySession(ctx, in.SessionID)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		for _, h := range holds {
			if h.ID == in.holdID || !matchesSlot(h, in.StaffID, in.ServiceID, iv.Start) {
				continue
			}
			deleted, err := tx.DeleteHold(ctx, h.ID)
			if err != nil {
				return nil, nil, nil, nil, err
			}
			if deleted && h.IsLive(now) {
				consumed = append(consumed, h)
			}
		}
	}

	// --------------------------------------------------
	// 7️⃣ Customer + insert
	// --------------------------------------------------
	customer, err := tx.GetOrCreateCustomer(
		ctx,
		in.Customer.Name,
		in.Customer.Phone,
		in.Customer.Email,
	)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	b := &models.Booking{
		StaffID:       in.StaffID,
		ServiceID:     in.ServiceID,
		CustomerID:    &customer.ID,
		CustomerName:  in.Customer.Name,
		CustomerPhone: in.Customer.Phone,
		CustomerEmail: in.Customer.Email,
		StartTime:     iv.Start,
		EndTime:       iv.End,
		PriceCents:    domain.ResolvePrice(svc, link),
		Status:        string(domain.InitialStatus()),
		Notes:         in.Customer.Notes,
	}

	if err := tx.CreateBooking(ctx, b); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, nil, nil, nil, httperr.ErrConflict("slot_already_booked", "slot already booked")
		}
		return nil, nil, nil, nil, err
	}

	return b, staff, svc, consumed, nil
}

func matchesSlot(h models.BookingHold, staffID, serviceID uint, start time.Time) bool {
	return h.StaffID == staffID && h.ServiceID == serviceID && h.StartTime.Equal(start)
}

func normalizeCustomer(c CustomerInfo) (CustomerInfo, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Notes = strings.TrimSpace(c.Notes)

	if c.Name == "" {
		return c, httperr.ErrValidation("invalid_input", "customer name is required")
	}

	phone := validators.NormalizePhone(c.Phone)
	if phone == "" {
		return c, httperr.ErrValidation("invalid_input", "customer phone is invalid")
	}
	c.Phone = phone

	if c.Email != "" && !validators.IsEmailValid(c.Email) {
		return c, httperr.ErrValidation("invalid_input", "customer email is invalid")
	}

	return c, nil
}
