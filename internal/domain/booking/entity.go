package booking

import (
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

// ===============================
// Domain Actions
// ===============================

func Cancel(b *models.Booking, now time.Time) error {
	if err := CanCancel(Status(b.Status)); err != nil {
		return err
	}

	b.Status = string(StatusCancelled)
	b.CancelledAt = &now
	return nil
}

func MarkNoShow(b *models.Booking) error {
	if err := CanMarkNoShow(Status(b.Status)); err != nil {
		return err
	}

	b.Status = string(StatusNoShow)
	return nil
}

func Confirm(b *models.Booking) error {
	if err := CanConfirm(Status(b.Status)); err != nil {
		return err
	}

	b.Status = string(StatusConfirmed)
	return nil
}

// Transition moves b to target through the allowed transitions only.
func Transition(b *models.Booking, target Status, now time.Time) error {
	switch target {
	case StatusCancelled:
		return Cancel(b, now)
	case StatusNoShow:
		return MarkNoShow(b)
	case StatusConfirmed:
		return Confirm(b)
	}
	return httperr.ErrValidation("invalid_state", "unsupported target status")
}

// ResolvePrice returns the staff-specific price when one is set.
func ResolvePrice(svc *models.Service, link *models.StaffService) int64 {
	if link != nil && link.PriceOverrideCents != nil {
		return *link.PriceOverrideCents
	}
	return svc.PriceCents
}
