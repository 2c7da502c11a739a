package booking

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/booking"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

// loadManagedBooking hides bookings the actor may not manage behind the
// same not-found error as missing ones.
func loadManagedBooking(
	ctx context.Context,
	repo domain.Repository,
	actor Actor,
	bookingID uint,
) (*models.Booking, error) {

	b, err := repo.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, httperr.ErrNotFound("booking_not_found")
		}
		return nil, err
	}

	if !actor.CanManage(b.StaffID) {
		return nil, httperr.ErrNotFound("booking_not_found")
	}

	return b, nil
}

type CancelBooking struct {
	repo     domain.Repository
	settings Settings
}

func NewCancelBooking(
	repo domain.Repository,
	settings Settings,
) *CancelBooking {
	return &CancelBooking{
		repo:     repo,
		settings: settings.withDefaults(),
	}
}

// Execute keeps the row with status cancelled; a cancelled booking no
// longer occupies its slot.
func (uc *CancelBooking) Execute(
	ctx context.Context,
	actor Actor,
	bookingID uint,
) (*models.Booking, error) {

	b, err := loadManagedBooking(ctx, uc.repo, actor, bookingID)
	if err != nil {
		return nil, err
	}

	if err := domain.Cancel(b, uc.settings.Now().UTC()); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"booking_id": b.ID,
		"staff_id":   b.StaffID,
		"actor":      actor.StaffID,
	}).Info("booking cancelled")

	return b, nil
}
