package booking

import (
	"context"
	"strings"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/booking"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

// UpdateBookingInput fields are optional; nil leaves the value unchanged.
type UpdateBookingInput struct {
	Status     *string
	PriceCents *int64
	Notes      *string
}

type UpdateBooking struct {
	repo     domain.Repository
	settings Settings
}

func NewUpdateBooking(
	repo domain.Repository,
	settings Settings,
) *UpdateBooking {
	return &UpdateBooking{
		repo:     repo,
		settings: settings.withDefaults(),
	}
}

func (uc *UpdateBooking) Execute(
	ctx context.Context,
	actor Actor,
	bookingID uint,
	in UpdateBookingInput,
) (*models.Booking, error) {

	if in.Status == nil && in.PriceCents == nil && in.Notes == nil {
		return nil, httperr.ErrValidation("invalid_input", "nothing to update")
	}

	if in.PriceCents != nil && *in.PriceCents < 0 {
		return nil, httperr.ErrValidation("invalid_input", "price must not be negative")
	}

	var target domain.Status
	if in.Status != nil {
		st, ok := domain.ParseStatus(*in.Status)
		if !ok {
			return nil, httperr.ErrValidation("invalid_input", "unknown status")
		}
		target = st
	}

	b, err := loadManagedBooking(ctx, uc.repo, actor, bookingID)
	if err != nil {
		return nil, err
	}

	if in.Status != nil && domain.Status(b.Status) != target {
		if err := domain.Transition(b, target, uc.settings.Now().UTC()); err != nil {
			return nil, err
		}
	}

	if in.PriceCents != nil {
		b.PriceCents = *in.PriceCents
	}

	if in.Notes != nil {
		b.Notes = strings.TrimSpace(*in.Notes)
	}

	if err := uc.repo.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}
