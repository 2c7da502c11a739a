package booking

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/booking"
	"github.com/BruksfildServices01/salon-booking/internal/dto"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
)

type ListBookingsByMonth struct {
	repo     domain.Repository
	settings Settings
}

func NewListBookingsByMonth(
	repo domain.Repository,
	settings Settings,
) *ListBookingsByMonth {
	return &ListBookingsByMonth{
		repo:     repo,
		settings: settings.withDefaults(),
	}
}

func (uc *ListBookingsByMonth) Execute(
	ctx context.Context,
	staffID uint,
	year int,
	month int,
) ([]dto.BookingListDTO, error) {

	if year < 2000 || year > 2100 || month < 1 || month > 12 {
		return nil, httperr.ErrValidation("invalid_date", "invalid year or month")
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, uc.settings.Location)
	end := start.AddDate(0, 1, 0)

	return listPeriod(ctx, uc.repo, staffID, start, end)
}
