package booking

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/booking"
	"github.com/BruksfildServices01/salon-booking/internal/dto"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/timezone"
)

type ListBookingsByDate struct {
	repo     domain.Repository
	settings Settings
}

func NewListBookingsByDate(
	repo domain.Repository,
	settings Settings,
) *ListBookingsByDate {
	return &ListBookingsByDate{
		repo:     repo,
		settings: settings.withDefaults(),
	}
}

func (uc *ListBookingsByDate) Execute(
	ctx context.Context,
	staffID uint,
	date string,
) ([]dto.BookingListDTO, error) {

	day, err := timezone.ParseDate(date, uc.settings.Location)
	if err != nil {
		return nil, httperr.ErrValidation("invalid_date", "date must be YYYY-MM-DD")
	}

	start, end := timezone.DayBounds(day, uc.settings.Location)
	return listPeriod(ctx, uc.repo, staffID, start, end)
}

func listPeriod(
	ctx context.Context,
	repo domain.Repository,
	staffID uint,
	start time.Time,
	end time.Time,
) ([]dto.BookingListDTO, error) {

	bookings, err := repo.ListBookingsForPeriod(ctx, staffID, start, end)
	if err != nil {
		return nil, err
	}

	out := make([]dto.BookingListDTO, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toListDTO(b))
	}

	return out, nil
}

func toListDTO(b models.Booking) dto.BookingListDTO {
	return dto.BookingListDTO{
		ID:            b.ID,
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		Status:        b.Status,
		CustomerName:  b.CustomerName,
		CustomerPhone: b.CustomerPhone,
		ServiceName:   b.Service.Name,
		PriceCents:    b.PriceCents,
		Notes:         b.Notes,
	}
}
