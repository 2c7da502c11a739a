package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/booking"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

func TestCreateBooking(t *testing.T) {
	f := newFixture(t)

	b, err := f.writer.Execute(context.Background(), CreateBookingInput{
		StaffID:   staffID,
		ServiceID: serviceID,
		StartTime: f.at("10:00"),
		Customer: CustomerInfo{
			Name:  "  Bia  ",
			Phone: "+55 11 99999-0000",
			Email: "bia@mail.com",
			Notes: "first visit",
		},
	})
	require.NoError(t, err)

	assert.NotZero(t, b.ID)
	assert.Equal(t, "Bia", b.CustomerName)
	assert.Equal(t, "+5511999990000", b.CustomerPhone)
	assert.Equal(t, "first visit", b.Notes)
	assert.Equal(t, int64(5000), b.PriceCents)
	assert.Equal(t, "Ana", b.Staff.Name)

	stored, err := f.repo.GetBooking(context.Background(), b.ID)
	require.NoError(t, err)
	assert.True(t, stored.StartTime.Equal(f.at("10:00")))
	assert.True(t, stored.EndTime.Equal(f.at("11:00")))
}

func TestCreateBookingPriceOverride(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.db.Model(&models.StaffService{}).
		Where("staff_id = ? AND service_id = ?", staffID, serviceID).
		Update("price_override_cents", 4200).Error)

	b, err := f.book(f.at("10:00"), "11999990000")
	require.NoError(t, err)
	assert.Equal(t, int64(4200), b.PriceCents)
}

func TestCreateBookingRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.book(f.at("10:00"), "11999990000")
	require.NoError(t, err)

	valid := CustomerInfo{Name: "Rui", Phone: "11977776666"}

	cases := []struct {
		name string
		in   CreateBookingInput
		code string
	}{
		{"overlap", CreateBookingInput{StaffID: staffID, ServiceID: serviceID, StartTime: f.at("10:30"), Customer: valid}, "slot_already_booked"},
		{"same start", CreateBookingInput{StaffID: staffID, ServiceID: serviceID, StartTime: f.at("10:00"), Customer: valid}, "slot_already_booked"},
		{"ineligible", CreateBookingInput{StaffID: staffID, ServiceID: orphanServiceID, StartTime: f.at("13:00"), Customer: valid}, "staff_ineligible"},
		{"missing service", CreateBookingInput{StaffID: staffID, ServiceID: 99, StartTime: f.at("13:00"), Customer: valid}, "service_not_found"},
		{"missing staff", CreateBookingInput{StaffID: 99, ServiceID: serviceID, StartTime: f.at("13:00"), Customer: valid}, "staff_not_found"},
		{"outside hours", CreateBookingInput{StaffID: staffID, ServiceID: serviceID, StartTime: f.at("16:30"), Customer: valid}, "staff_unavailable"},
		{"no schedule", CreateBookingInput{StaffID: staffID, ServiceID: serviceID, StartTime: f.at("10:00").Add(24 * time.Hour), Customer: valid}, "staff_unavailable"},
		{"past", CreateBookingInput{StaffID: staffID, ServiceID: serviceID, StartTime: f.clock.Now().Add(-time.Minute), Customer: valid}, "slot_in_past"},
		{"no time", CreateBookingInput{StaffID: staffID, ServiceID: serviceID, Customer: valid}, "invalid_time"},
		{"no name", CreateBookingInput{StaffID: staffID, ServiceID: serviceID, StartTime: f.at("13:00"), Customer: CustomerInfo{Phone: "11977776666"}}, "invalid_input"},
		{"bad phone", CreateBookingInput{StaffID: staffID, ServiceID: serviceID, StartTime: f.at("13:00"), Customer: CustomerInfo{Name: "Rui", Phone: "12ab"}}, "invalid_input"},
		{"bad email", CreateBookingInput{StaffID: staffID, ServiceID: serviceID, StartTime: f.at("13:00"), Customer: CustomerInfo{Name: "Rui", Phone: "11977776666", Email: "rui@"}}, "invalid_input"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.writer.Execute(ctx, tc.in)
			requireBusiness(t, err, tc.code)
		})
	}
}

func TestCreateBookingBlockReason(t *testing.T) {
	f := newFixture(t)

	_, err := f.schedule.ReplaceWeekly(context.Background(), staffID, []DayInput{
		{
			DayOfWeek: int(time.Monday),
			Active:    true,
			StartTime: "09:00",
			EndTime:   "17:00",
			Blocks:    []BlockInput{{StartTime: "12:00", EndTime: "13:00", Type: "lunch"}},
		},
	}, false)
	require.NoError(t, err)

	_, err = f.book(f.at("11:30"), "11999990000")
	requireBusiness(t, err, "staff_unavailable")

	var be httperr.BusinessError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, "overlaps lunch 12:00-13:00", be.Reason)
}

func TestCreateBookingBackToBack(t *testing.T) {
	f := newFixture(t)

	_, err := f.book(f.at("10:00"), "11999990000")
	require.NoError(t, err)

	_, err = f.book(f.at("09:00"), "11999990001")
	assert.NoError(t, err)

	_, err = f.book(f.at("11:00"), "11999990002")
	assert.NoError(t, err)
}

func TestCreateBookingConsumesSessionHold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	h, err := f.hold("session-a", f.at("10:00"))
	require.NoError(t, err)

	_, err = f.writer.Execute(ctx, CreateBookingInput{
		StaffID:   staffID,
		ServiceID: serviceID,
		StartTime: f.at("10:00"),
		Customer:  customer,
		SessionID: "session-a",
	})
	require.NoError(t, err)

	_, err = f.repo.GetHold(ctx, h.ID)
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	assert.Equal(t, []string{h.ID}, f.sink.Converted())
}

func TestCancelThenRebook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.book(f.at("10:00"), "11999990000")
	require.NoError(t, err)

	cancelled, err := f.cancel.Execute(ctx, Actor{StaffID: staffID}, b.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)

	_, err = f.book(f.at("10:00"), "11999990001")
	assert.NoError(t, err)
}

func TestConcurrentBookingsSingleWinner(t *testing.T) {
	f := newFixture(t)

	const n = 8

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		won     int
		refused int
	)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			_, err := f.book(f.at("10:00"), fmt.Sprintf("1199999%04d", i))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				won++
			case httperr.IsBusiness(err, "slot_already_booked"):
				refused++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, won)
	assert.Equal(t, n-1, refused)

	bookings, err := f.repo.ListBookingsOverlapping(context.Background(), staffID, f.at("10:00"), f.at("11:00"))
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
}

func TestConcurrentOverlappingBookings(t *testing.T) {
	f := newFixture(t)

	starts := []string{"09:15", "09:30", "10:00", "10:15", "10:30", "10:45"}

	var wg sync.WaitGroup
	errs := make([]error, len(starts))

	for i, s := range starts {
		wg.Add(1)
		go func(i int, s string) {
			defer wg.Done()
			_, errs[i] = f.book(f.at(s), fmt.Sprintf("1198888%04d", i))
		}(i, s)
	}
	wg.Wait()

	won := 0
	for i, err := range errs {
		switch {
		case err == nil:
			won++
		case httperr.IsBusiness(err, "slot_already_booked"), httperr.IsBusiness(err, "slot_unavailable"):
		default:
			t.Errorf("start %s: unexpected error: %v", starts[i], err)
		}
	}
	assert.GreaterOrEqual(t, won, 1)

	bookings, err := f.repo.ListBookingsOverlapping(context.Background(), staffID, f.at("09:00"), f.at("12:00"))
	require.NoError(t, err)
	require.Len(t, bookings, won)

	for i := range bookings {
		for j := i + 1; j < len(bookings); j++ {
			assert.Falsef(t,
				domain.BookingInterval(bookings[i]).Overlaps(domain.BookingInterval(bookings[j])),
				"bookings %s and %s overlap", bookings[i].StartTime, bookings[j].StartTime,
			)
		}
	}
}
