package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/booking"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/timezone"
)

func TestAvailabilityFullDay(t *testing.T) {
	f := newFixture(t)

	slots := f.slots(t, "")

	require.Len(t, slots, 29)
	assert.True(t, slots[0].Equal(f.at("09:00")))
	assert.True(t, slots[len(slots)-1].Equal(f.at("16:00")))
	assert.Equal(t, time.UTC, slots[0].Location())
}

func TestAvailabilityLunchBlock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.schedule.ReplaceWeekly(ctx, staffID, []DayInput{
		{
			DayOfWeek: int(time.Monday),
			Active:    true,
			StartTime: "09:00",
			EndTime:   "17:00",
			Blocks: []BlockInput{
				{StartTime: "12:00", EndTime: "13:00", Type: "lunch"},
			},
		},
	}, false)
	require.NoError(t, err)

	slots := f.slots(t, "")

	assert.Len(t, slots, 22)
	assert.True(t, containsInstant(slots, f.at("11:00")))
	assert.False(t, containsInstant(slots, f.at("11:15")))
	assert.False(t, containsInstant(slots, f.at("12:45")))
	assert.True(t, containsInstant(slots, f.at("13:00")))
}

func TestAvailabilityExcludesBookings(t *testing.T) {
	f := newFixture(t)

	_, err := f.book(f.at("10:00"), "11999990000")
	require.NoError(t, err)

	slots := f.slots(t, "")

	assert.Len(t, slots, 22)
	assert.True(t, containsInstant(slots, f.at("09:00")))
	assert.True(t, containsInstant(slots, f.at("11:00")))
	assert.False(t, containsInstant(slots, f.at("09:15")))
	assert.False(t, containsInstant(slots, f.at("10:45")))
}

func TestAvailabilityCancelledBookingFreesSlot(t *testing.T) {
	f := newFixture(t)

	b, err := f.book(f.at("10:00"), "11999990000")
	require.NoError(t, err)

	_, err = f.cancel.Execute(context.Background(), Actor{StaffID: staffID}, b.ID)
	require.NoError(t, err)

	assert.Len(t, f.slots(t, ""), 29)
}

func TestAvailabilityHoldHidesSlotUntilExpiry(t *testing.T) {
	f := newFixture(t)

	_, err := f.hold("session-a", f.at("10:00"))
	require.NoError(t, err)

	assert.False(t, containsInstant(f.slots(t, "session-b"), f.at("10:00")))
	// the holder still sees its own slot
	assert.True(t, containsInstant(f.slots(t, "session-a"), f.at("10:00")))

	f.clock.Advance(5 * time.Minute)

	assert.True(t, containsInstant(f.slots(t, "session-b"), f.at("10:00")))
}

func TestAvailabilityOverrides(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.schedule.SetOverride(ctx, staffID, OverrideInput{
		Date:      monday,
		StartTime: "10:00",
		EndTime:   "12:00",
	}, false)
	require.NoError(t, err)

	slots := f.slots(t, "")
	require.Len(t, slots, 5)
	assert.True(t, slots[0].Equal(f.at("10:00")))
	assert.True(t, slots[4].Equal(f.at("11:00")))

	_, err = f.schedule.SetOverride(ctx, staffID, OverrideInput{
		Date:      monday,
		StartTime: models.DayOffTime,
		EndTime:   models.DayOffTime,
	}, false)
	require.NoError(t, err)

	assert.Empty(t, f.slots(t, ""))

	require.NoError(t, f.schedule.ClearOverride(ctx, staffID, monday, false))
	assert.Len(t, f.slots(t, ""), 29)
}

func TestAvailabilityNoRule(t *testing.T) {
	f := newFixture(t)

	res, err := f.availability.Execute(context.Background(), AvailabilityInput{
		StaffID:   otherStaffID,
		ServiceID: serviceID,
		Date:      monday,
	})
	require.NoError(t, err)
	assert.NotNil(t, res.Slots)
	assert.Empty(t, res.Slots)

	// Tuesday has no weekly rule either
	res, err = f.availability.Execute(context.Background(), AvailabilityInput{
		StaffID:   staffID,
		ServiceID: serviceID,
		Date:      "2030-03-05",
	})
	require.NoError(t, err)
	assert.Empty(t, res.Slots)
}

func TestAvailabilityInactiveStaff(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.db.Model(&models.Staff{}).Where("id = ?", staffID).Update("active", false).Error)

	_, err := f.availability.Execute(context.Background(), AvailabilityInput{
		StaffID:   staffID,
		ServiceID: serviceID,
		Date:      monday,
	})
	requireBusiness(t, err, "staff_not_found")
}

func TestCandidatesAcrossDST(t *testing.T) {
	ny := timezone.Location("America/New_York")

	utc := func(day, hour, minute int, month time.Month) time.Time {
		return time.Date(2030, month, day, hour, minute, 0, 0, time.UTC)
	}

	tests := []struct {
		name string
		date string
		want []time.Time
	}{
		{
			// 02:00 EST jumps to 03:00 EDT
			name: "spring forward",
			date: "2030-03-10",
			want: []time.Time{
				utc(10, 5, 30, time.March), // 00:30 EST
				utc(10, 6, 0, time.March),  // 01:00 EST
				utc(10, 6, 30, time.March), // 01:30 EST
				utc(10, 7, 0, time.March),  // 03:00 EDT
			},
		},
		{
			// 02:00 EDT falls back to 01:00 EST
			name: "fall back",
			date: "2030-11-03",
			want: []time.Time{
				utc(3, 4, 30, time.November), // 00:30 EDT
				utc(3, 5, 0, time.November),  // 01:00 EDT
				utc(3, 5, 30, time.November), // 01:30 EDT
				utc(3, 7, 0, time.November),  // 02:00 EST
				utc(3, 7, 30, time.November), // 02:30 EST
				utc(3, 8, 0, time.November),  // 03:00 EST
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, err := timezone.ParseDate(tt.date, ny)
			require.NoError(t, err)

			w, err := domain.ResolveWindow(&models.StaffAvailability{StartTime: "00:30", EndTime: "04:00"}, date, ny)
			require.NoError(t, err)
			require.NotNil(t, w)

			got := candidates(w, time.Hour, 30, ny)

			require.Len(t, got, len(tt.want))
			for i := range got {
				assert.Truef(t, got[i].Equal(tt.want[i]), "slot %d: want %s, got %s", i, tt.want[i], got[i].UTC())
				if i > 0 {
					assert.True(t, got[i].After(got[i-1]), "starts must be strictly ascending")
				}
			}
		})
	}
}

func TestAvailabilityExplicitDuration(t *testing.T) {
	f := newFixture(t)

	res, err := f.availability.Execute(context.Background(), AvailabilityInput{
		StaffID:     staffID,
		DurationMin: 30,
		Date:        monday,
		Granularity: 30,
	})
	require.NoError(t, err)

	// 09:00 .. 16:30
	assert.Len(t, res.Slots, 16)
}

func TestAvailabilitySkipsPastStarts(t *testing.T) {
	f := newFixture(t)
	f.clock.Advance(f.at("10:05").Sub(f.clock.Now()))

	slots := f.slots(t, "")

	require.NotEmpty(t, slots)
	assert.True(t, slots[0].Equal(f.at("10:15")))
}

func TestAvailabilityInvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   AvailabilityInput
		code string
	}{
		{"granularity", AvailabilityInput{StaffID: staffID, ServiceID: serviceID, Date: monday, Granularity: 241}, "invalid_granularity"},
		{"negative granularity", AvailabilityInput{StaffID: staffID, ServiceID: serviceID, Date: monday, Granularity: -5}, "invalid_granularity"},
		{"date", AvailabilityInput{StaffID: staffID, ServiceID: serviceID, Date: "2030-13-01"}, "invalid_date"},
		{"no duration", AvailabilityInput{StaffID: staffID, Date: monday}, "invalid_input"},
		{"staff", AvailabilityInput{StaffID: 99, ServiceID: serviceID, Date: monday}, "staff_not_found"},
		{"service", AvailabilityInput{StaffID: staffID, ServiceID: 99, Date: monday}, "service_not_found"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.availability.Execute(ctx, tc.in)
			requireBusiness(t, err, tc.code)
		})
	}
}

// brokenSchedule fails every schedule read and delegates everything else.
type brokenSchedule struct {
	domain.Repository
	mock.Mock
}

func (b *brokenSchedule) GetOverride(
	ctx context.Context,
	staffID uint,
	date string,
) (*models.StaffAvailability, error) {
	args := b.Called(staffID, date)
	return nil, args.Error(1)
}

func TestAvailabilityFailsClosed(t *testing.T) {
	f := newFixture(t)

	repo := &brokenSchedule{Repository: f.repo}
	repo.On("GetOverride", staffID, monday).Return(nil, errors.New("connection reset"))

	uc := NewGetAvailability(repo, f.settings)

	res, err := uc.Execute(context.Background(), AvailabilityInput{
		StaffID:   staffID,
		ServiceID: serviceID,
		Date:      monday,
	})

	assert.Nil(t, res)
	requireBusiness(t, err, "availability_lookup_failed")
	assert.Equal(t, httperr.KindUnavailable, httperr.KindOf(err))
	repo.AssertExpectations(t)
}

func TestCheckSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	check := func(start time.Time, session string) *SlotCheck {
		t.Helper()
		res, err := f.checkSlot.Execute(ctx, CheckSlotInput{
			StaffID:     staffID,
			StartTime:   start,
			DurationMin: 60,
			SessionID:   session,
		})
		require.NoError(t, err)
		return res
	}

	assert.True(t, check(f.at("10:00"), "").Available)

	_, err := f.book(f.at("10:00"), "11999990000")
	require.NoError(t, err)

	res := check(f.at("10:30"), "")
	assert.False(t, res.Available)
	assert.Equal(t, "conflicts with existing appointment 10:00-11:00", res.Reason)

	_, err = f.hold("session-a", f.at("14:00"))
	require.NoError(t, err)

	res = check(f.at("14:00"), "session-b")
	assert.False(t, res.Available)
	assert.Contains(t, res.Reason, "being held")

	assert.True(t, check(f.at("14:00"), "session-a").Available)
	assert.True(t, check(f.at("11:00"), "").Available)

	res = check(f.clock.Now().Add(-time.Hour), "")
	assert.False(t, res.Available)
	assert.Equal(t, "slot is in the past", res.Reason)

	_, err = f.checkSlot.Execute(ctx, CheckSlotInput{StaffID: staffID, StartTime: f.at("10:00")})
	requireBusiness(t, err, "invalid_input")
}
