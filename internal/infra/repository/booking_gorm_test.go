package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	dbpkg "github.com/BruksfildServices01/salon-booking/internal/db"
	domain "github.com/BruksfildServices01/salon-booking/internal/domain/booking"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

var base = time.Date(2030, 3, 4, 12, 0, 0, 0, time.UTC)

func setupRepo(t *testing.T) (*BookingGormRepository, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := dbpkg.Open(dsn, logger.Silent)
	require.NoError(t, err)
	require.NoError(t, dbpkg.Migrate(db))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	require.NoError(t, db.Create(&models.Staff{
		ID:           1,
		Name:         "Ana",
		Email:        "ana@salon.test",
		PasswordHash: "x",
		Active:       true,
	}).Error)
	require.NoError(t, db.Create(&models.Service{
		ID:          1,
		Name:        "Cut",
		DurationMin: 60,
		PriceCents:  5000,
		Active:      true,
	}).Error)

	return NewBookingGormRepository(db), db
}

func newBooking(start time.Time) *models.Booking {
	return &models.Booking{
		StaffID:       1,
		ServiceID:     1,
		CustomerName:  "Bia",
		CustomerPhone: "11999990000",
		StartTime:     start,
		EndTime:       start.Add(time.Hour),
		PriceCents:    5000,
		Status:        string(domain.StatusConfirmed),
	}
}

func TestCreateBookingDuplicateStart(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateBooking(ctx, newBooking(base)))

	err := repo.CreateBooking(ctx, newBooking(base))
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCancelledBookingFreesStart(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	b := newBooking(base)
	require.NoError(t, repo.CreateBooking(ctx, b))

	b.Status = string(domain.StatusCancelled)
	require.NoError(t, repo.UpdateBooking(ctx, b))

	require.NoError(t, repo.CreateBooking(ctx, newBooking(base)))

	overlapping, err := repo.ListBookingsOverlapping(ctx, 1, base, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, overlapping, 1)

	all, err := repo.ListBookingsForPeriod(ctx, 1, base.Add(-time.Hour), base.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "Cut", all[0].Service.Name)
}

func TestListBookingsOverlappingHalfOpen(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateBooking(ctx, newBooking(base)))

	before, err := repo.ListBookingsOverlapping(ctx, 1, base.Add(-time.Hour), base)
	require.NoError(t, err)
	assert.Empty(t, before)

	after, err := repo.ListBookingsOverlapping(ctx, 1, base.Add(time.Hour), base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, after)

	inside, err := repo.ListBookingsOverlapping(ctx, 1, base.Add(30*time.Minute), base.Add(90*time.Minute))
	require.NoError(t, err)
	assert.Len(t, inside, 1)
}

func TestGetBookingNotFound(t *testing.T) {
	repo, _ := setupRepo(t)

	_, err := repo.GetBooking(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestHoldUniquePerStaffStart(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	h1 := &models.BookingHold{
		SessionID: "a",
		StaffID:   1,
		ServiceID: 1,
		StartTime: base,
		EndTime:   base.Add(time.Hour),
		ExpiresAt: base.Add(5 * time.Minute),
	}
	require.NoError(t, repo.CreateHold(ctx, h1))
	assert.NotEmpty(t, h1.ID)

	h2 := *h1
	h2.ID = ""
	h2.SessionID = "b"
	assert.ErrorIs(t, repo.CreateHold(ctx, &h2), domain.ErrDuplicate)
}

func TestHoldLiveness(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	h := &models.BookingHold{
		SessionID: "a",
		StaffID:   1,
		ServiceID: 1,
		StartTime: base,
		EndTime:   base.Add(time.Hour),
		ExpiresAt: base.Add(-time.Hour).Add(5 * time.Minute),
	}
	require.NoError(t, repo.CreateHold(ctx, h))

	live := base.Add(-time.Hour)
	dead := base.Add(-time.Hour).Add(5 * time.Minute)

	got, err := repo.GetLiveHoldBySession(ctx, "a", live)
	require.NoError(t, err)
	assert.Equal(t, h.ID, got.ID)

	_, err = repo.GetLiveHoldBySession(ctx, "a", dead)
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)

	holds, err := repo.ListLiveHoldsOverlapping(ctx, 1, base, base.Add(time.Hour), live)
	require.NoError(t, err)
	assert.Len(t, holds, 1)

	holds, err = repo.ListLiveHoldsOverlapping(ctx, 1, base, base.Add(time.Hour), dead)
	require.NoError(t, err)
	assert.Empty(t, holds)
}

func TestDeleteExpiredHoldIsConditional(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	expires := base.Add(-time.Hour)
	h := &models.BookingHold{
		SessionID: "a",
		StaffID:   1,
		ServiceID: 1,
		StartTime: base,
		EndTime:   base.Add(time.Hour),
		ExpiresAt: expires,
	}
	require.NoError(t, repo.CreateHold(ctx, h))

	removed, err := repo.DeleteExpiredHold(ctx, h.ID, expires.Add(-time.Second))
	require.NoError(t, err)
	assert.False(t, removed)

	staffID := uint(1)
	expired, err := repo.ListExpiredHolds(ctx, expires, &staffID)
	require.NoError(t, err)
	require.Len(t, expired, 1)

	removed, err = repo.DeleteExpiredHold(ctx, h.ID, expires)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.DeleteHold(ctx, h.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestScheduleReplaceAndOverride(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	rules := []models.StaffAvailability{
		{
			DayOfWeek: 1,
			StartTime: "09:00",
			EndTime:   "17:00",
			Blocks: []models.ScheduleBlock{
				{StartTime: "12:00", EndTime: "13:00", Type: models.BlockLunch},
			},
		},
	}
	require.NoError(t, repo.ReplaceWeeklyRules(ctx, 1, rules))

	monday, err := repo.GetWeeklyRule(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "09:00", monday.StartTime)
	require.Len(t, monday.Blocks, 1)

	require.NoError(t, repo.ReplaceWeeklyRules(ctx, 1, []models.StaffAvailability{
		{DayOfWeek: 2, StartTime: "10:00", EndTime: "18:00"},
	}))

	_, err = repo.GetWeeklyRule(ctx, 1, 1)
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)

	date := "2030-03-04"
	require.NoError(t, repo.UpsertOverride(ctx, &models.StaffAvailability{
		StaffID:      1,
		StartTime:    "10:00",
		EndTime:      "14:00",
		OverrideDate: &date,
	}))
	require.NoError(t, repo.UpsertOverride(ctx, &models.StaffAvailability{
		StaffID:      1,
		StartTime:    models.DayOffTime,
		EndTime:      models.DayOffTime,
		OverrideDate: &date,
	}))

	override, err := repo.GetOverride(ctx, 1, date)
	require.NoError(t, err)
	assert.True(t, override.IsDayOff())

	all, err := repo.ListSchedule(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	removed, err := repo.DeleteOverride(ctx, 1, date)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.DeleteOverride(ctx, 1, date)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestGetOrCreateCustomerMatchesPhone(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	c1, err := repo.GetOrCreateCustomer(ctx, "Bia", "11999990000", "")
	require.NoError(t, err)

	c2, err := repo.GetOrCreateCustomer(ctx, "Bia Souza", "11999990000", "bia@mail.test")
	require.NoError(t, err)

	assert.Equal(t, c1.ID, c2.ID)
}

func TestTransactionRollsBack(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	err := repo.Transaction(ctx, func(tx domain.Repository) error {
		if _, err := tx.LockStaff(ctx, 1); err != nil {
			return err
		}
		if err := tx.CreateBooking(ctx, newBooking(base)); err != nil {
			return err
		}
		return fmt.Errorf("abort")
	})
	require.Error(t, err)

	bookings, err := repo.ListActiveBookingsFrom(ctx, 1, base.Add(-time.Hour))
	require.NoError(t, err)
	assert.Empty(t, bookings)
}
