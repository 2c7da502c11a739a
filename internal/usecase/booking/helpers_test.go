package booking

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	dbpkg "github.com/BruksfildServices01/salon-booking/internal/db"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/infra/repository"
	"github.com/BruksfildServices01/salon-booking/internal/lock"
	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/timezone"
)

const (
	staffID      uint = 1
	otherStaffID uint = 2
	serviceID    uint = 1
	// offered by nobody
	orphanServiceID uint = 2

	monday = "2030-03-04"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingSink struct {
	mu        sync.Mutex
	created   []string
	converted []string
	expired   []string
}

func (s *recordingSink) RecordHoldCreated(h models.BookingHold, _ time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, h.ID)
}

func (s *recordingSink) RecordHoldConverted(h models.BookingHold, _ time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.converted = append(s.converted, h.ID)
}

func (s *recordingSink) RecordHoldExpired(h models.BookingHold, _ time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expired = append(s.expired, h.ID)
}

func (s *recordingSink) Expired() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.expired...)
}

func (s *recordingSink) Converted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.converted...)
}

type fixture struct {
	db       *gorm.DB
	repo     *repository.BookingGormRepository
	clock    *testClock
	sink     *recordingSink
	loc      *time.Location
	settings Settings

	availability *GetAvailability
	checkSlot    *CheckSlot
	writer       *CreateBooking
	holds        *HoldManager
	schedule     *ScheduleEditor
	cancel       *CancelBooking
	update       *UpdateBooking
	listByDate   *ListBookingsByDate
	listByMonth  *ListBookingsByMonth
}

// newFixture seeds two staff members, a 60 minute service offered by staff
// 1 and a Monday 09:00-17:00 weekly rule. The clock starts on the Friday
// before at noon local time.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := dbpkg.Open(dsn, logger.Silent)
	require.NoError(t, err)
	require.NoError(t, dbpkg.Migrate(db))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	loc := timezone.Location("America/Sao_Paulo")

	require.NoError(t, db.Create(&[]models.Staff{
		{ID: staffID, Name: "Ana", Email: "ana@salon.test", PasswordHash: "x", Role: models.RoleStaff, Active: true},
		{ID: otherStaffID, Name: "Caio", Email: "caio@salon.test", PasswordHash: "x", Role: models.RoleStaff, Active: true},
	}).Error)
	require.NoError(t, db.Create(&[]models.Service{
		{ID: serviceID, Name: "Cut", DurationMin: 60, PriceCents: 5000, Active: true},
		{ID: orphanServiceID, Name: "Color", DurationMin: 90, PriceCents: 9000, Active: true},
	}).Error)
	require.NoError(t, db.Create(&models.StaffService{StaffID: staffID, ServiceID: serviceID}).Error)

	repo := repository.NewBookingGormRepository(db)
	require.NoError(t, repo.ReplaceWeeklyRules(context.Background(), staffID, []models.StaffAvailability{
		{DayOfWeek: int(time.Monday), StartTime: "09:00", EndTime: "17:00"},
	}))

	clock := &testClock{now: time.Date(2030, 3, 1, 12, 0, 0, 0, loc)}
	sink := &recordingSink{}
	locker := lock.NewLocalLocker()

	settings := Settings{
		Location:     loc,
		HoldDuration: 5 * time.Minute,
		Now:          clock.Now,
	}

	writer := NewCreateBooking(repo, locker, sink, settings)

	return &fixture{
		db:       db,
		repo:     repo,
		clock:    clock,
		sink:     sink,
		loc:      loc,
		settings: settings,

		availability: NewGetAvailability(repo, settings),
		checkSlot:    NewCheckSlot(repo, settings),
		writer:       writer,
		holds:        NewHoldManager(repo, locker, sink, writer, settings),
		schedule:     NewScheduleEditor(repo, locker, settings),
		cancel:       NewCancelBooking(repo, settings),
		update:       NewUpdateBooking(repo, settings),
		listByDate:   NewListBookingsByDate(repo, settings),
		listByMonth:  NewListBookingsByMonth(repo, settings),
	}
}

// at returns the absolute instant of a wall clock time on the test Monday.
func (f *fixture) at(clock string) time.Time {
	m, err := timezone.ParseClock(clock)
	if err != nil {
		panic(err)
	}
	day, err := timezone.ParseDate(monday, f.loc)
	if err != nil {
		panic(err)
	}
	return timezone.WallClock(day, m, f.loc)
}

func (f *fixture) slots(t *testing.T, session string) []time.Time {
	t.Helper()

	res, err := f.availability.Execute(context.Background(), AvailabilityInput{
		StaffID:   staffID,
		ServiceID: serviceID,
		Date:      monday,
		SessionID: session,
	})
	require.NoError(t, err)
	return res.Slots
}

func (f *fixture) book(start time.Time, phone string) (*models.Booking, error) {
	return f.writer.Execute(context.Background(), CreateBookingInput{
		StaffID:   staffID,
		ServiceID: serviceID,
		StartTime: start,
		Customer:  CustomerInfo{Name: "Bia", Phone: phone},
	})
}

func (f *fixture) hold(session string, start time.Time) (*models.BookingHold, error) {
	return f.holds.CreateHold(context.Background(), CreateHoldInput{
		SessionID: session,
		StaffID:   staffID,
		ServiceID: serviceID,
		StartTime: start,
	})
}

func containsInstant(list []time.Time, want time.Time) bool {
	for _, t := range list {
		if t.Equal(want) {
			return true
		}
	}
	return false
}

func requireBusiness(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, httperr.IsBusiness(err, code), "want %s, got %v", code, err)
}
