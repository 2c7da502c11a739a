package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/booking"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

// BookingGormRepository stores every timestamp in UTC so that range
// predicates compare the same way on postgres and sqlite.
type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

func (r *BookingGormRepository) Transaction(
	ctx context.Context,
	fn func(tx domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&BookingGormRepository{db: tx})
	})
}

func orderedBlocks(db *gorm.DB) *gorm.DB {
	return db.Order("start_time ASC")
}

// --------------------------------------------------
// Staff
// --------------------------------------------------

func (r *BookingGormRepository) GetStaff(
	ctx context.Context,
	id uint,
) (*models.Staff, error) {

	var staff models.Staff
	if err := r.db.WithContext(ctx).First(&staff, id).Error; err != nil {
		return nil, translate(err)
	}
	return &staff, nil
}

func (r *BookingGormRepository) GetStaffByEmail(
	ctx context.Context,
	email string,
) (*models.Staff, error) {

	var staff models.Staff
	if err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&staff).Error; err != nil {
		return nil, translate(err)
	}
	return &staff, nil
}

func (r *BookingGormRepository) LockStaff(
	ctx context.Context,
	id uint,
) (*models.Staff, error) {

	var staff models.Staff
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND active = ?", id, true).
		First(&staff).Error; err != nil {
		return nil, translate(err)
	}
	return &staff, nil
}

// --------------------------------------------------
// Service
// --------------------------------------------------

func (r *BookingGormRepository) GetService(
	ctx context.Context,
	id uint,
) (*models.Service, error) {

	var svc models.Service
	if err := r.db.WithContext(ctx).
		Where("id = ? AND active = ?", id, true).
		First(&svc).Error; err != nil {
		return nil, translate(err)
	}
	return &svc, nil
}

func (r *BookingGormRepository) GetStaffService(
	ctx context.Context,
	staffID uint,
	serviceID uint,
) (*models.StaffService, error) {

	var link models.StaffService
	if err := r.db.WithContext(ctx).
		Where("staff_id = ? AND service_id = ?", staffID, serviceID).
		First(&link).Error; err != nil {
		return nil, translate(err)
	}
	return &link, nil
}

// --------------------------------------------------
// Customer
// --------------------------------------------------

func (r *BookingGormRepository) GetOrCreateCustomer(
	ctx context.Context,
	name string,
	phone string,
	email string,
) (*models.Customer, error) {

	var customer models.Customer
	err := r.db.WithContext(ctx).
		Where("phone = ?", phone).
		First(&customer).Error

	if err == nil {
		return &customer, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, translate(err)
	}

	customer = models.Customer{
		Name:  name,
		Phone: phone,
		Email: email,
	}

	if err := r.db.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, translate(err)
	}

	return &customer, nil
}

// --------------------------------------------------
// Schedule
// --------------------------------------------------

func (r *BookingGormRepository) GetOverride(
	ctx context.Context,
	staffID uint,
	date string,
) (*models.StaffAvailability, error) {

	var rule models.StaffAvailability
	if err := r.db.WithContext(ctx).
		Preload("Blocks", orderedBlocks).
		Where("staff_id = ? AND override_date = ?", staffID, date).
		First(&rule).Error; err != nil {
		return nil, translate(err)
	}
	return &rule, nil
}

func (r *BookingGormRepository) GetWeeklyRule(
	ctx context.Context,
	staffID uint,
	weekday int,
) (*models.StaffAvailability, error) {

	var rule models.StaffAvailability
	if err := r.db.WithContext(ctx).
		Preload("Blocks", orderedBlocks).
		Where(
			"staff_id = ? AND day_of_week = ? AND override_date IS NULL",
			staffID,
			weekday,
		).
		First(&rule).Error; err != nil {
		return nil, translate(err)
	}
	return &rule, nil
}

func (r *BookingGormRepository) ListSchedule(
	ctx context.Context,
	staffID uint,
) ([]models.StaffAvailability, error) {

	var rules []models.StaffAvailability
	if err := r.db.WithContext(ctx).
		Preload("Blocks", orderedBlocks).
		Where("staff_id = ?", staffID).
		Order("override_date IS NOT NULL, override_date ASC, day_of_week ASC").
		Find(&rules).Error; err != nil {
		return nil, translate(err)
	}
	return rules, nil
}

func (r *BookingGormRepository) ReplaceWeeklyRules(
	ctx context.Context,
	staffID uint,
	rules []models.StaffAvailability,
) error {

	db := r.db.WithContext(ctx)

	weekly := db.Model(&models.StaffAvailability{}).
		Select("id").
		Where("staff_id = ? AND override_date IS NULL", staffID)

	if err := db.
		Where("availability_id IN (?)", weekly).
		Delete(&models.ScheduleBlock{}).Error; err != nil {
		return translate(err)
	}

	if err := db.
		Where("staff_id = ? AND override_date IS NULL", staffID).
		Delete(&models.StaffAvailability{}).Error; err != nil {
		return translate(err)
	}

	if len(rules) == 0 {
		return nil
	}

	for i := range rules {
		rules[i].ID = 0
		rules[i].StaffID = staffID
		rules[i].OverrideDate = nil
	}

	return translate(db.Create(&rules).Error)
}

func (r *BookingGormRepository) UpsertOverride(
	ctx context.Context,
	rule *models.StaffAvailability,
) error {

	if rule.OverrideDate == nil {
		return errors.New("override date required")
	}

	if _, err := r.DeleteOverride(ctx, rule.StaffID, *rule.OverrideDate); err != nil {
		return err
	}

	rule.ID = 0
	return translate(r.db.WithContext(ctx).Create(rule).Error)
}

func (r *BookingGormRepository) DeleteOverride(
	ctx context.Context,
	staffID uint,
	date string,
) (bool, error) {

	db := r.db.WithContext(ctx)

	var rule models.StaffAvailability
	err := db.
		Where("staff_id = ? AND override_date = ?", staffID, date).
		First(&rule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, translate(err)
	}

	if err := db.
		Where("availability_id = ?", rule.ID).
		Delete(&models.ScheduleBlock{}).Error; err != nil {
		return false, translate(err)
	}

	if err := db.Delete(&rule).Error; err != nil {
		return false, translate(err)
	}

	return true, nil
}

// --------------------------------------------------
// Booking
// --------------------------------------------------

func (r *BookingGormRepository) CreateBooking(
	ctx context.Context,
	b *models.Booking,
) error {
	b.StartTime = b.StartTime.UTC()
	b.EndTime = b.EndTime.UTC()

	return translate(r.db.WithContext(ctx).
		Omit(clause.Associations).
		Create(b).Error)
}

func (r *BookingGormRepository) GetBooking(
	ctx context.Context,
	id uint,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).
		Preload("Staff").
		Preload("Service").
		First(&b, id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *BookingGormRepository) UpdateBooking(
	ctx context.Context,
	b *models.Booking,
) error {
	return translate(r.db.WithContext(ctx).
		Omit(clause.Associations).
		Save(b).Error)
}

func (r *BookingGormRepository) ListBookingsOverlapping(
	ctx context.Context,
	staffID uint,
	start time.Time,
	end time.Time,
) ([]models.Booking, error) {

	var bookings []models.Booking
	if err := r.db.WithContext(ctx).
		Where(
			"staff_id = ? AND status <> ? AND start_time < ? AND end_time > ?",
			staffID,
			string(domain.StatusCancelled),
			end.UTC(),
			start.UTC(),
		).
		Order("start_time ASC").
		Find(&bookings).Error; err != nil {
		return nil, translate(err)
	}
	return bookings, nil
}

func (r *BookingGormRepository) ListActiveBookingsFrom(
	ctx context.Context,
	staffID uint,
	from time.Time,
) ([]models.Booking, error) {

	var bookings []models.Booking
	if err := r.db.WithContext(ctx).
		Where(
			"staff_id = ? AND status <> ? AND end_time > ?",
			staffID,
			string(domain.StatusCancelled),
			from.UTC(),
		).
		Order("start_time ASC").
		Find(&bookings).Error; err != nil {
		return nil, translate(err)
	}
	return bookings, nil
}

func (r *BookingGormRepository) ListBookingsForPeriod(
	ctx context.Context,
	staffID uint,
	start time.Time,
	end time.Time,
) ([]models.Booking, error) {

	var bookings []models.Booking

	err := r.db.WithContext(ctx).
		Preload("Staff").
		Preload("Service").
		Where(
			"staff_id = ? AND start_time >= ? AND start_time < ?",
			staffID,
			start.UTC(),
			end.UTC(),
		).
		Order("start_time ASC").
		Find(&bookings).Error

	if err != nil {
		return nil, translate(err)
	}

	return bookings, nil
}

// --------------------------------------------------
// Hold
// --------------------------------------------------

func (r *BookingGormRepository) CreateHold(
	ctx context.Context,
	h *models.BookingHold,
) error {
	h.StartTime = h.StartTime.UTC()
	h.EndTime = h.EndTime.UTC()
	h.ExpiresAt = h.ExpiresAt.UTC()

	return translate(r.db.WithContext(ctx).Create(h).Error)
}

func (r *BookingGormRepository) GetHold(
	ctx context.Context,
	id string,
) (*models.BookingHold, error) {

	var h models.BookingHold
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&h).Error; err != nil {
		return nil, translate(err)
	}
	return &h, nil
}

func (r *BookingGormRepository) LockHold(
	ctx context.Context,
	id string,
) (*models.BookingHold, error) {

	var h models.BookingHold
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&h).Error; err != nil {
		return nil, translate(err)
	}
	return &h, nil
}

func (r *BookingGormRepository) GetLiveHoldBySession(
	ctx context.Context,
	session string,
	now time.Time,
) (*models.BookingHold, error) {

	var h models.BookingHold
	if err := r.db.WithContext(ctx).
		Where("session_id = ? AND expires_at > ?", session, now.UTC()).
		Order("created_at DESC").
		First(&h).Error; err != nil {
		return nil, translate(err)
	}
	return &h, nil
}

func (r *BookingGormRepository) ListHoldsBySession(
	ctx context.Context,
	session string,
) ([]models.BookingHold, error) {

	var holds []models.BookingHold
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", session).
		Find(&holds).Error; err != nil {
		return nil, translate(err)
	}
	return holds, nil
}

func (r *BookingGormRepository) ListLiveHoldsOverlapping(
	ctx context.Context,
	staffID uint,
	start time.Time,
	end time.Time,
	now time.Time,
) ([]models.BookingHold, error) {

	var holds []models.BookingHold
	if err := r.db.WithContext(ctx).
		Where(
			"staff_id = ? AND expires_at > ? AND start_time < ? AND end_time > ?",
			staffID,
			now.UTC(),
			end.UTC(),
			start.UTC(),
		).
		Order("start_time ASC").
		Find(&holds).Error; err != nil {
		return nil, translate(err)
	}
	return holds, nil
}

func (r *BookingGormRepository) DeleteHold(
	ctx context.Context,
	id string,
) (bool, error) {

	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.BookingHold{})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *BookingGormRepository) ListExpiredHolds(
	ctx context.Context,
	now time.Time,
	staffID *uint,
) ([]models.BookingHold, error) {

	q := r.db.WithContext(ctx).
		Where("expires_at <= ?", now.UTC())
	if staffID != nil {
		q = q.Where("staff_id = ?", *staffID)
	}

	var holds []models.BookingHold
	if err := q.Order("expires_at ASC").Find(&holds).Error; err != nil {
		return nil, translate(err)
	}
	return holds, nil
}

func (r *BookingGormRepository) DeleteExpiredHold(
	ctx context.Context,
	id string,
	now time.Time,
) (bool, error) {

	res := r.db.WithContext(ctx).
		Where("id = ? AND expires_at <= ?", id, now.UTC()).
		Delete(&models.BookingHold{})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Compile-time check
var _ domain.Repository = (*BookingGormRepository)(nil)
