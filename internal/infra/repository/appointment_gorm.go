package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/companion-booking/internal/db"
	domain "github.com/BruksfildServices01/companion-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/companion-booking/internal/httperr"
	"github.com/BruksfildServices01/companion-booking/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

// --------------------------------------------------
// Service
// --------------------------------------------------

func (r *AppointmentGormRepository) GetService(
	ctx context.Context,
	id uint,
) (*models.Service, error) {

	var s models.Service
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// --------------------------------------------------
// User
// --------------------------------------------------

func (r *AppointmentGormRepository) GetUser(
	ctx context.Context,
	id uint,
) (*models.User, error) {

	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *AppointmentGormRepository) FindUserByEmail(
	ctx context.Context,
	email string,
) (*models.User, error) {

	var u models.User
	if err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *AppointmentGormRepository) CreateUserIfAbsent(
	ctx context.Context,
	u *models.User,
) (bool, error) {

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).
		Create(u)
	if res.Error != nil {
		if db.IsUniqueViolation(res.Error) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *AppointmentGormRepository) UpdateUser(
	ctx context.Context,
	id uint,
	fields map[string]any,
) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// --------------------------------------------------
// Appointment
// --------------------------------------------------

func (r *AppointmentGormRepository) IsSlotTaken(
	ctx context.Context,
	date string,
	slot string,
) (bool, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where(
			"appointment_date = ? AND appointment_time = ? AND status <> ?",
			date,
			slot,
			string(domain.StatusCancelled),
		).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *AppointmentGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(ap).Error
	if db.IsUniqueViolation(err) {
		return httperr.ErrBusiness("slot_unavailable")
	}
	return err
}

func (r *AppointmentGormRepository) GetAppointment(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Service").
		First(&ap, id).Error; err != nil {
		return nil, err
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) ListActiveAppointmentsForDate(
	ctx context.Context,
	date string,
) ([]models.Appointment, error) {

	var list []models.Appointment
	err := r.db.WithContext(ctx).
		Select("id", "appointment_date", "appointment_time", "status").
		Where("appointment_date = ? AND status <> ?", date, string(domain.StatusCancelled)).
		Order("appointment_time ASC").
		Find(&list).Error

	return list, err
}

func (r *AppointmentGormRepository) ListPendingCharges(
	ctx context.Context,
	since time.Time,
	afterID uint,
	limit int,
) ([]models.Appointment, error) {

	var list []models.Appointment
	err := r.db.WithContext(ctx).
		Where(
			"payment_status = ? AND status <> ? AND payment_charge_id <> '' AND created_at >= ? AND id > ?",
			string(domain.PaymentPending),
			string(domain.StatusCancelled),
			since,
			afterID,
		).
		Order("id ASC").
		Limit(limit).
		Find(&list).Error

	return list, err
}

func (r *AppointmentGormRepository) AttachCharge(
	ctx context.Context,
	id uint,
	ch domain.ChargeDetails,
) error {
	return r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"payment_charge_id":   ch.ChargeID,
			"payment_method":      ch.PaymentMethod,
			"payment_invoice_url": ch.InvoiceURL,
			"pix_qr_code":         ch.QRCode,
			"pix_code":            ch.CopyPaste,
		}).Error
}

func (r *AppointmentGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(ap).Error
}

func (r *AppointmentGormRepository) MarkPaid(
	ctx context.Context,
	id uint,
) (bool, error) {

	res := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where(
			"id = ? AND payment_status = ? AND status <> ?",
			id,
			string(domain.PaymentPending),
			string(domain.StatusCancelled),
		).
		Updates(map[string]any{
			"payment_status": string(domain.PaymentPaid),
			"status":         string(domain.StatusConfirmed),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *AppointmentGormRepository) SetArchiveKey(
	ctx context.Context,
	id uint,
	key string,
) error {
	return r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ?", id).
		Update("pix_qr_archive_key", key).Error
}

func (r *AppointmentGormRepository) UpdateAppointmentDetails(
	ctx context.Context,
	id uint,
	details string,
) error {
	return r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ?", id).
		Update("additional_details", details).Error
}

// --------------------------------------------------
// Payment history
// --------------------------------------------------

func (r *AppointmentGormRepository) CountOtherPaidAppointments(
	ctx context.Context,
	userID uint,
	excludeID uint,
) (int64, error) {

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("user_id = ? AND payment_status = ? AND id <> ?", userID, string(domain.PaymentPaid), excludeID).
		Count(&count).Error

	return count, err
}

func (r *AppointmentGormRepository) CountPaidAppointmentsUpTo(
	ctx context.Context,
	userID uint,
	id uint,
) (int64, error) {

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("user_id = ? AND payment_status = ? AND id <= ?", userID, string(domain.PaymentPaid), id).
		Count(&count).Error

	return count, err
}

// --------------------------------------------------
// Transaction
// --------------------------------------------------

func (r *AppointmentGormRepository) Transaction(
	ctx context.Context,
	fn func(repo domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewAppointmentGormRepository(tx))
	})
}

var _ domain.Repository = (*AppointmentGormRepository)(nil)
