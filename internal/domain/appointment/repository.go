package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/companion-booking/internal/models"
)

// ChargeDetails são os artefatos da cobrança gravados na segunda fase.
type ChargeDetails struct {
	ChargeID      string
	PaymentMethod string
	InvoiceURL    string
	QRCode        string
	CopyPaste     string
}

type Repository interface {
	// -------- Service --------
	GetService(
		ctx context.Context,
		id uint,
	) (*models.Service, error)

	// -------- User --------
	GetUser(
		ctx context.Context,
		id uint,
	) (*models.User, error)

	FindUserByEmail(
		ctx context.Context,
		email string,
	) (*models.User, error)

	// CreateUserIfAbsent returns false when the email is already taken.
	CreateUserIfAbsent(
		ctx context.Context,
		u *models.User,
	) (bool, error)

	UpdateUser(
		ctx context.Context,
		id uint,
		fields map[string]any,
	) error

	// -------- Appointment (create / conflict) --------
	IsSlotTaken(
		ctx context.Context,
		date string,
		slot string,
	) (bool, error)

	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// -------- Appointment (read) --------
	GetAppointment(
		ctx context.Context,
		id uint,
	) (*models.Appointment, error)

	ListActiveAppointmentsForDate(
		ctx context.Context,
		date string,
	) ([]models.Appointment, error)

	// ListPendingCharges pages by id: afterID is the last id already seen.
	ListPendingCharges(
		ctx context.Context,
		since time.Time,
		afterID uint,
		limit int,
	) ([]models.Appointment, error)

	// -------- Appointment (state change) --------
	AttachCharge(
		ctx context.Context,
		id uint,
		ch ChargeDetails,
	) error

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// MarkPaid flips pending → paid/confirmed and reports whether this call
	// performed the transition.
	MarkPaid(
		ctx context.Context,
		id uint,
	) (bool, error)

	SetArchiveKey(
		ctx context.Context,
		id uint,
		key string,
	) error

	UpdateAppointmentDetails(
		ctx context.Context,
		id uint,
		details string,
	) error

	// -------- Payment history --------
	CountOtherPaidAppointments(
		ctx context.Context,
		userID uint,
		excludeID uint,
	) (int64, error)

	CountPaidAppointmentsUpTo(
		ctx context.Context,
		userID uint,
		id uint,
	) (int64, error)

	// -------- Transaction --------
	Transaction(
		ctx context.Context,
		fn func(repo Repository) error,
	) error
}
