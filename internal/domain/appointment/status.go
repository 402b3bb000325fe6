package appointment

import "github.com/BruksfildServices01/companion-booking/internal/httperr"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ===============================
// Payment Status
// ===============================

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// ===============================
// Validations
// ===============================

// CanConfirmPayment só permite pending → paid num agendamento ativo.
// Cancelado, failed e refunded nunca voltam a confirmed.
func CanConfirmPayment(status Status, current PaymentStatus) error {
	if current == PaymentPaid {
		return httperr.ErrBusiness("already_paid")
	}
	if current != PaymentPending || status == StatusCancelled {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

// CanCompensate: só agendamentos ainda não pagos podem ser desfeitos
func CanCompensate(current PaymentStatus) error {
	if current == PaymentPaid {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

func InitialStatus() (Status, PaymentStatus) {
	return StatusPending, PaymentPending
}
