package audit

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/companion-booking/internal/models"
)

// Ações gravadas no histórico do agendamento.
const (
	ActionAppointmentCreated   = "appointment_created"
	ActionPaymentChargeCreated = "payment_charge_created"
	ActionBookingCompensated   = "booking_compensated"
	ActionPaymentConfirmed     = "payment_confirmed"
	ActionUserPromoted         = "user_promoted"
)

type Logger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

func (l *Logger) Log(
	ctx context.Context,
	appointmentID *uint,
	userID *uint,
	action string,
	metadata any,
) error {

	var metaJSON string
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			metaJSON = string(b)
		}
	}

	entry := models.AuditLog{
		AppointmentID: appointmentID,
		UserID:        userID,
		Action:        action,
		Metadata:      metaJSON,
	}

	return l.db.WithContext(ctx).Create(&entry).Error
}
