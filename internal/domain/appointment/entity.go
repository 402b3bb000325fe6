package appointment

import (
	"encoding/json"

	"github.com/BruksfildServices01/companion-booking/internal/models"
)

// ===============================
// Domain Actions
// ===============================

// ConfirmPayment aplica em memória a transição que MarkPaid faz no banco.
func ConfirmPayment(ap *models.Appointment) error {
	if err := CanConfirmPayment(Status(ap.Status), PaymentStatus(ap.PaymentStatus)); err != nil {
		return err
	}

	ap.PaymentStatus = string(PaymentPaid)
	ap.Status = string(StatusConfirmed)
	return nil
}

// Compensate desfaz um agendamento cuja cobrança não pôde ser criada.
// O status cancelled libera o horário.
func Compensate(ap *models.Appointment, reason string) error {
	if err := CanCompensate(PaymentStatus(ap.PaymentStatus)); err != nil {
		return err
	}

	ap.Status = string(StatusCancelled)
	ap.PaymentStatus = string(PaymentFailed)
	ap.AdditionalDetails = detailsJSON(map[string]any{
		"compensated": true,
		"reason":      reason,
	})
	return nil
}

// FirstPaymentDetails marca o agendamento que registrou o usuário.
func FirstPaymentDetails() string {
	return detailsJSON(map[string]any{
		"user_registered": true,
		"first_payment":   true,
	})
}

func detailsJSON(v map[string]any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
