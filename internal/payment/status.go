package payment

import "strings"

type ChargeStatus string

const (
	StatusPending    ChargeStatus = "pending"
	StatusPaid       ChargeStatus = "paid"
	StatusOverdue    ChargeStatus = "overdue"
	StatusRefunded   ChargeStatus = "refunded"
	StatusChargeback ChargeStatus = "chargeback"
	StatusDunning    ChargeStatus = "dunning"
	StatusFailed     ChargeStatus = "failed"
	StatusUnknown    ChargeStatus = "unknown"
)

// providerStatuses cobre o vocabulário do Asaas (inclusive as grafias em
// português vistas em produção) e o do MercadoPago. Chaves em maiúsculas.
var providerStatuses = map[string]ChargeStatus{
	// Asaas
	"PENDING":                      StatusPending,
	"AWAITING_RISK_ANALYSIS":       StatusPending,
	"RECEIVED":                     StatusPaid,
	"CONFIRMED":                    StatusPaid,
	"RECEIVED_IN_CASH":             StatusPaid,
	"OVERDUE":                      StatusOverdue,
	"REFUNDED":                     StatusRefunded,
	"REFUND_REQUESTED":             StatusRefunded,
	"REFUND_IN_PROGRESS":           StatusRefunded,
	"CHARGEBACK_REQUESTED":         StatusChargeback,
	"CHARGEBACK_DISPUTE":           StatusChargeback,
	"AWAITING_CHARGEBACK_REVERSAL": StatusChargeback,
	"DUNNING_REQUESTED":            StatusDunning,
	"DUNNING_RECEIVED":             StatusDunning,
	"DELETED":                      StatusFailed,

	// localizados
	"RECEBIDA":   StatusPaid,
	"PAGO":       StatusPaid,
	"CONFIRMADO": StatusPaid,

	// MercadoPago
	"APPROVED":     StatusPaid,
	"AUTHORIZED":   StatusPending,
	"IN_PROCESS":   StatusPending,
	"IN_MEDIATION": StatusPending,
	"REJECTED":     StatusFailed,
	"CANCELLED":    StatusFailed,
	"CHARGED_BACK": StatusChargeback,
}

func ParseChargeStatus(raw string) ChargeStatus {
	if s, ok := providerStatuses[strings.ToUpper(strings.TrimSpace(raw))]; ok {
		return s
	}
	return StatusUnknown
}

func (s ChargeStatus) IsPaid() bool {
	return s == StatusPaid
}
