package payment

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChargeStatus(t *testing.T) {
	paid := []string{"RECEIVED", "received", "CONFIRMED", "RECEIVED_IN_CASH", "Recebida", "PAGO", "confirmado", "approved"}
	for _, raw := range paid {
		assert.Equal(t, StatusPaid, ParseChargeStatus(raw), raw)
		assert.True(t, ParseChargeStatus(raw).IsPaid(), raw)
	}

	notPaid := map[string]ChargeStatus{
		"PENDING":              StatusPending,
		"in_process":           StatusPending,
		"OVERDUE":              StatusOverdue,
		"REFUNDED":             StatusRefunded,
		"CHARGEBACK_REQUESTED": StatusChargeback,
		"DUNNING_RECEIVED":     StatusDunning,
		"rejected":             StatusFailed,
		"":                     StatusUnknown,
		"RECEIVED_PARTIALLY":   StatusUnknown,
	}
	for raw, want := range notPaid {
		got := ParseChargeStatus(raw)
		assert.Equal(t, want, got, raw)
		assert.False(t, got.IsPaid(), raw)
	}
}

func TestValidateChargeInput(t *testing.T) {
	valid := ChargeInput{
		CustomerID: "cus_000005219613",
		Value:      decimal.RequireFromString("20"),
		DueDate:    "2025-03-05",
	}

	v, err := ValidateChargeInput(valid)
	require.NoError(t, err)
	assert.Equal(t, "20.00", v)

	cases := map[string]func(in *ChargeInput){
		"empty customer":     func(in *ChargeInput) { in.CustomerID = " " },
		"undefined customer": func(in *ChargeInput) { in.CustomerID = "undefined" },
		"null customer":      func(in *ChargeInput) { in.CustomerID = "null" },
		"zero value":         func(in *ChargeInput) { in.Value = decimal.Zero },
		"negative value":     func(in *ChargeInput) { in.Value = decimal.RequireFromString("-1") },
		"missing due date":   func(in *ChargeInput) { in.DueDate = "" },
		"bad due date":       func(in *ChargeInput) { in.DueDate = "05-03-2025" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := valid
			mutate(&in)
			_, err := ValidateChargeInput(in)
			assert.ErrorIs(t, err, ErrInvalidChargeInput)
		})
	}
}
