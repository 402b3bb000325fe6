// Package payment defines the provider-neutral PIX gateway port used by the
// booking and reconciliation use cases.
package payment

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidChargeInput = errors.New("invalid charge input")

type Customer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	CPFCNPJ string `json:"cpfCnpj"`
	Phone   string `json:"phone,omitempty"`
}

type CustomerInput struct {
	Name    string
	Email   string
	Phone   string
	CPFCNPJ string
}

type ChargeInput struct {
	CustomerID        string
	Value             decimal.Decimal
	DueDate           string // YYYY-MM-DD
	Description       string
	ExternalReference string

	// PayerEmail e PayerName são usados por provedores sem cadastro de cliente.
	PayerEmail string
	PayerName  string
	PayerCPF   string
}

type Charge struct {
	ID         string
	Status     string
	InvoiceURL string

	// preenchidos quando o provedor devolve o QR junto com a cobrança
	QRCodeImage string
	QRCodeText  string
}

type QRCode struct {
	EncodedImage   string `json:"encodedImage"`
	Payload        string `json:"payload"`
	ExpirationDate string `json:"expirationDate"`
}

type ChargeStatusResult struct {
	Raw    string
	Status ChargeStatus
}

// Gateway é implementado por asaas.Client e mercadopago.Client.
type Gateway interface {
	// Method identifica o meio de pagamento gravado no agendamento.
	Method() string

	FindCustomerByEmail(ctx context.Context, email string) CustomerLookup
	FindCustomerByID(ctx context.Context, id string) CustomerLookup
	CreateCustomer(ctx context.Context, in CustomerInput) (*Customer, error)
	UpdateCustomer(ctx context.Context, id string, in CustomerInput) (*Customer, error)
	GetOrCreateCustomer(ctx context.Context, in CustomerInput) (*Customer, error)

	CreatePixCharge(ctx context.Context, in ChargeInput) (*Charge, error)
	// GetPixQRCode devolve (nil, nil) quando o QR não está disponível.
	GetPixQRCode(ctx context.Context, chargeID string) (*QRCode, error)
	GetChargeStatus(ctx context.Context, chargeID string) (*ChargeStatusResult, error)
}

// ===============================
// Customer lookup result
// ===============================

type LookupKind int

const (
	LookupNotFound LookupKind = iota
	LookupFound
	LookupTransientError
)

// CustomerLookup separa "não existe" de "não foi possível consultar".
type CustomerLookup struct {
	Kind     LookupKind
	Customer *Customer
	Err      error
}

func Found(c *Customer) CustomerLookup {
	return CustomerLookup{Kind: LookupFound, Customer: c}
}

func NotFound() CustomerLookup {
	return CustomerLookup{Kind: LookupNotFound}
}

func TransientError(err error) CustomerLookup {
	return CustomerLookup{Kind: LookupTransientError, Err: err}
}

// ===============================
// Charge validation
// ===============================

var isoDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidateChargeInput roda antes de qualquer chamada ao provedor e devolve
// o valor formatado com duas casas ("12.34").
func ValidateChargeInput(in ChargeInput) (string, error) {
	id := strings.TrimSpace(in.CustomerID)
	if id == "" || id == "undefined" || id == "null" {
		return "", fmt.Errorf("%w: customer id is required", ErrInvalidChargeInput)
	}

	if !in.Value.IsPositive() {
		return "", fmt.Errorf("%w: value must be greater than zero", ErrInvalidChargeInput)
	}

	if !isoDate.MatchString(in.DueDate) {
		return "", fmt.Errorf("%w: due date must be YYYY-MM-DD", ErrInvalidChargeInput)
	}

	return in.Value.StringFixed(2), nil
}
