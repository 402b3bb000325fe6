// Package mercadopago implements payment.Gateway on top of the MercadoPago SDK.
// MercadoPago has no customer registry for PIX, so customer operations are
// pass-through and the payer travels with each charge.
package mercadopago

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mercadopago/sdk-go/pkg/config"
	mppayment "github.com/mercadopago/sdk-go/pkg/payment"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/companion-booking/internal/payment"
	"github.com/BruksfildServices01/companion-booking/internal/validators"
)

const (
	PaymentMethod = "mercadopago_pix"

	pixMethodID = "pix"
)

var ErrInvalidChargeID = errors.New("mercadopago: invalid charge id")

// paymentAPI é o subconjunto do SDK usado aqui.
type paymentAPI interface {
	Create(ctx context.Context, request mppayment.Request) (*mppayment.Response, error)
	Get(ctx context.Context, id int) (*mppayment.Response, error)
}

type Client struct {
	api    paymentAPI
	log    *zap.Logger
	tracer trace.Tracer
}

func New(accessToken string, log *zap.Logger) (*Client, error) {
	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago: config: %w", err)
	}
	return newWithAPI(mppayment.NewClient(cfg), log), nil
}

func newWithAPI(api paymentAPI, log *zap.Logger) *Client {
	return &Client{
		api:    api,
		log:    log.Named("mercadopago"),
		tracer: otel.Tracer("mercadopago-client"),
	}
}

func (c *Client) Method() string {
	return PaymentMethod
}

// ===============================
// Customers (pass-through)
// ===============================

// O e-mail faz o papel de id do cliente.

func (c *Client) FindCustomerByEmail(_ context.Context, email string) payment.CustomerLookup {
	if strings.TrimSpace(email) == "" {
		return payment.NotFound()
	}
	return payment.Found(&payment.Customer{ID: email, Email: email})
}

func (c *Client) FindCustomerByID(ctx context.Context, id string) payment.CustomerLookup {
	return c.FindCustomerByEmail(ctx, id)
}

func (c *Client) CreateCustomer(_ context.Context, in payment.CustomerInput) (*payment.Customer, error) {
	if in.Name == "" || in.Email == "" {
		return nil, errors.New("mercadopago: name and email are required")
	}
	taxID, err := validators.ValidateTaxID(in.CPFCNPJ)
	if err != nil {
		return nil, err
	}
	return &payment.Customer{
		ID:      in.Email,
		Name:    in.Name,
		Email:   in.Email,
		CPFCNPJ: taxID,
		Phone:   validators.OnlyDigits(in.Phone),
	}, nil
}

func (c *Client) UpdateCustomer(ctx context.Context, id string, in payment.CustomerInput) (*payment.Customer, error) {
	if in.Email == "" {
		in.Email = id
	}
	if in.Name == "" {
		in.Name = id
	}
	return c.CreateCustomer(ctx, in)
}

func (c *Client) GetOrCreateCustomer(ctx context.Context, in payment.CustomerInput) (*payment.Customer, error) {
	return c.CreateCustomer(ctx, in)
}

// ===============================
// Charges
// ===============================

func (c *Client) CreatePixCharge(ctx context.Context, in payment.ChargeInput) (_ *payment.Charge, err error) {
	ctx, span := c.tracer.Start(ctx, "mercadopago.CreatePixCharge")
	span.SetAttributes(attribute.String("charge.external_reference", in.ExternalReference))
	defer func() { endSpan(span, err) }()

	value, err := payment.ValidateChargeInput(in)
	if err != nil {
		return nil, err
	}

	email := in.PayerEmail
	if email == "" {
		email = in.CustomerID
	}

	payer := &mppayment.PayerRequest{
		Email:     email,
		FirstName: in.PayerName,
	}
	if in.PayerCPF != "" {
		taxID, err := validators.ValidateTaxID(in.PayerCPF)
		if err != nil {
			return nil, err
		}
		kind := "CPF"
		if len(taxID) == 14 {
			kind = "CNPJ"
		}
		payer.Identification = &mppayment.IdentificationRequest{Type: kind, Number: taxID}
	}

	description := in.Description
	if description == "" {
		description = "Agendamento de Consulta"
	}

	resp, err := c.api.Create(ctx, mppayment.Request{
		TransactionAmount: in.Value.InexactFloat64(),
		PaymentMethodID:   pixMethodID,
		Description:       description,
		ExternalReference: in.ExternalReference,
		Payer:             payer,
	})
	if err != nil {
		return nil, fmt.Errorf("mercadopago: create payment: %w", err)
	}

	id := strconv.Itoa(resp.ID)
	c.log.Info("pix charge created",
		zap.String("charge_id", id),
		zap.String("value", value),
		zap.String("status", resp.Status),
	)

	tx := resp.PointOfInteraction.TransactionData
	return &payment.Charge{
		ID:          id,
		Status:      resp.Status,
		InvoiceURL:  tx.TicketURL,
		QRCodeImage: tx.QRCodeBase64,
		QRCodeText:  tx.QRCode,
	}, nil
}

// GetPixQRCode relê o pagamento; degrada para (nil, nil) como no Asaas.
func (c *Client) GetPixQRCode(ctx context.Context, chargeID string) (*payment.QRCode, error) {
	id, err := parseID(chargeID)
	if err != nil {
		c.log.Warn("pix qr code unavailable", zap.String("charge_id", chargeID), zap.Error(err))
		return nil, nil
	}

	resp, err := c.api.Get(ctx, id)
	if err != nil {
		c.log.Warn("pix qr code unavailable", zap.String("charge_id", chargeID), zap.Error(err))
		return nil, nil
	}

	tx := resp.PointOfInteraction.TransactionData
	if tx.QRCodeBase64 == "" && tx.QRCode == "" {
		return nil, nil
	}
	return &payment.QRCode{EncodedImage: tx.QRCodeBase64, Payload: tx.QRCode}, nil
}

func (c *Client) GetChargeStatus(ctx context.Context, chargeID string) (_ *payment.ChargeStatusResult, err error) {
	ctx, span := c.tracer.Start(ctx, "mercadopago.GetChargeStatus")
	span.SetAttributes(attribute.String("charge.id", chargeID))
	defer func() { endSpan(span, err) }()

	id, err := parseID(chargeID)
	if err != nil {
		return nil, err
	}

	resp, err := c.api.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("mercadopago: get payment: %w", err)
	}

	return &payment.ChargeStatusResult{
		Raw:    resp.Status,
		Status: payment.ParseChargeStatus(resp.Status),
	}, nil
}

func parseID(chargeID string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(chargeID))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidChargeID, chargeID)
	}
	return id, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

var _ payment.Gateway = (*Client)(nil)
