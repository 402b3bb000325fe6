package asaas

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/companion-booking/internal/payment"
)

const billingTypePix = "PIX"

type chargeRequest struct {
	Customer          string `json:"customer"`
	BillingType       string `json:"billingType"`
	Value             string `json:"value"`
	DueDate           string `json:"dueDate"`
	Description       string `json:"description,omitempty"`
	ExternalReference string `json:"externalReference,omitempty"`
}

type chargeResponse struct {
	ID                    string `json:"id"`
	Status                string `json:"status"`
	InvoiceURL            string `json:"invoiceUrl"`
	BankSlipURL           string `json:"bankSlipUrl"`
	TransactionReceiptURL string `json:"transactionReceiptUrl"`
}

func (r chargeResponse) paymentURL() string {
	switch {
	case r.InvoiceURL != "":
		return r.InvoiceURL
	case r.BankSlipURL != "":
		return r.BankSlipURL
	default:
		return r.TransactionReceiptURL
	}
}

func (c *Client) CreatePixCharge(ctx context.Context, in payment.ChargeInput) (_ *payment.Charge, err error) {
	ctx, span := c.startSpan(ctx, "CreatePixCharge",
		attribute.String("charge.external_reference", in.ExternalReference),
	)
	defer func() { endSpan(span, err) }()

	value, err := payment.ValidateChargeInput(in)
	if err != nil {
		return nil, err
	}

	description := in.Description
	if description == "" {
		description = "Agendamento de Consulta"
	}

	req, base, err := c.request(ctx)
	if err != nil {
		return nil, err
	}

	var out chargeResponse
	resp, err := req.
		SetBody(chargeRequest{
			Customer:          in.CustomerID,
			BillingType:       billingTypePix,
			Value:             value,
			DueDate:           in.DueDate,
			Description:       description,
			ExternalReference: in.ExternalReference,
		}).
		SetResult(&out).
		Post(base + "/payments")
	if err != nil {
		return nil, fmt.Errorf("asaas: create charge: %w", err)
	}
	if resp.IsError() {
		return nil, responseError(resp)
	}

	c.log.Info("pix charge created",
		zap.String("charge_id", out.ID),
		zap.String("value", value),
		zap.String("due_date", in.DueDate),
	)

	return &payment.Charge{
		ID:         out.ID,
		Status:     out.Status,
		InvoiceURL: out.paymentURL(),
	}, nil
}

// GetPixQRCode degrada para (nil, nil) em qualquer falha; o chamador segue
// sem o QR.
func (c *Client) GetPixQRCode(ctx context.Context, chargeID string) (*payment.QRCode, error) {
	ctx, span := c.startSpan(ctx, "GetPixQRCode", attribute.String("charge.id", chargeID))

	req, base, err := c.request(ctx)
	if err != nil {
		endSpan(span, err)
		c.log.Warn("pix qr code unavailable", zap.String("charge_id", chargeID), zap.Error(err))
		return nil, nil
	}

	var qr payment.QRCode
	resp, err := req.
		SetPathParam("id", chargeID).
		SetResult(&qr).
		Get(base + "/payments/{id}/pixQrCode")
	if err == nil && resp.IsError() {
		err = responseError(resp)
	}
	endSpan(span, err)

	if err != nil {
		c.log.Warn("pix qr code unavailable", zap.String("charge_id", chargeID), zap.Error(err))
		return nil, nil
	}
	return &qr, nil
}

func (c *Client) GetChargeStatus(ctx context.Context, chargeID string) (_ *payment.ChargeStatusResult, err error) {
	ctx, span := c.startSpan(ctx, "GetChargeStatus", attribute.String("charge.id", chargeID))
	defer func() { endSpan(span, err) }()

	req, base, err := c.request(ctx)
	if err != nil {
		return nil, err
	}

	var out chargeResponse
	resp, err := req.
		SetPathParam("id", chargeID).
		SetResult(&out).
		Get(base + "/payments/{id}")
	if err != nil {
		return nil, fmt.Errorf("asaas: get charge: %w", err)
	}
	if resp.IsError() {
		return nil, responseError(resp)
	}

	span.SetAttributes(attribute.String("charge.status", out.Status))

	return &payment.ChargeStatusResult{
		Raw:    out.Status,
		Status: payment.ParseChargeStatus(out.Status),
	}, nil
}

var _ payment.Gateway = (*Client)(nil)
