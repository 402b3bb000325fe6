package asaas

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/companion-booking/internal/payment"
	"github.com/BruksfildServices01/companion-booking/internal/validators"
)

var ErrInvalidCustomerInput = errors.New("asaas: invalid customer input")

type customerBody struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	CPFCNPJ     string `json:"cpfCnpj,omitempty"`
	Phone       string `json:"phone,omitempty"`
	MobilePhone string `json:"mobilePhone,omitempty"`
}

func (b customerBody) toCustomer() *payment.Customer {
	phone := b.MobilePhone
	if phone == "" {
		phone = b.Phone
	}
	return &payment.Customer{
		ID:      b.ID,
		Name:    b.Name,
		Email:   b.Email,
		CPFCNPJ: b.CPFCNPJ,
		Phone:   phone,
	}
}

type customerList struct {
	Data []customerBody `json:"data"`
}

// phoneDigits só envia telefones com DDD (10+ dígitos).
func phoneDigits(raw string) string {
	d := validators.OnlyDigits(raw)
	if len(d) < 10 {
		return ""
	}
	return d
}

func (c *Client) FindCustomerByEmail(ctx context.Context, email string) payment.CustomerLookup {
	ctx, span := c.startSpan(ctx, "FindCustomerByEmail")

	req, base, err := c.request(ctx)
	if err != nil {
		endSpan(span, err)
		return payment.TransientError(err)
	}

	var list customerList
	resp, err := req.
		SetQueryParam("email", email).
		SetResult(&list).
		Get(base + "/customers")
	if err == nil && resp.IsError() {
		err = responseError(resp)
	}
	endSpan(span, err)

	if err != nil {
		c.log.Warn("customer lookup failed", zap.String("email", email), zap.Error(err))
		return payment.TransientError(err)
	}

	if len(list.Data) == 0 {
		return payment.NotFound()
	}
	return payment.Found(list.Data[0].toCustomer())
}

func (c *Client) FindCustomerByID(ctx context.Context, id string) payment.CustomerLookup {
	ctx, span := c.startSpan(ctx, "FindCustomerByID", attribute.String("customer.id", id))

	req, base, err := c.request(ctx)
	if err != nil {
		endSpan(span, err)
		return payment.TransientError(err)
	}

	var body customerBody
	resp, err := req.
		SetPathParam("id", id).
		SetResult(&body).
		Get(base + "/customers/{id}")
	if err == nil && resp.StatusCode() == 404 {
		endSpan(span, nil)
		return payment.NotFound()
	}
	if err == nil && resp.IsError() {
		err = responseError(resp)
	}
	endSpan(span, err)

	if err != nil {
		c.log.Warn("customer fetch failed", zap.String("customer_id", id), zap.Error(err))
		return payment.TransientError(err)
	}
	return payment.Found(body.toCustomer())
}

func (c *Client) CreateCustomer(ctx context.Context, in payment.CustomerInput) (_ *payment.Customer, err error) {
	ctx, span := c.startSpan(ctx, "CreateCustomer")
	defer func() { endSpan(span, err) }()

	if in.Name == "" || in.Email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrInvalidCustomerInput)
	}

	taxID, err := validators.ValidateTaxID(in.CPFCNPJ)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCustomerInput, err)
	}

	phone := phoneDigits(in.Phone)
	body := customerBody{
		Name:        in.Name,
		Email:       in.Email,
		CPFCNPJ:     taxID,
		Phone:       phone,
		MobilePhone: phone,
	}

	req, base, err := c.request(ctx)
	if err != nil {
		return nil, err
	}

	var created customerBody
	resp, err := req.SetBody(body).SetResult(&created).Post(base + "/customers")
	if err != nil {
		return nil, fmt.Errorf("asaas: create customer: %w", err)
	}
	if resp.IsError() {
		return nil, responseError(resp)
	}

	c.log.Info("customer created", zap.String("customer_id", created.ID))
	return created.toCustomer(), nil
}

// UpdateCustomer envia só os campos preenchidos.
func (c *Client) UpdateCustomer(ctx context.Context, id string, in payment.CustomerInput) (_ *payment.Customer, err error) {
	ctx, span := c.startSpan(ctx, "UpdateCustomer", attribute.String("customer.id", id))
	defer func() { endSpan(span, err) }()

	body := customerBody{Name: in.Name, Email: in.Email}
	if in.CPFCNPJ != "" {
		taxID, err := validators.ValidateTaxID(in.CPFCNPJ)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCustomerInput, err)
		}
		body.CPFCNPJ = taxID
	}
	if phone := phoneDigits(in.Phone); phone != "" {
		body.Phone = phone
		body.MobilePhone = phone
	}

	req, base, err := c.request(ctx)
	if err != nil {
		return nil, err
	}

	var updated customerBody
	resp, err := req.
		SetPathParam("id", id).
		SetBody(body).
		SetResult(&updated).
		Put(base + "/customers/{id}")
	if err != nil {
		return nil, fmt.Errorf("asaas: update customer: %w", err)
	}
	if resp.IsError() {
		return nil, responseError(resp)
	}
	return updated.toCustomer(), nil
}

// GetOrCreateCustomer é o ponto de entrada idempotente por e-mail.
// Uma falha transitória na busca nunca leva à criação de outro cliente.
func (c *Client) GetOrCreateCustomer(ctx context.Context, in payment.CustomerInput) (*payment.Customer, error) {
	taxID, err := validators.ValidateTaxID(in.CPFCNPJ)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCustomerInput, err)
	}
	in.CPFCNPJ = taxID

	lookup := c.FindCustomerByEmail(ctx, in.Email)

	switch lookup.Kind {
	case payment.LookupTransientError:
		return nil, fmt.Errorf("asaas: customer lookup: %w", lookup.Err)

	case payment.LookupFound:
		existing := lookup.Customer
		if existing.CPFCNPJ != "" {
			return existing, nil
		}

		// PIX exige CPF/CNPJ; sem ele a cobrança falharia depois
		updated, err := c.UpdateCustomer(ctx, existing.ID, payment.CustomerInput{CPFCNPJ: in.CPFCNPJ})
		if err != nil {
			return nil, fmt.Errorf("asaas: backfill cpfCnpj: %w", err)
		}
		if updated.ID == "" {
			updated.ID = existing.ID
		}
		return updated, nil

	default:
		return c.CreateCustomer(ctx, in)
	}
}
