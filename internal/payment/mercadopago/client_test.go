package mercadopago

import (
	"context"
	"errors"
	"testing"

	mppayment "github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/companion-booking/internal/payment"
)

type fakeAPI struct {
	created []mppayment.Request
	status  string
	getErr  error
}

func (f *fakeAPI) Create(_ context.Context, req mppayment.Request) (*mppayment.Response, error) {
	f.created = append(f.created, req)
	resp := &mppayment.Response{ID: 1234, Status: "pending"}
	resp.PointOfInteraction.TransactionData.QRCode = "00020126pix"
	resp.PointOfInteraction.TransactionData.QRCodeBase64 = "iVBORw0KGgo="
	resp.PointOfInteraction.TransactionData.TicketURL = "https://mp.test/ticket/1234"
	return resp, nil
}

func (f *fakeAPI) Get(_ context.Context, id int) (*mppayment.Response, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &mppayment.Response{ID: id, Status: f.status}, nil
}

func TestCreatePixChargeCarriesPayerAndQR(t *testing.T) {
	api := &fakeAPI{}
	c := newWithAPI(api, zap.NewNop())

	ch, err := c.CreatePixCharge(context.Background(), payment.ChargeInput{
		CustomerID:        "ana@x.com",
		Value:             decimal.RequireFromString("20.00"),
		DueDate:           "2025-03-05",
		ExternalReference: "appointment_7",
		PayerName:         "Ana",
		PayerCPF:          "529.982.247-25",
	})
	require.NoError(t, err)

	assert.Equal(t, "1234", ch.ID)
	assert.Equal(t, "iVBORw0KGgo=", ch.QRCodeImage)
	assert.Equal(t, "00020126pix", ch.QRCodeText)

	require.Len(t, api.created, 1)
	req := api.created[0]
	assert.Equal(t, "pix", req.PaymentMethodID)
	assert.Equal(t, 20.0, req.TransactionAmount)
	assert.Equal(t, "ana@x.com", req.Payer.Email)
	require.NotNil(t, req.Payer.Identification)
	assert.Equal(t, "CPF", req.Payer.Identification.Type)
	assert.Equal(t, "52998224725", req.Payer.Identification.Number)
}

func TestCreatePixChargeRejectsInvalidInput(t *testing.T) {
	api := &fakeAPI{}
	c := newWithAPI(api, zap.NewNop())

	_, err := c.CreatePixCharge(context.Background(), payment.ChargeInput{
		CustomerID: "undefined", Value: decimal.RequireFromString("20"), DueDate: "2025-03-05",
	})
	assert.ErrorIs(t, err, payment.ErrInvalidChargeInput)
	assert.Empty(t, api.created)
}

func TestGetChargeStatus(t *testing.T) {
	api := &fakeAPI{status: "approved"}
	c := newWithAPI(api, zap.NewNop())

	res, err := c.GetChargeStatus(context.Background(), "1234")
	require.NoError(t, err)
	assert.True(t, res.Status.IsPaid())
	assert.Equal(t, "approved", res.Raw)

	_, err = c.GetChargeStatus(context.Background(), "pay_abc")
	assert.ErrorIs(t, err, ErrInvalidChargeID)

	api.getErr = errors.New("boom")
	_, err = c.GetChargeStatus(context.Background(), "1234")
	assert.Error(t, err)

	qr, err := c.GetPixQRCode(context.Background(), "1234")
	assert.NoError(t, err)
	assert.Nil(t, qr)
}

func TestCustomerPassThrough(t *testing.T) {
	c := newWithAPI(&fakeAPI{}, zap.NewNop())

	cust, err := c.GetOrCreateCustomer(context.Background(), payment.CustomerInput{
		Name: "Ana", Email: "ana@x.com", CPFCNPJ: "52998224725",
	})
	require.NoError(t, err)
	assert.Equal(t, "ana@x.com", cust.ID)

	_, err = c.GetOrCreateCustomer(context.Background(), payment.CustomerInput{
		Name: "Ana", Email: "ana@x.com",
	})
	assert.Error(t, err)

	assert.Equal(t, PaymentMethod, c.Method())
}
