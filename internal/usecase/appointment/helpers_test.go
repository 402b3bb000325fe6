package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/companion-booking/internal/db/dbtest"
	"github.com/BruksfildServices01/companion-booking/internal/infra/repository"
	"github.com/BruksfildServices01/companion-booking/internal/models"
	"github.com/BruksfildServices01/companion-booking/internal/payment"
	"github.com/BruksfildServices01/companion-booking/internal/retry"
	"github.com/BruksfildServices01/companion-booking/internal/slotlock"
	"github.com/BruksfildServices01/companion-booking/internal/telemetry"
)

const validCPF = "52998224725"

// ======================================================
// Gateway mock
// ======================================================

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Method() string { return "asaas_pix" }

func (m *mockGateway) FindCustomerByEmail(ctx context.Context, email string) payment.CustomerLookup {
	return m.Called(ctx, email).Get(0).(payment.CustomerLookup)
}

func (m *mockGateway) FindCustomerByID(ctx context.Context, id string) payment.CustomerLookup {
	return m.Called(ctx, id).Get(0).(payment.CustomerLookup)
}

func (m *mockGateway) CreateCustomer(ctx context.Context, in payment.CustomerInput) (*payment.Customer, error) {
	args := m.Called(ctx, in)
	c, _ := args.Get(0).(*payment.Customer)
	return c, args.Error(1)
}

func (m *mockGateway) UpdateCustomer(ctx context.Context, id string, in payment.CustomerInput) (*payment.Customer, error) {
	args := m.Called(ctx, id, in)
	c, _ := args.Get(0).(*payment.Customer)
	return c, args.Error(1)
}

func (m *mockGateway) GetOrCreateCustomer(ctx context.Context, in payment.CustomerInput) (*payment.Customer, error) {
	args := m.Called(ctx, in)
	c, _ := args.Get(0).(*payment.Customer)
	return c, args.Error(1)
}

func (m *mockGateway) CreatePixCharge(ctx context.Context, in payment.ChargeInput) (*payment.Charge, error) {
	args := m.Called(ctx, in)
	c, _ := args.Get(0).(*payment.Charge)
	return c, args.Error(1)
}

func (m *mockGateway) GetPixQRCode(ctx context.Context, chargeID string) (*payment.QRCode, error) {
	args := m.Called(ctx, chargeID)
	q, _ := args.Get(0).(*payment.QRCode)
	return q, args.Error(1)
}

func (m *mockGateway) GetChargeStatus(ctx context.Context, chargeID string) (*payment.ChargeStatusResult, error) {
	args := m.Called(ctx, chargeID)
	r, _ := args.Get(0).(*payment.ChargeStatusResult)
	return r, args.Error(1)
}

var _ payment.Gateway = (*mockGateway)(nil)

// ======================================================
// Locker stub
// ======================================================

type busyLocker struct{}

func (busyLocker) Acquire(context.Context, string, string) (func(), error) {
	return nil, slotlock.ErrNotAcquired
}

// ======================================================
// Env
// ======================================================

type env struct {
	db      *gorm.DB
	repo    *repository.AppointmentGormRepository
	gw      *mockGateway
	booking *CreateBooking
	status  *CheckPaymentStatus
}

func newEnv(t *testing.T) *env {
	t.Helper()

	gdb := dbtest.Open(t)
	repo := repository.NewAppointmentGormRepository(gdb)
	gw := &mockGateway{}
	t.Cleanup(func() { gw.AssertExpectations(t) })

	booking := NewCreateBooking(repo, gw, slotlock.Noop{}, nil, telemetry.Nop(), zap.NewNop())
	booking.now = func() time.Time {
		return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	}

	status := NewCheckPaymentStatus(repo, gw, nil, telemetry.Nop(), retry.Policy{Attempts: 1}, zap.NewNop())

	return &env{db: gdb, repo: repo, gw: gw, booking: booking, status: status}
}

// expectCharge programa o caminho feliz do gateway para o próximo agendamento.
func (e *env) expectCharge(chargeID string) {
	e.gw.On("GetOrCreateCustomer", mock.Anything, mock.AnythingOfType("payment.CustomerInput")).
		Return(&payment.Customer{ID: "cus_1"}, nil).Once()
	e.gw.On("CreatePixCharge", mock.Anything, mock.AnythingOfType("payment.ChargeInput")).
		Return(&payment.Charge{ID: chargeID, Status: "PENDING", InvoiceURL: "https://pay.test/" + chargeID}, nil).Once()
	e.gw.On("GetPixQRCode", mock.Anything, chargeID).
		Return(&payment.QRCode{EncodedImage: "iVBORw0KGgo=", Payload: "00020126" + chargeID}, nil).Once()
}

func (e *env) createUser(t *testing.T, email, password, origin, role, cpf string) *models.User {
	t.Helper()

	u := &models.User{Name: "Fulano", Email: email, Type: origin, Role: role, CPF: cpf}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		require.NoError(t, err)
		h := string(hash)
		u.PasswordHash = &h
	}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *env) createAppointment(t *testing.T, ap models.Appointment) *models.Appointment {
	t.Helper()

	if ap.ServiceID == 0 {
		ap.ServiceID = 2
	}
	if ap.Status == "" {
		ap.Status = "pending"
	}
	if ap.PaymentStatus == "" {
		ap.PaymentStatus = "pending"
	}
	if ap.TotalAmount.IsZero() {
		ap.TotalAmount = decimal.RequireFromString("20.00")
	}
	require.NoError(t, e.db.Omit("User", "Service", "Location").Create(&ap).Error)
	return &ap
}

func (e *env) reload(t *testing.T, id uint) models.Appointment {
	t.Helper()
	var ap models.Appointment
	require.NoError(t, e.db.First(&ap, id).Error)
	return ap
}

func newUserForm(date, slot string) BookingForm {
	return BookingForm{
		Type:            "new-user",
		Name:            "Ana",
		Email:           "ana@x.com",
		Contact:         "(11) 98888-7777",
		CPF:             "529.982.247-25",
		Service:         "2",
		Location:        "3",
		AppointmentDate: FormValue(date),
		AppointmentTime: FormValue(slot),
	}
}
