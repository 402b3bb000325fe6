package appointment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/companion-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/companion-booking/internal/httperr"
	"github.com/BruksfildServices01/companion-booking/internal/models"
	"github.com/BruksfildServices01/companion-booking/internal/payment"
	"github.com/BruksfildServices01/companion-booking/internal/retry"
	"github.com/BruksfildServices01/companion-booking/internal/telemetry"
)

func paidStatus() *payment.ChargeStatusResult {
	return &payment.ChargeStatusResult{Raw: "RECEIVED", Status: payment.StatusPaid}
}

func TestGuestIsPromotedOnFirstPaymentOnly(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	guest := e.createUser(t, "g@x.com", "", "guest", "client", validCPF)
	first := e.createAppointment(t, models.Appointment{
		UserID: &guest.ID, AppointmentDate: "2025-03-05", AppointmentTime: "09:00", PaymentChargeID: "pay_1",
	})
	second := e.createAppointment(t, models.Appointment{
		UserID: &guest.ID, AppointmentDate: "2025-03-05", AppointmentTime: "10:00", PaymentChargeID: "pay_2",
	})

	e.gw.On("GetChargeStatus", mock.Anything, "pay_1").Return(paidStatus(), nil).Once()
	e.gw.On("GetChargeStatus", mock.Anything, "pay_2").Return(paidStatus(), nil).Once()

	_, err := e.status.Execute(ctx, first.ID)
	require.NoError(t, err)

	var u models.User
	require.NoError(t, e.db.First(&u, guest.ID).Error)
	assert.Equal(t, "new", u.Type)
	assert.Equal(t, "client", u.Role)
	assert.Contains(t, e.reload(t, first.ID).AdditionalDetails, "first_payment")

	_, err = e.status.Execute(ctx, second.ID)
	require.NoError(t, err)

	again := e.reload(t, second.ID)
	assert.Equal(t, "paid", again.PaymentStatus)
	assert.Empty(t, again.AdditionalDetails)

	done, err := NewGetAppointmentDone(e.repo).Execute(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, done.UserRegistered)
	assert.Equal(t, "g@x.com", done.UserEmail)

	done, err = NewGetAppointmentDone(e.repo).Execute(ctx, second.ID)
	require.NoError(t, err)
	assert.False(t, done.UserRegistered)
}

func TestAdminIsNeverTouched(t *testing.T) {
	e := newEnv(t)

	admin := e.createUser(t, "adm@x.com", "", "existing", "admin", validCPF)
	ap := e.createAppointment(t, models.Appointment{
		UserID: &admin.ID, AppointmentDate: "2025-03-05", AppointmentTime: "09:00", PaymentChargeID: "pay_1",
	})
	e.gw.On("GetChargeStatus", mock.Anything, "pay_1").Return(paidStatus(), nil).Once()

	_, err := e.status.Execute(context.Background(), ap.ID)
	require.NoError(t, err)

	var u models.User
	require.NoError(t, e.db.First(&u, admin.ID).Error)
	assert.Equal(t, "admin", u.Role)
	assert.Equal(t, "existing", u.Type)
	assert.Equal(t, "paid", e.reload(t, ap.ID).PaymentStatus)
}

func TestGatewayErrorFallsBackToLocalStatus(t *testing.T) {
	e := newEnv(t)
	ap := e.createAppointment(t, models.Appointment{
		AppointmentDate: "2025-03-05", AppointmentTime: "09:00", PaymentChargeID: "pay_1",
	})
	e.gw.On("GetChargeStatus", mock.Anything, "pay_1").Return(nil, errors.New("asaas: 503")).Once()

	res, err := e.status.Execute(context.Background(), ap.ID)
	require.NoError(t, err)
	assert.False(t, res.Paid)
	assert.Equal(t, "pending", res.Status)
	assert.True(t, res.GatewayError)
	assert.Equal(t, msgGatewayFallback, res.Message)
	assert.Equal(t, "pending", e.reload(t, ap.ID).PaymentStatus)
}

func TestPendingChargeIsNotConfirmed(t *testing.T) {
	e := newEnv(t)
	ap := e.createAppointment(t, models.Appointment{
		AppointmentDate: "2025-03-05", AppointmentTime: "09:00", PaymentChargeID: "pay_1",
	})
	e.gw.On("GetChargeStatus", mock.Anything, "pay_1").
		Return(&payment.ChargeStatusResult{Raw: "PENDING", Status: payment.StatusPending}, nil).Once()

	res, err := e.status.Execute(context.Background(), ap.ID)
	require.NoError(t, err)
	assert.False(t, res.Paid)
	assert.Equal(t, "PENDING", res.ProviderStatus)
	assert.Equal(t, "pending", e.reload(t, ap.ID).PaymentStatus)
}

func TestPaidChargeNeverRevivesInactiveAppointment(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	cancelled := e.createAppointment(t, models.Appointment{
		AppointmentDate: "2025-03-05", AppointmentTime: "09:00", PaymentChargeID: "pay_c",
		Status: "cancelled", PaymentStatus: "failed",
	})
	e.gw.On("GetChargeStatus", mock.Anything, "pay_c").Return(paidStatus(), nil).Once()

	res, err := e.status.Execute(ctx, cancelled.ID)
	require.NoError(t, err)
	assert.False(t, res.Paid)
	assert.Equal(t, "failed", res.Status)
	assert.Equal(t, "RECEIVED", res.ProviderStatus)
	assert.Equal(t, msgInactive, res.Message)

	row := e.reload(t, cancelled.ID)
	assert.Equal(t, "cancelled", row.Status)
	assert.Equal(t, "failed", row.PaymentStatus)

	// horário já reservado de novo: o reembolsado não volta a ocupar o slot
	refunded := e.createAppointment(t, models.Appointment{
		AppointmentDate: "2025-03-05", AppointmentTime: "10:00", PaymentChargeID: "pay_r",
		Status: "cancelled", PaymentStatus: "refunded",
	})
	live := e.createAppointment(t, models.Appointment{AppointmentDate: "2025-03-05", AppointmentTime: "10:00"})
	e.gw.On("GetChargeStatus", mock.Anything, "pay_r").Return(paidStatus(), nil).Once()

	res, err = e.status.Execute(ctx, refunded.ID)
	require.NoError(t, err)
	assert.False(t, res.Paid)
	assert.Equal(t, "refunded", e.reload(t, refunded.ID).PaymentStatus)
	assert.Equal(t, "pending", e.reload(t, live.ID).Status)
}

// txFailingRepo simula o banco recusando a transação de confirmação.
type txFailingRepo struct {
	domain.Repository
}

func (txFailingRepo) Transaction(context.Context, func(domain.Repository) error) error {
	return errors.New("database is locked")
}

func TestConfirmationFailureFallsBackToLocalStatus(t *testing.T) {
	e := newEnv(t)
	ap := e.createAppointment(t, models.Appointment{
		AppointmentDate: "2025-03-05", AppointmentTime: "09:00", PaymentChargeID: "pay_1",
	})
	e.gw.On("GetChargeStatus", mock.Anything, "pay_1").Return(paidStatus(), nil).Once()

	uc := NewCheckPaymentStatus(txFailingRepo{e.repo}, e.gw, nil, telemetry.Nop(), retry.Policy{Attempts: 1}, zap.NewNop())

	res, err := uc.Execute(context.Background(), ap.ID)
	require.NoError(t, err)
	assert.False(t, res.Paid)
	assert.True(t, res.GatewayError)
	assert.Equal(t, "pending", res.Status)
	assert.Equal(t, "pending", e.reload(t, ap.ID).PaymentStatus)
}

func TestNoChargeYetSkipsGateway(t *testing.T) {
	e := newEnv(t)
	ap := e.createAppointment(t, models.Appointment{AppointmentDate: "2025-03-05", AppointmentTime: "09:00"})

	res, err := e.status.Execute(context.Background(), ap.ID)
	require.NoError(t, err)
	assert.False(t, res.Paid)
	assert.Equal(t, msgAwaitingCharge, res.Message)
	e.gw.AssertNotCalled(t, "GetChargeStatus", mock.Anything, mock.Anything)
}

func TestUnknownAppointment(t *testing.T) {
	e := newEnv(t)

	_, err := e.status.Execute(context.Background(), 404)
	assert.True(t, httperr.IsBusiness(err, "appointment_not_found"))

	_, err = NewGetAppointmentDone(e.repo).Execute(context.Background(), 404)
	assert.True(t, httperr.IsBusiness(err, "appointment_not_found"))
}

// ======================================================
// Check-user
// ======================================================

func TestCheckUser(t *testing.T) {
	e := newEnv(t)
	bia := e.createUser(t, "bia@x.com", "certa", "new", "client", "")
	uc := NewCheckUser(e.repo)
	ctx := context.Background()

	res, err := uc.Execute(ctx, CheckUserInput{Email: "BIA@x.com"})
	require.NoError(t, err)
	assert.True(t, res.Exists)
	assert.False(t, res.Authenticated)

	res, err = uc.Execute(ctx, CheckUserInput{Email: "bia@x.com", Password: "certa"})
	require.NoError(t, err)
	require.NotNil(t, res.UserID)
	assert.Equal(t, bia.ID, *res.UserID)

	res, err = uc.Execute(ctx, CheckUserInput{Email: "bia@x.com", Password: "errada"})
	require.NoError(t, err)
	assert.Nil(t, res.UserID)

	res, err = uc.Execute(ctx, CheckUserInput{Email: "nada@x.com"})
	require.NoError(t, err)
	assert.False(t, res.Exists)

	_, err = uc.Execute(ctx, CheckUserInput{})
	assert.True(t, httperr.IsBusiness(err, "email_required"))
}
