package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/companion-booking/internal/db/dbtest"
	"github.com/BruksfildServices01/companion-booking/internal/infra/repository"
	"github.com/BruksfildServices01/companion-booking/internal/models"
	"github.com/BruksfildServices01/companion-booking/internal/retry"
	usecase "github.com/BruksfildServices01/companion-booking/internal/usecase/appointment"
)

type fakeChecker struct {
	seen []uint
	paid map[uint]bool
	fail map[uint]bool
}

func (f *fakeChecker) Execute(_ context.Context, id uint) (*usecase.PaymentStatusResult, error) {
	f.seen = append(f.seen, id)
	if f.fail[id] {
		return nil, errors.New("boom")
	}
	return &usecase.PaymentStatusResult{Paid: f.paid[id]}, nil
}

func TestSweepChecksOnlyRecentPendingCharges(t *testing.T) {
	gdb := dbtest.Open(t)
	repo := repository.NewAppointmentGormRepository(gdb)

	mk := func(slot, charge, payment, status string, created time.Time) uint {
		ap := models.Appointment{
			ServiceID:       2,
			AppointmentDate: "2025-03-05",
			AppointmentTime: slot,
			Status:          status,
			PaymentStatus:   payment,
			PaymentChargeID: charge,
			TotalAmount:     decimal.RequireFromString("20.00"),
			CreatedAt:       created,
		}
		require.NoError(t, gdb.Omit("User", "Service", "Location").Create(&ap).Error)
		return ap.ID
	}

	now := time.Now()
	recent := mk("09:00", "pay_1", "pending", "pending", now.Add(-time.Hour))
	failing := mk("10:00", "pay_2", "pending", "pending", now.Add(-2*time.Hour))
	// ignorados: sem cobrança, já pago, fora da janela, compensado
	mk("11:00", "", "pending", "pending", now)
	mk("12:00", "pay_3", "paid", "confirmed", now)
	mk("14:00", "pay_4", "pending", "pending", now.Add(-48*time.Hour))
	mk("15:00", "pay_5", "failed", "cancelled", now)

	checker := &fakeChecker{
		paid: map[uint]bool{recent: true},
		fail: map[uint]bool{failing: true},
	}
	r := NewReconciler(repo, checker, time.Minute, retry.Policy{Attempts: 1}, zap.NewNop())

	paid := r.Sweep(context.Background())

	assert.Equal(t, 1, paid)
	assert.ElementsMatch(t, []uint{recent, failing}, checker.seen)
}

func TestRunDisabledReturnsImmediately(t *testing.T) {
	r := NewReconciler(nil, &fakeChecker{}, 0, retry.Policy{Attempts: 1}, zap.NewNop())

	done := make(chan struct{})
	go func() {
		r.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return with interval 0")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	gdb := dbtest.Open(t)
	r := NewReconciler(repository.NewAppointmentGormRepository(gdb), &fakeChecker{}, 10*time.Millisecond, retry.Policy{Attempts: 1}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestSweepPagesThroughBacklog(t *testing.T) {
	gdb := dbtest.Open(t)
	repo := repository.NewAppointmentGormRepository(gdb)

	var ids []uint
	for _, slot := range []string{"09:00", "10:00", "11:00", "12:00", "14:00"} {
		ap := models.Appointment{
			ServiceID:       2,
			AppointmentDate: "2025-03-05",
			AppointmentTime: slot,
			Status:          "pending",
			PaymentStatus:   "pending",
			PaymentChargeID: "pay_" + slot,
			TotalAmount:     decimal.RequireFromString("20.00"),
		}
		require.NoError(t, gdb.Omit("User", "Service", "Location").Create(&ap).Error)
		ids = append(ids, ap.ID)
	}

	checker := &fakeChecker{}
	r := NewReconciler(repo, checker, time.Minute, retry.Policy{Attempts: 1}, zap.NewNop())
	r.batch = 2

	for i := 0; i < 4; i++ {
		r.Sweep(context.Background())
	}

	// três lotes cobrem a fila inteira; o quarto recomeça do início
	assert.Equal(t, append(append([]uint{}, ids...), ids[0], ids[1]), checker.seen)
}
