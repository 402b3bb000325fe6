package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/companion-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/companion-booking/internal/models"
	"github.com/BruksfildServices01/companion-booking/internal/retry"
	usecase "github.com/BruksfildServices01/companion-booking/internal/usecase/appointment"
)

const (
	sweepWindow = 24 * time.Hour
	sweepLimit  = 100
)

// StatusChecker é satisfeito por *usecase.CheckPaymentStatus.
type StatusChecker interface {
	Execute(ctx context.Context, id uint) (*usecase.PaymentStatusResult, error)
}

// Reconciler repete o poll de status para cobranças pendentes, sem depender
// de o cliente manter a tela aberta.
type Reconciler struct {
	repo     domain.Repository
	checker  StatusChecker
	interval time.Duration
	retry    retry.Policy
	log      *zap.Logger
	now      func() time.Time

	// cursor é o último id varrido; volta a zero quando a fila acaba.
	batch  int
	cursor uint
}

func NewReconciler(
	repo domain.Repository,
	checker StatusChecker,
	interval time.Duration,
	policy retry.Policy,
	log *zap.Logger,
) *Reconciler {
	return &Reconciler{
		repo:     repo,
		checker:  checker,
		interval: interval,
		retry:    policy,
		log:      log.Named("reconciler"),
		now:      time.Now,
		batch:    sweepLimit,
	}
}

// Run bloqueia até ctx ser cancelado. Intervalo <= 0 desliga o worker.
func (r *Reconciler) Run(ctx context.Context) {
	if r.interval <= 0 {
		r.log.Info("reconciliation sweep disabled")
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.Info("reconciliation sweep started", zap.Duration("interval", r.interval))

	for {
		select {
		case <-ctx.Done():
			r.log.Info("reconciliation sweep stopped")
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep faz uma passada e devolve quantos pagamentos foram vistos como pagos.
// Cada chamada avança um lote; não é seguro chamar em paralelo.
func (r *Reconciler) Sweep(ctx context.Context) int {
	since := r.now().Add(-sweepWindow)

	pending, err := retry.Do(ctx, r.retry, func() ([]models.Appointment, error) {
		return r.repo.ListPendingCharges(ctx, since, r.cursor, r.batch)
	})
	if err != nil {
		r.log.Error("list pending charges failed", zap.Error(err))
		return 0
	}

	if len(pending) < r.batch {
		r.cursor = 0
	} else {
		r.cursor = pending[len(pending)-1].ID
	}

	paid := 0
	for _, ap := range pending {
		if ctx.Err() != nil {
			break
		}

		res, err := r.checker.Execute(ctx, ap.ID)
		if err != nil {
			r.log.Warn("reconcile failed", zap.Uint("appointment_id", ap.ID), zap.Error(err))
			continue
		}
		if res.Paid && !res.GatewayError {
			paid++
		}
	}

	if len(pending) > 0 {
		r.log.Info("reconciliation sweep done",
			zap.Int("pending", len(pending)),
			zap.Int("paid", paid),
		)
	}
	return paid
}
