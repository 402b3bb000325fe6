package appointment

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/companion-booking/internal/audit"
	domain "github.com/BruksfildServices01/companion-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/companion-booking/internal/httperr"
	"github.com/BruksfildServices01/companion-booking/internal/models"
	"github.com/BruksfildServices01/companion-booking/internal/payment"
	"github.com/BruksfildServices01/companion-booking/internal/retry"
	"github.com/BruksfildServices01/companion-booking/internal/telemetry"
)

const (
	msgAwaitingCharge  = "Aguardando criação do pagamento"
	msgPaid            = "Pagamento confirmado!"
	msgAwaitingPayment = "Aguardando confirmação do pagamento"
	msgGatewayFallback = "Erro ao verificar no gateway, usando status do banco"
	msgInactive        = "Agendamento cancelado; o pagamento recebido será analisado"
)

type PaymentStatusResult struct {
	Paid           bool
	Status         string
	ProviderStatus string
	Message        string
	GatewayError   bool
}

type CheckPaymentStatus struct {
	repo    domain.Repository
	gateway payment.Gateway
	audit   *audit.Dispatcher
	metrics *telemetry.Metrics
	retry   retry.Policy
	log     *zap.Logger
}

func NewCheckPaymentStatus(
	repo domain.Repository,
	gateway payment.Gateway,
	audit *audit.Dispatcher,
	metrics *telemetry.Metrics,
	policy retry.Policy,
	log *zap.Logger,
) *CheckPaymentStatus {
	return &CheckPaymentStatus{
		repo:    repo,
		gateway: gateway,
		audit:   audit,
		metrics: metrics,
		retry:   policy,
		log:     log.Named("reconcile"),
	}
}

// Execute consulta o gateway e converge o estado local. É idempotente:
// polls concorrentes confirmam o pagamento uma única vez.
func (uc *CheckPaymentStatus) Execute(
	ctx context.Context,
	id uint,
) (*PaymentStatusResult, error) {

	// --------------------------------------------------
	// 1️⃣ Agendamento
	// --------------------------------------------------
	ap, err := retry.Do(ctx, uc.retry, func() (*models.Appointment, error) {
		return uc.repo.GetAppointment(ctx, id)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 2️⃣ Cobrança ainda não criada
	// --------------------------------------------------
	if ap.PaymentChargeID == "" {
		return &PaymentStatusResult{
			Paid:    false,
			Status:  string(domain.PaymentPending),
			Message: msgAwaitingCharge,
		}, nil
	}

	// --------------------------------------------------
	// 3️⃣ Gateway (erro → status do banco)
	// --------------------------------------------------
	res, err := uc.gateway.GetChargeStatus(ctx, ap.PaymentChargeID)
	if err != nil {
		uc.log.Warn("gateway status check failed, using local status",
			zap.Uint("appointment_id", ap.ID),
			zap.String("charge_id", ap.PaymentChargeID),
			zap.Error(err),
		)
		return localResult(ap), nil
	}

	if !res.Status.IsPaid() {
		return &PaymentStatusResult{
			Paid:           false,
			Status:         string(res.Status),
			ProviderStatus: res.Raw,
			Message:        msgAwaitingPayment,
		}, nil
	}

	// --------------------------------------------------
	// 4️⃣ Confirmação (uma vez só)
	// --------------------------------------------------
	if ap.PaymentStatus != string(domain.PaymentPaid) {
		if err := domain.CanConfirmPayment(domain.Status(ap.Status), domain.PaymentStatus(ap.PaymentStatus)); err != nil {
			uc.log.Warn("paid charge on inactive appointment",
				zap.Uint("appointment_id", ap.ID),
				zap.String("charge_id", ap.PaymentChargeID),
				zap.String("status", ap.Status),
				zap.String("payment_status", ap.PaymentStatus),
			)
			return inactiveResult(ap, res.Raw), nil
		}

		won, err := uc.confirm(ctx, ap, res.Raw)
		if err != nil {
			uc.log.Error("payment confirmation failed, using local status",
				zap.Uint("appointment_id", ap.ID),
				zap.String("charge_id", ap.PaymentChargeID),
				zap.Error(err),
			)
			return localResult(ap), nil
		}

		// outro poll confirmou ou o agendamento mudou entre a leitura e o UPDATE
		if !won {
			current, err := uc.repo.GetAppointment(ctx, ap.ID)
			if err != nil {
				return localResult(ap), nil
			}
			if current.PaymentStatus != string(domain.PaymentPaid) {
				return inactiveResult(current, res.Raw), nil
			}
		}
	}

	return &PaymentStatusResult{
		Paid:           true,
		Status:         string(res.Status),
		ProviderStatus: res.Raw,
		Message:        msgPaid,
	}, nil
}

func localResult(ap *models.Appointment) *PaymentStatusResult {
	status := ap.PaymentStatus
	if status == "" {
		status = string(domain.PaymentPending)
	}
	return &PaymentStatusResult{
		Paid:         status == string(domain.PaymentPaid),
		Status:       status,
		Message:      msgGatewayFallback,
		GatewayError: true,
	}
}

// inactiveResult: o gateway diz pago, mas o agendamento não aceita mais
// confirmação (cancelado, failed, refunded).
func inactiveResult(ap *models.Appointment, providerStatus string) *PaymentStatusResult {
	return &PaymentStatusResult{
		Paid:           ap.PaymentStatus == string(domain.PaymentPaid),
		Status:         ap.PaymentStatus,
		ProviderStatus: providerStatus,
		Message:        msgInactive,
	}
}

func (uc *CheckPaymentStatus) confirm(
	ctx context.Context,
	ap *models.Appointment,
	providerStatus string,
) (bool, error) {

	var (
		won      bool
		promoted bool
	)

	err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		var err error

		won, err = tx.MarkPaid(ctx, ap.ID)
		if err != nil || !won {
			return err
		}

		if ap.UserID == nil {
			uc.log.Warn("paid appointment has no user", zap.Uint("appointment_id", ap.ID))
			return nil
		}

		others, err := tx.CountOtherPaidAppointments(ctx, *ap.UserID, ap.ID)
		if err != nil {
			return err
		}
		if others > 0 {
			return nil
		}

		promoted, err = registerFirstPayment(ctx, tx, *ap.UserID)
		if err != nil {
			return err
		}

		ap.AdditionalDetails = domain.FirstPaymentDetails()
		return tx.UpdateAppointmentDetails(ctx, ap.ID, ap.AdditionalDetails)
	})
	if err != nil {
		return false, err
	}
	if !won {
		return false, nil
	}

	if err := domain.ConfirmPayment(ap); err != nil {
		uc.log.Warn("in-memory confirm diverged", zap.Uint("appointment_id", ap.ID), zap.Error(err))
	}

	uc.log.Info("payment confirmed",
		zap.Uint("appointment_id", ap.ID),
		zap.String("charge_id", ap.PaymentChargeID),
		zap.String("provider_status", providerStatus),
		zap.Bool("user_promoted", promoted),
	)

	uc.audit.Dispatch(audit.Event{
		AppointmentID: &ap.ID,
		UserID:        ap.UserID,
		Action:        audit.ActionPaymentConfirmed,
		Metadata:      map[string]any{"provider_status": providerStatus},
	})
	if promoted {
		uc.audit.Dispatch(audit.Event{
			AppointmentID: &ap.ID,
			UserID:        ap.UserID,
			Action:        audit.ActionUserPromoted,
		})
	}
	uc.metrics.PaymentsConfirmed.Add(ctx, 1)

	return true, nil
}

// registerFirstPayment: guest vira new; role vazia vira client; admin
// nunca é alterado.
func registerFirstPayment(
	ctx context.Context,
	tx domain.Repository,
	userID uint,
) (bool, error) {

	user, err := tx.GetUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if user.Role == domain.RoleAdmin {
		return false, nil
	}

	fields := map[string]any{}
	if user.Type == string(domain.OriginGuest) {
		fields["type"] = string(domain.OriginNew)
		fields["role"] = domain.RoleClient
	} else if user.Role == "" {
		fields["role"] = domain.RoleClient
	}

	if len(fields) == 0 {
		return false, nil
	}
	if err := tx.UpdateUser(ctx, user.ID, fields); err != nil {
		return false, err
	}
	return user.Type == string(domain.OriginGuest), nil
}
