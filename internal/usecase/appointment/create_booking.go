package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/companion-booking/internal/audit"
	domain "github.com/BruksfildServices01/companion-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/companion-booking/internal/httperr"
	"github.com/BruksfildServices01/companion-booking/internal/models"
	"github.com/BruksfildServices01/companion-booking/internal/payment"
	"github.com/BruksfildServices01/companion-booking/internal/slotlock"
	"github.com/BruksfildServices01/companion-booking/internal/telemetry"
	"github.com/BruksfildServices01/companion-booking/internal/timezone"
	"github.com/BruksfildServices01/companion-booking/internal/validators"
)

const archiveTimeout = 30 * time.Second

// ======================================================
// OUTPUT
// ======================================================

type BookingResult struct {
	AppointmentID uint
	ChargeID      string
	PaymentURL    string
	PixQRCode     string
	PixCopyPaste  string
	Value         decimal.Decimal
	ServiceName   string
	Warnings      []string
}

// QRArchiver é satisfeito por *qrarchive.Archiver.
type QRArchiver interface {
	Archive(ctx context.Context, appointmentID uint, encodedPNG string) (string, error)
}

// ======================================================
// USE CASE
// ======================================================

type CreateBooking struct {
	repo    domain.Repository
	gateway payment.Gateway
	locker  slotlock.Locker
	audit   *audit.Dispatcher
	metrics *telemetry.Metrics
	log     *zap.Logger

	archiver QRArchiver
	resolver validators.Resolver
	now      func() time.Time
}

func NewCreateBooking(
	repo domain.Repository,
	gateway payment.Gateway,
	locker slotlock.Locker,
	audit *audit.Dispatcher,
	metrics *telemetry.Metrics,
	log *zap.Logger,
) *CreateBooking {
	return &CreateBooking{
		repo:    repo,
		gateway: gateway,
		locker:  locker,
		audit:   audit,
		metrics: metrics,
		log:     log.Named("booking"),
		now:     timezone.Now,
	}
}

// WithArchiver liga o arquivamento do QR em object storage.
func (uc *CreateBooking) WithArchiver(a QRArchiver) *CreateBooking {
	uc.archiver = a
	return uc
}

// WithEmailResolver liga a checagem MX/A do domínio do e-mail.
func (uc *CreateBooking) WithEmailResolver(r validators.Resolver) *CreateBooking {
	uc.resolver = r
	return uc
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateBooking) Execute(
	ctx context.Context,
	form BookingForm,
) (*BookingResult, error) {

	// --------------------------------------------------
	// 1️⃣ Normalização e validação do formulário
	// --------------------------------------------------
	req, err := form.normalize()
	if err != nil {
		return nil, err
	}

	if uc.resolver != nil && req.Email != "" &&
		!validators.IsEmailDomainValid(ctx, uc.resolver, req.Email) {
		return nil, httperr.ErrBusinessDetail("invalid_email", req.Email)
	}

	// --------------------------------------------------
	// 2️⃣ Trava do horário
	// --------------------------------------------------
	release, err := uc.locker.Acquire(ctx, req.Date, req.Time)
	if errors.Is(err, slotlock.ErrNotAcquired) {
		return nil, httperr.ErrBusiness("slot_unavailable")
	}
	if err != nil {
		return nil, err
	}
	defer release()

	// --------------------------------------------------
	// 3️⃣ Fase 1: usuário + agendamento numa transação
	// --------------------------------------------------
	var (
		user     *models.User
		service  *models.Service
		ap       *models.Appointment
		cpf      string
		warnings []string
	)

	err = uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		var err error

		user, warnings, err = resolveUser(ctx, tx, req, uc.log)
		if err != nil {
			return err
		}

		cpf, err = chargeCPF(req, user)
		if err != nil {
			return err
		}

		service, err = tx.GetService(ctx, req.ServiceID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperr.ErrBusiness("service_not_found")
		}
		if err != nil {
			return err
		}

		taken, err := tx.IsSlotTaken(ctx, req.Date, req.Time)
		if err != nil {
			return err
		}
		if taken {
			return httperr.ErrBusiness("slot_unavailable")
		}

		status, paymentStatus := domain.InitialStatus()
		userID := user.ID

		ap = &models.Appointment{
			UserID:          &userID,
			ServiceID:       service.ID,
			LocationID:      req.LocationID,
			AppointmentDate: req.Date,
			AppointmentTime: req.Time,
			Status:          string(status),
			PaymentStatus:   string(paymentStatus),
			PaymentMethod:   uc.gateway.Method(),
			TotalAmount:     service.Price,
		}
		return tx.CreateAppointment(ctx, ap)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info("appointment created",
		zap.Uint("appointment_id", ap.ID),
		zap.Uint("user_id", user.ID),
		zap.String("date", ap.AppointmentDate),
		zap.String("time", ap.AppointmentTime),
		zap.String("total", ap.TotalAmount.StringFixed(2)),
	)

	uc.audit.Dispatch(audit.Event{
		AppointmentID: &ap.ID,
		UserID:        ap.UserID,
		Action:        audit.ActionAppointmentCreated,
		Metadata: map[string]any{
			"service_id": service.ID,
			"date":       ap.AppointmentDate,
			"time":       ap.AppointmentTime,
		},
	})

	// --------------------------------------------------
	// 4️⃣ Gateway: cliente, cobrança e QR
	// --------------------------------------------------
	charge, qr, err := uc.provision(ctx, user, cpf, ap)
	if err != nil {
		return nil, uc.compensate(ctx, ap, err)
	}

	// --------------------------------------------------
	// 5️⃣ Fase 2: artefatos da cobrança
	// --------------------------------------------------
	details := domain.ChargeDetails{
		ChargeID:      charge.ID,
		PaymentMethod: uc.gateway.Method(),
		InvoiceURL:    charge.InvoiceURL,
		QRCode:        qr.EncodedImage,
		CopyPaste:     qr.Payload,
	}
	if err := uc.repo.AttachCharge(ctx, ap.ID, details); err != nil {
		return nil, uc.compensate(ctx, ap, fmt.Errorf("persist charge: %w", err))
	}

	uc.audit.Dispatch(audit.Event{
		AppointmentID: &ap.ID,
		UserID:        ap.UserID,
		Action:        audit.ActionPaymentChargeCreated,
		Metadata: map[string]any{
			"charge_id": charge.ID,
			"method":    details.PaymentMethod,
			"value":     ap.TotalAmount.StringFixed(2),
		},
	})
	uc.metrics.BookingsCreated.Add(ctx, 1)

	// --------------------------------------------------
	// 6️⃣ Arquivo do QR (melhor esforço)
	// --------------------------------------------------
	uc.archiveAsync(ap.ID, qr.EncodedImage)

	return &BookingResult{
		AppointmentID: ap.ID,
		ChargeID:      charge.ID,
		PaymentURL:    charge.InvoiceURL,
		PixQRCode:     qr.EncodedImage,
		PixCopyPaste:  qr.Payload,
		Value:         ap.TotalAmount,
		ServiceName:   service.Name,
		Warnings:      warnings,
	}, nil
}

// chargeCPF escolhe o CPF do formulário ou, na falta, o do cadastro.
func chargeCPF(req bookingRequest, user *models.User) (string, error) {
	if req.CPF != "" {
		return req.CPF, nil
	}
	if user.CPF == "" {
		return "", httperr.ErrBusiness("cpf_required")
	}
	cpf, err := validators.ValidateCPF(user.CPF)
	if err != nil {
		return "", httperr.ErrBusiness("invalid_cpf")
	}
	return cpf, nil
}

func (uc *CreateBooking) provision(
	ctx context.Context,
	user *models.User,
	cpf string,
	ap *models.Appointment,
) (*payment.Charge, payment.QRCode, error) {

	var qr payment.QRCode

	customer, err := uc.gateway.GetOrCreateCustomer(ctx, payment.CustomerInput{
		Name:    user.Name,
		Email:   user.Email,
		Phone:   user.Contact,
		CPFCNPJ: cpf,
	})
	if err != nil {
		return nil, qr, err
	}
	if customer == nil || customer.ID == "" {
		return nil, qr, errors.New("gateway returned a customer without id")
	}

	if user.CPF == "" {
		if err := uc.repo.UpdateUser(ctx, user.ID, map[string]any{"cpf": cpf}); err != nil {
			uc.log.Warn("cpf backfill failed", zap.Uint("user_id", user.ID), zap.Error(err))
		} else {
			user.CPF = cpf
		}
	}

	charge, err := uc.gateway.CreatePixCharge(ctx, payment.ChargeInput{
		CustomerID:        customer.ID,
		Value:             ap.TotalAmount,
		DueDate:           uc.dueDate(ap.AppointmentDate),
		Description:       fmt.Sprintf("Agendamento #%d - %s", ap.ID, user.Name),
		ExternalReference: fmt.Sprintf("appointment_%d", ap.ID),
		PayerEmail:        user.Email,
		PayerName:         user.Name,
		PayerCPF:          cpf,
	})
	if err != nil {
		return nil, qr, err
	}
	if charge == nil || charge.ID == "" {
		return nil, qr, errors.New("gateway returned a charge without id")
	}

	uc.log.Info("pix charge created",
		zap.Uint("appointment_id", ap.ID),
		zap.String("charge_id", charge.ID),
	)

	fetched, _ := uc.gateway.GetPixQRCode(ctx, charge.ID)
	if fetched != nil {
		qr = *fetched
	}
	if qr.EncodedImage == "" {
		qr.EncodedImage = charge.QRCodeImage
	}
	if qr.Payload == "" {
		qr.Payload = charge.QRCodeText
	}

	return charge, qr, nil
}

// dueDate: a data do agendamento, ou hoje quando ela já passou.
func (uc *CreateBooking) dueDate(date string) string {
	today := timezone.Today(uc.now())
	if date < today {
		return today
	}
	return date
}

// compensate cancela o agendamento para liberar o horário e devolve
// payment_failed com a mensagem do provedor.
func (uc *CreateBooking) compensate(
	ctx context.Context,
	ap *models.Appointment,
	cause error,
) error {

	// persiste mesmo que o cliente tenha desconectado
	ctx = context.WithoutCancel(ctx)

	if err := domain.Compensate(ap, cause.Error()); err != nil {
		uc.log.Error("compensation refused", zap.Uint("appointment_id", ap.ID), zap.Error(err))
	} else if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		uc.log.Error("compensation not persisted", zap.Uint("appointment_id", ap.ID), zap.Error(err))
	}

	uc.log.Warn("booking compensated",
		zap.Uint("appointment_id", ap.ID),
		zap.Error(cause),
	)

	uc.audit.Dispatch(audit.Event{
		AppointmentID: &ap.ID,
		UserID:        ap.UserID,
		Action:        audit.ActionBookingCompensated,
		Metadata:      map[string]any{"reason": cause.Error()},
	})
	uc.metrics.BookingsCompensated.Add(ctx, 1)

	return httperr.ErrBusinessDetail("payment_failed", cause.Error())
}

func (uc *CreateBooking) archiveAsync(id uint, encoded string) {
	if uc.archiver == nil || encoded == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()

		if _, err := uc.archiver.Archive(ctx, id, encoded); err != nil {
			uc.log.Warn("pix qr archive failed", zap.Uint("appointment_id", id), zap.Error(err))
		}
	}()
}
