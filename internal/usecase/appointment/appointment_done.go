package appointment

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/companion-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/companion-booking/internal/httperr"
)

type AppointmentDoneResult struct {
	AppointmentID  uint
	UserRegistered bool
	UserEmail      string
}

type GetAppointmentDone struct {
	repo domain.Repository
}

func NewGetAppointmentDone(repo domain.Repository) *GetAppointmentDone {
	return &GetAppointmentDone{repo: repo}
}

// Execute informa se este agendamento foi o primeiro pago do usuário, o que
// significa que o cadastro foi concluído por ele.
func (uc *GetAppointmentDone) Execute(
	ctx context.Context,
	id uint,
) (*AppointmentDoneResult, error) {

	ap, err := uc.repo.GetAppointment(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}
	if err != nil {
		return nil, err
	}

	res := &AppointmentDoneResult{AppointmentID: ap.ID}

	if ap.UserID == nil || ap.PaymentStatus != string(domain.PaymentPaid) {
		return res, nil
	}

	paid, err := uc.repo.CountPaidAppointmentsUpTo(ctx, *ap.UserID, ap.ID)
	if err != nil {
		return nil, err
	}

	if paid == 1 {
		res.UserRegistered = true
		if ap.User != nil {
			res.UserEmail = ap.User.Email
		}
	}
	return res, nil
}
