package appointment

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/companion-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/companion-booking/internal/httperr"
	"github.com/BruksfildServices01/companion-booking/internal/models"
	"github.com/BruksfildServices01/companion-booking/internal/retry"
)

type AvailabilityInput struct {
	// ServiceID é opcional; quando informado precisa existir.
	ServiceID uint
	Date      string
}

type GetAvailability struct {
	repo  domain.Repository
	retry retry.Policy
}

func NewGetAvailability(repo domain.Repository, policy retry.Policy) *GetAvailability {
	return &GetAvailability{repo: repo, retry: policy}
}

// Execute lista os horários fixos do dia. Agendamentos pendentes de
// pagamento também ocupam o horário.
func (uc *GetAvailability) Execute(
	ctx context.Context,
	in AvailabilityInput,
) ([]domain.TimeSlot, error) {

	date, err := ParseFormDate(in.Date)
	if err != nil {
		return nil, err
	}

	if in.ServiceID != 0 {
		_, err := uc.repo.GetService(ctx, in.ServiceID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrBusiness("service_not_found")
		}
		if err != nil {
			return nil, err
		}
	}

	booked, err := retry.Do(ctx, uc.retry, func() ([]models.Appointment, error) {
		return uc.repo.ListActiveAppointmentsForDate(ctx, date)
	})
	if err != nil {
		return nil, err
	}

	return domain.BuildSlots(booked), nil
}
