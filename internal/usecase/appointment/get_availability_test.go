package appointment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/companion-booking/internal/httperr"
	"github.com/BruksfildServices01/companion-booking/internal/models"
	"github.com/BruksfildServices01/companion-booking/internal/retry"
)

func TestAvailabilityIgnoresCancelled(t *testing.T) {
	e := newEnv(t)
	e.createAppointment(t, models.Appointment{AppointmentDate: "2025-03-05", AppointmentTime: "09:00"})
	e.createAppointment(t, models.Appointment{AppointmentDate: "2025-03-05", AppointmentTime: "14:00", PaymentStatus: "paid", Status: "confirmed"})
	e.createAppointment(t, models.Appointment{AppointmentDate: "2025-03-05", AppointmentTime: "10:00", Status: "cancelled", PaymentStatus: "failed"})
	e.createAppointment(t, models.Appointment{AppointmentDate: "2025-03-06", AppointmentTime: "11:00"})

	uc := NewGetAvailability(e.repo, retry.Policy{Attempts: 2})
	slots, err := uc.Execute(context.Background(), AvailabilityInput{ServiceID: 2, Date: "05-03-2025"})
	require.NoError(t, err)

	busy := map[string]bool{}
	for _, s := range slots {
		if !s.Available {
			busy[s.Time] = true
		}
	}
	assert.Equal(t, map[string]bool{"09:00": true, "14:00": true}, busy)

	_, err = uc.Execute(context.Background(), AvailabilityInput{ServiceID: 99, Date: "05-03-2025"})
	assert.True(t, httperr.IsBusiness(err, "service_not_found"))

	_, err = uc.Execute(context.Background(), AvailabilityInput{Date: "2025/03/05"})
	assert.True(t, httperr.IsBusiness(err, "invalid_date"))
}
