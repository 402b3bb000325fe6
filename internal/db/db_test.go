package db_test

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/companion-booking/internal/db"
	"github.com/BruksfildServices01/companion-booking/internal/db/dbtest"
	"github.com/BruksfildServices01/companion-booking/internal/models"
)

func TestSeedIsIdempotent(t *testing.T) {
	gdb := dbtest.Open(t)

	require.NoError(t, db.Seed(gdb, db.SeedOptions{AdminEmail: "admin@x.com", AdminPassword: "s3cret"}))
	require.NoError(t, db.Seed(gdb, db.SeedOptions{AdminEmail: "admin@x.com", AdminPassword: "s3cret"}))

	var services int64
	require.NoError(t, gdb.Model(&models.Service{}).Count(&services).Error)
	assert.EqualValues(t, 6, services)

	var admins []models.User
	require.NoError(t, gdb.Where("role = ?", "admin").Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.NotNil(t, admins[0].PasswordHash)

	var quick models.Service
	require.NoError(t, gdb.First(&quick, 2).Error)
	assert.True(t, decimal.RequireFromString("20.00").Equal(quick.Price))
}

func TestActiveSlotIsUnique(t *testing.T) {
	gdb := dbtest.Open(t)

	mk := func(status string) *models.Appointment {
		return &models.Appointment{
			ServiceID:       2,
			AppointmentDate: "2025-03-05",
			AppointmentTime: "09:00",
			Status:          status,
			PaymentStatus:   "pending",
			TotalAmount:     decimal.RequireFromString("20.00"),
		}
	}

	require.NoError(t, gdb.Create(mk("cancelled")).Error)
	require.NoError(t, gdb.Create(mk("pending")).Error)

	err := gdb.Create(mk("confirmed")).Error
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, db.IsUniqueViolation(nil))
	assert.False(t, db.IsUniqueViolation(fmt.Errorf("boom")))
	assert.True(t, db.IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, db.IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
}
