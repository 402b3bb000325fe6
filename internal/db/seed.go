package db

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/companion-booking/internal/models"
)

type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
}

var defaultServices = []models.Service{
	{ID: 2, Name: "Conversa Rápida", Price: decimal.RequireFromString("20.00"), DurationMinutes: 30},
	{ID: 3, Name: "Conversa Profunda", Price: decimal.RequireFromString("40.00"), DurationMinutes: 60},
	{ID: 4, Name: "Mensagem de texto e Áudio", Price: decimal.RequireFromString("30.00")},
	{ID: 5, Name: "Assinatura Mensal texto e áudio", Price: decimal.RequireFromString("150.00")},
	{ID: 6, Name: "Assinatura Mensal", Price: decimal.RequireFromString("240.00")},
	{ID: 8, Name: "Assinatura Semanal", Price: decimal.RequireFromString("70.00")},
}

var defaultLocations = []models.Location{
	{ID: 2, Name: "Instagram"},
	{ID: 3, Name: "Whatsapp"},
	{ID: 4, Name: "Chat do site"},
}

// Seed inserts the catalog and the admin account. Existing rows are left
// untouched, so it is safe on every boot.
func Seed(db *gorm.DB, opts SeedOptions) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, s := range defaultServices {
			s := s
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&s).Error; err != nil {
				return fmt.Errorf("seed service %d: %w", s.ID, err)
			}
		}

		for _, l := range defaultLocations {
			l := l
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&l).Error; err != nil {
				return fmt.Errorf("seed location %d: %w", l.ID, err)
			}
		}

		if opts.AdminEmail == "" || opts.AdminPassword == "" {
			return nil
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(opts.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		h := string(hash)

		admin := models.User{
			Name:         "Administrador",
			Email:        opts.AdminEmail,
			PasswordHash: &h,
			Type:         "existing",
			Role:         "admin",
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).Create(&admin).Error
	})
}
