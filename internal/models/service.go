package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Service é a oferta agendável. DurationMinutes = 0 indica serviço sem horário.
type Service struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name            string          `gorm:"size:100;not null" json:"name"`
	Description     string          `gorm:"type:text" json:"description"`
	Price           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	DurationMinutes int             `gorm:"not null;default:0" json:"duration_minutes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
