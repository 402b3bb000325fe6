package models

import "time"

type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name         string  `gorm:"size:100;not null" json:"name"`
	Email        string  `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash *string `gorm:"size:255" json:"-"`
	Contact      string  `gorm:"size:20" json:"contact"`
	CPF          string  `gorm:"column:cpf;size:14" json:"-"`

	// origem da conta: new | existing | guest
	Type string `gorm:"column:type;size:20;default:'new'" json:"type"`
	Role string `gorm:"size:20;default:'client'" json:"role"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
