package models

import "time"

type AuditLog struct {
	ID uint `gorm:"primaryKey" json:"id"`

	AppointmentID *uint  `gorm:"index" json:"appointment_id"`
	UserID        *uint  `json:"user_id"`
	Action        string `gorm:"size:50;not null" json:"action"`

	Metadata string `gorm:"type:text" json:"metadata"`

	CreatedAt time.Time `json:"created_at"`
}
