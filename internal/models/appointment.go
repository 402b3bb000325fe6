package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	UserID *uint `gorm:"index" json:"user_id"`
	User   *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"user,omitempty"`

	ServiceID uint     `gorm:"not null" json:"service_id"`
	Service   *Service `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"service,omitempty"`

	LocationID *uint     `json:"location_id"`
	Location   *Location `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"location,omitempty"`

	// YYYY-MM-DD / HH:MM
	AppointmentDate string `gorm:"size:10;not null;index" json:"appointment_date"`
	AppointmentTime string `gorm:"size:5;not null" json:"appointment_time"`

	Status        string `gorm:"size:20;not null;default:'pending'" json:"status"`
	PaymentStatus string `gorm:"size:20;not null;default:'pending'" json:"payment_status"`

	PaymentMethod     string `gorm:"size:50" json:"payment_method"`
	PaymentChargeID   string `gorm:"size:100;index" json:"payment_charge_id"`
	PaymentInvoiceURL string `gorm:"size:255" json:"payment_invoice_url"`
	PixQRCode         string `gorm:"column:pix_qr_code;type:text" json:"pix_qr_code"`
	PixCode           string `gorm:"type:text" json:"pix_code"`
	PixQRArchiveKey   string `gorm:"column:pix_qr_archive_key;size:255" json:"pix_qr_archive_key"`

	// preço do serviço no momento do agendamento
	TotalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`

	AdditionalDetails string `gorm:"type:text" json:"additional_details"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
