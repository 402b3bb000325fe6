package dto

import "github.com/BruksfildServices01/companion-booking/internal/domain/appointment"

// ======================================================
// BOOKING
// ======================================================

type BookingResponse struct {
	Success       bool     `json:"success"`
	Message       string   `json:"message"`
	AppointmentID uint     `json:"appointmentId"`
	PaymentURL    string   `json:"paymentUrl"`
	ChargeID      string   `json:"chargeId"`
	PixQRCode     string   `json:"pixQrCode"`
	PixCopiaECola string   `json:"pixCopiaECola"`
	Value         float64  `json:"value"`
	ServiceName   string   `json:"serviceName"`
	Warnings      []string `json:"warnings,omitempty"`
}

// ======================================================
// AVAILABILITY
// ======================================================

type DurationRequest struct {
	ServiceID uint   `json:"service_id" form:"service_id"`
	Date      string `json:"date" form:"date" binding:"required"`
}

type TimeSlotsResponse struct {
	Success   bool                   `json:"success"`
	TimeSlots []appointment.TimeSlot `json:"timeSlots"`
}

// ======================================================
// PAYMENT STATUS
// ======================================================

type PaymentStatusResponse struct {
	Success        bool   `json:"success"`
	Paid           bool   `json:"paid"`
	Status         string `json:"status"`
	ProviderStatus string `json:"providerStatus,omitempty"`
	Message        string `json:"message"`
	GatewayError   bool   `json:"gatewayError,omitempty"`
}

type AppointmentDoneResponse struct {
	Success        bool   `json:"success"`
	AppointmentID  uint   `json:"appointmentId"`
	UserRegistered bool   `json:"userRegistered"`
	UserEmail      string `json:"userEmail,omitempty"`
}

// ======================================================
// USERS
// ======================================================

type CheckUserRequest struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password"`
}

type CheckUserResponse struct {
	Success bool   `json:"success"`
	Exists  *bool  `json:"exists,omitempty"`
	UserID  *uint  `json:"userId,omitempty"`
	Message string `json:"message"`
}
