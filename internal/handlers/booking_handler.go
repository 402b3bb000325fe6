package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/companion-booking/internal/dto"
	"github.com/BruksfildServices01/companion-booking/internal/httperr"
	ucAppointment "github.com/BruksfildServices01/companion-booking/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	create       *ucAppointment.CreateBooking
	availability *ucAppointment.GetAvailability

	production bool
	log        *zap.Logger
}

func NewBookingHandler(
	create *ucAppointment.CreateBooking,
	availability *ucAppointment.GetAvailability,
	production bool,
	log *zap.Logger,
) *BookingHandler {
	return &BookingHandler{
		create:       create,
		availability: availability,
		production:   production,
		log:          log,
	}
}

// ======================================================
// POST /book
// ======================================================

func (h *BookingHandler) Book(c *gin.Context) {
	form, ok := bindBookingForm(c)
	if !ok {
		return
	}

	res, err := h.create.Execute(c.Request.Context(), form)
	if err != nil {
		writeError(c, h.log, h.production, err)
		return
	}

	c.JSON(http.StatusOK, dto.BookingResponse{
		Success:       true,
		Message:       "Agendamento criado. Pague o PIX para confirmar.",
		AppointmentID: res.AppointmentID,
		PaymentURL:    res.PaymentURL,
		ChargeID:      res.ChargeID,
		PixQRCode:     res.PixQRCode,
		PixCopiaECola: res.PixCopyPaste,
		Value:         res.Value.InexactFloat64(),
		ServiceName:   res.ServiceName,
		Warnings:      res.Warnings,
	})
}

// bindBookingForm aceita JSON ou form-urlencoded/multipart.
func bindBookingForm(c *gin.Context) (ucAppointment.BookingForm, bool) {
	var form ucAppointment.BookingForm

	if strings.HasPrefix(c.ContentType(), gin.MIMEJSON) {
		if err := c.ShouldBindJSON(&form); err != nil {
			httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
			return form, false
		}
		return form, true
	}

	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		if err := c.Request.ParseMultipartForm(1 << 20); err != nil {
			httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
			return form, false
		}
	} else if err := c.Request.ParseForm(); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return form, false
	}

	return ucAppointment.BookingFormFromValues(c.Request.PostForm), true
}

// ======================================================
// POST /appointments/duration
// ======================================================

func (h *BookingHandler) Duration(c *gin.Context) {
	var req dto.DurationRequest
	if err := c.ShouldBind(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Informe a data.")
		return
	}

	slots, err := h.availability.Execute(c.Request.Context(), ucAppointment.AvailabilityInput{
		ServiceID: req.ServiceID,
		Date:      req.Date,
	})
	if err != nil {
		writeError(c, h.log, h.production, err)
		return
	}

	c.JSON(http.StatusOK, dto.TimeSlotsResponse{
		Success:   true,
		TimeSlots: slots,
	})
}
