package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/companion-booking/internal/dto"
	"github.com/BruksfildServices01/companion-booking/internal/httperr"
	ucAppointment "github.com/BruksfildServices01/companion-booking/internal/usecase/appointment"
)

type PaymentHandler struct {
	status *ucAppointment.CheckPaymentStatus
	done   *ucAppointment.GetAppointmentDone

	production bool
	log        *zap.Logger
}

func NewPaymentHandler(
	status *ucAppointment.CheckPaymentStatus,
	done *ucAppointment.GetAppointmentDone,
	production bool,
	log *zap.Logger,
) *PaymentHandler {
	return &PaymentHandler{
		status:     status,
		done:       done,
		production: production,
		log:        log,
	}
}

func appointmentID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		httperr.BadRequest(c, "invalid_id", "Identificador inválido.")
		return 0, false
	}
	return uint(id), true
}

// GET /appointments/:id/payment-status
func (h *PaymentHandler) PaymentStatus(c *gin.Context) {
	id, ok := appointmentID(c)
	if !ok {
		return
	}

	res, err := h.status.Execute(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, h.production, err)
		return
	}

	c.JSON(http.StatusOK, dto.PaymentStatusResponse{
		Success:        true,
		Paid:           res.Paid,
		Status:         res.Status,
		ProviderStatus: res.ProviderStatus,
		Message:        res.Message,
		GatewayError:   res.GatewayError,
	})
}

// GET /appointments/:id/done
func (h *PaymentHandler) Done(c *gin.Context) {
	id, ok := appointmentID(c)
	if !ok {
		return
	}

	res, err := h.done.Execute(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, h.production, err)
		return
	}

	c.JSON(http.StatusOK, dto.AppointmentDoneResponse{
		Success:        true,
		AppointmentID:  res.AppointmentID,
		UserRegistered: res.UserRegistered,
		UserEmail:      res.UserEmail,
	})
}
