package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/companion-booking/internal/dto"
	"github.com/BruksfildServices01/companion-booking/internal/httperr"
	ucAppointment "github.com/BruksfildServices01/companion-booking/internal/usecase/appointment"
)

type UserHandler struct {
	check *ucAppointment.CheckUser

	production bool
	log        *zap.Logger
}

func NewUserHandler(check *ucAppointment.CheckUser, production bool, log *zap.Logger) *UserHandler {
	return &UserHandler{check: check, production: production, log: log}
}

// POST /api/appointments/check-user
func (h *UserHandler) CheckUser(c *gin.Context) {
	var req dto.CheckUserRequest
	if err := c.ShouldBind(&req); err != nil {
		httperr.BadRequest(c, "email_required", "Informe o e-mail.")
		return
	}

	res, err := h.check.Execute(c.Request.Context(), ucAppointment.CheckUserInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, h.log, h.production, err)
		return
	}

	if !res.Authenticated {
		exists := res.Exists
		msg := "E-mail disponível."
		if exists {
			msg = "E-mail já cadastrado."
		}
		c.JSON(http.StatusOK, dto.CheckUserResponse{Success: true, Exists: &exists, Message: msg})
		return
	}

	if res.UserID == nil {
		c.JSON(http.StatusOK, dto.CheckUserResponse{Success: false, Message: "Usuário não encontrado."})
		return
	}

	c.JSON(http.StatusOK, dto.CheckUserResponse{
		Success: true,
		UserID:  res.UserID,
		Message: "Usuário encontrado.",
	})
}
