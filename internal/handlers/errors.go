package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/companion-booking/internal/httperr"
)

type errorSpec struct {
	status  int
	message string
}

// businessErrors é a única tabela código → status HTTP.
var businessErrors = map[string]errorSpec{
	// 400
	"invalid_request":        {http.StatusBadRequest, "Dados inválidos."},
	"invalid_date":           {http.StatusBadRequest, "Data inválida. Use dd-mm-aaaa."},
	"invalid_time":           {http.StatusBadRequest, "Horário inválido."},
	"invalid_service":        {http.StatusBadRequest, "Serviço inválido."},
	"invalid_email":          {http.StatusBadRequest, "E-mail inválido."},
	"invalid_cpf":            {http.StatusBadRequest, "CPF inválido."},
	"cpf_required":           {http.StatusBadRequest, "Informe o CPF para pagamento via PIX."},
	"email_required":         {http.StatusBadRequest, "Informe o e-mail."},
	"unrecognized_user_type": {http.StatusBadRequest, "Não foi possível identificar o tipo de usuário."},
	"invalid_id":             {http.StatusBadRequest, "Identificador inválido."},

	// 401
	"wrong_password": {http.StatusUnauthorized, "Senha incorreta."},

	// 404
	"service_not_found":     {http.StatusNotFound, "Serviço não encontrado."},
	"user_not_found":        {http.StatusNotFound, "Usuário não encontrado."},
	"appointment_not_found": {http.StatusNotFound, "Agendamento não encontrado."},

	// 409
	"slot_unavailable": {http.StatusConflict, "Este horário não está mais disponível."},

	// 502
	"payment_failed": {http.StatusBadGateway, "Não foi possível gerar o pagamento PIX."},
}

// writeError traduz o erro do use case. Detalhes só saem fora de produção.
func writeError(
	c *gin.Context,
	log *zap.Logger,
	production bool,
	err error,
) {

	code := httperr.CodeOf(err)
	spec, known := businessErrors[code]

	if !known {
		log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		if production {
			httperr.Internal(c, "internal_error", "Erro interno. Tente novamente.")
			return
		}
		httperr.WriteDetailed(c, http.StatusInternalServerError, "internal_error", "Erro interno. Tente novamente.", err.Error())
		return
	}

	if detail := httperr.DetailOf(err); detail != "" && !production {
		httperr.WriteDetailed(c, spec.status, code, spec.message, detail)
		return
	}
	httperr.Write(c, spec.status, code, spec.message)
}
