package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deangilmoreremix/smartcrm-backend/internal/http/response"
	"github.com/deangilmoreremix/smartcrm-backend/internal/services"
)

type SMSHandler struct {
	smsService services.SMSService
}

func NewSMSHandler(smsService services.SMSService) *SMSHandler {
	return &SMSHandler{smsService: smsService}
}

func (sh *SMSHandler) Send(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req services.SendSMSInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	msg, err := sh.smsService.Send(c.Request.Context(), userID, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, msg)
}
