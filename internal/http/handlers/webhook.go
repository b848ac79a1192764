package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/deangilmoreremix/smartcrm-backend/internal/http/response"
	"github.com/deangilmoreremix/smartcrm-backend/internal/services"
)

const webhookSecretHeader = "X-Webhook-Secret"

// Inbound payloads are capped; Zapier sends small JSON bodies.
const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	webhookService services.WebhookService
}

func NewWebhookHandler(webhookService services.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookService: webhookService}
}

func (wh *WebhookHandler) Zapier(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "unreadable_body", err)
		return
	}
	result, err := wh.webhookService.HandleZapier(c.Request.Context(), c.GetHeader(webhookSecretHeader), raw)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, result)
}

func (wh *WebhookHandler) ListRecent(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	events, err := wh.webhookService.ListRecent(c.Request.Context(), limit)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"events": events})
}
