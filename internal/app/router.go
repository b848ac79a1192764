package app

import (
	smarthttp "github.com/deangilmoreremix/smartcrm-backend/internal/http"
	"github.com/deangilmoreremix/smartcrm-backend/internal/observability"
	"github.com/deangilmoreremix/smartcrm-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, metrics *observability.Metrics, h Handlers, mw Middleware) *smarthttp.Server {
	return smarthttp.NewServer(smarthttp.RouterConfig{
		Logger:  log,
		Metrics: metrics,
		Tracing: observability.TracingEnabled(),

		AuthHandler:    h.Auth,
		AuthMiddleware: mw.Auth,

		UserHandler:         h.User,
		ContactHandler:      h.Contact,
		DealHandler:         h.Deal,
		ActivityHandler:     h.Activity,
		EmailHandler:        h.Email,
		SMSHandler:          h.SMS,
		SequenceHandler:     h.Sequence,
		WebhookHandler:      h.Webhook,
		AnalyticsHandler:    h.Analytics,
		NotificationHandler: h.Notification,
		RealtimeHandler:     h.Realtime,

		HealthHandler: h.Health,
	})
}
