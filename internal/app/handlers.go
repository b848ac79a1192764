package app

import (
	"gorm.io/gorm"

	httpH "github.com/deangilmoreremix/smartcrm-backend/internal/http/handlers"
	"github.com/deangilmoreremix/smartcrm-backend/internal/platform/logger"
	"github.com/deangilmoreremix/smartcrm-backend/internal/realtime"
)

type Handlers struct {
	Auth         *httpH.AuthHandler
	User         *httpH.UserHandler
	Contact      *httpH.ContactHandler
	Deal         *httpH.DealHandler
	Activity     *httpH.ActivityHandler
	Email        *httpH.EmailHandler
	SMS          *httpH.SMSHandler
	Sequence     *httpH.SequenceHandler
	Webhook      *httpH.WebhookHandler
	Analytics    *httpH.AnalyticsHandler
	Notification *httpH.NotificationHandler
	Realtime     *httpH.RealtimeHandler
	Health       *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, s Services, hub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:         httpH.NewAuthHandler(s.Auth),
		User:         httpH.NewUserHandler(s.User),
		Contact:      httpH.NewContactHandler(s.Contact, s.Activity, s.Enrichment),
		Deal:         httpH.NewDealHandler(s.Deal),
		Activity:     httpH.NewActivityHandler(s.Activity),
		Email:        httpH.NewEmailHandler(s.Email),
		SMS:          httpH.NewSMSHandler(s.SMS),
		Sequence:     httpH.NewSequenceHandler(s.Sequence),
		Webhook:      httpH.NewWebhookHandler(s.Webhook),
		Analytics:    httpH.NewAnalyticsHandler(s.Analytics),
		Notification: httpH.NewNotificationHandler(s.Notification),
		Realtime:     httpH.NewRealtimeHandler(log, hub),
		Health:       httpH.NewHealthHandler(db),
	}
}
