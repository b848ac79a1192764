package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/deangilmoreremix/smartcrm-backend/internal/jobs"
	"github.com/deangilmoreremix/smartcrm-backend/internal/platform/logger"
	"github.com/deangilmoreremix/smartcrm-backend/internal/realtime"
	"github.com/deangilmoreremix/smartcrm-backend/internal/rules"
	"github.com/deangilmoreremix/smartcrm-backend/internal/services"
)

type Services struct {
	Ruleset *rules.Ruleset

	AI       services.AIProvider
	Notifier services.Notifier

	Auth         services.AuthService
	User         services.UserService
	Contact      services.ContactService
	Deal         services.DealService
	Activity     services.ActivityService
	Email        services.EmailService
	SMS          services.SMSService
	Sequence     services.SequenceService
	Enrichment   services.EnrichmentService
	Analytics    services.AnalyticsService
	Notification services.NotificationService
	Webhook      services.WebhookService

	SendWorker *jobs.SendWorker
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, clients Clients, hub *realtime.SSEHub) (Services, error) {
	log.Info("Wiring services...")

	ruleset, err := rules.Load(cfg.RulesPath)
	if err != nil {
		return Services{}, fmt.Errorf("load rules %q: %w", cfg.RulesPath, err)
	}

	var emitter services.SSEEmitter
	if clients.Bus != nil {
		emitter = &services.RedisEmitter{Bus: clients.Bus}
	} else {
		emitter = &services.HubEmitter{Hub: hub}
	}
	notifier := services.NewNotifier(log, r.Notification, emitter)

	ai, err := services.NewAIProvider(log, r.AICallLog, cfg.AIProvider, clients.OpenAI, clients.Gemini)
	if err != nil {
		return Services{}, fmt.Errorf("init ai provider: %w", err)
	}

	authService := services.NewAuthService(db, log, r.User, r.UserToken, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	userService := services.NewUserService(db, log, r.User)
	contactService := services.NewContactService(db, log, ruleset, r.Contact, r.Activity, notifier)
	dealService := services.NewDealService(db, log, r.Deal, r.Contact, r.Activity, notifier)
	activityService := services.NewActivityService(db, log, r.Activity, r.Contact, r.Deal)
	emailService := services.NewEmailService(db, log, ai, clients.SendGrid, r.Contact, r.OutboundMessage, r.Activity)
	smsService := services.NewSMSService(db, log, clients.Twilio, cfg.SMSDailyLimit, r.Contact, r.OutboundMessage, r.Activity)
	sequenceService := services.NewSequenceService(db, log, ai, r.Contact, r.Sequence, r.ScheduledSend, r.Activity, notifier)
	enrichmentService := services.NewEnrichmentService(db, log, ai, ruleset, r.Contact, contactService)
	analyticsService := services.NewAnalyticsService(db, log, r.Contact, r.Deal, r.Activity)
	notificationService := services.NewNotificationService(db, log, r.Notification)
	webhookService := services.NewWebhookService(db, log, cfg.WebhookSecret, r.User, r.WebhookEvent, contactService, dealService, emailService, r.Activity, notifier)

	worker := jobs.NewSendWorker(log, db, jobs.WorkerConfigFromEnv(), r.ScheduledSend, r.Sequence, r.Contact, emailService, smsService, notifier)

	return Services{
		Ruleset:      ruleset,
		AI:           ai,
		Notifier:     notifier,
		Auth:         authService,
		User:         userService,
		Contact:      contactService,
		Deal:         dealService,
		Activity:     activityService,
		Email:        emailService,
		SMS:          smsService,
		Sequence:     sequenceService,
		Enrichment:   enrichmentService,
		Analytics:    analyticsService,
		Notification: notificationService,
		Webhook:      webhookService,
		SendWorker:   worker,
	}, nil
}
