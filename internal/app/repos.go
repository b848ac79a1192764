package app

import (
	"gorm.io/gorm"

	"github.com/deangilmoreremix/smartcrm-backend/internal/platform/logger"
	"github.com/deangilmoreremix/smartcrm-backend/internal/repos"
)

type Repos struct {
	User            repos.UserRepo
	UserToken       repos.UserTokenRepo
	Contact         repos.ContactRepo
	Deal            repos.DealRepo
	Activity        repos.ActivityRepo
	Sequence        repos.SequenceRepo
	ScheduledSend   repos.ScheduledSendRepo
	OutboundMessage repos.OutboundMessageRepo
	WebhookEvent    repos.WebhookEventRepo
	Notification    repos.NotificationRepo
	AICallLog       repos.AICallLogRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:            repos.NewUserRepo(db, log),
		UserToken:       repos.NewUserTokenRepo(db, log),
		Contact:         repos.NewContactRepo(db, log),
		Deal:            repos.NewDealRepo(db, log),
		Activity:        repos.NewActivityRepo(db, log),
		Sequence:        repos.NewSequenceRepo(db, log),
		ScheduledSend:   repos.NewScheduledSendRepo(db, log),
		OutboundMessage: repos.NewOutboundMessageRepo(db, log),
		WebhookEvent:    repos.NewWebhookEventRepo(db, log),
		Notification:    repos.NewNotificationRepo(db, log),
		AICallLog:       repos.NewAICallLogRepo(db, log),
	}
}
