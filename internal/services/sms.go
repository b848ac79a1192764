package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/deangilmoreremix/smartcrm-backend/internal/clients/twilio"
	"github.com/deangilmoreremix/smartcrm-backend/internal/observability"
	"github.com/deangilmoreremix/smartcrm-backend/internal/platform/apierr"
	"github.com/deangilmoreremix/smartcrm-backend/internal/platform/logger"
	"github.com/deangilmoreremix/smartcrm-backend/internal/repos"
	"github.com/deangilmoreremix/smartcrm-backend/internal/types"
)

type SendSMSInput struct {
	ContactID uuid.UUID `json:"contact_id"`
	To        string    `json:"to"`
	Body      string    `json:"body"`
}

type SMSService interface {
	Send(ctx context.Context, ownerID uuid.UUID, in SendSMSInput) (*types.OutboundMessage, error)
	SendToContact(ctx context.Context, ownerID uuid.UUID, contact *types.Contact, body string) (*types.OutboundMessage, error)
}

type smsService struct {
	db           *gorm.DB
	log          *logger.Logger
	sender       twilio.Client
	dailyLimit   int
	contactRepo  repos.ContactRepo
	outboundRepo repos.OutboundMessageRepo
	activityRepo repos.ActivityRepo
}

func NewSMSService(
	db *gorm.DB,
	log *logger.Logger,
	sender twilio.Client,
	dailyLimit int,
	contactRepo repos.ContactRepo,
	outboundRepo repos.OutboundMessageRepo,
	activityRepo repos.ActivityRepo,
) SMSService {
	if dailyLimit <= 0 {
		dailyLimit = 10
	}
	return &smsService{
		db:           db,
		log:          log.With("service", "SMSService"),
		sender:       sender,
		dailyLimit:   dailyLimit,
		contactRepo:  contactRepo,
		outboundRepo: outboundRepo,
		activityRepo: activityRepo,
	}
}

func (ss *smsService) Send(ctx context.Context, ownerID uuid.UUID, in SendSMSInput) (*types.OutboundMessage, error) {
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, apierr.New(http.StatusBadRequest, "missing_body", errors.New("message body required"))
	}

	var contact *types.Contact
	to := strings.TrimSpace(in.To)
	if in.ContactID != uuid.Nil {
		contacts, err := ss.contactRepo.GetByIDs(ctx, nil, []uuid.UUID{in.ContactID})
		if err != nil {
			return nil, fmt.Errorf("fetch contact: %w", err)
		}
		if len(contacts) == 0 || contacts[0].OwnerUserID != ownerID {
			return nil, apierr.New(http.StatusNotFound, "contact_not_found", fmt.Errorf("contact %s not found", in.ContactID))
		}
		contact = contacts[0]
		if to == "" {
			to = contact.Phone
		}
	}
	if to == "" {
		return nil, apierr.New(http.StatusBadRequest, "missing_to", errors.New("to or contact_id with a phone number required"))
	}

	return ss.send(ctx, ownerID, contact, to, body)
}

func (ss *smsService) SendToContact(ctx context.Context, ownerID uuid.UUID, contact *types.Contact, body string) (*types.OutboundMessage, error) {
	if contact == nil || strings.TrimSpace(contact.Phone) == "" {
		return nil, apierr.New(http.StatusBadRequest, "missing_phone", errors.New("contact has no phone number"))
	}
	return ss.send(ctx, ownerID, contact, contact.Phone, strings.TrimSpace(body))
}

func (ss *smsService) send(ctx context.Context, ownerID uuid.UUID, contact *types.Contact, to, body string) (*types.OutboundMessage, error) {
	e164, err := NormalizePhone(to)
	if err != nil {
		return nil, apierr.New(http.StatusBadRequest, "invalid_phone", err)
	}

	// Daily per-recipient cap, counted over sent audit rows.
	dayStart := time.Now().UTC().Truncate(24 * time.Hour)
	sentToday, err := ss.outboundRepo.CountSMSToSince(ctx, nil, e164, dayStart)
	if err != nil {
		return nil, fmt.Errorf("count daily sms: %w", err)
	}
	if sentToday >= int64(ss.dailyLimit) {
		observability.Current().IncSMSRateLimited()
		return nil, apierr.New(http.StatusTooManyRequests, "sms_daily_limit",
			fmt.Errorf("daily SMS limit of %d reached for %s", ss.dailyLimit, e164))
	}

	msg := &types.OutboundMessage{
		ID:          uuid.New(),
		OwnerUserID: ownerID,
		Channel:     types.ChannelSMS,
		ToAddress:   e164,
		Provider:    "twilio",
		Body:        body,
	}
	if contact != nil {
		msg.ContactID = &contact.ID
	}

	sent, sendErr := ss.sender.SendSMS(ctx, e164, body)
	if sendErr != nil {
		msg.Status = types.MessageStatusFailed
		msg.Error = sendErr.Error()
		observability.Current().IncSend(types.ChannelSMS, types.MessageStatusFailed)
		if _, aErr := ss.outboundRepo.Create(ctx, nil, []*types.OutboundMessage{msg}); aErr != nil {
			ss.log.Error("outbound audit insert failed after send error", "to", e164, "error", aErr)
		}
		return nil, fmt.Errorf("send sms: %w", sendErr)
	}

	msg.Status = types.MessageStatusSent
	msg.ProviderSID = sent.SID
	observability.Current().IncSend(types.ChannelSMS, types.MessageStatusSent)
	if _, err := ss.outboundRepo.Create(ctx, nil, []*types.OutboundMessage{msg}); err != nil {
		return nil, fmt.Errorf("record outbound sms: %w", err)
	}

	if contact != nil {
		activity := &types.Activity{
			ID:          uuid.New(),
			OwnerUserID: ownerID,
			ContactID:   &contact.ID,
			Type:        types.ActivityTypeSMS,
			Body:        body,
			Metadata:    mustJSON(map[string]any{"message_id": msg.ID, "provider_sid": sent.SID}),
		}
		if _, aErr := ss.activityRepo.Create(ctx, nil, []*types.Activity{activity}); aErr != nil {
			ss.log.Warn("sms activity insert failed", "contact_id", contact.ID, "error", aErr)
		}
		if tErr := ss.contactRepo.TouchLastContacted(ctx, nil, contact.ID, time.Now()); tErr != nil {
			ss.log.Warn("last_contacted_at touch failed", "contact_id", contact.ID, "error", tErr)
		}
	}
	return msg, nil
}

// NormalizePhone coerces a raw phone string to E.164. Ten-digit numbers get
// a +1 prefix; eleven digits starting with 1 likewise. Anything else must
// already carry a plus and 8..15 digits.
func NormalizePhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("phone number required")
	}

	hadPlus := strings.HasPrefix(raw, "+")
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()

	switch {
	case hadPlus:
		if len(d) < 8 || len(d) > 15 {
			return "", fmt.Errorf("invalid phone number %q", raw)
		}
		return "+" + d, nil
	case len(d) == 10:
		return "+1" + d, nil
	case len(d) == 11 && d[0] == '1':
		return "+" + d, nil
	default:
		return "", fmt.Errorf("invalid phone number %q", raw)
	}
}
