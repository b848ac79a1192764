package services

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/deangilmoreremix/smartcrm-backend/internal/observability"
	"github.com/deangilmoreremix/smartcrm-backend/internal/platform/apierr"
	"github.com/deangilmoreremix/smartcrm-backend/internal/platform/logger"
	"github.com/deangilmoreremix/smartcrm-backend/internal/repos"
	"github.com/deangilmoreremix/smartcrm-backend/internal/types"
)

const (
	WebhookActionContactCreated = "contact.created"
	WebhookActionContactUpdated = "contact.updated"
	WebhookActionDealCreated    = "deal.created"
	WebhookActionNoteAdded      = "note.added"
)

type WebhookResult struct {
	EventID   uuid.UUID  `json:"event_id"`
	Action    string     `json:"action"`
	ContactID *uuid.UUID `json:"contact_id,omitempty"`
	DealID    *uuid.UUID `json:"deal_id,omitempty"`
	Created   bool       `json:"created"`
}

type WebhookService interface {
	HandleZapier(ctx context.Context, secret string, raw []byte) (*WebhookResult, error)
	ListRecent(ctx context.Context, limit int) ([]*types.WebhookEvent, error)
}

type webhookService struct {
	db        *gorm.DB
	log       *logger.Logger
	secret    string
	userRepo  repos.UserRepo
	eventRepo repos.WebhookEventRepo
	contacts  ContactService
	deals     DealService
	emails    EmailService
	activity  repos.ActivityRepo
	notifier  Notifier
}

func NewWebhookService(
	db *gorm.DB,
	log *logger.Logger,
	secret string,
	userRepo repos.UserRepo,
	eventRepo repos.WebhookEventRepo,
	contacts ContactService,
	deals DealService,
	emails EmailService,
	activity repos.ActivityRepo,
	notifier Notifier,
) WebhookService {
	return &webhookService{
		db:        db,
		log:       log.With("service", "WebhookService"),
		secret:    secret,
		userRepo:  userRepo,
		eventRepo: eventRepo,
		contacts:  contacts,
		deals:     deals,
		emails:    emails,
		activity:  activity,
		notifier:  notifier,
	}
}

type zapierContact struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Title     string `json:"title"`
	Company   string `json:"company"`
	ZipCode   string `json:"zip_code"`
}

type zapierDeal struct {
	Title        string `json:"title"`
	AmountCents  int64  `json:"amount_cents"`
	Stage        string `json:"stage"`
	ContactEmail string `json:"contact_email"`
}

type zapierPayload struct {
	Action      string         `json:"action"`
	OwnerEmail  string         `json:"owner_email"`
	SendWelcome bool           `json:"send_welcome"`
	Contact     *zapierContact `json:"contact"`
	Deal        *zapierDeal    `json:"deal"`
	Note        string         `json:"note"`
}

// HandleZapier processes one inbound delivery. Every delivery leaves a
// webhook_event row behind, whatever its outcome.
func (ws *webhookService) HandleZapier(ctx context.Context, secret string, raw []byte) (*WebhookResult, error) {
	event := &types.WebhookEvent{
		ID:      uuid.New(),
		Source:  "zapier",
		Payload: raw,
	}

	// An unset secret must fail closed: empty-vs-empty would compare equal.
	if ws.secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(ws.secret)) != 1 {
		ws.record(ctx, event, types.WebhookStatusRejected, "invalid webhook secret")
		return nil, apierr.New(http.StatusUnauthorized, "invalid_secret", errors.New("webhook secret mismatch"))
	}

	var payload zapierPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		// Not valid JSON, so it cannot go into the jsonb column as-is.
		event.Payload, _ = json.Marshal(string(raw))
		ws.record(ctx, event, types.WebhookStatusRejected, "malformed payload: "+err.Error())
		return nil, apierr.New(http.StatusBadRequest, "malformed_payload", fmt.Errorf("parse payload: %w", err))
	}
	event.Action = payload.Action

	owner, err := ws.resolveOwner(ctx, payload.OwnerEmail)
	if err != nil {
		ws.record(ctx, event, types.WebhookStatusRejected, err.Error())
		return nil, err
	}

	result := &WebhookResult{EventID: event.ID, Action: payload.Action}
	var procErr error
	switch payload.Action {
	case WebhookActionContactCreated, WebhookActionContactUpdated:
		procErr = ws.applyContact(ctx, owner.ID, payload, result)
	case WebhookActionDealCreated:
		procErr = ws.applyDeal(ctx, owner.ID, payload, result)
	case WebhookActionNoteAdded:
		procErr = ws.applyNote(ctx, owner.ID, payload, result)
	default:
		ws.record(ctx, event, types.WebhookStatusRejected, fmt.Sprintf("unknown action %q", payload.Action))
		return nil, apierr.New(http.StatusBadRequest, "unknown_action", fmt.Errorf("unknown action %q", payload.Action))
	}

	if procErr != nil {
		var ae *apierr.Error
		if errors.As(procErr, &ae) && ae.Status < http.StatusInternalServerError {
			ws.record(ctx, event, types.WebhookStatusRejected, procErr.Error())
		} else {
			ws.record(ctx, event, types.WebhookStatusFailed, procErr.Error())
		}
		return nil, procErr
	}

	event.ContactID = result.ContactID
	ws.record(ctx, event, types.WebhookStatusProcessed, "")
	ws.notifier.WebhookReceived(ctx, owner.ID, payload.Action, result.ContactID)
	return result, nil
}

func (ws *webhookService) ListRecent(ctx context.Context, limit int) ([]*types.WebhookEvent, error) {
	return ws.eventRepo.ListRecent(ctx, nil, limit)
}

func (ws *webhookService) applyContact(ctx context.Context, ownerID uuid.UUID, payload zapierPayload, result *WebhookResult) error {
	if payload.Contact == nil {
		return apierr.New(http.StatusBadRequest, "missing_contact", errors.New("contact object required"))
	}
	incoming := &types.Contact{
		FirstName: payload.Contact.FirstName,
		LastName:  payload.Contact.LastName,
		Email:     payload.Contact.Email,
		Phone:     payload.Contact.Phone,
		Title:     payload.Contact.Title,
		Company:   payload.Contact.Company,
		ZipCode:   payload.Contact.ZipCode,
		Source:    types.ContactSourceWebhook,
	}
	contact, created, err := ws.contacts.UpsertByEmail(ctx, nil, ownerID, incoming)
	if err != nil {
		return err
	}
	result.ContactID = &contact.ID
	result.Created = created

	if created && payload.SendWelcome {
		if wErr := ws.emails.SendWelcome(ctx, ownerID, contact); wErr != nil {
			ws.log.Warn("welcome email failed", "contact_id", contact.ID, "error", wErr)
		}
	}
	return nil
}

func (ws *webhookService) applyDeal(ctx context.Context, ownerID uuid.UUID, payload zapierPayload, result *WebhookResult) error {
	if payload.Deal == nil {
		return apierr.New(http.StatusBadRequest, "missing_deal", errors.New("deal object required"))
	}
	contact, err := ws.contactForEmail(ctx, ownerID, payload.Deal.ContactEmail, payload.Contact)
	if err != nil {
		return err
	}
	result.ContactID = &contact.ID

	deal, err := ws.deals.CreateFromWebhook(ctx, nil, ownerID, contact.ID, payload.Deal.Title, payload.Deal.AmountCents, payload.Deal.Stage)
	if err != nil {
		return err
	}
	result.DealID = &deal.ID
	result.Created = true
	return nil
}

func (ws *webhookService) applyNote(ctx context.Context, ownerID uuid.UUID, payload zapierPayload, result *WebhookResult) error {
	note := strings.TrimSpace(payload.Note)
	if note == "" {
		return apierr.New(http.StatusBadRequest, "missing_note", errors.New("note text required"))
	}
	email := ""
	if payload.Contact != nil {
		email = payload.Contact.Email
	}
	contact, err := ws.contactForEmail(ctx, ownerID, email, payload.Contact)
	if err != nil {
		return err
	}
	result.ContactID = &contact.ID

	activity := &types.Activity{
		ID:          uuid.New(),
		OwnerUserID: ownerID,
		ContactID:   &contact.ID,
		Type:        types.ActivityTypeNote,
		Body:        note,
		Metadata:    mustJSON(map[string]any{"source": "zapier"}),
	}
	if _, err := ws.activity.Create(ctx, nil, []*types.Activity{activity}); err != nil {
		return fmt.Errorf("create note activity: %w", err)
	}
	return nil
}

// contactForEmail resolves the referenced contact, creating it from the
// payload's contact object when it does not exist yet.
func (ws *webhookService) contactForEmail(ctx context.Context, ownerID uuid.UUID, email string, fallback *zapierContact) (*types.Contact, error) {
	if email == "" && fallback != nil {
		email = fallback.Email
	}
	if strings.TrimSpace(email) == "" {
		return nil, apierr.New(http.StatusBadRequest, "missing_email", errors.New("contact email required"))
	}
	incoming := &types.Contact{Email: email, Source: types.ContactSourceWebhook}
	if fallback != nil {
		incoming.FirstName = fallback.FirstName
		incoming.LastName = fallback.LastName
		incoming.Phone = fallback.Phone
		incoming.Title = fallback.Title
		incoming.Company = fallback.Company
		incoming.ZipCode = fallback.ZipCode
	}
	contact, _, err := ws.contacts.UpsertByEmail(ctx, nil, ownerID, incoming)
	return contact, err
}

func (ws *webhookService) resolveOwner(ctx context.Context, email string) (*types.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apierr.New(http.StatusBadRequest, "missing_owner", errors.New("owner_email required"))
	}
	users, err := ws.userRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return nil, fmt.Errorf("resolve owner: %w", err)
	}
	if len(users) == 0 {
		return nil, apierr.New(http.StatusNotFound, "owner_not_found", fmt.Errorf("no user with email %s", email))
	}
	return users[0], nil
}

// record writes the delivery's audit row. A failed insert only logs: the
// caller's outcome should not change because auditing hiccuped.
func (ws *webhookService) record(ctx context.Context, event *types.WebhookEvent, status, errMsg string) {
	event.Status = status
	event.Error = errMsg
	observability.Current().IncWebhook(status)
	if _, err := ws.eventRepo.Create(ctx, nil, []*types.WebhookEvent{event}); err != nil {
		ws.log.Error("webhook event insert failed", "event_id", event.ID, "status", status, "error", err)
	}
}
