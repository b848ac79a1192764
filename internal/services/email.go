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

	"github.com/deangilmoreremix/smartcrm-backend/internal/clients/sendgrid"
	"github.com/deangilmoreremix/smartcrm-backend/internal/observability"
	"github.com/deangilmoreremix/smartcrm-backend/internal/platform/apierr"
	"github.com/deangilmoreremix/smartcrm-backend/internal/platform/logger"
	"github.com/deangilmoreremix/smartcrm-backend/internal/repos"
	"github.com/deangilmoreremix/smartcrm-backend/internal/types"
)

// subjectMaxLen caps personalized subject lines; longer ones get cut at a
// word boundary.
const subjectMaxLen = 78

type GenerateEmailInput struct {
	ContactID uuid.UUID `json:"contact_id"`
	Tone      string    `json:"tone"`
	Purpose   string    `json:"purpose"`
	Send      bool      `json:"send"`
}

type GeneratedEmail struct {
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Provider  string `json:"provider"`
	Sent      bool   `json:"sent"`
	MessageID string `json:"message_id,omitempty"`
}

type EmailService interface {
	Generate(ctx context.Context, ownerID uuid.UUID, in GenerateEmailInput) (*GeneratedEmail, error)
	Send(ctx context.Context, ownerID uuid.UUID, contact *types.Contact, subject, body string) (*types.OutboundMessage, error)
	SendWelcome(ctx context.Context, ownerID uuid.UUID, contact *types.Contact) error
}

type emailService struct {
	db           *gorm.DB
	log          *logger.Logger
	ai           AIProvider
	mailer       sendgrid.Client
	contactRepo  repos.ContactRepo
	outboundRepo repos.OutboundMessageRepo
	activityRepo repos.ActivityRepo
}

func NewEmailService(
	db *gorm.DB,
	log *logger.Logger,
	ai AIProvider,
	mailer sendgrid.Client,
	contactRepo repos.ContactRepo,
	outboundRepo repos.OutboundMessageRepo,
	activityRepo repos.ActivityRepo,
) EmailService {
	return &emailService{
		db:           db,
		log:          log.With("service", "EmailService"),
		ai:           ai,
		mailer:       mailer,
		contactRepo:  contactRepo,
		outboundRepo: outboundRepo,
		activityRepo: activityRepo,
	}
}

var emailSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"subject": map[string]any{"type": "string"},
		"body":    map[string]any{"type": "string"},
	},
	"required":             []string{"subject", "body"},
	"additionalProperties": false,
}

func (es *emailService) Generate(ctx context.Context, ownerID uuid.UUID, in GenerateEmailInput) (*GeneratedEmail, error) {
	contact, err := es.getOwned(ctx, ownerID, in.ContactID)
	if err != nil {
		return nil, err
	}
	if contact.Email == "" && in.Send {
		return nil, apierr.New(http.StatusBadRequest, "missing_email", fmt.Errorf("contact %s has no email address", contact.ID))
	}

	tone := strings.TrimSpace(in.Tone)
	if tone == "" {
		tone = "professional"
	}
	purpose := strings.TrimSpace(in.Purpose)
	if purpose == "" {
		purpose = "introduce our product and ask for a short call"
	}

	system := "You are a sales development assistant. Write concise, personal outbound sales emails. " +
		"Reply with JSON containing subject and body. Plain text body, no signature placeholders."
	user := buildEmailPrompt(contact, tone, purpose)

	meta := AICallMeta{UserID: ownerID, ContactID: &contact.ID, CallType: types.AICallTypeEmailGenerate}
	obj, provider, err := es.ai.GenerateJSON(ctx, meta, system, user, "sales_email", emailSchema)
	if err != nil {
		return nil, fmt.Errorf("generate email: %w", err)
	}
	subject, _ := obj["subject"].(string)
	body, _ := obj["body"].(string)
	if strings.TrimSpace(subject) == "" || strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("generate email: provider %s returned an empty subject or body", provider)
	}

	subject = PersonalizeSubject(subject, contact.FirstName, contact.Company)
	out := &GeneratedEmail{Subject: subject, Body: body, Provider: provider}

	if in.Send {
		msg, sErr := es.Send(ctx, ownerID, contact, subject, body)
		if sErr != nil {
			return nil, sErr
		}
		out.Sent = true
		out.MessageID = msg.ProviderSID
	}
	return out, nil
}

func (es *emailService) Send(ctx context.Context, ownerID uuid.UUID, contact *types.Contact, subject, body string) (*types.OutboundMessage, error) {
	if contact == nil || contact.Email == "" {
		return nil, apierr.New(http.StatusBadRequest, "missing_email", errors.New("contact email required"))
	}
	subject = strings.TrimSpace(subject)
	body = strings.TrimSpace(body)
	if subject == "" || body == "" {
		return nil, apierr.New(http.StatusBadRequest, "missing_fields", errors.New("subject and body required"))
	}

	msg := &types.OutboundMessage{
		ID:          uuid.New(),
		OwnerUserID: ownerID,
		ContactID:   &contact.ID,
		Channel:     types.ChannelEmail,
		ToAddress:   contact.Email,
		Provider:    "sendgrid",
		Subject:     subject,
		Body:        body,
	}

	res, sendErr := es.mailer.Send(ctx, sendgrid.SendEmailRequest{
		To:         []sendgrid.EmailAddress{{Email: contact.Email, Name: strings.TrimSpace(contact.FirstName + " " + contact.LastName)}},
		Subject:    subject,
		Text:       body,
		Categories: []string{"crm"},
	})
	if sendErr != nil {
		msg.Status = types.MessageStatusFailed
		msg.Error = sendErr.Error()
		observability.Current().IncSend(types.ChannelEmail, types.MessageStatusFailed)
		if _, aErr := es.outboundRepo.Create(ctx, nil, []*types.OutboundMessage{msg}); aErr != nil {
			es.log.Error("outbound audit insert failed after send error", "contact_id", contact.ID, "error", aErr)
		}
		return nil, fmt.Errorf("send email: %w", sendErr)
	}

	msg.Status = types.MessageStatusSent
	msg.ProviderSID = res.MessageID
	observability.Current().IncSend(types.ChannelEmail, types.MessageStatusSent)
	if _, err := es.outboundRepo.Create(ctx, nil, []*types.OutboundMessage{msg}); err != nil {
		return nil, fmt.Errorf("record outbound email: %w", err)
	}

	activity := &types.Activity{
		ID:          uuid.New(),
		OwnerUserID: ownerID,
		ContactID:   &contact.ID,
		Type:        types.ActivityTypeEmail,
		Body:        subject,
		Metadata:    mustJSON(map[string]any{"message_id": msg.ID, "provider_sid": res.MessageID}),
	}
	if _, err := es.activityRepo.Create(ctx, nil, []*types.Activity{activity}); err != nil {
		es.log.Warn("email activity insert failed", "contact_id", contact.ID, "error", err)
	}
	if err := es.contactRepo.TouchLastContacted(ctx, nil, contact.ID, time.Now()); err != nil {
		es.log.Warn("last_contacted_at touch failed", "contact_id", contact.ID, "error", err)
	}
	return msg, nil
}

func (es *emailService) SendWelcome(ctx context.Context, ownerID uuid.UUID, contact *types.Contact) error {
	if contact == nil || contact.Email == "" {
		return nil
	}
	name := contact.FirstName
	if name == "" {
		name = "there"
	}
	subject := PersonalizeSubject("Welcome aboard, {{first_name}}", contact.FirstName, contact.Company)
	body := fmt.Sprintf("Hi %s,\n\nThanks for getting in touch. We received your details and one of our reps will reach out shortly.\n\nBest,\nThe team", name)
	_, err := es.Send(ctx, ownerID, contact, subject, body)
	return err
}

func (es *emailService) getOwned(ctx context.Context, ownerID, id uuid.UUID) (*types.Contact, error) {
	contacts, err := es.contactRepo.GetByIDs(ctx, nil, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("fetch contact: %w", err)
	}
	if len(contacts) == 0 || contacts[0].OwnerUserID != ownerID {
		return nil, apierr.New(http.StatusNotFound, "contact_not_found", fmt.Errorf("contact %s not found", id))
	}
	return contacts[0], nil
}

func buildEmailPrompt(c *types.Contact, tone, purpose string) string {
	var b strings.Builder
	b.WriteString("Write a sales email.\n")
	fmt.Fprintf(&b, "Tone: %s\nPurpose: %s\n", tone, purpose)
	fmt.Fprintf(&b, "Recipient first name: %s\n", orUnknown(c.FirstName))
	fmt.Fprintf(&b, "Recipient title: %s\n", orUnknown(c.Title))
	fmt.Fprintf(&b, "Recipient company: %s\n", orUnknown(c.Company))
	if c.IsVIP {
		b.WriteString("The recipient is a senior decision maker; be brief and direct.\n")
	}
	if c.IsCompetitor {
		b.WriteString("The recipient works at a competitor; keep the message high level.\n")
	}
	b.WriteString("Keep the body under 120 words.")
	return b.String()
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return s
}

// PersonalizeSubject fills {{first_name}} and {{company}} tokens, prefixes
// the first name when no token was present, and caps the result at
// subjectMaxLen runes on a word boundary.
func PersonalizeSubject(subject, firstName, company string) string {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return ""
	}
	firstName = strings.TrimSpace(firstName)
	company = strings.TrimSpace(company)

	hadToken := strings.Contains(subject, "{{first_name}}") || strings.Contains(subject, "{{company}}")
	subject = strings.ReplaceAll(subject, "{{first_name}}", firstName)
	subject = strings.ReplaceAll(subject, "{{company}}", company)

	if !hadToken && firstName != "" &&
		!strings.Contains(strings.ToLower(subject), strings.ToLower(firstName)) {
		subject = firstName + ", " + lowerFirst(subject)
	}

	// Token substitution with empty values can leave stray separators.
	subject = strings.Join(strings.Fields(subject), " ")
	subject = strings.Trim(subject, " ,-")

	if len([]rune(subject)) <= subjectMaxLen {
		return subject
	}
	runes := []rune(subject)
	cut := string(runes[:subjectMaxLen])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.Trim(cut, " ,-")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	// Leave likely proper nouns and acronyms alone.
	if len(r) > 1 && r[1] >= 'A' && r[1] <= 'Z' {
		return s
	}
	return strings.ToLower(string(r[0])) + string(r[1:])
}
