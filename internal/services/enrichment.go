package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/deangilmoreremix/smartcrm-backend/internal/platform/logger"
	"github.com/deangilmoreremix/smartcrm-backend/internal/repos"
	"github.com/deangilmoreremix/smartcrm-backend/internal/rules"
	"github.com/deangilmoreremix/smartcrm-backend/internal/types"
)

// EnrichmentResult reports what enrichment filled in. AIUsed is false when
// the provider call failed or was skipped; the heuristic fills still apply.
type EnrichmentResult struct {
	Contact *types.Contact    `json:"contact"`
	Filled  map[string]string `json:"filled"`
	AIUsed  bool              `json:"ai_used"`
}

type EnrichmentService interface {
	Enrich(ctx context.Context, ownerID, contactID uuid.UUID) (*EnrichmentResult, error)
}

type enrichmentService struct {
	db          *gorm.DB
	log         *logger.Logger
	ai          AIProvider
	ruleset     *rules.Ruleset
	contactRepo repos.ContactRepo
	contacts    ContactService
}

func NewEnrichmentService(
	db *gorm.DB,
	log *logger.Logger,
	ai AIProvider,
	ruleset *rules.Ruleset,
	contactRepo repos.ContactRepo,
	contacts ContactService,
) EnrichmentService {
	return &enrichmentService{
		db:          db,
		log:         log.With("service", "EnrichmentService"),
		ai:          ai,
		ruleset:     ruleset,
		contactRepo: contactRepo,
		contacts:    contacts,
	}
}

var enrichmentSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"title":   map[string]any{"type": "string"},
		"company": map[string]any{"type": "string"},
	},
	"required":             []string{"title", "company"},
	"additionalProperties": false,
}

func (en *enrichmentService) Enrich(ctx context.Context, ownerID, contactID uuid.UUID) (*EnrichmentResult, error) {
	contact, err := en.contacts.Get(ctx, ownerID, contactID)
	if err != nil {
		return nil, err
	}

	filled := map[string]string{}

	if contact.Company == "" {
		if guess := CompanyFromEmail(contact.Email); guess != "" {
			contact.Company = guess
			filled["company"] = guess
		}
	}
	if contact.State == "" && contact.ZipCode != "" {
		if state := en.ruleset.StateForZip(contact.ZipCode); state != "" {
			contact.State = state
			filled["state"] = state
			if region := en.ruleset.RegionForState(state); region != "" {
				contact.Region = region
				filled["region"] = region
			}
		}
	}

	aiUsed := false
	if contact.Title == "" || contact.Company == "" {
		guess, gErr := en.guessWithAI(ctx, ownerID, contact)
		if gErr != nil {
			// Heuristic fills still stand; the caller gets a partial result.
			en.log.Warn("ai enrichment failed; returning heuristic fills only",
				"contact_id", contact.ID, "error", gErr)
		} else {
			aiUsed = true
			if contact.Title == "" && guess.title != "" {
				contact.Title = guess.title
				filled["title"] = guess.title
			}
			if contact.Company == "" && guess.company != "" {
				contact.Company = guess.company
				filled["company"] = guess.company
			}
		}
	}

	if _, ok := filled["state"]; ok {
		// Territory columns sit outside the profile update path.
		if uErr := en.contactRepo.UpdateFields(ctx, nil, contactID, map[string]interface{}{
			"state":  contact.State,
			"region": contact.Region,
		}); uErr != nil {
			return nil, fmt.Errorf("persist territory: %w", uErr)
		}
	}
	if filled["title"] != "" || filled["company"] != "" {
		// Title/company go through the normal update path so the rule
		// tables re-run over the new values.
		upd := ContactUpdate{}
		if v, ok := filled["title"]; ok {
			upd.Title = &v
		}
		if v, ok := filled["company"]; ok {
			upd.Company = &v
		}
		updated, uErr := en.contacts.Update(ctx, ownerID, contactID, upd)
		if uErr != nil {
			return nil, fmt.Errorf("persist enrichment: %w", uErr)
		}
		contact = updated
	}

	return &EnrichmentResult{Contact: contact, Filled: filled, AIUsed: aiUsed}, nil
}

type aiGuess struct {
	title   string
	company string
}

func (en *enrichmentService) guessWithAI(ctx context.Context, ownerID uuid.UUID, contact *types.Contact) (aiGuess, error) {
	system := "You enrich CRM contact records. Given partial contact details, guess the missing " +
		"job title and company name. Reply with JSON {title, company}; use an empty string when " +
		"you cannot make a reasonable guess. Never invent specifics you have no signal for."
	var b strings.Builder
	fmt.Fprintf(&b, "Email: %s\n", orUnknown(contact.Email))
	fmt.Fprintf(&b, "Name: %s %s\n", contact.FirstName, contact.LastName)
	fmt.Fprintf(&b, "Known title: %s\n", orUnknown(contact.Title))
	fmt.Fprintf(&b, "Known company: %s\n", orUnknown(contact.Company))

	meta := AICallMeta{UserID: ownerID, ContactID: &contact.ID, CallType: types.AICallTypeEnrichment}
	obj, _, err := en.ai.GenerateJSON(ctx, meta, system, b.String(), "contact_enrichment", enrichmentSchema)
	if err != nil {
		return aiGuess{}, err
	}
	title, _ := obj["title"].(string)
	company, _ := obj["company"].(string)
	return aiGuess{title: strings.TrimSpace(title), company: strings.TrimSpace(company)}, nil
}

// freeMailDomains never become company guesses.
var freeMailDomains = map[string]bool{
	"gmail.com":      true,
	"googlemail.com": true,
	"yahoo.com":      true,
	"hotmail.com":    true,
	"outlook.com":    true,
	"icloud.com":     true,
	"aol.com":        true,
	"proton.me":      true,
	"protonmail.com": true,
	"live.com":       true,
	"msn.com":        true,
}

// CompanyFromEmail guesses a company name from a work email domain:
// "jane@acme-widgets.io" becomes "Acme Widgets". Free mail providers yield
// no guess.
func CompanyFromEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	domain := strings.ToLower(strings.TrimSpace(email[at+1:]))
	if freeMailDomains[domain] {
		return ""
	}
	dot := strings.Index(domain, ".")
	if dot <= 0 {
		return ""
	}
	base := domain[:dot]
	if base == "" {
		return ""
	}

	parts := strings.FieldsFunc(base, func(r rune) bool { return r == '-' || r == '_' || r == '.' })
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
