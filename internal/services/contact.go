package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/deangilmoreremix/smartcrm-backend/internal/platform/apierr"
	"github.com/deangilmoreremix/smartcrm-backend/internal/platform/logger"
	"github.com/deangilmoreremix/smartcrm-backend/internal/repos"
	"github.com/deangilmoreremix/smartcrm-backend/internal/rules"
	"github.com/deangilmoreremix/smartcrm-backend/internal/types"
)

type ContactUpdate struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Title     *string `json:"title,omitempty"`
	Company   *string `json:"company,omitempty"`
	ZipCode   *string `json:"zip_code,omitempty"`
	Status    *string `json:"status,omitempty"`
}

type ContactService interface {
	Create(ctx context.Context, ownerID uuid.UUID, contact *types.Contact) (*types.Contact, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*types.Contact, error)
	List(ctx context.Context, ownerID uuid.UUID, filter repos.ContactFilter) ([]*types.Contact, int64, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, upd ContactUpdate) (*types.Contact, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	RecomputeScore(ctx context.Context, ownerID, id uuid.UUID) (*types.Contact, rules.ScoreBreakdown, error)

	// UpsertByEmail is the webhook ingestion path: match on owner+email,
	// create or merge, rules re-run either way.
	UpsertByEmail(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, incoming *types.Contact) (*types.Contact, bool, error)
}

type contactService struct {
	db           *gorm.DB
	log          *logger.Logger
	ruleset      *rules.Ruleset
	contactRepo  repos.ContactRepo
	activityRepo repos.ActivityRepo
	notifier     Notifier
}

func NewContactService(
	db *gorm.DB,
	log *logger.Logger,
	ruleset *rules.Ruleset,
	contactRepo repos.ContactRepo,
	activityRepo repos.ActivityRepo,
	notifier Notifier,
) ContactService {
	return &contactService{
		db:           db,
		log:          log.With("service", "ContactService"),
		ruleset:      ruleset,
		contactRepo:  contactRepo,
		activityRepo: activityRepo,
		notifier:     notifier,
	}
}

func (cs *contactService) Create(ctx context.Context, ownerID uuid.UUID, contact *types.Contact) (*types.Contact, error) {
	if contact == nil {
		return nil, apierr.New(http.StatusBadRequest, "invalid_body", errors.New("contact required"))
	}
	normalizeContact(contact)
	if contact.FirstName == "" && contact.LastName == "" && contact.Email == "" {
		return nil, apierr.New(http.StatusBadRequest, "missing_fields", errors.New("a name or email is required"))
	}
	if contact.Status == "" {
		contact.Status = types.ContactStatusLead
	}
	if !validContactStatus(contact.Status) {
		return nil, apierr.New(http.StatusBadRequest, "invalid_status", fmt.Errorf("unknown status %q", contact.Status))
	}
	if contact.Source == "" {
		contact.Source = types.ContactSourceManual
	}

	contact.ID = uuid.New()
	contact.OwnerUserID = ownerID
	cs.applyRules(ctx, contact)

	created, err := cs.contactRepo.Create(ctx, nil, []*types.Contact{contact})
	if err != nil {
		if errors.Is(err, repos.ErrConflict) {
			return nil, apierr.New(http.StatusConflict, "duplicate_email", fmt.Errorf("contact with email %s already exists", contact.Email))
		}
		return nil, fmt.Errorf("create contact: %w", err)
	}
	return created[0], nil
}

func (cs *contactService) Get(ctx context.Context, ownerID, id uuid.UUID) (*types.Contact, error) {
	return cs.getOwned(ctx, nil, ownerID, id)
}

func (cs *contactService) List(ctx context.Context, ownerID uuid.UUID, filter repos.ContactFilter) ([]*types.Contact, int64, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	return cs.contactRepo.ListByOwner(ctx, nil, ownerID, filter)
}

// ruleFieldsChanged reports whether the update touches a field the rule
// tables read.
func ruleFieldsChanged(upd ContactUpdate) bool {
	return upd.Title != nil || upd.Company != nil || upd.ZipCode != nil ||
		upd.Email != nil || upd.Phone != nil
}

func (cs *contactService) Update(ctx context.Context, ownerID, id uuid.UUID, upd ContactUpdate) (*types.Contact, error) {
	contact, err := cs.getOwned(ctx, nil, ownerID, id)
	if err != nil {
		return nil, err
	}

	changed := applyContactUpdate(contact, upd)
	if len(changed) == 0 {
		return contact, nil
	}
	if upd.Status != nil && !validContactStatus(contact.Status) {
		return nil, apierr.New(http.StatusBadRequest, "invalid_status", fmt.Errorf("unknown status %q", contact.Status))
	}

	updates := map[string]interface{}{
		"first_name": contact.FirstName,
		"last_name":  contact.LastName,
		"email":      contact.Email,
		"phone":      contact.Phone,
		"title":      contact.Title,
		"company":    contact.Company,
		"zip_code":   contact.ZipCode,
		"status":     contact.Status,
	}
	if ruleFieldsChanged(upd) {
		cs.applyRules(ctx, contact)
		updates["state"] = contact.State
		updates["region"] = contact.Region
		updates["assigned_rep"] = contact.AssignedRep
		updates["score"] = contact.Score
		updates["is_vip"] = contact.IsVIP
		updates["is_competitor"] = contact.IsCompetitor
	}

	if err := cs.contactRepo.UpdateFields(ctx, nil, id, updates); err != nil {
		if errors.Is(err, repos.ErrConflict) {
			return nil, apierr.New(http.StatusConflict, "duplicate_email", fmt.Errorf("contact with email %s already exists", contact.Email))
		}
		return nil, fmt.Errorf("update contact: %w", err)
	}

	cs.notifier.ContactUpdated(ctx, ownerID, contact, changed)
	return contact, nil
}

func (cs *contactService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := cs.getOwned(ctx, nil, ownerID, id); err != nil {
		return err
	}
	return cs.contactRepo.SoftDeleteByIDs(ctx, nil, []uuid.UUID{id})
}

func (cs *contactService) RecomputeScore(ctx context.Context, ownerID, id uuid.UUID) (*types.Contact, rules.ScoreBreakdown, error) {
	contact, err := cs.getOwned(ctx, nil, ownerID, id)
	if err != nil {
		return nil, rules.ScoreBreakdown{}, err
	}

	breakdown := cs.scoreFor(ctx, contact)
	if breakdown.Total != contact.Score {
		contact.Score = breakdown.Total
		if uErr := cs.contactRepo.UpdateFields(ctx, nil, id, map[string]interface{}{"score": contact.Score}); uErr != nil {
			return nil, rules.ScoreBreakdown{}, fmt.Errorf("persist score: %w", uErr)
		}
	}
	return contact, breakdown, nil
}

func (cs *contactService) UpsertByEmail(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, incoming *types.Contact) (*types.Contact, bool, error) {
	normalizeContact(incoming)
	if incoming.Email == "" {
		return nil, false, apierr.New(http.StatusBadRequest, "missing_email", errors.New("contact email required"))
	}

	existing, err := cs.contactRepo.GetByOwnerAndEmail(ctx, tx, ownerID, incoming.Email)
	if err != nil {
		return nil, false, fmt.Errorf("lookup contact: %w", err)
	}

	if existing == nil {
		incoming.ID = uuid.New()
		incoming.OwnerUserID = ownerID
		if incoming.Status == "" {
			incoming.Status = types.ContactStatusLead
		}
		if incoming.Source == "" {
			incoming.Source = types.ContactSourceWebhook
		}
		cs.applyRules(ctx, incoming)
		created, cErr := cs.contactRepo.Create(ctx, tx, []*types.Contact{incoming})
		if cErr != nil {
			return nil, false, fmt.Errorf("create contact: %w", cErr)
		}
		return created[0], true, nil
	}

	mergeContact(existing, incoming)
	cs.applyRules(ctx, existing)
	updates := map[string]interface{}{
		"first_name":    existing.FirstName,
		"last_name":     existing.LastName,
		"phone":         existing.Phone,
		"title":         existing.Title,
		"company":       existing.Company,
		"zip_code":      existing.ZipCode,
		"state":         existing.State,
		"region":        existing.Region,
		"assigned_rep":  existing.AssignedRep,
		"score":         existing.Score,
		"is_vip":        existing.IsVIP,
		"is_competitor": existing.IsCompetitor,
	}
	if err := cs.contactRepo.UpdateFields(ctx, tx, existing.ID, updates); err != nil {
		return nil, false, fmt.Errorf("merge contact: %w", err)
	}
	return existing, false, nil
}

// applyRules runs territory routing, VIP/competitor detection, and lead
// scoring over the contact in place.
func (cs *contactService) applyRules(ctx context.Context, contact *types.Contact) {
	territory := cs.ruleset.AssignTerritory(contact.ZipCode)
	contact.State = territory.State
	contact.Region = territory.Region
	contact.AssignedRep = territory.Rep

	contact.IsVIP = cs.ruleset.IsVIPTitle(contact.Title)
	contact.IsCompetitor = cs.ruleset.IsCompetitor(contact.Company)

	contact.Score = cs.scoreFor(ctx, contact).Total
}

func (cs *contactService) scoreFor(ctx context.Context, contact *types.Contact) rules.ScoreBreakdown {
	activityCount := 0
	if contact.ID != uuid.Nil {
		if n, err := cs.activityRepo.CountByContact(ctx, nil, contact.ID); err == nil {
			activityCount = int(n)
		} else {
			cs.log.Warn("activity count failed; scoring without engagement", "contact_id", contact.ID, "error", err)
		}
	}
	return cs.ruleset.ScoreLead(rules.ScoreInput{
		Email:         contact.Email,
		Phone:         contact.Phone,
		Title:         contact.Title,
		Company:       contact.Company,
		IsCompetitor:  contact.IsCompetitor,
		ActivityCount: activityCount,
	})
}

func (cs *contactService) getOwned(ctx context.Context, tx *gorm.DB, ownerID, id uuid.UUID) (*types.Contact, error) {
	found, err := cs.contactRepo.GetByIDs(ctx, tx, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("fetch contact: %w", err)
	}
	if len(found) == 0 || found[0].OwnerUserID != ownerID {
		return nil, apierr.New(http.StatusNotFound, "contact_not_found", fmt.Errorf("contact %s not found", id))
	}
	return found[0], nil
}

func normalizeContact(c *types.Contact) {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Phone = strings.TrimSpace(c.Phone)
	c.Title = strings.TrimSpace(c.Title)
	c.Company = strings.TrimSpace(c.Company)
	c.ZipCode = strings.TrimSpace(c.ZipCode)
}

func validContactStatus(s string) bool {
	switch s {
	case types.ContactStatusLead, types.ContactStatusProspect, types.ContactStatusCustomer, types.ContactStatusChurned:
		return true
	}
	return false
}

func applyContactUpdate(c *types.Contact, upd ContactUpdate) []string {
	var changed []string
	set := func(field string, dst *string, src *string) {
		if src == nil {
			return
		}
		v := strings.TrimSpace(*src)
		if v != *dst {
			*dst = v
			changed = append(changed, field)
		}
	}
	set("first_name", &c.FirstName, upd.FirstName)
	set("last_name", &c.LastName, upd.LastName)
	if upd.Email != nil {
		v := strings.ToLower(strings.TrimSpace(*upd.Email))
		if v != c.Email {
			c.Email = v
			changed = append(changed, "email")
		}
	}
	set("phone", &c.Phone, upd.Phone)
	set("title", &c.Title, upd.Title)
	set("company", &c.Company, upd.Company)
	set("zip_code", &c.ZipCode, upd.ZipCode)
	set("status", &c.Status, upd.Status)
	return changed
}

// mergeContact fills blanks on existing from incoming; incoming values win
// for the mutable profile fields it carries.
func mergeContact(existing, incoming *types.Contact) {
	if incoming.FirstName != "" {
		existing.FirstName = incoming.FirstName
	}
	if incoming.LastName != "" {
		existing.LastName = incoming.LastName
	}
	if incoming.Phone != "" {
		existing.Phone = incoming.Phone
	}
	if incoming.Title != "" {
		existing.Title = incoming.Title
	}
	if incoming.Company != "" {
		existing.Company = incoming.Company
	}
	if incoming.ZipCode != "" {
		existing.ZipCode = incoming.ZipCode
	}
}
