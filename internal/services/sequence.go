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

	"github.com/deangilmoreremix/smartcrm-backend/internal/platform/apierr"
	"github.com/deangilmoreremix/smartcrm-backend/internal/platform/logger"
	"github.com/deangilmoreremix/smartcrm-backend/internal/repos"
	"github.com/deangilmoreremix/smartcrm-backend/internal/rules"
	"github.com/deangilmoreremix/smartcrm-backend/internal/types"
)

const (
	maxSequenceSteps   = 10
	defaultStepCount   = 3
	defaultCadenceDays = 3
)

type GenerateSequenceInput struct {
	ContactID   uuid.UUID `json:"contact_id"`
	Persona     string    `json:"persona"`
	Goal        string    `json:"goal"`
	StepCount   int       `json:"step_count"`
	CadenceDays int       `json:"cadence_days"`
}

type SequenceService interface {
	Generate(ctx context.Context, ownerID uuid.UUID, in GenerateSequenceInput) (*types.Sequence, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*types.Sequence, error)
	List(ctx context.Context, ownerID uuid.UUID, status string, limit int) ([]*types.Sequence, error)
	Activate(ctx context.Context, ownerID, id uuid.UUID) (*types.Sequence, error)
	Pause(ctx context.Context, ownerID, id uuid.UUID) (*types.Sequence, error)
	Resume(ctx context.Context, ownerID, id uuid.UUID) (*types.Sequence, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

type sequenceService struct {
	db           *gorm.DB
	log          *logger.Logger
	ai           AIProvider
	contactRepo  repos.ContactRepo
	seqRepo      repos.SequenceRepo
	sendRepo     repos.ScheduledSendRepo
	activityRepo repos.ActivityRepo
	notifier     Notifier
}

func NewSequenceService(
	db *gorm.DB,
	log *logger.Logger,
	ai AIProvider,
	contactRepo repos.ContactRepo,
	seqRepo repos.SequenceRepo,
	sendRepo repos.ScheduledSendRepo,
	activityRepo repos.ActivityRepo,
	notifier Notifier,
) SequenceService {
	return &sequenceService{
		db:           db,
		log:          log.With("service", "SequenceService"),
		ai:           ai,
		contactRepo:  contactRepo,
		seqRepo:      seqRepo,
		sendRepo:     sendRepo,
		activityRepo: activityRepo,
		notifier:     notifier,
	}
}

var sequenceSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"steps": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"channel": map[string]any{"type": "string", "enum": []string{types.ChannelEmail, types.ChannelSMS}},
					"subject": map[string]any{"type": "string"},
					"body":    map[string]any{"type": "string"},
				},
				"required":             []string{"channel", "subject", "body"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []string{"steps"},
	"additionalProperties": false,
}

func (sq *sequenceService) Generate(ctx context.Context, ownerID uuid.UUID, in GenerateSequenceInput) (*types.Sequence, error) {
	contact, err := sq.getOwnedContact(ctx, ownerID, in.ContactID)
	if err != nil {
		return nil, err
	}

	stepCount := in.StepCount
	if stepCount <= 0 {
		stepCount = defaultStepCount
	}
	if stepCount > maxSequenceSteps {
		return nil, apierr.New(http.StatusBadRequest, "invalid_step_count", fmt.Errorf("step_count must be 1..%d", maxSequenceSteps))
	}
	cadence := in.CadenceDays
	if cadence <= 0 {
		cadence = defaultCadenceDays
	}
	if cadence > 30 {
		return nil, apierr.New(http.StatusBadRequest, "invalid_cadence", errors.New("cadence_days must be 1..30"))
	}
	persona := strings.TrimSpace(in.Persona)
	if persona == "" {
		persona = "friendly sales development rep"
	}
	goal := strings.TrimSpace(in.Goal)
	if goal == "" {
		goal = "book a discovery call"
	}

	hasPhone := contact.Phone != ""
	counts, err := sq.activityRepo.ChannelCountsByContact(ctx, nil, contact.ID, time.Now().AddDate(0, -3, 0))
	if err != nil {
		sq.log.Warn("channel counts unavailable; defaulting to email",
			"contact_id", contact.ID,
			"error", err,
		)
		counts = rules.ChannelCounts{}
	}
	preferred := rules.PreferredChannel(counts, hasPhone)

	system := "You are a sales development assistant planning an outbound message sequence. " +
		"Reply with JSON: an ordered steps array, each with channel, subject, and body. " +
		"SMS bodies stay under 300 characters; email subjects stay short."
	user := buildSequencePrompt(contact, persona, goal, stepCount, preferred)

	meta := AICallMeta{UserID: ownerID, ContactID: &contact.ID, CallType: types.AICallTypeSequenceGenerate}
	obj, provider, err := sq.ai.GenerateJSON(ctx, meta, system, user, "sdr_sequence", sequenceSchema)
	if err != nil {
		return nil, fmt.Errorf("generate sequence: %w", err)
	}

	steps, err := parseSequenceSteps(obj, stepCount, cadence, hasPhone, preferred)
	if err != nil {
		return nil, fmt.Errorf("generate sequence: provider %s: %w", provider, err)
	}

	seq := &types.Sequence{
		ID:          uuid.New(),
		OwnerUserID: ownerID,
		ContactID:   contact.ID,
		Persona:     persona,
		Goal:        goal,
		Status:      types.SequenceStatusDraft,
		Provider:    provider,
		Steps:       steps,
	}
	for _, s := range steps {
		s.SequenceID = seq.ID
	}

	created, err := sq.seqRepo.Create(ctx, nil, []*types.Sequence{seq})
	if err != nil {
		return nil, fmt.Errorf("persist sequence: %w", err)
	}
	return created[0], nil
}

func (sq *sequenceService) Get(ctx context.Context, ownerID, id uuid.UUID) (*types.Sequence, error) {
	return sq.getOwned(ctx, ownerID, id)
}

func (sq *sequenceService) List(ctx context.Context, ownerID uuid.UUID, status string, limit int) ([]*types.Sequence, error) {
	if status != "" && !validSequenceStatus(status) {
		return nil, apierr.New(http.StatusBadRequest, "invalid_status", fmt.Errorf("unknown status %q", status))
	}
	return sq.seqRepo.ListByOwner(ctx, nil, ownerID, status, limit)
}

func (sq *sequenceService) Activate(ctx context.Context, ownerID, id uuid.UUID) (*types.Sequence, error) {
	seq, err := sq.getOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if seq.Status != types.SequenceStatusDraft {
		return nil, apierr.New(http.StatusConflict, "invalid_transition",
			fmt.Errorf("sequence is %s; only draft sequences activate", seq.Status))
	}
	if len(seq.Steps) == 0 {
		return nil, apierr.New(http.StatusConflict, "empty_sequence", errors.New("sequence has no steps"))
	}

	now := time.Now()
	sends := make([]*types.ScheduledSend, 0, len(seq.Steps))
	for _, step := range seq.Steps {
		sends = append(sends, &types.ScheduledSend{
			ID:          uuid.New(),
			OwnerUserID: ownerID,
			SequenceID:  seq.ID,
			StepID:      step.ID,
			ContactID:   seq.ContactID,
			Channel:     step.Channel,
			Status:      types.SendStatusQueued,
			RunAt:       StepRunAt(now, step.DayOffset),
		})
	}

	err = sq.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, cErr := sq.sendRepo.Create(ctx, tx, sends); cErr != nil {
			return cErr
		}
		return sq.seqRepo.UpdateFields(ctx, tx, seq.ID, map[string]interface{}{
			"status":       types.SequenceStatusActive,
			"activated_at": now,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("activate sequence: %w", err)
	}

	seq.Status = types.SequenceStatusActive
	seq.ActivatedAt = &now
	sq.notifier.SequenceActivated(ctx, ownerID, seq)
	return seq, nil
}

func (sq *sequenceService) Pause(ctx context.Context, ownerID, id uuid.UUID) (*types.Sequence, error) {
	seq, err := sq.getOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if seq.Status != types.SequenceStatusActive {
		return nil, apierr.New(http.StatusConflict, "invalid_transition",
			fmt.Errorf("sequence is %s; only active sequences pause", seq.Status))
	}

	err = sq.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if sErr := sq.sendRepo.SkipPendingBySequence(ctx, tx, seq.ID); sErr != nil {
			return sErr
		}
		return sq.seqRepo.UpdateFields(ctx, tx, seq.ID, map[string]interface{}{
			"status": types.SequenceStatusPaused,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("pause sequence: %w", err)
	}
	seq.Status = types.SequenceStatusPaused
	return seq, nil
}

func (sq *sequenceService) Resume(ctx context.Context, ownerID, id uuid.UUID) (*types.Sequence, error) {
	seq, err := sq.getOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if seq.Status != types.SequenceStatusPaused {
		return nil, apierr.New(http.StatusConflict, "invalid_transition",
			fmt.Errorf("sequence is %s; only paused sequences resume", seq.Status))
	}

	err = sq.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if rErr := sq.sendRepo.RequeueSkippedBySequence(ctx, tx, seq.ID); rErr != nil {
			return rErr
		}
		return sq.seqRepo.UpdateFields(ctx, tx, seq.ID, map[string]interface{}{
			"status": types.SequenceStatusActive,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("resume sequence: %w", err)
	}
	seq.Status = types.SequenceStatusActive
	return seq, nil
}

func (sq *sequenceService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	seq, err := sq.getOwned(ctx, ownerID, id)
	if err != nil {
		return err
	}
	return sq.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if sErr := sq.sendRepo.SkipPendingBySequence(ctx, tx, seq.ID); sErr != nil {
			return sErr
		}
		return sq.seqRepo.SoftDeleteByIDs(ctx, tx, []uuid.UUID{seq.ID})
	})
}

func (sq *sequenceService) getOwned(ctx context.Context, ownerID, id uuid.UUID) (*types.Sequence, error) {
	found, err := sq.seqRepo.GetByIDs(ctx, nil, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("fetch sequence: %w", err)
	}
	if len(found) == 0 || found[0].OwnerUserID != ownerID {
		return nil, apierr.New(http.StatusNotFound, "sequence_not_found", fmt.Errorf("sequence %s not found", id))
	}
	return found[0], nil
}

func (sq *sequenceService) getOwnedContact(ctx context.Context, ownerID, id uuid.UUID) (*types.Contact, error) {
	contacts, err := sq.contactRepo.GetByIDs(ctx, nil, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("fetch contact: %w", err)
	}
	if len(contacts) == 0 || contacts[0].OwnerUserID != ownerID {
		return nil, apierr.New(http.StatusNotFound, "contact_not_found", fmt.Errorf("contact %s not found", id))
	}
	return contacts[0], nil
}

func validSequenceStatus(s string) bool {
	switch s {
	case types.SequenceStatusDraft, types.SequenceStatusActive, types.SequenceStatusPaused, types.SequenceStatusCompleted:
		return true
	}
	return false
}

// StepRunAt is when a step goes out for a sequence activated at base.
func StepRunAt(base time.Time, dayOffset int) time.Time {
	if dayOffset <= 0 {
		return base
	}
	return base.Add(time.Duration(dayOffset) * 24 * time.Hour)
}

func buildSequencePrompt(c *types.Contact, persona, goal string, stepCount int, preferred string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Plan an outbound sequence of exactly %d steps.\n", stepCount)
	fmt.Fprintf(&b, "Persona: %s\nGoal: %s\n", persona, goal)
	fmt.Fprintf(&b, "Prospect first name: %s\n", orUnknown(c.FirstName))
	fmt.Fprintf(&b, "Prospect title: %s\n", orUnknown(c.Title))
	fmt.Fprintf(&b, "Prospect company: %s\n", orUnknown(c.Company))
	if c.Phone == "" {
		b.WriteString("The prospect has no phone number; use email for every step.\n")
	} else {
		fmt.Fprintf(&b, "Mix email and sms channels across the steps. Past activity says the prospect responds best over %s; lean that way.\n", preferred)
	}
	b.WriteString("Start with an introduction and end with a polite breakup message.")
	return b.String()
}

// parseSequenceSteps maps provider JSON to step rows. Extra steps are
// dropped, sms steps downgrade to email when the contact has no phone,
// unknown channels fall back to the engagement-preferred one, and day
// offsets follow the cadence: 0, cadence, 2*cadence, ...
func parseSequenceSteps(obj map[string]any, stepCount, cadenceDays int, hasPhone bool, preferred string) ([]*types.SequenceStep, error) {
	raw, ok := obj["steps"].([]any)
	if !ok || len(raw) == 0 {
		return nil, errors.New("response carries no steps")
	}
	if len(raw) > stepCount {
		raw = raw[:stepCount]
	}

	steps := make([]*types.SequenceStep, 0, len(raw))
	for i, item := range raw {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("step %d is not an object", i+1)
		}
		channel, _ := entry["channel"].(string)
		subject, _ := entry["subject"].(string)
		body, _ := entry["body"].(string)

		if channel != types.ChannelEmail && channel != types.ChannelSMS {
			channel = preferred
		}
		if channel == types.ChannelSMS && !hasPhone {
			channel = types.ChannelEmail
		}
		body = strings.TrimSpace(body)
		if body == "" {
			return nil, fmt.Errorf("step %d has an empty body", i+1)
		}

		steps = append(steps, &types.SequenceStep{
			ID:        uuid.New(),
			Ordinal:   i + 1,
			Channel:   channel,
			Subject:   strings.TrimSpace(subject),
			Body:      body,
			DayOffset: i * cadenceDays,
		})
	}
	return steps, nil
}
