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
	"github.com/deangilmoreremix/smartcrm-backend/internal/types"
)

type DealUpdate struct {
	Title           *string `json:"title,omitempty"`
	AmountCents     *int64  `json:"amount_cents,omitempty"`
	Probability     *int    `json:"probability,omitempty"`
	ExpectedCloseAt *string `json:"expected_close_at,omitempty"`
}

type DealService interface {
	Create(ctx context.Context, ownerID uuid.UUID, deal *types.Deal) (*types.Deal, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*types.Deal, error)
	List(ctx context.Context, ownerID uuid.UUID, filter repos.DealFilter) ([]*types.Deal, int64, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, upd DealUpdate) (*types.Deal, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	ChangeStage(ctx context.Context, ownerID, id uuid.UUID, stage string) (*types.Deal, error)
	Pipeline(ctx context.Context, ownerID uuid.UUID) ([]repos.StagePipeline, error)

	CreateFromWebhook(ctx context.Context, tx *gorm.DB, ownerID, contactID uuid.UUID, title string, amountCents int64, stage string) (*types.Deal, error)
}

type dealService struct {
	db           *gorm.DB
	log          *logger.Logger
	dealRepo     repos.DealRepo
	contactRepo  repos.ContactRepo
	activityRepo repos.ActivityRepo
	notifier     Notifier
}

func NewDealService(
	db *gorm.DB,
	log *logger.Logger,
	dealRepo repos.DealRepo,
	contactRepo repos.ContactRepo,
	activityRepo repos.ActivityRepo,
	notifier Notifier,
) DealService {
	return &dealService{
		db:           db,
		log:          log.With("service", "DealService"),
		dealRepo:     dealRepo,
		contactRepo:  contactRepo,
		activityRepo: activityRepo,
		notifier:     notifier,
	}
}

func (ds *dealService) Create(ctx context.Context, ownerID uuid.UUID, deal *types.Deal) (*types.Deal, error) {
	if deal == nil || strings.TrimSpace(deal.Title) == "" {
		return nil, apierr.New(http.StatusBadRequest, "missing_title", errors.New("deal title required"))
	}
	if deal.ContactID == uuid.Nil {
		return nil, apierr.New(http.StatusBadRequest, "missing_contact", errors.New("contact_id required"))
	}
	if deal.AmountCents < 0 {
		return nil, apierr.New(http.StatusBadRequest, "invalid_amount", errors.New("amount_cents must be >= 0"))
	}
	if deal.Stage == "" {
		deal.Stage = types.DealStageQualification
	}
	if !types.ValidDealStage(deal.Stage) {
		return nil, apierr.New(http.StatusBadRequest, "invalid_stage", fmt.Errorf("unknown stage %q", deal.Stage))
	}
	if deal.Probability < 0 || deal.Probability > 100 {
		return nil, apierr.New(http.StatusBadRequest, "invalid_probability", errors.New("probability must be 0..100"))
	}

	// The contact must exist and belong to the same owner.
	contacts, err := ds.contactRepo.GetByIDs(ctx, nil, []uuid.UUID{deal.ContactID})
	if err != nil {
		return nil, fmt.Errorf("fetch contact: %w", err)
	}
	if len(contacts) == 0 || contacts[0].OwnerUserID != ownerID {
		return nil, apierr.New(http.StatusNotFound, "contact_not_found", fmt.Errorf("contact %s not found", deal.ContactID))
	}

	deal.ID = uuid.New()
	deal.OwnerUserID = ownerID
	deal.Title = strings.TrimSpace(deal.Title)
	pinProbability(deal)

	created, err := ds.dealRepo.Create(ctx, nil, []*types.Deal{deal})
	if err != nil {
		return nil, fmt.Errorf("create deal: %w", err)
	}
	return created[0], nil
}

func (ds *dealService) Get(ctx context.Context, ownerID, id uuid.UUID) (*types.Deal, error) {
	return ds.getOwned(ctx, ownerID, id)
}

func (ds *dealService) List(ctx context.Context, ownerID uuid.UUID, filter repos.DealFilter) ([]*types.Deal, int64, error) {
	if filter.Stage != "" && !types.ValidDealStage(filter.Stage) {
		return nil, 0, apierr.New(http.StatusBadRequest, "invalid_stage", fmt.Errorf("unknown stage %q", filter.Stage))
	}
	return ds.dealRepo.ListByOwner(ctx, nil, ownerID, filter)
}

func (ds *dealService) Update(ctx context.Context, ownerID, id uuid.UUID, upd DealUpdate) (*types.Deal, error) {
	deal, err := ds.getOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return nil, apierr.New(http.StatusBadRequest, "missing_title", errors.New("deal title required"))
		}
		deal.Title = title
		updates["title"] = title
	}
	if upd.AmountCents != nil {
		if *upd.AmountCents < 0 {
			return nil, apierr.New(http.StatusBadRequest, "invalid_amount", errors.New("amount_cents must be >= 0"))
		}
		deal.AmountCents = *upd.AmountCents
		updates["amount_cents"] = *upd.AmountCents
	}
	if upd.Probability != nil {
		if *upd.Probability < 0 || *upd.Probability > 100 {
			return nil, apierr.New(http.StatusBadRequest, "invalid_probability", errors.New("probability must be 0..100"))
		}
		deal.Probability = *upd.Probability
		// Closed deals keep their pinned probability.
		pinProbability(deal)
		updates["probability"] = deal.Probability
	}
	if upd.ExpectedCloseAt != nil {
		if *upd.ExpectedCloseAt == "" {
			deal.ExpectedCloseAt = nil
			updates["expected_close_at"] = nil
		} else {
			at, pErr := time.Parse(time.RFC3339, *upd.ExpectedCloseAt)
			if pErr != nil {
				return nil, apierr.New(http.StatusBadRequest, "invalid_expected_close_at", fmt.Errorf("parse expected_close_at: %w", pErr))
			}
			deal.ExpectedCloseAt = &at
			updates["expected_close_at"] = at
		}
	}
	if len(updates) == 0 {
		return deal, nil
	}

	if err := ds.dealRepo.UpdateFields(ctx, nil, id, updates); err != nil {
		return nil, fmt.Errorf("update deal: %w", err)
	}
	return deal, nil
}

func (ds *dealService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := ds.getOwned(ctx, ownerID, id); err != nil {
		return err
	}
	return ds.dealRepo.SoftDeleteByIDs(ctx, nil, []uuid.UUID{id})
}

func (ds *dealService) ChangeStage(ctx context.Context, ownerID, id uuid.UUID, stage string) (*types.Deal, error) {
	if !types.ValidDealStage(stage) {
		return nil, apierr.New(http.StatusBadRequest, "invalid_stage", fmt.Errorf("unknown stage %q", stage))
	}
	deal, err := ds.getOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if deal.Stage == stage {
		return deal, nil
	}

	fromStage := deal.Stage
	deal.Stage = stage
	pinProbability(deal)

	if err := ds.dealRepo.UpdateFields(ctx, nil, id, map[string]interface{}{
		"stage":       deal.Stage,
		"probability": deal.Probability,
	}); err != nil {
		return nil, fmt.Errorf("change stage: %w", err)
	}

	activity := &types.Activity{
		ID:          uuid.New(),
		OwnerUserID: ownerID,
		ContactID:   &deal.ContactID,
		DealID:      &deal.ID,
		Type:        types.ActivityTypeNote,
		Body:        fmt.Sprintf("Deal %q moved from %s to %s", deal.Title, fromStage, stage),
		Metadata:    mustJSON(map[string]any{"from_stage": fromStage, "to_stage": stage}),
	}
	if _, aErr := ds.activityRepo.Create(ctx, nil, []*types.Activity{activity}); aErr != nil {
		ds.log.Warn("stage change activity insert failed", "deal_id", deal.ID, "error", aErr)
	}

	ds.notifier.DealStageChanged(ctx, ownerID, deal, fromStage)
	return deal, nil
}

func (ds *dealService) Pipeline(ctx context.Context, ownerID uuid.UUID) ([]repos.StagePipeline, error) {
	return ds.dealRepo.PipelineByStage(ctx, nil, ownerID)
}

func (ds *dealService) CreateFromWebhook(ctx context.Context, tx *gorm.DB, ownerID, contactID uuid.UUID, title string, amountCents int64, stage string) (*types.Deal, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apierr.New(http.StatusBadRequest, "missing_title", errors.New("deal title required"))
	}
	if stage == "" {
		stage = types.DealStageQualification
	}
	if !types.ValidDealStage(stage) {
		return nil, apierr.New(http.StatusBadRequest, "invalid_stage", fmt.Errorf("unknown stage %q", stage))
	}
	if amountCents < 0 {
		return nil, apierr.New(http.StatusBadRequest, "invalid_amount", errors.New("amount_cents must be >= 0"))
	}

	deal := &types.Deal{
		ID:          uuid.New(),
		OwnerUserID: ownerID,
		ContactID:   contactID,
		Title:       title,
		AmountCents: amountCents,
		Stage:       stage,
	}
	pinProbability(deal)
	created, err := ds.dealRepo.Create(ctx, tx, []*types.Deal{deal})
	if err != nil {
		return nil, fmt.Errorf("create deal: %w", err)
	}
	return created[0], nil
}

func (ds *dealService) getOwned(ctx context.Context, ownerID, id uuid.UUID) (*types.Deal, error) {
	found, err := ds.dealRepo.GetByIDs(ctx, nil, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("fetch deal: %w", err)
	}
	if len(found) == 0 || found[0].OwnerUserID != ownerID {
		return nil, apierr.New(http.StatusNotFound, "deal_not_found", fmt.Errorf("deal %s not found", id))
	}
	return found[0], nil
}

// pinProbability forces closed-won to 100 and closed-lost to 0.
func pinProbability(deal *types.Deal) {
	switch deal.Stage {
	case types.DealStageClosedWon:
		deal.Probability = 100
	case types.DealStageClosedLost:
		deal.Probability = 0
	}
}
