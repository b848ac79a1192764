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

type ActivityService interface {
	Create(ctx context.Context, ownerID uuid.UUID, activity *types.Activity) (*types.Activity, error)
	ListByContact(ctx context.Context, ownerID, contactID uuid.UUID, limit int) ([]*types.Activity, error)
}

type activityService struct {
	db           *gorm.DB
	log          *logger.Logger
	activityRepo repos.ActivityRepo
	contactRepo  repos.ContactRepo
	dealRepo     repos.DealRepo
}

func NewActivityService(
	db *gorm.DB,
	log *logger.Logger,
	activityRepo repos.ActivityRepo,
	contactRepo repos.ContactRepo,
	dealRepo repos.DealRepo,
) ActivityService {
	return &activityService{
		db:           db,
		log:          log.With("service", "ActivityService"),
		activityRepo: activityRepo,
		contactRepo:  contactRepo,
		dealRepo:     dealRepo,
	}
}

func validActivityType(t string) bool {
	switch t {
	case types.ActivityTypeCall, types.ActivityTypeEmail, types.ActivityTypeSMS,
		types.ActivityTypeMeeting, types.ActivityTypeNote:
		return true
	}
	return false
}

// outreachType reports whether logging this activity counts as contacting
// the person, which bumps last_contacted_at.
func outreachType(t string) bool {
	switch t {
	case types.ActivityTypeCall, types.ActivityTypeEmail, types.ActivityTypeSMS, types.ActivityTypeMeeting:
		return true
	}
	return false
}

func (as *activityService) Create(ctx context.Context, ownerID uuid.UUID, activity *types.Activity) (*types.Activity, error) {
	if activity == nil {
		return nil, apierr.New(http.StatusBadRequest, "invalid_body", errors.New("activity required"))
	}
	if !validActivityType(activity.Type) {
		return nil, apierr.New(http.StatusBadRequest, "invalid_type", fmt.Errorf("unknown activity type %q", activity.Type))
	}
	activity.Body = strings.TrimSpace(activity.Body)
	if activity.ContactID == nil && activity.DealID == nil {
		return nil, apierr.New(http.StatusBadRequest, "missing_target", errors.New("contact_id or deal_id required"))
	}

	if activity.ContactID != nil {
		if err := as.checkContactOwned(ctx, ownerID, *activity.ContactID); err != nil {
			return nil, err
		}
	}
	if activity.DealID != nil {
		deals, err := as.dealRepo.GetByIDs(ctx, nil, []uuid.UUID{*activity.DealID})
		if err != nil {
			return nil, fmt.Errorf("fetch deal: %w", err)
		}
		if len(deals) == 0 || deals[0].OwnerUserID != ownerID {
			return nil, apierr.New(http.StatusNotFound, "deal_not_found", fmt.Errorf("deal %s not found", *activity.DealID))
		}
		// An activity on a deal also lands on the deal's contact.
		if activity.ContactID == nil {
			activity.ContactID = &deals[0].ContactID
		}
	}

	activity.ID = uuid.New()
	activity.OwnerUserID = ownerID

	created, err := as.activityRepo.Create(ctx, nil, []*types.Activity{activity})
	if err != nil {
		return nil, fmt.Errorf("create activity: %w", err)
	}

	if activity.ContactID != nil && outreachType(activity.Type) {
		if tErr := as.contactRepo.TouchLastContacted(ctx, nil, *activity.ContactID, time.Now()); tErr != nil {
			as.log.Warn("last_contacted_at touch failed", "contact_id", *activity.ContactID, "error", tErr)
		}
	}
	return created[0], nil
}

func (as *activityService) ListByContact(ctx context.Context, ownerID, contactID uuid.UUID, limit int) ([]*types.Activity, error) {
	if err := as.checkContactOwned(ctx, ownerID, contactID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return as.activityRepo.ListByContact(ctx, nil, contactID, limit)
}

func (as *activityService) checkContactOwned(ctx context.Context, ownerID, contactID uuid.UUID) error {
	contacts, err := as.contactRepo.GetByIDs(ctx, nil, []uuid.UUID{contactID})
	if err != nil {
		return fmt.Errorf("fetch contact: %w", err)
	}
	if len(contacts) == 0 || contacts[0].OwnerUserID != ownerID {
		return apierr.New(http.StatusNotFound, "contact_not_found", fmt.Errorf("contact %s not found", contactID))
	}
	return nil
}
