package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/deangilmoreremix/smartcrm-backend/internal/platform/logger"
	"github.com/deangilmoreremix/smartcrm-backend/internal/repos"
	"github.com/deangilmoreremix/smartcrm-backend/internal/types"
)

const activityWindow = 30 * 24 * time.Hour

type Dashboard struct {
	ContactsByStatus []repos.StatusCount    `json:"contacts_by_status"`
	DealsByStage     []repos.StagePipeline  `json:"deals_by_stage"`
	WinRate          float64                `json:"win_rate"`
	ActivitiesByType []repos.TypeCount      `json:"activities_by_type"`
	TopRegions       []repos.RegionPipeline `json:"top_regions"`
}

type AnalyticsService interface {
	Dashboard(ctx context.Context, ownerID uuid.UUID) (*Dashboard, error)
}

type analyticsService struct {
	db           *gorm.DB
	log          *logger.Logger
	contactRepo  repos.ContactRepo
	dealRepo     repos.DealRepo
	activityRepo repos.ActivityRepo
}

func NewAnalyticsService(
	db *gorm.DB,
	log *logger.Logger,
	contactRepo repos.ContactRepo,
	dealRepo repos.DealRepo,
	activityRepo repos.ActivityRepo,
) AnalyticsService {
	return &analyticsService{
		db:           db,
		log:          log.With("service", "AnalyticsService"),
		contactRepo:  contactRepo,
		dealRepo:     dealRepo,
		activityRepo: activityRepo,
	}
}

// Dashboard recomputes every aggregate per request; the queries are
// owner-scoped and cheap enough that no cache sits in front of them.
func (an *analyticsService) Dashboard(ctx context.Context, ownerID uuid.UUID) (*Dashboard, error) {
	out := &Dashboard{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := an.contactRepo.CountByStatus(gctx, nil, ownerID)
		if err != nil {
			return fmt.Errorf("contacts by status: %w", err)
		}
		out.ContactsByStatus = counts
		return nil
	})
	g.Go(func() error {
		pipeline, err := an.dealRepo.PipelineByStage(gctx, nil, ownerID)
		if err != nil {
			return fmt.Errorf("deals by stage: %w", err)
		}
		out.DealsByStage = pipeline
		out.WinRate = winRate(pipeline)
		return nil
	})
	g.Go(func() error {
		counts, err := an.activityRepo.CountByTypeSince(gctx, nil, ownerID, time.Now().Add(-activityWindow))
		if err != nil {
			return fmt.Errorf("activities by type: %w", err)
		}
		out.ActivitiesByType = counts
		return nil
	})
	g.Go(func() error {
		regions, err := an.dealRepo.PipelineByRegion(gctx, nil, ownerID, 5)
		if err != nil {
			return fmt.Errorf("top regions: %w", err)
		}
		out.TopRegions = regions
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// winRate is closed-won over all closed deals; 0 when nothing closed yet.
func winRate(pipeline []repos.StagePipeline) float64 {
	var won, lost int64
	for _, p := range pipeline {
		switch p.Stage {
		case types.DealStageClosedWon:
			won = p.Deals
		case types.DealStageClosedLost:
			lost = p.Deals
		}
	}
	if won+lost == 0 {
		return 0
	}
	return float64(won) / float64(won+lost)
}
