package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/deangilmoreremix/smartcrm-backend/internal/platform/logger"
	"github.com/deangilmoreremix/smartcrm-backend/internal/types"
)

type DealFilter struct {
	Stage     string
	ContactID uuid.UUID
	Limit     int
	Offset    int
}

type StagePipeline struct {
	Stage       string `json:"stage"`
	Deals       int64  `json:"deals"`
	AmountCents int64  `json:"amount_cents"`
}

type DealRepo interface {
	Create(ctx context.Context, tx *gorm.DB, deals []*types.Deal) ([]*types.Deal, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Deal, error)
	ListByOwner(ctx context.Context, tx *gorm.DB, ownerUserID uuid.UUID, filter DealFilter) ([]*types.Deal, int64, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
	PipelineByStage(ctx context.Context, tx *gorm.DB, ownerUserID uuid.UUID) ([]StagePipeline, error)
	PipelineByRegion(ctx context.Context, tx *gorm.DB, ownerUserID uuid.UUID, limit int) ([]RegionPipeline, error)
}

type dealRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDealRepo(db *gorm.DB, baseLog *logger.Logger) DealRepo {
	return &dealRepo{db: db, log: baseLog.With("repo", "DealRepo")}
}

func (r *dealRepo) Create(ctx context.Context, tx *gorm.DB, deals []*types.Deal) ([]*types.Deal, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(deals) == 0 {
		return []*types.Deal{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&deals).Error; err != nil {
		return nil, MapError(err)
	}
	return deals, nil
}

func (r *dealRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Deal, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Deal
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *dealRepo) ListByOwner(ctx context.Context, tx *gorm.DB, ownerUserID uuid.UUID, filter DealFilter) ([]*types.Deal, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Deal
	if ownerUserID == uuid.Nil {
		return results, 0, nil
	}

	q := transaction.WithContext(ctx).
		Model(&types.Deal{}).
		Where("owner_user_id = ?", ownerUserID)
	if filter.Stage != "" {
		q = q.Where("stage = ?", filter.Stage)
	}
	if filter.ContactID != uuid.Nil {
		q = q.Where("contact_id = ?", filter.ContactID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if err := q.Order("created_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *dealRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return transaction.WithContext(ctx).
		Model(&types.Deal{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *dealRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.Deal{}).Error
}

func (r *dealRepo) PipelineByStage(ctx context.Context, tx *gorm.DB, ownerUserID uuid.UUID) ([]StagePipeline, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []StagePipeline
	if ownerUserID == uuid.Nil {
		return out, nil
	}
	err := transaction.WithContext(ctx).
		Model(&types.Deal{}).
		Select("stage, COUNT(*) AS deals, COALESCE(SUM(amount_cents), 0) AS amount_cents").
		Where("owner_user_id = ?", ownerUserID).
		Group("stage").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *dealRepo) PipelineByRegion(ctx context.Context, tx *gorm.DB, ownerUserID uuid.UUID, limit int) ([]RegionPipeline, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []RegionPipeline
	if ownerUserID == uuid.Nil {
		return out, nil
	}
	if limit <= 0 {
		limit = 5
	}
	err := transaction.WithContext(ctx).
		Model(&types.Deal{}).
		Select(`"contact"."region" AS region, COUNT(*) AS deals, COALESCE(SUM("deal"."amount_cents"), 0) AS amount_cents`).
		Joins(`JOIN "contact" ON "contact"."id" = "deal"."contact_id"`).
		Where(`"deal"."owner_user_id" = ? AND "deal"."stage" NOT IN ?`, ownerUserID, []string{types.DealStageClosedWon, types.DealStageClosedLost}).
		Group(`"contact"."region"`).
		Order("amount_cents DESC").
		Limit(limit).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
