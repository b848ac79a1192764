package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/deangilmoreremix/smartcrm-backend/internal/platform/logger"
	"github.com/deangilmoreremix/smartcrm-backend/internal/types"
)

type SequenceRepo interface {
	Create(ctx context.Context, tx *gorm.DB, sequences []*types.Sequence) ([]*types.Sequence, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Sequence, error)
	ListByOwner(ctx context.Context, tx *gorm.DB, ownerUserID uuid.UUID, status string, limit int) ([]*types.Sequence, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type sequenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSequenceRepo(db *gorm.DB, baseLog *logger.Logger) SequenceRepo {
	return &sequenceRepo{db: db, log: baseLog.With("repo", "SequenceRepo")}
}

func (r *sequenceRepo) Create(ctx context.Context, tx *gorm.DB, sequences []*types.Sequence) ([]*types.Sequence, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(sequences) == 0 {
		return []*types.Sequence{}, nil
	}
	// Steps ride along via the association.
	if err := transaction.WithContext(ctx).Create(&sequences).Error; err != nil {
		return nil, MapError(err)
	}
	return sequences, nil
}

func (r *sequenceRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Sequence, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Sequence
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("ordinal ASC")
		}).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *sequenceRepo) ListByOwner(ctx context.Context, tx *gorm.DB, ownerUserID uuid.UUID, status string, limit int) ([]*types.Sequence, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Sequence
	if ownerUserID == uuid.Nil {
		return results, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := transaction.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("ordinal ASC")
		}).
		Where("owner_user_id = ?", ownerUserID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *sequenceRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.Sequence{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *sequenceRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.Sequence{}).Error
}
