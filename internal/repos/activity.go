package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/deangilmoreremix/smartcrm-backend/internal/platform/logger"
	"github.com/deangilmoreremix/smartcrm-backend/internal/rules"
	"github.com/deangilmoreremix/smartcrm-backend/internal/types"
)

type TypeCount struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

type ActivityRepo interface {
	Create(ctx context.Context, tx *gorm.DB, activities []*types.Activity) ([]*types.Activity, error)
	ListByContact(ctx context.Context, tx *gorm.DB, contactID uuid.UUID, limit int) ([]*types.Activity, error)
	CountByContact(ctx context.Context, tx *gorm.DB, contactID uuid.UUID) (int64, error)
	CountByTypeSince(ctx context.Context, tx *gorm.DB, ownerUserID uuid.UUID, since time.Time) ([]TypeCount, error)
	ChannelCountsByContact(ctx context.Context, tx *gorm.DB, contactID uuid.UUID, since time.Time) (rules.ChannelCounts, error)
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type activityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityRepo(db *gorm.DB, baseLog *logger.Logger) ActivityRepo {
	return &activityRepo{db: db, log: baseLog.With("repo", "ActivityRepo")}
}

func (r *activityRepo) Create(ctx context.Context, tx *gorm.DB, activities []*types.Activity) ([]*types.Activity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(activities) == 0 {
		return []*types.Activity{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&activities).Error; err != nil {
		return nil, MapError(err)
	}
	return activities, nil
}

func (r *activityRepo) ListByContact(ctx context.Context, tx *gorm.DB, contactID uuid.UUID, limit int) ([]*types.Activity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Activity
	if contactID == uuid.Nil {
		return results, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if err := transaction.WithContext(ctx).
		Where("contact_id = ?", contactID).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *activityRepo) CountByContact(ctx context.Context, tx *gorm.DB, contactID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if contactID == uuid.Nil {
		return 0, nil
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Activity{}).
		Where("contact_id = ?", contactID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *activityRepo) CountByTypeSince(ctx context.Context, tx *gorm.DB, ownerUserID uuid.UUID, since time.Time) ([]TypeCount, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []TypeCount
	if ownerUserID == uuid.Nil {
		return out, nil
	}
	err := transaction.WithContext(ctx).
		Model(&types.Activity{}).
		Select("type, COUNT(*) AS count").
		Where("owner_user_id = ? AND created_at >= ?", ownerUserID, since).
		Group("type").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *activityRepo) ChannelCountsByContact(ctx context.Context, tx *gorm.DB, contactID uuid.UUID, since time.Time) (rules.ChannelCounts, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var counts rules.ChannelCounts
	if contactID == uuid.Nil {
		return counts, nil
	}
	var rows []TypeCount
	err := transaction.WithContext(ctx).
		Model(&types.Activity{}).
		Select("type, COUNT(*) AS count").
		Where("contact_id = ? AND created_at >= ?", contactID, since).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return counts, err
	}
	for _, row := range rows {
		switch row.Type {
		case types.ActivityTypeEmail:
			counts.Email = int(row.Count)
		case types.ActivityTypeSMS:
			counts.SMS = int(row.Count)
		case types.ActivityTypeCall:
			counts.Calls = int(row.Count)
		case types.ActivityTypeMeeting:
			counts.Meetings = int(row.Count)
		}
	}
	return counts, nil
}

func (r *activityRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.Activity{}).Error
}
