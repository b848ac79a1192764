package repos

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/deangilmoreremix/smartcrm-backend/internal/platform/logger"
	"github.com/deangilmoreremix/smartcrm-backend/internal/types"
)

// ContactFilter narrows List; zero values mean "no filter".
type ContactFilter struct {
	Status string
	Region string
	// Search matches name, email, and company case-insensitively.
	Search string
	Limit  int
	Offset int
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type RegionPipeline struct {
	Region      string `json:"region"`
	AmountCents int64  `json:"amount_cents"`
	Deals       int64  `json:"deals"`
}

type ContactRepo interface {
	Create(ctx context.Context, tx *gorm.DB, contacts []*types.Contact) ([]*types.Contact, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Contact, error)
	GetByOwnerAndEmail(ctx context.Context, tx *gorm.DB, ownerUserID uuid.UUID, email string) (*types.Contact, error)
	ListByOwner(ctx context.Context, tx *gorm.DB, ownerUserID uuid.UUID, filter ContactFilter) ([]*types.Contact, int64, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	TouchLastContacted(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) error
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
	CountByStatus(ctx context.Context, tx *gorm.DB, ownerUserID uuid.UUID) ([]StatusCount, error)
}

type contactRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContactRepo(db *gorm.DB, baseLog *logger.Logger) ContactRepo {
	return &contactRepo{db: db, log: baseLog.With("repo", "ContactRepo")}
}

func (r *contactRepo) Create(ctx context.Context, tx *gorm.DB, contacts []*types.Contact) ([]*types.Contact, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(contacts) == 0 {
		return []*types.Contact{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&contacts).Error; err != nil {
		return nil, MapError(err)
	}
	return contacts, nil
}

func (r *contactRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Contact, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Contact
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

func (r *contactRepo) GetByOwnerAndEmail(ctx context.Context, tx *gorm.DB, ownerUserID uuid.UUID, email string) (*types.Contact, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if ownerUserID == uuid.Nil || email == "" {
		return nil, nil
	}
	var contact types.Contact
	err := transaction.WithContext(ctx).
		Where("owner_user_id = ? AND lower(email) = ?", ownerUserID, email).
		Limit(1).
		Find(&contact).Error
	if err != nil {
		return nil, err
	}
	if contact.ID == uuid.Nil {
		return nil, nil
	}
	return &contact, nil
}

func (r *contactRepo) ListByOwner(ctx context.Context, tx *gorm.DB, ownerUserID uuid.UUID, filter ContactFilter) ([]*types.Contact, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Contact
	if ownerUserID == uuid.Nil {
		return results, 0, nil
	}

	q := transaction.WithContext(ctx).
		Model(&types.Contact{}).
		Where("owner_user_id = ?", ownerUserID)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Region != "" {
		q = q.Where("region = ?", filter.Region)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where(
			"lower(first_name) LIKE ? OR lower(last_name) LIKE ? OR lower(email) LIKE ? OR lower(company) LIKE ?",
			like, like, like, like,
		)
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

func (r *contactRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
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
	err := transaction.WithContext(ctx).
		Model(&types.Contact{}).
		Where("id = ?", id).
		Updates(updates).Error
	return MapError(err)
}

func (r *contactRepo) TouchLastContacted(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) error {
	return r.UpdateFields(ctx, tx, id, map[string]interface{}{"last_contacted_at": at})
}

func (r *contactRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.Contact{}).Error
}

func (r *contactRepo) CountByStatus(ctx context.Context, tx *gorm.DB, ownerUserID uuid.UUID) ([]StatusCount, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []StatusCount
	if ownerUserID == uuid.Nil {
		return out, nil
	}
	err := transaction.WithContext(ctx).
		Model(&types.Contact{}).
		Select("status, COUNT(*) AS count").
		Where("owner_user_id = ?", ownerUserID).
		Group("status").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
