package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/deangilmoreremix/smartcrm-backend/internal/platform/logger"
	"github.com/deangilmoreremix/smartcrm-backend/internal/types"
)

type OutboundMessageRepo interface {
	Create(ctx context.Context, tx *gorm.DB, messages []*types.OutboundMessage) ([]*types.OutboundMessage, error)
	ListByContact(ctx context.Context, tx *gorm.DB, contactID uuid.UUID, limit int) ([]*types.OutboundMessage, error)
	// CountSMSToSince backs the per-recipient daily SMS cap: a plain COUNT
	// vs a static threshold.
	CountSMSToSince(ctx context.Context, tx *gorm.DB, toAddress string, since time.Time) (int64, error)
}

type outboundMessageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOutboundMessageRepo(db *gorm.DB, baseLog *logger.Logger) OutboundMessageRepo {
	return &outboundMessageRepo{db: db, log: baseLog.With("repo", "OutboundMessageRepo")}
}

func (r *outboundMessageRepo) Create(ctx context.Context, tx *gorm.DB, messages []*types.OutboundMessage) ([]*types.OutboundMessage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(messages) == 0 {
		return []*types.OutboundMessage{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&messages).Error; err != nil {
		return nil, MapError(err)
	}
	return messages, nil
}

func (r *outboundMessageRepo) ListByContact(ctx context.Context, tx *gorm.DB, contactID uuid.UUID, limit int) ([]*types.OutboundMessage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.OutboundMessage
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

func (r *outboundMessageRepo) CountSMSToSince(ctx context.Context, tx *gorm.DB, toAddress string, since time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if toAddress == "" {
		return 0, nil
	}
	var count int64
	err := transaction.WithContext(ctx).
		Model(&types.OutboundMessage{}).
		Where("channel = ? AND to_address = ? AND status = ? AND created_at >= ?",
			types.ChannelSMS, toAddress, types.MessageStatusSent, since).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
