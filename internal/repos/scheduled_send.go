package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/deangilmoreremix/smartcrm-backend/internal/platform/logger"
	"github.com/deangilmoreremix/smartcrm-backend/internal/types"
)

type ScheduledSendRepo interface {
	Create(ctx context.Context, tx *gorm.DB, sends []*types.ScheduledSend) ([]*types.ScheduledSend, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.ScheduledSend, error)
	ClaimNextRunnable(ctx context.Context, tx *gorm.DB, maxAttempts int, retryDelay time.Duration, staleRunning time.Duration) (*types.ScheduledSend, error)
	MarkSent(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, tx *gorm.DB, id uuid.UUID, sendErr error) error
	MarkSkipped(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	Heartbeat(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	CountPendingBySequence(ctx context.Context, tx *gorm.DB, sequenceID uuid.UUID) (int64, error)
	SkipPendingBySequence(ctx context.Context, tx *gorm.DB, sequenceID uuid.UUID) error
	RequeueSkippedBySequence(ctx context.Context, tx *gorm.DB, sequenceID uuid.UUID) error
}

type scheduledSendRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScheduledSendRepo(db *gorm.DB, baseLog *logger.Logger) ScheduledSendRepo {
	return &scheduledSendRepo{db: db, log: baseLog.With("repo", "ScheduledSendRepo")}
}

func (r *scheduledSendRepo) Create(ctx context.Context, tx *gorm.DB, sends []*types.ScheduledSend) ([]*types.ScheduledSend, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(sends) == 0 {
		return []*types.ScheduledSend{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&sends).Error; err != nil {
		return nil, MapError(err)
	}
	return sends, nil
}

func (r *scheduledSendRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.ScheduledSend, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ScheduledSend
	if len(ids) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ClaimNextRunnable atomically claims the oldest due row: queued rows past
// run_at, failed rows below maxAttempts after retryDelay, and running rows
// whose heartbeat went stale. SKIP LOCKED keeps concurrent workers off the
// same row.
func (r *scheduledSendRepo) ClaimNextRunnable(ctx context.Context, tx *gorm.DB, maxAttempts int, retryDelay time.Duration, staleRunning time.Duration) (*types.ScheduledSend, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now()
	retryCutoff := now.Add(-retryDelay)
	staleCutoff := now.Add(-staleRunning)

	var claimed *types.ScheduledSend
	err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		var send types.ScheduledSend
		q := txx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where(`
				(
					(status = ? AND run_at <= ?)
					OR (
						status = ?
						AND attempts < ?
						AND (last_error_at IS NULL OR last_error_at < ?)
					)
					OR (
						status = ?
						AND heartbeat_at IS NOT NULL
						AND heartbeat_at < ?
					)
				)
			`, types.SendStatusQueued, now, types.SendStatusFailed, maxAttempts, retryCutoff, types.SendStatusRunning, staleCutoff).
			Order("run_at ASC")
		qErr := q.First(&send).Error
		if errors.Is(qErr, gorm.ErrRecordNotFound) {
			return nil
		}
		if qErr != nil {
			return qErr
		}
		uErr := txx.Model(&types.ScheduledSend{}).
			Where("id = ?", send.ID).
			Updates(map[string]interface{}{
				"status":       types.SendStatusRunning,
				"attempts":     gorm.Expr("attempts + 1"),
				"locked_at":    now,
				"heartbeat_at": now,
				"updated_at":   now,
			}).Error
		if uErr != nil {
			return uErr
		}
		claimed = &send
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (r *scheduledSendRepo) MarkSent(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.ScheduledSend{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     types.SendStatusSent,
			"sent_at":    at,
			"updated_at": at,
		}).Error
}

func (r *scheduledSendRepo) MarkFailed(ctx context.Context, tx *gorm.DB, id uuid.UUID, sendErr error) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	now := time.Now()
	msg := ""
	if sendErr != nil {
		msg = sendErr.Error()
	}
	return transaction.WithContext(ctx).
		Model(&types.ScheduledSend{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        types.SendStatusFailed,
			"last_error":    msg,
			"last_error_at": now,
			"updated_at":    now,
		}).Error
}

func (r *scheduledSendRepo) MarkSkipped(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.ScheduledSend{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     types.SendStatusSkipped,
			"updated_at": time.Now(),
		}).Error
}

func (r *scheduledSendRepo) Heartbeat(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	now := time.Now()
	return transaction.WithContext(ctx).
		Model(&types.ScheduledSend{}).
		Where("id = ? AND status = ?", id, types.SendStatusRunning).
		Updates(map[string]interface{}{
			"heartbeat_at": now,
			"updated_at":   now,
		}).Error
}

func (r *scheduledSendRepo) CountPendingBySequence(ctx context.Context, tx *gorm.DB, sequenceID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if sequenceID == uuid.Nil {
		return 0, nil
	}
	var count int64
	err := transaction.WithContext(ctx).
		Model(&types.ScheduledSend{}).
		Where("sequence_id = ? AND status IN ?", sequenceID,
			[]string{types.SendStatusQueued, types.SendStatusRunning, types.SendStatusFailed}).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *scheduledSendRepo) SkipPendingBySequence(ctx context.Context, tx *gorm.DB, sequenceID uuid.UUID) error {
	return r.flipBySequence(ctx, tx, sequenceID, types.SendStatusQueued, types.SendStatusSkipped)
}

func (r *scheduledSendRepo) RequeueSkippedBySequence(ctx context.Context, tx *gorm.DB, sequenceID uuid.UUID) error {
	return r.flipBySequence(ctx, tx, sequenceID, types.SendStatusSkipped, types.SendStatusQueued)
}

func (r *scheduledSendRepo) flipBySequence(ctx context.Context, tx *gorm.DB, sequenceID uuid.UUID, from, to string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if sequenceID == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.ScheduledSend{}).
		Where("sequence_id = ? AND status = ?", sequenceID, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		}).Error
}
