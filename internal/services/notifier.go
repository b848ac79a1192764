package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/deangilmoreremix/smartcrm-backend/internal/platform/logger"
	"github.com/deangilmoreremix/smartcrm-backend/internal/realtime"
	"github.com/deangilmoreremix/smartcrm-backend/internal/repos"
	"github.com/deangilmoreremix/smartcrm-backend/internal/types"
)

// Notifier writes a notification feed row and fans it out over SSE. Feed
// inserts never fail the caller's primary write: a failed insert is logged
// and dropped.
type Notifier interface {
	ContactUpdated(ctx context.Context, userID uuid.UUID, contact *types.Contact, changed []string)
	DealStageChanged(ctx context.Context, userID uuid.UUID, deal *types.Deal, fromStage string)
	SequenceActivated(ctx context.Context, userID uuid.UUID, seq *types.Sequence)
	SequenceStepSent(ctx context.Context, userID uuid.UUID, sequenceID uuid.UUID, ordinal int, channel string)
	SequenceCompleted(ctx context.Context, userID uuid.UUID, seq *types.Sequence)
	WebhookReceived(ctx context.Context, userID uuid.UUID, action string, contactID *uuid.UUID)
}

type notifier struct {
	log              *logger.Logger
	notificationRepo repos.NotificationRepo
	emit             SSEEmitter
}

func NewNotifier(log *logger.Logger, notificationRepo repos.NotificationRepo, emit SSEEmitter) Notifier {
	return &notifier{
		log:              log.With("service", "Notifier"),
		notificationRepo: notificationRepo,
		emit:             emit,
	}
}

func (n *notifier) ContactUpdated(ctx context.Context, userID uuid.UUID, contact *types.Contact, changed []string) {
	if n == nil || userID == uuid.Nil || contact == nil {
		return
	}
	n.deliver(ctx, userID, realtime.SSEEventContactUpdated, &types.Notification{
		ID:     uuid.New(),
		UserID: userID,
		Type:   types.NotificationContactUpdated,
		Title:  "Contact updated",
		Body:   contact.FullName(),
		Data:   mustJSON(map[string]any{"contact_id": contact.ID, "changed": changed}),
	}, map[string]any{"contact_id": contact.ID, "changed": changed})
}

func (n *notifier) DealStageChanged(ctx context.Context, userID uuid.UUID, deal *types.Deal, fromStage string) {
	if n == nil || userID == uuid.Nil || deal == nil {
		return
	}
	n.deliver(ctx, userID, realtime.SSEEventDealStageChanged, &types.Notification{
		ID:     uuid.New(),
		UserID: userID,
		Type:   types.NotificationDealStageChanged,
		Title:  "Deal stage changed",
		Body:   deal.Title,
		Data:   mustJSON(map[string]any{"deal_id": deal.ID, "from": fromStage, "to": deal.Stage}),
	}, map[string]any{"deal_id": deal.ID, "from": fromStage, "to": deal.Stage})
}

func (n *notifier) SequenceActivated(ctx context.Context, userID uuid.UUID, seq *types.Sequence) {
	if n == nil || userID == uuid.Nil || seq == nil {
		return
	}
	n.emitOnly(ctx, userID, realtime.SSEEventSequenceActivated, map[string]any{"sequence_id": seq.ID})
}

func (n *notifier) SequenceStepSent(ctx context.Context, userID uuid.UUID, sequenceID uuid.UUID, ordinal int, channel string) {
	if n == nil || userID == uuid.Nil {
		return
	}
	n.emitOnly(ctx, userID, realtime.SSEEventSequenceStepSent, map[string]any{
		"sequence_id": sequenceID,
		"ordinal":     ordinal,
		"channel":     channel,
	})
}

func (n *notifier) SequenceCompleted(ctx context.Context, userID uuid.UUID, seq *types.Sequence) {
	if n == nil || userID == uuid.Nil || seq == nil {
		return
	}
	n.deliver(ctx, userID, realtime.SSEEventSequenceCompleted, &types.Notification{
		ID:     uuid.New(),
		UserID: userID,
		Type:   types.NotificationSequenceCompleted,
		Title:  "Sequence completed",
		Body:   seq.Goal,
		Data:   mustJSON(map[string]any{"sequence_id": seq.ID, "contact_id": seq.ContactID}),
	}, map[string]any{"sequence_id": seq.ID, "contact_id": seq.ContactID})
}

func (n *notifier) WebhookReceived(ctx context.Context, userID uuid.UUID, action string, contactID *uuid.UUID) {
	if n == nil || userID == uuid.Nil {
		return
	}
	data := map[string]any{"action": action}
	if contactID != nil {
		data["contact_id"] = *contactID
	}
	n.deliver(ctx, userID, realtime.SSEEventWebhookReceived, &types.Notification{
		ID:     uuid.New(),
		UserID: userID,
		Type:   types.NotificationWebhookReceived,
		Title:  "Webhook received",
		Body:   action,
		Data:   mustJSON(data),
	}, data)
}

func (n *notifier) deliver(ctx context.Context, userID uuid.UUID, event realtime.SSEEvent, row *types.Notification, data map[string]any) {
	if _, err := n.notificationRepo.Create(ctx, nil, []*types.Notification{row}); err != nil {
		n.log.Warn("notification insert failed; dropping feed row",
			"user_id", userID,
			"type", row.Type,
			"error", err,
		)
	} else {
		n.emitOnly(ctx, userID, realtime.SSEEventNotificationCreated, map[string]any{"notification": row})
	}
	n.emitOnly(ctx, userID, event, data)
}

func (n *notifier) emitOnly(ctx context.Context, userID uuid.UUID, event realtime.SSEEvent, data map[string]any) {
	if n.emit == nil {
		return
	}
	n.emit.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.UserChannel(userID),
		Event:   event,
		Data:    data,
	})
}

func mustJSON(v any) []byte {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return raw
}
