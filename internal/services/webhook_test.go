package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/deangilmoreremix/smartcrm-backend/internal/platform/apierr"
	"github.com/deangilmoreremix/smartcrm-backend/internal/platform/logger"
	"github.com/deangilmoreremix/smartcrm-backend/internal/types"
)

type recordingWebhookEventRepo struct {
	events []*types.WebhookEvent
}

func (r *recordingWebhookEventRepo) Create(ctx context.Context, tx *gorm.DB, events []*types.WebhookEvent) ([]*types.WebhookEvent, error) {
	r.events = append(r.events, events...)
	return events, nil
}

func (r *recordingWebhookEventRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	return nil
}

func (r *recordingWebhookEventRepo) ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.WebhookEvent, error) {
	return r.events, nil
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func webhookServiceForSecret(t *testing.T, secret string, events *recordingWebhookEventRepo) WebhookService {
	t.Helper()
	return NewWebhookService(nil, newTestLogger(t), secret, nil, events, nil, nil, nil, nil, nil)
}

func requireAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected *apierr.Error, got %T: %v", err, err)
	}
	if ae.Status != status || ae.Code != code {
		t.Fatalf("error: want %d/%s, got %d/%s", status, code, ae.Status, ae.Code)
	}
}

func TestHandleZapierRejectsWhenSecretUnset(t *testing.T) {
	events := &recordingWebhookEventRepo{}
	ws := webhookServiceForSecret(t, "", events)

	// No header either: empty-vs-empty must not pass the auth check.
	_, err := ws.HandleZapier(context.Background(), "", []byte(`{"action":"contact.created","owner_email":"rep@acme.com"}`))
	requireAPIError(t, err, http.StatusUnauthorized, "invalid_secret")

	if len(events.events) != 1 || events.events[0].Status != types.WebhookStatusRejected {
		t.Fatalf("expected one rejected audit row, got %+v", events.events)
	}
}

func TestHandleZapierRejectsWrongSecret(t *testing.T) {
	events := &recordingWebhookEventRepo{}
	ws := webhookServiceForSecret(t, "topsecret", events)

	_, err := ws.HandleZapier(context.Background(), "guess", []byte(`{}`))
	requireAPIError(t, err, http.StatusUnauthorized, "invalid_secret")
}

func TestHandleZapierMatchingSecretPassesAuth(t *testing.T) {
	events := &recordingWebhookEventRepo{}
	ws := webhookServiceForSecret(t, "topsecret", events)

	// Auth passes; the malformed body fails afterwards with 400, not 401.
	_, err := ws.HandleZapier(context.Background(), "topsecret", []byte(`not json`))
	requireAPIError(t, err, http.StatusBadRequest, "malformed_payload")

	if len(events.events) != 1 || events.events[0].Status != types.WebhookStatusRejected {
		t.Fatalf("expected one rejected audit row, got %+v", events.events)
	}
}
