package repos

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/deangilmoreremix/smartcrm-backend/internal/repos/testutil"
	"github.com/deangilmoreremix/smartcrm-backend/internal/types"
)

func TestScheduledSendClaimLifecycle(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	owner := testutil.SeedUser(t, ctx, tx, "claim-owner@example.com")
	contact := testutil.SeedContact(t, ctx, tx, owner.ID, "claim-contact@example.com")

	seqRepo := NewSequenceRepo(db, log)
	created, err := seqRepo.Create(ctx, tx, []*types.Sequence{{
		ID:          uuid.New(),
		OwnerUserID: owner.ID,
		ContactID:   contact.ID,
		Persona:     "friendly SDR",
		Goal:        "book a demo",
		Status:      types.SequenceStatusActive,
		Steps: []*types.SequenceStep{
			{ID: uuid.New(), Ordinal: 1, Channel: types.ChannelEmail, Subject: "hi", Body: "first touch"},
			{ID: uuid.New(), Ordinal: 2, Channel: types.ChannelSMS, Body: "quick bump", DayOffset: 2},
		},
	}})
	if err != nil {
		t.Fatalf("seed sequence: %v", err)
	}
	seq := created[0]

	repo := NewScheduledSendRepo(db, log)
	now := time.Now()
	due := &types.ScheduledSend{
		ID:          uuid.New(),
		OwnerUserID: owner.ID,
		SequenceID:  seq.ID,
		StepID:      seq.Steps[0].ID,
		ContactID:   contact.ID,
		Channel:     types.ChannelEmail,
		Status:      types.SendStatusQueued,
		RunAt:       now.Add(-time.Minute),
	}
	future := &types.ScheduledSend{
		ID:          uuid.New(),
		OwnerUserID: owner.ID,
		SequenceID:  seq.ID,
		StepID:      seq.Steps[1].ID,
		ContactID:   contact.ID,
		Channel:     types.ChannelSMS,
		Status:      types.SendStatusQueued,
		RunAt:       now.Add(48 * time.Hour),
	}
	if _, err := repo.Create(ctx, tx, []*types.ScheduledSend{due, future}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	claimed, err := repo.ClaimNextRunnable(ctx, tx, 3, time.Minute, 5*time.Minute)
	if err != nil {
		t.Fatalf("ClaimNextRunnable: %v", err)
	}
	if claimed == nil || claimed.ID != due.ID {
		t.Fatalf("expected due row %s claimed, got %+v", due.ID, claimed)
	}

	got, err := repo.GetByIDs(ctx, tx, []uuid.UUID{due.ID})
	if err != nil || len(got) != 1 {
		t.Fatalf("GetByIDs: %v (%d rows)", err, len(got))
	}
	if got[0].Status != types.SendStatusRunning || got[0].Attempts != 1 {
		t.Fatalf("after claim: status=%s attempts=%d", got[0].Status, got[0].Attempts)
	}

	// The future row is not due, so a second claim finds nothing.
	second, err := repo.ClaimNextRunnable(ctx, tx, 3, time.Minute, 5*time.Minute)
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if second != nil {
		t.Fatalf("expected no claimable row, got %s", second.ID)
	}

	if err := repo.Heartbeat(ctx, tx, due.ID); err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}

	if err := repo.MarkFailed(ctx, tx, due.ID, errors.New("smtp timeout")); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	// With no retry delay the failed row is immediately claimable again.
	reclaimed, err := repo.ClaimNextRunnable(ctx, tx, 3, 0, 5*time.Minute)
	if err != nil {
		t.Fatalf("reclaim: %v", err)
	}
	if reclaimed == nil || reclaimed.ID != due.ID {
		t.Fatalf("expected failed row reclaimed, got %+v", reclaimed)
	}
	got, _ = repo.GetByIDs(ctx, tx, []uuid.UUID{due.ID})
	if got[0].Attempts != 2 || got[0].LastError != "smtp timeout" {
		t.Fatalf("after reclaim: attempts=%d last_error=%q", got[0].Attempts, got[0].LastError)
	}

	if err := repo.MarkSent(ctx, tx, due.ID, time.Now()); err != nil {
		t.Fatalf("MarkSent: %v", err)
	}
	got, _ = repo.GetByIDs(ctx, tx, []uuid.UUID{due.ID})
	if got[0].Status != types.SendStatusSent || got[0].SentAt == nil {
		t.Fatalf("after MarkSent: status=%s sent_at=%v", got[0].Status, got[0].SentAt)
	}

	pending, err := repo.CountPendingBySequence(ctx, tx, seq.ID)
	if err != nil {
		t.Fatalf("CountPendingBySequence: %v", err)
	}
	if pending != 1 {
		t.Fatalf("expected 1 pending row, got %d", pending)
	}
}

func TestScheduledSendSkipAndRequeue(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	owner := testutil.SeedUser(t, ctx, tx, "skip-owner@example.com")
	contact := testutil.SeedContact(t, ctx, tx, owner.ID, "skip-contact@example.com")

	seqRepo := NewSequenceRepo(db, log)
	created, err := seqRepo.Create(ctx, tx, []*types.Sequence{{
		ID:          uuid.New(),
		OwnerUserID: owner.ID,
		ContactID:   contact.ID,
		Status:      types.SequenceStatusActive,
		Steps: []*types.SequenceStep{
			{ID: uuid.New(), Ordinal: 1, Channel: types.ChannelEmail, Body: "b"},
		},
	}})
	if err != nil {
		t.Fatalf("seed sequence: %v", err)
	}
	seq := created[0]

	repo := NewScheduledSendRepo(db, log)
	send := &types.ScheduledSend{
		ID:          uuid.New(),
		OwnerUserID: owner.ID,
		SequenceID:  seq.ID,
		StepID:      seq.Steps[0].ID,
		ContactID:   contact.ID,
		Channel:     types.ChannelEmail,
		Status:      types.SendStatusQueued,
		RunAt:       time.Now().Add(-time.Minute),
	}
	if _, err := repo.Create(ctx, tx, []*types.ScheduledSend{send}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := repo.SkipPendingBySequence(ctx, tx, seq.ID); err != nil {
		t.Fatalf("SkipPendingBySequence: %v", err)
	}
	got, _ := repo.GetByIDs(ctx, tx, []uuid.UUID{send.ID})
	if got[0].Status != types.SendStatusSkipped {
		t.Fatalf("after skip: status=%s", got[0].Status)
	}
	if claimed, _ := repo.ClaimNextRunnable(ctx, tx, 3, time.Minute, 5*time.Minute); claimed != nil {
		t.Fatalf("skipped row should not be claimable, got %s", claimed.ID)
	}

	if err := repo.RequeueSkippedBySequence(ctx, tx, seq.ID); err != nil {
		t.Fatalf("RequeueSkippedBySequence: %v", err)
	}
	claimed, err := repo.ClaimNextRunnable(ctx, tx, 3, time.Minute, 5*time.Minute)
	if err != nil {
		t.Fatalf("claim after requeue: %v", err)
	}
	if claimed == nil || claimed.ID != send.ID {
		t.Fatalf("expected requeued row claimed, got %+v", claimed)
	}
}
