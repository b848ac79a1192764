package repos

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/deangilmoreremix/smartcrm-backend/internal/repos/testutil"
	"github.com/deangilmoreremix/smartcrm-backend/internal/types"
)

func TestContactRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	owner := testutil.SeedUser(t, ctx, tx, "contactrepo@example.com")
	repo := NewContactRepo(db, testutil.Logger(t))

	created, err := repo.Create(ctx, tx, []*types.Contact{
		{
			ID:          uuid.New(),
			OwnerUserID: owner.ID,
			FirstName:   "Ada",
			LastName:    "Lovelace",
			Email:       "ada@acme.com",
			Company:     "Acme",
			Status:      types.ContactStatusLead,
			Region:      "west",
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("Create: expected 1 contact, got %d", len(created))
	}

	got, err := repo.GetByOwnerAndEmail(ctx, tx, owner.ID, "ADA@acme.com")
	if err != nil {
		t.Fatalf("GetByOwnerAndEmail: %v", err)
	}
	if got == nil || got.ID != created[0].ID {
		t.Fatalf("GetByOwnerAndEmail: unexpected result: %+v", got)
	}

	list, total, err := repo.ListByOwner(ctx, tx, owner.ID, ContactFilter{Search: "love"})
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if total != 1 || len(list) != 1 {
		t.Fatalf("ListByOwner: expected 1 match, got total=%d len=%d", total, len(list))
	}

	list, total, err = repo.ListByOwner(ctx, tx, owner.ID, ContactFilter{Status: types.ContactStatusCustomer})
	if err != nil {
		t.Fatalf("ListByOwner status filter: %v", err)
	}
	if total != 0 || len(list) != 0 {
		t.Fatalf("ListByOwner status filter: expected empty, got total=%d len=%d", total, len(list))
	}

	if err := repo.UpdateFields(ctx, tx, created[0].ID, map[string]interface{}{
		"score":  72,
		"is_vip": true,
	}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	updated, err := repo.GetByIDs(ctx, tx, []uuid.UUID{created[0].ID})
	if err != nil || len(updated) != 1 {
		t.Fatalf("GetByIDs after update: %v (%d rows)", err, len(updated))
	}
	if updated[0].Score != 72 || !updated[0].IsVIP {
		t.Fatalf("UpdateFields not applied: %+v", updated[0])
	}

	counts, err := repo.CountByStatus(ctx, tx, owner.ID)
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	if len(counts) != 1 || counts[0].Status != types.ContactStatusLead || counts[0].Count != 1 {
		t.Fatalf("CountByStatus: unexpected result: %+v", counts)
	}

	if err := repo.SoftDeleteByIDs(ctx, tx, []uuid.UUID{created[0].ID}); err != nil {
		t.Fatalf("SoftDeleteByIDs: %v", err)
	}
	gone, err := repo.GetByIDs(ctx, tx, []uuid.UUID{created[0].ID})
	if err != nil {
		t.Fatalf("GetByIDs after delete: %v", err)
	}
	if len(gone) != 0 {
		t.Fatalf("expected soft-deleted contact to be hidden, got %+v", gone)
	}
}

func TestContactRepoDuplicateEmailConflict(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()

	// The partial unique index only applies outside a rolled-back tx when
	// created by migration, so this test uses the pool and cleans up.
	owner := testutil.SeedUser(t, ctx, db, "dupemail-"+uuid.NewString()+"@example.com")
	t.Cleanup(func() {
		db.Unscoped().Where("owner_user_id = ?", owner.ID).Delete(&types.Contact{})
		db.Unscoped().Where("id = ?", owner.ID).Delete(&types.User{})
	})

	repo := NewContactRepo(db, testutil.Logger(t))
	email := "dup-" + uuid.NewString() + "@acme.com"

	_, err := repo.Create(ctx, nil, []*types.Contact{{ID: uuid.New(), OwnerUserID: owner.ID, Email: email}})
	if err != nil {
		t.Fatalf("first Create: %v", err)
	}
	_, err = repo.Create(ctx, nil, []*types.Contact{{ID: uuid.New(), OwnerUserID: owner.ID, Email: email}})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("second Create: expected ErrConflict, got %v", err)
	}
}
