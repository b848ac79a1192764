package services

import (
	"testing"

	"github.com/deangilmoreremix/smartcrm-backend/internal/types"
)

func strptr(s string) *string { return &s }

func TestApplyContactUpdate(t *testing.T) {
	contact := &types.Contact{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@acme.com",
		Title:     "Engineer",
		Status:    types.ContactStatusLead,
	}

	changed := applyContactUpdate(contact, ContactUpdate{
		Title:  strptr("VP Engineering"),
		Email:  strptr("  ADA@Acme.com "),
		Status: strptr(types.ContactStatusProspect),
	})

	if len(changed) != 2 {
		t.Fatalf("changed = %v, want title and status only", changed)
	}
	for _, f := range changed {
		if f != "title" && f != "status" {
			t.Fatalf("unexpected changed field %q", f)
		}
	}
	if contact.Title != "VP Engineering" || contact.Status != types.ContactStatusProspect {
		t.Fatalf("update not applied: %+v", contact)
	}
	// Email normalizes to the same value, so it does not count as a change.
	if contact.Email != "ada@acme.com" {
		t.Fatalf("email mangled: %q", contact.Email)
	}
}

func TestApplyContactUpdateNilFieldsUntouched(t *testing.T) {
	contact := &types.Contact{FirstName: "Grace", Company: "Navy"}
	changed := applyContactUpdate(contact, ContactUpdate{})
	if len(changed) != 0 {
		t.Fatalf("empty update reported changes: %v", changed)
	}
	if contact.FirstName != "Grace" || contact.Company != "Navy" {
		t.Fatalf("contact mutated: %+v", contact)
	}
}

func TestMergeContactFillsAndOverwrites(t *testing.T) {
	existing := &types.Contact{
		FirstName: "Ada",
		Phone:     "+14155552671",
		Company:   "Acme",
	}
	incoming := &types.Contact{
		LastName: "Lovelace",
		Company:  "Acme Widgets",
	}

	mergeContact(existing, incoming)

	if existing.LastName != "Lovelace" {
		t.Fatalf("blank field not filled: %+v", existing)
	}
	if existing.Company != "Acme Widgets" {
		t.Fatalf("incoming value should win: %q", existing.Company)
	}
	if existing.Phone != "+14155552671" {
		t.Fatalf("absent incoming field should not blank existing: %q", existing.Phone)
	}
}
