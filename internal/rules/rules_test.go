package rules

import (
	"os"
	"path/filepath"
	"testing"
)

func writeRulesFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write overlay: %v", err)
	}
	return path
}

func TestLoadMergesOverlay(t *testing.T) {
	path := writeRulesFile(t, `
competitors:
  - rivalcrm
region_reps:
  west: coastal-pod
`)
	rs, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rs.RegionReps["west"] != "coastal-pod" {
		t.Fatalf("override not applied: west rep = %q", rs.RegionReps["west"])
	}
	if !rs.IsCompetitor("RivalCRM Inc") {
		t.Fatalf("overlay competitor not matched")
	}
	// Base entries survive the merge.
	if rs.RegionReps["south"] != "south-pod" {
		t.Fatalf("default rep lost: south = %q", rs.RegionReps["south"])
	}
}

func TestLoadOverlayLeavesDefaultsUntouched(t *testing.T) {
	path := writeRulesFile(t, `
region_reps:
  west: coastal-pod
zip_prefix_states:
  "999": XX
`)
	if _, err := Load(path); err != nil {
		t.Fatalf("Load overlay: %v", err)
	}

	// A later load without the overlay must not see its entries.
	fresh, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}
	if fresh.RegionReps["west"] != "west-pod" {
		t.Fatalf("defaults polluted: west rep = %q", fresh.RegionReps["west"])
	}
	if _, ok := fresh.ZipPrefixStates["999"]; ok {
		t.Fatalf("defaults polluted: overlay zip prefix leaked into defaults")
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing rules file")
	}
}
