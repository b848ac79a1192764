package rules

import "testing"

func TestAssignTerritory(t *testing.T) {
	rs := Default()

	cases := []struct {
		name       string
		zip        string
		wantState  string
		wantRegion string
	}{
		{name: "sf_bay_area", zip: "94105", wantState: "CA", wantRegion: "west"},
		{name: "manhattan", zip: "10001", wantState: "NY", wantRegion: "northeast"},
		{name: "austin", zip: "78701", wantState: "TX", wantRegion: "south"},
		{name: "chicago", zip: "60601", wantState: "IL", wantRegion: "midwest"},
		{name: "unknown_prefix", zip: "99999", wantState: "", wantRegion: DefaultRegion},
		{name: "too_short", zip: "94", wantState: "", wantRegion: DefaultRegion},
		{name: "empty", zip: "", wantState: "", wantRegion: DefaultRegion},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := rs.AssignTerritory(tc.zip)
			if got.State != tc.wantState {
				t.Fatalf("AssignTerritory(%q).State=%q, want %q", tc.zip, got.State, tc.wantState)
			}
			if got.Region != tc.wantRegion {
				t.Fatalf("AssignTerritory(%q).Region=%q, want %q", tc.zip, got.Region, tc.wantRegion)
			}
			if got.Rep == "" {
				t.Fatalf("AssignTerritory(%q).Rep is empty", tc.zip)
			}
		})
	}
}

func TestRepForRegionFallback(t *testing.T) {
	rs := Default()
	if rep := rs.RepForRegion("atlantis"); rep != DefaultRep {
		t.Fatalf("RepForRegion(atlantis)=%q, want %q", rep, DefaultRep)
	}
	if rep := rs.RepForRegion("west"); rep != "west-pod" {
		t.Fatalf("RepForRegion(west)=%q, want west-pod", rep)
	}
}
