package services

import "testing"

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"formatted us number", "(415) 555-2671", "+14155552671", false},
		{"bare ten digits", "4155552671", "+14155552671", false},
		{"eleven digits with country code", "14155552671", "+14155552671", false},
		{"already e164", "+14155552671", "+14155552671", false},
		{"uk number with spaces", "+44 20 7946 0958", "+442079460958", false},
		{"dots and dashes", "415.555.2671", "+14155552671", false},
		{"too short", "555-2671", "", true},
		{"too long without plus", "123456789012", "", true},
		{"plus but too many digits", "+1234567890123456", "", true},
		{"empty", "", "", true},
		{"whitespace only", "   ", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizePhone(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("NormalizePhone(%q) = %q, expected error", tc.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizePhone(%q): %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("NormalizePhone(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
