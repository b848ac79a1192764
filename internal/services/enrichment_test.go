package services

import "testing"

func TestCompanyFromEmail(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain work domain", "jane@acme.com", "Acme"},
		{"hyphenated domain", "jane@acme-widgets.io", "Acme Widgets"},
		{"underscore domain", "ops@big_data.co", "Big Data"},
		{"gmail yields nothing", "bob@gmail.com", ""},
		{"outlook yields nothing", "bob@outlook.com", ""},
		{"no at sign", "not-an-email", ""},
		{"trailing at sign", "jane@", ""},
		{"uppercase domain normalizes", "jane@ACME.COM", "Acme"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CompanyFromEmail(tc.in); got != tc.want {
				t.Fatalf("CompanyFromEmail(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
