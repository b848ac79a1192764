package rules

import "testing"

func TestIsVIPTitle(t *testing.T) {
	rs := Default()

	cases := []struct {
		name  string
		title string
		want  bool
	}{
		{name: "plain_ceo", title: "CEO", want: true},
		{name: "embedded", title: "Co-Founder & CEO", want: true},
		{name: "chief_anything", title: "Chief Revenue Officer", want: true},
		{name: "vp_is_not_vip", title: "VP of Sales", want: false},
		{name: "ic", title: "Software Engineer", want: false},
		{name: "empty", title: "", want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := rs.IsVIPTitle(tc.title); got != tc.want {
				t.Fatalf("IsVIPTitle(%q)=%v, want %v", tc.title, got, tc.want)
			}
		})
	}
}

func TestIsCompetitor(t *testing.T) {
	rs := Default()

	cases := []struct {
		name    string
		company string
		want    bool
	}{
		{name: "exact", company: "HubSpot", want: true},
		{name: "substring", company: "Salesforce Inc.", want: true},
		{name: "case_insensitive", company: "PIPEDRIVE", want: true},
		{name: "unrelated", company: "Acme Rockets", want: false},
		{name: "empty", company: "", want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := rs.IsCompetitor(tc.company); got != tc.want {
				t.Fatalf("IsCompetitor(%q)=%v, want %v", tc.company, got, tc.want)
			}
		})
	}
}
