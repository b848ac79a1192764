package rules

import "testing"

func TestScoreLead(t *testing.T) {
	rs := Default()

	cases := []struct {
		name string
		in   ScoreInput
		want int
	}{
		{
			name: "bare_lead_gets_base",
			in:   ScoreInput{},
			want: 10,
		},
		{
			name: "full_fields_vip",
			in: ScoreInput{
				Email:   "ceo@acme.com",
				Phone:   "+14155550100",
				Title:   "CEO",
				Company: "Acme",
			},
			// 10 base + 30 fields + 25 vip
			want: 65,
		},
		{
			name: "engaged_vip_top_bucket",
			in: ScoreInput{
				Email:         "ceo@acme.com",
				Phone:         "+14155550100",
				Title:         "Founder & CEO",
				Company:       "Acme",
				ActivityCount: 12,
			},
			want: 85,
		},
		{
			name: "competitor_penalty_applies",
			in: ScoreInput{
				Email:   "rep@hubspot.com",
				Title:   "Account Executive",
				Company: "HubSpot",
			},
			// 10 base + 20 fields - 30 competitor
			want: 0,
		},
		{
			name: "senior_title_mid_tier",
			in: ScoreInput{
				Email: "d@acme.com",
				Title: "Director of Ops",
			},
			// 10 base + 15 fields + 10 senior
			want: 35,
		},
		{
			name: "never_negative",
			in:   ScoreInput{IsCompetitor: true},
			want: 0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := rs.ScoreLead(tc.in)
			if got.Total != tc.want {
				t.Fatalf("ScoreLead(%+v).Total=%d, want %d (breakdown %+v)", tc.in, got.Total, tc.want, got)
			}
		})
	}
}

func TestChannelScores(t *testing.T) {
	got := ChannelScores(ChannelCounts{Email: 2, SMS: 1, Calls: 1, Meetings: 1})
	// shared = 2*1 + 3*1 = 5
	if got["email"] != 3*2+5 {
		t.Fatalf("email score=%d, want %d", got["email"], 11)
	}
	if got["sms"] != 4*1+5 {
		t.Fatalf("sms score=%d, want %d", got["sms"], 9)
	}
}

func TestPreferredChannel(t *testing.T) {
	cases := []struct {
		name     string
		counts   ChannelCounts
		hasPhone bool
		want     string
	}{
		{name: "default_email", counts: ChannelCounts{}, hasPhone: true, want: "email"},
		{name: "sms_wins_with_history", counts: ChannelCounts{SMS: 3}, hasPhone: true, want: "sms"},
		{name: "sms_needs_phone", counts: ChannelCounts{SMS: 3}, hasPhone: false, want: "email"},
		{name: "tie_goes_to_email", counts: ChannelCounts{Email: 4, SMS: 3}, hasPhone: true, want: "email"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PreferredChannel(tc.counts, tc.hasPhone); got != tc.want {
				t.Fatalf("PreferredChannel(%+v, %v)=%q, want %q", tc.counts, tc.hasPhone, got, tc.want)
			}
		})
	}
}
