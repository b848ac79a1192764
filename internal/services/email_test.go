package services

import (
	"strings"
	"testing"
)

func TestPersonalizeSubject(t *testing.T) {
	cases := []struct {
		name      string
		subject   string
		firstName string
		company   string
		want      string
	}{
		{
			name:      "fills both tokens",
			subject:   "Quick question for {{first_name}} at {{company}}",
			firstName: "Ada",
			company:   "Acme",
			want:      "Quick question for Ada at Acme",
		},
		{
			name:    "empty token values leave no stray spacing",
			subject: "Hello {{first_name}}",
			want:    "Hello",
		},
		{
			name:      "prefixes first name when no token present",
			subject:   "Quick question about your renewal",
			firstName: "Ada",
			want:      "Ada, quick question about your renewal",
		},
		{
			name:      "no prefix when the name already appears",
			subject:   "Ada, are you free this week?",
			firstName: "Ada",
			want:      "Ada, are you free this week?",
		},
		{
			name:    "no first name leaves the subject alone",
			subject: "Following up on our chat",
			want:    "Following up on our chat",
		},
		{
			name:      "leading token puts the name first",
			subject:   "{{first_name}}, meet your new workflow",
			firstName: "Grace",
			want:      "Grace, meet your new workflow",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PersonalizeSubject(tc.subject, tc.firstName, tc.company)
			if got != tc.want {
				t.Fatalf("PersonalizeSubject(%q, %q, %q) = %q, want %q",
					tc.subject, tc.firstName, tc.company, got, tc.want)
			}
		})
	}
}

func TestPersonalizeSubjectCapsLength(t *testing.T) {
	long := strings.Repeat("synergy ", 20)
	got := PersonalizeSubject(long, "Ada", "")
	if len([]rune(got)) > subjectMaxLen {
		t.Fatalf("subject not capped: %d runes: %q", len([]rune(got)), got)
	}
	if strings.HasSuffix(got, " ") || strings.HasSuffix(got, ",") {
		t.Fatalf("capped subject has trailing separator: %q", got)
	}
	// The cut lands on a word boundary, never mid word.
	words := strings.Fields(got)
	if last := words[len(words)-1]; last != "synergy" && last != "Ada," {
		t.Fatalf("cut mid word: %q", got)
	}
}

func TestPersonalizeSubjectDeterministic(t *testing.T) {
	a := PersonalizeSubject("Intro for {{first_name}}", "Ada", "Acme")
	b := PersonalizeSubject("Intro for {{first_name}}", "Ada", "Acme")
	if a != b {
		t.Fatalf("transform not deterministic: %q vs %q", a, b)
	}
}
