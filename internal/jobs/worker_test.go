package jobs

import (
	"testing"

	"github.com/deangilmoreremix/smartcrm-backend/internal/types"
)

func TestRenderStep(t *testing.T) {
	contact := &types.Contact{FirstName: "Ada", Company: "Acme"}

	cases := []struct {
		name        string
		step        *types.SequenceStep
		wantSubject string
		wantBody    string
	}{
		{
			name:        "fills tokens in subject and body",
			step:        &types.SequenceStep{Subject: "For {{first_name}}", Body: "Hi {{first_name}}, how is {{company}}?"},
			wantSubject: "For Ada",
			wantBody:    "Hi Ada, how is Acme?",
		},
		{
			name:        "sms step without subject",
			step:        &types.SequenceStep{Body: "{{first_name}}, quick ping from our team."},
			wantSubject: "",
			wantBody:    "Ada, quick ping from our team.",
		},
		{
			name:        "no tokens passes through",
			step:        &types.SequenceStep{Subject: "Checking in", Body: "Still interested?"},
			wantSubject: "Ada, checking in",
			wantBody:    "Still interested?",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			subject, body := renderStep(tc.step, contact)
			if subject != tc.wantSubject {
				t.Fatalf("subject = %q, want %q", subject, tc.wantSubject)
			}
			if body != tc.wantBody {
				t.Fatalf("body = %q, want %q", body, tc.wantBody)
			}
		})
	}
}
