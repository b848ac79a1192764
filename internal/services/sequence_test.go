package services

import (
	"testing"
	"time"

	"github.com/deangilmoreremix/smartcrm-backend/internal/types"
)

func TestStepRunAt(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		dayOffset int
		want      time.Time
	}{
		{"zero offset sends immediately", 0, base},
		{"negative offset clamps to base", -2, base},
		{"three days out", 3, base.Add(72 * time.Hour)},
		{"nine days out", 9, base.Add(9 * 24 * time.Hour)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StepRunAt(base, tc.dayOffset); !got.Equal(tc.want) {
				t.Fatalf("StepRunAt(%v, %d) = %v, want %v", base, tc.dayOffset, got, tc.want)
			}
		})
	}
}

func TestParseSequenceSteps(t *testing.T) {
	step := func(channel, subject, body string) map[string]any {
		return map[string]any{"channel": channel, "subject": subject, "body": body}
	}

	obj := map[string]any{"steps": []any{
		step("email", "Intro", "Hi there"),
		step("sms", "", "Quick ping"),
		step("email", "Breakup", "Closing the loop"),
	}}

	steps, err := parseSequenceSteps(obj, 3, 4, true, types.ChannelEmail)
	if err != nil {
		t.Fatalf("parseSequenceSteps: %v", err)
	}
	if len(steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(steps))
	}
	for i, s := range steps {
		if s.Ordinal != i+1 {
			t.Fatalf("step %d ordinal = %d", i, s.Ordinal)
		}
		if want := i * 4; s.DayOffset != want {
			t.Fatalf("step %d day offset = %d, want %d", i, s.DayOffset, want)
		}
	}
	if steps[1].Channel != types.ChannelSMS {
		t.Fatalf("sms channel lost: %q", steps[1].Channel)
	}
}

func TestParseSequenceStepsNoPhoneDowngradesSMS(t *testing.T) {
	obj := map[string]any{"steps": []any{
		map[string]any{"channel": "sms", "subject": "", "body": "Ping"},
	}}
	steps, err := parseSequenceSteps(obj, 1, 3, false, types.ChannelEmail)
	if err != nil {
		t.Fatalf("parseSequenceSteps: %v", err)
	}
	if steps[0].Channel != types.ChannelEmail {
		t.Fatalf("sms step not downgraded to email: %q", steps[0].Channel)
	}
}

func TestParseSequenceStepsDropsExtras(t *testing.T) {
	var raw []any
	for i := 0; i < 6; i++ {
		raw = append(raw, map[string]any{"channel": "email", "subject": "s", "body": "b"})
	}
	steps, err := parseSequenceSteps(map[string]any{"steps": raw}, 4, 2, true, types.ChannelEmail)
	if err != nil {
		t.Fatalf("parseSequenceSteps: %v", err)
	}
	if len(steps) != 4 {
		t.Fatalf("expected extras dropped to 4 steps, got %d", len(steps))
	}
}

func TestParseSequenceStepsErrors(t *testing.T) {
	cases := []struct {
		name string
		obj  map[string]any
	}{
		{"missing steps", map[string]any{}},
		{"empty steps", map[string]any{"steps": []any{}}},
		{"non object step", map[string]any{"steps": []any{"nope"}}},
		{"empty body", map[string]any{"steps": []any{
			map[string]any{"channel": "email", "subject": "s", "body": "  "},
		}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parseSequenceSteps(tc.obj, 3, 3, true, types.ChannelEmail); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestParseSequenceStepsUnknownChannelUsesPreferred(t *testing.T) {
	obj := map[string]any{"steps": []any{
		map[string]any{"channel": "carrier-pigeon", "subject": "s", "body": "b"},
	}}
	steps, err := parseSequenceSteps(obj, 1, 3, true, types.ChannelSMS)
	if err != nil {
		t.Fatalf("parseSequenceSteps: %v", err)
	}
	if steps[0].Channel != types.ChannelSMS {
		t.Fatalf("unknown channel should fall back to the preferred one, got %q", steps[0].Channel)
	}
}
