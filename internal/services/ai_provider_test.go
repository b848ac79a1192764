package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/deangilmoreremix/smartcrm-backend/internal/types"
)

type fakeGenerator struct {
	model string
	obj   map[string]any
	text  string
	usage *types.TokenUsage
	err   error
}

func (f *fakeGenerator) GenerateText(ctx context.Context, system, user string) (string, *types.TokenUsage, error) {
	if f.err != nil {
		return "", nil, f.err
	}
	return f.text, f.usage, nil
}

func (f *fakeGenerator) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, *types.TokenUsage, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.obj, f.usage, nil
}

func (f *fakeGenerator) Model() string { return f.model }

type captureAICallLogRepo struct {
	rows []*types.AICallLog
}

func (c *captureAICallLogRepo) Create(ctx context.Context, tx *gorm.DB, logs []*types.AICallLog) ([]*types.AICallLog, error) {
	c.rows = append(c.rows, logs...)
	return logs, nil
}

func (c *captureAICallLogRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.AICallLog, error) {
	return c.rows, nil
}

func TestAIProviderRecordsUsage(t *testing.T) {
	calls := &captureAICallLogRepo{}
	gen := &fakeGenerator{
		model: "gpt-4o-mini",
		obj:   map[string]any{"subject": "hi", "body": "there"},
		usage: &types.TokenUsage{InputTokens: 120, OutputTokens: 45, TotalTokens: 165},
	}
	ai, err := NewAIProvider(newTestLogger(t), calls, ProviderOpenAI, gen, nil)
	if err != nil {
		t.Fatalf("NewAIProvider: %v", err)
	}

	meta := AICallMeta{UserID: uuid.New(), CallType: types.AICallTypeEmailGenerate}
	_, provider, err := ai.GenerateJSON(context.Background(), meta, "sys", "user", "sales_email", map[string]any{"type": "object"})
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if provider != ProviderOpenAI {
		t.Fatalf("provider = %q, want %q", provider, ProviderOpenAI)
	}

	if len(calls.rows) != 1 {
		t.Fatalf("expected 1 call log row, got %d", len(calls.rows))
	}
	row := calls.rows[0]
	if !row.Success || row.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected row: %+v", row)
	}
	if len(row.Usage) == 0 {
		t.Fatalf("usage not recorded on call log row")
	}
	var got types.TokenUsage
	if err := json.Unmarshal(row.Usage, &got); err != nil {
		t.Fatalf("unmarshal usage: %v", err)
	}
	if got.InputTokens != 120 || got.OutputTokens != 45 || got.TotalTokens != 165 {
		t.Fatalf("usage = %+v, want 120/45/165", got)
	}
}

func TestAIProviderFallbackLogsBothAttempts(t *testing.T) {
	calls := &captureAICallLogRepo{}
	broken := &fakeGenerator{model: "gpt-4o-mini", err: errors.New("rate limited")}
	working := &fakeGenerator{
		model: "gemini-2.0-flash",
		text:  "hello",
		usage: &types.TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
	}
	ai, err := NewAIProvider(newTestLogger(t), calls, ProviderOpenAI, broken, working)
	if err != nil {
		t.Fatalf("NewAIProvider: %v", err)
	}

	out, provider, err := ai.GenerateText(context.Background(), AICallMeta{CallType: types.AICallTypeEnrichment}, "sys", "user")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if out != "hello" || provider != ProviderGemini {
		t.Fatalf("got out=%q provider=%q, want hello/%s", out, provider, ProviderGemini)
	}

	if len(calls.rows) != 2 {
		t.Fatalf("expected 2 call log rows, got %d", len(calls.rows))
	}
	if calls.rows[0].Success || calls.rows[0].Provider != ProviderOpenAI {
		t.Fatalf("first row should be the failed openai attempt: %+v", calls.rows[0])
	}
	if len(calls.rows[0].Usage) != 0 {
		t.Fatalf("failed attempt without usage should leave the field empty")
	}
	if !calls.rows[1].Success || calls.rows[1].Provider != ProviderGemini {
		t.Fatalf("second row should be the gemini success: %+v", calls.rows[1])
	}
	if len(calls.rows[1].Usage) == 0 {
		t.Fatalf("usage not recorded on fallback success")
	}
}
