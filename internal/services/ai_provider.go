package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/deangilmoreremix/smartcrm-backend/internal/observability"
	"github.com/deangilmoreremix/smartcrm-backend/internal/platform/logger"
	"github.com/deangilmoreremix/smartcrm-backend/internal/repos"
	"github.com/deangilmoreremix/smartcrm-backend/internal/types"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// TextGenerator is the provider-neutral LLM surface both clients satisfy.
// Usage may be nil when the provider omits it.
type TextGenerator interface {
	GenerateText(ctx context.Context, system string, user string) (string, *types.TokenUsage, error)
	GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, *types.TokenUsage, error)
	Model() string
}

// AICallMeta ties a provider call to the CRM rows it was made for.
type AICallMeta struct {
	UserID    uuid.UUID
	ContactID *uuid.UUID
	CallType  string
}

// AIProvider routes generation calls to the preferred provider, falls back to
// the secondary on failure, and records every attempt to ai_call_log.
type AIProvider interface {
	GenerateText(ctx context.Context, meta AICallMeta, system, user string) (string, string, error)
	GenerateJSON(ctx context.Context, meta AICallMeta, system, user, schemaName string, schema map[string]any) (map[string]any, string, error)
}

type aiProvider struct {
	log       *logger.Logger
	aiCallLog repos.AICallLogRepo
	primary   TextGenerator
	secondary TextGenerator

	primaryName   string
	secondaryName string
}

// NewAIProvider picks the preferred provider by name; either client may be
// nil when its API key is absent, as long as one is configured.
func NewAIProvider(log *logger.Logger, aiCallLog repos.AICallLogRepo, preferred string, openaiClient, geminiClient TextGenerator) (AIProvider, error) {
	p := &aiProvider{
		log:       log.With("service", "AIProvider"),
		aiCallLog: aiCallLog,
	}
	switch strings.ToLower(strings.TrimSpace(preferred)) {
	case ProviderGemini:
		p.primary, p.primaryName = geminiClient, ProviderGemini
		p.secondary, p.secondaryName = openaiClient, ProviderOpenAI
	default:
		p.primary, p.primaryName = openaiClient, ProviderOpenAI
		p.secondary, p.secondaryName = geminiClient, ProviderGemini
	}
	if p.primary == nil && p.secondary == nil {
		return nil, fmt.Errorf("no AI provider configured")
	}
	if p.primary == nil {
		p.primary, p.primaryName = p.secondary, p.secondaryName
		p.secondary = nil
	}
	return p, nil
}

func (p *aiProvider) GenerateText(ctx context.Context, meta AICallMeta, system, user string) (string, string, error) {
	out, providerName, err := p.runWithFallback(ctx, meta, user, func(gen TextGenerator) (any, *types.TokenUsage, error) {
		return gen.GenerateText(ctx, system, user)
	})
	if err != nil {
		return "", providerName, err
	}
	return out.(string), providerName, nil
}

func (p *aiProvider) GenerateJSON(ctx context.Context, meta AICallMeta, system, user, schemaName string, schema map[string]any) (map[string]any, string, error) {
	out, providerName, err := p.runWithFallback(ctx, meta, user, func(gen TextGenerator) (any, *types.TokenUsage, error) {
		return gen.GenerateJSON(ctx, system, user, schemaName, schema)
	})
	if err != nil {
		return nil, providerName, err
	}
	return out.(map[string]any), providerName, nil
}

func (p *aiProvider) runWithFallback(ctx context.Context, meta AICallMeta, prompt string, call func(TextGenerator) (any, *types.TokenUsage, error)) (any, string, error) {
	out, err := p.runOne(ctx, p.primary, p.primaryName, meta, prompt, call)
	if err == nil {
		return out, p.primaryName, nil
	}
	if p.secondary == nil {
		return nil, p.primaryName, err
	}
	p.log.Warn("primary AI provider failed; falling back",
		"primary", p.primaryName,
		"fallback", p.secondaryName,
		"call_type", meta.CallType,
		"error", err,
	)
	out, fbErr := p.runOne(ctx, p.secondary, p.secondaryName, meta, prompt, call)
	if fbErr != nil {
		return nil, p.secondaryName, fmt.Errorf("all providers failed: %s: %v; %s: %w", p.primaryName, err, p.secondaryName, fbErr)
	}
	return out, p.secondaryName, nil
}

func (p *aiProvider) runOne(ctx context.Context, gen TextGenerator, name string, meta AICallMeta, prompt string, call func(TextGenerator) (any, *types.TokenUsage, error)) (any, error) {
	start := time.Now()
	out, usage, err := call(gen)

	status := "ok"
	if err != nil {
		status = "error"
	}
	inTokens, outTokens := 0, 0
	if usage != nil {
		inTokens, outTokens = usage.InputTokens, usage.OutputTokens
	}
	observability.Current().ObserveLLMRequest(name, meta.CallType, status, time.Since(start), inTokens, outTokens)

	row := &types.AICallLog{
		ID:        uuid.New(),
		Provider:  name,
		CallType:  meta.CallType,
		Model:     gen.Model(),
		Prompt:    prompt,
		Success:   err == nil,
		CreatedAt: time.Now(),
	}
	if usage != nil {
		if raw, mErr := json.Marshal(usage); mErr == nil {
			row.Usage = raw
		}
	}
	if meta.UserID != uuid.Nil {
		uid := meta.UserID
		row.UserID = &uid
	}
	row.ContactID = meta.ContactID
	if err != nil {
		row.Error = err.Error()
	} else {
		row.Response = fmt.Sprintf("%v", out)
	}
	if _, logErr := p.aiCallLog.Create(ctx, nil, []*types.AICallLog{row}); logErr != nil {
		p.log.Warn("ai_call_log insert failed", "provider", name, "call_type", meta.CallType, "error", logErr)
	}
	return out, err
}
