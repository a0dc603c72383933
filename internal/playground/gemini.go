package playground

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"
)

// GeminiRunner runs prompts through the Gemini API.
type GeminiRunner struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

// GeminiConfig holds configuration for the Gemini runner.
type GeminiConfig struct {
	BaseURL string
	APIKey  string
	// Model defaults to gemini-2.5-flash.
	Model     string
	MaxTokens int64
}

// NewGeminiRunner creates a new Gemini runner.
func NewGeminiRunner(ctx context.Context, cfg GeminiConfig) (*GeminiRunner, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &GeminiRunner{client: client, model: model, maxTokens: int32(maxTokens)}, nil
}

// Provider returns "gemini".
func (r *GeminiRunner) Provider() string { return "gemini" }

// Model returns the model name.
func (r *GeminiRunner) Model() string { return r.model }

// Run sends the exchange to GenerateContent.
func (r *GeminiRunner) Run(ctx context.Context, system, user string) (*Result, error) {
	ctx, span := runTracer.Start(ctx, "chat "+r.model,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("gen_ai.operation.name", "chat"),
			attribute.String("gen_ai.provider.name", "gcp.gemini"),
			attribute.String("gen_ai.request.model", r.model),
			attribute.Int64("gen_ai.request.max_tokens", int64(r.maxTokens)),
		),
	)
	defer span.End()
	recordInput(span, system, user)

	gc := &genai.GenerateContentConfig{MaxOutputTokens: r.maxTokens}
	if system != "" {
		gc.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	contents := []*genai.Content{genai.NewContentFromText(user, genai.RoleUser)}

	resp, err := r.client.Models.GenerateContent(ctx, r.model, contents, gc)
	if err != nil {
		span.SetAttributes(attribute.String("error.type", "api_error"))
		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}
	text := resp.Text()
	if text == "" {
		span.SetAttributes(attribute.String("error.type", "empty_response"))
		return nil, fmt.Errorf("gemini API returned empty response")
	}

	res := &Result{Text: text}
	if u := resp.UsageMetadata; u != nil {
		res.InputTokens = int64(u.PromptTokenCount)
		res.OutputTokens = int64(u.CandidatesTokenCount)
	}
	span.SetAttributes(
		attribute.String("gen_ai.response.model", r.model),
		attribute.Int64("gen_ai.usage.input_tokens", res.InputTokens),
		attribute.Int64("gen_ai.usage.output_tokens", res.OutputTokens),
	)
	recordOutput(span, res.Text)
	return res, nil
}
