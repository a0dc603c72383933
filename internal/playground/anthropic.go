package playground

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// AnthropicRunner runs prompts through the Anthropic Messages API.
// Works with both direct Anthropic API and Azure AI Foundry.
type AnthropicRunner struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// AnthropicConfig holds configuration for the Anthropic runner.
type AnthropicConfig struct {
	BaseURL string
	APIKey  string
	// Model defaults to claude-sonnet-4-5.
	Model     string
	MaxTokens int64
	// ExtraHeaders are additional HTTP headers (e.g., "api-key" for Azure).
	ExtraHeaders map[string]string
}

// NewAnthropicRunner creates a new Anthropic runner.
func NewAnthropicRunner(cfg AnthropicConfig) *AnthropicRunner {
	var opts []option.RequestOption
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	for k, v := range cfg.ExtraHeaders {
		opts = append(opts, option.WithHeader(k, v))
	}

	model := cfg.Model
	if model == "" {
		model = "claude-sonnet-4-5"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &AnthropicRunner{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
	}
}

// Provider returns "anthropic".
func (r *AnthropicRunner) Provider() string { return "anthropic" }

// Model returns the model name.
func (r *AnthropicRunner) Model() string { return r.model }

// Run sends the exchange to the Messages API.
func (r *AnthropicRunner) Run(ctx context.Context, system, user string) (*Result, error) {
	ctx, span := runTracer.Start(ctx, "chat "+r.model,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("gen_ai.operation.name", "chat"),
			attribute.String("gen_ai.provider.name", "anthropic"),
			attribute.String("gen_ai.request.model", r.model),
			attribute.Int64("gen_ai.request.max_tokens", r.maxTokens),
		),
	)
	defer span.End()
	recordInput(span, system, user)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(r.model),
		MaxTokens: r.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := r.client.Messages.New(ctx, params)
	if err != nil {
		span.SetAttributes(attribute.String("error.type", "api_error"))
		return nil, fmt.Errorf("anthropic API call failed: %w", err)
	}
	if len(resp.Content) == 0 {
		span.SetAttributes(attribute.String("error.type", "empty_response"))
		return nil, fmt.Errorf("anthropic API returned empty response")
	}

	res := &Result{
		Text:         resp.Content[0].Text,
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	}
	span.SetAttributes(
		attribute.String("gen_ai.response.model", r.model),
		attribute.Int64("gen_ai.usage.input_tokens", res.InputTokens),
		attribute.Int64("gen_ai.usage.output_tokens", res.OutputTokens),
	)
	if string(resp.StopReason) != "" {
		span.SetAttributes(attribute.StringSlice("gen_ai.response.finish_reasons", []string{string(resp.StopReason)}))
	}
	recordOutput(span, res.Text)
	return res, nil
}

// recordInput attaches the request messages to span as JSON.
func recordInput(span trace.Span, system, user string) {
	messages := []map[string]string{}
	if system != "" {
		messages = append(messages, map[string]string{"role": "system", "content": system})
	}
	messages = append(messages, map[string]string{"role": "user", "content": user})
	if b, err := json.Marshal(messages); err == nil {
		span.SetAttributes(attribute.String("gen_ai.input.messages", string(b)))
	}
}

func recordOutput(span trace.Span, text string) {
	messages := []map[string]string{{"role": "assistant", "content": text}}
	if b, err := json.Marshal(messages); err == nil {
		span.SetAttributes(attribute.String("gen_ai.output.messages", string(b)))
	}
}
