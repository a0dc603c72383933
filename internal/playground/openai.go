package playground

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// OpenAIRunner runs prompts through an OpenAI-compatible Chat Completions
// API. Works with OpenAI, Azure OpenAI, and any compatible endpoint.
type OpenAIRunner struct {
	client    openai.Client
	model     string
	maxTokens int64
}

// OpenAIConfig holds configuration for the OpenAI runner.
type OpenAIConfig struct {
	BaseURL string
	APIKey  string
	// Model defaults to gpt-4o-mini.
	Model string
	// MaxTokens must leave room for reasoning tokens on reasoning models.
	MaxTokens    int64
	ExtraHeaders map[string]string
}

// NewOpenAIRunner creates a new OpenAI-compatible runner.
func NewOpenAIRunner(cfg OpenAIConfig) *OpenAIRunner {
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
		model = "gpt-4o-mini"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &OpenAIRunner{
		client:    openai.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
	}
}

// Provider returns "openai".
func (r *OpenAIRunner) Provider() string { return "openai" }

// Model returns the model name.
func (r *OpenAIRunner) Model() string { return r.model }

// Run sends the exchange to the Chat Completions API.
func (r *OpenAIRunner) Run(ctx context.Context, system, user string) (*Result, error) {
	ctx, span := runTracer.Start(ctx, "chat "+r.model,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("gen_ai.operation.name", "chat"),
			attribute.String("gen_ai.provider.name", "openai"),
			attribute.String("gen_ai.request.model", r.model),
			attribute.Int64("gen_ai.request.max_tokens", r.maxTokens),
		),
	)
	defer span.End()
	recordInput(span, system, user)

	var messages []openai.ChatCompletionMessageParamUnion
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(user))

	resp, err := r.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               r.model,
		Messages:            messages,
		MaxCompletionTokens: openai.Int(r.maxTokens),
	})
	if err != nil {
		span.SetAttributes(attribute.String("error.type", "api_error"))
		return nil, fmt.Errorf("openai API call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		span.SetAttributes(attribute.String("error.type", "empty_response"))
		return nil, fmt.Errorf("openai API returned empty response")
	}

	res := &Result{
		Text:         resp.Choices[0].Message.Content,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}
	span.SetAttributes(
		attribute.String("gen_ai.response.model", resp.Model),
		attribute.String("gen_ai.response.id", resp.ID),
		attribute.Int64("gen_ai.usage.input_tokens", res.InputTokens),
		attribute.Int64("gen_ai.usage.output_tokens", res.OutputTokens),
	)
	if resp.Choices[0].FinishReason != "" {
		span.SetAttributes(attribute.StringSlice("gen_ai.response.finish_reasons", []string{string(resp.Choices[0].FinishReason)}))
	}
	recordOutput(span, res.Text)
	return res, nil
}
