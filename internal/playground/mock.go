package playground

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// MockRunner answers without a network call. The reply quotes the start of
// the request and token counts are whitespace-separated words.
type MockRunner struct {
	model string
	delay time.Duration
}

// NewMockRunner returns a mock runner that waits delay before replying.
func NewMockRunner(model string, delay time.Duration) *MockRunner {
	if model == "" {
		model = "mock-1"
	}
	return &MockRunner{model: model, delay: delay}
}

// Provider returns "mock".
func (r *MockRunner) Provider() string { return "mock" }

// Model returns the model name.
func (r *MockRunner) Model() string { return r.model }

// Run returns a canned reply.
func (r *MockRunner) Run(ctx context.Context, system, user string) (*Result, error) {
	ctx, span := runTracer.Start(ctx, "chat "+r.model,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("gen_ai.operation.name", "chat"),
			attribute.String("gen_ai.provider.name", "mock"),
			attribute.String("gen_ai.request.model", r.model),
		),
	)
	defer span.End()

	if r.delay > 0 {
		t := time.NewTimer(r.delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	firstLine, _, _ := strings.Cut(strings.TrimSpace(user), "\n")
	text := fmt.Sprintf("**%s** received %d words.\n\n> %s\n\nThis is a mock reply; set `provider` to call a real model.",
		r.model, len(strings.Fields(user)), firstLine)

	res := &Result{
		Text:         text,
		InputTokens:  int64(len(strings.Fields(system)) + len(strings.Fields(user))),
		OutputTokens: int64(len(strings.Fields(text))),
	}
	span.SetAttributes(
		attribute.Int64("gen_ai.usage.input_tokens", res.InputTokens),
		attribute.Int64("gen_ai.usage.output_tokens", res.OutputTokens),
	)
	return res, nil
}
