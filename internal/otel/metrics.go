package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "agent-studio"

// Metrics holds all OTEL metric instruments for agent-studio.
// All methods are nil-safe so components can run without telemetry.
type Metrics struct {
	// Tab section instruments
	Selections            metric.Int64Counter
	TransitionsStarted    metric.Int64Counter
	TransitionsSuperseded metric.Int64Counter
	ContainerResizes      metric.Int64Counter

	// Mock API instruments (partitioned by operation)
	APICalls   metric.Int64Counter
	APILatency metric.Float64Histogram
	CacheHits  metric.Int64Counter
	CacheMiss  metric.Int64Counter

	// Playground token counters (partitioned by provider + model)
	InputTokens  metric.Int64Counter
	OutputTokens metric.Int64Counter
	Runs         metric.Int64Counter
}

// NewMetrics creates all metric instruments. Returns no-op instruments
// when no MeterProvider is registered (safe to call unconditionally).
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	// --- Tab section ---

	m.Selections, err = meter.Int64Counter("tabs.selections",
		metric.WithDescription("Valid tab selections partitioned by computed direction"))
	if err != nil {
		return nil, err
	}

	m.TransitionsStarted, err = meter.Int64Counter("tabs.transitions.started",
		metric.WithDescription("Pane transitions that scheduled animation frames"))
	if err != nil {
		return nil, err
	}

	m.TransitionsSuperseded, err = meter.Int64Counter("tabs.transitions.superseded",
		metric.WithDescription("Transitions cut short by a newer selection"))
	if err != nil {
		return nil, err
	}

	m.ContainerResizes, err = meter.Int64Counter("tabs.container.resizes",
		metric.WithDescription("Container height animations started after a content height change"))
	if err != nil {
		return nil, err
	}

	// --- Mock API ---

	m.APICalls, err = meter.Int64Counter("studio.api.calls",
		metric.WithDescription("Mock API calls partitioned by operation and outcome"))
	if err != nil {
		return nil, err
	}

	m.APILatency, err = meter.Float64Histogram("studio.api.latency",
		metric.WithDescription("Mock API call latency"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}

	m.CacheHits, err = meter.Int64Counter("studio.cache.hits",
		metric.WithDescription("Mock API responses served from the response cache"))
	if err != nil {
		return nil, err
	}

	m.CacheMiss, err = meter.Int64Counter("studio.cache.misses",
		metric.WithDescription("Mock API responses not found in the response cache or expired"))
	if err != nil {
		return nil, err
	}

	// --- Playground ---

	m.InputTokens, err = meter.Int64Counter("llm.tokens.input",
		metric.WithDescription("Total playground input tokens consumed"),
		metric.WithUnit("{token}"))
	if err != nil {
		return nil, err
	}

	m.OutputTokens, err = meter.Int64Counter("llm.tokens.output",
		metric.WithDescription("Total playground output tokens consumed"),
		metric.WithUnit("{token}"))
	if err != nil {
		return nil, err
	}

	m.Runs, err = meter.Int64Counter("playground.runs",
		metric.WithDescription("Playground runs partitioned by provider and outcome"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordSelection records a valid tab selection.
func (m *Metrics) RecordSelection(ctx context.Context, direction string) {
	if m == nil {
		return
	}
	m.Selections.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tabs.direction", direction),
	))
}

// RecordTransition records a started transition; superseded is true when
// it replaced one still in flight.
func (m *Metrics) RecordTransition(ctx context.Context, superseded bool) {
	if m == nil {
		return
	}
	m.TransitionsStarted.Add(ctx, 1)
	if superseded {
		m.TransitionsSuperseded.Add(ctx, 1)
	}
}

// RecordResize records a container height animation.
func (m *Metrics) RecordResize(ctx context.Context) {
	if m == nil {
		return
	}
	m.ContainerResizes.Add(ctx, 1)
}

// RecordAPICall records one mock API call.
func (m *Metrics) RecordAPICall(ctx context.Context, operation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.APICalls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("api.operation", operation),
		attribute.String("api.outcome", outcome),
	))
	m.APILatency.Record(ctx, float64(d.Microseconds())/1000, metric.WithAttributes(
		attribute.String("api.operation", operation),
	))
}

// RecordCacheHit records a response cache hit.
func (m *Metrics) RecordCacheHit(ctx context.Context) {
	if m == nil {
		return
	}
	m.CacheHits.Add(ctx, 1)
}

// RecordCacheMiss records a response cache miss.
func (m *Metrics) RecordCacheMiss(ctx context.Context) {
	if m == nil {
		return
	}
	m.CacheMiss.Add(ctx, 1)
}

// RecordTokens records playground token usage.
func (m *Metrics) RecordTokens(ctx context.Context, provider, model string, input, output int64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("llm.provider", provider),
		attribute.String("llm.model", model),
	)
	m.InputTokens.Add(ctx, input, attrs)
	m.OutputTokens.Add(ctx, output, attrs)
}

// RecordRun records one playground run.
func (m *Metrics) RecordRun(ctx context.Context, provider string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Runs.Add(ctx, 1, metric.WithAttributes(
		attribute.String("llm.provider", provider),
		attribute.String("playground.outcome", outcome),
	))
}
