// Package playground runs prompt templates against an LLM.
//
// A prompt from the studio catalog is rendered with user supplied
// variables and sent to a Runner. Runners exist for Anthropic, OpenAI and
// Gemini, plus an offline mock that is the default.
package playground

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/timvw/agent-studio/internal/config"
	studiootel "github.com/timvw/agent-studio/internal/otel"
	"github.com/timvw/agent-studio/internal/studio"
)

var runTracer = otel.Tracer("agent-studio/playground")

// Runner sends one system + user exchange to a model.
type Runner interface {
	// Run returns the model's reply to user under the system instruction.
	Run(ctx context.Context, system, user string) (*Result, error)

	// Provider returns the provider name (e.g., "anthropic", "openai").
	Provider() string

	// Model returns the model name.
	Model() string
}

// Result is a model reply with its token usage.
type Result struct {
	Text         string `json:"text"`
	InputTokens  int64  `json:"input_tokens"`
	OutputTokens int64  `json:"output_tokens"`
}

// Run is a completed playground execution.
type Run struct {
	PromptID string        `json:"prompt_id"`
	Provider string        `json:"provider"`
	Model    string        `json:"model"`
	Rendered string        `json:"rendered"`
	Result   Result        `json:"result"`
	Duration time.Duration `json:"duration"`
}

// Playground renders prompts and runs them.
type Playground struct {
	runner  Runner
	metrics *studiootel.Metrics
	logger  *zap.Logger
}

// Option configures a Playground.
type Option func(*Playground)

// WithMetrics records token usage and run outcomes on m.
func WithMetrics(m *studiootel.Metrics) Option {
	return func(p *Playground) { p.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Playground) { p.logger = l }
}

// New returns a playground backed by r.
func New(r Runner, opts ...Option) *Playground {
	p := &Playground{runner: r, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Runner returns the configured runner.
func (p *Playground) Runner() Runner { return p.runner }

// Run renders prompt with vars and sends it to the runner.
func (p *Playground) Run(ctx context.Context, prompt studio.Prompt, vars map[string]string) (*Run, error) {
	rendered, err := Render(prompt, vars)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := p.runner.Run(ctx, prompt.System, rendered)
	p.metrics.RecordRun(ctx, p.runner.Provider(), err)
	if err != nil {
		p.logger.Warn("playground run failed",
			zap.String("prompt", prompt.ID),
			zap.String("provider", p.runner.Provider()),
			zap.Error(err))
		return nil, fmt.Errorf("running %s: %w", prompt.ID, err)
	}
	p.metrics.RecordTokens(ctx, p.runner.Provider(), p.runner.Model(), res.InputTokens, res.OutputTokens)

	run := &Run{
		PromptID: prompt.ID,
		Provider: p.runner.Provider(),
		Model:    p.runner.Model(),
		Rendered: rendered,
		Result:   *res,
		Duration: time.Since(start),
	}
	p.logger.Info("playground run",
		zap.String("prompt", prompt.ID),
		zap.String("provider", run.Provider),
		zap.String("model", run.Model),
		zap.Int64("input_tokens", res.InputTokens),
		zap.Int64("output_tokens", res.OutputTokens),
		zap.Duration("took", run.Duration))
	return run, nil
}

// NewRunner returns the runner for cfg.Provider.
func NewRunner(cfg *config.Config) (Runner, error) {
	switch cfg.Provider {
	case "", "mock":
		return NewMockRunner(cfg.Model, cfg.LatencyDuration), nil
	case "anthropic":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("no API key found. Set AGENT_STUDIO_API_KEY, AZURE_OPENAI_API_KEY, or ANTHROPIC_API_KEY")
		}
		return NewAnthropicRunner(AnthropicConfig{
			BaseURL:      cfg.BaseURL,
			APIKey:       cfg.APIKey,
			Model:        cfg.Model,
			MaxTokens:    cfg.MaxTokens,
			ExtraHeaders: azureHeaders(cfg),
		}), nil
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("no API key found. Set AGENT_STUDIO_API_KEY, AZURE_OPENAI_API_KEY, or OPENAI_API_KEY")
		}
		return NewOpenAIRunner(OpenAIConfig{
			BaseURL:      cfg.BaseURL,
			APIKey:       cfg.APIKey,
			Model:        cfg.Model,
			MaxTokens:    cfg.MaxTokens,
			ExtraHeaders: azureHeaders(cfg),
		}), nil
	case "gemini":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("no API key found. Set AGENT_STUDIO_API_KEY, GEMINI_API_KEY, or GOOGLE_API_KEY")
		}
		return NewGeminiRunner(context.Background(), GeminiConfig{
			BaseURL:   cfg.BaseURL,
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
		})
	default:
		return nil, fmt.Errorf("unknown provider %q (supported: %v)", cfg.Provider, config.Providers)
	}
}

// azureHeaders adds the "api-key" header Azure AI Foundry expects next to
// the SDK's own auth header.
func azureHeaders(cfg *config.Config) map[string]string {
	headers := map[string]string{}
	if os.Getenv("AZURE_RESOURCE_NAME") != "" || config.IsAzureEndpoint(cfg.BaseURL) {
		headers["api-key"] = cfg.APIKey
	}
	return headers
}
