package playground

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timvw/agent-studio/internal/config"
	"github.com/timvw/agent-studio/internal/studio"
)

func supportPrompt() studio.Prompt {
	return studio.Prompt{
		ID:        "prm-support",
		Name:      "Support reply",
		Version:   7,
		System:    "You are a friendly support engineer.",
		Template:  "Customer: {{.customer}}\nPlan: {{.plan}}\n\n{{.ticket}}\n",
		Variables: []string{"customer", "plan", "ticket"},
	}
}

func TestRender(t *testing.T) {
	got, err := Render(supportPrompt(), map[string]string{
		"customer": "Ada",
		"plan":     "Pro",
		"ticket":   "My invoice is wrong.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Customer: Ada\nPlan: Pro\n\nMy invoice is wrong.", got)
}

func TestRender_MissingVariables(t *testing.T) {
	_, err := Render(supportPrompt(), map[string]string{"plan": "Pro", "ticket": "  "})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingVariables))
	assert.Contains(t, err.Error(), "customer, ticket")
}

func TestRender_UndeclaredVariable(t *testing.T) {
	p := studio.Prompt{ID: "p", Template: "Hello {{.name}}"}
	_, err := Render(p, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rendering template p")
}

func TestRender_BadTemplate(t *testing.T) {
	p := studio.Prompt{ID: "p", Template: "Hello {{.name"}
	_, err := Render(p, map[string]string{"name": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing template p")
}

func TestMissingVariables_Sorted(t *testing.T) {
	p := studio.Prompt{Variables: []string{"z", "a", "m"}}
	assert.Equal(t, []string{"a", "m", "z"}, MissingVariables(p, map[string]string{}))
	assert.Empty(t, MissingVariables(p, map[string]string{"a": "1", "m": "2", "z": "3"}))
}

func TestTemplateMarkdown(t *testing.T) {
	md := TemplateMarkdown(supportPrompt())
	assert.True(t, strings.HasPrefix(md, "## Support reply (v7)"))
	assert.Contains(t, md, "`customer`, `plan`, `ticket`")
	assert.Contains(t, md, "```\nCustomer: {{.customer}}")
}

func TestPreview(t *testing.T) {
	out, err := Preview("# Title\n\nSome *text*.", "notty", 40)
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "text")
}

func TestMockRunner(t *testing.T) {
	r := NewMockRunner("", 0)
	assert.Equal(t, "mock", r.Provider())
	assert.Equal(t, "mock-1", r.Model())

	res, err := r.Run(context.Background(), "be brief", "Customer: Ada\nsecond line")
	require.NoError(t, err)
	assert.Contains(t, res.Text, "> Customer: Ada")
	assert.NotContains(t, res.Text, "second line")
	assert.Equal(t, int64(2+4), res.InputTokens)
	assert.Positive(t, res.OutputTokens)
}

func TestMockRunner_HonoursContext(t *testing.T) {
	r := NewMockRunner("m", time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Run(ctx, "", "hi")
	assert.True(t, errors.Is(err, context.Canceled))
}

type failingRunner struct{}

func (failingRunner) Run(context.Context, string, string) (*Result, error) {
	return nil, errors.New("boom")
}
func (failingRunner) Provider() string { return "failing" }
func (failingRunner) Model() string    { return "f-1" }

func TestPlayground_Run(t *testing.T) {
	p := New(NewMockRunner("mock-1", 0))
	run, err := p.Run(context.Background(), supportPrompt(), map[string]string{
		"customer": "Ada", "plan": "Pro", "ticket": "Refund please",
	})
	require.NoError(t, err)
	assert.Equal(t, "prm-support", run.PromptID)
	assert.Equal(t, "mock", run.Provider)
	assert.Equal(t, "mock-1", run.Model)
	assert.True(t, strings.HasPrefix(run.Rendered, "Customer: Ada"))
	assert.NotEmpty(t, run.Result.Text)
}

func TestPlayground_RunErrors(t *testing.T) {
	p := New(failingRunner{})
	vars := map[string]string{"customer": "Ada", "plan": "Pro", "ticket": "x"}

	_, err := p.Run(context.Background(), supportPrompt(), vars)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "running prm-support: boom")

	_, err = p.Run(context.Background(), supportPrompt(), nil)
	assert.True(t, errors.Is(err, ErrMissingVariables))
}

func TestNewRunner(t *testing.T) {
	t.Setenv("AZURE_RESOURCE_NAME", "")

	tests := []struct {
		name     string
		cfg      config.Config
		provider string
		wantErr  string
	}{
		{name: "default is mock", cfg: config.Config{}, provider: "mock"},
		{name: "mock", cfg: config.Config{Provider: "mock", Model: "m"}, provider: "mock"},
		{name: "anthropic", cfg: config.Config{Provider: "anthropic", APIKey: "k"}, provider: "anthropic"},
		{name: "openai", cfg: config.Config{Provider: "openai", APIKey: "k"}, provider: "openai"},
		{name: "anthropic without key", cfg: config.Config{Provider: "anthropic"}, wantErr: "no API key"},
		{name: "openai without key", cfg: config.Config{Provider: "openai"}, wantErr: "no API key"},
		{name: "gemini without key", cfg: config.Config{Provider: "gemini"}, wantErr: "no API key"},
		{name: "unknown", cfg: config.Config{Provider: "llama"}, wantErr: "unknown provider"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRunner(&tt.cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.provider, r.Provider())
		})
	}
}

func TestNewRunner_DefaultModels(t *testing.T) {
	a := NewAnthropicRunner(AnthropicConfig{APIKey: "k"})
	assert.Equal(t, "claude-sonnet-4-5", a.Model())
	o := NewOpenAIRunner(OpenAIConfig{APIKey: "k"})
	assert.Equal(t, "gpt-4o-mini", o.Model())
}

func TestAzureHeaders(t *testing.T) {
	t.Setenv("AZURE_RESOURCE_NAME", "")
	cfg := &config.Config{APIKey: "secret", BaseURL: "https://x.services.ai.azure.com/anthropic/"}
	assert.Equal(t, map[string]string{"api-key": "secret"}, azureHeaders(cfg))

	cfg.BaseURL = "https://api.anthropic.com/"
	assert.Empty(t, azureHeaders(cfg))
}
