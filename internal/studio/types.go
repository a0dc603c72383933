// Package studio is the mock API behind the agent-studio dashboard.
//
// Every call returns data from an in-memory catalog after an artificial
// delay. Nothing is persisted: Create and Delete only change the catalog of
// the running process.
package studio

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrNotFound is returned when an entity id is not in the catalog.
var ErrNotFound = errors.New("studio: entity not found")

// ErrUnknownKind is returned for kinds the catalog does not hold.
var ErrUnknownKind = errors.New("studio: unknown entity kind")

// Kind names an entity category.
type Kind string

const (
	KindAgent         Kind = "agents"
	KindPrompt        Kind = "prompts"
	KindLLM           Kind = "llms"
	KindKnowledgeBase Kind = "knowledge-bases"
	KindFeature       Kind = "features"
	KindGuardrail     Kind = "guardrails"
)

// Kinds lists every kind in dashboard order.
var Kinds = []Kind{KindAgent, KindPrompt, KindLLM, KindKnowledgeBase, KindFeature, KindGuardrail}

var titleCaser = cases.Title(language.English)

// Title returns the human readable kind name, e.g. "Knowledge Bases".
func (k Kind) Title() string {
	switch k {
	case KindLLM:
		return "LLMs"
	}
	return titleCaser.String(strings.ReplaceAll(string(k), "-", " "))
}

// ParseKind accepts a kind name, its singular form, or a short alias.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "agents", "agent":
		return KindAgent, nil
	case "prompts", "prompt":
		return KindPrompt, nil
	case "llms", "llm", "models", "model":
		return KindLLM, nil
	case "knowledge-bases", "knowledge-base", "kb", "kbs":
		return KindKnowledgeBase, nil
	case "features", "feature":
		return KindFeature, nil
	case "guardrails", "guardrail":
		return KindGuardrail, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Status is the lifecycle state of an entity.
type Status string

const (
	StatusActive     Status = "active"
	StatusDraft      Status = "draft"
	StatusPaused     Status = "paused"
	StatusError      Status = "error"
	StatusDeprecated Status = "deprecated"
)

// Summary is the kind-independent view of an entity used by lists.
type Summary struct {
	Kind        Kind      `json:"kind"`
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Agent is a deployed or draft agent.
type Agent struct {
	ID             string    `yaml:"id" json:"id"`
	Name           string    `yaml:"name" json:"name"`
	Description    string    `yaml:"description" json:"description"`
	Status         Status    `yaml:"status" json:"status"`
	Model          string    `yaml:"model" json:"model"`
	PromptID       string    `yaml:"prompt" json:"prompt"`
	KnowledgeBases []string  `yaml:"knowledge_bases" json:"knowledge_bases,omitempty"`
	Guardrails     []string  `yaml:"guardrails" json:"guardrails,omitempty"`
	Tools          []string  `yaml:"tools" json:"tools,omitempty"`
	Owner          string    `yaml:"owner" json:"owner"`
	UpdatedAt      time.Time `yaml:"updated_at" json:"updated_at"`
}

// Summary implements Entity.
func (a Agent) Summary() Summary {
	return Summary{KindAgent, a.ID, a.Name, a.Description, a.Status, a.UpdatedAt}
}

// Prompt is a versioned prompt template.
type Prompt struct {
	ID          string    `yaml:"id" json:"id"`
	Name        string    `yaml:"name" json:"name"`
	Description string    `yaml:"description" json:"description"`
	Status      Status    `yaml:"status" json:"status"`
	Version     int       `yaml:"version" json:"version"`
	Model       string    `yaml:"model" json:"model"`
	System      string    `yaml:"system" json:"system,omitempty"`
	Template    string    `yaml:"template" json:"template"`
	Variables   []string  `yaml:"variables" json:"variables,omitempty"`
	UpdatedAt   time.Time `yaml:"updated_at" json:"updated_at"`
}

// Summary implements Entity.
func (p Prompt) Summary() Summary {
	return Summary{KindPrompt, p.ID, p.Name, p.Description, p.Status, p.UpdatedAt}
}

// LLM is a model available to agents.
type LLM struct {
	ID            string    `yaml:"id" json:"id"`
	Name          string    `yaml:"name" json:"name"`
	Description   string    `yaml:"description" json:"description"`
	Status        Status    `yaml:"status" json:"status"`
	Provider      string    `yaml:"provider" json:"provider"`
	ContextWindow int       `yaml:"context_window" json:"context_window"`
	InputPrice    float64   `yaml:"input_price" json:"input_price"`   // USD per 1M tokens
	OutputPrice   float64   `yaml:"output_price" json:"output_price"` // USD per 1M tokens
	UpdatedAt     time.Time `yaml:"updated_at" json:"updated_at"`
}

// Summary implements Entity.
func (l LLM) Summary() Summary {
	return Summary{KindLLM, l.ID, l.Name, l.Description, l.Status, l.UpdatedAt}
}

// KnowledgeBase is an indexed document collection.
type KnowledgeBase struct {
	ID             string    `yaml:"id" json:"id"`
	Name           string    `yaml:"name" json:"name"`
	Description    string    `yaml:"description" json:"description"`
	Status         Status    `yaml:"status" json:"status"`
	Documents      int       `yaml:"documents" json:"documents"`
	Chunks         int       `yaml:"chunks" json:"chunks"`
	EmbeddingModel string    `yaml:"embedding_model" json:"embedding_model"`
	SizeMB         float64   `yaml:"size_mb" json:"size_mb"`
	UpdatedAt      time.Time `yaml:"updated_at" json:"updated_at"`
}

// Summary implements Entity.
func (k KnowledgeBase) Summary() Summary {
	return Summary{KindKnowledgeBase, k.ID, k.Name, k.Description, k.Status, k.UpdatedAt}
}

// Feature is a feature-store entry.
type Feature struct {
	ID          string    `yaml:"id" json:"id"`
	Name        string    `yaml:"name" json:"name"`
	Description string    `yaml:"description" json:"description"`
	Status      Status    `yaml:"status" json:"status"`
	Entity      string    `yaml:"entity" json:"entity"`
	Type        string    `yaml:"type" json:"type"`
	Freshness   string    `yaml:"freshness" json:"freshness"`
	Owner       string    `yaml:"owner" json:"owner"`
	UpdatedAt   time.Time `yaml:"updated_at" json:"updated_at"`
}

// Summary implements Entity.
func (f Feature) Summary() Summary {
	return Summary{KindFeature, f.ID, f.Name, f.Description, f.Status, f.UpdatedAt}
}

// Guardrail is a safety policy applied to agent traffic.
type Guardrail struct {
	ID          string    `yaml:"id" json:"id"`
	Name        string    `yaml:"name" json:"name"`
	Description string    `yaml:"description" json:"description"`
	Status      Status    `yaml:"status" json:"status"`
	Category    string    `yaml:"category" json:"category"`
	Action      string    `yaml:"action" json:"action"` // block, warn, redact
	Threshold   float64   `yaml:"threshold" json:"threshold"`
	TriggerRate float64   `yaml:"trigger_rate" json:"trigger_rate"` // fraction of requests
	UpdatedAt   time.Time `yaml:"updated_at" json:"updated_at"`
}

// Summary implements Entity.
func (g Guardrail) Summary() Summary {
	return Summary{KindGuardrail, g.ID, g.Name, g.Description, g.Status, g.UpdatedAt}
}

// Entity is implemented by every catalog type.
type Entity interface {
	Summary() Summary
}

// MetricPoint is one bucket of an entity's monitoring series.
type MetricPoint struct {
	Time      time.Time `json:"time"`
	Requests  int       `json:"requests"`
	Errors    int       `json:"errors"`
	LatencyMs float64   `json:"latency_ms"`
	Tokens    int       `json:"tokens"`
}

// Series is an entity's monitoring series, oldest first.
type Series struct {
	EntityID string        `json:"entity_id"`
	Bucket   time.Duration `json:"bucket"`
	Points   []MetricPoint `json:"points"`
}

// Totals sums the series.
func (s Series) Totals() (requests, errors, tokens int) {
	for _, p := range s.Points {
		requests += p.Requests
		errors += p.Errors
		tokens += p.Tokens
	}
	return
}
