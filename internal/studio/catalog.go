package studio

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// defaultCatalog is the seed data served when no catalog file is configured.
//
//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog is the full mock dataset.
type Catalog struct {
	Agents         []Agent         `yaml:"agents"`
	Prompts        []Prompt        `yaml:"prompts"`
	LLMs           []LLM           `yaml:"llms"`
	KnowledgeBases []KnowledgeBase `yaml:"knowledge_bases"`
	Features       []Feature       `yaml:"features"`
	Guardrails     []Guardrail     `yaml:"guardrails"`
	Activity       []SeedEvent     `yaml:"activity"`
}

// SeedEvent is an activity entry expressed relative to load time.
type SeedEvent struct {
	Entity  string    `yaml:"entity"`
	Kind    EventKind `yaml:"kind"`
	Actor   string    `yaml:"actor"`
	Message string    `yaml:"message"`
	Ago     string    `yaml:"ago"` // Go duration, e.g. "3h"
}

// DefaultCatalog parses the built-in seed catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// LoadCatalogFile reads and parses a catalog file.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	c, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// ParseCatalog decodes and validates a YAML catalog. Entity ids must be
// unique across all kinds.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	seen := make(map[string]Kind)
	for _, kind := range Kinds {
		for _, s := range c.summaries(kind) {
			if s.ID == "" {
				return nil, fmt.Errorf("%s entry %q has no id", kind, s.Name)
			}
			if prev, ok := seen[s.ID]; ok {
				return nil, fmt.Errorf("duplicate id %q in %s and %s", s.ID, prev, kind)
			}
			seen[s.ID] = kind
		}
	}
	for i, e := range c.Activity {
		if _, ok := seen[e.Entity]; !ok {
			return nil, fmt.Errorf("activity %d references unknown entity %q", i, e.Entity)
		}
		if e.Ago != "" {
			if _, err := time.ParseDuration(e.Ago); err != nil {
				return nil, fmt.Errorf("activity %d: invalid ago %q: %w", i, e.Ago, err)
			}
		}
	}
	return &c, nil
}

// summaries lists the entities of kind, most recently updated first.
func (c *Catalog) summaries(kind Kind) []Summary {
	var out []Summary
	add := func(e Entity) { out = append(out, e.Summary()) }
	switch kind {
	case KindAgent:
		for _, e := range c.Agents {
			add(e)
		}
	case KindPrompt:
		for _, e := range c.Prompts {
			add(e)
		}
	case KindLLM:
		for _, e := range c.LLMs {
			add(e)
		}
	case KindKnowledgeBase:
		for _, e := range c.KnowledgeBases {
			add(e)
		}
	case KindFeature:
		for _, e := range c.Features {
			add(e)
		}
	case KindGuardrail:
		for _, e := range c.Guardrails {
			add(e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// find returns the entity with id.
func (c *Catalog) find(id string) (Entity, bool) {
	for _, e := range c.Agents {
		if e.ID == id {
			return e, true
		}
	}
	for _, e := range c.Prompts {
		if e.ID == id {
			return e, true
		}
	}
	for _, e := range c.LLMs {
		if e.ID == id {
			return e, true
		}
	}
	for _, e := range c.KnowledgeBases {
		if e.ID == id {
			return e, true
		}
	}
	for _, e := range c.Features {
		if e.ID == id {
			return e, true
		}
	}
	for _, e := range c.Guardrails {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

// add appends a new entity of kind.
func (c *Catalog) add(s Summary) error {
	id, name, desc, status, at := s.ID, s.Name, s.Description, s.Status, s.UpdatedAt
	switch s.Kind {
	case KindAgent:
		c.Agents = append(c.Agents, Agent{ID: id, Name: name, Description: desc, Status: status, UpdatedAt: at})
	case KindPrompt:
		c.Prompts = append(c.Prompts, Prompt{ID: id, Name: name, Description: desc, Status: status, Version: 1, UpdatedAt: at})
	case KindLLM:
		c.LLMs = append(c.LLMs, LLM{ID: id, Name: name, Description: desc, Status: status, UpdatedAt: at})
	case KindKnowledgeBase:
		c.KnowledgeBases = append(c.KnowledgeBases, KnowledgeBase{ID: id, Name: name, Description: desc, Status: status, UpdatedAt: at})
	case KindFeature:
		c.Features = append(c.Features, Feature{ID: id, Name: name, Description: desc, Status: status, UpdatedAt: at})
	case KindGuardrail:
		c.Guardrails = append(c.Guardrails, Guardrail{ID: id, Name: name, Description: desc, Status: status, UpdatedAt: at})
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, s.Kind)
	}
	return nil
}

// remove deletes the entity with id and reports whether it existed.
func (c *Catalog) remove(id string) bool {
	return removeByID(&c.Agents, id) ||
		removeByID(&c.Prompts, id) ||
		removeByID(&c.LLMs, id) ||
		removeByID(&c.KnowledgeBases, id) ||
		removeByID(&c.Features, id) ||
		removeByID(&c.Guardrails, id)
}

func removeByID[T Entity](list *[]T, id string) bool {
	for i, e := range *list {
		if e.Summary().ID == id {
			*list = append((*list)[:i:i], (*list)[i+1:]...)
			return true
		}
	}
	return false
}

// counts returns the number of entities per kind.
func (c *Catalog) counts() map[Kind]int {
	return map[Kind]int{
		KindAgent:         len(c.Agents),
		KindPrompt:        len(c.Prompts),
		KindLLM:           len(c.LLMs),
		KindKnowledgeBase: len(c.KnowledgeBases),
		KindFeature:       len(c.Features),
		KindGuardrail:     len(c.Guardrails),
	}
}
