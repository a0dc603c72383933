// Package tabs implements the animated tab section used by every detail
// view in agent-studio: an ordered pane registry, a controlled/uncontrolled
// active-value controller, a direction-aware transition engine, an
// auto-sizing container and the label strip that drives them.
//
// The package never inspects pane content. A pane is a label plus a
// zero-argument render function; the section decides which pane is
// rendered, where it sits during a slide, and how tall the container is.
package tabs

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// NotFound is returned by IndexOf for values that are not registered.
const NotFound = -1

var (
	// ErrEmptyValue is returned when a pane is registered without a value.
	ErrEmptyValue = errors.New("tabs: pane value is required")
	// ErrDuplicateValue is returned when two panes share a value.
	ErrDuplicateValue = errors.New("tabs: duplicate pane value")
	// ErrDuplicateID is returned when two panes share an explicit ID.
	ErrDuplicateID = errors.New("tabs: duplicate pane id")
)

// Pane describes one selectable pane of a section.
type Pane struct {
	// ID uniquely identifies the pane. Generated when left empty.
	ID string
	// Value is the stable key used for selection and ordering.
	Value string
	// Label is the text shown in the label strip.
	Label string
	// Render produces the pane content. A nil Render renders nothing.
	Render func() string
}

func (p Pane) content() string {
	if p.Render == nil {
		return ""
	}
	return p.Render()
}

type registryEntry struct {
	index int
	pane  Pane
}

// Registry is an immutable, ordered set of panes keyed by value.
// Order is registration order and defines adjacency for direction.
type Registry struct {
	entries *orderedmap.OrderedMap[string, registryEntry]
}

// NewRegistry validates panes and returns them as a registry.
// An empty registry is valid and represents the degenerate empty state.
func NewRegistry(panes ...Pane) (*Registry, error) {
	r := &Registry{entries: orderedmap.New[string, registryEntry]()}
	ids := make(map[string]struct{}, len(panes))
	for i, p := range panes {
		if p.Value == "" {
			return nil, fmt.Errorf("pane %d (%q): %w", i, p.Label, ErrEmptyValue)
		}
		if _, ok := r.entries.Get(p.Value); ok {
			return nil, fmt.Errorf("pane %q: %w", p.Value, ErrDuplicateValue)
		}
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if _, ok := ids[p.ID]; ok {
			return nil, fmt.Errorf("pane %q id %q: %w", p.Value, p.ID, ErrDuplicateID)
		}
		ids[p.ID] = struct{}{}
		if p.Label == "" {
			p.Label = p.Value
		}
		r.entries.Set(p.Value, registryEntry{index: i, pane: p})
	}
	return r, nil
}

// Len returns the number of panes.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return r.entries.Len()
}

// IndexOf returns the position of value, or NotFound.
func (r *Registry) IndexOf(value string) int {
	if r == nil {
		return NotFound
	}
	e, ok := r.entries.Get(value)
	if !ok {
		return NotFound
	}
	return e.index
}

// Get returns the pane registered under value.
func (r *Registry) Get(value string) (Pane, bool) {
	if r == nil {
		return Pane{}, false
	}
	e, ok := r.entries.Get(value)
	return e.pane, ok
}

// First returns the first registered pane. False for an empty registry.
func (r *Registry) First() (Pane, bool) {
	if r == nil {
		return Pane{}, false
	}
	oldest := r.entries.Oldest()
	if oldest == nil {
		return Pane{}, false
	}
	return oldest.Value.pane, true
}

// Resolve is the tolerant lookup used for the current pane: unknown values
// fall back to the first pane. False only when the registry is empty.
func (r *Registry) Resolve(value string) (Pane, bool) {
	if p, ok := r.Get(value); ok {
		return p, true
	}
	return r.First()
}

// Contains reports whether value is registered.
func (r *Registry) Contains(value string) bool {
	return r.IndexOf(value) != NotFound
}

// Panes returns the panes in registry order.
func (r *Registry) Panes() []Pane {
	if r == nil {
		return nil
	}
	out := make([]Pane, 0, r.entries.Len())
	for pair := r.entries.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value.pane)
	}
	return out
}

// Values returns the pane values in registry order.
func (r *Registry) Values() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, r.entries.Len())
	for pair := r.entries.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// At returns the pane at position i.
func (r *Registry) At(i int) (Pane, bool) {
	if r == nil || i < 0 || i >= r.entries.Len() {
		return Pane{}, false
	}
	// Registries are small (a handful of tabs); a walk is fine.
	for pair := r.entries.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.index == i {
			return pair.Value.pane, true
		}
	}
	return Pane{}, false
}
