package tabs

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func scenarioPanes() []Pane {
	return []Pane{
		{Value: "overview", Label: "Overview"},
		{Value: "features", Label: "Features"},
		{Value: "history", Label: "History"},
	}
}

func TestNewRegistry_Order(t *testing.T) {
	r, err := NewRegistry(scenarioPanes()...)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if diff := cmp.Diff([]string{"overview", "features", "history"}, r.Values()); diff != "" {
		t.Errorf("Values mismatch (-want +got):\n%s", diff)
	}
	for i, v := range r.Values() {
		if got := r.IndexOf(v); got != i {
			t.Errorf("IndexOf(%q): got %d, want %d", v, got, i)
		}
		p, ok := r.At(i)
		if !ok || p.Value != v {
			t.Errorf("At(%d): got %q/%v, want %q", i, p.Value, ok, v)
		}
	}
}

func TestNewRegistry_Errors(t *testing.T) {
	tests := []struct {
		name  string
		panes []Pane
		want  error
	}{
		{
			name:  "empty value",
			panes: []Pane{{Value: "a"}, {Label: "nameless"}},
			want:  ErrEmptyValue,
		},
		{
			name:  "duplicate value",
			panes: []Pane{{Value: "a"}, {Value: "b"}, {Value: "a"}},
			want:  ErrDuplicateValue,
		},
		{
			name:  "duplicate id",
			panes: []Pane{{ID: "x", Value: "a"}, {ID: "x", Value: "b"}},
			want:  ErrDuplicateID,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.panes...)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewRegistry_Defaults(t *testing.T) {
	r, err := NewRegistry(Pane{Value: "a"}, Pane{Value: "b"})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	a, _ := r.Get("a")
	b, _ := r.Get("b")
	if a.ID == "" || b.ID == "" {
		t.Fatal("expected generated IDs")
	}
	if a.ID == b.ID {
		t.Errorf("generated IDs collide: %q", a.ID)
	}
	if a.Label != "a" {
		t.Errorf("Label: got %q, want %q", a.Label, "a")
	}
	if got := a.content(); got != "" {
		t.Errorf("nil Render content: got %q, want empty", got)
	}
}

func TestRegistry_Lookups(t *testing.T) {
	r, _ := NewRegistry(scenarioPanes()...)

	if got := r.IndexOf("missing"); got != NotFound {
		t.Errorf("IndexOf(missing): got %d, want NotFound", got)
	}
	if _, ok := r.Get("missing"); ok {
		t.Error("Get(missing): got ok, want miss")
	}
	p, ok := r.Resolve("missing")
	if !ok || p.Value != "overview" {
		t.Errorf("Resolve(missing): got %q/%v, want overview", p.Value, ok)
	}
	p, ok = r.Resolve("history")
	if !ok || p.Value != "history" {
		t.Errorf("Resolve(history): got %q/%v, want history", p.Value, ok)
	}
	if _, ok := r.At(3); ok {
		t.Error("At(3): got ok, want miss")
	}
}

func TestRegistry_Empty(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry(): %v", err)
	}
	if r.Len() != 0 {
		t.Errorf("Len: got %d, want 0", r.Len())
	}
	if _, ok := r.First(); ok {
		t.Error("First on empty registry: got ok")
	}
	if _, ok := r.Resolve("x"); ok {
		t.Error("Resolve on empty registry: got ok")
	}
	if r.IndexOf("x") != NotFound {
		t.Error("IndexOf on empty registry: want NotFound")
	}

	var nilReg *Registry
	if nilReg.Len() != 0 || nilReg.Contains("x") || nilReg.Panes() != nil {
		t.Error("nil registry should behave as empty")
	}
}
