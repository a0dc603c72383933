package tabs

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustRegistry(t *testing.T, values ...string) *Registry {
	t.Helper()
	panes := make([]Pane, len(values))
	for i, v := range values {
		panes[i] = Pane{Value: v}
	}
	r, err := NewRegistry(panes...)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return r
}

// Every ordered pair (a, b): select b while a is active.
func TestController_DirectionAllPairs(t *testing.T) {
	values := []string{"p0", "p1", "p2", "p3", "p4"}
	reg := mustRegistry(t, values...)

	for ai, a := range values {
		for bi, b := range values {
			t.Run(fmt.Sprintf("%s->%s", a, b), func(t *testing.T) {
				c := NewController(reg, Uncontrolled(a))
				c.Select(b)

				want := None
				switch {
				case bi > ai:
					want = Forward
				case bi < ai:
					want = Backward
				}
				if got := c.Direction(); got != want {
					t.Errorf("direction: got %v, want %v", got, want)
				}
				if got := c.Active(); got != b {
					t.Errorf("active: got %q, want %q", got, b)
				}
			})
		}
	}
}

func TestController_ScenarioA(t *testing.T) {
	reg, _ := NewRegistry(scenarioPanes()...)
	c := NewController(reg, Uncontrolled("overview"))

	c.Select("history")
	if c.Direction() != Forward {
		t.Errorf("overview->history: got %v, want forward", c.Direction())
	}
	c.Select("features")
	if c.Direction() != Backward {
		t.Errorf("history->features: got %v, want backward", c.Direction())
	}
	if c.Active() != "features" {
		t.Errorf("active: got %q, want features", c.Active())
	}
}

func TestController_ScenarioB(t *testing.T) {
	reg := mustRegistry(t, "only")
	c := NewController(reg)
	if c.Active() != "only" {
		t.Fatalf("active: got %q, want only", c.Active())
	}
	c.Select("only")
	if c.Direction() != None {
		t.Errorf("direction: got %v, want none", c.Direction())
	}
}

func TestController_ScenarioC(t *testing.T) {
	reg, _ := NewRegistry(scenarioPanes()...)
	var calls []string
	c := NewController(reg, Controlled("overview", func(v string) {
		calls = append(calls, v)
	}))

	// The parent ignores every callback.
	c.Select("history")
	c.Select("features")

	if diff := cmp.Diff([]string{"history", "features"}, calls); diff != "" {
		t.Errorf("callbacks mismatch (-want +got):\n%s", diff)
	}
	if c.Active() != "overview" {
		t.Errorf("active: got %q, want overview", c.Active())
	}

	// Until the parent hands down a new value.
	if !c.SetValue("features") {
		t.Fatal("SetValue(features): got unchanged")
	}
	if c.Active() != "features" {
		t.Errorf("active after SetValue: got %q, want features", c.Active())
	}
}

// Controlled with an echoing parent and uncontrolled must agree.
func TestController_ControlledUncontrolledEquivalence(t *testing.T) {
	events := []string{"history", "features", "features", "missing", "overview", "history", "overview"}
	for _, base := range []DirectionBase{BaseDisplayed, BaseLastSelected} {
		t.Run(base.String(), func(t *testing.T) {
			reg, _ := NewRegistry(scenarioPanes()...)

			unc := NewController(reg, Uncontrolled(""), WithControllerDirectionBase(base))

			var ctl *Controller
			ctl = NewController(reg, WithControllerDirectionBase(base), Controlled("overview", func(v string) {
				ctl.SetValue(v)
			}))

			var uncActive, ctlActive []string
			var uncDir, ctlDir []Direction
			for _, ev := range events {
				unc.Select(ev)
				ctl.Select(ev)
				uncActive = append(uncActive, unc.Active())
				ctlActive = append(ctlActive, ctl.Active())
				uncDir = append(uncDir, unc.Direction())
				ctlDir = append(ctlDir, ctl.Direction())
			}
			if diff := cmp.Diff(uncActive, ctlActive); diff != "" {
				t.Errorf("active sequence mismatch (-uncontrolled +controlled):\n%s", diff)
			}
			if diff := cmp.Diff(uncDir, ctlDir); diff != "" {
				t.Errorf("direction sequence mismatch (-uncontrolled +controlled):\n%s", diff)
			}
		})
	}
}

func TestController_InvalidSelectionIsNoop(t *testing.T) {
	reg, _ := NewRegistry(scenarioPanes()...)
	called := false
	c := NewController(reg, Uncontrolled("features"), OnChange(func(string) { called = true }))
	c.Select("history")
	called = false

	c.Select("nope")
	if called {
		t.Error("callback fired for unknown value")
	}
	if c.Active() != "history" || c.Direction() != Forward {
		t.Errorf("state changed: active %q direction %v", c.Active(), c.Direction())
	}
}

func TestController_OutOfBandChange(t *testing.T) {
	tests := []struct {
		base DirectionBase
		want Direction
	}{
		// Displayed value is history; features sits before it.
		{BaseDisplayed, Backward},
		// Legacy keeps the direction of the last Select (overview->features).
		{BaseLastSelected, Forward},
	}
	for _, tt := range tests {
		t.Run(tt.base.String(), func(t *testing.T) {
			reg, _ := NewRegistry(scenarioPanes()...)
			c := NewController(reg, WithControllerDirectionBase(tt.base), Controlled("overview", nil))

			c.Select("features")
			// The parent ignores the request and jumps to history out of band.
			c.SetValue("history")
			// Then it echoes the earlier request.
			c.SetValue("features")

			if got := c.Direction(); got != tt.want {
				t.Errorf("direction: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestController_DefaultValue(t *testing.T) {
	reg, _ := NewRegistry(scenarioPanes()...)
	tests := []struct {
		name string
		opt  ControllerOption
		want string
	}{
		{"uncontrolled default", Uncontrolled("features"), "features"},
		{"uncontrolled empty", Uncontrolled(""), "overview"},
		{"uncontrolled unknown", Uncontrolled("gone"), "overview"},
		{"controlled", Controlled("history", nil), "history"},
		{"controlled unknown", Controlled("gone", nil), "overview"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(reg, tt.opt)
			if got := c.Active(); got != tt.want {
				t.Errorf("active: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestController_SetRegistry(t *testing.T) {
	reg, _ := NewRegistry(scenarioPanes()...)
	c := NewController(reg, Uncontrolled("history"))
	c.Select("features")

	c.SetRegistry(mustRegistry(t, "metrics", "overview"))
	if c.Active() != "metrics" {
		t.Errorf("active: got %q, want metrics", c.Active())
	}
	if c.Direction() != None {
		t.Errorf("direction: got %v, want none", c.Direction())
	}

	c.SetRegistry(mustRegistry(t))
	if c.Active() != "" {
		t.Errorf("active on empty registry: got %q, want empty", c.Active())
	}
	c.Select("metrics")
	if c.Active() != "" {
		t.Errorf("select on empty registry changed active to %q", c.Active())
	}
}

func TestParseDirectionBase(t *testing.T) {
	tests := map[string]DirectionBase{
		"":              BaseDisplayed,
		"displayed":     BaseDisplayed,
		"last_selected": BaseLastSelected,
		"legacy":        BaseLastSelected,
		"bogus":         BaseDisplayed,
	}
	for in, want := range tests {
		if got := ParseDirectionBase(in); got != want {
			t.Errorf("ParseDirectionBase(%q): got %v, want %v", in, got, want)
		}
	}
}
