package tabs

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
)

func sizedPanes() []Pane {
	return []Pane{
		{Value: "overview", Label: "Overview", Render: fixed(rows(3))},
		{Value: "features", Label: "Features", Render: fixed(rows(6))},
		{Value: "history", Label: "History", Render: fixed(rows(2))},
	}
}

func newSection(t *testing.T, panes []Pane, opts ...Option) *Section {
	t.Helper()
	opts = append([]Option{WithTiming(fastTiming()), WithWidth(40)}, opts...)
	s, err := New(panes, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

// drain executes cmd and everything it schedules, feeding frame messages
// back into s. Other messages are returned in order.
func drain(s *Section, cmd tea.Cmd) []tea.Msg {
	var out []tea.Msg
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0 && steps < 10000; steps++ {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case FrameMsg, ResizeFrameMsg:
			_, next := s.Update(msg)
			queue = append(queue, next)
		default:
			out = append(out, msg)
		}
	}
	return out
}

func valueChanges(msgs []tea.Msg) []string {
	var out []string
	for _, m := range msgs {
		if v, ok := m.(ValueChangedMsg); ok {
			out = append(out, v.Value)
		}
	}
	return out
}

func TestSection_ScenarioA(t *testing.T) {
	s := newSection(t, sizedPanes(), WithDefaultValue("overview"))

	cmd := s.Select("history")
	if s.Direction() != Forward {
		t.Errorf("overview->history: got %v, want forward", s.Direction())
	}
	if !s.Transitioning() {
		t.Error("expected a transition to start")
	}
	drain(s, cmd)

	drain(s, s.Select("features"))
	if s.Direction() != Backward {
		t.Errorf("history->features: got %v, want backward", s.Direction())
	}
	if s.Active() != "features" {
		t.Errorf("active: got %q, want features", s.Active())
	}
}

func TestSection_SteadyStateMountsOnePane(t *testing.T) {
	s := newSection(t, sizedPanes())
	for _, v := range []string{"history", "overview", "features", "features", "history"} {
		drain(s, s.Select(v))
		if s.Transitioning() {
			t.Fatalf("after %s: still transitioning", v)
		}
		if diff := cmp.Diff([]string{v}, s.Mounted()); diff != "" {
			t.Fatalf("after %s: mounted mismatch (-want +got):\n%s", v, diff)
		}
		if got := s.Observers(); got != 1 {
			t.Fatalf("after %s: observers got %d, want 1", v, got)
		}
	}
}

func TestSection_Supersession(t *testing.T) {
	s := newSection(t, sizedPanes())

	first := s.Select("features")
	if diff := cmp.Diff([]string{"overview", "features"}, s.Mounted()); diff != "" {
		t.Fatalf("mounted during first transition (-want +got):\n%s", diff)
	}

	second := s.Select("history")
	if diff := cmp.Diff([]string{"features", "history"}, s.Mounted()); diff != "" {
		t.Fatalf("mounted after supersession (-want +got):\n%s", diff)
	}

	// Frames of the superseded episode arrive late and must be ignored.
	drain(s, first)
	drain(s, second)

	if s.Transitioning() {
		t.Error("still transitioning after both episodes drained")
	}
	if diff := cmp.Diff([]string{"history"}, s.Mounted()); diff != "" {
		t.Errorf("steady state mismatch (-want +got):\n%s", diff)
	}
	if h, _ := s.Height(); h != 2 {
		t.Errorf("height: got %d, want 2", h)
	}
	body := strings.SplitN(s.View(), "\n", stripRows+1)[stripRows]
	if body != rows(2) {
		t.Errorf("body: got %q, want %q", body, rows(2))
	}
}

func TestSection_ReselectIsIdempotent(t *testing.T) {
	s := newSection(t, sizedPanes(), WithDefaultValue("features"))
	before, ok := s.Height()
	if !ok || before != 6 {
		t.Fatalf("initial height: got %d/%v, want 6", before, ok)
	}

	msgs := drain(s, s.Select("features"))
	if s.Transitioning() {
		t.Error("reselect started a transition")
	}
	if s.Direction() != None {
		t.Errorf("direction: got %v, want none", s.Direction())
	}
	if after, _ := s.Height(); after != before {
		t.Errorf("height: got %d, want %d", after, before)
	}
	if diff := cmp.Diff([]string{"features"}, valueChanges(msgs)); diff != "" {
		t.Errorf("change notifications (-want +got):\n%s", diff)
	}
}

func TestSection_ContainerFollowsContent(t *testing.T) {
	s := newSection(t, sizedPanes())
	if h, _ := s.Height(); h != 3 {
		t.Fatalf("initial height: got %d, want 3", h)
	}

	cmd := s.Select("features")
	if h, _ := s.Height(); h != 3 {
		t.Errorf("height before any frame: got %d, want 3", h)
	}
	drain(s, cmd)
	if h, _ := s.Height(); h != 6 {
		t.Errorf("settled height: got %d, want 6", h)
	}
	if got := s.Rows(); got != stripRows+6 {
		t.Errorf("rows: got %d, want %d", got, stripRows+6)
	}
}

func TestSection_ContentGrowthWhileIdle(t *testing.T) {
	n := 2
	panes := []Pane{{Value: "log", Render: func() string { return rows(n) }}}
	s := newSection(t, panes)

	n = 5
	_, cmd := s.Update(tea.WindowSizeMsg{Width: 40, Height: 20})
	if cmd == nil {
		t.Fatal("content growth did not schedule a resize")
	}
	drain(s, cmd)
	if h, _ := s.Height(); h != 5 {
		t.Errorf("height: got %d, want 5", h)
	}
}

func TestSection_ReducedMotion(t *testing.T) {
	s := newSection(t, sizedPanes(), WithReducedMotion(true))
	s.Select("history")
	if s.Transitioning() {
		t.Error("reduced motion started a transition")
	}
	if h, _ := s.Height(); h != 2 {
		t.Errorf("height: got %d, want 2", h)
	}
}

func TestSection_ScenarioB(t *testing.T) {
	s := newSection(t, []Pane{{Value: "only", Render: fixed("content")}})
	for _, k := range []tea.KeyMsg{
		{Type: tea.KeyRight},
		{Type: tea.KeyLeft},
		{Type: tea.KeyTab},
		{Type: tea.KeyRunes, Runes: []rune("1")},
	} {
		if _, cmd := s.Update(k); cmd != nil {
			t.Errorf("key %q produced a command", k.String())
		}
	}
	if s.Transitioning() || s.Direction() != None {
		t.Errorf("single pane moved: transitioning=%v direction=%v", s.Transitioning(), s.Direction())
	}
}

func TestSection_ScenarioC(t *testing.T) {
	var calls []string
	s := newSection(t, sizedPanes(),
		WithValue("overview"),
		WithOnValueChange(func(v string) { calls = append(calls, v) }))

	msgs := drain(s, s.Select("history"))
	msgs = append(msgs, drain(s, s.Select("features"))...)

	if diff := cmp.Diff([]string{"history", "features"}, calls); diff != "" {
		t.Errorf("callbacks (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"history", "features"}, valueChanges(msgs)); diff != "" {
		t.Errorf("messages (-want +got):\n%s", diff)
	}
	if s.Active() != "overview" || s.Transitioning() {
		t.Errorf("visible pane moved without the parent: active %q transitioning %v", s.Active(), s.Transitioning())
	}

	cmd := s.SetValue("features")
	if s.Active() != "features" || !s.Transitioning() {
		t.Errorf("after SetValue: active %q transitioning %v", s.Active(), s.Transitioning())
	}
	drain(s, cmd)
	if diff := cmp.Diff([]string{"features"}, s.Mounted()); diff != "" {
		t.Errorf("mounted (-want +got):\n%s", diff)
	}
}

func TestSection_Keys(t *testing.T) {
	s := newSection(t, sizedPanes())
	tests := []struct {
		key  tea.KeyMsg
		want string
	}{
		{tea.KeyMsg{Type: tea.KeyRight}, "features"},
		{tea.KeyMsg{Type: tea.KeyTab}, "history"},
		{tea.KeyMsg{Type: tea.KeyRight}, "overview"}, // wraps
		{tea.KeyMsg{Type: tea.KeyShiftTab}, "history"},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")}, "features"},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("9")}, "features"},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("h")}, "overview"},
	}
	for _, tt := range tests {
		_, cmd := s.Update(tt.key)
		drain(s, cmd)
		if s.Active() != tt.want {
			t.Errorf("after %q: active %q, want %q", tt.key.String(), s.Active(), tt.want)
		}
	}
}

func TestSection_MouseSelectsLabel(t *testing.T) {
	s := newSection(t, sizedPanes())
	s.SetOrigin(4, 10)
	s.View()

	press := func(x, y int) {
		_, cmd := s.Update(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
		drain(s, cmd)
	}
	press(4+12, 11) // below the label row
	if s.Active() != "overview" {
		t.Errorf("press off the label row selected %q", s.Active())
	}
	press(4+12, 10)
	if s.Active() != "features" {
		t.Errorf("press on Features: active %q, want features", s.Active())
	}
}

func TestSection_InvalidSelection(t *testing.T) {
	s := newSection(t, sizedPanes())
	if cmd := s.Select("nope"); cmd != nil {
		t.Error("unknown value produced a command")
	}
	if s.Active() != "overview" {
		t.Errorf("active: got %q, want overview", s.Active())
	}
}

func TestSection_EmptyRegistry(t *testing.T) {
	s := newSection(t, nil)
	if got := s.View(); got != "" {
		t.Errorf("view: got %q, want empty", got)
	}
	if s.Select("x") != nil || s.SetValue("x") != nil {
		t.Error("empty section produced a command")
	}
	if _, ok := s.Height(); ok {
		t.Error("empty section reported a height")
	}
	if s.Observers() != 0 || s.Rows() != 0 {
		t.Errorf("observers %d rows %d, want 0/0", s.Observers(), s.Rows())
	}
}

func TestSection_SetPanes(t *testing.T) {
	s := newSection(t, sizedPanes(), WithDefaultValue("history"))
	s.Select("features")

	if _, err := s.SetPanes([]Pane{{Value: "metrics", Render: fixed(rows(4))}, {Value: "history"}}); err != nil {
		t.Fatalf("SetPanes: %v", err)
	}
	if s.Active() != "metrics" || s.Transitioning() {
		t.Errorf("after SetPanes: active %q transitioning %v", s.Active(), s.Transitioning())
	}
	if h, _ := s.Height(); h != 4 {
		t.Errorf("height: got %d, want 4", h)
	}
	if _, err := s.SetPanes([]Pane{{Value: "a"}, {Value: "a"}}); err == nil {
		t.Error("SetPanes accepted duplicate values")
	}
}

func TestSection_SetPanesAnimatesSurvivingPane(t *testing.T) {
	s := newSection(t, []Pane{
		{Value: "overview", Render: fixed(rows(2))},
		{Value: "history", Render: fixed(rows(1))},
	})
	if h, _ := s.Height(); h != 2 {
		t.Fatalf("initial height: got %d, want 2", h)
	}

	cmd, err := s.SetPanes([]Pane{
		{Value: "overview", Render: fixed(rows(9))},
		{Value: "history", Render: fixed(rows(1))},
	})
	if err != nil {
		t.Fatalf("SetPanes: %v", err)
	}
	if cmd == nil {
		t.Fatal("SetPanes scheduled no resize frames")
	}
	if s.Active() != "overview" || s.Transitioning() {
		t.Errorf("after SetPanes: active %q transitioning %v", s.Active(), s.Transitioning())
	}
	if h, _ := s.Height(); h != 2 {
		t.Errorf("height right after SetPanes: got %d, want 2", h)
	}

	drain(s, cmd)
	if h, _ := s.Height(); h != 9 {
		t.Errorf("settled height: got %d, want 9", h)
	}
	if s.Observers() != 1 {
		t.Errorf("observers: got %d, want 1", s.Observers())
	}
}

func TestSection_CloseReleasesObservation(t *testing.T) {
	s := newSection(t, sizedPanes())
	cmd := s.Select("features")
	s.Close()
	if s.Observers() != 0 {
		t.Errorf("observers after Close: got %d, want 0", s.Observers())
	}
	drain(s, cmd)
	if s.Transitioning() {
		t.Error("closed section kept animating")
	}
}

func TestSection_FailOpenRendersNaturalHeight(t *testing.T) {
	s := newSection(t, sizedPanes(), WithMeasurer(NoMeasure))
	if _, ok := s.Height(); ok {
		t.Error("height reported with NoMeasure")
	}
	lines := strings.Split(s.View(), "\n")
	if got := len(lines) - stripRows; got != 3 {
		t.Errorf("body rows: got %d, want 3", got)
	}
}
