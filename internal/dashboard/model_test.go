package dashboard

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/timvw/agent-studio/internal/studio"
	"github.com/timvw/agent-studio/internal/tabs"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	m := New(context.Background(), Options{
		Loader:        newTestLoader(t),
		Theme:         DarkTheme(),
		MarkdownStyle: "notty",
		ReducedMotion: true,
		Now:           func() time.Time { return testNow },
	})
	t.Cleanup(m.Close)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	drainModel(t, m, m.Init())
	return m
}

// drainModel runs cmd and everything it schedules, feeding data and
// section messages back into m. Ticking animations are dropped.
func drainModel(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 1000 {
			t.Fatal("commands did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case snapshotMsg, detailMsg, catalogReloadedMsg, tabs.ValueChangedMsg,
			tabs.FrameMsg, tabs.ResizeFrameMsg, counterFrameMsg:
			_, next := m.Update(msg)
			queue = append(queue, next)
		}
	}
}

func press(t *testing.T, m *Model, msg tea.KeyMsg) {
	t.Helper()
	_, cmd := m.Update(msg)
	drainModel(t, m, cmd)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_LoadsFirstEntity(t *testing.T) {
	m := newTestModel(t)

	if len(m.visible) == 0 {
		t.Fatal("no agents visible")
	}
	if m.selectedID != m.visible[0].ID || m.shownID != m.selectedID {
		t.Errorf("selected %q shown %q, want both %q", m.selectedID, m.shownID, m.visible[0].ID)
	}
	if got := m.sections[studio.KindAgent].Active(); got != tabOverview {
		t.Errorf("active tab = %q, want %q", got, tabOverview)
	}
	for _, k := range studio.Kinds {
		if got, want := m.counters[k].Value(), m.snap.Counts[k]; got != want {
			t.Errorf("counter %s = %d, want %d", k, got, want)
		}
	}
	if m.loading {
		t.Error("still loading after drain")
	}
}

func TestModel_DetailTabIsControlled(t *testing.T) {
	m := newTestModel(t)
	m.focus = focusDetail
	s := m.sections[studio.KindAgent]

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if got := s.Active(); got != tabOverview {
		t.Fatalf("section moved to %q before the dashboard echoed the value", got)
	}
	drainModel(t, m, cmd)
	if got := s.Active(); got != tabConfig {
		t.Errorf("active tab = %q, want %q", got, tabConfig)
	}
	if got := m.tabByKind[studio.KindAgent]; got != tabConfig {
		t.Errorf("tabByKind[agents] = %q, want %q", got, tabConfig)
	}
}

func TestModel_TabKeptPerKind(t *testing.T) {
	m := newTestModel(t)
	m.focus = focusDetail
	press(t, m, runes("3")) // metrics

	m.focus = focusList
	press(t, m, runes("]"))
	if m.kind() != studio.KindPrompt {
		t.Fatalf("kind = %s, want prompts", m.kind())
	}
	if got := m.sections[studio.KindPrompt].Active(); got != tabOverview {
		t.Errorf("prompts tab = %q, want %q", got, tabOverview)
	}

	press(t, m, runes("["))
	press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.selectedID != m.visible[1].ID || m.shownID != m.selectedID {
		t.Fatalf("second agent not loaded: selected %q shown %q", m.selectedID, m.shownID)
	}
	if got := m.sections[studio.KindAgent].Active(); got != tabMetrics {
		t.Errorf("agents tab = %q after switching entity, want %q", got, tabMetrics)
	}
}

func TestModel_SkeletonOnlyOnFirstOpen(t *testing.T) {
	m := newTestModel(t)
	first := m.selectedID

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if !strings.Contains(m.View(), "loading") {
		t.Error("expected skeleton while a new entity loads")
	}
	drainModel(t, m, cmd)
	if strings.Contains(m.View(), "loading") {
		t.Error("skeleton still shown after load")
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.selectedID != first {
		t.Fatalf("selected %q, want %q", m.selectedID, first)
	}
	if strings.Contains(m.View(), "loading") {
		t.Error("skeleton shown again for an entity already seen")
	}
	drainModel(t, m, cmd)
	if !m.opts.Seen.Seen(first) || m.opts.Seen.Len() != 2 {
		t.Errorf("seen set has %d ids", m.opts.Seen.Len())
	}
}

func TestModel_ReopenMountsLastDetail(t *testing.T) {
	m := newTestModel(t)
	first := m.selectedID

	press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.mounted[studio.KindAgent] == first {
		t.Fatal("second entity never mounted")
	}

	// The fresh detail has not arrived yet: the cached one is shown.
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.selectedID != first {
		t.Fatalf("selected %q, want %q", m.selectedID, first)
	}
	if m.mounted[studio.KindAgent] != first || m.shownID != first {
		t.Errorf("mounted %q shown %q, want %q right away", m.mounted[studio.KindAgent], m.shownID, first)
	}
}

func TestModel_SeenWithoutDetailHidesPreviousPanes(t *testing.T) {
	m := newTestModel(t)
	first := m.selectedID
	next := m.visible[1].ID
	m.opts.Seen.MarkSeen(next)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.mounted[studio.KindAgent] != first {
		t.Fatalf("mounted %q, want the previous entity %q still in the section", m.mounted[studio.KindAgent], first)
	}
	lines := m.viewDetail()
	if len(lines) != 2 || !strings.Contains(ansi.Strip(lines[1]), "Loading...") {
		t.Errorf("detail while loading = %q, want title and Loading...", lines)
	}

	drainModel(t, m, cmd)
	if m.mounted[studio.KindAgent] != next {
		t.Errorf("mounted %q after load, want %q", m.mounted[studio.KindAgent], next)
	}
	if lines := m.viewDetail(); len(lines) < 3 {
		t.Errorf("detail after load has %d lines, want the section", len(lines))
	}
}

func TestModel_StaleDetailIgnored(t *testing.T) {
	m := newTestModel(t)
	m.Update(detailMsg{id: "agt-elsewhere", err: errors.New("boom")})
	if m.message != "" {
		t.Errorf("stale detail set message %q", m.message)
	}
}

func TestModel_Search(t *testing.T) {
	m := newTestModel(t)
	all := len(m.visible)

	press(t, m, runes("/"))
	if m.focus != focusSearch {
		t.Fatalf("focus = %d, want search", m.focus)
	}
	press(t, m, runes("sup"))
	if len(m.visible) != 1 || m.visible[0].ID != "agt-support" {
		t.Fatalf("visible = %v, want only agt-support", m.visible)
	}
	if m.selectedID != "agt-support" {
		t.Errorf("selected %q, want agt-support", m.selectedID)
	}

	press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.focus != focusList || len(m.visible) != all {
		t.Errorf("esc left focus %d with %d visible, want list with %d", m.focus, len(m.visible), all)
	}
}

func TestModel_MouseSelectsKind(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(tea.MouseMsg{
		X: 2, Y: headerRows + 2,
		Action: tea.MouseActionPress, Button: tea.MouseButtonLeft,
	})
	drainModel(t, m, cmd)
	if m.kind() != studio.KindLLM {
		t.Fatalf("kind = %s, want llms", m.kind())
	}
	if m.shownID == "" || !strings.HasPrefix(m.shownID, "llm-") {
		t.Errorf("shown %q, want an llm", m.shownID)
	}
}

func TestModel_MouseSelectsTab(t *testing.T) {
	m := newTestModel(t)

	// The label strip sits one row below the entity title.
	row := strings.Split(m.View(), "\n")[headerRows+1]
	plain := ansi.Strip(row)
	i := strings.Index(plain, "Metrics")
	if i < 0 {
		t.Fatalf("label row %q has no Metrics tab", plain)
	}
	_, cmd := m.Update(tea.MouseMsg{
		X: ansi.StringWidth(plain[:i]) + 1, Y: headerRows + 1,
		Action: tea.MouseActionPress, Button: tea.MouseButtonLeft,
	})
	drainModel(t, m, cmd)
	if m.focus != focusDetail {
		t.Errorf("focus = %d, want detail", m.focus)
	}
	if got := m.sections[studio.KindAgent].Active(); got != tabMetrics {
		t.Errorf("active = %q, want %q", got, tabMetrics)
	}
}

func TestModel_CatalogReload(t *testing.T) {
	m := newTestModel(t)

	m.Update(catalogReloadedMsg{err: errors.New("yaml: line 3")})
	if !strings.Contains(m.View(), "Catalog reload failed") {
		t.Error("reload failure not shown in status line")
	}

	_, cmd := m.Update(catalogReloadedMsg{})
	drainModel(t, m, cmd)
	if m.selectedID == "" || m.shownID != m.selectedID {
		t.Errorf("detail not reloaded: selected %q shown %q", m.selectedID, m.shownID)
	}
}

func TestModel_View(t *testing.T) {
	m := newTestModel(t)
	v := m.View()
	for _, want := range []string{"Agent Studio", "Agents", "Support Concierge", "Overview", "History"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if n := strings.Count(v, "\n") + 1; n != 40 {
		t.Errorf("view has %d rows, want 40", n)
	}
}
