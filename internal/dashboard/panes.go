package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/timvw/agent-studio/internal/playground"
	"github.com/timvw/agent-studio/internal/studio"
	"github.com/timvw/agent-studio/internal/tabs"
)

// Pane values shared by every kind's detail section.
const (
	tabOverview  = "overview"
	tabConfig    = "config"
	tabTemplate  = "template"
	tabPricing   = "pricing"
	tabDocuments = "documents"
	tabSchema    = "schema"
	tabTriggers  = "triggers"
	tabMetrics   = "metrics"
	tabHistory   = "history"
)

var tabLabels = map[string]string{
	tabOverview:  "Overview",
	tabConfig:    "Configuration",
	tabTemplate:  "Template",
	tabPricing:   "Pricing",
	tabDocuments: "Documents",
	tabSchema:    "Schema",
	tabTriggers:  "Triggers",
	tabMetrics:   "Metrics",
	tabHistory:   "History",
}

// tabsFor lists the pane values of a kind's detail section in order.
func tabsFor(kind studio.Kind) []string {
	var specific string
	switch kind {
	case studio.KindAgent:
		specific = tabConfig
	case studio.KindPrompt:
		specific = tabTemplate
	case studio.KindLLM:
		specific = tabPricing
	case studio.KindKnowledgeBase:
		specific = tabDocuments
	case studio.KindFeature:
		specific = tabSchema
	case studio.KindGuardrail:
		specific = tabTriggers
	}
	return []string{tabOverview, specific, tabMetrics, tabHistory}
}

// paneEnv is what pane render functions read at render time.
type paneEnv struct {
	st       styles
	markdown string
	width    func() int
	now      func() time.Time
	spinner  func() string
}

// detailPanes builds the panes for a loaded entity.
func detailPanes(d *Detail, env paneEnv) []tabs.Pane {
	kind := d.Entity.Summary().Kind
	renderers := map[string]func() string{
		tabOverview: func() string { return env.overview(d.Entity) },
		tabMetrics:  func() string { return env.metrics(d.Series) },
		tabHistory:  func() string { return env.history(d.History) },
	}
	switch e := d.Entity.(type) {
	case studio.Agent:
		renderers[tabConfig] = func() string { return env.agentConfig(e) }
	case studio.Prompt:
		renderers[tabTemplate] = env.memoByWidth(func(w int) string { return env.promptTemplate(e, w) })
	case studio.LLM:
		renderers[tabPricing] = func() string { return env.pricing(e) }
	case studio.KnowledgeBase:
		renderers[tabDocuments] = func() string { return env.documents(e) }
	case studio.Feature:
		renderers[tabSchema] = func() string { return env.schema(e) }
	case studio.Guardrail:
		renderers[tabTriggers] = func() string { return env.triggers(e, d.Series) }
	}

	var panes []tabs.Pane
	for _, v := range tabsFor(kind) {
		panes = append(panes, tabs.Pane{Value: v, Label: tabLabels[v], Render: renderers[v]})
	}
	return panes
}

// skeletonPanes mirrors a kind's panes with placeholder content shown the
// first time an entity loads.
func skeletonPanes(kind studio.Kind, env paneEnv) []tabs.Pane {
	var panes []tabs.Pane
	for i, v := range tabsFor(kind) {
		seed := i
		panes = append(panes, tabs.Pane{
			Value:  v,
			Label:  tabLabels[v],
			Render: func() string { return env.skeleton(seed) },
		})
	}
	return panes
}

// memoByWidth caches an expensive render until the width changes.
func (env paneEnv) memoByWidth(render func(width int) string) func() string {
	lastWidth := -1
	var last string
	return func() string {
		w := env.width()
		if w != lastWidth {
			last, lastWidth = render(w), w
		}
		return last
	}
}

func (env paneEnv) field(label, value string) string {
	return env.st.label.Render(label) + value
}

func (env paneEnv) wrap(s string) string {
	w := env.width()
	if w <= 0 {
		return s
	}
	return lipgloss.NewStyle().Width(w).Render(s)
}

func (env paneEnv) ago(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := env.now().Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

func (env paneEnv) overview(e studio.Entity) string {
	s := e.Summary()
	lines := []string{
		env.field("Name", env.st.text.Render(s.Name)),
		env.field("ID", env.st.dim.Render(s.ID)),
		env.field("Status", env.st.statusStyle(s.Status).Render(statusIcon(s.Status)+" "+string(s.Status))),
		env.field("Updated", env.ago(s.UpdatedAt)),
	}
	switch e := e.(type) {
	case studio.Agent:
		lines = append(lines, env.field("Owner", e.Owner), env.field("Model", e.Model))
	case studio.Prompt:
		lines = append(lines, env.field("Version", fmt.Sprintf("v%d", e.Version)), env.field("Model", e.Model))
	case studio.LLM:
		lines = append(lines, env.field("Provider", e.Provider))
	case studio.KnowledgeBase:
		lines = append(lines, env.field("Documents", formatCount(e.Documents)))
	case studio.Feature:
		lines = append(lines, env.field("Owner", e.Owner))
	case studio.Guardrail:
		lines = append(lines, env.field("Action", e.Action))
	}
	lines = append(lines, "", env.wrap(s.Description))
	return strings.Join(lines, "\n")
}

func (env paneEnv) list(items []string) string {
	if len(items) == 0 {
		return env.st.dim.Render("none")
	}
	return strings.Join(items, ", ")
}

func (env paneEnv) agentConfig(a studio.Agent) string {
	return strings.Join([]string{
		env.field("Model", a.Model),
		env.field("Prompt", a.PromptID),
		env.field("Knowledge", env.list(a.KnowledgeBases)),
		env.field("Guardrails", env.list(a.Guardrails)),
		env.field("Tools", env.list(a.Tools)),
	}, "\n")
}

func (env paneEnv) promptTemplate(p studio.Prompt, width int) string {
	md := playground.TemplateMarkdown(p)
	out, err := playground.Preview(md, env.markdown, width)
	if err != nil {
		return env.st.err.Render(err.Error()) + "\n\n" + md
	}
	return out
}

func (env paneEnv) pricing(l studio.LLM) string {
	// Cost of a typical agent turn: 2k tokens in, 500 out.
	turn := (2000*l.InputPrice + 500*l.OutputPrice) / 1e6
	return strings.Join([]string{
		env.field("Context", formatCount(l.ContextWindow)+" tokens"),
		env.field("Input", fmt.Sprintf("$%.2f / 1M tokens", l.InputPrice)),
		env.field("Output", fmt.Sprintf("$%.2f / 1M tokens", l.OutputPrice)),
		env.field("Per turn", fmt.Sprintf("$%.4f", turn)+env.st.dim.Render("  (2k in, 500 out)")),
	}, "\n")
}

func (env paneEnv) documents(k studio.KnowledgeBase) string {
	perDoc := 0.0
	if k.Documents > 0 {
		perDoc = float64(k.Chunks) / float64(k.Documents)
	}
	return kvTable([]table.Row{
		{"Documents", formatCount(k.Documents)},
		{"Chunks", formatCount(k.Chunks)},
		{"Chunks/doc", fmt.Sprintf("%.1f", perDoc)},
		{"Size", fmt.Sprintf("%.1f MB", k.SizeMB)},
		{"Embeddings", k.EmbeddingModel},
	})
}

// kvTable renders two-column rows as a non-interactive table.
func kvTable(rows []table.Row) string {
	t := table.New(
		table.WithColumns([]table.Column{{Title: "Field", Width: 12}, {Title: "Value", Width: 28}}),
		table.WithRows(rows),
		table.WithHeight(len(rows)+2), // header row and its border
	)
	s := table.DefaultStyles()
	s.Selected = lipgloss.NewStyle()
	t.SetStyles(s)
	return t.View()
}

func (env paneEnv) schema(f studio.Feature) string {
	return kvTable([]table.Row{
		{"Entity", f.Entity},
		{"Type", f.Type},
		{"Freshness", f.Freshness},
		{"Owner", f.Owner},
	})
}

func (env paneEnv) triggers(g studio.Guardrail, s studio.Series) string {
	req, _, _ := s.Totals()
	barWidth := env.width() - 30
	if barWidth > 30 {
		barWidth = 30
	}
	return strings.Join([]string{
		env.field("Category", g.Category),
		env.field("Action", g.Action),
		env.field("Threshold", meter(g.Threshold, barWidth)),
		env.field("Trigger rate", meter(g.TriggerRate, barWidth)),
		env.field("Last 24h", fmt.Sprintf("~%s of %s requests", formatCount(int(float64(req)*g.TriggerRate)), formatCount(req))),
	}, "\n")
}

func (env paneEnv) metrics(s studio.Series) string {
	if len(s.Points) == 0 {
		return env.st.dim.Render("No traffic recorded.")
	}
	req, errs, tokens := s.Totals()
	requests, errors, latency := seriesColumns(s)
	w := env.width() - 14
	if w < 8 {
		w = 8
	}
	errRate := 0.0
	if req > 0 {
		errRate = float64(errs) / float64(req) * 100
	}
	avgLatency := 0.0
	for _, l := range latency {
		avgLatency += l
	}
	avgLatency /= float64(len(latency))

	errStyle := env.st.dim
	if errRate > 5 {
		errStyle = env.st.err
	}
	return strings.Join([]string{
		env.st.dim.Render(fmt.Sprintf("Last %d hours", len(s.Points))),
		env.field("Requests", formatCount(req)),
		env.st.label.Render("") + env.st.bar.Render(sparkline(requests, w)),
		env.field("Errors", errStyle.Render(fmt.Sprintf("%s (%.1f%%)", formatCount(errs), errRate))),
		env.st.label.Render("") + errStyle.Render(sparkline(errors, w)),
		env.field("Latency", fmt.Sprintf("%.0f ms avg", avgLatency)),
		env.st.label.Render("") + env.st.bar.Render(sparkline(latency, w)),
		env.field("Tokens", formatCount(tokens)),
	}, "\n")
}

func (env paneEnv) history(events []studio.Event) string {
	if len(events) == 0 {
		return env.st.dim.Render("No activity yet.")
	}
	var lines []string
	for _, e := range events {
		kind := env.st.text
		if e.IsAttention() {
			kind = env.st.err
		}
		lines = append(lines, fmt.Sprintf("%s %s %s %s",
			env.st.dim.Render(fmt.Sprintf("%-8s", env.ago(e.TS))),
			kind.Render(fmt.Sprintf("%-7s", e.Kind)),
			env.st.dim.Render(fmt.Sprintf("%-12s", e.Actor)),
			e.Message))
	}
	return strings.Join(lines, "\n")
}

// skeletonWidths varies placeholder bar lengths per pane.
var skeletonWidths = [][]int{
	{22, 34, 18, 28, 0, 40},
	{30, 26, 36, 20, 24},
	{14, 40, 40, 40, 18},
	{38, 32, 36, 28, 34, 30},
}

func (env paneEnv) skeleton(seed int) string {
	widths := skeletonWidths[seed%len(skeletonWidths)]
	lines := []string{env.spinner() + env.st.dim.Render(" loading")}
	limit := env.width()
	for _, w := range widths {
		if limit > 0 && w > limit {
			w = limit
		}
		lines = append(lines, env.st.skeleton.Render(strings.Repeat("▒", w)))
	}
	return strings.Join(lines, "\n")
}
