package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"go.uber.org/zap"

	"github.com/timvw/agent-studio/internal/otel"
	"github.com/timvw/agent-studio/internal/studio"
	"github.com/timvw/agent-studio/internal/tabs"
)

// focus tracks which panel receives keys.
type focus int

const (
	focusList   focus = iota // left: categories and entities
	focusDetail              // right: the entity's tab section
	focusSearch              // search box
)

// Layout rows above and below the two panels.
const (
	headerRows = 3 // title + counters, search box, rule
	footerRows = 2 // status line, help
)

const typewriterFrame = 70 * time.Millisecond

var searchPhrases = []string{
	"search agents...",
	"try \"support\"",
	"find a prompt by name",
	"filter guardrails",
}

// messages
type snapshotMsg struct {
	snap *Snapshot
	err  error
}

type detailMsg struct {
	id     string
	detail *Detail
	err    error
}

// catalogReloadedMsg is sent by the catalog watcher after a reload attempt.
type catalogReloadedMsg struct{ err error }

type counterFrameMsg struct{ gen uint64 }

type typewriterFrameMsg struct{}

// Options configures the dashboard model.
type Options struct {
	Loader        *Loader
	Theme         Theme
	MarkdownStyle string // glamour standard style, e.g. "dark"
	Timing        tabs.Timing
	ReducedMotion bool
	DirectionBase tabs.DirectionBase
	Seen          *studio.SeenSet
	Metrics       *otel.Metrics
	Logger        *zap.Logger
	Now           func() time.Time
}

// Model is the dashboard's Bubble Tea model.
type Model struct {
	ctx  context.Context
	opts Options
	st   styles
	keys keyMap
	log  *zap.Logger

	help    help.Model
	search  textinput.Model
	spinner spinner.Model
	typer   *Typewriter

	counters   map[studio.Kind]*Counter
	counterGen uint64

	snap       *Snapshot
	kindIdx    int
	visible    []studio.Summary
	cursor     int
	offset     int
	selectedID string
	shownID    string // entity whose detail panes are mounted
	loading    bool

	// One controlled section per kind, so each kind remembers its tab.
	sections  map[studio.Kind]*tabs.Section
	tabByKind map[studio.Kind]string
	mounted   map[studio.Kind]string // entity each section's panes belong to
	details   map[string]*Detail     // last detail loaded per entity

	focus    focus
	showHelp bool
	message  string

	width, height int
	listWidth     int
}

// New builds the dashboard model. Data loads start in Init.
func New(ctx context.Context, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Seen == nil {
		opts.Seen = studio.NewSeenSet()
	}
	if opts.MarkdownStyle == "" {
		opts.MarkdownStyle = "dark"
	}

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.CharLimit = 64
	ti.Width = 40

	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot))

	m := &Model{
		ctx:       ctx,
		opts:      opts,
		st:        newStyles(opts.Theme),
		keys:      defaultKeyMap(),
		log:       opts.Logger,
		help:      help.New(),
		search:    ti,
		spinner:   sp,
		typer:     NewTypewriter(searchPhrases...),
		counters:  make(map[studio.Kind]*Counter, len(studio.Kinds)),
		sections:  make(map[studio.Kind]*tabs.Section, len(studio.Kinds)),
		mounted:   make(map[studio.Kind]string, len(studio.Kinds)),
		details:   make(map[string]*Detail),
		tabByKind: make(map[studio.Kind]string, len(studio.Kinds)),
	}
	for _, k := range studio.Kinds {
		m.counters[k] = NewCounter(opts.Timing.FPS, 0, opts.ReducedMotion)
		m.tabByKind[k] = tabOverview
	}
	m.search.Placeholder = m.placeholder()
	return m
}

func (m *Model) Init() tea.Cmd {
	m.loading = true
	cmds := []tea.Cmd{m.loadSnapshot(), m.spinner.Tick}
	if !m.opts.ReducedMotion {
		cmds = append(cmds, typewriterTick())
	}
	return tea.Batch(cmds...)
}

func (m *Model) loadSnapshot() tea.Cmd {
	loader, ctx := m.opts.Loader, m.ctx
	return func() tea.Msg {
		snap, err := loader.Snapshot(ctx)
		return snapshotMsg{snap: snap, err: err}
	}
}

func (m *Model) loadDetail(id string) tea.Cmd {
	loader, ctx := m.opts.Loader, m.ctx
	return func() tea.Msg {
		d, err := loader.Detail(ctx, id)
		return detailMsg{id: id, detail: d, err: err}
	}
}

func typewriterTick() tea.Cmd {
	return tea.Tick(typewriterFrame, func(time.Time) tea.Msg { return typewriterFrameMsg{} })
}

func (m *Model) counterTick(gen uint64) tea.Cmd {
	frame := tabs.Timing{FPS: m.opts.Timing.FPS}.Frame()
	return tea.Tick(frame, func(time.Time) tea.Msg { return counterFrameMsg{gen: gen} })
}

func (m *Model) kind() studio.Kind { return studio.Kinds[m.kindIdx] }

func (m *Model) env() paneEnv {
	return paneEnv{
		st:       m.st,
		markdown: m.opts.MarkdownStyle,
		width:    m.detailWidth,
		now:      m.opts.Now,
		spinner:  func() string { return m.spinner.View() },
	}
}

func (m *Model) detailWidth() int {
	w := m.width - m.listWidth - 3
	if w < 20 {
		w = 20
	}
	return w
}

func (m *Model) placeholder() string {
	if m.opts.ReducedMotion {
		return m.typer.Full()
	}
	return m.typer.Text()
}

// mount puts panes belonging to entity id into the kind's detail section,
// creating the section on first use. The returned command animates the
// container when an existing section's content height changed.
func (m *Model) mount(kind studio.Kind, id string, panes []tabs.Pane) (tea.Cmd, error) {
	if s, ok := m.sections[kind]; ok {
		cmd, err := s.SetPanes(panes)
		if err != nil {
			return nil, err
		}
		m.mounted[kind] = id
		return cmd, nil
	}
	log := m.log
	s, err := tabs.New(panes,
		tabs.WithID("detail-"+string(kind)),
		tabs.WithValue(m.tabByKind[kind]),
		tabs.WithOnValueChange(func(v string) {
			log.Debug("detail tab requested", zap.String("kind", string(kind)), zap.String("value", v))
		}),
		tabs.WithDirectionBase(m.opts.DirectionBase),
		tabs.WithTiming(m.opts.Timing),
		tabs.WithReducedMotion(m.opts.ReducedMotion),
		tabs.WithTheme(m.opts.Theme.Tabs()),
		tabs.WithWidth(m.detailWidth()),
		tabs.WithLogger(m.log),
		tabs.WithMetrics(m.opts.Metrics),
	)
	if err != nil {
		return nil, err
	}
	s.SetOrigin(m.listWidth+3, headerRows+1)
	m.sections[kind] = s
	m.mounted[kind] = id
	return nil, nil
}

// kindOfSection maps a section id back to its kind.
func (m *Model) kindOfSection(id string) (studio.Kind, bool) {
	for k, s := range m.sections {
		if s.ID() == id {
			return k, true
		}
	}
	return "", false
}

// rebuildVisible re-ranks the current kind's entities against the query.
func (m *Model) rebuildVisible() {
	if m.snap == nil {
		m.visible = nil
		return
	}
	m.visible = Rank(m.search.Value(), m.snap.Lists[m.kind()])
	if m.cursor >= len(m.visible) {
		m.cursor = max(0, len(m.visible)-1)
	}
	m.clampOffset()
}

func (m *Model) listRows() int {
	rows := m.height - headerRows - footerRows - len(studio.Kinds) - 1
	return max(1, rows)
}

func (m *Model) clampOffset() {
	rows := m.listRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
}

// selectCurrent loads the entity under the cursor when it changed.
func (m *Model) selectCurrent() tea.Cmd {
	if m.cursor >= len(m.visible) {
		m.selectedID = ""
		return nil
	}
	id := m.visible[m.cursor].ID
	if id == m.selectedID {
		return nil
	}
	m.selectedID = id
	return m.openEntity(m.visible[m.cursor].Kind, id)
}

// openEntity starts loading id. The skeleton is shown only the first time
// an entity is opened; later opens show the last loaded detail until the
// fresh one arrives.
func (m *Model) openEntity(kind studio.Kind, id string) tea.Cmd {
	cmds := []tea.Cmd{m.loadDetail(id)}
	if m.opts.Seen.MarkSeen(id) {
		cmd, err := m.mount(kind, id, skeletonPanes(kind, m.env()))
		if err != nil {
			m.message = err.Error()
		}
		m.shownID = ""
		m.loading = true
		return tea.Batch(append(cmds, cmd, m.spinner.Tick)...)
	}
	if d, ok := m.details[id]; ok {
		cmd, err := m.mount(kind, id, detailPanes(d, m.env()))
		if err != nil {
			m.message = err.Error()
			return tea.Batch(cmds...)
		}
		m.shownID = id
		return tea.Batch(append(cmds, cmd)...)
	}
	m.loading = true
	return tea.Batch(append(cmds, m.spinner.Tick)...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case snapshotMsg:
		m.loading = false
		if msg.err != nil {
			m.message = fmt.Sprintf("Load error: %v", msg.err)
			return m, nil
		}
		m.snap = msg.snap
		m.rebuildVisible()
		return m, tea.Batch(m.retargetCounters(), m.selectCurrent())

	case detailMsg:
		if msg.id != m.selectedID {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.message = fmt.Sprintf("Load error: %v", msg.err)
			return m, nil
		}
		m.details[msg.id] = msg.detail
		kind := msg.detail.Entity.Summary().Kind
		cmd, err := m.mount(kind, msg.id, detailPanes(msg.detail, m.env()))
		if err != nil {
			m.message = err.Error()
			return m, nil
		}
		m.shownID = msg.id
		return m, cmd

	case catalogReloadedMsg:
		if msg.err != nil {
			m.message = fmt.Sprintf("Catalog reload failed: %v", msg.err)
			return m, nil
		}
		m.message = "Catalog reloaded"
		m.selectedID = ""
		m.details = make(map[string]*Detail)
		m.loading = true
		return m, tea.Batch(m.loadSnapshot(), m.spinner.Tick)

	case tabs.ValueChangedMsg:
		kind, ok := m.kindOfSection(msg.SectionID)
		if !ok {
			return m, nil
		}
		// Controlled: the section only moves when we echo the value back.
		m.tabByKind[kind] = msg.Value
		return m, m.sections[kind].SetValue(msg.Value)

	case tabs.FrameMsg, tabs.ResizeFrameMsg:
		var cmds []tea.Cmd
		for k, s := range m.sections {
			var cmd tea.Cmd
			m.sections[k], cmd = s.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case counterFrameMsg:
		if msg.gen != m.counterGen {
			return m, nil
		}
		settled := true
		for _, c := range m.counters {
			if !c.Step() {
				settled = false
			}
		}
		if settled {
			return m, nil
		}
		return m, m.counterTick(msg.gen)

	case typewriterFrameMsg:
		if m.search.Value() == "" && m.focus != focusSearch {
			m.typer.Step()
			m.search.Placeholder = m.placeholder()
		}
		return m, typewriterTick()

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.focus == focusSearch {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

// retargetCounters points the header counters at the snapshot's counts and
// starts a new count-up run, superseding any running one.
func (m *Model) retargetCounters() tea.Cmd {
	animate := false
	for _, k := range studio.Kinds {
		if m.counters[k].SetTarget(m.snap.Counts[k]) {
			animate = true
		}
	}
	if !animate {
		return nil
	}
	m.counterGen++
	return m.counterTick(m.counterGen)
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	m.listWidth = min(40, max(24, w/3))
	m.help.Width = w
	m.search.Width = min(40, max(10, w-20))
	for _, s := range m.sections {
		s.SetWidth(m.detailWidth())
		s.SetOrigin(m.listWidth+3, headerRows+1)
	}
	m.clampOffset()
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.focus {
	case focusSearch:
		return m.handleSearchKey(msg)
	case focusDetail:
		return m.handleDetailKey(msg)
	}
	return m.handleListKey(msg)
}

func (m *Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.clampOffset()
			return m, m.selectCurrent()
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.visible)-1 {
			m.cursor++
			m.clampOffset()
			return m, m.selectCurrent()
		}
	case key.Matches(msg, m.keys.NextKind):
		return m, m.setKind((m.kindIdx + 1) % len(studio.Kinds))
	case key.Matches(msg, m.keys.PrevKind):
		return m, m.setKind((m.kindIdx + len(studio.Kinds) - 1) % len(studio.Kinds))
	case key.Matches(msg, m.keys.Search):
		m.focus = focusSearch
		m.search.Placeholder = ""
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Open):
		if m.selectedID != "" {
			m.focus = focusDetail
		}
	case key.Matches(msg, m.keys.Back):
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.rebuildVisible()
			return m, m.selectCurrent()
		}
	case key.Matches(msg, m.keys.Reload):
		m.loading = true
		m.message = ""
		return m, tea.Batch(m.loadSnapshot(), m.spinner.Tick)
	}
	return m, nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.search.SetValue("")
		m.search.Blur()
		m.focus = focusList
		m.search.Placeholder = m.placeholder()
		m.rebuildVisible()
		return m, m.selectCurrent()
	case key.Matches(msg, m.keys.Open):
		m.search.Blur()
		m.focus = focusList
		m.search.Placeholder = m.placeholder()
		return m, nil
	}
	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		m.cursor, m.offset = 0, 0
		m.rebuildVisible()
		return m, tea.Batch(cmd, m.selectCurrent())
	}
	return m, cmd
}

func (m *Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.focus = focusList
		return m, nil
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	}
	return m, m.forwardToSection(msg)
}

func (m *Model) forwardToSection(msg tea.Msg) tea.Cmd {
	s, ok := m.sections[m.kind()]
	if !ok {
		return nil
	}
	var cmd tea.Cmd
	m.sections[m.kind()], cmd = s.Update(msg)
	return cmd
}

func (m *Model) setKind(i int) tea.Cmd {
	if i == m.kindIdx {
		return nil
	}
	m.kindIdx = i
	m.cursor, m.offset = 0, 0
	m.rebuildVisible()
	return m.selectCurrent()
}

func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.X >= m.listWidth+3 && msg.Y >= headerRows {
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m.focus = focusDetail
		}
		return m, m.forwardToSection(msg)
	}

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		return m.handleListKey(tea.KeyMsg{Type: tea.KeyUp})
	case msg.Button == tea.MouseButtonWheelDown:
		return m.handleListKey(tea.KeyMsg{Type: tea.KeyDown})
	case msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft:
		return m, nil
	}

	row := msg.Y - headerRows
	if row < 0 {
		return m, nil
	}
	m.focus = focusList
	m.search.Blur()
	if row < len(studio.Kinds) {
		return m, m.setKind(row)
	}
	idx := row - len(studio.Kinds) - 1 + m.offset
	if idx < m.offset || idx >= len(m.visible) {
		return m, nil
	}
	m.cursor = idx
	return m, m.selectCurrent()
}

func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteString("\n")
	b.WriteString(m.search.View())
	b.WriteString("\n")
	b.WriteString(m.st.header.Render(strings.Repeat("─", m.width)))
	b.WriteString("\n")

	bodyRows := max(1, m.height-headerRows-footerRows)
	left := m.viewList()
	right := m.viewDetail()
	for i := 0; i < bodyRows; i++ {
		var l, r string
		if i < len(left) {
			l = left[i]
		}
		if i < len(right) {
			r = right[i]
		}
		b.WriteString(padRight(l, m.listWidth))
		b.WriteString(m.st.header.Render(" │ "))
		b.WriteString(ansi.Truncate(r, m.detailWidth(), ""))
		b.WriteString("\n")
	}

	b.WriteString(m.viewStatus())
	b.WriteString("\n")
	m.help.ShowAll = m.showHelp
	b.WriteString(m.help.View(contextHelp{keys: m.keys, tabs: tabs.DefaultKeyMap(), focus: m.focus}))
	return b.String()
}

func (m *Model) viewHeader() string {
	parts := []string{m.st.title.Render("Agent Studio")}
	for _, k := range studio.Kinds {
		parts = append(parts, m.st.dim.Render(k.Title()+" ")+m.st.counter.Render(fmt.Sprintf("%d", m.counters[k].Value())))
	}
	line := strings.Join(parts, "  ")
	if m.loading {
		line += "  " + m.spinner.View()
	}
	return ansi.Truncate(line, m.width, "…")
}

func (m *Model) viewList() []string {
	var lines []string
	for i, k := range studio.Kinds {
		n := 0
		if m.snap != nil {
			n = len(m.snap.Lists[k])
		}
		label := fmt.Sprintf("%s (%d)", k.Title(), n)
		switch {
		case i == m.kindIdx && m.focus == focusList:
			lines = append(lines, m.st.selected.Render("▸ "+label))
		case i == m.kindIdx:
			lines = append(lines, m.st.focused.Render("▸ "+label))
		default:
			lines = append(lines, m.st.dim.Render("  "+label))
		}
	}
	lines = append(lines, "")

	if m.snap == nil {
		return append(lines, m.st.dim.Render("  Loading..."))
	}
	if len(m.visible) == 0 {
		if m.search.Value() != "" {
			return append(lines, m.st.dim.Render("  No matches."))
		}
		return append(lines, m.st.dim.Render("  Nothing here yet."))
	}
	end := min(len(m.visible), m.offset+m.listRows())
	for i := m.offset; i < end; i++ {
		it := m.visible[i]
		icon := m.st.statusStyle(it.Status).Render(statusIcon(it.Status))
		name := truncate(it.Name, m.listWidth-4)
		if i == m.cursor {
			name = m.st.selected.Render(name)
		} else {
			name = m.st.text.Render(name)
		}
		lines = append(lines, " "+icon+" "+name)
	}
	return lines
}

func (m *Model) viewDetail() []string {
	if m.selectedID == "" {
		return m.viewActivity()
	}
	s, ok := m.sections[m.kind()]
	if !ok {
		return []string{m.st.dim.Render("Loading...")}
	}
	title := m.st.title.Render(m.selectedName())
	if m.focus == focusDetail {
		title = m.st.focused.Render("▸ ") + title
	}
	if m.mounted[m.kind()] != m.selectedID {
		// The section still holds another entity's panes.
		return []string{title + " " + m.spinner.View(), m.st.dim.Render("Loading...")}
	}
	return append([]string{title}, strings.Split(s.View(), "\n")...)
}

func (m *Model) selectedName() string {
	for _, it := range m.visible {
		if it.ID == m.selectedID {
			return it.Name
		}
	}
	return m.selectedID
}

// viewActivity fills the detail panel when nothing is selected.
func (m *Model) viewActivity() []string {
	lines := []string{m.st.title.Render("Recent activity")}
	if m.snap == nil || len(m.snap.Activity) == 0 {
		return append(lines, m.st.dim.Render("No activity yet."))
	}
	env := m.env()
	return append(lines, strings.Split(env.history(m.snap.Activity), "\n")...)
}

func (m *Model) viewStatus() string {
	if m.message != "" {
		style := m.st.status
		if strings.Contains(m.message, "error") || strings.Contains(m.message, "failed") {
			style = m.st.err
		}
		return style.Render(m.message)
	}
	if m.snap == nil {
		return ""
	}
	attention := 0
	for _, e := range m.snap.Activity {
		if e.IsAttention() {
			attention++
		}
	}
	status := fmt.Sprintf("%d %s", len(m.visible), strings.ToLower(m.kind().Title()))
	if attention > 0 {
		return m.st.status.Render(status+"  ") + m.st.warn.Render(fmt.Sprintf("%d recent errors", attention))
	}
	return m.st.status.Render(status)
}

func truncate(s string, n int) string {
	if n <= 1 {
		return ""
	}
	return ansi.Truncate(s, n, "…")
}

func padRight(s string, width int) string {
	w := ansi.StringWidth(s)
	if w >= width {
		return ansi.Truncate(s, width, "")
	}
	return s + strings.Repeat(" ", width-w)
}
