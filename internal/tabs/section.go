package tabs

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/timvw/agent-studio/internal/otel"
)

// FrameMsg advances a pane transition by one frame.
type FrameMsg struct {
	SectionID string
	Episode   uint64
}

// ResizeFrameMsg advances a container height animation by one frame.
type ResizeFrameMsg struct {
	SectionID  string
	Generation uint64
}

// ValueChangedMsg is emitted on every valid selection, in both modes.
// Controlled parents answer it with SetValue.
type ValueChangedMsg struct {
	SectionID string
	Value     string
	Direction Direction
}

// NoMeasure is a Measurer that never measures. Sections using it render at
// natural height.
func NoMeasure(string) (int, bool) { return 0, false }

// Section is an embeddable Bubble Tea component: a label strip above an
// animated, auto-sized pane viewport.
type Section struct {
	id      string
	reg     *Registry
	ctrl    *Controller
	engine  *Engine
	sizer   *Sizer
	strip   *LabelStrip
	keys    KeyMap
	log     *zap.Logger
	metrics *otel.Metrics

	width            int
	originX, originY int
	closed           bool
}

// New builds a section over panes.
func New(panes []Pane, opts ...Option) (*Section, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	reg, err := NewRegistry(panes...)
	if err != nil {
		return nil, err
	}
	if o.id == "" {
		o.id = uuid.NewString()
	}

	copts := []ControllerOption{
		WithControllerDirectionBase(o.base),
		WithControllerLogger(o.log),
	}
	if o.controlled {
		copts = append(copts, Controlled(o.value, o.onChange))
	} else {
		copts = append(copts, Uncontrolled(o.defaultValue), OnChange(o.onChange))
	}

	s := &Section{
		id:      o.id,
		reg:     reg,
		ctrl:    NewController(reg, copts...),
		engine:  NewEngine(o.timing, o.reduced),
		sizer:   NewSizer(o.measure, o.timing, o.reduced),
		strip:   NewLabelStrip(o.theme),
		keys:    o.keys,
		log:     o.log.With(zap.String("section", o.id)),
		metrics: o.metrics,
		width:   o.width,
	}
	s.mount()
	return s, nil
}

// mount resets the engine and the sizer observation onto the active pane.
// The container snaps to the pane's height.
func (s *Section) mount() {
	in, ok := s.reg.Get(s.ctrl.Active())
	s.engine.Reset(in)
	s.sizer.forget()
	if !ok {
		s.sizer.Close()
		return
	}
	s.sizer.Observe(in.ID)
	s.sizer.Measure(in.content())
}

// ID returns the section id carried by its messages.
func (s *Section) ID() string { return s.id }

// Active returns the displayed pane value.
func (s *Section) Active() string { return s.ctrl.Active() }

// Direction returns the direction of the last selection or value change.
func (s *Section) Direction() Direction { return s.ctrl.Direction() }

// Transitioning reports whether a pane switch is animating.
func (s *Section) Transitioning() bool { return s.engine.Phase() == Transitioning }

// Mounted returns the values of the panes currently rendered.
func (s *Section) Mounted() []string { return s.engine.Mounted() }

// Height returns the container height in rows. ok is false when the
// container renders at natural height.
func (s *Section) Height() (int, bool) { return s.sizer.Height() }

// Observers returns the number of attached size observations (0 or 1).
func (s *Section) Observers() int { return s.sizer.ActiveObservers() }

// Registry returns the current pane registry.
func (s *Section) Registry() *Registry { return s.reg }

// KeyMap returns the section's key bindings, for help rendering.
func (s *Section) KeyMap() KeyMap { return s.keys }

// SetWidth sets the viewport width in cells.
func (s *Section) SetWidth(w int) { s.width = w }

// SetOrigin records where the section's top-left cell is drawn so mouse
// presses on the label row can be mapped to panes.
func (s *Section) SetOrigin(x, y int) {
	s.originX, s.originY = x, y
}

// Init returns no command; frames are scheduled by selections.
func (s *Section) Init() tea.Cmd { return nil }

// Select requests value as the active pane. Unknown values are ignored.
func (s *Section) Select(value string) tea.Cmd {
	if s.closed {
		return nil
	}
	if !s.reg.Contains(value) {
		s.ctrl.Select(value)
		return nil
	}
	from := s.ctrl.Active()
	s.ctrl.Select(value)
	dir := s.ctrl.Direction()
	s.metrics.RecordSelection(context.Background(), dir.String())
	s.log.Debug("tab selected",
		zap.String("value", value),
		zap.Stringer("direction", dir),
		zap.Bool("controlled", s.ctrl.IsControlled()))

	id := s.id
	cmds := []tea.Cmd{func() tea.Msg {
		return ValueChangedMsg{SectionID: id, Value: value, Direction: dir}
	}}
	if s.ctrl.Active() != from {
		cmds = append(cmds, s.switchFrom(from))
	}
	return tea.Batch(cmds...)
}

// SetValue hands a parent-owned value to the section. Unknown values
// resolve to the first pane.
func (s *Section) SetValue(value string) tea.Cmd {
	if s.closed {
		return nil
	}
	from := s.ctrl.Active()
	if !s.ctrl.SetValue(value) {
		return nil
	}
	return s.switchFrom(from)
}

// SetPanes substitutes the whole registry. The active pane is kept when it
// survives and the container animates to its new content height. Otherwise
// the first pane is shown without a transition and the container snaps.
func (s *Section) SetPanes(panes []Pane) (tea.Cmd, error) {
	reg, err := NewRegistry(panes...)
	if err != nil {
		return nil, err
	}
	prev := s.ctrl.Active()
	s.reg = reg
	s.ctrl.SetRegistry(reg)

	in, ok := reg.Get(s.ctrl.Active())
	if !ok || in.Value != prev {
		s.mount()
		return nil, nil
	}
	s.engine.Reset(in)
	s.sizer.Observe(in.ID)
	return s.measure(), nil
}

// Close releases the size observation and stops all animation.
func (s *Section) Close() {
	s.closed = true
	s.sizer.Close()
	in, _ := s.reg.Get(s.ctrl.Active())
	s.engine.Reset(in)
}

func (s *Section) switchFrom(from string) tea.Cmd {
	out, _ := s.reg.Get(from)
	in, _ := s.reg.Get(s.ctrl.Active())

	superseded := s.engine.Phase() == Transitioning
	var cmds []tea.Cmd
	if s.engine.Start(out, in, s.ctrl.Direction()) {
		s.metrics.RecordTransition(context.Background(), superseded)
		cmds = append(cmds, s.frame(s.engine.Episode()))
	}
	s.sizer.Observe(in.ID)
	if cmd := s.measure(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// measure feeds the active pane's content to the sizer and starts a
// resize loop when the height changed.
func (s *Section) measure() tea.Cmd {
	p, ok := s.reg.Get(s.ctrl.Active())
	if !ok || s.closed {
		return nil
	}
	if !s.sizer.Measure(p.content()) {
		return nil
	}
	s.metrics.RecordResize(context.Background())
	return s.resizeFrame(s.sizer.Generation())
}

func (s *Section) frame(episode uint64) tea.Cmd {
	id := s.id
	return tea.Tick(s.engine.Timing().Frame(), func(time.Time) tea.Msg {
		return FrameMsg{SectionID: id, Episode: episode}
	})
}

func (s *Section) resizeFrame(gen uint64) tea.Cmd {
	id := s.id
	return tea.Tick(s.engine.Timing().Frame(), func(time.Time) tea.Msg {
		return ResizeFrameMsg{SectionID: id, Generation: gen}
	})
}

// Update handles frame, key and mouse messages. Parents forward key and mouse messages only
// while the section has focus; frame messages must always be forwarded.
func (s *Section) Update(msg tea.Msg) (*Section, tea.Cmd) {
	if s.closed {
		return s, nil
	}
	switch msg := msg.(type) {
	case FrameMsg:
		if msg.SectionID != s.id || msg.Episode != s.engine.Episode() {
			return s, nil
		}
		if s.engine.Step() {
			return s, s.measure()
		}
		return s, s.frame(msg.Episode)

	case ResizeFrameMsg:
		if msg.SectionID != s.id || msg.Generation != s.sizer.Generation() {
			return s, nil
		}
		if s.sizer.Step() {
			return s, nil
		}
		return s, s.resizeFrame(msg.Generation)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keys.Next):
			return s, s.step(1)
		case key.Matches(msg, s.keys.Prev):
			return s, s.step(-1)
		case key.Matches(msg, s.keys.Jump):
			if s.reg.Len() < 2 {
				return s, nil
			}
			if p, ok := s.reg.At(int(msg.String()[0] - '1')); ok {
				return s, s.Select(p.Value)
			}
			return s, nil
		}

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && msg.Y == s.originY {
			if v, ok := s.strip.HitTest(msg.X - s.originX); ok {
				return s, s.Select(v)
			}
		}
		return s, nil
	}
	return s, s.measure()
}

// step selects the neighbour delta positions away, wrapping around.
// A single pane has no neighbour to select.
func (s *Section) step(delta int) tea.Cmd {
	n := s.reg.Len()
	if n < 2 {
		return nil
	}
	i := s.reg.IndexOf(s.ctrl.Active())
	next := ((i+delta)%n + n) % n
	p, _ := s.reg.At(next)
	return s.Select(p.Value)
}

// View renders the label strip and, below it, the sized viewport.
func (s *Section) View() string {
	if s.reg.Len() == 0 {
		return ""
	}
	strip := s.strip.Render(s.reg.Panes(), s.ctrl.Active(), s.width)
	body := compose(s.engine.Layers(), s.width)
	if h, ok := s.sizer.Height(); ok {
		body = fit(body, h)
	}
	if body == "" {
		return strip
	}
	return strip + "\n" + body
}

// Rows returns the number of rows View occupies.
func (s *Section) Rows() int {
	if s.reg.Len() == 0 {
		return 0
	}
	if h, ok := s.sizer.Height(); ok {
		return stripRows + h
	}
	p, _ := s.reg.Get(s.ctrl.Active())
	rows, _ := LipglossMeasurer(p.content())
	return stripRows + rows
}
