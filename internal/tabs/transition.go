package tabs

import (
	"time"

	"github.com/charmbracelet/harmonica"
)

// Phase is the state of the transition engine.
type Phase int

const (
	// Idle means exactly one pane is mounted and nothing moves.
	Idle Phase = iota
	// Transitioning means an outgoing and an incoming pane are mounted.
	Transitioning
)

func (p Phase) String() string {
	if p == Transitioning {
		return "transitioning"
	}
	return "idle"
}

// Layer is one mounted pane with its current placement. Offset is in
// viewport widths: 0 is fully in place, -1 is one width toward the start
// edge, +1 one width toward the end edge.
type Layer struct {
	Pane    Pane
	Offset  float64
	Opacity float64
}

// Engine animates pane switches. Only one episode runs at a time; starting
// a new one supersedes the running one.
type Engine struct {
	timing  Timing
	reduced bool

	posSpring  harmonica.Spring
	fadeSpring harmonica.Spring

	phase   Phase
	episode uint64
	dir     Direction
	out     Pane
	in      Pane

	pos, posVel   float64 // 0 -> 1
	fade, fadeVel float64 // 0 -> 1
	elapsed       time.Duration
}

// NewEngine returns an idle engine. With reduced set, every switch is
// instantaneous.
func NewEngine(t Timing, reduced bool) *Engine {
	t = t.normalized()
	return &Engine{
		timing:     t,
		reduced:    reduced,
		posSpring:  springFor(t.FPS, t.SlideDuration),
		fadeSpring: springFor(t.FPS, t.FadeDuration),
	}
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase { return e.phase }

// Episode returns the id of the latest episode. Frames carrying another
// id are stale.
func (e *Engine) Episode() uint64 { return e.episode }

// Direction returns the direction of the running or last episode.
func (e *Engine) Direction() Direction { return e.dir }

// Timing returns the normalized timing.
func (e *Engine) Timing() Timing { return e.timing }

// Start begins an episode switching from out to in. It returns true when
// frames must be scheduled. A None direction, or reduced motion, replaces
// the content at once and leaves the engine idle.
//
// When an episode is already running, its outgoing pane is dropped and the
// pane that was entering becomes the outgoing one.
func (e *Engine) Start(out, in Pane, dir Direction) bool {
	e.episode++
	superseded := e.phase == Transitioning
	if superseded {
		out = e.in
	}

	e.in = in
	e.dir = dir
	if dir == None || e.reduced || out.Value == in.Value {
		e.finish()
		return false
	}

	e.out = out
	e.phase = Transitioning
	e.pos, e.posVel = 0, 0
	e.fade, e.fadeVel = 0, 0
	e.elapsed = 0
	return true
}

// Step advances the running episode by one frame and reports whether it
// is finished.
func (e *Engine) Step() bool {
	if e.phase != Transitioning {
		return true
	}
	e.elapsed += e.timing.Frame()
	e.pos, e.posVel = e.posSpring.Update(e.pos, e.posVel, 1)
	e.fade, e.fadeVel = e.fadeSpring.Update(e.fade, e.fadeVel, 1)

	if e.elapsed >= e.timing.FadeDuration {
		e.fade, e.fadeVel = 1, 0
	}
	if e.elapsed >= e.timing.SlideDuration {
		e.pos, e.posVel = 1, 0
	}
	if e.pos >= 1 && e.fade >= 1 {
		e.finish()
		return true
	}
	return false
}

// Reset drops any running episode and mounts in.
func (e *Engine) Reset(in Pane) {
	e.episode++
	e.in = in
	e.dir = None
	e.finish()
}

func (e *Engine) finish() {
	e.phase = Idle
	e.out = Pane{}
	e.pos, e.posVel = 1, 0
	e.fade, e.fadeVel = 1, 0
}

// Layers returns the mounted panes, outgoing first. At steady state it
// returns only the incoming pane.
//
// Forward: the outgoing pane travels toward the start edge (offset 0..-1)
// and the incoming pane enters from the end edge (offset +1..0).
// Backward is the mirror image.
func (e *Engine) Layers() []Layer {
	if e.phase != Transitioning {
		if e.in.Value == "" {
			return nil
		}
		return []Layer{{Pane: e.in, Offset: 0, Opacity: 1}}
	}
	s := e.dir.sign()
	return []Layer{
		{Pane: e.out, Offset: -s * e.pos, Opacity: clamp01(1 - e.fade)},
		{Pane: e.in, Offset: s * (1 - e.pos), Opacity: clamp01(e.fade)},
	}
}

// Mounted returns the values of the mounted panes.
func (e *Engine) Mounted() []string {
	layers := e.Layers()
	out := make([]string, 0, len(layers))
	for _, l := range layers {
		out = append(out, l.Pane.Value)
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
