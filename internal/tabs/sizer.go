package tabs

import (
	"math"
	"strings"

	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
)

// Measurer returns the natural height of rendered content in rows. ok is
// false when no measurement is possible; the container then fails open
// and renders at natural height.
type Measurer func(content string) (rows int, ok bool)

// LipglossMeasurer measures rows with lipgloss. Empty content is 0 rows.
func LipglossMeasurer(content string) (int, bool) {
	if content == "" {
		return 0, true
	}
	return lipgloss.Height(strings.TrimRight(content, "\n")), true
}

// Observation is the sizer's subscription to one mounted pane. At most one
// observation is attached at a time; attaching a new one detaches the old.
type Observation struct {
	sizer  *Sizer
	gen    uint64
	paneID string
}

// PaneID returns the observed pane.
func (o *Observation) PaneID() string { return o.paneID }

// Generation returns the generation stamped on this observation's frames.
func (o *Observation) Generation() uint64 { return o.gen }

// Detach releases the observation. Detaching twice is a no-op.
func (o *Observation) Detach() {
	if o == nil || o.sizer == nil {
		return
	}
	s := o.sizer
	o.sizer = nil
	if s.current == o {
		s.current = nil
		s.gen++
	}
}

// Attached reports whether the observation is still the sizer's current one.
func (o *Observation) Attached() bool {
	return o != nil && o.sizer != nil && o.sizer.current == o
}

// Sizer is the auto-sizing container: it keeps the container height equal
// to the observed content height, moving toward it on a spring.
type Sizer struct {
	measure Measurer
	timing  Timing
	reduced bool
	spring  harmonica.Spring

	current *Observation
	gen     uint64
	loopGen uint64 // generation whose frame loop is running; 0 = none

	measured bool
	observed int
	height   float64
	vel      float64
	elapsed  float64 // seconds since the current target was set
}

// NewSizer returns a sizer using measure, or LipglossMeasurer when nil.
func NewSizer(measure Measurer, t Timing, reduced bool) *Sizer {
	if measure == nil {
		measure = LipglossMeasurer
	}
	t = t.normalized()
	return &Sizer{
		measure: measure,
		timing:  t,
		reduced: reduced,
		spring:  springFor(t.FPS, t.SlideDuration),
		gen:     1,
	}
}

// Observe attaches a new observation for paneID, detaching the previous one.
func (s *Sizer) Observe(paneID string) *Observation {
	if s.current != nil {
		s.current.Detach()
	}
	s.gen++
	o := &Observation{sizer: s, gen: s.gen, paneID: paneID}
	s.current = o
	return o
}

// Current returns the attached observation, or nil.
func (s *Sizer) Current() *Observation { return s.current }

// ActiveObservers is 1 while an observation is attached, else 0.
func (s *Sizer) ActiveObservers() int {
	if s.current == nil {
		return 0
	}
	return 1
}

// Generation returns the generation of the attached observation. Frames
// stamped with any other generation are stale.
func (s *Sizer) Generation() uint64 { return s.gen }

// Measure feeds the observed pane's rendered content. It returns true when
// the caller must start a frame loop for the current generation.
func (s *Sizer) Measure(content string) bool {
	if s.current == nil {
		return false
	}
	rows, ok := s.measure(content)
	if !ok || rows < 0 {
		s.measured = false
		return false
	}

	if !s.measured {
		// First measurement snaps; there is nothing to animate from.
		s.measured = true
		s.observed = rows
		s.height, s.vel = float64(rows), 0
		return false
	}

	if rows != s.observed {
		s.observed = rows
		s.elapsed = 0
		if s.reduced {
			s.height, s.vel = float64(rows), 0
		}
	}

	if s.animating() && s.loopGen != s.gen {
		s.loopGen = s.gen
		return true
	}
	return false
}

func (s *Sizer) animating() bool {
	return s.measured && math.Abs(s.height-float64(s.observed)) > 0.01
}

// Step advances the height animation by one frame and reports whether it
// settled. A settled sizer ends its frame loop.
func (s *Sizer) Step() bool {
	if !s.animating() {
		s.loopGen = 0
		return true
	}
	target := float64(s.observed)
	s.elapsed += s.timing.Frame().Seconds()
	s.height, s.vel = s.spring.Update(s.height, s.vel, target)
	if s.elapsed >= s.timing.SlideDuration.Seconds() || math.Abs(s.height-target) < 0.05 {
		s.height, s.vel = target, 0
	}
	if !s.animating() {
		s.loopGen = 0
		return true
	}
	return false
}

// Height returns the container height in rows. ok is false when the
// container fails open and should render at natural height.
func (s *Sizer) Height() (rows int, ok bool) {
	if !s.measured {
		return 0, false
	}
	return int(math.Round(s.height)), true
}

// Observed returns the last measured content height.
func (s *Sizer) Observed() (rows int, ok bool) {
	return s.observed, s.measured
}

// forget drops the last measurement so the next one snaps.
func (s *Sizer) forget() {
	s.measured = false
	s.loopGen = 0
	s.height, s.vel = 0, 0
}

// Close detaches the current observation.
func (s *Sizer) Close() {
	if s.current != nil {
		s.current.Detach()
	}
	s.loopGen = 0
}

// fit clips or pads content to exactly rows lines.
func fit(content string, rows int) string {
	if rows <= 0 {
		return ""
	}
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	if content == "" {
		lines = nil
	}
	if len(lines) > rows {
		lines = lines[:rows]
	}
	for len(lines) < rows {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
