package tabs

import (
	"time"

	"github.com/charmbracelet/harmonica"
)

const (
	// DefaultSlideDuration is the positional component of a pane switch.
	DefaultSlideDuration = 300 * time.Millisecond
	// DefaultFadeDuration is the opacity component of a pane switch.
	DefaultFadeDuration = 200 * time.Millisecond
	// DefaultFPS is the frame rate of transition and resize ticks.
	DefaultFPS = 60

	// settle is ω·t for a critically damped spring: after this many time
	// constants the remaining distance is below 2%, and we snap.
	settle = 6.0
)

// Timing holds the animation durations of a section.
type Timing struct {
	SlideDuration time.Duration
	FadeDuration  time.Duration
	FPS           int
}

// DefaultTiming returns the stock 300ms slide / 200ms fade at 60 fps.
func DefaultTiming() Timing {
	return Timing{
		SlideDuration: DefaultSlideDuration,
		FadeDuration:  DefaultFadeDuration,
		FPS:           DefaultFPS,
	}
}

// normalized fills zero fields with defaults and keeps the fade no longer
// than the slide.
func (t Timing) normalized() Timing {
	if t.SlideDuration <= 0 {
		t.SlideDuration = DefaultSlideDuration
	}
	if t.FadeDuration <= 0 {
		t.FadeDuration = DefaultFadeDuration
	}
	if t.FadeDuration > t.SlideDuration {
		t.FadeDuration = t.SlideDuration
	}
	if t.FPS <= 0 {
		t.FPS = DefaultFPS
	}
	return t
}

// Frame is the interval between two animation ticks.
func (t Timing) Frame() time.Duration {
	t = t.normalized()
	return time.Second / time.Duration(t.FPS)
}

// springFor returns a critically damped spring that settles within d.
func springFor(fps int, d time.Duration) harmonica.Spring {
	return harmonica.NewSpring(harmonica.FPS(fps), settle/d.Seconds(), 1.0)
}
