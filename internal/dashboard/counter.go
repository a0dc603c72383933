package dashboard

import (
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
)

// Counter animates a number from its previous value to a new target on a
// critically damped spring. The header uses one per entity kind.
type Counter struct {
	spring   harmonica.Spring
	duration time.Duration
	frame    time.Duration
	reduced  bool

	target  float64
	pos     float64
	vel     float64
	elapsed time.Duration
}

// NewCounter returns a counter at zero that settles within d.
func NewCounter(fps int, d time.Duration, reduced bool) *Counter {
	if fps <= 0 {
		fps = 60
	}
	if d <= 0 {
		d = 600 * time.Millisecond
	}
	return &Counter{
		spring:   harmonica.NewSpring(harmonica.FPS(fps), 6.0/d.Seconds(), 1.0),
		duration: d,
		frame:    time.Second / time.Duration(fps),
		reduced:  reduced,
	}
}

// SetTarget points the counter at n and reports whether it has to animate.
func (c *Counter) SetTarget(n int) bool {
	c.target = float64(n)
	c.elapsed = 0
	if c.reduced {
		c.pos, c.vel = c.target, 0
	}
	return c.Animating()
}

// Animating reports whether the displayed value differs from the target.
func (c *Counter) Animating() bool {
	return math.Abs(c.pos-c.target) > 0.01
}

// Step advances one frame and reports whether the counter settled.
func (c *Counter) Step() bool {
	if !c.Animating() {
		return true
	}
	c.elapsed += c.frame
	c.pos, c.vel = c.spring.Update(c.pos, c.vel, c.target)
	if c.elapsed >= c.duration || math.Abs(c.pos-c.target) < 0.5 {
		c.pos, c.vel = c.target, 0
	}
	return !c.Animating()
}

// Value returns the displayed integer.
func (c *Counter) Value() int {
	return int(math.Round(c.pos))
}
