package tabs

import "go.uber.org/zap"

// Controller is the single source of truth for which pane is active.
//
// In uncontrolled mode it owns the active value. In controlled mode the
// parent owns it: Select only computes the direction and notifies the
// parent, and the displayed value changes when the parent calls SetValue.
type Controller struct {
	reg        *Registry
	controlled bool
	base       DirectionBase
	onChange   func(value string)
	log        *zap.Logger

	active    string // displayed value
	reference string // last selected value; reference for BaseLastSelected
	direction Direction
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// Controlled puts the controller in controlled mode with the parent's
// current value and change callback.
func Controlled(value string, onChange func(string)) ControllerOption {
	return func(c *Controller) {
		c.controlled = true
		c.active = value
		c.onChange = onChange
	}
}

// Uncontrolled sets the initial value of an uncontrolled controller.
// An empty value means the first pane.
func Uncontrolled(defaultValue string) ControllerOption {
	return func(c *Controller) {
		c.controlled = false
		c.active = defaultValue
	}
}

// OnChange sets the change callback. It fires on every valid Select in
// both modes.
func OnChange(fn func(string)) ControllerOption {
	return func(c *Controller) { c.onChange = fn }
}

// WithControllerDirectionBase selects how directions are computed.
func WithControllerDirectionBase(b DirectionBase) ControllerOption {
	return func(c *Controller) { c.base = b }
}

// WithControllerLogger sets the logger used for invalid selections.
func WithControllerLogger(l *zap.Logger) ControllerOption {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// NewController builds a controller over reg.
func NewController(reg *Registry, opts ...ControllerOption) *Controller {
	c := &Controller{reg: reg, log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	c.active = c.resolve(c.active)
	c.reference = c.active
	return c
}

// resolve applies the tolerant current-pane rule.
func (c *Controller) resolve(value string) string {
	p, ok := c.reg.Resolve(value)
	if !ok {
		return ""
	}
	return p.Value
}

// Active returns the displayed value ("" for an empty registry).
func (c *Controller) Active() string { return c.active }

// Previous returns the reference value of the next direction computation
// under BaseLastSelected: the last selected value.
func (c *Controller) Previous() string { return c.reference }

// Direction returns the direction computed by the last Select or SetValue.
func (c *Controller) Direction() Direction { return c.direction }

// IsControlled reports whether the parent owns the active value.
func (c *Controller) IsControlled() bool { return c.controlled }

// Registry returns the current registry.
func (c *Controller) Registry() *Registry { return c.reg }

// Select requests value as the active pane. Unknown values are ignored.
func (c *Controller) Select(value string) {
	if !c.reg.Contains(value) {
		c.log.Warn("ignoring selection of unknown pane",
			zap.String("value", value),
			zap.Strings("registered", c.reg.Values()))
		return
	}

	from := c.active
	if c.base == BaseLastSelected {
		from = c.reference
	}
	c.direction = DirectionBetween(c.reg, from, value)
	c.reference = value

	if !c.controlled {
		c.active = value
	}
	if c.onChange != nil {
		c.onChange(value)
	}
}

// SetValue applies a value handed down by a controlled parent, either an
// echo of a Select or an out-of-band change. It reports whether the
// displayed value changed. Uncontrolled controllers accept it as a
// programmatic selection without firing the callback.
func (c *Controller) SetValue(value string) bool {
	next := c.resolve(value)
	if next == c.active {
		return false
	}
	if c.base == BaseDisplayed || !c.controlled {
		c.direction = DirectionBetween(c.reg, c.active, next)
	}
	if !c.controlled {
		c.reference = next
	}
	c.active = next
	return true
}

// SetRegistry substitutes the registry. An active value missing from the
// new registry falls back to the first pane with no direction.
func (c *Controller) SetRegistry(reg *Registry) {
	c.reg = reg
	if !reg.Contains(c.active) {
		c.active = c.resolve(c.active)
		c.direction = None
	}
	if !reg.Contains(c.reference) {
		c.reference = c.active
	}
}
