package tabs

import (
	"go.uber.org/zap"

	"github.com/timvw/agent-studio/internal/otel"
)

type options struct {
	id           string
	controlled   bool
	value        string
	defaultValue string
	onChange     func(string)
	base         DirectionBase
	timing       Timing
	reduced      bool
	width        int
	theme        Theme
	keys         KeyMap
	measure      Measurer
	log          *zap.Logger
	metrics      *otel.Metrics
}

func defaultOptions() options {
	return options{
		timing: DefaultTiming(),
		theme:  DefaultTheme(),
		keys:   DefaultKeyMap(),
		log:    zap.NewNop(),
	}
}

// Option configures a Section.
type Option func(*options)

// WithValue puts the section in controlled mode. The parent owns the
// active value and hands changes back with Section.SetValue.
func WithValue(value string) Option {
	return func(o *options) {
		o.controlled = true
		o.value = value
	}
}

// WithOnValueChange registers a callback fired on every valid selection.
func WithOnValueChange(fn func(value string)) Option {
	return func(o *options) { o.onChange = fn }
}

// WithDefaultValue sets the initial pane of an uncontrolled section.
func WithDefaultValue(value string) Option {
	return func(o *options) { o.defaultValue = value }
}

// WithDirectionBase selects how slide directions are computed.
func WithDirectionBase(b DirectionBase) Option {
	return func(o *options) { o.base = b }
}

// WithTiming overrides the slide and fade durations.
func WithTiming(t Timing) Option {
	return func(o *options) { o.timing = t }
}

// WithReducedMotion turns every transition into an instant swap.
func WithReducedMotion(reduced bool) Option {
	return func(o *options) { o.reduced = reduced }
}

// WithWidth sets the viewport width in cells.
func WithWidth(width int) Option {
	return func(o *options) { o.width = width }
}

// WithTheme sets the label strip colors.
func WithTheme(t Theme) Option {
	return func(o *options) { o.theme = t }
}

// WithKeyMap overrides the key bindings.
func WithKeyMap(k KeyMap) Option {
	return func(o *options) { o.keys = k }
}

// WithMeasurer overrides how content height is measured.
func WithMeasurer(m Measurer) Option {
	return func(o *options) { o.measure = m }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithMetrics records selections, transitions and resizes.
func WithMetrics(m *otel.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithID fixes the section id. Defaults to a random UUID.
func WithID(id string) Option {
	return func(o *options) { o.id = id }
}
