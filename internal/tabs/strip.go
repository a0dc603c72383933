package tabs

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Theme holds the colors a section draws with.
type Theme struct {
	Active   lipgloss.Color // active label text
	ActiveBg lipgloss.Color // active label background
	Inactive lipgloss.Color // other labels
	Border   lipgloss.Color // separator and underline
}

// DefaultTheme matches the dashboard's dark palette.
func DefaultTheme() Theme {
	return Theme{
		Active:   lipgloss.Color("#eeeeee"),
		ActiveBg: lipgloss.Color("#9d7cd8"),
		Inactive: lipgloss.Color("#808080"),
		Border:   lipgloss.Color("#484848"),
	}
}

// styles holds the lipgloss styles derived from a Theme.
type styles struct {
	active    lipgloss.Style
	inactive  lipgloss.Style
	separator lipgloss.Style
	rule      lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		active:    lipgloss.NewStyle().Bold(true).Foreground(t.Active).Background(t.ActiveBg).Padding(0, 1),
		inactive:  lipgloss.NewStyle().Foreground(t.Inactive).Padding(0, 1),
		separator: lipgloss.NewStyle().Foreground(t.Border),
		rule:      lipgloss.NewStyle().Foreground(t.Border),
	}
}

const stripSeparator = "│"

// LabelBounds is the column span of one rendered label.
type LabelBounds struct {
	Value string
	X, W  int
}

// LabelStrip renders one label per pane and remembers where each label
// landed so mouse presses can be mapped back to a pane.
type LabelStrip struct {
	styles styles
	bounds []LabelBounds
}

// NewLabelStrip returns a strip drawn with t.
func NewLabelStrip(t Theme) *LabelStrip {
	return &LabelStrip{styles: newStyles(t)}
}

// Render draws panes in order with active highlighted, followed by a rule
// line of width cells. Labels past width are dropped.
func (s *LabelStrip) Render(panes []Pane, active string, width int) string {
	s.bounds = s.bounds[:0]
	if len(panes) == 0 {
		return ""
	}

	var b strings.Builder
	x := 0
	sep := s.styles.separator.Render(stripSeparator)
	sepW := ansi.StringWidth(stripSeparator)
	for i, p := range panes {
		style := s.styles.inactive
		if p.Value == active {
			style = s.styles.active
		}
		label := style.Render(p.Label)
		w := ansi.StringWidth(label)
		if i > 0 {
			if width > 0 && x+sepW+w > width {
				break
			}
			b.WriteString(sep)
			x += sepW
		} else if width > 0 && w > width {
			label = ansi.Truncate(label, width, "…")
			w = ansi.StringWidth(label)
		}
		s.bounds = append(s.bounds, LabelBounds{Value: p.Value, X: x, W: w})
		b.WriteString(label)
		x += w
	}

	ruleW := width
	if ruleW <= 0 {
		ruleW = x
	}
	return b.String() + "\n" + s.styles.rule.Render(strings.Repeat("─", ruleW))
}

// Bounds returns the label spans of the last Render.
func (s *LabelStrip) Bounds() []LabelBounds {
	return append([]LabelBounds(nil), s.bounds...)
}

// HitTest maps a column of the label row to a pane value.
func (s *LabelStrip) HitTest(x int) (string, bool) {
	for _, b := range s.bounds {
		if x >= b.X && x < b.X+b.W {
			return b.Value, true
		}
	}
	return "", false
}

// stripRows is the number of rows the strip occupies: labels and rule.
const stripRows = 2
