package tabs

import (
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const (
	hiddenBelow = 0.15
	faintBelow  = 0.6
)

var faintStyle = lipgloss.NewStyle().Faint(true)

// shade renders one line at the given opacity. Faint text drops its own
// colors first so the faint attribute is not overridden by inner SGRs.
func shade(line string, opacity float64) string {
	switch {
	case opacity < hiddenBelow:
		return ""
	case opacity < faintBelow:
		plain := ansi.Strip(line)
		if plain == "" {
			return ""
		}
		return faintStyle.Render(plain)
	default:
		return line
	}
}

// padLine cuts or pads line to exactly width cells.
func padLine(line string, width int) string {
	w := ansi.StringWidth(line)
	switch {
	case w > width:
		return ansi.Truncate(line, width, "")
	case w < width:
		return line + strings.Repeat(" ", width-w)
	default:
		return line
	}
}

type placed struct {
	lines   []string
	start   int // viewport column of the layer's first cell
	opacity float64
}

// compose lays the mounted layers side by side inside a viewport of width
// cells. A single layer at rest is returned unchanged.
func compose(layers []Layer, width int) string {
	if len(layers) == 0 {
		return ""
	}
	if len(layers) == 1 && layers[0].Offset == 0 && layers[0].Opacity >= faintBelow {
		return layers[0].Pane.content()
	}
	if width <= 0 {
		// No viewport to slide in: show the incoming pane only.
		return layers[len(layers)-1].Pane.content()
	}

	ps := make([]placed, 0, len(layers))
	rows := 0
	for _, l := range layers {
		content := strings.TrimRight(l.Pane.content(), "\n")
		var lines []string
		if content != "" {
			lines = strings.Split(content, "\n")
		}
		if len(lines) > rows {
			rows = len(lines)
		}
		ps = append(ps, placed{
			lines:   lines,
			start:   int(math.Round(l.Offset * float64(width))),
			opacity: l.Opacity,
		})
	}
	sort.SliceStable(ps, func(i, j int) bool { return ps[i].start < ps[j].start })

	out := make([]string, rows)
	for r := 0; r < rows; r++ {
		var b strings.Builder
		col := 0
		for _, p := range ps {
			lo := max(p.start, 0)
			hi := min(p.start+width, width)
			if lo >= hi || lo < col {
				continue
			}
			if lo > col {
				b.WriteString(strings.Repeat(" ", lo-col))
			}
			var line string
			if r < len(p.lines) {
				line = p.lines[r]
			}
			seg := ansi.Cut(padLine(line, width), lo-p.start, hi-p.start)
			if shaded := shade(seg, p.opacity); shaded != "" {
				b.WriteString(shaded)
			} else {
				b.WriteString(strings.Repeat(" ", hi-lo))
			}
			col = hi
		}
		out[r] = strings.TrimRight(b.String(), " ")
	}
	return strings.Join(out, "\n")
}
