package dashboard

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/timvw/agent-studio/internal/studio"
)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// sparkline draws values as a row of block characters, resampled to width.
func sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}
	values = resample(values, width)
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	var b strings.Builder
	for _, v := range values {
		i := 0
		if hi > lo {
			i = int(math.Round((v - lo) / (hi - lo) * float64(len(sparkBlocks)-1)))
		}
		b.WriteRune(sparkBlocks[i])
	}
	return b.String()
}

// resample picks width evenly spaced values. Shorter inputs are returned
// unchanged.
func resample(values []float64, width int) []float64 {
	if len(values) <= width {
		return values
	}
	out := make([]float64, width)
	for i := range out {
		out[i] = values[i*len(values)/width]
	}
	return out
}

// seriesColumns extracts the charted columns of a series.
func seriesColumns(s studio.Series) (requests, errors, latency []float64) {
	for _, p := range s.Points {
		requests = append(requests, float64(p.Requests))
		errors = append(errors, float64(p.Errors))
		latency = append(latency, p.LatencyMs)
	}
	return
}

// meter renders fraction (0..1) as a fixed width bar followed by a
// percentage.
func meter(fraction float64, width int) string {
	if width < 4 {
		width = 4
	}
	bar := progress.New(progress.WithSolidFill("#5c9cf5"), progress.WithoutPercentage(), progress.WithWidth(width))
	fraction = clamp01(fraction)
	return fmt.Sprintf("%s %.1f%%", bar.ViewAs(fraction), fraction*100)
}

func clamp01(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}

// formatCount formats a count for display (e.g., "12.3k").
func formatCount(n int) string {
	switch {
	case n < 1000:
		return fmt.Sprintf("%d", n)
	case n < 10000:
		return fmt.Sprintf("%.1fk", float64(n)/1000)
	case n < 1000000:
		return fmt.Sprintf("%.0fk", float64(n)/1000)
	default:
		return fmt.Sprintf("%.1fM", float64(n)/1000000)
	}
}
