package dashboard

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestSparkline(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		width  int
		want   string
	}{
		{"empty", nil, 10, ""},
		{"zero width", []float64{1, 2}, 0, ""},
		{"flat", []float64{3, 3, 3}, 10, "▁▁▁"},
		{"ramp", []float64{0, 7}, 10, "▁█"},
		{"full range", []float64{0, 1, 2, 3, 4, 5, 6, 7}, 8, "▁▂▃▄▅▆▇█"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sparkline(tt.values, tt.width); got != tt.want {
				t.Errorf("sparkline() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSparkline_Resamples(t *testing.T) {
	values := make([]float64, 24)
	for i := range values {
		values[i] = float64(i)
	}
	got := sparkline(values, 6)
	if n := len([]rune(got)); n != 6 {
		t.Errorf("sparkline has %d cells, want 6", n)
	}
}

func TestMeter(t *testing.T) {
	got := meter(0.25, 10)
	if !strings.HasSuffix(got, " 25.0%") {
		t.Errorf("meter(0.25) = %q, want 25.0%% suffix", got)
	}
	if w := ansi.StringWidth(got); w != 10+len(" 25.0%") {
		t.Errorf("meter width = %d, want %d", w, 10+len(" 25.0%"))
	}
}

func TestMeter_ClampsPercentage(t *testing.T) {
	tests := []struct {
		fraction float64
		want     string
	}{
		{1.5, " 100.0%"},
		{-0.2, " 0.0%"},
	}
	for _, tt := range tests {
		got := meter(tt.fraction, 10)
		if !strings.HasSuffix(got, tt.want) {
			t.Errorf("meter(%v) = %q, want suffix %q", tt.fraction, got, tt.want)
		}
	}
}

func TestFormatCount(t *testing.T) {
	tests := map[int]string{
		0:       "0",
		999:     "999",
		1234:    "1.2k",
		45678:   "46k",
		2500000: "2.5M",
	}
	for n, want := range tests {
		if got := formatCount(n); got != want {
			t.Errorf("formatCount(%d) = %q, want %q", n, got, want)
		}
	}
}
