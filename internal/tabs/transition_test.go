package tabs

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func fastTiming() Timing {
	return Timing{SlideDuration: 30 * time.Millisecond, FadeDuration: 20 * time.Millisecond, FPS: 1000}
}

func runToIdle(t *testing.T, e *Engine) int {
	t.Helper()
	for frames := 1; frames <= 1000; frames++ {
		if e.Step() {
			return frames
		}
	}
	t.Fatal("engine never settled")
	return 0
}

func TestTiming_Normalized(t *testing.T) {
	tests := []struct {
		name string
		in   Timing
		want Timing
	}{
		{"zero", Timing{}, DefaultTiming()},
		{"fade clamped to slide", Timing{SlideDuration: 100 * time.Millisecond, FadeDuration: time.Second, FPS: 30},
			Timing{SlideDuration: 100 * time.Millisecond, FadeDuration: 100 * time.Millisecond, FPS: 30}},
		{"kept", fastTiming(), fastTiming()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.normalized(); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
	if got := (Timing{FPS: 50}).Frame(); got != 20*time.Millisecond {
		t.Errorf("Frame at 50fps: got %v, want 20ms", got)
	}
}

func TestEngine_NoneReplacesImmediately(t *testing.T) {
	e := NewEngine(fastTiming(), false)
	e.Reset(Pane{Value: "a"})
	if e.Start(Pane{Value: "a"}, Pane{Value: "b"}, None) {
		t.Error("Start with None requested frames")
	}
	if e.Phase() != Idle {
		t.Errorf("phase: got %v, want idle", e.Phase())
	}
	if diff := cmp.Diff([]string{"b"}, e.Mounted()); diff != "" {
		t.Errorf("mounted mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_ForwardAndBackwardMotion(t *testing.T) {
	tests := []struct {
		dir        Direction
		outSign    float64 // sign of the outgoing offset while moving
		inStartSgn float64 // sign of the incoming offset at start
	}{
		{Forward, -1, 1},
		{Backward, 1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.dir.String(), func(t *testing.T) {
			e := NewEngine(fastTiming(), false)
			e.Reset(Pane{Value: "a"})
			if !e.Start(Pane{Value: "a"}, Pane{Value: "b"}, tt.dir) {
				t.Fatal("Start did not request frames")
			}

			layers := e.Layers()
			if len(layers) != 2 {
				t.Fatalf("layers at start: got %d, want 2", len(layers))
			}
			if layers[0].Pane.Value != "a" || layers[1].Pane.Value != "b" {
				t.Errorf("layer order: got %q,%q want a,b", layers[0].Pane.Value, layers[1].Pane.Value)
			}
			if layers[1].Offset != tt.inStartSgn {
				t.Errorf("incoming start offset: got %v, want %v", layers[1].Offset, tt.inStartSgn)
			}
			if layers[0].Opacity != 1 || layers[1].Opacity != 0 {
				t.Errorf("start opacity: got out=%v in=%v, want 1,0", layers[0].Opacity, layers[1].Opacity)
			}

			e.Step()
			layers = e.Layers()
			if layers[0].Offset*tt.outSign <= 0 {
				t.Errorf("outgoing offset after one frame: got %v, want sign %v", layers[0].Offset, tt.outSign)
			}

			runToIdle(t, e)
			if diff := cmp.Diff([]Layer{{Pane: Pane{Value: "b"}, Offset: 0, Opacity: 1}}, e.Layers(),
				cmp.Comparer(func(a, b Pane) bool { return a.Value == b.Value })); diff != "" {
				t.Errorf("steady state mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEngine_FadeFinishesBeforeSlide(t *testing.T) {
	e := NewEngine(fastTiming(), false)
	e.Reset(Pane{Value: "a"})
	e.Start(Pane{Value: "a"}, Pane{Value: "b"}, Forward)

	fadeDoneAt, frames := 0, 0
	for !e.Step() {
		frames++
		if fadeDoneAt == 0 && e.Layers()[1].Opacity >= 1 {
			fadeDoneAt = frames
		}
	}
	if fadeDoneAt == 0 || fadeDoneAt >= frames+1 {
		t.Errorf("fade finished at frame %d, slide at %d", fadeDoneAt, frames+1)
	}
	if frames+1 > 31 {
		t.Errorf("transition took %d frames, want at most 31 at 1000fps/30ms", frames+1)
	}
}

// select(b) while entering a: b ends fully visible, nothing of the
// superseded episode stays mounted.
func TestEngine_Supersession(t *testing.T) {
	e := NewEngine(fastTiming(), false)
	e.Reset(Pane{Value: "p0"})

	e.Start(Pane{Value: "p0"}, Pane{Value: "a"}, Forward)
	first := e.Episode()
	e.Step()
	e.Step()

	if !e.Start(Pane{Value: "a"}, Pane{Value: "b"}, Forward) {
		t.Fatal("superseding Start did not request frames")
	}
	if e.Episode() == first {
		t.Error("episode did not advance on supersession")
	}
	if diff := cmp.Diff([]string{"a", "b"}, e.Mounted()); diff != "" {
		t.Errorf("mounted right after supersession (-want +got):\n%s", diff)
	}

	runToIdle(t, e)
	if diff := cmp.Diff([]string{"b"}, e.Mounted()); diff != "" {
		t.Errorf("mounted at steady state (-want +got):\n%s", diff)
	}
}

func TestEngine_ReducedMotion(t *testing.T) {
	e := NewEngine(fastTiming(), true)
	e.Reset(Pane{Value: "a"})
	if e.Start(Pane{Value: "a"}, Pane{Value: "b"}, Forward) {
		t.Error("reduced motion requested frames")
	}
	if e.Phase() != Idle {
		t.Errorf("phase: got %v, want idle", e.Phase())
	}
	if diff := cmp.Diff([]string{"b"}, e.Mounted()); diff != "" {
		t.Errorf("mounted mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_EmptyMountsNothing(t *testing.T) {
	e := NewEngine(DefaultTiming(), false)
	if got := e.Layers(); got != nil {
		t.Errorf("layers of a fresh engine: got %v, want nil", got)
	}
}
