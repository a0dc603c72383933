package dashboard

// Typewriter types a rotating list of phrases one rune per step, holds the
// finished phrase, then erases it and moves to the next one. The search box
// shows it as its placeholder.
type Typewriter struct {
	phrases [][]rune
	idx     int
	n       int // runes shown
	hold    int // steps left to hold the full phrase
	erasing bool

	HoldSteps int
}

// NewTypewriter returns a typewriter over phrases.
func NewTypewriter(phrases ...string) *Typewriter {
	t := &Typewriter{HoldSteps: 30}
	for _, p := range phrases {
		t.phrases = append(t.phrases, []rune(p))
	}
	return t
}

// Step advances the animation by one frame.
func (t *Typewriter) Step() {
	if len(t.phrases) == 0 {
		return
	}
	cur := t.phrases[t.idx]
	switch {
	case t.erasing:
		// Erase twice as fast as typing.
		t.n -= 2
		if t.n <= 0 {
			t.n = 0
			t.erasing = false
			t.idx = (t.idx + 1) % len(t.phrases)
		}
	case t.n < len(cur):
		t.n++
		if t.n == len(cur) {
			t.hold = t.HoldSteps
		}
	case t.hold > 0:
		t.hold--
	default:
		t.erasing = true
	}
}

// Text returns the currently typed part of the phrase.
func (t *Typewriter) Text() string {
	if len(t.phrases) == 0 {
		return ""
	}
	return string(t.phrases[t.idx][:t.n])
}

// Full returns the current phrase in full.
func (t *Typewriter) Full() string {
	if len(t.phrases) == 0 {
		return ""
	}
	return string(t.phrases[t.idx])
}
