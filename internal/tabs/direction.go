package tabs

// Direction is the slide direction of a pane switch, derived from the
// registry positions of the previous and the newly selected value.
type Direction int

const (
	// None means no motion: same pane, or an unresolvable pair.
	None Direction = iota
	// Forward means the new pane sits after the previous one.
	Forward
	// Backward means the new pane sits before the previous one.
	Backward
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return "none"
	}
}

// sign returns +1 for Forward, -1 for Backward and 0 for None.
func (d Direction) sign() float64 {
	switch d {
	case Forward:
		return 1
	case Backward:
		return -1
	default:
		return 0
	}
}

// DirectionBetween compares the registry positions of from and to.
// Values missing from the registry yield None.
func DirectionBetween(r *Registry, from, to string) Direction {
	fi, ti := r.IndexOf(from), r.IndexOf(to)
	if fi == NotFound || ti == NotFound {
		return None
	}
	switch {
	case ti > fi:
		return Forward
	case ti < fi:
		return Backward
	default:
		return None
	}
}

// DirectionBase selects the reference value a direction is computed against.
type DirectionBase int

const (
	// BaseDisplayed recomputes the direction against the value currently
	// displayed, including after out-of-band controlled changes.
	BaseDisplayed DirectionBase = iota
	// BaseLastSelected computes the direction against the last value passed
	// to Select and reuses it when a controlled parent echoes the value.
	BaseLastSelected
)

func (b DirectionBase) String() string {
	if b == BaseLastSelected {
		return "last_selected"
	}
	return "displayed"
}

// ParseDirectionBase maps a config string to a DirectionBase.
// Unknown or empty strings map to BaseDisplayed.
func ParseDirectionBase(s string) DirectionBase {
	switch s {
	case "last_selected", "last-selected", "legacy":
		return BaseLastSelected
	default:
		return BaseDisplayed
	}
}
