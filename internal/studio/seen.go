package studio

import "github.com/alphadose/haxmap"

// SeenSet remembers which entity ids already had their skeleton loader
// shown. Ids are inserted once and never evicted for the life of the
// process. Safe for concurrent use.
type SeenSet struct {
	m *haxmap.Map[string, bool]
}

// NewSeenSet returns an empty set.
func NewSeenSet() *SeenSet {
	return &SeenSet{m: haxmap.New[string, bool]()}
}

// MarkSeen inserts id and reports whether this was the first time.
func (s *SeenSet) MarkSeen(id string) (first bool) {
	_, loaded := s.m.GetOrCompute(id, func() bool { return true })
	return !loaded
}

// Seen reports whether id was inserted.
func (s *SeenSet) Seen(id string) bool {
	_, ok := s.m.Get(id)
	return ok
}

// Len returns the number of ids seen.
func (s *SeenSet) Len() int {
	return int(s.m.Len())
}
