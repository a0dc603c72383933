package dashboard

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/timvw/agent-studio/internal/studio"
)

// Rank filters and orders items by how well they match query. Substring
// matches on name or id come first (prefix matches before inner ones);
// otherwise an item matches when one of its name words is within a small
// edit distance of the query. An empty query returns items unchanged.
func Rank(query string, items []studio.Summary) []studio.Summary {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return items
	}

	type scored struct {
		s     studio.Summary
		score int
	}
	var hits []scored
	for _, it := range items {
		if score, ok := matchScore(q, it); ok {
			hits = append(hits, scored{it, score})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score < hits[j].score
		}
		return hits[i].s.Name < hits[j].s.Name
	})

	out := make([]studio.Summary, len(hits))
	for i, h := range hits {
		out[i] = h.s
	}
	return out
}

// maxDistance is the edit distance tolerated for a query of length n.
func maxDistance(n int) int {
	switch {
	case n < 3:
		return 0
	case n < 6:
		return 1
	default:
		return 2
	}
}

// matchScore returns a rank for item; lower is better.
func matchScore(q string, it studio.Summary) (int, bool) {
	name := strings.ToLower(it.Name)
	id := strings.ToLower(it.ID)
	switch {
	case strings.HasPrefix(name, q), strings.HasPrefix(id, q):
		return 0, true
	case strings.Contains(name, q), strings.Contains(id, q):
		return 1, true
	}

	limit := maxDistance(len([]rune(q)))
	if limit == 0 {
		return 0, false
	}
	best := -1
	for _, w := range strings.FieldsFunc(name, isWordSep) {
		// Compare against the word's prefix so partial typing still
		// matches long words.
		if r := []rune(w); len(r) > len([]rune(q))+limit {
			w = string(r[:len([]rune(q))])
		}
		d := levenshtein.ComputeDistance(q, w)
		if best < 0 || d < best {
			best = d
		}
	}
	if best < 0 || best > limit {
		return 0, false
	}
	return 2 + best, true
}

func isWordSep(r rune) bool {
	return r == ' ' || r == '_' || r == '-' || r == '.' || r == '(' || r == ')'
}
