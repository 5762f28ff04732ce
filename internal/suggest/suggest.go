package suggest

import (
	"cmp"
	"slices"
)

// MinScore is the similarity below which Closest suggests nothing.
const MinScore = 0.6

// Candidate is a known name scored against the unknown one.
type Candidate struct {
	Name  string
	Score float64
}

// Rank scores every known name against name, best first. Ties are broken
// by name.
func Rank(name string, known []string) []Candidate {
	norm, key := Normalize(name), NormalizeKey(name)

	out := make([]Candidate, 0, len(known))
	for _, k := range known {
		score := max(Similarity(norm, Normalize(k)), Similarity(key, NormalizeKey(k)))
		out = append(out, Candidate{Name: k, Score: score})
	}

	slices.SortFunc(out, func(a, b Candidate) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}

		return cmp.Compare(a.Name, b.Name)
	})

	return out
}

// Closest returns the best ranked name scoring at least MinScore. A name
// equal to the unknown one is skipped, since it was already looked up.
func Closest(name string, known []string) (string, bool) {
	for _, c := range Rank(name, known) {
		if c.Score < MinScore {
			break
		}

		if c.Name != name {
			return c.Name, true
		}
	}

	return "", false
}
