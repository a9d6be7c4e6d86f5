package matching

import (
	"cmp"
	"slices"
)

// Scores is the read-only view of an adjusted score matrix.
type Scores interface {
	Size() int
	At(i, j int) float64
}

// PreferenceLists holds, for every participant, candidates ordered from most to
// least preferred, plus the inverse rank lookup.
type PreferenceLists struct {
	order [][]int
	rank  [][]int
}

// BuildPreferenceLists orders each row by descending score, breaking ties by ascending
// index. Self and zero-scored (masked) candidates are left out.
func BuildPreferenceLists(scores Scores) *PreferenceLists {
	n := scores.Size()
	lists := &PreferenceLists{
		order: make([][]int, n),
		rank:  make([][]int, n),
	}

	for i := 0; i < n; i++ {
		candidates := make([]int, 0, n-1)
		for j := 0; j < n; j++ {
			if j != i && scores.At(i, j) > 0 {
				candidates = append(candidates, j)
			}
		}

		slices.SortStableFunc(candidates, func(a, b int) int {
			if c := cmp.Compare(scores.At(i, b), scores.At(i, a)); c != 0 {
				return c
			}
			return cmp.Compare(a, b)
		})

		lists.order[i] = candidates
		lists.rank[i] = rankOf(candidates, n)
	}

	return lists
}

// NewPreferenceLists builds lists from explicit orderings. Entries outside [0,n) and
// duplicates are dropped.
func NewPreferenceLists(order [][]int) *PreferenceLists {
	n := len(order)
	lists := &PreferenceLists{
		order: make([][]int, n),
		rank:  make([][]int, n),
	}

	for i, candidates := range order {
		seen := make(map[int]bool, len(candidates))
		cleaned := make([]int, 0, len(candidates))
		for _, c := range candidates {
			if c < 0 || c >= n || c == i || seen[c] {
				continue
			}
			seen[c] = true
			cleaned = append(cleaned, c)
		}
		lists.order[i] = cleaned
		lists.rank[i] = rankOf(cleaned, n)
	}

	return lists
}

func rankOf(candidates []int, n int) []int {
	rank := make([]int, n)
	for j := range rank {
		rank[j] = -1
	}
	for pos, c := range candidates {
		rank[c] = pos
	}
	return rank
}

// Len returns the number of participants.
func (l *PreferenceLists) Len() int {
	return len(l.order)
}

// Of returns a copy of participant i's list.
func (l *PreferenceLists) Of(i int) []int {
	return slices.Clone(l.order[i])
}

// Rank returns j's position in i's list, or -1 when i does not consider j.
func (l *PreferenceLists) Rank(i, j int) int {
	if i < 0 || i >= len(l.rank) || j < 0 || j >= len(l.rank) {
		return -1
	}
	return l.rank[i][j]
}

// Prefers reports whether i ranks a ahead of b. A listed candidate beats an unlisted one.
func (l *PreferenceLists) Prefers(i, a, b int) bool {
	ra, rb := l.Rank(i, a), l.Rank(i, b)
	if ra < 0 {
		return false
	}
	return rb < 0 || ra < rb
}

// All returns a copy of every list.
func (l *PreferenceLists) All() [][]int {
	out := make([][]int, len(l.order))
	for i := range l.order {
		out[i] = l.Of(i)
	}
	return out
}
