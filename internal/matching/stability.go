package matching

import (
	"cmp"
	"slices"
)

// BlockingPair is two participants from opposite halves who are not matched to each
// other yet each prefers the other over their current situation.
type BlockingPair struct {
	A int `json:"a"`
	B int `json:"b"`
}

// Verdict reports whether a matching is stable.
type Verdict struct {
	Stable        bool           `json:"stable"`
	BlockingPairs []BlockingPair `json:"blocking_pairs,omitempty"`
}

// Verify looks for blocking pairs. For each participant a, every opposite-half
// candidate c that a ranks ahead of its partner (or any listed candidate when a is
// unmatched) blocks if c lists a and is either unmatched or ranks a ahead of its own
// partner. Pairs are reported once with A < B.
func Verify(res *Result, lists *PreferenceLists) Verdict {
	if res == nil || lists == nil || res.Size() != lists.Len() {
		return Verdict{Stable: false}
	}

	half := res.half
	found := make(map[BlockingPair]struct{})

	for a := 0; a < lists.Len(); a++ {
		partner := res.Partner(a)
		for _, c := range lists.order[a] {
			if c == partner {
				break
			}
			if inFirstHalf(a, half) == inFirstHalf(c, half) {
				continue
			}
			if lists.Prefers(c, a, res.Partner(c)) {
				found[BlockingPair{A: min(a, c), B: max(a, c)}] = struct{}{}
			}
		}
	}

	if len(found) == 0 {
		return Verdict{Stable: true}
	}

	pairs := make([]BlockingPair, 0, len(found))
	for bp := range found {
		pairs = append(pairs, bp)
	}
	slices.SortFunc(pairs, func(x, y BlockingPair) int {
		if c := cmp.Compare(x.A, y.A); c != 0 {
			return c
		}
		return cmp.Compare(x.B, y.B)
	})

	return Verdict{Stable: false, BlockingPairs: pairs}
}
