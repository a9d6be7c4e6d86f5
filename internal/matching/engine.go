package matching

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnevenPartition is returned when participants cannot be split into two
// equal, non-empty halves. Only this two-partition shape is supported.
var ErrUnevenPartition = errors.New("matching: participants must split into two equal non-empty halves")

const unmatched = -1

// Side picks which half of the participants proposes.
type Side int

const (
	// FirstHalf proposes: indices [0, n/2) propose to [n/2, n).
	FirstHalf Side = iota
	// SecondHalf proposes: indices [n/2, n) propose to [0, n/2).
	SecondHalf
)

func (s Side) String() string {
	switch s {
	case FirstHalf:
		return "first-half"
	case SecondHalf:
		return "second-half"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// ParseSide accepts "first", "first-half", "second" and "second-half". Empty means FirstHalf.
func ParseSide(s string) (Side, error) {
	switch s {
	case "", "first", "first-half":
		return FirstHalf, nil
	case "second", "second-half":
		return SecondHalf, nil
	default:
		return FirstHalf, fmt.Errorf("matching: unknown proposing side %q", s)
	}
}

// Options configures one deferred acceptance run.
type Options struct {
	Proposers Side
}

// Pair is a matched proposer and receiver.
type Pair struct {
	Proposer int `json:"proposer"`
	Receiver int `json:"receiver"`
}

// Result is the outcome of deferred acceptance. Participants whose lists ran out
// stay unmatched and are listed, never force-paired.
type Result struct {
	Proposers          Side   `json:"proposers"`
	Pairs              []Pair `json:"pairs"`
	UnmatchedProposers []int  `json:"unmatched_proposers"`
	UnmatchedReceivers []int  `json:"unmatched_receivers"`
	Proposals          int    `json:"proposals"`
	Rejections         int    `json:"rejections"`
	Displacements      int    `json:"displacements"`

	partner []int
	half    int
}

// Partner returns the participant matched to i, or -1.
func (r *Result) Partner(i int) int {
	if i < 0 || i >= len(r.partner) {
		return unmatched
	}
	return r.partner[i]
}

// Size returns the number of participants the result covers.
func (r *Result) Size() int {
	return len(r.partner)
}

// IsProposer reports whether i belonged to the proposing half.
func (r *Result) IsProposer(i int) bool {
	return inFirstHalf(i, r.half) == (r.Proposers == FirstHalf)
}

// Unmatched returns every unmatched participant in ascending order.
func (r *Result) Unmatched() []int {
	out := make([]int, 0, len(r.UnmatchedProposers)+len(r.UnmatchedReceivers))
	out = append(out, r.UnmatchedProposers...)
	out = append(out, r.UnmatchedReceivers...)
	slices.Sort(out)
	return out
}

func inFirstHalf(i, half int) bool {
	return i < half
}

// Match runs deferred acceptance (Gale-Shapley). Each proposer walks its list in order
// and proposes to receivers of the other half; a receiver holds the best proposal it
// has seen among proposers it lists itself, displacing a weaker tentative partner who
// goes back to the queue. Every proposer proposes to each receiver at most once, so at
// most (n/2)² proposals are made.
func Match(lists *PreferenceLists, opts Options) (*Result, error) {
	if lists == nil {
		return nil, errors.New("matching: preference lists are required")
	}

	n := lists.Len()
	if n == 0 || n%2 != 0 {
		return nil, fmt.Errorf("%w: got %d participants", ErrUnevenPartition, n)
	}
	if opts.Proposers != FirstHalf && opts.Proposers != SecondHalf {
		return nil, fmt.Errorf("matching: unknown proposing side %s", opts.Proposers)
	}

	half := n / 2
	proposerStart, receiverStart := 0, half
	if opts.Proposers == SecondHalf {
		proposerStart, receiverStart = half, 0
	}

	isReceiver := func(i int) bool {
		return i >= receiverStart && i < receiverStart+half
	}

	res := &Result{
		Proposers: opts.Proposers,
		partner:   make([]int, n),
		half:      half,
	}
	for i := range res.partner {
		res.partner[i] = unmatched
	}

	queue := make([]int, 0, half)
	for p := proposerStart; p < proposerStart+half; p++ {
		queue = append(queue, p)
	}

	// next[p] is the position in p's list of the next candidate to consider; everything
	// before it has been proposed to or skipped already.
	next := make([]int, n)

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		list := lists.order[p]
		for next[p] < len(list) {
			r := list[next[p]]
			next[p]++

			if !isReceiver(r) {
				continue
			}

			res.Proposals++

			if lists.Rank(r, p) < 0 {
				res.Rejections++
				continue
			}

			current := res.partner[r]
			if current == unmatched {
				res.partner[p], res.partner[r] = r, p
				break
			}

			if lists.Prefers(r, p, current) {
				res.partner[current] = unmatched
				res.partner[p], res.partner[r] = r, p
				res.Displacements++
				queue = append(queue, current)
				break
			}

			res.Rejections++
		}
	}

	for p := proposerStart; p < proposerStart+half; p++ {
		if r := res.partner[p]; r != unmatched {
			res.Pairs = append(res.Pairs, Pair{Proposer: p, Receiver: r})
		} else {
			res.UnmatchedProposers = append(res.UnmatchedProposers, p)
		}
	}
	for r := receiverStart; r < receiverStart+half; r++ {
		if res.partner[r] == unmatched {
			res.UnmatchedReceivers = append(res.UnmatchedReceivers, r)
		}
	}

	return res, nil
}
