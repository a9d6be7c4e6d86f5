package report

import (
	"cmp"
	"slices"

	"github.com/spigell/matchmaker/internal/participant"
	"github.com/spigell/matchmaker/internal/scoring"
)

// PairScore is the compatibility of one unordered pair.
type PairScore struct {
	A     string  `json:"a"`
	B     string  `json:"b"`
	Score float64 `json:"score"`
}

// Scores lists every unordered pair of the matrix, best first. Ties keep index order.
func Scores(ds *participant.Dataset, m *scoring.Matrix) []PairScore {
	n := min(ds.Len(), m.Size())
	out := make([]PairScore, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			out = append(out, PairScore{
				A:     ds.Participants[i].Name,
				B:     ds.Participants[j].Name,
				Score: m.At(i, j),
			})
		}
	}
	slices.SortStableFunc(out, func(a, b PairScore) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return out
}
