// Package report turns a run outcome into participant-facing summaries.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spigell/matchmaker/internal/filtering"
	"github.com/spigell/matchmaker/internal/participant"
	"github.com/spigell/matchmaker/internal/pipeline"
)

// Match is a formed pair described by names, with each side's view of the other.
type Match struct {
	A      string  `json:"a"`
	B      string  `json:"b"`
	IndexA int     `json:"index_a"`
	IndexB int     `json:"index_b"`
	Score  float64 `json:"score"`
	// RankA is the position of B in A's preference list, starting at 1.
	RankA int `json:"rank_a"`
	RankB int `json:"rank_b"`
}

// Report is the serialisable summary of one run.
type Report struct {
	Proposers     string           `json:"proposers"`
	Matches       []Match          `json:"matches"`
	Unmatched     []string         `json:"unmatched"`
	Stable        bool             `json:"stable"`
	BlockingPairs [][2]string      `json:"blocking_pairs,omitempty"`
	Steps         []filtering.Step `json:"filter_steps"`
	Proposals     int              `json:"proposals"`
	Rejections    int              `json:"rejections"`
	Displacements int              `json:"displacements"`
	// AdjustedMatrix is the score matrix after filtering, the one matching ran on.
	AdjustedMatrix [][]float64 `json:"adjusted_matrix,omitempty"`
}

// Build describes the outcome in terms of participant names.
func Build(ds *participant.Dataset, out *pipeline.Outcome) (*Report, error) {
	if ds == nil || out == nil || out.Result == nil {
		return nil, fmt.Errorf("dataset and outcome are required")
	}
	if out.Result.Size() != ds.Len() {
		return nil, fmt.Errorf("%w: outcome covers %d participants, dataset has %d",
			participant.ErrDimensionMismatch, out.Result.Size(), ds.Len())
	}

	name := func(i int) string { return ds.Participants[i].Name }

	r := &Report{
		Proposers:     out.Result.Proposers.String(),
		Stable:        out.Verdict.Stable,
		Steps:         out.Steps,
		Proposals:     out.Result.Proposals,
		Rejections:    out.Result.Rejections,
		Displacements: out.Result.Displacements,
		Unmatched:     []string{},
	}
	if out.Adjusted != nil {
		r.AdjustedMatrix = out.Adjusted.Rows()
	}

	for _, p := range out.Result.Pairs {
		m := Match{
			A:      name(p.Proposer),
			B:      name(p.Receiver),
			IndexA: p.Proposer,
			IndexB: p.Receiver,
			RankA:  out.Lists.Rank(p.Proposer, p.Receiver) + 1,
			RankB:  out.Lists.Rank(p.Receiver, p.Proposer) + 1,
		}
		if out.Raw != nil {
			m.Score = out.Raw.At(p.Proposer, p.Receiver)
		}
		r.Matches = append(r.Matches, m)
	}

	for _, i := range out.Result.Unmatched() {
		r.Unmatched = append(r.Unmatched, name(i))
	}
	for _, bp := range out.Verdict.BlockingPairs {
		r.BlockingPairs = append(r.BlockingPairs, [2]string{name(bp.A), name(bp.B)})
	}

	return r, nil
}

// NamePairs returns the formed pairs by name.
func (r *Report) NamePairs() []participant.NamePair {
	pairs := make([]participant.NamePair, 0, len(r.Matches))
	for _, m := range r.Matches {
		pairs = append(pairs, participant.NamePair{A: m.A, B: m.B})
	}
	return pairs
}

// ByParticipant returns, for every participant, who they were matched with.
func (r *Report) ByParticipant() map[string]map[string]string {
	report := make(map[string]map[string]string, 2*len(r.Matches)+len(r.Unmatched))
	for _, m := range r.Matches {
		score := strconv.FormatFloat(m.Score, 'f', 3, 64)
		report[m.A] = map[string]string{
			"partner":      m.B,
			"score":        score,
			"partner rank": strconv.Itoa(m.RankA),
			"role":         "proposer",
		}
		report[m.B] = map[string]string{
			"partner":      m.A,
			"score":        score,
			"partner rank": strconv.Itoa(m.RankB),
			"role":         "receiver",
		}
	}
	for _, n := range r.Unmatched {
		report[n] = map[string]string{"partner": "none"}
	}
	return report
}

func (r *Report) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "matches_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	return file.Name(), nil
}
