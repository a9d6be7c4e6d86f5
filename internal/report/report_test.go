package report

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/matchmaker/internal/participant"
	"github.com/spigell/matchmaker/internal/pipeline"
	"github.com/spigell/matchmaker/internal/scoring"
)

func dataset() *participant.Dataset {
	mk := func(i int, name string, g participant.Gender, p participant.Preference, responses ...int) *participant.Participant {
		return &participant.Participant{Index: i, Name: name, Gender: g, Preference: p, GradYear: 2024, Responses: responses}
	}
	return &participant.Dataset{Participants: []*participant.Participant{
		mk(0, "alex", participant.Male, participant.Women, 1, 2),
		mk(1, "blake", participant.Male, participant.Men, 2, 2),
		mk(2, "casey", participant.Female, participant.Men, 1, 2),
		mk(3, "dana", participant.Female, participant.Women, 2, 1),
	}}
}

func TestBuild(t *testing.T) {
	ds := dataset()
	out, err := pipeline.Run(context.Background(), ds, pipeline.Options{}, pipeline.Deps{})
	require.NoError(t, err)

	r, err := Build(ds, out)
	require.NoError(t, err)

	// alex and casey accept each other; blake wants men, dana wants women.
	require.Len(t, r.Matches, 1)
	assert.Equal(t, Match{
		A: "alex", B: "casey", IndexA: 0, IndexB: 2,
		Score: out.Raw.At(0, 2), RankA: 1, RankB: 1,
	}, r.Matches[0])
	assert.Equal(t, []string{"blake", "dana"}, r.Unmatched)
	assert.True(t, r.Stable)
	assert.Equal(t, []participant.NamePair{{A: "alex", B: "casey"}}, r.NamePairs())

	byParticipant := r.ByParticipant()
	assert.Equal(t, "casey", byParticipant["alex"]["partner"])
	assert.Equal(t, "receiver", byParticipant["casey"]["role"])
	assert.Equal(t, "none", byParticipant["dana"]["partner"])

	require.Len(t, r.AdjustedMatrix, ds.Len())
	assert.Equal(t, out.Adjusted.Rows(), r.AdjustedMatrix)
	assert.Zero(t, r.AdjustedMatrix[0][1], "filtered pairs stay masked in the report")
}

func TestDumpIncludesAdjustedMatrix(t *testing.T) {
	ds := dataset()
	out, err := pipeline.Run(context.Background(), ds, pipeline.Options{}, pipeline.Deps{})
	require.NoError(t, err)

	r, err := Build(ds, out)
	require.NoError(t, err)

	path, err := r.DumpToTmpFile()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Remove(path) })

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Contains(t, raw, "adjusted_matrix")

	var decoded Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.InDeltaSlice(t, out.Adjusted.Row(0), decoded.AdjustedMatrix[0], 1e-12)
	assert.Equal(t, out.Adjusted.At(0, 2), decoded.AdjustedMatrix[0][2])
}

func TestBuildRejectsMismatchedOutcome(t *testing.T) {
	out, err := pipeline.Run(context.Background(), dataset(), pipeline.Options{}, pipeline.Deps{})
	require.NoError(t, err)

	small := dataset()
	small.Participants = small.Participants[:2]
	_, err = Build(small, out)
	assert.ErrorIs(t, err, participant.ErrDimensionMismatch)

	_, err = Build(nil, out)
	assert.Error(t, err)
}

func TestDumpToTmpFile(t *testing.T) {
	r := &Report{Proposers: "first-half", Matches: []Match{{A: "alex", B: "casey", Score: 0.5}}, Stable: true}

	path, err := r.DumpToTmpFile()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Remove(path) })

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, r.Matches, decoded.Matches)
}

func TestScores(t *testing.T) {
	ds := dataset()
	m, err := scoring.MatrixFromRows([][]float64{
		{0, 0.2, 0.9, 0.2},
		{0.2, 0, 0.1, 0.4},
		{0.9, 0.1, 0, 0.3},
		{0.2, 0.4, 0.3, 0},
	})
	require.NoError(t, err)

	scores := Scores(ds, m)
	require.Len(t, scores, 6)
	assert.Equal(t, PairScore{A: "alex", B: "casey", Score: 0.9}, scores[0])
	assert.Equal(t, PairScore{A: "alex", B: "blake", Score: 0.2}, scores[3])
	assert.Equal(t, PairScore{A: "alex", B: "dana", Score: 0.2}, scores[4])
	assert.Equal(t, PairScore{A: "blake", B: "casey", Score: 0.1}, scores[5])
}
