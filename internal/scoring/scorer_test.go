package scoring

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/matchmaker/internal/participant"
)

var (
	genders     = []participant.Gender{participant.Male, participant.Female, participant.Nonbinary}
	preferences = []participant.Preference{participant.Men, participant.Women, participant.Bisexual}
)

func randomParticipants(seed int64, n, questions int) []*participant.Participant {
	rng := rand.New(rand.NewSource(seed))
	out := make([]*participant.Participant, n)
	for i := range out {
		responses := make([]int, questions)
		for q := range responses {
			responses[q] = rng.Intn(5)
		}
		out[i] = &participant.Participant{
			Index:      i,
			Name:       string(rune('a' + i%26)),
			Gender:     genders[rng.Intn(len(genders))],
			Preference: preferences[rng.Intn(len(preferences))],
			GradYear:   2022 + rng.Intn(6),
			Responses:  responses,
		}
	}
	return out
}

func TestWeightsValidate(t *testing.T) {
	require.NoError(t, DefaultWeights().Validate())

	bad := DefaultWeights()
	bad.Cosine = 0.9
	assert.ErrorIs(t, bad.Validate(), ErrInvalidWeights)

	negative := Weights{Cosine: 1.2, Overlap: -0.2}
	assert.ErrorIs(t, negative.Validate(), ErrInvalidWeights)

	_, err := NewScorer(bad, nil)
	assert.ErrorIs(t, err, ErrInvalidWeights)
}

func TestScoreKnownPair(t *testing.T) {
	alice := &participant.Participant{Gender: participant.Female, Preference: participant.Men, GradYear: 2024, Responses: []int{1, 2, 3}}
	bob := &participant.Participant{Gender: participant.Male, Preference: participant.Women, GradYear: 2024, Responses: []int{1, 2, 3}}
	dist := participant.BuildDistribution([]*participant.Participant{alice, bob})

	scorer, err := NewScorer(DefaultWeights(), dist)
	require.NoError(t, err)

	br := scorer.Explain(alice, bob)
	assert.InDelta(t, 1.0, br.Cosine, 1e-12)
	assert.InDelta(t, 1.0/3.0, br.Overlap, 1e-12)
	assert.Equal(t, 1.0, br.Year)
	assert.True(t, br.Mutual)
	assert.InDelta(t, 0.6+0.2/3+0.1+0.1, br.Score, 1e-12)
}

func TestScoreClampedToOne(t *testing.T) {
	alice := &participant.Participant{Gender: participant.Female, Preference: participant.Men, GradYear: 2024, Responses: []int{1, 2, 3}}
	bob := &participant.Participant{Gender: participant.Male, Preference: participant.Women, GradYear: 2024, Responses: []int{1, 2, 3}}
	// No one else gave these answers, so every agreement weighs 1/(1+0).
	dist := participant.QuestionDistribution{{}, {}, {}}

	weights := Weights{Cosine: 0.6005, Overlap: 0.2, Year: 0.1, Mutual: 0.1}
	scorer, err := NewScorer(weights, dist)
	require.NoError(t, err)

	br := scorer.Explain(alice, bob)
	assert.Equal(t, 1.0, br.Overlap)
	assert.Equal(t, 1.0, br.Score)

	defaults, err := NewScorer(DefaultWeights(), dist)
	require.NoError(t, err)
	score := defaults.Score(alice, bob)
	assert.InDelta(t, 1.0, score, 1e-9)
	assert.LessOrEqual(t, score, 1.0)
}

func TestScoreWithoutMutualInterest(t *testing.T) {
	a := &participant.Participant{Gender: participant.Male, Preference: participant.Men, GradYear: 2020, Responses: []int{0, 0}}
	b := &participant.Participant{Gender: participant.Female, Preference: participant.Women, GradYear: 2030, Responses: []int{1, 1}}
	dist := participant.BuildDistribution([]*participant.Participant{a, b})

	scorer, err := NewScorer(DefaultWeights(), dist)
	require.NoError(t, err)

	// zero vector, no agreement, ten years apart: only 0.1 * 1/(1+1) remains
	assert.InDelta(t, 0.05, scorer.Score(a, b), 1e-12)
}

func TestScoreBoundedAndSymmetric(t *testing.T) {
	people := randomParticipants(7, 40, 12)
	scorer, err := NewScorer(DefaultWeights(), participant.BuildDistribution(people))
	require.NoError(t, err)

	for i := range people {
		for j := range people {
			s := scorer.Score(people[i], people[j])
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 1.0)
			assert.Equal(t, s, scorer.Score(people[j], people[i]), "pair (%d,%d)", i, j)
		}
	}
}

func TestBuildMatrix(t *testing.T) {
	people := randomParticipants(11, 25, 8)
	scorer, err := NewScorer(DefaultWeights(), participant.BuildDistribution(people))
	require.NoError(t, err)

	m, err := BuildMatrix(context.Background(), scorer, people, 4)
	require.NoError(t, err)
	require.Equal(t, len(people), m.Size())

	assert.True(t, m.IsSymmetric(0))
	for i := range people {
		assert.Equal(t, 0.0, m.At(i, i))
		for j := range people {
			if i != j {
				assert.Equal(t, scorer.Score(people[i], people[j]), m.At(i, j))
			}
		}
	}

	sequential, err := BuildMatrix(context.Background(), scorer, people, 1)
	require.NoError(t, err)
	assert.Equal(t, sequential.Rows(), m.Rows())
}

func TestBuildMatrixEmpty(t *testing.T) {
	scorer, err := NewScorer(DefaultWeights(), nil)
	require.NoError(t, err)

	_, err = BuildMatrix(context.Background(), scorer, nil, 0)
	assert.ErrorIs(t, err, ErrEmptyMatrix)
}

func TestBuildMatrixRejectsUnknownCategory(t *testing.T) {
	people := randomParticipants(5, 4, 3)
	scorer, err := NewScorer(DefaultWeights(), participant.BuildDistribution(people))
	require.NoError(t, err)

	people[2].Preference = participant.PreferenceUnknown
	_, err = BuildMatrix(context.Background(), scorer, people, 2)
	require.ErrorIs(t, err, participant.ErrUnknownCategory)

	var inputErr *participant.InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, 2, inputErr.Index)
	assert.Equal(t, "preference", inputErr.Field)

	people[2] = nil
	_, err = BuildMatrix(context.Background(), scorer, people, 2)
	assert.ErrorIs(t, err, participant.ErrMalformedInput)
}

func TestBuildMatrixCanceled(t *testing.T) {
	people := randomParticipants(3, 10, 4)
	scorer, err := NewScorer(DefaultWeights(), participant.BuildDistribution(people))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = BuildMatrix(ctx, scorer, people, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMatrixHelpers(t *testing.T) {
	m, err := MatrixFromRows([][]float64{
		{0, 0.5, 0},
		{0.4, 0, 0.2},
		{0, 0.2, 0},
	})
	require.NoError(t, err)

	assert.Equal(t, 4, m.NonZero())
	assert.False(t, m.IsSymmetric(0.05))
	assert.True(t, m.IsSymmetric(0.11))

	clone := m.Clone()
	clone.Set(0, 1, 0)
	assert.Equal(t, 0.5, m.At(0, 1))

	row := m.Row(1)
	row[0] = 9
	assert.Equal(t, 0.4, m.At(1, 0))

	_, err = MatrixFromRows([][]float64{{0, 1}, {1}})
	assert.Error(t, err)
}
