package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spigell/matchmaker/internal/participant"
)

func TestCosineSimilarity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		v1, v2 []int
		expect float64
	}{
		{name: "identical", v1: []int{1, 2, 3}, v2: []int{1, 2, 3}, expect: 1},
		{name: "scaled", v1: []int{1, 2}, v2: []int{2, 4}, expect: 1},
		{name: "orthogonal", v1: []int{1, 0}, v2: []int{0, 1}, expect: 0},
		{name: "zero vector", v1: []int{0, 0, 0}, v2: []int{1, 2, 3}, expect: 0},
		{name: "both zero", v1: []int{0, 0}, v2: []int{0, 0}, expect: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.expect, CosineSimilarity(tt.v1, tt.v2), 1e-12)
		})
	}
}

func TestCosineSimilaritySelfIsOne(t *testing.T) {
	vectors := [][]int{{1}, {5, 0, 2}, {3, 3, 3, 3}, {0, 0, 7}, {4, 1, 0, 2, 9}}
	for _, v := range vectors {
		assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-12, "vector %v", v)
	}
}

func TestWeightedOverlap(t *testing.T) {
	dist := participant.QuestionDistribution{
		{1: 3, 2: 1},
		{0: 4},
		{5: 0},
	}

	// agree on positions 0 (count 3) and 2 (count 0): (1/4 + 1/1) / 2
	got := WeightedOverlap([]int{1, 0, 5}, []int{1, 1, 5}, dist)
	assert.InDelta(t, (0.25+1.0)/2, got, 1e-12)

	assert.Equal(t, 0.0, WeightedOverlap([]int{1, 0}, []int{2, 4}, dist))
}

func TestYearProximity(t *testing.T) {
	assert.Equal(t, 1.0, YearProximity(2024, 2024))
	assert.InDelta(t, 1.0/1.2, YearProximity(2024, 2026), 1e-12)
	assert.Equal(t, YearProximity(2020, 2025), YearProximity(2025, 2020))
}

func TestMutualInterest(t *testing.T) {
	alice := &participant.Participant{Gender: participant.Female, Preference: participant.Men}
	bob := &participant.Participant{Gender: participant.Male, Preference: participant.Women}
	carol := &participant.Participant{Gender: participant.Female, Preference: participant.Bisexual}

	mutual, err := MutualInterest(alice, bob)
	assert.NoError(t, err)
	assert.True(t, mutual)

	mutual, err = MutualInterest(alice, carol)
	assert.NoError(t, err)
	assert.False(t, mutual, "carol accepts alice but alice does not accept women")

	_, err = MutualInterest(alice, &participant.Participant{Gender: participant.GenderUnknown, Preference: participant.Men})
	assert.ErrorIs(t, err, participant.ErrUnknownCategory)
}
