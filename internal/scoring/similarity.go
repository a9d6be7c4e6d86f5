package scoring

import (
	"math"

	"github.com/spigell/matchmaker/internal/participant"
)

const yearConstant = 0.1

// CosineSimilarity returns the cosine of the angle between v1 and v2.
// Zero-magnitude vectors score 0. Both vectors must have the same length.
func CosineSimilarity(v1, v2 []int) float64 {
	var sumXX, sumXY, sumYY float64
	for i := range v1 {
		x, y := float64(v1[i]), float64(v2[i])
		sumXX += x * x
		sumYY += y * y
		sumXY += x * y
	}

	denominator := math.Sqrt(sumXX * sumYY)
	if denominator == 0 {
		return 0
	}
	return sumXY / denominator
}

// WeightedOverlap averages 1/(1+count) over positions where both vectors agree, so
// agreeing on a rare answer weighs more than agreeing on a common one.
func WeightedOverlap(v1, v2 []int, dist participant.QuestionDistribution) float64 {
	same := 0
	weighted := 0.0
	for i := range v1 {
		if v1[i] != v2[i] {
			continue
		}
		same++
		weighted += 1.0 / (1.0 + float64(dist.Count(i, v1[i])))
	}

	if same == 0 {
		return 0
	}
	return weighted / float64(same)
}

// YearProximity decays with the graduation year distance.
func YearProximity(year1, year2 int) float64 {
	diff := math.Abs(float64(year1 - year2))
	return 1.0 / (1.0 + yearConstant*diff)
}

// MutualInterest reports whether each participant's gender is accepted by the other.
func MutualInterest(a, b *participant.Participant) (bool, error) {
	ab, err := participant.Accepts(a.Preference, b.Gender)
	if err != nil {
		return false, err
	}
	ba, err := participant.Accepts(b.Preference, a.Gender)
	if err != nil {
		return false, err
	}
	return ab && ba, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
