package scoring

import (
	"github.com/spigell/matchmaker/internal/participant"
)

// Breakdown keeps the individual signals behind one score.
type Breakdown struct {
	Cosine  float64 `json:"cosine"`
	Overlap float64 `json:"overlap"`
	Year    float64 `json:"year"`
	Mutual  bool    `json:"mutual"`
	Score   float64 `json:"score"`
}

// Scorer combines similarity signals into a compatibility score in [0,1].
// The question distribution is passed explicitly and never shared through globals.
type Scorer struct {
	weights      Weights
	distribution participant.QuestionDistribution
}

// NewScorer validates the weights and returns a Scorer bound to the distribution.
func NewScorer(weights Weights, dist participant.QuestionDistribution) (*Scorer, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{weights: weights, distribution: dist}, nil
}

func (s *Scorer) Weights() Weights {
	return s.weights
}

// Score returns the compatibility of a and b. It is symmetric and has no side effects.
// Response vectors must already be validated to share one length; unknown categories
// count as no mutual interest here because Dataset.Validate rejects them earlier.
func (s *Scorer) Score(a, b *participant.Participant) float64 {
	return s.Explain(a, b).Score
}

// Explain returns the score along with every signal that produced it.
func (s *Scorer) Explain(a, b *participant.Participant) Breakdown {
	mutual, err := MutualInterest(a, b)
	if err != nil {
		mutual = false
	}

	br := Breakdown{
		Cosine:  CosineSimilarity(a.Responses, b.Responses),
		Overlap: WeightedOverlap(a.Responses, b.Responses, s.distribution),
		Year:    YearProximity(a.GradYear, b.GradYear),
		Mutual:  mutual,
	}

	score := s.weights.Cosine*br.Cosine +
		s.weights.Overlap*br.Overlap +
		s.weights.Year*br.Year
	if mutual {
		score += s.weights.Mutual
	}

	br.Score = clamp(score, 0, 1)
	return br
}
