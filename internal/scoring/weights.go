package scoring

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidWeights is returned when a weight set cannot produce scores in [0,1].
var ErrInvalidWeights = errors.New("scoring: invalid weights")

const weightTolerance = 0.001

// Weights sets how much each signal contributes to the compatibility score.
type Weights struct {
	Cosine  float64 `mapstructure:"cosine"`
	Overlap float64 `mapstructure:"overlap"`
	Year    float64 `mapstructure:"year"`
	Mutual  float64 `mapstructure:"mutual"`
}

// DefaultWeights returns 0.6 cosine, 0.2 weighted overlap, 0.1 graduation year, 0.1 mutual interest.
func DefaultWeights() Weights {
	return Weights{
		Cosine:  0.6,
		Overlap: 0.2,
		Year:    0.1,
		Mutual:  0.1,
	}
}

func (w Weights) Sum() float64 {
	return w.Cosine + w.Overlap + w.Year + w.Mutual
}

// Validate checks that no weight is negative and that weights sum to 1.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"cosine":  w.Cosine,
		"overlap": w.Overlap,
		"year":    w.Year,
		"mutual":  w.Mutual,
	} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s weight is %v", ErrInvalidWeights, name, v)
		}
	}
	if math.Abs(w.Sum()-1.0) > weightTolerance {
		return fmt.Errorf("%w: weights sum to %.4f, must sum to 1.0", ErrInvalidWeights, w.Sum())
	}
	return nil
}
