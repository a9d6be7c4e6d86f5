package filtering

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spigell/matchmaker/internal/scoring"
)

type minimumScoreFilter struct {
	minimum  float64
	disabled bool
	reason   string
}

// NewMinimumScore creates a filter that zeroes scores below minimum. A non-positive
// minimum disables the filter.
func NewMinimumScore(minimum float64) Filter {
	f := &minimumScoreFilter{minimum: minimum}
	if minimum <= 0 {
		f.Disable("minimum score is not set")
	}
	return f
}

func (f *minimumScoreFilter) Name() string { return "minimum_score" }

func (f *minimumScoreFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *minimumScoreFilter) IsEnabled() bool { return !f.disabled }

func (f *minimumScoreFilter) Validate() error {
	if f.minimum < 0 || f.minimum > 1 {
		return fmt.Errorf("minimum score %v is outside [0,1]", f.minimum)
	}
	return nil
}

func (f *minimumScoreFilter) Apply(_ context.Context, m *scoring.Matrix) (*scoring.Matrix, Step, error) {
	initial := m.NonZero()
	for i := 0; i < m.Size(); i++ {
		for j := 0; j < m.Size(); j++ {
			if v := m.At(i, j); v > 0 && v < f.minimum {
				m.Set(i, j, 0)
			}
		}
	}
	return m, stepOf(initial, m), nil
}

func (f *minimumScoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"minimum_score": strconv.FormatFloat(f.minimum, 'f', 2, 64)},
	}
}
