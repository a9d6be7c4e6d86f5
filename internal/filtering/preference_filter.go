package filtering

import (
	"context"
	"fmt"

	"github.com/spigell/matchmaker/internal/participant"
	"github.com/spigell/matchmaker/internal/scoring"
)

type preferenceFilter struct {
	participants []*participant.Participant
}

// NewPreference creates the filter that zeroes (i, j) whenever participant i does not
// accept participant j's gender. Rows are evaluated independently, so the result may
// be asymmetric. It cannot be disabled.
func NewPreference(participants []*participant.Participant) Filter {
	return &preferenceFilter{participants: participants}
}

func (f *preferenceFilter) Name() string { return "preference" }

func (f *preferenceFilter) Disable(string) {}

func (f *preferenceFilter) IsEnabled() bool { return true }

func (f *preferenceFilter) Validate() error {
	if len(f.participants) == 0 {
		return fmt.Errorf("participants are required")
	}
	for i, p := range f.participants {
		if p == nil {
			return &participant.InputError{Index: i, Field: "record", Err: participant.ErrMalformedInput, Msg: "participant is nil"}
		}
		if !p.Gender.Valid() {
			return &participant.InputError{Index: i, Field: "gender", Err: participant.ErrUnknownCategory, Msg: p.Gender.String()}
		}
		if !p.Preference.Valid() {
			return &participant.InputError{Index: i, Field: "preference", Err: participant.ErrUnknownCategory, Msg: p.Preference.String()}
		}
	}
	return nil
}

func (f *preferenceFilter) Apply(_ context.Context, m *scoring.Matrix) (*scoring.Matrix, Step, error) {
	if m.Size() != len(f.participants) {
		return m, Step{}, fmt.Errorf("%w: matrix covers %d participants, got %d",
			participant.ErrDimensionMismatch, m.Size(), len(f.participants))
	}

	initial := m.NonZero()
	for i, pi := range f.participants {
		for j, pj := range f.participants {
			if i == j {
				continue
			}
			ok, err := participant.Accepts(pi.Preference, pj.Gender)
			if err != nil {
				return m, Step{}, fmt.Errorf("participant %d or %d: %w", i, j, err)
			}
			if !ok {
				m.Set(i, j, 0)
			}
		}
	}

	return m, stepOf(initial, m), nil
}

func (f *preferenceFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: true}
}
