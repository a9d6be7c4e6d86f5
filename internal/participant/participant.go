package participant

// Participant is one survey respondent. Index is its position in the dataset and
// decides which partition it falls into during matching.
type Participant struct {
	Index      int        `json:"index"`
	Name       string     `json:"name"`
	Gender     Gender     `json:"gender"`
	Preference Preference `json:"preference"`
	GradYear   int        `json:"grad_year"`
	Responses  []int      `json:"responses"`
}

// Dataset holds everything one matching run consumes.
type Dataset struct {
	Participants []*Participant
	Distribution QuestionDistribution
}

func (d *Dataset) Len() int {
	return len(d.Participants)
}

// Questions returns the shared response vector length, or 0 for an empty dataset.
func (d *Dataset) Questions() int {
	if len(d.Participants) == 0 {
		return 0
	}
	return len(d.Participants[0].Responses)
}

// Names returns participant names ordered by index.
func (d *Dataset) Names() []string {
	names := make([]string, 0, len(d.Participants))
	for _, p := range d.Participants {
		names = append(names, p.Name)
	}
	return names
}

// FindByName returns the participant with the given name or nil.
func (d *Dataset) FindByName(name string) *Participant {
	for _, p := range d.Participants {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Validate checks the dataset before any score is computed.
// The returned error is an *InputError wrapping ErrMalformedInput, ErrDimensionMismatch
// or ErrUnknownCategory.
func (d *Dataset) Validate() error {
	if d == nil || len(d.Participants) == 0 {
		return inputErrorf(ErrMalformedInput, -1, "participants", "dataset is empty")
	}

	questions := len(d.Participants[0].Responses)
	names := make(map[string]int, len(d.Participants))

	for i, p := range d.Participants {
		if p == nil {
			return inputErrorf(ErrMalformedInput, i, "record", "participant is nil")
		}
		if p.Index != i {
			return inputErrorf(ErrMalformedInput, i, "index", "expected %d, got %d", i, p.Index)
		}
		if p.Name == "" {
			return inputErrorf(ErrMalformedInput, i, "name", "name is required")
		}
		if prev, ok := names[p.Name]; ok {
			return inputErrorf(ErrMalformedInput, i, "name", "duplicates participant %d", prev)
		}
		names[p.Name] = i

		if !p.Gender.Valid() {
			return inputErrorf(ErrUnknownCategory, i, "gender", "%s", p.Gender)
		}
		if !p.Preference.Valid() {
			return inputErrorf(ErrUnknownCategory, i, "preference", "%s", p.Preference)
		}
		if len(p.Responses) == 0 {
			return inputErrorf(ErrMalformedInput, i, "responses", "responses are required")
		}
		if len(p.Responses) != questions {
			return inputErrorf(ErrDimensionMismatch, i, "responses", "expected %d answers, got %d", questions, len(p.Responses))
		}
		for pos, r := range p.Responses {
			if r < 0 {
				return inputErrorf(ErrMalformedInput, i, "responses", "negative answer %d at question %d", r, pos)
			}
		}
	}

	return d.Distribution.Validate(questions)
}

// NamePair identifies two participants by name, independent of dataset order.
type NamePair struct {
	A string `json:"a"`
	B string `json:"b"`
}

// Normalized returns the pair with names in lexical order.
func (p NamePair) Normalized() NamePair {
	if p.B < p.A {
		return NamePair{A: p.B, B: p.A}
	}
	return p
}
