package participant

// QuestionDistribution counts, for each question position, how many participants gave
// each response value.
type QuestionDistribution []map[int]int

// BuildDistribution counts responses over the whole population.
func BuildDistribution(participants []*Participant) QuestionDistribution {
	if len(participants) == 0 {
		return QuestionDistribution{}
	}

	dist := make(QuestionDistribution, len(participants[0].Responses))
	for i := range dist {
		dist[i] = make(map[int]int)
	}

	for _, p := range participants {
		for pos, r := range p.Responses {
			if pos >= len(dist) {
				break
			}
			dist[pos][r]++
		}
	}

	return dist
}

// Count returns how many participants answered value at question pos.
func (d QuestionDistribution) Count(pos, value int) int {
	if pos < 0 || pos >= len(d) {
		return 0
	}
	return d[pos][value]
}

// Validate reports ErrDimensionMismatch unless every question position is covered.
func (d QuestionDistribution) Validate(questions int) error {
	if len(d) != questions {
		return inputErrorf(ErrDimensionMismatch, -1, "distribution", "covers %d questions, responses have %d", len(d), questions)
	}
	for pos, counts := range d {
		if counts == nil {
			return inputErrorf(ErrDimensionMismatch, -1, "distribution", "question %d has no counts", pos)
		}
		for value, count := range counts {
			if count < 0 {
				return inputErrorf(ErrMalformedInput, -1, "distribution", "question %d: negative count %d for answer %d", pos, count, value)
			}
		}
	}
	return nil
}
