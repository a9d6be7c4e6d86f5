package participant

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// datasetFile is the on-disk layout. "users" and "question_distribution" are accepted
// for files produced by the survey export.
type datasetFile struct {
	Participants         []map[string]any `json:"participants"`
	Users                []map[string]any `json:"users"`
	QuestionDistribution []map[string]any `json:"questionDistribution"`
	LegacyDistribution   []map[string]any `json:"question_distribution"`
}

// record mirrors one participant entry. Pointers tell a missing attribute from a zero value.
// Survey exports name the preference attribute "preferences".
type record struct {
	Name        *string `mapstructure:"name"`
	Gender      *string `mapstructure:"gender"`
	Preference  *string `mapstructure:"preference"`
	Preferences *string `mapstructure:"preferences"`
	GradYear    *int    `mapstructure:"gradYear"`
	Responses   []int   `mapstructure:"responses"`
}

// LoadFile reads a dataset from a JSON file. When the file carries no question
// distribution it is computed from the participants.
func LoadFile(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	dec := json.NewDecoder(file)
	dec.UseNumber()

	var raw datasetFile
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode dataset %q: %w", path, err)
	}

	return fromFile(&raw)
}

func fromFile(raw *datasetFile) (*Dataset, error) {
	items := raw.Participants
	if len(items) == 0 {
		items = raw.Users
	}

	participants, err := decodeParticipants(items)
	if err != nil {
		return nil, err
	}

	distItems := raw.QuestionDistribution
	if len(distItems) == 0 {
		distItems = raw.LegacyDistribution
	}

	var dist QuestionDistribution
	if len(distItems) == 0 {
		dist = BuildDistribution(participants)
	} else {
		dist, err = decodeDistribution(distItems)
		if err != nil {
			return nil, err
		}
	}

	return &Dataset{Participants: participants, Distribution: dist}, nil
}

func decodeParticipants(items []map[string]any) ([]*Participant, error) {
	if len(items) == 0 {
		return nil, inputErrorf(ErrMalformedInput, -1, "participants", "no participants found")
	}

	participants := make([]*Participant, 0, len(items))
	for i, item := range items {
		var rec record
		if err := mapstructure.Decode(item, &rec); err != nil {
			return nil, &InputError{Index: i, Field: "record", Err: ErrMalformedInput, Msg: err.Error()}
		}

		p, err := rec.toParticipant(i)
		if err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}

	return participants, nil
}

func (r *record) toParticipant(index int) (*Participant, error) {
	if r.Preference == nil {
		r.Preference = r.Preferences
	}

	switch {
	case r.Name == nil || strings.TrimSpace(*r.Name) == "":
		return nil, inputErrorf(ErrMalformedInput, index, "name", "attribute is missing")
	case r.Gender == nil:
		return nil, inputErrorf(ErrMalformedInput, index, "gender", "attribute is missing")
	case r.Preference == nil:
		return nil, inputErrorf(ErrMalformedInput, index, "preference", "attribute is missing")
	case r.GradYear == nil:
		return nil, inputErrorf(ErrMalformedInput, index, "gradYear", "attribute is missing")
	case r.Responses == nil:
		return nil, inputErrorf(ErrMalformedInput, index, "responses", "attribute is missing")
	}

	gender, err := ParseGender(*r.Gender)
	if err != nil {
		return nil, &InputError{Index: index, Field: "gender", Err: ErrUnknownCategory, Msg: *r.Gender}
	}

	pref, err := ParsePreference(*r.Preference)
	if err != nil {
		return nil, &InputError{Index: index, Field: "preference", Err: ErrUnknownCategory, Msg: *r.Preference}
	}

	return &Participant{
		Index:      index,
		Name:       strings.TrimSpace(*r.Name),
		Gender:     gender,
		Preference: pref,
		GradYear:   *r.GradYear,
		Responses:  r.Responses,
	}, nil
}

func decodeDistribution(items []map[string]any) (QuestionDistribution, error) {
	dist := make(QuestionDistribution, 0, len(items))
	for pos, item := range items {
		var counts map[string]int
		if err := mapstructure.Decode(item, &counts); err != nil {
			return nil, inputErrorf(ErrMalformedInput, -1, "distribution", "question %d: %v", pos, err)
		}

		parsed := make(map[int]int, len(counts))
		for key, count := range counts {
			value, err := strconv.Atoi(strings.TrimSpace(key))
			if err != nil {
				return nil, inputErrorf(ErrMalformedInput, -1, "distribution", "question %d: response value %q is not an integer", pos, key)
			}
			parsed[value] = count
		}
		dist = append(dist, parsed)
	}

	return dist, nil
}
