package participant

import (
	"fmt"
	"strings"
)

// Gender is the closed set of gender identities a participant can declare.
type Gender int

const (
	GenderUnknown Gender = iota
	Male
	Female
	Nonbinary
)

// Preference is the closed set of accepted-gender categories.
// Bisexual means no restriction.
type Preference int

const (
	PreferenceUnknown Preference = iota
	Men
	Women
	Bisexual
)

var genderLabels = map[Gender]string{
	Male:      "Male",
	Female:    "Female",
	Nonbinary: "Nonbinary",
}

var preferenceLabels = map[Preference]string{
	Men:      "Men",
	Women:    "Women",
	Bisexual: "Bisexual",
}

// genderCategory maps each gender to the preference category that accepts it.
var genderCategory = map[Gender]Preference{
	Male:      Men,
	Female:    Women,
	Nonbinary: Bisexual,
}

func (g Gender) String() string {
	if label, ok := genderLabels[g]; ok {
		return label
	}
	return fmt.Sprintf("Gender(%d)", int(g))
}

// Valid reports whether g belongs to the closed set.
func (g Gender) Valid() bool {
	_, ok := genderLabels[g]
	return ok
}

func (p Preference) String() string {
	if label, ok := preferenceLabels[p]; ok {
		return label
	}
	return fmt.Sprintf("Preference(%d)", int(p))
}

// Valid reports whether p belongs to the closed set.
func (p Preference) Valid() bool {
	_, ok := preferenceLabels[p]
	return ok
}

// ParseGender converts a label into a Gender. Labels are matched case-insensitively.
func ParseGender(label string) (Gender, error) {
	trimmed := strings.TrimSpace(label)
	for g, l := range genderLabels {
		if strings.EqualFold(l, trimmed) {
			return g, nil
		}
	}
	return GenderUnknown, fmt.Errorf("%w: gender %q", ErrUnknownCategory, label)
}

// ParsePreference converts a label into a Preference. Labels are matched case-insensitively.
func ParsePreference(label string) (Preference, error) {
	trimmed := strings.TrimSpace(label)
	for p, l := range preferenceLabels {
		if strings.EqualFold(l, trimmed) {
			return p, nil
		}
	}
	return PreferenceUnknown, fmt.Errorf("%w: preference %q", ErrUnknownCategory, label)
}

// Accepts reports whether a participant with preference pref accepts a partner of gender g.
func Accepts(pref Preference, g Gender) (bool, error) {
	if !pref.Valid() {
		return false, fmt.Errorf("%w: %s", ErrUnknownCategory, pref)
	}
	category, ok := genderCategory[g]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownCategory, g)
	}
	return pref == Bisexual || category == pref, nil
}

func (g Gender) MarshalText() ([]byte, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, g)
	}
	return []byte(g.String()), nil
}

func (g *Gender) UnmarshalText(text []byte) error {
	parsed, err := ParseGender(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

func (p Preference) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, p)
	}
	return []byte(p.String()), nil
}

func (p *Preference) UnmarshalText(text []byte) error {
	parsed, err := ParsePreference(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
