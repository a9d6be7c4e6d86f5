package participant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGender(t *testing.T) {
	t.Parallel()

	tests := []struct {
		label  string
		expect Gender
	}{
		{label: "Male", expect: Male},
		{label: " female ", expect: Female},
		{label: "NONBINARY", expect: Nonbinary},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			t.Parallel()
			got, err := ParseGender(tt.label)
			require.NoError(t, err)
			assert.Equal(t, tt.expect, got)
		})
	}

	_, err := ParseGender("Robot")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestParsePreference(t *testing.T) {
	got, err := ParsePreference("bisexual")
	require.NoError(t, err)
	assert.Equal(t, Bisexual, got)

	_, err = ParsePreference("Everyone")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestAccepts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		pref   Preference
		gender Gender
		expect bool
	}{
		{name: "men accept male", pref: Men, gender: Male, expect: true},
		{name: "men reject female", pref: Men, gender: Female, expect: false},
		{name: "men reject nonbinary", pref: Men, gender: Nonbinary, expect: false},
		{name: "women accept female", pref: Women, gender: Female, expect: true},
		{name: "women reject male", pref: Women, gender: Male, expect: false},
		{name: "bisexual accepts male", pref: Bisexual, gender: Male, expect: true},
		{name: "bisexual accepts nonbinary", pref: Bisexual, gender: Nonbinary, expect: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Accepts(tt.pref, tt.gender)
			require.NoError(t, err)
			assert.Equal(t, tt.expect, got)
		})
	}
}

func TestAcceptsUnknownCategory(t *testing.T) {
	_, err := Accepts(PreferenceUnknown, Male)
	assert.ErrorIs(t, err, ErrUnknownCategory)

	_, err = Accepts(Men, Gender(42))
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestCategoryText(t *testing.T) {
	text, err := Nonbinary.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "Nonbinary", string(text))

	var p Preference
	require.NoError(t, p.UnmarshalText([]byte("women")))
	assert.Equal(t, Women, p)

	_, err = GenderUnknown.MarshalText()
	assert.ErrorIs(t, err, ErrUnknownCategory)
}
