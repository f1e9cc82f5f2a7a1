package manager

import (
	"net/url"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"github.com/hpungsan/charsheet/internal/character"
)

func TestParseForm_Numerics(t *testing.T) {
	tests := []struct {
		name   string
		age    string
		height string
		str    string
		want   character.Character
	}{
		{
			name: "empty is unset",
			want: character.Character{},
		},
		{
			name:   "valid values",
			age:    "30",
			height: "1.8",
			str:    "12",
			want:   character.Character{Age: character.Int(30), Height: character.Float(1.8), Str: character.Int(12)},
		},
		{
			name:   "zero is kept",
			age:    "0",
			height: "0",
			str:    "0",
			want:   character.Character{Age: character.Int(0), Height: character.Float(0), Str: character.Int(0)},
		},
		{
			name:   "surrounding space",
			age:    " 7 ",
			height: " 2 ",
			want:   character.Character{Age: character.Int(7), Height: character.Float(2)},
		},
		{
			name: "decimal truncates for integers",
			age:  "12.9",
			str:  "-3.5",
			want: character.Character{Age: character.Int(12), Str: character.Int(-3)},
		},
		{
			name:   "non-numeric is unset",
			age:    "old",
			height: "tall",
			str:    "12abc",
			want:   character.Character{},
		},
		{
			name:   "non-finite is unset",
			height: "NaN",
			age:    "Inf",
			want:   character.Character{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseForm(FormValues{Age: tt.age, Height: tt.height, Str: tt.str})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseForm_Names(t *testing.T) {
	got := ParseForm(FormValues{FirstName: " Ana", LastName: "Ruiz "})
	assert.Equal(t, " Ana", got.FirstName)
	assert.Equal(t, "Ruiz ", got.LastName)
	assert.Empty(t, got.ID)
	assert.Empty(t, got.Image)
}

func TestFormFromLookup(t *testing.T) {
	v := url.Values{
		"firstName": {"Ana"},
		"lastName":  {"Ruiz"},
		"weight":    {"60"},
		"int":       {"16"},
		"cha":       {"9"},
	}

	got := FormFromLookup(v.Get)
	assert.Equal(t, FormValues{FirstName: "Ana", LastName: "Ruiz", Weight: "60", Int: "16", Cha: "9"}, got)
	assert.Equal(t, "16", got.Score(character.Intelligence))
}

func TestParseForm_NeverPanics(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("arbitrary text parses to a value or unset", prop.ForAll(
		func(s string) bool {
			c := ParseForm(FormValues{Age: s, Height: s, Str: s})
			return (c.Age == nil) == (c.Str == nil)
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
