package manager

import (
	"math"
	"strconv"
	"strings"

	"github.com/hpungsan/charsheet/internal/character"
)

// Form input names, as submitted by the HTML form.
const (
	FieldFirstName = "firstName"
	FieldLastName  = "lastName"
	FieldAge       = "age"
	FieldHeight    = "height"
	FieldWeight    = "weight"
)

// FormValues is the raw text of every form input.
type FormValues struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Age       string `json:"age"`
	Height    string `json:"height"`
	Weight    string `json:"weight"`
	Str       string `json:"str"`
	Dex       string `json:"dex"`
	Con       string `json:"con"`
	Int       string `json:"int"`
	Wis       string `json:"wis"`
	Cha       string `json:"cha"`
}

// FormFromLookup reads each input by its form name, e.g. from http.Request.PostFormValue.
func FormFromLookup(get func(name string) string) FormValues {
	return FormValues{
		FirstName: get(FieldFirstName),
		LastName:  get(FieldLastName),
		Age:       get(FieldAge),
		Height:    get(FieldHeight),
		Weight:    get(FieldWeight),
		Str:       get(string(character.Strength)),
		Dex:       get(string(character.Dexterity)),
		Con:       get(string(character.Constitution)),
		Int:       get(string(character.Intelligence)),
		Wis:       get(string(character.Wisdom)),
		Cha:       get(string(character.Charisma)),
	}
}

// Score returns the raw input for ability a.
func (f FormValues) Score(a character.Ability) string {
	switch a {
	case character.Strength:
		return f.Str
	case character.Dexterity:
		return f.Dex
	case character.Constitution:
		return f.Con
	case character.Intelligence:
		return f.Int
	case character.Wisdom:
		return f.Wis
	case character.Charisma:
		return f.Cha
	}
	return ""
}

// ParseForm builds a character from form text. ID and Image are left empty.
// Empty or non-numeric numeric inputs are unset.
func ParseForm(f FormValues) character.Character {
	c := character.Character{
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Age:       parseInt(f.Age),
		Height:    parseFloat(f.Height),
		Weight:    parseFloat(f.Weight),
	}
	for _, a := range character.Abilities {
		c.SetScore(a, parseInt(f.Score(a)))
	}
	return c
}

// parseInt accepts integers and truncates decimals ("12.7" is 12).
func parseInt(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if v, err := strconv.Atoi(s); err == nil {
		return &v
	}
	f := parseFloat(s)
	if f == nil || math.Abs(*f) > math.MaxInt32 {
		return nil
	}
	v := int(math.Trunc(*f))
	return &v
}

func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
