package character

import (
	"github.com/goccy/go-json"
)

// DefaultAbilityScore is assigned to every ability of a record created by an image upload.
const DefaultAbilityScore = 1

// Character is one character sheet. Optional numeric attributes are nil when unset,
// which is distinct from zero.
type Character struct {
	// ID is assigned at creation and never changes afterwards
	ID string `json:"id"`

	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`

	Age    *int     `json:"age,omitempty"`
	Height *float64 `json:"height,omitempty"`
	Weight *float64 `json:"weight,omitempty"`

	// Ability scores, each independently optional
	Str *int `json:"str,omitempty"`
	Dex *int `json:"dex,omitempty"`
	Con *int `json:"con,omitempty"`
	Int *int `json:"int,omitempty"`
	Wis *int `json:"wis,omitempty"`
	Cha *int `json:"cha,omitempty"`

	// Image is an encoded picture (data URL). Empty when none was uploaded.
	Image string `json:"image,omitempty"`

	// Extra holds attributes this version does not know about, kept verbatim
	// so a load-then-save round trip does not drop them.
	Extra map[string]json.RawMessage `json:"-"`
}

// Blank returns a nameless record with every ability score set to DefaultAbilityScore.
func Blank(id string) Character {
	return Character{
		ID:  id,
		Str: Int(DefaultAbilityScore),
		Dex: Int(DefaultAbilityScore),
		Con: Int(DefaultAbilityScore),
		Int: Int(DefaultAbilityScore),
		Wis: Int(DefaultAbilityScore),
		Cha: Int(DefaultAbilityScore),
	}
}

// FullName joins first and last name with a single space.
func (c Character) FullName() string {
	return c.FirstName + " " + c.LastName
}

// HasName reports whether both name fields are non-empty.
func (c Character) HasName() bool {
	return c.FirstName != "" && c.LastName != ""
}

// Clone returns a deep copy so callers can mutate it without aliasing the original.
func (c Character) Clone() Character {
	out := c
	out.Age = cloneInt(c.Age)
	out.Height = cloneFloat(c.Height)
	out.Weight = cloneFloat(c.Weight)
	out.Str = cloneInt(c.Str)
	out.Dex = cloneInt(c.Dex)
	out.Con = cloneInt(c.Con)
	out.Int = cloneInt(c.Int)
	out.Wis = cloneInt(c.Wis)
	out.Cha = cloneInt(c.Cha)
	if c.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(c.Extra))
		for k, v := range c.Extra {
			out.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out
}

// Ability names a single ability score.
type Ability string

const (
	Strength     Ability = "str"
	Dexterity    Ability = "dex"
	Constitution Ability = "con"
	Intelligence Ability = "int"
	Wisdom       Ability = "wis"
	Charisma     Ability = "cha"
)

// Abilities lists the ability scores in sheet order.
var Abilities = []Ability{Strength, Dexterity, Constitution, Intelligence, Wisdom, Charisma}

// Score returns the ability score for a, or nil if unset.
func (c Character) Score(a Ability) *int {
	switch a {
	case Strength:
		return c.Str
	case Dexterity:
		return c.Dex
	case Constitution:
		return c.Con
	case Intelligence:
		return c.Int
	case Wisdom:
		return c.Wis
	case Charisma:
		return c.Cha
	}
	return nil
}

// SetScore sets the ability score for a. A nil v unsets it.
func (c *Character) SetScore(a Ability, v *int) {
	switch a {
	case Strength:
		c.Str = v
	case Dexterity:
		c.Dex = v
	case Constitution:
		c.Con = v
	case Intelligence:
		c.Int = v
	case Wisdom:
		c.Wis = v
	case Charisma:
		c.Cha = v
	}
}

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
