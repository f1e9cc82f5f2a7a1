package manager

import (
	"strconv"
	"strings"

	"github.com/hpungsan/charsheet/internal/character"
)

// Texts shown when no character is selected.
const (
	Placeholder        = "--"
	NoSelectionTitle   = "No Character Selected"
	NoSelectionSummary = "Select or Create your Character"
)

// Display is the read-only view of the current character.
type Display struct {
	Selected bool   `json:"selected"`
	Greeting string `json:"greeting"`
	// Summary is markdown.
	Summary string         `json:"summary"`
	Age     string         `json:"age"`
	Height  string         `json:"height"`
	Weight  string         `json:"weight"`
	Scores  []ScoreDisplay `json:"scores"`
	// Image is the picture card content, "" for none.
	Image string `json:"image,omitempty"`
}

// ScoreDisplay is one formatted ability score.
type ScoreDisplay struct {
	Ability character.Ability `json:"ability"`
	Value   string            `json:"value"`
}

// Score returns the formatted value for a, or Placeholder if a is not shown.
func (d Display) Score(a character.Ability) string {
	for _, s := range d.Scores {
		if s.Ability == a {
			return s.Value
		}
	}
	return Placeholder
}

// BuildDisplay computes the read-only view for c. A nil c is the no-selection state.
func BuildDisplay(c *character.Character) Display {
	scores := make([]ScoreDisplay, 0, len(character.Abilities))
	if c == nil {
		for _, a := range character.Abilities {
			scores = append(scores, ScoreDisplay{Ability: a, Value: Placeholder})
		}
		return Display{
			Greeting: NoSelectionTitle,
			Summary:  NoSelectionSummary,
			Age:      Placeholder,
			Height:   Placeholder,
			Weight:   Placeholder,
			Scores:   scores,
		}
	}

	for _, a := range character.Abilities {
		scores = append(scores, ScoreDisplay{Ability: a, Value: displayInt(c.Score(a))})
	}
	name := c.FullName()
	return Display{
		Selected: true,
		Greeting: name + "!",
		Summary:  "### Character Details\n\n" + escapeMarkdown(name) + " is ready for an adventure!",
		Age:      displayInt(c.Age),
		Height:   displayFloat(c.Height),
		Weight:   displayFloat(c.Weight),
		Scores:   scores,
		Image:    c.Image,
	}
}

// markdownPunct is the ASCII punctuation markdown allows to be backslash-escaped.
const markdownPunct = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// escapeMarkdown makes s render as literal text in markdown.
func escapeMarkdown(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(markdownPunct, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// BuildForm mirrors c into form inputs. Unset numerics and a nil c give empty inputs.
func BuildForm(c *character.Character) FormValues {
	if c == nil {
		return FormValues{}
	}
	return FormValues{
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Age:       formInt(c.Age),
		Height:    formFloat(c.Height),
		Weight:    formFloat(c.Weight),
		Str:       formInt(c.Str),
		Dex:       formInt(c.Dex),
		Con:       formInt(c.Con),
		Int:       formInt(c.Int),
		Wis:       formInt(c.Wis),
		Cha:       formInt(c.Cha),
	}
}

// buildList returns the sentinel entry followed by one entry per character, in order.
func buildList(chars []character.Character, currentID string) []ListOption {
	options := make([]ListOption, 0, len(chars)+1)
	options = append(options, ListOption{Label: NoSelectionLabel, Selected: currentID == ""})
	for _, c := range chars {
		options = append(options, ListOption{
			ID:       c.ID,
			Label:    c.FullName(),
			Selected: currentID != "" && c.ID == currentID,
		})
	}
	return options
}

func displayInt(v *int) string {
	if v == nil {
		return Placeholder
	}
	return strconv.Itoa(*v)
}

func displayFloat(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}

func formInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
