package character

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// knownFields are the attribute names owned by Character's struct tags.
var knownFields = map[string]bool{
	"id": true, "firstName": true, "lastName": true,
	"age": true, "height": true, "weight": true,
	"str": true, "dex": true, "con": true, "int": true, "wis": true, "cha": true,
	"image": true,
}

// plain has Character's fields without its methods, so marshaling it does not recurse.
type plain Character

// MarshalJSON encodes the record, merging Extra attributes back in.
func (c Character) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(plain(c))
	if err != nil {
		return nil, err
	}
	if len(c.Extra) == 0 {
		return data, nil
	}

	merged := make(map[string]json.RawMessage, len(knownFields)+len(c.Extra))
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for k, v := range c.Extra {
		if knownFields[k] {
			continue
		}
		merged[k] = v
	}
	return json.Marshal(merged)
}

// UnmarshalJSON decodes the record, keeping unknown attributes in Extra.
func (c *Character) UnmarshalJSON(data []byte) error {
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	var extra map[string]json.RawMessage
	for k, v := range all {
		if knownFields[k] {
			continue
		}
		if extra == nil {
			extra = make(map[string]json.RawMessage)
		}
		extra[k] = append(json.RawMessage(nil), v...)
	}
	p.Extra = extra

	*c = Character(p)
	return nil
}

// EncodeList serializes an ordered collection into one blob.
func EncodeList(chars []Character) ([]byte, error) {
	if chars == nil {
		chars = []Character{}
	}
	data, err := json.Marshal(chars)
	if err != nil {
		return nil, fmt.Errorf("encode characters: %w", err)
	}
	return data, nil
}

// DecodeList deserializes a blob produced by EncodeList. An empty blob yields
// an empty collection; anything that is not a JSON array of records is an error.
func DecodeList(data []byte) ([]Character, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []Character{}, nil
	}

	var chars []Character
	if err := json.Unmarshal(trimmed, &chars); err != nil {
		return nil, fmt.Errorf("decode characters: %w", err)
	}
	if chars == nil {
		chars = []Character{}
	}
	return chars, nil
}
