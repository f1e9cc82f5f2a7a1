package character

// Upsert returns a new collection in which the record with c's id is replaced
// by c, or c is appended if no record has that id. The input is not modified.
func Upsert(chars []Character, c Character) []Character {
	out := make([]Character, 0, len(chars)+1)
	replaced := false
	for _, existing := range chars {
		if existing.ID == c.ID {
			out = append(out, c)
			replaced = true
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, c)
	}
	return out
}

// Remove returns a new collection without any record whose id is id.
func Remove(chars []Character, id string) []Character {
	out := make([]Character, 0, len(chars))
	for _, existing := range chars {
		if existing.ID != id {
			out = append(out, existing)
		}
	}
	return out
}

// Find returns the record with the given id. The empty id never matches:
// it is the "no selection" sentinel.
func Find(chars []Character, id string) (Character, bool) {
	if id == "" {
		return Character{}, false
	}
	for _, c := range chars {
		if c.ID == id {
			return c, true
		}
	}
	return Character{}, false
}
