package model

import (
	"bytes"
	"encoding/json"
)

type StepsKind int

const (
	StepsAbsent StepsKind = iota
	StepsArray
	StepsObject
	StepsString
)

func (k StepsKind) String() string {
	switch k {
	case StepsArray:
		return "array"
	case StepsObject:
		return "object"
	case StepsString:
		return "string"
	default:
		return "absent"
	}
}

// StepsField captures the shapes the API has been seen to return for steps.
type StepsField struct {
	Kind StepsKind
	// Items holds array entries; non-string entries are kept as "".
	Items []string
	// Raw holds the unparsed text of the string branch.
	Raw string
}

func StepsOf(items ...string) StepsField {
	return StepsField{Kind: StepsArray, Items: append([]string(nil), items...)}
}

func (s *StepsField) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	*s = StepsField{}

	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	switch trimmed[0] {
	case '[':
		items, err := decodeStepItems(trimmed)
		if err != nil {
			return err
		}
		s.Kind = StepsArray
		s.Items = items
	case '{':
		s.Kind = StepsObject
	case '"':
		var raw string
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		s.Kind = StepsString
		s.Raw = raw
	default:
		s.Kind = StepsString
		s.Raw = string(trimmed)
	}

	return nil
}

func (s StepsField) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Normalize())
}

// Normalize returns the ordered step list. Arrays are used as-is, objects
// become empty, strings are parsed as a JSON array and fall back to empty.
func (s StepsField) Normalize() []string {
	switch s.Kind {
	case StepsArray:
		return append([]string{}, s.Items...)
	case StepsString:
		items, err := decodeStepItems([]byte(s.Raw))
		if err != nil {
			return []string{}
		}
		return items
	default:
		return []string{}
	}
}

func decodeStepItems(data []byte) ([]string, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	items := make([]string, 0, len(raw))
	for _, entry := range raw {
		var text string
		if err := json.Unmarshal(entry, &text); err != nil {
			text = ""
		}
		items = append(items, text)
	}

	return items, nil
}
