package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Type is an entity family name.
type Type string

// Entity types in extraction order.
const (
	Names     Type = "names"
	Companies Type = "companies"
	Dates     Type = "dates"
	Amounts   Type = "amounts"
	Times     Type = "times"
	Emails    Type = "emails"
)

// Types returns all entity types in extraction order.
func Types() []Type {
	return []Type{Names, Companies, Dates, Amounts, Times, Emails}
}

// Entry is one entity family with its values in order of appearance.
type Entry struct {
	Type   Type
	Values []string
}

// Bag holds extracted entities. A type is present only if it has at least one value.
type Bag struct {
	entries []Entry
}

// NewBag creates a Bag, dropping entries without values. Values are copied.
func NewBag(entries ...Entry) Bag {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if len(e.Values) == 0 {
			continue
		}
		vals := make([]string, len(e.Values))
		copy(vals, e.Values)
		out = append(out, Entry{Type: e.Type, Values: vals})
	}
	return Bag{entries: out}
}

// IsEmpty reports whether no entity was found.
func (b Bag) IsEmpty() bool { return len(b.entries) == 0 }

// Has reports whether the bag contains the type.
func (b Bag) Has(t Type) bool {
	for _, e := range b.entries {
		if e.Type == t {
			return true
		}
	}
	return false
}

// Values returns a copy of the values for t, nil if absent.
func (b Bag) Values(t Type) []string {
	for _, e := range b.entries {
		if e.Type == t {
			vals := make([]string, len(e.Values))
			copy(vals, e.Values)
			return vals
		}
	}
	return nil
}

// Entries returns a copy of all entries in insertion order.
func (b Bag) Entries() []Entry {
	out := make([]Entry, len(b.entries))
	for i, e := range b.entries {
		vals := make([]string, len(e.Values))
		copy(vals, e.Values)
		out[i] = Entry{Type: e.Type, Values: vals}
	}
	return out
}

// MarshalJSON encodes the bag as an object, keys in insertion order.
func (b Bag) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range b.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(e.Type))
		if err != nil {
			return nil, fmt.Errorf("marshal entity type: %w", err)
		}
		vals, err := json.Marshal(e.Values)
		if err != nil {
			return nil, fmt.Errorf("marshal %s values: %w", e.Type, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(vals)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object of type -> values. Known types keep extraction order.
func (b *Bag) UnmarshalJSON(data []byte) error {
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal entities: %w", err)
	}
	entries := make([]Entry, 0, len(raw))
	for _, t := range Types() {
		if vals, ok := raw[string(t)]; ok {
			entries = append(entries, Entry{Type: t, Values: vals})
		}
	}
	*b = NewBag(entries...)
	return nil
}
