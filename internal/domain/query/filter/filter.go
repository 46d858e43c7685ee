package filter

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the ISO date format used by date_after.
const DateLayout = "2006-01-02"

// Category is a coarse mail category.
type Category string

// Category constants.
const (
	Financial Category = "financial"
	Meeting   Category = "meeting"
	Task      Category = "task"
	Urgent    Category = "urgent"
)

// IsValid checks if the category is one of the known values.
func (c Category) IsValid() bool {
	return c == Financial || c == Meeting || c == Task || c == Urgent
}

// Metadata narrows retrieval candidates. Zero fields mean "no constraint".
type Metadata struct {
	FromContains  string   `json:"from_contains,omitempty"`
	DateAfter     string   `json:"date_after,omitempty"`
	Category      Category `json:"category,omitempty"`
	MinImportance int      `json:"min_importance,omitempty"`
}

// IsEmpty reports whether no constraint is set.
func (m Metadata) IsEmpty() bool {
	return m == Metadata{}
}

// Validate checks values against the closed vocabulary.
func (m Metadata) Validate() error {
	if m.FromContains != "" && m.FromContains != strings.ToLower(m.FromContains) {
		return fmt.Errorf("from_contains must be lowercase, got %q", m.FromContains)
	}
	if m.DateAfter != "" {
		if _, err := time.Parse(DateLayout, m.DateAfter); err != nil {
			return fmt.Errorf("date_after must be YYYY-MM-DD, got %q", m.DateAfter)
		}
	}
	if m.Category != "" && !m.Category.IsValid() {
		return fmt.Errorf("invalid category %q", m.Category)
	}
	if m.MinImportance < 0 {
		return fmt.Errorf("min_importance must be >= 0, got %d", m.MinImportance)
	}
	return nil
}

// Merge returns m with every constraint set in over applied on top.
func (m Metadata) Merge(over Metadata) Metadata {
	out := m
	if over.FromContains != "" {
		out.FromContains = over.FromContains
	}
	if over.DateAfter != "" {
		out.DateAfter = over.DateAfter
	}
	if over.Category != "" {
		out.Category = over.Category
	}
	if over.MinImportance > 0 {
		out.MinImportance = over.MinImportance
	}
	return out
}

// DateAfterTime parses DateAfter in loc. Returns false when unset or malformed.
func (m Metadata) DateAfterTime(loc *time.Location) (time.Time, bool) {
	if m.DateAfter == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, m.DateAfter, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Pair is one rendered constraint.
type Pair struct {
	Key   string
	Value string
}

// Pairs returns the set constraints in a fixed key order.
func (m Metadata) Pairs() []Pair {
	var out []Pair
	if m.FromContains != "" {
		out = append(out, Pair{Key: "from_contains", Value: m.FromContains})
	}
	if m.DateAfter != "" {
		out = append(out, Pair{Key: "date_after", Value: m.DateAfter})
	}
	if m.Category != "" {
		out = append(out, Pair{Key: "category", Value: string(m.Category)})
	}
	if m.MinImportance > 0 {
		out = append(out, Pair{Key: "min_importance", Value: strconv.Itoa(m.MinImportance)})
	}
	return out
}
