package db

// ConditionKind selects how a Condition constrains a field.
type ConditionKind int

const (
	// CondTag matches a TAG field value exactly.
	CondTag ConditionKind = iota
	// CondRange bounds a NUMERIC field, inclusive.
	CondRange
	// CondContains matches TEXT field tokens containing a substring.
	CondContains
)

// Condition is one pre-filter clause. Conditions in a query are ANDed.
type Condition struct {
	Field string
	Kind  ConditionKind
	Value string
	Min   *float64
	Max   *float64
}

// TagEquals creates a TAG match condition.
func TagEquals(field, value string) Condition {
	return Condition{Field: field, Kind: CondTag, Value: value}
}

// AtLeast creates an inclusive lower-bound NUMERIC condition.
func AtLeast(field string, minValue float64) Condition {
	return Condition{Field: field, Kind: CondRange, Min: &minValue}
}

// Contains creates an infix TEXT condition.
func Contains(field, value string) Condition {
	return Condition{Field: field, Kind: CondContains, Value: value}
}
