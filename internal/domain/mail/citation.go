package mail

import "github.com/kailas-cloud/mailsense/internal/domain/query/entity"

// Citation is one retrieved message. The first six fields come from retrieval;
// the rest are annotations added by re-ranking strategies.
type Citation struct {
	ID      string  `json:"id"`
	From    string  `json:"from"`
	Subject string  `json:"subject"`
	Date    string  `json:"date,omitempty"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`

	ActionScore         *int          `json:"action_score,omitempty"`
	UrgencyScore        *int          `json:"urgency_score,omitempty"`
	UrgencyIndicators   []string      `json:"urgency_indicators,omitempty"`
	HighlightedEntities []EntityMatch `json:"highlighted_entities,omitempty"`
}

// EntityMatch is an extracted entity found in a citation.
type EntityMatch struct {
	Type  entity.Type `json:"type"`
	Value string      `json:"value"`
}
