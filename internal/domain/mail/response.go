package mail

import (
	"github.com/kailas-cloud/mailsense/internal/domain/query/entity"
	"github.com/kailas-cloud/mailsense/internal/domain/query/intent"
)

// FetchMetadata describes how retrieval produced the citations.
type FetchMetadata struct {
	TopK     int    `json:"top_k"`
	Mode     string `json:"mode"`
	Total    int    `json:"total"`
	Filtered bool   `json:"filtered"`
}

// Response is a retrieval result, optionally annotated with query intelligence.
type Response struct {
	Citations    []Citation    `json:"citations"`
	ResponseTime float64       `json:"response_time"`
	Metadata     FetchMetadata `json:"metadata"`

	SenderBreakdown   map[string]int `json:"sender_breakdown,omitempty"`
	QueryIntelligence *Intelligence  `json:"query_intelligence,omitempty"`
	Debug             string         `json:"debug,omitempty"`
}

// Intelligence is the interpretation attached to an answered query.
type Intelligence struct {
	OriginalQuery  string        `json:"original_query"`
	EnhancedQuery  string        `json:"enhanced_query"`
	Intent         intent.Intent `json:"intent"`
	Confidence     float64       `json:"confidence"`
	Entities       entity.Bag    `json:"extracted_entities"`
	Context        string        `json:"context"`
	Strategy       string        `json:"strategy"`
	ProcessingTime float64       `json:"processing_time"`
}

// Hits is one page of index search results.
type Hits struct {
	Citations []Citation
	Total     int
}
