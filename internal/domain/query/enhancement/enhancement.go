package enhancement

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kailas-cloud/mailsense/internal/domain/query/entity"
	"github.com/kailas-cloud/mailsense/internal/domain/query/filter"
	"github.com/kailas-cloud/mailsense/internal/domain/query/intent"
)

// Fallback values for blank queries.
const (
	FallbackQuery      = "recent emails"
	FallbackConfidence = 0.1
	FallbackContext    = "General email search"
)

// Enhancement is the structured interpretation of a query. It is immutable once built.
type Enhancement struct {
	originalQuery    string
	enhancedQuery    string
	intent           intent.Intent
	confidence       float64
	entities         entity.Bag
	filters          filter.Metadata
	suggestedTopK    int
	contextExpansion string
}

// New creates an Enhancement. suggestedTopK below the intent default is raised to it.
func New(
	original, enhanced string,
	in intent.Intent, confidence float64,
	entities entity.Bag, filters filter.Metadata,
	suggestedTopK int, contextExpansion string,
) Enhancement {
	if suggestedTopK < intent.DefaultTopK {
		suggestedTopK = intent.DefaultTopK
	}
	return Enhancement{
		originalQuery:    original,
		enhancedQuery:    enhanced,
		intent:           in,
		confidence:       confidence,
		entities:         entities,
		filters:          filters,
		suggestedTopK:    suggestedTopK,
		contextExpansion: contextExpansion,
	}
}

// Fallback creates the enhancement used for blank input.
func Fallback(original string) Enhancement {
	return New(
		original, FallbackQuery,
		intent.General, FallbackConfidence,
		entity.Bag{}, filter.Metadata{},
		intent.DefaultTopK, FallbackContext,
	)
}

// OriginalQuery returns the query as analysed.
func (e Enhancement) OriginalQuery() string { return e.originalQuery }

// EnhancedQuery returns the augmented query text.
func (e Enhancement) EnhancedQuery() string { return e.enhancedQuery }

// Intent returns the classified intent.
func (e Enhancement) Intent() intent.Intent { return e.intent }

// Confidence returns the classification confidence.
func (e Enhancement) Confidence() float64 { return e.confidence }

// Entities returns the extracted entities.
func (e Enhancement) Entities() entity.Bag { return e.entities }

// MetadataFilters returns the derived retrieval filters.
func (e Enhancement) MetadataFilters() filter.Metadata { return e.filters }

// SuggestedTopK returns the recommended result count.
func (e Enhancement) SuggestedTopK() int { return e.suggestedTopK }

// ContextExpansion returns the human-readable context note.
func (e Enhancement) ContextExpansion() string { return e.contextExpansion }

type enhancementJSON struct {
	OriginalQuery    string          `json:"original_query"`
	EnhancedQuery    string          `json:"enhanced_query"`
	Intent           intent.Intent   `json:"intent"`
	Confidence       float64         `json:"confidence"`
	Entities         entity.Bag      `json:"entities"`
	MetadataFilters  filter.Metadata `json:"metadata_filters"`
	SuggestedTopK    int             `json:"suggested_top_k"`
	ContextExpansion string          `json:"context_expansion"`
}

// MarshalJSON encodes all fields with snake_case keys.
func (e Enhancement) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(enhancementJSON{
		OriginalQuery:    e.originalQuery,
		EnhancedQuery:    e.enhancedQuery,
		Intent:           e.intent,
		Confidence:       e.confidence,
		Entities:         e.entities,
		MetadataFilters:  e.filters,
		SuggestedTopK:    e.suggestedTopK,
		ContextExpansion: e.contextExpansion,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal enhancement: %w", err)
	}
	return data, nil
}

// Summary renders every field for debugging, one per line.
func (e Enhancement) Summary() string {
	lines := []string{
		"Original: " + e.originalQuery,
		"Enhanced: " + e.enhancedQuery,
		fmt.Sprintf("Intent: %s (%.1f%% confidence)", e.intent, e.confidence*100),
		fmt.Sprintf("Suggested results: %d", e.suggestedTopK),
	}

	if !e.entities.IsEmpty() {
		parts := make([]string, 0, len(e.entities.Entries()))
		for _, en := range e.entities.Entries() {
			parts = append(parts, fmt.Sprintf("%s: %s", en.Type, strings.Join(en.Values, ", ")))
		}
		lines = append(lines, "Entities: "+strings.Join(parts, " | "))
	}

	if pairs := e.filters.Pairs(); len(pairs) > 0 {
		parts := make([]string, len(pairs))
		for i, p := range pairs {
			parts[i] = p.Key + "=" + p.Value
		}
		lines = append(lines, "Filters: "+strings.Join(parts, ", "))
	}

	if e.contextExpansion != "" {
		lines = append(lines, "Context: "+e.contextExpansion)
	}

	return strings.Join(lines, "\n")
}
