package analysis

import (
	"strings"

	"github.com/kailas-cloud/mailsense/internal/domain/query/entity"
	"github.com/kailas-cloud/mailsense/internal/domain/query/filter"
	"github.com/kailas-cloud/mailsense/internal/domain/query/intent"
)

// urgentMinImportance is the importance floor for urgency queries.
const urgentMinImportance = 4

var categoryFamilies = []keywordFamily{
	{string(filter.Financial), []string{"payment", "invoice", "bill", "money"}},
	{string(filter.Meeting), []string{"meeting", "appointment", "calendar"}},
	{string(filter.Task), []string{"task", "homework", "assignment"}},
	{string(filter.Urgent), []string{"urgent", "important", "critical"}},
}

// FilterBuilder derives retrieval filters from a classified query.
type FilterBuilder struct {
	timeframes *TimeframeResolver
}

// NewFilterBuilder creates a builder resolving timeframes with r.
func NewFilterBuilder(r *TimeframeResolver) *FilterBuilder {
	return &FilterBuilder{timeframes: r}
}

// Build returns the filters driven by the single intent in.
func (b *FilterBuilder) Build(query string, entities entity.Bag, in intent.Intent) filter.Metadata {
	var m filter.Metadata

	switch in {
	case intent.SearchSender:
		if names := entities.Values(entity.Names); len(names) > 0 {
			m.FromContains = strings.ToLower(names[0])
		}
	case intent.SearchTimeframe:
		if tf, ok := b.timeframes.Resolve(query); ok {
			m.DateAfter = tf.DateAfter
		}
	case intent.SearchCategory:
		if c, ok := DetectCategory(query); ok {
			m.Category = c
		}
	case intent.SearchUrgent:
		m.MinImportance = urgentMinImportance
	}

	return m
}

// DetectCategory returns the first category whose keywords appear in text.
func DetectCategory(text string) (filter.Category, bool) {
	v, ok := firstFamily(strings.ToLower(text), categoryFamilies)
	return filter.Category(v), ok
}
