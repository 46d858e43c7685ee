package analysis

import (
	"strings"

	"github.com/kailas-cloud/mailsense/internal/domain/query/entity"
	"github.com/kailas-cloud/mailsense/internal/domain/query/intent"
)

var categorySynonyms = []keywordFamily{
	{" money financial cost charge fee payment invoice bill due amount", []string{"payment", "invoice", "bill"}},
	{" meeting conference call schedule calendar appointment invite", []string{"meeting", "appointment"}},
	{" task todo action homework assignment complete finish submit", []string{"task", "homework", "assignment"}},
	{" urgent important critical priority deadline asap emergency", []string{"urgent", "important"}},
}

var intentTails = map[intent.Intent]string{
	intent.SearchUrgent: " urgent important critical priority deadline",
	intent.AskAction:    " action required todo task pending response needed",
	intent.AskSummary:   " update status progress report summary",
}

// EnhanceQuery appends intent-specific search terms and any extracted name
// not already present in the text.
func EnhanceQuery(query string, in intent.Intent, entities entity.Bag) string {
	enhanced := query

	if in == intent.SearchCategory {
		if tail, ok := firstFamily(strings.ToLower(query), categorySynonyms); ok {
			enhanced += tail
		}
	} else {
		enhanced += intentTails[in]
	}

	for _, name := range entities.Values(entity.Names) {
		if !strings.Contains(strings.ToLower(enhanced), strings.ToLower(name)) {
			enhanced += " " + name
		}
	}

	return strings.TrimSpace(enhanced)
}
