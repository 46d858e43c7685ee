package analysis

import (
	"strings"

	"github.com/kailas-cloud/mailsense/internal/domain/query/intent"
)

var contextFamilies = []keywordFamily{
	{"school", []string{"homework", "assignment", "class", "teacher", "education", "study"}},
	{"work", []string{"project", "deadline", "meeting", "colleague", "boss", "client"}},
	{"finance", []string{"payment", "invoice", "bill", "bank", "money", "cost"}},
	{"health", []string{"appointment", "doctor", "medical", "health", "clinic"}},
	{"travel", []string{"flight", "hotel", "trip", "vacation", "booking"}},
	{"shopping", []string{"order", "delivery", "purchase", "buy", "sale"}},
}

var intentFocus = map[intent.Intent]string{
	intent.SearchSender: "Focus: Communications from specific person/organization",
	intent.AskAction:    "Focus: Actionable items and tasks requiring response",
	intent.SearchUrgent: "Focus: High-priority and time-sensitive communications",
}

// ExpandContext builds the human-readable context note for a query.
// An empty timeframe description is skipped.
func ExpandContext(query string, in intent.Intent, timeframe string) string {
	var parts []string

	if family, ok := firstFamily(strings.ToLower(query), contextFamilies); ok {
		parts = append(parts, "Context: "+family+"-related communication")
	}
	if focus, ok := intentFocus[in]; ok {
		parts = append(parts, focus)
	}
	if timeframe != "" {
		parts = append(parts, "Timeframe: "+timeframe)
	}

	return strings.Join(parts, " | ")
}
