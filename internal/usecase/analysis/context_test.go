package analysis

import (
	"testing"

	"github.com/kailas-cloud/mailsense/internal/domain/query/intent"
)

func TestExpandContext(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		in        intent.Intent
		timeframe string
		want      string
	}{
		{"family and focus", "urgent deadline", intent.SearchUrgent, "",
			"Context: work-related communication | Focus: High-priority and time-sensitive communications"},
		{"first family wins", "homework payment", intent.SearchCategory, "",
			"Context: school-related communication"},
		{"sender focus only", "emails from John", intent.SearchSender, "",
			"Focus: Communications from specific person/organization"},
		{"action focus", "what should i reply", intent.AskAction, "",
			"Focus: Actionable items and tasks requiring response"},
		{"timeframe", "flight emails from last week", intent.SearchTimeframe, "last week",
			"Context: travel-related communication | Timeframe: last week"},
		{"nothing", "hello", intent.General, "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExpandContext(tc.query, tc.in, tc.timeframe); got != tc.want {
				t.Errorf("ExpandContext() = %q, want %q", got, tc.want)
			}
		})
	}
}
