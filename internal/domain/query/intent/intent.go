package intent

// Intent is the classified purpose of a user query.
type Intent string

// Intent constants.
const (
	// SearchSender looks for mail from a person or organization ("emails from John").
	SearchSender Intent = "search_sender"
	// SearchTopic looks for mail about a subject ("meeting emails").
	SearchTopic Intent = "search_topic"
	// SearchTimeframe looks for mail in a time window ("last week's emails").
	SearchTimeframe Intent = "search_timeframe"
	// SearchUrgent looks for important or time-sensitive mail.
	SearchUrgent Intent = "search_urgent"
	// SearchCategory looks for a kind of mail ("payment emails").
	SearchCategory Intent = "search_category"
	// SearchContent looks for mail mentioning specific text.
	SearchContent Intent = "search_content"
	// SearchAttachments looks for mail carrying files.
	SearchAttachments Intent = "search_attachments"
	// SearchUnread looks for mail not yet read.
	SearchUnread Intent = "search_unread"
	// AskSummary asks for an overview of recent mail.
	AskSummary Intent = "ask_summary"
	// AskAction asks what needs doing.
	AskAction Intent = "ask_action"
	// AskStatus asks for progress on something.
	AskStatus Intent = "ask_status"
	// General is the fallback when nothing else scores.
	General Intent = "general"
)

// Suggested result counts per intent.
const (
	DefaultTopK = 5
	summaryTopK = 10
	senderTopK  = 8
	actionTopK  = 7
	urgentTopK  = 6
)

// Catalogue returns the classifiable intents in evaluation order.
// Order matters: on equal confidence the earlier intent wins.
// General is not part of the catalogue, it is the fallback.
func Catalogue() []Intent {
	return []Intent{
		SearchSender,
		SearchTimeframe,
		SearchUrgent,
		SearchCategory,
		SearchTopic,
		AskSummary,
		AskAction,
		SearchAttachments,
		SearchUnread,
		AskStatus,
		SearchContent,
	}
}

// IsValid checks if the intent is one of the known values.
func (i Intent) IsValid() bool {
	if i == General {
		return true
	}
	for _, c := range Catalogue() {
		if c == i {
			return true
		}
	}
	return false
}

// String returns the wire name.
func (i Intent) String() string { return string(i) }

// SuggestedTopK returns how many results this kind of query usually needs.
func (i Intent) SuggestedTopK() int {
	switch i {
	case AskSummary:
		return summaryTopK
	case SearchSender:
		return senderTopK
	case AskAction:
		return actionTopK
	case SearchUrgent:
		return urgentTopK
	default:
		return DefaultTopK
	}
}
