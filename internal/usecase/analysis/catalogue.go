package analysis

import (
	"regexp"
	"strings"

	"github.com/kailas-cloud/mailsense/internal/domain/query/intent"
)

// intentPatterns binds an intent to the patterns that vote for it.
// Patterns are evaluated against the lowercased query.
type intentPatterns struct {
	intent   intent.Intent
	patterns []*regexp.Regexp
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// catalogue follows intent.Catalogue() order. Ties resolve to the earlier entry.
var catalogue = []intentPatterns{
	{intent.SearchSender, compileAll(
		`\b(?:from|by|sent by|emails? from|messages? from)\s+([^,\.\?]+)`,
		`@(\w+)`,
	)},
	{intent.SearchTimeframe, compileAll(
		`\b(?:in the\s+)?(?:last|past|previous)\s+(\d+\s+\w+)`,
		`\b(?:this|today|yesterday|tomorrow)`,
		`\b(?:last|this|next)\s+(?:week|month|year)`,
		`\b(?:since|after|before)\s+([^\s,\.\?]+)`,
		`\b(\d{1,2}/\d{1,2}|\w+\s+\d{1,2})`,
	)},
	{intent.SearchUrgent, compileAll(
		`\b(?:urgent|important|critical|priority|deadline)`,
		`\bneeds?\s+(?:immediate|quick|fast)`,
		`\b(?:asap|emergency|critical)`,
	)},
	{intent.SearchCategory, compileAll(
		`\b(?:payment|invoice|bill|money|financial)`,
		`\b(?:meeting|appointment|calendar|schedule)`,
		`\b(?:task|todo|action|homework|assignment)`,
		`\b(?:notification|alert|update|news)`,
	)},
	{intent.SearchTopic, compileAll(
		`\b(?:about|regarding|concerning|related to)\s+([^,\.\?]+)`,
	)},
	{intent.AskSummary, compileAll(
		`\b(?:summarize|summary|overview|what's new)`,
		`\b(?:catch me up|fill me in|brief me)`,
		`\b(?:recent|latest|new)\s+(?:emails|messages|updates)`,
	)},
	{intent.AskAction, compileAll(
		// Queries are lowercased before matching, so patterns are written in lower case.
		`\b(?:what do i need|action required|to do|tasks?)`,
		`\b(?:pending|outstanding|waiting|due)`,
		`\b(?:follow up|respond to|reply)`,
	)},
	{intent.SearchAttachments, compileAll(
		`\b(?:attachments?|attached|files?|documents?|pdfs?)\b`,
		`\bwith\s+(?:an?\s+)?(?:attachment|file|document)`,
	)},
	{intent.SearchUnread, compileAll(
		`\b(?:unread|unseen|unopened)\b`,
		`\b(?:haven't|have not|didn't|did not)\s+(?:read|seen|opened)`,
	)},
	{intent.AskStatus, compileAll(
		`\b(?:status|progress)\b`,
		`\bany\s+(?:updates?|news|progress)\s+(?:on|about)`,
	)},
	{intent.SearchContent, compileAll(
		`\b(?:mentions?|mentioning|contains?|containing|says?|saying)\b`,
		`"[^"]+"`,
	)},
}

// keywordFamily maps a value to the keywords that select it. First matching family wins.
type keywordFamily struct {
	value    string
	keywords []string
}

// containsAny reports whether lower contains any keyword as a substring.
func containsAny(lower string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func firstFamily(lower string, families []keywordFamily) (string, bool) {
	for _, f := range families {
		if containsAny(lower, f.keywords) {
			return f.value, true
		}
	}
	return "", false
}
