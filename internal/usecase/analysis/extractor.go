package analysis

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/mailsense/internal/domain/query/entity"
)

const maxNames = 3

var entityPatterns = []struct {
	typ     entity.Type
	pattern *regexp.Regexp
}{
	{entity.Names, regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)\b`)},
	{entity.Companies, regexp.MustCompile(
		`\b([A-Z][a-z]*(?:\s+[A-Z][a-z]*)*(?:\s+(?:Ltd|Inc|Corp|Company|School|University))?)\b`)},
	{entity.Dates, regexp.MustCompile(`\b(\d{1,2}/\d{1,2}(?:/\d{2,4})?|\w+\s+\d{1,2}(?:,?\s+\d{4})?)\b`)},
	{entity.Amounts, regexp.MustCompile(`[£$€¥]?\s?\d{1,3}(?:,\d{3})*(?:\.\d{2})?`)},
	{entity.Times, regexp.MustCompile(`\b(?:1[0-2]|0?[1-9]):[0-5][0-9]\s?(?:AM|PM|am|pm)\b`)},
	{entity.Emails, regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)},
}

var nameStopWords = map[string]struct{}{
	"from": {}, "to": {}, "about": {}, "what": {}, "when": {},
	"where": {}, "how": {}, "the": {}, "and": {}, "or": {},
}

// ExtractEntities applies every entity family to text and keeps those that matched.
// Values appear in order of occurrence. Names drop stop words and tokens of two
// characters or fewer, then keep the first three.
func ExtractEntities(text string) entity.Bag {
	entries := make([]entity.Entry, 0, len(entityPatterns))
	for _, ep := range entityPatterns {
		values := findAll(ep.pattern, text)
		if ep.typ == entity.Names {
			values = filterNames(values)
		}
		entries = append(entries, entity.Entry{Type: ep.typ, Values: values})
	}
	return entity.NewBag(entries...)
}

// findAll returns the first capture group of each match, or the whole match
// when the pattern has no groups.
func findAll(re *regexp.Regexp, text string) []string {
	matches := re.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		v := m[0]
		if len(m) > 1 {
			v = m[1]
		}
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

func filterNames(names []string) []string {
	out := make([]string, 0, maxNames)
	for _, n := range names {
		if _, stop := nameStopWords[strings.ToLower(n)]; stop {
			continue
		}
		if utf8.RuneCountInString(n) <= 2 {
			continue
		}
		out = append(out, n)
		if len(out) == maxNames {
			break
		}
	}
	return out
}
