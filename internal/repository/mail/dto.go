package mail

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kailas-cloud/mailsense/internal/db"
	dommail "github.com/kailas-cloud/mailsense/internal/domain/mail"
	"github.com/kailas-cloud/mailsense/internal/domain/query/filter"
)

// Hash field names.
const (
	fieldFrom       = "from"
	fieldFromNorm   = "from_norm"
	fieldSubject    = "subject"
	fieldBody       = "body"
	fieldDate       = "date"
	fieldDateTS     = "date_ts"
	fieldCategory   = "category"
	fieldImportance = "importance"
	fieldVector     = "vector"
)

var returnFields = []string{fieldFrom, fieldSubject, fieldBody, fieldDate}

// buildHashFields converts a message into a flat map for HSET.
func buildHashFields(m *dommail.Message, vector []float32) map[string]string {
	fields := map[string]string{
		fieldFrom:       m.From,
		fieldFromNorm:   strings.ToLower(m.From),
		fieldSubject:    m.Subject,
		fieldBody:       m.Body,
		fieldImportance: strconv.Itoa(m.Importance),
	}
	if !m.Date.IsZero() {
		fields[fieldDate] = m.Date.UTC().Format(time.RFC3339)
		fields[fieldDateTS] = strconv.FormatInt(m.Date.Unix(), 10)
	}
	if m.Category != "" {
		fields[fieldCategory] = string(m.Category)
	}
	if len(vector) > 0 {
		fields[fieldVector] = string(db.EncodeVector(vector))
	}
	return fields
}

// parseMessage converts a flat hash back into a message.
func parseMessage(id string, fields map[string]string) dommail.Message {
	m := dommail.Message{
		ID:       id,
		From:     fields[fieldFrom],
		Subject:  fields[fieldSubject],
		Body:     fields[fieldBody],
		Category: filter.Category(fields[fieldCategory]),
	}
	if d, err := time.Parse(time.RFC3339, fields[fieldDate]); err == nil {
		m.Date = d
	}
	if n, err := strconv.Atoi(fields[fieldImportance]); err == nil {
		m.Importance = n
	}
	return m
}

func citationFromFields(id string, score float64, fields map[string]string, snippetLen int) dommail.Citation {
	return dommail.Citation{
		ID:      id,
		From:    fields[fieldFrom],
		Subject: fields[fieldSubject],
		Date:    fields[fieldDate],
		Snippet: snippet(fields[fieldBody], snippetLen),
		Score:   score,
	}
}

// snippet returns the first n characters of body, cut on a rune boundary.
func snippet(body string, n int) string {
	if utf8.RuneCountInString(body) <= n {
		return body
	}
	runes := []rune(body)
	return string(runes[:n])
}

// conditions maps metadata filters onto index pre-filter clauses.
func conditions(m filter.Metadata, loc *time.Location) []db.Condition {
	var conds []db.Condition
	if m.FromContains != "" {
		conds = append(conds, db.Contains(fieldFromNorm, m.FromContains))
	}
	if after, ok := m.DateAfterTime(loc); ok {
		conds = append(conds, db.AtLeast(fieldDateTS, float64(after.Unix())))
	}
	if m.Category != "" {
		conds = append(conds, db.TagEquals(fieldCategory, string(m.Category)))
	}
	if m.MinImportance > 0 {
		conds = append(conds, db.AtLeast(fieldImportance, float64(m.MinImportance)))
	}
	return conds
}

