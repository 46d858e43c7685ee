package analysis

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/mailsense/internal/domain/query/filter"
)

// Timeframe is a resolved lower date bound.
type Timeframe struct {
	DateAfter   string
	Description string
}

var timeframePhrases = []struct {
	phrase string
	days   int
}{
	{"today", 1},
	{"yesterday", 2},
	{"this week", 7},
	{"last week", 7},
	{"this month", 30},
	{"last month", 30},
}

var relativeTimeframe = regexp.MustCompile(`(?:last|past)\s+(\d+)\s+(day|week|month)s?`)

var unitDays = map[string]int{"day": 1, "week": 7, "month": 30}

// maxTimeframeDays bounds relative expressions; anything longer is no filter.
const maxTimeframeDays = 100 * 365

// TimeframeResolver maps time phrases to date_after bounds relative to its clock.
type TimeframeResolver struct {
	now func() time.Time
	loc *time.Location
}

// NewTimeframeResolver creates a resolver. A nil clock means time.Now, a nil location means UTC.
func NewTimeframeResolver(now func() time.Time, loc *time.Location) *TimeframeResolver {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &TimeframeResolver{now: now, loc: loc}
}

// Resolve returns the timeframe mentioned in text. Fixed phrases take
// precedence over "last|past N day|week|month" expressions.
func (r *TimeframeResolver) Resolve(text string) (Timeframe, bool) {
	lower := strings.ToLower(text)

	for _, p := range timeframePhrases {
		if strings.Contains(lower, p.phrase) {
			return r.daysBack(p.days, p.phrase), true
		}
	}

	m := relativeTimeframe.FindStringSubmatch(lower)
	if m == nil {
		return Timeframe{}, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 || n > maxTimeframeDays/unitDays[m[2]] {
		return Timeframe{}, false
	}
	unit := m[2]
	desc := fmt.Sprintf("last %d %s", n, unit)
	if n > 1 {
		desc += "s"
	}
	tf := r.daysBack(n*unitDays[unit], desc)
	if tf.DateAfter == "" {
		return Timeframe{}, false
	}
	return tf, true
}

func (r *TimeframeResolver) daysBack(days int, desc string) Timeframe {
	start := r.now().In(r.loc).AddDate(0, 0, -days)
	if start.Year() < 1 {
		return Timeframe{}
	}
	return Timeframe{DateAfter: start.Format(filter.DateLayout), Description: desc}
}
